package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	infraRepo "github.com/rs-labo46/inventory-tracker/internal/infra/repository"
	"github.com/rs-labo46/inventory-tracker/internal/middleware"
	repo "github.com/rs-labo46/inventory-tracker/internal/repository"
	"github.com/rs-labo46/inventory-tracker/internal/usecase"
	"github.com/rs-labo46/inventory-tracker/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// =====================
// ストア：オフライン/想定外エラーを切り替えられる
// =====================

type switchableStore struct {
	*infraRepo.DocumentMemoryRepository
	offline atomic.Bool
	broken  atomic.Bool
}

func newSwitchableStore() *switchableStore {
	return &switchableStore{DocumentMemoryRepository: infraRepo.NewDocumentMemoryRepository()}
}

func (s *switchableStore) check() error {
	if s.offline.Load() {
		return repo.ErrUnavailable
	}
	if s.broken.Load() {
		return errPermissionDenied
	}
	return nil
}

type testError string

func (e testError) Error() string { return string(e) }

const errPermissionDenied = testError("permission denied")

func (s *switchableStore) Get(ctx context.Context, collection string, id string) (model.Document, error) {
	if err := s.check(); err != nil {
		return model.Document{}, err
	}
	return s.DocumentMemoryRepository.Get(ctx, collection, id)
}

func (s *switchableStore) Set(ctx context.Context, collection string, doc model.Document) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.DocumentMemoryRepository.Set(ctx, collection, doc)
}

func (s *switchableStore) Delete(ctx context.Context, collection string, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.DocumentMemoryRepository.Delete(ctx, collection, id)
}

func (s *switchableStore) List(ctx context.Context, collection string) ([]model.Document, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.DocumentMemoryRepository.List(ctx, collection)
}

// =====================
// Echo
// =====================

var testUser = model.UserIdentity{Subject: "g-1", Email: "alice@example.com", Name: "Alice"}

// X-Test-User ヘッダがあればサインイン済みにする
func fakeSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := model.Session{}
			if c.Request().Header.Get("X-Test-User") != "" {
				u := testUser
				s.User = &u
			}
			c.Set(middleware.CtxSessionKey, s)
			return next(c)
		}
	}
}

func newInventoryUC(store repo.DocumentStore) *usecase.InventoryUsecase {
	return usecase.NewInventoryUsecase(store, usecase.NewInventoryState(), validator.NewInventoryValidator())
}

func newTestEcho(t *testing.T, uc *usecase.InventoryUsecase) *echo.Echo {
	t.Helper()
	e := echo.New()
	r, err := NewTemplateRenderer()
	require.NoError(t, err)
	e.Renderer = r
	e.Use(fakeSession())

	NewInventoryHandler(uc).RegisterRoutes(e)
	NewPageHandler(uc).RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, method string, path string, body string, contentType string, signedIn bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if signedIn {
		req.Header.Set("X-Test-User", "1")
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
