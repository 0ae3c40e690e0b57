package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	"github.com/rs-labo46/inventory-tracker/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func form(values map[string]string) string {
	v := url.Values{}
	for k, s := range values {
		v.Set(k, s)
	}
	return v.Encode()
}

func TestPageHandler_SignedOut(t *testing.T) {
	e := newTestEcho(t, newInventoryUC(newSwitchableStore()))

	rec := doRequest(e, http.MethodGet, "/", "", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign in with Google")
	assert.NotContains(t, rec.Body.String(), "Inventory Items")
}

func TestPageHandler_IndexRefreshesOnLoad(t *testing.T) {
	store := newSwitchableStore()
	require.NoError(t, store.Set(context.Background(), model.InventoryCollection, model.Document{ID: "apple", Fields: model.DocumentFields{Quantity: 3}}))
	uc := newInventoryUC(store)
	e := newTestEcho(t, uc)

	rec := doRequest(e, http.MethodGet, "/", "", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Sign Out")
	assert.Contains(t, body, "Inventory Items")
	assert.Contains(t, body, "Apple")
	assert.Contains(t, body, "Quantity: 3")
	assert.Equal(t, uint64(1), uc.Snapshot().Version)
}

func TestPageHandler_SearchFilters(t *testing.T) {
	store := newSwitchableStore()
	ctx := context.Background()
	for _, n := range []string{"apple", "banana"} {
		require.NoError(t, store.Set(ctx, model.InventoryCollection, model.Document{ID: n, Fields: model.DocumentFields{Quantity: 1}}))
	}
	e := newTestEcho(t, newInventoryUC(store))

	rec := doRequest(e, http.MethodGet, "/?q=BAN", "", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Banana")
	assert.NotContains(t, rec.Body.String(), "Apple")
}

func TestPageHandler_AddAndRemoveRedirect(t *testing.T) {
	store := newSwitchableStore()
	uc := newInventoryUC(store)
	e := newTestEcho(t, uc)

	rec := doRequest(e, http.MethodPost, "/items", form(map[string]string{"name": "apple", "q": "ap"}), echo.MIMEApplicationForm, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?q=ap", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, []model.InventoryItem{{Name: "apple", Quantity: 1}}, uc.Snapshot().Items)

	rec = doRequest(e, http.MethodPost, "/items/remove", form(map[string]string{"name": "apple"}), echo.MIMEApplicationForm, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, uc.Snapshot().Items)
}

func TestPageHandler_FormsRequireSession(t *testing.T) {
	store := newSwitchableStore()
	e := newTestEcho(t, newInventoryUC(store))

	rec := doRequest(e, http.MethodPost, "/items", form(map[string]string{"name": "apple"}), echo.MIMEApplicationForm, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	docs, err := store.List(context.Background(), model.InventoryCollection)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestPageHandler_OfflineShowsAlertDialog(t *testing.T) {
	store := newSwitchableStore()
	store.offline.Store(true)
	e := newTestEcho(t, newInventoryUC(store))

	rec := doRequest(e, http.MethodPost, "/items", form(map[string]string{"name": "banana"}), echo.MIMEApplicationForm, true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "<dialog open")
	assert.Contains(t, rec.Body.String(), usecase.OpAdd.AlertMessage())

	rec = doRequest(e, http.MethodGet, "/", "", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), usecase.OpRefresh.AlertMessage())
}

func TestPageHandler_UnclassifiedKeepsStaleList(t *testing.T) {
	store := newSwitchableStore()
	require.NoError(t, store.Set(context.Background(), model.InventoryCollection, model.Document{ID: "apple", Fields: model.DocumentFields{Quantity: 2}}))
	uc := newInventoryUC(store)
	_, err := uc.Refresh(context.Background())
	require.NoError(t, err)
	store.broken.Store(true)
	e := newTestEcho(t, uc)

	rec := doRequest(e, http.MethodPost, "/items/remove", form(map[string]string{"name": "apple"}), echo.MIMEApplicationForm, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quantity: 2")
	assert.NotContains(t, rec.Body.String(), "<dialog open")
}

func TestPageHandler_InvalidNameNotice(t *testing.T) {
	e := newTestEcho(t, newInventoryUC(newSwitchableStore()))

	rec := doRequest(e, http.MethodPost, "/items", form(map[string]string{"name": "a/b"}), echo.MIMEApplicationForm, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a valid item name.")
	assert.NotContains(t, rec.Body.String(), "<dialog open")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Apple", displayName("apple"))
	assert.Equal(t, "Éclair", displayName("éclair"))
	assert.Equal(t, "Apple", displayName("Apple"))
	assert.Equal(t, "", displayName(""))
	assert.Equal(t, "1kg rice", displayName("1kg rice"))
}
