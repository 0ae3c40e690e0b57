package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	"github.com/rs-labo46/inventory-tracker/internal/middleware"
	"github.com/rs-labo46/inventory-tracker/internal/usecase"

	"github.com/labstack/echo/v4"
)

// POST /api/inventory/items の入力
type AddItemRequest struct {
	Name string `json:"name"`
}

type InventoryResponse struct {
	Items       []model.InventoryItem `json:"items"`
	Version     uint64                `json:"version"`
	RefreshedAt time.Time             `json:"refreshed_at"`
}

// /api/inventory
type InventoryHandler struct {
	uc *usecase.InventoryUsecase
}

// DI
func NewInventoryHandler(uc *usecase.InventoryUsecase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// サインイン必須でルートを登録
func (h *InventoryHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/inventory")
	api.Use(middleware.RequireSession())

	api.GET("", h.list)
	api.POST("/refresh", h.refresh)
	api.POST("/items", h.addItem)
	api.DELETE("/items/:name", h.removeItem)
	api.GET("/events", h.events)
}

func toResponse(s model.InventorySnapshot, items []model.InventoryItem) InventoryResponse {
	return InventoryResponse{Items: items, Version: s.Version, RefreshedAt: s.RefreshedAt}
}

// 手元のスナップショットをqで絞り込んで返す
func (h *InventoryHandler) list(c echo.Context) error {
	snap := h.uc.Snapshot()
	return c.JSON(http.StatusOK, toResponse(snap, usecase.FilterItems(snap.Items, c.QueryParam("q"))))
}

func (h *InventoryHandler) refresh(c echo.Context) error {
	snap, err := h.uc.Refresh(c.Request().Context())
	if err != nil {
		return writeError(c, usecase.OpRefresh, err)
	}
	return c.JSON(http.StatusOK, toResponse(snap, snap.Items))
}

func (h *InventoryHandler) addItem(c echo.Context) error {
	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	snap, err := h.uc.AddItem(c.Request().Context(), req.Name)
	if err != nil {
		return writeError(c, usecase.OpAdd, err)
	}
	return c.JSON(http.StatusOK, toResponse(snap, snap.Items))
}

func (h *InventoryHandler) removeItem(c echo.Context) error {
	name := c.Param("name")
	//エスケープされたパスのときだけ戻す
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid name"})
		}
		name = unescaped
	}

	snap, err := h.uc.RemoveItem(c.Request().Context(), name)
	if err != nil {
		return writeError(c, usecase.OpRemove, err)
	}
	return c.JSON(http.StatusOK, toResponse(snap, snap.Items))
}

// スナップショットが変わるたびにSSEで流す
func (h *InventoryHandler) events(c echo.Context) error {
	ctx := c.Request().Context()
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	updates := make(chan model.InventorySnapshot, 8)
	unsubscribe := h.uc.Subscribe(func(s model.InventorySnapshot) {
		//遅い購読者は古い通知を捨てる
		select {
		case updates <- s:
		default:
		}
	})
	defer unsubscribe()

	if err := writeSnapshotEvent(w, h.uc.Snapshot()); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-updates:
			if err := writeSnapshotEvent(w, s); err != nil {
				return nil
			}
		}
	}
}

func writeSnapshotEvent(w *echo.Response, s model.InventorySnapshot) error {
	data, err := json.Marshal(toResponse(s, s.Items))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
