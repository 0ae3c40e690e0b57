package handler

import (
	"net/http"

	"github.com/rs-labo46/inventory-tracker/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	// オフライン時だけユーザーに出す文言
	Alert string `json:"alert,omitempty"`
}

// usecaseのエラーをHTTPに変換。
// オフラインはアラート付き503、それ以外の想定外はログだけ残して500
func writeError(c echo.Context, op usecase.Operation, err error) error {
	if err == nil {
		return nil
	}

	switch usecase.Classify(err) {
	case usecase.KindStoreUnavailable:
		c.Logger().Warnf("%s: %v", op, err)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "store unavailable", Alert: op.AlertMessage()})
	case usecase.KindInvalidInput:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item name"})
	default:
		c.Logger().Errorf("%s: %v", op, err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
