package handler

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	"github.com/rs-labo46/inventory-tracker/internal/middleware"
	"github.com/rs-labo46/inventory-tracker/internal/usecase"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

const indexTemplate = "index.html"

// echo.Renderer 実装
type TemplateRenderer struct {
	templates *template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: t}, nil
}

func (r *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type itemView struct {
	Name        string
	DisplayName string
	Quantity    int64
}

type pageView struct {
	SignedIn bool
	User     *model.UserIdentity
	Query    string
	Items    []itemView
	// オフライン時のブロッキング通知
	Alert string
	// 入力ミスなど
	Notice string
}

// 画面（/ と フォーム送信）
type PageHandler struct {
	uc *usecase.InventoryUsecase
}

func NewPageHandler(uc *usecase.InventoryUsecase) *PageHandler {
	return &PageHandler{uc: uc}
}

func (h *PageHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.index)

	items := e.Group("/items")
	items.Use(middleware.RequireSessionPage())
	items.POST("", h.addItem)
	items.POST("/remove", h.removeItem)
}

// 表示のたびにストアから取り直す
func (h *PageHandler) index(c echo.Context) error {
	s := middleware.CurrentSession(c)
	view := pageView{SignedIn: s.SignedIn(), User: s.User, Query: c.QueryParam("q")}
	if !view.SignedIn {
		return c.Render(http.StatusOK, indexTemplate, view)
	}

	if _, err := h.uc.Refresh(c.Request().Context()); err != nil {
		h.applyError(c, &view, usecase.OpRefresh, err)
	}
	view.Items = h.items(view.Query)
	return c.Render(http.StatusOK, indexTemplate, view)
}

func (h *PageHandler) addItem(c echo.Context) error {
	name := c.FormValue("name")
	q := c.FormValue("q")

	if _, err := h.uc.AddItem(c.Request().Context(), name); err != nil {
		return h.renderError(c, usecase.OpAdd, q, err)
	}
	return c.Redirect(http.StatusSeeOther, indexURL(q))
}

func (h *PageHandler) removeItem(c echo.Context) error {
	name := c.FormValue("name")
	q := c.FormValue("q")

	if _, err := h.uc.RemoveItem(c.Request().Context(), name); err != nil {
		return h.renderError(c, usecase.OpRemove, q, err)
	}
	return c.Redirect(http.StatusSeeOther, indexURL(q))
}

// 失敗したらスナップショット（古いかもしれない）のまま描き直す
func (h *PageHandler) renderError(c echo.Context, op usecase.Operation, q string, err error) error {
	s := middleware.CurrentSession(c)
	view := pageView{SignedIn: true, User: s.User, Query: q}
	status := h.applyError(c, &view, op, err)
	view.Items = h.items(q)
	return c.Render(status, indexTemplate, view)
}

func (h *PageHandler) applyError(c echo.Context, view *pageView, op usecase.Operation, err error) int {
	switch usecase.Classify(err) {
	case usecase.KindStoreUnavailable:
		c.Logger().Warnf("%s: %v", op, err)
		view.Alert = op.AlertMessage()
		return http.StatusServiceUnavailable
	case usecase.KindInvalidInput:
		view.Notice = "Please enter a valid item name."
		return http.StatusBadRequest
	default:
		c.Logger().Errorf("%s: %v", op, err)
		return http.StatusInternalServerError
	}
}

func (h *PageHandler) items(q string) []itemView {
	filtered := h.uc.Search(q)
	out := make([]itemView, 0, len(filtered))
	for _, it := range filtered {
		out = append(out, itemView{Name: it.Name, DisplayName: displayName(it.Name), Quantity: it.Quantity})
	}
	return out
}

func indexURL(q string) string {
	if q == "" {
		return "/"
	}
	return "/?q=" + url.QueryEscape(q)
}

// 先頭の1文字だけ大文字
func displayName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return cases.Upper(language.Und).String(string(r)) + name[size:]
}
