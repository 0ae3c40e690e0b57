package handler

import (
	"net/http"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	"github.com/rs-labo46/inventory-tracker/internal/middleware"
	"github.com/rs-labo46/inventory-tracker/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	stateCookieName    = "oauth_state"
	verifierCookieName = "oauth_verifier"
	// 同意画面から戻るまでの猶予
	signInCookieTTL = 10 * time.Minute
)

// GET /api/session のレスポンス
type SessionResponse struct {
	User      *model.UserIdentity `json:"user"`
	ExpiresAt time.Time           `json:"expires_at"`
}

type AuthHandler struct {
	uc           *usecase.SessionUsecase
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.SessionUsecase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{uc: uc, cookieSecure: cookieSecure}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/auth/google/login", h.login)
	e.GET("/auth/google/callback", h.callback)
	e.POST("/auth/logout", h.logout)
	e.GET("/api/session", h.me, middleware.RequireSession())
}

// 同意画面へリダイレクト（stateとverifierはCookieに保持）
func (h *AuthHandler) login(c echo.Context) error {
	req := h.uc.BeginSignIn()

	exp := time.Now().Add(signInCookieTTL)
	h.setCookie(c, stateCookieName, req.State, "/auth", exp)
	h.setCookie(c, verifierCookieName, req.Verifier, "/auth", exp)

	return c.Redirect(http.StatusFound, req.URL)
}

// プロバイダからの戻り
func (h *AuthHandler) callback(c echo.Context) error {
	//同意画面を閉じた・拒否した
	if errParam := c.QueryParam("error"); errParam != "" {
		c.Logger().Warnf("sign in canceled: %s", errParam)
		h.clearSignInCookies(c)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid state"})
	}
	verifierCookie, err := c.Cookie(verifierCookieName)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid state"})
	}
	h.clearSignInCookies(c)

	session, token, err := h.uc.CompleteSignIn(c.Request().Context(), c.QueryParam("code"), verifierCookie.Value)
	if err != nil {
		c.Logger().Errorf("sign in: %v", err)
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	h.setCookie(c, middleware.SessionCookieName, token, "/", session.ExpiresAt)
	return c.Redirect(http.StatusSeeOther, "/")
}

// サインアウト。失敗してもログだけでCookieは消す
func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.uc.SignOut(c.Request().Context(), middleware.CurrentSession(c)); err != nil {
		c.Logger().Errorf("sign out: %v", err)
	}
	h.expireCookie(c, middleware.SessionCookieName, "/")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) me(c echo.Context) error {
	s := middleware.CurrentSession(c)
	return c.JSON(http.StatusOK, SessionResponse{User: s.User, ExpiresAt: s.ExpiresAt})
}

func (h *AuthHandler) setCookie(c echo.Context, name string, value string, path string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *AuthHandler) expireCookie(c echo.Context, name string, path string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (h *AuthHandler) clearSignInCookies(c echo.Context) {
	h.expireCookie(c, stateCookieName, "/auth")
	h.expireCookie(c, verifierCookieName, "/auth")
}
