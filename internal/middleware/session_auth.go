package middleware

import (
	"net/http"
	"strings"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"

	"github.com/labstack/echo/v4"
)

const (
	CtxSessionKey     = "session" // model.Session
	SessionCookieName = "session"
)

// usecaseのAuthenticateだけに依存する
type SessionAuthenticator interface {
	Authenticate(token string) (model.Session, error)
}

// Cookie（またはBearer）からセッションを復元してcontextへ入れる。
// 無い・不正ならサインアウト状態のまま次へ
func SessionAuth(auth SessionAuthenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := model.Session{}
			if raw := sessionToken(c); raw != "" {
				if restored, err := auth.Authenticate(raw); err == nil {
					s = restored
				}
			}
			c.Set(CtxSessionKey, s)
			return next(c)
		}
	}
}

// API用：サインインしていなければ401
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).SignedIn() {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}

// 画面用：サインインしていなければトップへ戻す
func RequireSessionPage() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).SignedIn() {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return next(c)
		}
	}
}

// SessionAuthが入れた値を取り出す
func CurrentSession(c echo.Context) model.Session {
	s, _ := c.Get(CtxSessionKey).(model.Session)
	return s
}

func sessionToken(c echo.Context) string {
	//Bearer形式ならそちらを優先
	authz := c.Request().Header.Get("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
