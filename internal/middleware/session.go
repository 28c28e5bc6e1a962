package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/julo-ch/www/internal/session"
)

// LoadSession resolves the login cookie on every request and stores the
// result on the echo context. Requests without a valid cookie continue as
// Anonymous; only a failing session store aborts the request.
func LoadSession(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var raw string
			if ck, err := c.Cookie(m.CookieName()); err == nil {
				raw = ck.Value
			}
			s, err := m.Resolve(c.Request().Context(), raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}
			if raw != "" && !s.IsAuthenticated() {
				// Stale cookie; drop it so the browser stops sending it.
				c.SetCookie(m.ClearCookie())
			}
			session.Set(c, s)
			return next(c)
		}
	}
}
