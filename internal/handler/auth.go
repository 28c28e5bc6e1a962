package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/julo-ch/www/internal/flash"
	"github.com/julo-ch/www/internal/session"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	Sessions *session.Manager
}

func NewAuthHandler(m *session.Manager) *AuthHandler {
	return &AuthHandler{Sessions: m}
}

type loginForm struct {
	Email string
	Next  string
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", loginForm{Next: safeNext(c.QueryParam("next"))})
}

// Login checks the credentials. On success the session cookie is set and
// the browser goes to ?next= (same site only) or home; on failure the form
// is shown again with a single message for every cause.
func (h *AuthHandler) Login(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	next := safeNext(c.QueryParam("next"))
	if next == "" {
		next = safeNext(c.FormValue("next"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	issued, err := h.Sessions.Login(ctx, session.From(c), email, password)
	if err != nil {
		if errors.Is(err, session.ErrLoginFailed) {
			flash.Add(c, "Login failed.")
			return c.Render(http.StatusOK, "login.html", loginForm{Email: email, Next: next})
		}
		return err
	}
	c.SetCookie(h.Sessions.Cookie(issued))
	session.Set(c, issued.Session)
	flash.Add(c, "Login succeeded.")
	if next == "" {
		next = "/"
	}
	return c.Redirect(http.StatusFound, next)
}

// Logout ends the session. Anonymous callers are sent to the login form.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Logout(ctx, session.From(c)); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return c.Redirect(http.StatusFound, "/login")
		}
		return err
	}
	c.SetCookie(h.Sessions.ClearCookie())
	session.Set(c, session.Session{})
	flash.Add(c, "Logout succeeded.")
	return c.Redirect(http.StatusFound, "/")
}

// safeNext accepts only local absolute paths, so a crafted link cannot
// bounce a fresh login to another site.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}
