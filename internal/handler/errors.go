package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/julo-ch/www/internal/logging"
)

type errorView struct {
	Status  int
	Message string
}

// ErrorHandler renders HTML error pages: pagenotfound for 404,
// unauthorized for 401 and a generic page otherwise. Server errors are
// logged with their cause and never shown to the visitor.
func ErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Something went wrong."
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if code < 500 {
				if s, ok := he.Message.(string); ok && s != "" {
					msg = s
				} else {
					msg = http.StatusText(code)
				}
			}
		}
		if code >= 500 {
			log.Error(c.Request().Context(), "request failed", "err", err, "uri", c.Request().RequestURI)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		var rerr error
		switch code {
		case http.StatusNotFound:
			rerr = c.Render(code, "pagenotfound.html", nil)
		case http.StatusUnauthorized:
			rerr = c.Render(code, "unauthorized.html", nil)
		default:
			rerr = c.Render(code, "error.html", errorView{Status: code, Message: msg})
		}
		if rerr != nil {
			log.Error(c.Request().Context(), "render error page", "err", rerr)
			_ = c.String(code, fmt.Sprintf("%d %s", code, http.StatusText(code)))
		}
	}
}
