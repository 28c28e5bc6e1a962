package middleware

import (
	"github.com/labstack/echo/v4"
)

// Gate aborts the request with code unless allow reports true. Nothing
// downstream runs on denial.
func Gate(code int, allow func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allow(c) {
				return echo.NewHTTPError(code)
			}
			return next(c)
		}
	}
}
