// Package flash carries one-shot user messages across a redirect in a
// cookie, in the manner of server-rendered frameworks: messages added
// while handling a request are shown by the next page rendered.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	cookieName = "flash"
	contextKey = "flash"
	maxCookie  = 3072
)

type store struct {
	pending   []string
	hadCookie bool
}

// Middleware loads pending messages from the cookie and, just before the
// response is written, either persists the unread ones or clears the
// cookie.
func Middleware(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := &store{}
			if ck, err := c.Cookie(cookieName); err == nil {
				st.hadCookie = true
				st.pending = decode(ck.Value)
			}
			c.Set(contextKey, st)
			c.Response().Before(func() {
				switch {
				case len(st.pending) > 0:
					if v := encode(st.pending); len(v) <= maxCookie {
						c.SetCookie(&http.Cookie{
							Name: cookieName, Value: v, Path: "/",
							HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
						})
					}
				case st.hadCookie:
					c.SetCookie(&http.Cookie{
						Name: cookieName, Value: "", Path: "/", MaxAge: -1,
						HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
					})
				}
			})
			return next(c)
		}
	}
}

// Add queues a message for the next rendered page.
func Add(c echo.Context, msg string) {
	if st, ok := c.Get(contextKey).(*store); ok {
		st.pending = append(st.pending, msg)
	}
}

// Messages returns and consumes every pending message.
func Messages(c echo.Context) []string {
	st, ok := c.Get(contextKey).(*store)
	if !ok {
		return nil
	}
	out := st.pending
	st.pending = nil
	return out
}

func encode(msgs []string) string {
	b, _ := json.Marshal(msgs)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decode(v string) []string {
	b, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var msgs []string
	if json.Unmarshal(b, &msgs) != nil {
		return nil
	}
	return msgs
}
