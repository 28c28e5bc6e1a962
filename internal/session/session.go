// Package session resolves the login state of a request and performs the
// login and logout transitions against the credential and session stores.
package session

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// State is the login state of a request.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the resolved per-request session. The zero value is Anonymous.
type Session struct {
	State  State
	UserID uint64

	tokenHash string
}

// IsAuthenticated reports whether the request carries a valid login.
func (s Session) IsAuthenticated() bool { return s.State == Authenticated && s.UserID != 0 }

var (
	// ErrLoginFailed is returned for an unknown email, an inactive user and
	// a wrong password alike.
	ErrLoginFailed = errors.New("login failed")
	// ErrNotAuthenticated is returned by Logout for an anonymous session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

const contextKey = "session"

// Set stores the resolved session on the echo context.
func Set(c echo.Context, s Session) { c.Set(contextKey, s) }

// From returns the session stored by the middleware, or Anonymous.
func From(c echo.Context) Session {
	if s, ok := c.Get(contextKey).(Session); ok {
		return s
	}
	return Session{}
}
