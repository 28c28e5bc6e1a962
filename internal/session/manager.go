package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julo-ch/www/internal/auth"
	"github.com/julo-ch/www/internal/config"
	"github.com/julo-ch/www/internal/dbx"
	"github.com/julo-ch/www/internal/logging"
	"github.com/julo-ch/www/internal/model"
	"github.com/julo-ch/www/internal/repository"
	"github.com/julo-ch/www/internal/utils"
)

// Manager owns the Anonymous/Authenticated transitions. Every mutation
// runs in a single transaction so the persisted authenticated flag and the
// session row never disagree.
type Manager struct {
	db    *sql.DB
	cfg   config.SessionConfig
	log   logging.Logger
	users *repository.UserRepo
	store *repository.SessionRepo

	// verify checks a password; a nil user is compared against a dummy.
	verify func(u *model.User, password string) bool
}

// Issued is the result of a successful login.
type Issued struct {
	Session Session
	User    *model.User
	Token   string
	Expires time.Time
}

func NewManager(db *sql.DB, cfg config.SessionConfig, log logging.Logger) *Manager {
	return &Manager{
		db:    db,
		cfg:   cfg,
		log:   log,
		users: repository.NewUserRepo(db),
		store: repository.NewSessionRepo(db),
		verify: func(u *model.User, password string) bool {
			return auth.Verify(u, password, cfg.HashCost)
		},
	}
}

// Resolve turns a cookie value into a Session. Malformed, expired, revoked
// or foreign tokens resolve to Anonymous; only store failures are errors.
func (m *Manager) Resolve(ctx context.Context, cookie string) (Session, error) {
	if cookie == "" {
		return Session{}, nil
	}
	uid, raw, err := utils.ParseSessionToken(m.cfg.Secret, cookie)
	if err != nil {
		return Session{}, nil
	}
	hash := utils.HashToken(raw)
	row, err := m.store.Validate(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return Session{}, nil
		}
		return Session{}, err
	}
	if row.UserID != uid {
		m.log.Warn(ctx, "session subject mismatch", "sub", uid, "owner", row.UserID)
		return Session{}, nil
	}
	return Session{State: Authenticated, UserID: uid, tokenHash: hash}, nil
}

// Login verifies the credentials and moves the caller to Authenticated.
// A caller that is already authenticated has its previous token revoked.
func (m *Manager) Login(ctx context.Context, current Session, email, password string) (Issued, error) {
	u, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return Issued{}, err
		}
		u = nil
	}
	// Every failure costs one comparison.
	if ok := m.verify(u, password); !ok || !u.Active {
		return Issued{}, ErrLoginFailed
	}

	tok, err := utils.NewSessionToken(m.cfg.Secret, u.ID, m.cfg.TTL)
	if err != nil {
		return Issued{}, fmt.Errorf("session token: %w", err)
	}
	hash := utils.HashToken(tok.Raw)

	err = dbx.WithTx(ctx, m.db, func(ctx context.Context, tx dbx.DBTX) error {
		users := repository.NewUserRepo(tx)
		store := repository.NewSessionRepo(tx)
		if err := users.SetAuthenticated(ctx, u.ID, true); err != nil {
			return err
		}
		if current.IsAuthenticated() && current.tokenHash != "" {
			if err := store.Revoke(ctx, current.tokenHash); err != nil {
				return err
			}
		}
		return store.Store(ctx, u.ID, hash, tok.Exp)
	})
	if err != nil {
		return Issued{}, err
	}
	u.Authenticated = true
	m.log.Info(ctx, "user logged in", "user_id", u.ID)
	return Issued{
		Session: Session{State: Authenticated, UserID: u.ID, tokenHash: hash},
		User:    u,
		Token:   tok.Signed,
		Expires: tok.Exp,
	}, nil
}

// Logout moves an authenticated caller back to Anonymous, clearing the
// persisted flag and revoking the token.
func (m *Manager) Logout(ctx context.Context, current Session) error {
	if !current.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	err := dbx.WithTx(ctx, m.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := repository.NewUserRepo(tx).SetAuthenticated(ctx, current.UserID, false); err != nil {
			// The account may have been removed while logged in; the
			// token is still revoked below.
			if !errors.Is(err, repository.ErrUserNotFound) {
				return err
			}
		}
		if current.tokenHash == "" {
			return nil
		}
		return repository.NewSessionRepo(tx).Revoke(ctx, current.tokenHash)
	})
	if err != nil {
		return err
	}
	m.log.Info(ctx, "user logged out", "user_id", current.UserID)
	return nil
}

// ResetPassword stores a new digest and ends every session of the user,
// leaving the account Anonymous everywhere.
func (m *Manager) ResetPassword(ctx context.Context, userID uint64, digest string) error {
	err := dbx.WithTx(ctx, m.db, func(ctx context.Context, tx dbx.DBTX) error {
		users := repository.NewUserRepo(tx)
		if err := users.SetPassword(ctx, userID, digest); err != nil {
			return err
		}
		if err := users.SetAuthenticated(ctx, userID, false); err != nil {
			return err
		}
		return repository.NewSessionRepo(tx).RevokeAllForUser(ctx, userID)
	})
	if err != nil {
		return err
	}
	m.log.Info(ctx, "password reset, sessions revoked", "user_id", userID)
	return nil
}

// CurrentUser returns the user of an authenticated session, or nil.
func (m *Manager) CurrentUser(ctx context.Context, current Session) (*model.User, error) {
	if !current.IsAuthenticated() {
		return nil, nil
	}
	u, err := m.users.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// RequireAuthenticated is the gate used by protected resources: true iff a
// current user exists and its persisted authenticated flag is set. Store
// errors deny access.
func (m *Manager) RequireAuthenticated(ctx context.Context, current Session) bool {
	u, err := m.CurrentUser(ctx, current)
	if err != nil {
		m.log.Error(ctx, "gate lookup failed", "err", err)
		return false
	}
	return u != nil && u.Authenticated
}

// PurgeExpired deletes expired and revoked session rows.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, time.Now())
}

// RunPurger calls PurgeExpired every interval until ctx is cancelled.
func (m *Manager) RunPurger(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := m.PurgeExpired(ctx)
			if err != nil {
				m.log.Error(ctx, "purge sessions", "err", err)
				continue
			}
			if n > 0 {
				m.log.Debug(ctx, "purged sessions", "count", n)
			}
		}
	}
}

// CookieName is the configured cookie name.
func (m *Manager) CookieName() string { return m.cfg.CookieName }

// Cookie builds the login cookie for an issued session.
func (m *Manager) Cookie(is Issued) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    is.Token,
		Path:     "/",
		Expires:  is.Expires,
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the login cookie in the browser.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
