package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/julo-ch/www/internal/auth"
	"github.com/julo-ch/www/internal/config"
	"github.com/julo-ch/www/internal/database"
	"github.com/julo-ch/www/internal/logging"
	"github.com/julo-ch/www/internal/model"
	"github.com/julo-ch/www/internal/repository"
	"github.com/julo-ch/www/internal/utils"
)

const testSecret = "test-secret"

func setup(t *testing.T) (*Manager, *sql.DB) {
	t.Helper()
	db, err := database.Open(context.Background(), config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	m := NewManager(db, config.SessionConfig{Secret: testSecret, TTL: time.Hour, CookieName: "session", HashCost: bcrypt.MinCost}, logging.Nop())
	return m, db
}

func addUser(t *testing.T, db *sql.DB, email, password string, active bool) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{Email: email, PasswordHash: hash, FirstName: "Julian", LastName: "Ott", Active: active}
	_, err = repository.NewUserRepo(db).Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

func persisted(t *testing.T, db *sql.DB, id uint64) *model.User {
	t.Helper()
	u, err := repository.NewUserRepo(db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func TestLogin_Success(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	u := addUser(t, db, "j@x.ch", "pw", true)

	is, err := m.Login(ctx, Session{}, "J@X.ch ", "pw")
	require.NoError(t, err)
	assert.True(t, is.Session.IsAuthenticated())
	assert.Equal(t, u.ID, is.Session.UserID)
	assert.NotEmpty(t, is.Token)
	assert.True(t, persisted(t, db, u.ID).Authenticated)

	s, err := m.Resolve(ctx, is.Token)
	require.NoError(t, err)
	assert.Equal(t, Authenticated, s.State)
	assert.Equal(t, u.ID, s.UserID)
	assert.True(t, m.RequireAuthenticated(ctx, s))
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	addUser(t, db, "j@x.ch", "pw", true)
	inactive := addUser(t, db, "off@x.ch", "pw", false)

	for name, tc := range map[string]struct{ email, pw string }{
		"unknown user":   {"nobody@x.ch", "pw"},
		"wrong password": {"j@x.ch", "nope"},
		"empty password": {"j@x.ch", ""},
		"inactive":       {"off@x.ch", "pw"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Login(ctx, Session{}, tc.email, tc.pw)
			assert.ErrorIs(t, err, ErrLoginFailed)
		})
	}
	assert.False(t, persisted(t, db, inactive.ID).Authenticated)
}

func TestLogin_EveryFailureComparesOnce(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	addUser(t, db, "j@x.ch", "pw", true)
	addUser(t, db, "off@x.ch", "pw", false)

	var calls []*model.User
	verify := m.verify
	m.verify = func(u *model.User, password string) bool {
		calls = append(calls, u)
		return verify(u, password)
	}

	for _, tc := range []struct {
		email, pw string
		known     bool
	}{
		{"nobody@x.ch", "pw", false},
		{"j@x.ch", "nope", true},
		{"off@x.ch", "pw", true},
	} {
		calls = nil
		_, err := m.Login(ctx, Session{}, tc.email, tc.pw)
		assert.ErrorIs(t, err, ErrLoginFailed, tc.email)
		require.Len(t, calls, 1, tc.email)
		assert.Equal(t, tc.known, calls[0] != nil, tc.email)
	}
}

func TestLogout(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	u := addUser(t, db, "j@x.ch", "pw", true)

	is, err := m.Login(ctx, Session{}, "j@x.ch", "pw")
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx, is.Session))

	assert.False(t, persisted(t, db, u.ID).Authenticated)
	s, err := m.Resolve(ctx, is.Token)
	require.NoError(t, err)
	assert.Equal(t, Anonymous, s.State)
	assert.False(t, m.RequireAuthenticated(ctx, is.Session))
}

func TestLogout_Anonymous(t *testing.T) {
	m, _ := setup(t)
	assert.ErrorIs(t, m.Logout(context.Background(), Session{}), ErrNotAuthenticated)
}

func TestRelogin_RevokesPreviousToken(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	u := addUser(t, db, "j@x.ch", "pw", true)

	first, err := m.Login(ctx, Session{}, "j@x.ch", "pw")
	require.NoError(t, err)
	second, err := m.Login(ctx, first.Session, "j@x.ch", "pw")
	require.NoError(t, err)

	s, err := m.Resolve(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, Anonymous, s.State)

	s, err = m.Resolve(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, Authenticated, s.State)
	assert.True(t, persisted(t, db, u.ID).Authenticated)
}

func TestResolve_Anonymous(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	u := addUser(t, db, "j@x.ch", "pw", true)

	// Validly signed but never stored.
	orphan, err := utils.NewSessionToken(testSecret, u.ID, time.Hour)
	require.NoError(t, err)
	foreign, err := utils.NewSessionToken("other-secret", u.ID, time.Hour)
	require.NoError(t, err)

	for name, cookie := range map[string]string{
		"empty":   "",
		"garbage": "abc",
		"orphan":  orphan.Signed,
		"foreign": foreign.Signed,
	} {
		t.Run(name, func(t *testing.T) {
			s, err := m.Resolve(ctx, cookie)
			require.NoError(t, err)
			assert.Equal(t, Anonymous, s.State)
			assert.False(t, m.RequireAuthenticated(ctx, s))
		})
	}
}

func TestResolve_SubjectMismatch(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	a := addUser(t, db, "a@x.ch", "pw", true)
	b := addUser(t, db, "b@x.ch", "pw", true)

	tok, err := utils.NewSessionToken(testSecret, a.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, repository.NewSessionRepo(db).Store(ctx, b.ID, utils.HashToken(tok.Raw), tok.Exp))

	s, err := m.Resolve(ctx, tok.Signed)
	require.NoError(t, err)
	assert.Equal(t, Anonymous, s.State)
}

func TestRequireAuthenticated_FollowsPersistedFlag(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	u := addUser(t, db, "j@x.ch", "pw", true)

	is, err := m.Login(ctx, Session{}, "j@x.ch", "pw")
	require.NoError(t, err)
	require.NoError(t, repository.NewUserRepo(db).SetAuthenticated(ctx, u.ID, false))

	assert.False(t, m.RequireAuthenticated(ctx, is.Session))
}

func TestCurrentUser(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	addUser(t, db, "j@x.ch", "pw", true)

	u, err := m.CurrentUser(ctx, Session{})
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = m.CurrentUser(ctx, Session{State: Authenticated, UserID: 999})
	require.NoError(t, err)
	assert.Nil(t, u)

	is, err := m.Login(ctx, Session{}, "j@x.ch", "pw")
	require.NoError(t, err)
	u, err = m.CurrentUser(ctx, is.Session)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Julian Ott", u.FullName())
}

func TestResetPassword_EndsEverySession(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	u := addUser(t, db, "j@x.ch", "old", true)

	first, err := m.Login(ctx, Session{}, "j@x.ch", "old")
	require.NoError(t, err)
	second, err := m.Login(ctx, Session{}, "j@x.ch", "old")
	require.NoError(t, err)

	digest, err := auth.HashPassword("new", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, m.ResetPassword(ctx, u.ID, digest))

	for _, is := range []Issued{first, second} {
		s, err := m.Resolve(ctx, is.Token)
		require.NoError(t, err)
		assert.Equal(t, Anonymous, s.State)
		assert.False(t, m.RequireAuthenticated(ctx, is.Session))
	}
	assert.False(t, persisted(t, db, u.ID).Authenticated)

	_, err = m.Login(ctx, Session{}, "j@x.ch", "old")
	assert.ErrorIs(t, err, ErrLoginFailed)
	_, err = m.Login(ctx, Session{}, "j@x.ch", "new")
	require.NoError(t, err)
}

func TestResetPassword_UnknownUser(t *testing.T) {
	m, _ := setup(t)
	err := m.ResetPassword(context.Background(), 999, "digest")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestPurgeExpired(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	u := addUser(t, db, "j@x.ch", "pw", true)
	store := repository.NewSessionRepo(db)

	require.NoError(t, store.Store(ctx, u.ID, "expired", time.Now().Add(-time.Minute)))
	is, err := m.Login(ctx, Session{}, "j@x.ch", "pw")
	require.NoError(t, err)

	n, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	s, err := m.Resolve(ctx, is.Token)
	require.NoError(t, err)
	assert.Equal(t, Authenticated, s.State)
}

func TestCookies(t *testing.T) {
	m, _ := setup(t)
	exp := time.Now().Add(time.Hour)
	c := m.Cookie(Issued{Token: "tok", Expires: exp})
	assert.Equal(t, "session", c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)

	cl := m.ClearCookie()
	assert.Equal(t, -1, cl.MaxAge)
	assert.Empty(t, cl.Value)
}
