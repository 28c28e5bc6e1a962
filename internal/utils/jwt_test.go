package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	tok, err := NewSessionToken("k", 42, time.Hour)
	require.NoError(t, err)
	assert.Len(t, tok.Raw, 64)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	uid, raw, err := ParseSessionToken("k", tok.Signed)
	require.NoError(t, err)
	assert.EqualValues(t, 42, uid)
	assert.Equal(t, tok.Raw, raw)
}

func TestParseSessionToken_Rejects(t *testing.T) {
	good, err := NewSessionToken("k", 1, time.Hour)
	require.NoError(t, err)
	expired, err := NewSessionToken("k", 1, -time.Minute)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "1", ID: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1", ID: "x"}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice", ID: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	cases := map[string]struct{ secret, token string }{
		"wrong secret": {"other", good.Signed},
		"expired":      {"k", expired.Signed},
		"alg none":     {"k", none},
		"no exp":       {"k", noExp},
		"bad subject":  {"k", badSubject},
		"garbage":      {"k", "not-a-jwt"},
		"empty":        {"k", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseSessionToken(tc.secret, tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("abc"))
	assert.NotEqual(t, h, HashToken("abd"))
}
