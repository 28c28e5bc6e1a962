package utils // package utils provides helper functions for session token creation and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken is the value placed in the login cookie. Signed is the HS256
// JWT handed to the browser; Raw is the random session id carried in its
// `jti` claim. Only HashToken(Raw) is ever written to the database.
type SessionToken struct {
	Signed string
	Raw    string
	Exp    time.Time
}

// ErrInvalidToken covers every way a cookie value can fail verification.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs a session JWT for a user. The token
// carries the user ID as subject, a fresh 32 byte random id, and standard
// expiry/issued-at claims.
func NewSessionToken(secret string, userID uint64, ttl time.Duration) (SessionToken, error) {
	raw, err := randomHex(32) // 32 bytes -> 64 hex chars
	if err != nil {
		return SessionToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		ID:        raw,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Signed: signed, Raw: raw, Exp: exp}, nil
}

// ParseSessionToken verifies signature, algorithm and expiry and returns the
// user id and raw session id from the claims.
func ParseSessionToken(secret, signed string) (uint64, string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return 0, "", ErrInvalidToken
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 || claims.ID == "" {
		return 0, "", ErrInvalidToken
	}
	return uid, claims.ID, nil
}

// HashToken returns the SHA‑256 hash of a raw session id as a hex string.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
