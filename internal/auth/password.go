// Package auth checks submitted passwords against stored digests.
package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/julo-ch/www/internal/model"
)

// DigestLen is the length of every stored password digest.
const DigestLen = 60

// HashPassword returns a bcrypt digest using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Authenticate reports whether password matches the user's stored digest.
// A nil user, or a digest that is not a valid bcrypt string, is simply a
// mismatch.
func Authenticate(u *model.User, password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

var dummies sync.Map // cost -> []byte

// dummyDigest is a digest of a fixed string at the given cost,
// computed once per cost.
func dummyDigest(cost int) []byte {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if d, ok := dummies.Load(cost); ok {
		return d.([]byte)
	}
	d, err := bcrypt.GenerateFromPassword([]byte("dummy password"), cost)
	if err != nil {
		panic("auth: dummy digest: " + err.Error())
	}
	actual, _ := dummies.LoadOrStore(cost, d)
	return actual.([]byte)
}

// Verify is Authenticate for the login path. A nil user still pays for one
// comparison against a dummy digest of the given cost, so a miss on the
// lookup takes as long as a wrong password.
func Verify(u *model.User, password string, cost int) bool {
	if u == nil || u.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyDigest(cost), []byte(password))
		return false
	}
	return Authenticate(u, password)
}
