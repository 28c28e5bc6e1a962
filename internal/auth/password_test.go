package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/julo-ch/www/internal/model"
)

func TestAuthenticate(t *testing.T) {
	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{Email: "a@x.com", PasswordHash: hash}

	assert.True(t, Authenticate(u, "secret"))
	for _, wrong := range []string{"", "Secret", "secret ", "secret2", "s"} {
		assert.False(t, Authenticate(u, wrong), wrong)
	}
}

func TestAuthenticate_NilOrBrokenUser(t *testing.T) {
	assert.False(t, Authenticate(nil, "secret"))
	assert.False(t, Authenticate(&model.User{}, ""))
	assert.False(t, Authenticate(&model.User{PasswordHash: "5ebe2294ecd0e0f08eab7690d2a6ee69"}, "secret"))
}

func TestVerify(t *testing.T) {
	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{PasswordHash: hash}

	assert.True(t, Verify(u, "secret", bcrypt.MinCost))
	assert.False(t, Verify(u, "nope", bcrypt.MinCost))
	assert.False(t, Verify(nil, "secret", bcrypt.MinCost))
	assert.False(t, Verify(nil, "dummy password", bcrypt.MinCost))
}

func TestDummyDigest_UsesConfiguredCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost + 1} {
		got, err := bcrypt.Cost(dummyDigest(cost))
		require.NoError(t, err)
		assert.Equal(t, cost, got)
	}
	got, err := bcrypt.Cost(dummyDigest(0))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, got)
	assert.Same(t, &dummyDigest(bcrypt.MinCost)[0], &dummyDigest(bcrypt.MinCost)[0])
}

func TestHashPassword_IsFixedLengthDigest(t *testing.T) {
	for _, pw := range []string{"a", "secret", "correct horse battery staple", "ünïcødé"} {
		hash, err := HashPassword(pw, bcrypt.MinCost)
		require.NoError(t, err)
		assert.Len(t, hash, DigestLen)
		assert.NotEqual(t, pw, hash)
		if len(pw) >= 6 {
			assert.NotContains(t, hash, pw)
		}
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
