package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/www.db", cfg.DB.Path)
	assert.Equal(t, 14*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "session", cfg.Session.CookieName)
	assert.Equal(t, "julo.ch", cfg.Site.Title)
	assert.Equal(t, "It's mine.", cfg.Site.Subtitle)
	assert.Equal(t, MailLog, cfg.Mail.Delivery)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestFromEnv_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestFromEnv_MySQLRequiresCredentials(t *testing.T) {
	t.Setenv("SESSION_SECRET", "x")
	t.Setenv("DB_DRIVER", "MySQL")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "DB_NAME")

	t.Setenv("DB_USER", "www")
	t.Setenv("DB_NAME", "www")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.DB.Driver)
}

func TestFromEnv_RejectsUnknownValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", "x")
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("MAIL_DELIVERY", "pigeon")
	t.Setenv("BCRYPT_COST", "99")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
	assert.Contains(t, err.Error(), "pigeon")
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}

func TestFromEnv_TrustedProxies(t *testing.T) {
	t.Setenv("SESSION_SECRET", "x")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Len(t, cfg.TrustedProxies, 2)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedProxies[0].String())
	assert.Equal(t, "192.0.2.7/32", cfg.TrustedProxies[1].String())

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/99")
	_, err = FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUSTED_PROXIES")
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "yes")
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "90s")

	assert.True(t, envBool("X_BOOL", false))
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, 90*time.Second, envDur("X_DUR", time.Second))
	assert.Equal(t, "fallback", getenv("X_UNSET", "fallback"))
}

func TestLoadRateLimitConfig_Normalizes(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfig_Methods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}
