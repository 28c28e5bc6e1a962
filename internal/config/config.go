package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers understood by database.Open.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; nested structs group the satellite settings.
type Config struct {
	Env        string // application environment (e.g. "dev", "prod")
	Port       string // HTTP port to listen on
	Debug      bool   // debug logging and echo debug mode
	DB         DBConfig
	Session    SessionConfig
	Site       SiteConfig
	Mail       MailConfig
	BcryptCost int // bcrypt cost for password hashing

	// TrustedProxies are the networks whose X-Forwarded-For header is
	// believed. Empty means the peer address is the client address.
	TrustedProxies []*net.IPNet
}

// DBConfig selects the store. MySQL uses the discrete connection fields,
// SQLite only needs a file path (":memory:" is accepted).
type DBConfig struct {
	Driver string
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	Path   string
}

// SessionConfig controls the login cookie.
type SessionConfig struct {
	Secret       string        // HMAC secret used to sign session JWTs
	TTL          time.Duration // lifetime of a login session
	CookieName   string
	CookieSecure bool          // send the cookie over HTTPS only
	PurgeEvery   time.Duration // interval of the expired-session sweeper
	HashCost     int           // bcrypt cost of the digest compared on unknown logins
}

// SiteConfig carries the values shown in templates and the Atom feed.
type SiteConfig struct {
	Title            string
	Subtitle         string
	ContactRecipient string
}

// Load reads configuration from the environment (after merging an optional
// .env file) and exits the process on invalid configuration.
func Load() Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment. Every problem found
// is reported, not only the first one.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		Env:        getenv("APP_ENV", "dev"),
		Port:       getenv("APP_PORT", "5000"),
		Debug:      envBool("APP_DEBUG", false),
		BcryptCost: envInt("BCRYPT_COST", 12),
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
			User:   os.Getenv("DB_USER"),
			Pass:   os.Getenv("DB_PASS"),
			Host:   getenv("DB_HOST", "127.0.0.1"),
			Port:   getenv("DB_PORT", "3306"),
			Name:   os.Getenv("DB_NAME"),
			Path:   getenv("DB_PATH", "/tmp/www.db"),
		},
		Session: SessionConfig{
			Secret:       os.Getenv("SESSION_SECRET"),
			TTL:          envDur("SESSION_TTL", 14*24*time.Hour),
			CookieName:   getenv("SESSION_COOKIE", "session"),
			CookieSecure: envBool("SESSION_COOKIE_SECURE", false),
			PurgeEvery:   envDur("SESSION_PURGE_EVERY", time.Hour),
		},
		Site: SiteConfig{
			Title:            getenv("SITE_TITLE", "julo.ch"),
			Subtitle:         getenv("SITE_SUBTITLE", "It's mine."),
			ContactRecipient: os.Getenv("CONTACT_RECIPIENT"),
		},
		Mail: LoadMailConfig(),
	}

	cfg.Session.HashCost = cfg.BcryptCost

	proxies, err := parseProxies(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.TrustedProxies = proxies

	switch cfg.DB.Driver {
	case DriverMySQL:
		for k, v := range map[string]string{"DB_USER": cfg.DB.User, "DB_NAME": cfg.DB.Name} {
			if v == "" {
				errs = append(errs, fmt.Errorf("missing required env var: %s", k))
			}
		}
	case DriverSQLite:
		if cfg.DB.Path == "" {
			errs = append(errs, errors.New("missing required env var: DB_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver))
	}
	if cfg.Session.Secret == "" {
		errs = append(errs, errors.New("missing required env var: SESSION_SECRET"))
	}
	if cfg.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("invalid BCRYPT_COST %d", cfg.BcryptCost))
	}
	if err := cfg.Mail.validate(); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// parseProxies reads a comma separated list of CIDRs or single addresses.
func parseProxies(v string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, f := range strings.Split(v, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !strings.Contains(f, "/") {
			ip := net.ParseIP(f)
			if ip == nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", f)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(f)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
