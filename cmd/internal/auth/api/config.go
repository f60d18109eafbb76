package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// DefaultExcludedPaths are reachable without credentials.
var DefaultExcludedPaths = []string{
	"/api/v1/status/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
	"/api/v1/auth_session/login/",
}

// Config controls cookie attributes and request limits.
type Config struct {
	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite
	MaxBodyBytes   int64
}

// DefaultConfig returns a config suitable for plain-HTTP development.
func DefaultConfig() Config {
	return Config{
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		MaxBodyBytes:   1 << 20,
	}
}

// LoadConfigFromEnv reads WARDEN_COOKIE_SECURE and WARDEN_AUTH_MAX_BODY_BYTES.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.CookieSecure = envBool("WARDEN_COOKIE_SECURE", false)
	cfg.MaxBodyBytes = envInt64("WARDEN_AUTH_MAX_BODY_BYTES", cfg.MaxBodyBytes)
	return cfg
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
