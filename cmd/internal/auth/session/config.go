package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCookieName is used when SESSION_NAME is unset.
const DefaultCookieName = "_my_session_id"

// Config holds session settings read once at startup.
type Config struct {
	// CookieName is the cookie carrying the session ID.
	CookieName string

	// Duration is the session TTL. Zero or negative never expires.
	Duration time.Duration
}

// DefaultConfig returns a config with no expiry.
func DefaultConfig() Config {
	return Config{CookieName: DefaultCookieName}
}

// LoadConfigFromEnv reads SESSION_NAME and SESSION_DURATION (integer seconds).
//
// A missing or malformed duration is treated as 0. It never fails.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("SESSION_NAME")); v != "" {
		cfg.CookieName = v
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_DURATION")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Duration = time.Duration(n) * time.Second
		}
	}
	return cfg
}

// Validate checks that the config can be used.
func (c Config) Validate() error {
	if c.CookieName == "" || strings.ContainsAny(c.CookieName, " ;,=\t\r\n") {
		return ErrConfig
	}
	return nil
}
