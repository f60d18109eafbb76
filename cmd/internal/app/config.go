package app

import (
	"time"

	authapi "warden/cmd/internal/auth/api"
)

// Session persistence backends for session_db_auth.
const (
	SessionStorePostgres = "postgres"
	SessionStoreSQLite   = "sqlite"
	SessionStoreRedis    = "redis"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	DBSchema    string
	DBMigrate   bool

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	// AuthType is the raw AUTH_TYPE value; empty disables the gate.
	AuthType          string
	AuthExcludedPaths []string

	SessionStore      string
	SessionSQLitePath string
	RedisAddr         string
	RedisPassword     string
	RedisPrefix       string

	UsersFile    string
	UserCacheTTL time.Duration
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("WARDEN_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("WARDEN_LOG_LEVEL", "info"),
		LogFormat: EnvString("WARDEN_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("WARDEN_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("WARDEN_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("WARDEN_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("WARDEN_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("WARDEN_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("WARDEN_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("WARDEN_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("WARDEN_DB_MIN_CONNS", 0),
		DBSchema:    EnvString("WARDEN_DB_SCHEMA", "warden"),
		DBMigrate:   EnvBool("WARDEN_DB_MIGRATE", true),

		ReadinessRequireDB: EnvBool("WARDEN_READINESS_REQUIRE_DB", false),

		AuthType:          EnvString("AUTH_TYPE", ""),
		AuthExcludedPaths: EnvList("WARDEN_AUTH_EXCLUDED_PATHS", authapi.DefaultExcludedPaths),

		SessionStore:      EnvString("WARDEN_SESSION_STORE", SessionStoreSQLite),
		SessionSQLitePath: EnvString("WARDEN_SESSION_SQLITE_PATH", "data/sessions.db"),
		RedisAddr:         EnvString("WARDEN_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:     EnvString("WARDEN_REDIS_PASSWORD", ""),
		RedisPrefix:       EnvString("WARDEN_REDIS_PREFIX", "warden:"),

		UsersFile:    EnvString("WARDEN_USERS_FILE", ""),
		UserCacheTTL: EnvDuration("WARDEN_USER_CACHE_TTL", time.Minute),
	}
}
