package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"warden/cmd/identity"
	"warden/cmd/internal/auth/session"
)

type closer func() error

// openUsers picks the user source: Postgres (optionally cached) when a pool
// exists, otherwise the users file, otherwise an empty in-memory store.
func openUsers(ctx context.Context, log Logger, cfg Config, pool *pgxpool.Pool) (identity.Store, []closer, error) {
	if pool != nil {
		pg, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
		if err != nil {
			return nil, nil, err
		}
		if cfg.DBMigrate {
			if err := pg.Migrate(ctx); err != nil {
				return nil, nil, fmt.Errorf("migrate users: %w", err)
			}
		}
		if cfg.UserCacheTTL <= 0 {
			log.Info("users.source", "kind", "postgres")
			return pg, nil, nil
		}
		cached, err := identity.NewCachedStore(ctx, pg, cfg.UserCacheTTL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("users.source", "kind", "postgres", "cache_ttl", cfg.UserCacheTTL.String())
		return cached, []closer{cached.Close}, nil
	}

	if cfg.UsersFile != "" {
		st, err := identity.LoadUsersFile(cfg.UsersFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load users file: %w", err)
		}
		log.Info("users.source", "kind", "file", "path", cfg.UsersFile, "count", st.Len())
		return st, nil, nil
	}

	log.Warn("users.source.empty", "hint", "set WARDEN_DATABASE_URL or WARDEN_USERS_FILE")
	return identity.NewMemoryStore(), nil, nil
}

// openPersistence builds the session table backend named by cfg.SessionStore.
func openPersistence(ctx context.Context, log Logger, cfg Config, pool *pgxpool.Pool) (session.Persistence, []closer, error) {
	switch cfg.SessionStore {
	case SessionStorePostgres:
		if pool == nil {
			return nil, nil, fmt.Errorf("session store %q needs WARDEN_DATABASE_URL", cfg.SessionStore)
		}
		p, err := session.NewPostgresPersistence(pool, cfg.DBSchema)
		if err != nil {
			return nil, nil, err
		}
		if cfg.DBMigrate {
			if err := p.Migrate(ctx); err != nil {
				return nil, nil, fmt.Errorf("migrate sessions: %w", err)
			}
		}
		log.Info("sessions.store", "kind", cfg.SessionStore, "schema", cfg.DBSchema)
		return p, nil, nil

	case SessionStoreSQLite:
		p, err := session.OpenSQLitePersistence(ctx, cfg.SessionSQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sessions.store", "kind", cfg.SessionStore, "path", cfg.SessionSQLitePath)
		return p, []closer{p.Close}, nil

	case SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Info("sessions.store", "kind", cfg.SessionStore, "addr", cfg.RedisAddr)
		return session.NewRedisPersistence(client, cfg.RedisPrefix), []closer{client.Close}, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}
