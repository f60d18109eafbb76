package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"warden/cmd/identity/ids"
)

// Integration tests are enabled when WARDEN_DATABASE_URL / WARDEN_REDIS_ADDR are set.
// Unreachable services skip to keep local runs fast.

func TestPostgresPersistence_Backend(t *testing.T) {
	t.Parallel()

	dbURL := strings.TrimSpace(os.Getenv("WARDEN_DATABASE_URL"))
	if dbURL == "" {
		t.Skip("WARDEN_DATABASE_URL is not set; skipping Postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("postgres unreachable: %v", err)
	}

	rid, err := ids.NewULID(time.Now())
	if err != nil {
		t.Fatalf("ulid: %v", err)
	}
	schema := fmt.Sprintf("warden_test_%s", strings.ToLower(rid))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DROP SCHEMA IF EXISTS `+pgx.Identifier{schema}.Sanitize()+` CASCADE`)
	})

	p, err := NewPostgresPersistence(pool, schema)
	if err != nil {
		t.Fatalf("NewPostgresPersistence: %v", err)
	}
	if err := p.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	exerciseBackend(ctx, t, NewPersistent(p))

	if _, err := p.FindBy(ctx, Field("nope"), "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestRedisPersistence_Backend(t *testing.T) {
	t.Parallel()

	addr := strings.TrimSpace(os.Getenv("WARDEN_REDIS_ADDR"))
	if addr == "" {
		t.Skip("WARDEN_REDIS_ADDR is not set; skipping Redis integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("WARDEN_REDIS_PASSWORD")})
	defer func() { _ = client.Close() }()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}

	rid, err := ids.NewULID(time.Now())
	if err != nil {
		t.Fatalf("ulid: %v", err)
	}
	p := NewRedisPersistence(client, "warden_test:"+rid+":")

	exerciseBackend(ctx, t, NewPersistent(p))

	if _, err := p.FindBy(ctx, Field("nope"), "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func exerciseBackend(ctx context.Context, t *testing.T, st *Persistent) {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec, err := st.Create(ctx, now, "42")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := st.Lookup(ctx, rec.SessionID)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.UserID != "42" || !got.CreatedAt.Equal(now) {
		t.Fatalf("Lookup: unexpected %+v", got)
	}

	recs, err := st.SessionsForUser(ctx, "42")
	if err != nil || len(recs) != 1 {
		t.Fatalf("SessionsForUser: %v %v", recs, err)
	}

	if removed, err := st.Destroy(ctx, rec.SessionID); err != nil || !removed {
		t.Fatalf("Destroy: %v %v", removed, err)
	}
	if _, err := st.Lookup(ctx, rec.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if removed, err := st.Destroy(ctx, rec.SessionID); err != nil || removed {
		t.Fatalf("second Destroy: %v %v", removed, err)
	}
}
