package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"warden/cmd/identity/ids"
)

// PostgresStore reads users from PostgreSQL.
//
// The pgx pool is owned by the caller; this store must NOT close it.
// Schema/table identifiers are quoted with pgx.Identifier.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "warden").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "warden",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// Migrate creates the users table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	users := pgIdent(s.schema, "users")
	_, err := s.pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+pgx.Identifier{s.schema}.Sanitize())
	if err != nil {
		return fmt.Errorf("identity: create schema: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+users+` (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL,
			email_norm    TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("identity: create users table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS users_email_norm_idx ON `+users+` (email_norm)`)
	if err != nil {
		return fmt.Errorf("identity: create users index: %w", err)
	}
	return nil
}

// Insert adds a user row. Missing ID and CreatedAt are filled in.
func (s *PostgresStore) Insert(ctx context.Context, u User) (User, error) {
	const op = "identity.PostgresStore.Insert"

	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" || u.PasswordHash == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email and password hash are required"}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.ID == "" {
		id, err := ids.NewULID(u.CreatedAt)
		if err != nil {
			return User{}, err
		}
		u.ID = id
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+pgIdent(s.schema, "users")+` (
			id, email, email_norm, password_hash, first_name, last_name, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, NormalizeEmail(u.Email), u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt,
	)
	if err != nil {
		if pgIsUniqueViolation(err) {
			return User{}, OpError{Op: op, Kind: ErrConflict, Msg: "id"}
		}
		return User{}, err
	}
	return u, nil
}

// FindByEmail returns all users with the given normalized email, oldest first.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) ([]User, error) {
	norm := NormalizeEmail(email)
	if norm == "" {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at
		FROM `+pgIdent(s.schema, "users")+`
		WHERE email_norm = $1
		ORDER BY created_at, id`, norm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByID loads one user.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	const op = "identity.PostgresStore.GetByID"

	if strings.TrimSpace(id) == "" {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}

	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at
		FROM `+pgIdent(s.schema, "users")+`
		WHERE id = $1`, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgIsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
