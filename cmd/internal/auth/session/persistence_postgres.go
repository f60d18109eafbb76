package session

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPersistence stores session rows in <schema>.user_sessions.
//
// The pool is owned by the caller.
type PostgresPersistence struct {
	pool   *pgxpool.Pool
	schema string
}

var pgSchemaRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// NewPostgresPersistence validates schema (default "warden") and returns the store.
func NewPostgresPersistence(pool *pgxpool.Pool, schema string) (*PostgresPersistence, error) {
	if pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = "warden"
	}
	if !pgSchemaRe.MatchString(schema) {
		return nil, fmt.Errorf("session: invalid schema identifier")
	}
	return &PostgresPersistence{pool: pool, schema: schema}, nil
}

func (p *PostgresPersistence) table() string {
	return pgx.Identifier{p.schema, "user_sessions"}.Sanitize()
}

// Migrate creates the schema and table if missing.
func (p *PostgresPersistence) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+pgx.Identifier{p.schema}.Sanitize()); err != nil {
		return fmt.Errorf("session: create schema: %w", err)
	}
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+p.table()+` (
			id         text PRIMARY KEY,
			session_id text NOT NULL,
			user_id    text NOT NULL,
			created_at timestamptz NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("session: create table: %w", err)
	}
	for _, col := range []string{"session_id", "user_id"} {
		idx := pgx.Identifier{"user_sessions_" + col + "_idx"}.Sanitize()
		if _, err := p.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS `+idx+` ON `+p.table()+` (`+col+`)`); err != nil {
			return fmt.Errorf("session: create index: %w", err)
		}
	}
	return nil
}

// Insert writes row.
func (p *PostgresPersistence) Insert(ctx context.Context, row Row) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO `+p.table()+` (id, session_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, row.ID, row.SessionID, row.UserID, row.CreatedAt)
	return err
}

// FindBy returns rows where field equals value, oldest first.
func (p *PostgresPersistence) FindBy(ctx context.Context, field Field, value string) ([]Row, error) {
	if !field.Valid() {
		return nil, ErrUnknownField
	}

	// field is one of two constants; it is never user input.
	rows, err := p.pool.Query(ctx, `
		SELECT id, session_id, user_id, created_at
		FROM `+p.table()+`
		WHERE `+string(field)+` = $1
		ORDER BY created_at, id
	`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.SessionID, &r.UserID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes row by its surrogate key.
func (p *PostgresPersistence) Delete(ctx context.Context, row Row) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM `+p.table()+` WHERE id = $1`, row.ID)
	return err
}
