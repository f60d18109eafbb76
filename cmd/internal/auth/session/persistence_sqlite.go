package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLitePersistence stores session rows in a local SQLite file.
// created_at is kept as unix nanoseconds.
type SQLitePersistence struct {
	db *sql.DB
}

// OpenSQLitePersistence opens (creating if needed) the database at path and migrates it.
func OpenSQLitePersistence(ctx context.Context, path string) (*SQLitePersistence, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("session: create sqlite dir %v: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%v?_journal=wal&_busy_timeout=5000&mode=rwc", path))
	if err != nil {
		return nil, fmt.Errorf("session: open sqlite %v: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: ping sqlite %v: %w", path, err)
	}

	p := &SQLitePersistence{db: db}
	if err := p.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

// Migrate creates the user_sessions table if missing.
func (p *SQLitePersistence) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		create table if not exists user_sessions(
			id text primary key,
			session_id text not null,
			user_id text not null,
			created_at integer not null
		);
		create index if not exists user_sessions_session_id_idx on user_sessions(session_id);
		create index if not exists user_sessions_user_id_idx on user_sessions(user_id);
	`)
	if err != nil {
		return fmt.Errorf("session: migrate sqlite: %w", err)
	}
	return nil
}

// Close closes the database.
func (p *SQLitePersistence) Close() error {
	return p.db.Close()
}

// Insert writes row.
func (p *SQLitePersistence) Insert(ctx context.Context, row Row) error {
	_, err := p.db.ExecContext(ctx,
		`insert into user_sessions(id, session_id, user_id, created_at) values(?, ?, ?, ?)`,
		row.ID, row.SessionID, row.UserID, row.CreatedAt.UnixNano())
	return err
}

// FindBy returns rows where field equals value, oldest first.
func (p *SQLitePersistence) FindBy(ctx context.Context, field Field, value string) ([]Row, error) {
	if !field.Valid() {
		return nil, ErrUnknownField
	}

	rows, err := p.db.QueryContext(ctx,
		`select id, session_id, user_id, created_at from user_sessions where `+string(field)+` = ? order by created_at, id`,
		value)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		var (
			r  Row
			ns int64
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.UserID, &ns); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(0, ns).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes row by its surrogate key.
func (p *SQLitePersistence) Delete(ctx context.Context, row Row) error {
	_, err := p.db.ExecContext(ctx, `delete from user_sessions where id = ?`, row.ID)
	return err
}
