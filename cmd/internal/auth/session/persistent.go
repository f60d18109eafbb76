package session

import (
	"context"
	"time"

	"warden/cmd/identity/ids"
)

// Field names a column Persistence can be queried by.
type Field string

const (
	FieldSessionID Field = "session_id"
	FieldUserID    Field = "user_id"
)

// Valid reports whether f is a supported field.
func (f Field) Valid() bool {
	return f == FieldSessionID || f == FieldUserID
}

// Row is the durable form of a session record. ID is a ULID surrogate key.
type Row struct {
	ID        string
	SessionID string
	UserID    string
	CreatedAt time.Time
}

func (r Row) record() Record {
	return Record{SessionID: r.SessionID, UserID: r.UserID, CreatedAt: r.CreatedAt}
}

// Persistence is the durable row store Persistent writes through to.
// FindBy returns ErrUnknownField for anything but FieldSessionID or FieldUserID.
type Persistence interface {
	Insert(ctx context.Context, row Row) error
	FindBy(ctx context.Context, field Field, value string) ([]Row, error)
	Delete(ctx context.Context, row Row) error
}

// Persistent is a Backend over a Persistence. Failures from the
// persistence layer are returned as is; nothing is retried.
type Persistent struct {
	p Persistence
}

// NewPersistent returns a Backend writing through to p.
func NewPersistent(p Persistence) *Persistent {
	return &Persistent{p: p}
}

// Create inserts a new row. If the insert fails no session exists.
func (s *Persistent) Create(ctx context.Context, now time.Time, userID string) (Record, error) {
	if userID == "" {
		return Record{}, ErrInvalidUserID
	}

	sid, err := NewID()
	if err != nil {
		return Record{}, err
	}
	rowID, err := ids.NewULID(now)
	if err != nil {
		return Record{}, err
	}

	row := Row{ID: rowID, SessionID: sid, UserID: userID, CreatedAt: now}
	if err := s.p.Insert(ctx, row); err != nil {
		return Record{}, err
	}
	return row.record(), nil
}

// Lookup returns the first row matching sessionID.
func (s *Persistent) Lookup(ctx context.Context, sessionID string) (Record, error) {
	row, ok, err := s.first(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrSessionNotFound
	}
	return row.record(), nil
}

// Destroy deletes the first row matching sessionID.
func (s *Persistent) Destroy(ctx context.Context, sessionID string) (bool, error) {
	row, ok, err := s.first(ctx, sessionID)
	if err != nil || !ok {
		return false, err
	}
	if err := s.p.Delete(ctx, row); err != nil {
		return false, err
	}
	return true, nil
}

// SessionsForUser lists every durable session of userID.
func (s *Persistent) SessionsForUser(ctx context.Context, userID string) ([]Record, error) {
	if userID == "" {
		return nil, nil
	}
	rows, err := s.p.FindBy(ctx, FieldUserID, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (s *Persistent) first(ctx context.Context, sessionID string) (Row, bool, error) {
	if sessionID == "" {
		return Row{}, false, nil
	}
	rows, err := s.p.FindBy(ctx, FieldSessionID, sessionID)
	if err != nil {
		return Row{}, false, err
	}
	if len(rows) == 0 {
		return Row{}, false, nil
	}
	return rows[0], true, nil
}
