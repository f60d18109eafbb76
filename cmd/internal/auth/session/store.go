package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one live session.
type Record struct {
	SessionID string
	UserID    string
	CreatedAt time.Time
}

// Backend stores session records.
//
// Lookup returns ErrSessionNotFound for an empty or unknown ID. Destroy
// reports whether a record was removed; destroying twice is not an error.
type Backend interface {
	Create(ctx context.Context, now time.Time, userID string) (Record, error)
	Lookup(ctx context.Context, sessionID string) (Record, error)
	Destroy(ctx context.Context, sessionID string) (bool, error)
}

// NewID returns a fresh random (v4) session ID.
func NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
