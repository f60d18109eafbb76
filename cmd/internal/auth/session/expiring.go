package session

import (
	"context"
	"time"

	"github.com/thejerf/abtime"
)

// Expiring wraps a Backend with a time-to-live.
//
// Create stamps records with the clock's time, ignoring the caller's now.
// Lookup fails with ErrSessionExpired once a record is strictly older than
// the TTL. A TTL <= 0 disables expiry.
type Expiring struct {
	Backend
	ttl   time.Duration
	clock abtime.AbstractTime
}

// NewExpiring wraps b. A nil clock uses real time.
func NewExpiring(b Backend, ttl time.Duration, clock abtime.AbstractTime) *Expiring {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &Expiring{Backend: b, ttl: ttl, clock: clock}
}

// TTL returns the configured lifetime.
func (e *Expiring) TTL() time.Duration { return e.ttl }

// Create delegates with the current clock time.
func (e *Expiring) Create(ctx context.Context, _ time.Time, userID string) (Record, error) {
	return e.Backend.Create(ctx, e.clock.Now(), userID)
}

// Lookup returns the record if it has not outlived the TTL.
// Expired records are left in place.
func (e *Expiring) Lookup(ctx context.Context, sessionID string) (Record, error) {
	rec, err := e.Backend.Lookup(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	if e.ttl <= 0 {
		return rec, nil
	}
	if rec.CreatedAt.IsZero() {
		return Record{}, ErrSessionExpired
	}
	if e.clock.Now().Sub(rec.CreatedAt) > e.ttl {
		return Record{}, ErrSessionExpired
	}
	return rec, nil
}
