package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"warden/cmd/identity/ids"
)

// MemoryStore is an in-process user table for development and tests.
// It tolerates duplicate emails; FindByEmail returns them in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]User
	order []string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]User)}
}

// Add inserts u. A missing ID is filled with a ULID and a zero CreatedAt with now.
func (s *MemoryStore) Add(u User) (User, error) {
	const op = "identity.MemoryStore.Add"

	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
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

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; ok {
		return User{}, OpError{Op: op, Kind: ErrConflict, Msg: "id"}
	}
	s.byID[u.ID] = u
	s.order = append(s.order, u.ID)
	return u, nil
}

// Remove deletes a user by ID. Sessions that reference it are left alone.
func (s *MemoryStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of users.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// FindByEmail returns every user whose normalized email matches.
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	norm := NormalizeEmail(email)
	if norm == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []User
	for _, id := range s.order {
		u := s.byID[id]
		if NormalizeEmail(u.Email) == norm {
			out = append(out, u)
		}
	}
	return out, nil
}

// GetByID returns the user with the given ID.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	u, ok := s.byID[id]
	s.mu.RUnlock()

	if !ok {
		return User{}, NotFoundError{Op: "identity.MemoryStore.GetByID", Resource: "user"}
	}
	return u, nil
}
