package session

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const defaultShards = 32

// MemoryStore is an in-process Backend. Records are spread across shards
// by a hash of the session ID, each shard behind its own lock.
type MemoryStore struct {
	shards []*memoryShard
}

type memoryShard struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty store. shards <= 0 uses the default.
func NewMemoryStore(shards int) *MemoryStore {
	if shards <= 0 {
		shards = defaultShards
	}
	s := &MemoryStore{shards: make([]*memoryShard, shards)}
	for i := range s.shards {
		s.shards[i] = &memoryShard{records: make(map[string]Record)}
	}
	return s
}

func (s *MemoryStore) shard(sessionID string) *memoryShard {
	return s.shards[xxhash.Sum64String(sessionID)%uint64(len(s.shards))]
}

// Create stores a new record for userID stamped with now.
func (s *MemoryStore) Create(ctx context.Context, now time.Time, userID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if userID == "" {
		return Record{}, ErrInvalidUserID
	}

	id, err := NewID()
	if err != nil {
		return Record{}, err
	}
	rec := Record{SessionID: id, UserID: userID, CreatedAt: now}

	sh := s.shard(id)
	sh.mu.Lock()
	sh.records[id] = rec
	sh.mu.Unlock()

	return rec, nil
}

// Lookup returns the record for sessionID.
func (s *MemoryStore) Lookup(ctx context.Context, sessionID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if sessionID == "" {
		return Record{}, ErrSessionNotFound
	}

	sh := s.shard(sessionID)
	sh.mu.RLock()
	rec, ok := sh.records[sessionID]
	sh.mu.RUnlock()

	if !ok {
		return Record{}, ErrSessionNotFound
	}
	return rec, nil
}

// Destroy removes the record for sessionID.
func (s *MemoryStore) Destroy(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if sessionID == "" {
		return false, nil
	}

	sh := s.shard(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.records[sessionID]; !ok {
		return false, nil
	}
	delete(sh.records, sessionID)
	return true, nil
}

// Len returns the number of stored records, expired ones included.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.records)
		sh.mu.RUnlock()
	}
	return n
}
