package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// CachedStore puts a bigcache in front of GetByID.
//
// FindByEmail is never cached: it feeds password verification and must see
// the current hash. Cached entries may outlive a deleted user until the
// eviction window passes or Invalidate is called.
type CachedStore struct {
	inner Store
	cache *bigcache.BigCache
}

// NewCachedStore wraps inner with a cache whose entries live for ttl.
func NewCachedStore(ctx context.Context, inner Store, ttl time.Duration) (*CachedStore, error) {
	if inner == nil {
		return nil, OpError{Op: "identity.NewCachedStore", Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false
	cfg.Shards = 64
	cfg.CleanWindow = ttl

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

// FindByEmail delegates to the wrapped store.
func (s *CachedStore) FindByEmail(ctx context.Context, email string) ([]User, error) {
	return s.inner.FindByEmail(ctx, email)
}

// GetByID serves from cache when possible and fills it on a miss.
func (s *CachedStore) GetByID(ctx context.Context, id string) (User, error) {
	if buf, err := s.cache.Get(id); err == nil {
		var u cachedUser
		if jerr := json.Unmarshal(buf, &u); jerr == nil {
			return u.user(), nil
		}
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		return User{}, err
	}

	u, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if buf, err := json.Marshal(newCachedUser(u)); err == nil {
		_ = s.cache.Set(id, buf)
	}
	return u, nil
}

// Invalidate drops a cached user.
func (s *CachedStore) Invalidate(id string) {
	_ = s.cache.Delete(id)
}

// Close releases the cache.
func (s *CachedStore) Close() error {
	return s.cache.Close()
}

// cachedUser keeps the hash, which User's JSON form drops.
type cachedUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func newCachedUser(u User) cachedUser {
	return cachedUser{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		CreatedAt:    u.CreatedAt,
	}
}

func (c cachedUser) user() User {
	return User{
		ID:           c.ID,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		CreatedAt:    c.CreatedAt,
	}
}
