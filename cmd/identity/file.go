package identity

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadUsersFile seeds a MemoryStore from a JSON array of users.
//
// Each entry uses the User JSON fields plus "password_hash", which is the
// only place the hash is ever read from JSON.
func LoadUsersFile(path string) (*MemoryStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("identity: read users file: %w", err)
	}

	var entries []struct {
		User
		PasswordHash string `json:"password_hash"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("identity: decode users file: %w", err)
	}

	st := NewMemoryStore()
	for i, e := range entries {
		u := e.User
		u.PasswordHash = e.PasswordHash
		if _, err := st.Add(u); err != nil {
			return nil, fmt.Errorf("identity: users file entry %d: %w", i, err)
		}
	}
	return st, nil
}
