package identity

import (
	"context"
	"time"
)

// User is the principal a request resolves to.
// PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName returns "First Last", falling back to the email.
func (u User) DisplayName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Finder looks users up by email. Several users may share an email;
// implementations return all of them in a stable order.
type Finder interface {
	FindByEmail(ctx context.Context, email string) ([]User, error)
}

// Getter loads a single user by ID. A missing user is ErrNotFound.
type Getter interface {
	GetByID(ctx context.Context, id string) (User, error)
}

// Store is the read boundary the auth engine consumes.
type Store interface {
	Finder
	Getter
}
