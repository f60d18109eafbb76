package session

import "errors"

var (
	// ErrInvalidUserID is returned by Create when the user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrSessionNotFound is returned when no record matches a session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a record exists but is older than the TTL.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnknownField is returned by Persistence.FindBy for an unsupported field.
	ErrUnknownField = errors.New("unknown session field")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
