package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hash validates password against the policy and hashes it with c.Scheme.
func (c Config) Hash(password string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}

	switch c.Scheme {
	case SchemeArgon2id, "":
		return hashArgon2id(c.Argon2, password)
	case SchemeBcrypt:
		b, err := bcrypt.GenerateFromPassword([]byte(password), c.BcryptCost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", ErrUnknownScheme
	}
}

// Check reports whether password matches encoded. Malformed or unsupported
// hashes return ErrInvalidHash.
func (c Config) Check(password, encoded string) (bool, error) {
	switch SchemeOf(encoded) {
	case SchemeArgon2id:
		return checkArgon2id(c.Argon2, encoded, password)
	case SchemeBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, ErrInvalidHash
		}
	default:
		return false, ErrInvalidHash
	}
}

// Verify is Check with every failure collapsed to false.
func (c Config) Verify(password, encoded string) bool {
	ok, err := c.Check(password, encoded)
	return err == nil && ok
}

// SchemeOf names the scheme of an encoded hash, or "" if unrecognized.
func SchemeOf(encoded string) Scheme {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return SchemeArgon2id
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		return SchemeBcrypt
	default:
		return ""
	}
}
