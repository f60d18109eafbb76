package password

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Scheme names a hash encoding.
type Scheme string

const (
	SchemeArgon2id Scheme = "argon2id"
	SchemeBcrypt   Scheme = "bcrypt"
)

// Argon2idParams controls Argon2id cost. MemoryKiB is in KiB.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy bounds password length, counted in runes.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config selects the scheme new hashes use and the cost of each.
type Config struct {
	Scheme     Scheme
	Argon2     Argon2idParams
	BcryptCost int
	Policy     Policy
}

// DefaultConfig hashes with Argon2id at 64 MiB and three passes.
func DefaultConfig() Config {
	threads := runtime.NumCPU()
	if threads < 1 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Scheme: SchemeArgon2id,
		Argon2: Argon2idParams{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4].
			SaltLength:  16,
			KeyLength:   32,
		},
		BcryptCost: bcrypt.DefaultCost,
		Policy:     Policy{MinLength: 8, MaxLength: 256},
	}
}

// FromEnv overrides DefaultConfig from:
//
//   - WARDEN_PASSWORD_SCHEME (argon2id|bcrypt)
//   - WARDEN_PASSWORD_MIN_LEN, WARDEN_PASSWORD_MAX_LEN
//   - WARDEN_BCRYPT_COST
//   - WARDEN_ARGON2_MEMORY_KIB, WARDEN_ARGON2_ITERATIONS, WARDEN_ARGON2_PARALLELISM
//   - WARDEN_ARGON2_SALT_LEN, WARDEN_ARGON2_KEY_LEN
//
// Unlike the server settings, a bad value here is an error.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("WARDEN_PASSWORD_SCHEME"); ok {
		s, err := ParseScheme(v)
		if err != nil {
			return Config{}, fmt.Errorf("WARDEN_PASSWORD_SCHEME: %w", err)
		}
		cfg.Scheme = s
	}

	ints := []struct {
		key      string
		min, max int
		dst      *int
	}{
		{"WARDEN_PASSWORD_MIN_LEN", 1, 1024, &cfg.Policy.MinLength},
		{"WARDEN_PASSWORD_MAX_LEN", 1, 4096, &cfg.Policy.MaxLength},
		{"WARDEN_BCRYPT_COST", bcrypt.MinCost, bcrypt.MaxCost, &cfg.BcryptCost},
	}
	for _, f := range ints {
		v, ok := os.LookupEnv(f.key)
		if !ok {
			continue
		}
		n, err := parseRange(v, uint64(f.min), uint64(f.max))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = int(n)
	}

	u32s := []struct {
		key      string
		min, max uint64
		dst      *uint32
	}{
		{"WARDEN_ARGON2_MEMORY_KIB", 8 * 1024, 1024 * 1024, &cfg.Argon2.MemoryKiB},
		{"WARDEN_ARGON2_ITERATIONS", 1, 20, &cfg.Argon2.Iterations},
		{"WARDEN_ARGON2_SALT_LEN", 8, 64, &cfg.Argon2.SaltLength},
		{"WARDEN_ARGON2_KEY_LEN", 16, 64, &cfg.Argon2.KeyLength},
	}
	for _, f := range u32s {
		v, ok := os.LookupEnv(f.key)
		if !ok {
			continue
		}
		n, err := parseRange(v, f.min, f.max)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = uint32(n) // #nosec G115 -- bounded by parseRange.
	}

	if v, ok := os.LookupEnv("WARDEN_ARGON2_PARALLELISM"); ok {
		n, err := parseRange(v, 1, math.MaxUint8)
		if err != nil {
			return Config{}, fmt.Errorf("WARDEN_ARGON2_PARALLELISM: %w", err)
		}
		cfg.Argon2.Parallelism = uint8(n) // #nosec G115 -- bounded by parseRange.
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf("password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength, cfg.Policy.MaxLength)
	}
	return cfg, nil
}

// ParseScheme accepts "argon2id" or "bcrypt", case-insensitively.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeArgon2id:
		return SchemeArgon2id, nil
	case SchemeBcrypt:
		return SchemeBcrypt, nil
	default:
		return "", ErrUnknownScheme
	}
}

func parseRange(s string, minVal, maxVal uint64) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	if n < minVal || n > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return n, nil
}
