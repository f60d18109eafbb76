package strategy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"warden/cmd/identity"
	"warden/cmd/internal/auth/credential"
	"warden/cmd/internal/auth/session"
)

// Kind names a strategy as selected by AUTH_TYPE.
type Kind string

const (
	KindNone            Kind = ""
	KindBase            Kind = "auth"
	KindBasic           Kind = "basic_auth"
	KindSession         Kind = "session_auth"
	KindExpiringSession Kind = "session_exp_auth"
	KindPersisted       Kind = "session_db_auth"
)

var (
	// ErrUnknownKind is returned for an unrecognized AUTH_TYPE.
	ErrUnknownKind = errors.New("unknown auth type")

	// ErrMissingDependency is returned when a kind's collaborator is nil.
	ErrMissingDependency = errors.New("missing strategy dependency")
)

// ParseKind maps an AUTH_TYPE value to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	switch k {
	case KindNone, KindBase, KindBasic, KindSession, KindExpiringSession, KindPersisted:
		return k, nil
	default:
		return KindNone, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// IsSession reports whether k manages sessions.
func (k Kind) IsSession() bool {
	return k == KindSession || k == KindExpiringSession || k == KindPersisted
}

// Config selects and parameterizes a strategy.
type Config struct {
	Kind     Kind
	Excluded []string
	Session  session.Config
}

// LoadConfigFromEnv reads AUTH_TYPE and the session settings.
// excluded is used as the exclusion list.
func LoadConfigFromEnv(excluded []string) (Config, error) {
	k, err := ParseKind(os.Getenv("AUTH_TYPE"))
	if err != nil {
		return Config{}, err
	}
	return Config{Kind: k, Excluded: excluded, Session: session.LoadConfigFromEnv()}, nil
}

// Deps are the collaborators a strategy may need.
type Deps struct {
	Users       identity.Store
	Verify      credential.VerifyFunc
	Persistence session.Persistence
	Options     []Option
}

// New builds the strategy cfg names. KindNone returns a nil Strategy.
func New(cfg Config, deps Deps) (Strategy, error) {
	if cfg.Kind != KindNone {
		if err := cfg.Session.Validate(); err != nil {
			return nil, err
		}
	}
	base := NewBase(cfg.Excluded, cfg.Session.CookieName)

	switch cfg.Kind {
	case KindNone:
		return nil, nil
	case KindBase:
		return base, nil
	case KindBasic:
		if deps.Users == nil || deps.Verify == nil {
			return nil, fmt.Errorf("%w: basic_auth needs users and a verifier", ErrMissingDependency)
		}
		return NewBasic(base, deps.Users, deps.Verify), nil
	case KindSession:
		if deps.Users == nil {
			return nil, fmt.Errorf("%w: session_auth needs users", ErrMissingDependency)
		}
		return NewSession(base, deps.Users, deps.Options...), nil
	case KindExpiringSession:
		if deps.Users == nil {
			return nil, fmt.Errorf("%w: session_exp_auth needs users", ErrMissingDependency)
		}
		return NewExpiringSession(base, deps.Users, cfg.Session.Duration, deps.Options...), nil
	case KindPersisted:
		if deps.Users == nil || deps.Persistence == nil {
			return nil, fmt.Errorf("%w: session_db_auth needs users and persistence", ErrMissingDependency)
		}
		return NewPersistedSession(base, deps.Users, cfg.Session.Duration, deps.Persistence, deps.Options...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
