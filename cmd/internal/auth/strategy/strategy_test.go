package strategy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/thejerf/abtime"

	"warden/cmd/identity"
	"warden/cmd/internal/auth/credential"
	"warden/cmd/internal/auth/session"
)

func plainVerify(plain, hash string) bool { return hash == "hash:"+plain }

func seedUsers(t *testing.T) *identity.MemoryStore {
	t.Helper()

	st := identity.NewMemoryStore()
	for _, u := range []identity.User{
		{ID: "42", Email: "bob@example.com", PasswordHash: "hash:secret"},
		{ID: "43", Email: "alice@example.com", PasswordHash: "hash:pw"},
	} {
		if _, err := st.Add(u); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return st
}

func requestWith(header, cookieName, cookie string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: cookie})
	}
	return r
}

func TestBase_NeverIdentifies(t *testing.T) {
	t.Parallel()

	b := NewBase([]string{"/api/v1/status/"}, "")
	if b.CookieName() != session.DefaultCookieName {
		t.Fatalf("expected default cookie name, got %q", b.CookieName())
	}
	if b.RequiresAuth("/api/v1/status") {
		t.Fatalf("status must be excluded")
	}
	if !b.RequiresAuth("/api/v1/users") {
		t.Fatalf("users must require auth")
	}

	r := requestWith(credential.EncodeBasic("bob@example.com", "secret"), session.DefaultCookieName, "sid")
	if h, ok := b.AuthorizationHeader(r); !ok || h == "" {
		t.Fatalf("expected header to be extracted")
	}
	if c, ok := b.SessionCookie(r); !ok || c != "sid" {
		t.Fatalf("expected cookie to be extracted, got %q", c)
	}
	if _, ok := b.Identify(context.Background(), r); ok {
		t.Fatalf("Base must never identify")
	}
}

func TestBasic_Identify(t *testing.T) {
	t.Parallel()

	users := seedUsers(t)
	s := NewBasic(NewBase(nil, ""), users, plainVerify)
	ctx := context.Background()

	cases := []struct {
		name   string
		header string
		wantID string
	}{
		{name: "valid credentials", header: credential.EncodeBasic("bob@example.com", "secret"), wantID: "42"},
		{name: "case-insensitive email", header: credential.EncodeBasic("Bob@Example.com", "secret"), wantID: "42"},
		{name: "wrong password", header: credential.EncodeBasic("bob@example.com", "nope")},
		{name: "unknown user", header: credential.EncodeBasic("eve@example.com", "secret")},
		{name: "malformed base64", header: "Basic %%%"},
		{name: "bearer scheme", header: "Bearer abc"},
		{name: "no header"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, ok := s.Identify(ctx, requestWith(tc.header, "", ""))
			if tc.wantID == "" {
				if ok {
					t.Fatalf("expected no identity, got %+v", u)
				}
				return
			}
			if !ok || u.ID != tc.wantID {
				t.Fatalf("Identify()=%+v,%v want id %q", u, ok, tc.wantID)
			}
		})
	}
}

func TestSession_CreateResolveDestroy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewSession(NewBase(nil, "sid"), seedUsers(t))

	id, ok := s.CreateSession(ctx, "42")
	if !ok || id == "" {
		t.Fatalf("CreateSession failed")
	}
	if uid, ok := s.ResolveSession(ctx, id); !ok || uid != "42" {
		t.Fatalf("ResolveSession()=%q,%v", uid, ok)
	}

	u, ok := s.Identify(ctx, requestWith("", "sid", id))
	if !ok || u.ID != "42" {
		t.Fatalf("Identify()=%+v,%v", u, ok)
	}

	if !s.DestroySession(ctx, requestWith("", "sid", id)) {
		t.Fatalf("DestroySession should succeed")
	}
	if _, ok := s.ResolveSession(ctx, id); ok {
		t.Fatalf("destroyed session must not resolve")
	}
	if s.DestroySession(ctx, requestWith("", "sid", id)) {
		t.Fatalf("second DestroySession must be false")
	}
	if s.DestroySession(ctx, requestWith("", "", "")) {
		t.Fatalf("DestroySession without cookie must be false")
	}
}

func TestSession_RejectsEmptyInputs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewSession(NewBase(nil, ""), seedUsers(t))

	if _, ok := s.CreateSession(ctx, ""); ok {
		t.Fatalf("empty user id must not create a session")
	}
	if _, ok := s.ResolveSession(ctx, ""); ok {
		t.Fatalf("empty session id must not resolve")
	}
	if _, ok := s.ResolveSession(ctx, "never-issued"); ok {
		t.Fatalf("unknown session id must not resolve")
	}
}

func TestSession_UnknownUserIsNotIdentified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := seedUsers(t)
	s := NewSession(NewBase(nil, "sid"), users)

	id, ok := s.CreateSession(ctx, "43")
	if !ok {
		t.Fatalf("CreateSession failed")
	}
	users.Remove("43")

	if _, ok := s.Identify(ctx, requestWith("", "sid", id)); ok {
		t.Fatalf("session of a deleted user must not identify")
	}
}

func TestExpiringSession_UsesClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := abtime.NewManual()
	s := NewExpiringSession(NewBase(nil, "sid"), seedUsers(t), 2*time.Second, WithClock(clock))

	id, ok := s.CreateSession(ctx, "42")
	if !ok {
		t.Fatalf("CreateSession failed")
	}

	clock.Advance(time.Second)
	if _, ok := s.Identify(ctx, requestWith("", "sid", id)); !ok {
		t.Fatalf("session should be valid at t=1s")
	}

	clock.Advance(2 * time.Second)
	if _, ok := s.Identify(ctx, requestWith("", "sid", id)); ok {
		t.Fatalf("session should be expired at t=3s")
	}

	// Lazy expiry: still destroyable.
	if !s.DestroySession(ctx, requestWith("", "sid", id)) {
		t.Fatalf("expired session should still be destroyable")
	}
}

func TestExpiringSession_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := abtime.NewManual()
	s := NewExpiringSession(NewBase(nil, "sid"), seedUsers(t), 0, WithClock(clock))

	id, ok := s.CreateSession(ctx, "42")
	if !ok {
		t.Fatalf("CreateSession failed")
	}
	clock.Advance(100 * 365 * 24 * time.Hour)
	if uid, ok := s.ResolveSession(ctx, id); !ok || uid != "42" {
		t.Fatalf("zero TTL session expired: %q,%v", uid, ok)
	}
}

type memPersistence struct {
	mu        sync.Mutex
	rows      []session.Row
	insertErr error
}

func (m *memPersistence) Insert(_ context.Context, row session.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *memPersistence) FindBy(_ context.Context, field session.Field, value string) ([]session.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !field.Valid() {
		return nil, session.ErrUnknownField
	}
	var out []session.Row
	for _, r := range m.rows {
		if (field == session.FieldSessionID && r.SessionID == value) || (field == session.FieldUserID && r.UserID == value) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memPersistence) Delete(_ context.Context, row session.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == row.ID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

func TestPersistedSession_ExpiresAndObserves(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := abtime.NewManual()
	p := &memPersistence{}

	var mu sync.Mutex
	seen := map[string]int{}
	obs := func(op, result string) {
		mu.Lock()
		seen[op+"/"+result]++
		mu.Unlock()
	}

	s := NewPersistedSession(NewBase(nil, "sid"), seedUsers(t), time.Minute, p, WithClock(clock), WithObserver(obs))

	id, ok := s.CreateSession(ctx, "42")
	if !ok {
		t.Fatalf("CreateSession failed")
	}
	if len(p.rows) != 1 || p.rows[0].SessionID != id {
		t.Fatalf("expected durable row for %q, got %+v", id, p.rows)
	}

	if _, ok := s.Identify(ctx, requestWith("", "sid", id)); !ok {
		t.Fatalf("Identify should succeed before expiry")
	}
	clock.Advance(2 * time.Minute)
	if _, ok := s.Identify(ctx, requestWith("", "sid", id)); ok {
		t.Fatalf("Identify should fail after expiry")
	}

	p.insertErr = errors.New("db down")
	if _, ok := s.CreateSession(ctx, "42"); ok {
		t.Fatalf("CreateSession must fail when insert fails")
	}

	mu.Lock()
	defer mu.Unlock()
	for key, want := range map[string]int{"create/ok": 1, "resolve/ok": 1, "resolve/expired": 1, "create/error": 1} {
		if seen[key] != want {
			t.Fatalf("observer %s=%d want=%d (all=%v)", key, seen[key], want, seen)
		}
	}
}
