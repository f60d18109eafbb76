package authapi

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"

	"warden/cmd/identity"
	"warden/cmd/internal/auth/credential"
	"warden/cmd/internal/auth/strategy"
)

const cookieName = "_my_session_id"

func plainVerify(plain, hash string) bool { return hash == "hash:"+plain }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUsers(t *testing.T) *identity.MemoryStore {
	t.Helper()

	st := identity.NewMemoryStore()
	if _, err := st.Add(identity.User{ID: "42", Email: "bob@example.com", PasswordHash: "hash:secret", FirstName: "Bob"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return st
}

type server struct {
	handler http.Handler
	metrics *Metrics
}

func newServer(t *testing.T, kind strategy.Kind) server {
	t.Helper()

	users := testUsers(t)
	metrics := NewMetrics(prometheus.NewRegistry())

	base := strategy.NewBase(DefaultExcludedPaths, cookieName)
	var s strategy.Strategy
	switch kind {
	case strategy.KindNone:
	case strategy.KindBase:
		s = base
	case strategy.KindBasic:
		s = strategy.NewBasic(base, users, plainVerify)
	case strategy.KindSession:
		s = strategy.NewSession(base, users, strategy.WithObserver(metrics.SessionObserver()), strategy.WithLogger(testLogger()))
	default:
		t.Fatalf("unsupported kind %q", kind)
	}

	router := httprouter.New()
	NewHandler(testLogger(), DefaultConfig(), s, users, plainVerify).Register(router)
	return server{handler: NewGate(testLogger(), s, metrics).Wrap(router), metrics: metrics}
}

func TestGate_NoStrategyLetsEverythingThrough(t *testing.T) {
	t.Parallel()

	srv := newServer(t, strategy.KindNone)
	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/users/me").
		Expect(t).
		Status(http.StatusNotFound).
		Body(`{"error":"Not found"}`).
		End()

	if got := testutil.ToFloat64(srv.metrics.Decisions.WithLabelValues(OutcomeOpen)); got != 1 {
		t.Fatalf("expected one open decision, got %v", got)
	}
}

func TestGate_ExcludedPathsArePublic(t *testing.T) {
	t.Parallel()

	srv := newServer(t, strategy.KindSession)
	for _, path := range []string{"/api/v1/status", "/api/v1/status/"} {
		apitest.New().
			Handler(srv.handler).
			Get(path).
			Expect(t).
			Status(http.StatusOK).
			Body(`{"status":"OK"}`).
			End()
	}
	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/unauthorized").
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"error":"Unauthorized"}`).
		End()
	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/forbidden/").
		Expect(t).
		Status(http.StatusForbidden).
		Body(`{"error":"Forbidden"}`).
		End()
}

func TestGate_MissingCredentialsIsUnauthorized(t *testing.T) {
	t.Parallel()

	srv := newServer(t, strategy.KindSession)
	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/users/me").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error", "Unauthorized")).
		End()

	if got := testutil.ToFloat64(srv.metrics.Decisions.WithLabelValues(OutcomeUnauthorized)); got != 1 {
		t.Fatalf("expected one unauthorized decision, got %v", got)
	}
}

func TestGate_UnknownSessionIsForbidden(t *testing.T) {
	t.Parallel()

	srv := newServer(t, strategy.KindSession)
	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/users/me").
		Cookie(cookieName, "not-a-session").
		Expect(t).
		Status(http.StatusForbidden).
		Assert(jsonpath.Equal("$.error", "Forbidden")).
		End()
}

func TestGate_BaseStrategyForbidsEveryone(t *testing.T) {
	t.Parallel()

	srv := newServer(t, strategy.KindBase)
	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/users/me").
		Header("Authorization", credential.EncodeBasic("bob@example.com", "secret")).
		Expect(t).
		Status(http.StatusForbidden).
		End()
}

func TestBasic_UsersMe(t *testing.T) {
	t.Parallel()

	srv := newServer(t, strategy.KindBasic)
	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/users/me").
		Header("Authorization", credential.EncodeBasic("bob@example.com", "secret")).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.id", "42")).
		Assert(jsonpath.Equal("$.email", "bob@example.com")).
		Assert(jsonpath.NotPresent("$.password_hash")).
		End()

	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/users/me").
		Header("Authorization", "Basic !!!").
		Expect(t).
		Status(http.StatusForbidden).
		End()

	// Login is a session-only route.
	apitest.New().
		Handler(srv.handler).
		Post("/api/v1/auth_session/login").
		FormData("email", "bob@example.com").
		FormData("password", "secret").
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestSession_LoginValidation(t *testing.T) {
	t.Parallel()

	srv := newServer(t, strategy.KindSession)
	cases := []struct {
		name   string
		form   map[string]string
		status int
		msg    string
	}{
		{name: "no email", form: map[string]string{"password": "secret"}, status: http.StatusBadRequest, msg: "email missing"},
		{name: "no password", form: map[string]string{"email": "bob@example.com"}, status: http.StatusBadRequest, msg: "password missing"},
		{name: "unknown email", form: map[string]string{"email": "eve@example.com", "password": "x"}, status: http.StatusNotFound, msg: "no user found for this email"},
		{name: "wrong password", form: map[string]string{"email": "bob@example.com", "password": "nope"}, status: http.StatusUnauthorized, msg: "wrong password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := apitest.New().Handler(srv.handler).Post("/api/v1/auth_session/login/")
			for k, v := range tc.form {
				req = req.FormData(k, v)
			}
			req.Expect(t).
				Status(tc.status).
				Assert(jsonpath.Equal("$.error", tc.msg)).
				CookieNotPresent(cookieName).
				End()
		})
	}
}

func TestSession_LoginMeLogout(t *testing.T) {
	t.Parallel()

	srv := newServer(t, strategy.KindSession)

	res := apitest.New().
		Handler(srv.handler).
		Post("/api/v1/auth_session/login").
		FormData("email", "Bob@Example.com").
		FormData("password", "secret").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.id", "42")).
		CookiePresent(cookieName).
		End()

	var sid string
	for _, c := range res.Response.Cookies() {
		if c.Name == cookieName {
			sid = c.Value
			if !c.HttpOnly || c.Path != "/" {
				t.Fatalf("unexpected cookie attributes: %+v", c)
			}
		}
	}
	if sid == "" {
		t.Fatalf("expected a session cookie value")
	}

	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/users/me").
		Cookie(cookieName, sid).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.first_name", "Bob")).
		End()

	apitest.New().
		Handler(srv.handler).
		Delete("/api/v1/auth_session/logout").
		Cookie(cookieName, sid).
		Expect(t).
		Status(http.StatusOK).
		Body(`{}`).
		End()

	// The session is gone, so the gate refuses the cookie.
	apitest.New().
		Handler(srv.handler).
		Get("/api/v1/users/me").
		Cookie(cookieName, sid).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	if got := testutil.ToFloat64(srv.metrics.SessionOps.WithLabelValues("create", "ok")); got != 1 {
		t.Fatalf("expected one session create, got %v", got)
	}
	if got := testutil.ToFloat64(srv.metrics.SessionOps.WithLabelValues("destroy", "ok")); got != 1 {
		t.Fatalf("expected one session destroy, got %v", got)
	}
}
