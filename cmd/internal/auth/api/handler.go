package authapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"warden/cmd/identity"
	"warden/cmd/internal/auth/credential"
	"warden/cmd/internal/auth/strategy"
)

// APIPrefix is the root of every route Handler registers.
const APIPrefix = "/api/v1"

// Handler serves the auth-facing JSON endpoints.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	sessions strategy.SessionStrategy
	users    identity.Finder
	verify   credential.VerifyFunc
}

// NewHandler builds a Handler. Login and logout are only served when s
// manages sessions.
func NewHandler(log *slog.Logger, cfg Config, s strategy.Strategy, users identity.Finder, verify credential.VerifyFunc) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{log: log, cfg: cfg, users: users, verify: verify}
	if ss, ok := s.(strategy.SessionStrategy); ok {
		h.sessions = ss
	}
	return h
}

// Register wires the routes onto r. Each path answers with and without a
// trailing slash.
func (h *Handler) Register(r *httprouter.Router) {
	if h == nil || r == nil {
		return
	}
	handle(r, http.MethodGet, APIPrefix+"/status", h.handleStatus)
	handle(r, http.MethodGet, APIPrefix+"/unauthorized", h.handleUnauthorized)
	handle(r, http.MethodGet, APIPrefix+"/forbidden", h.handleForbidden)
	handle(r, http.MethodGet, APIPrefix+"/users/me", h.handleMe)

	if h.sessions != nil {
		handle(r, http.MethodPost, APIPrefix+"/auth_session/login", h.handleLogin)
		handle(r, http.MethodDelete, APIPrefix+"/auth_session/logout", h.handleLogout)
	}

	r.RedirectTrailingSlash = false
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
}

func handle(r *httprouter.Router, method, path string, fn http.HandlerFunc) {
	r.HandlerFunc(method, path, fn)
	r.HandlerFunc(method, path+"/", fn)
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *Handler) handleUnauthorized(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusUnauthorized)
}

func (h *Handler) handleForbidden(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusForbidden)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email missing")
		return
	}
	password := r.PostFormValue("password")
	if password == "" {
		writeError(w, http.StatusBadRequest, "password missing")
		return
	}

	ctx := r.Context()
	users, err := h.users.FindByEmail(ctx, email)
	if err != nil {
		h.log.Error("auth.login.lookup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(users) == 0 {
		writeError(w, http.StatusNotFound, "no user found for this email")
		return
	}

	for _, u := range users {
		if !h.verify(password, u.PasswordHash) {
			continue
		}
		sid, ok := h.sessions.CreateSession(ctx, u.ID)
		if !ok {
			writeError(w, http.StatusInternalServerError, "session error")
			return
		}
		http.SetCookie(w, h.sessionCookie(sid, 0))
		h.log.Info("auth.login.ok", "user_id", u.ID)
		writeJSON(w, http.StatusOK, u)
		return
	}

	writeError(w, http.StatusUnauthorized, "wrong password")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.DestroySession(r.Context(), r) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.sessions.CookieName(),
		Value:    value,
		Path:     h.cfg.CookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	}
}
