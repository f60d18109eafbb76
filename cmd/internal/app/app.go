// Package app wires the Warden server runtime: config, logging, stores, the
// authentication gate and HTTP routes.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	authapi "warden/cmd/internal/auth/api"
	"warden/cmd/internal/auth/session"
	"warden/cmd/internal/auth/strategy"
	"warden/cmd/security/password"
)

// App is the Warden server runtime: it owns stores, the auth strategy and HTTP wiring.
type App struct {
	cfg Config
	log Logger

	dbPool  *pgxpool.Pool
	closers []closer

	strategy strategy.Strategy
	handler  http.Handler
}

// New constructs a fully wired App from config and logger.
// Resources opened before a failure are released before returning.
func New(ctx context.Context, cfg Config, log Logger) (_ *App, err error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	kind, err := strategy.ParseKind(cfg.AuthType)
	if err != nil {
		return nil, err
	}

	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL != "" {
		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		a.dbPool = pool
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		log.Info("db.enabled", "schema", cfg.DBSchema)
	} else {
		log.Info("db.disabled")
	}

	users, cl, err := openUsers(ctx, log, cfg, a.dbPool)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, cl...)

	var persistence session.Persistence
	if kind == strategy.KindPersisted {
		persistence, cl, err = openPersistence(ctx, log, cfg, a.dbPool)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, cl...)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := authapi.NewMetrics(reg)

	excluded := append(append([]string{}, cfg.AuthExcludedPaths...), opsPaths...)
	s, err := strategy.New(strategy.Config{
		Kind:     kind,
		Excluded: excluded,
		Session:  session.LoadConfigFromEnv(),
	}, strategy.Deps{
		Users:       users,
		Verify:      pwCfg.Verify,
		Persistence: persistence,
		Options: []strategy.Option{
			strategy.WithLogger(log),
			strategy.WithObserver(metrics.SessionObserver()),
		},
	})
	if err != nil {
		return nil, err
	}
	a.strategy = s

	authHandler := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), s, users, pwCfg.Verify)

	router := httprouter.New()
	registerHTTP(router, log, cfg, a.dbPool, reg, authHandler)

	gate := authapi.NewGate(log, s, metrics)
	a.handler = WithRequestLogging(WithSecurityHeaders(gate.Wrap(router)), log)

	log.Info("auth.strategy", "kind", string(kind), "excluded", excluded)
	return a, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Strategy returns the active strategy, nil when AUTH_TYPE is unset.
func (a *App) Strategy() strategy.Strategy { return a.strategy }

// Close releases stores and pools in reverse open order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error("store.close.fail", "err", err)
		}
	}
	a.closers = nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbPool != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
