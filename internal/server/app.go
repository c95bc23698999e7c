// Package server wires configuration, storage and services into the HTTP
// server and runs it until the context is canceled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/medrecords/internal/crypto"
	"github.com/iudanet/medrecords/internal/server/accounts"
	"github.com/iudanet/medrecords/internal/server/auth"
	"github.com/iudanet/medrecords/internal/server/blob"
	"github.com/iudanet/medrecords/internal/server/config"
	"github.com/iudanet/medrecords/internal/server/handlers"
	"github.com/iudanet/medrecords/internal/server/metrics"
	"github.com/iudanet/medrecords/internal/server/records"
	"github.com/iudanet/medrecords/internal/server/storage/sqlstore"
	"github.com/iudanet/medrecords/internal/server/token"
	"github.com/iudanet/medrecords/internal/server/upload"
)

// App owns the server's long-lived dependencies.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	store    *sqlstore.Storage
	accounts *accounts.Service
	records  *records.Service
	handler  http.Handler
}

// NewApp opens the database, prepares the upload root and builds the router.
// A missing or unwritable upload root is fatal.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	store, err := sqlstore.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(cfg, logger, version, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func newApp(cfg *config.Config, logger *slog.Logger, version string, store *sqlstore.Storage) (*App, error) {
	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	blobs, err := blob.New(cfg.UploadDir, logger, blob.WithDeleteFailures(m.BlobDeleteFailure))
	if err != nil {
		return nil, err
	}
	if err := blobs.EnsureRoot(); err != nil {
		return nil, err
	}

	tokens, err := token.NewService(token.Config{Secret: []byte(cfg.SecretKey), TTL: cfg.AccessTokenTTL}, logger)
	if err != nil {
		return nil, err
	}

	acc, err := accounts.NewService(store, crypto.NewPasswords(cfg.BcryptCost), tokens, logger, m)
	if err != nil {
		return nil, err
	}

	rec := records.NewService(store, upload.NewValidator(cfg.UploadPolicy()), blobs, logger, m)
	gate := auth.NewGate(tokens, store, logger)

	h := Handlers{
		Auth:     handlers.NewAuthHandler(logger, acc),
		Patients: handlers.NewPatientHandler(logger, rec),
		Studies:  handlers.NewStudyHandler(logger, rec),
		Images:   handlers.NewImageHandler(logger, rec),
		Health:   handlers.NewHealthHandler(logger, store, version),
	}

	logger.Info("server configured",
		slog.String("database", store.Dialect().String()),
		slog.String("upload_root", blobs.Root()),
		slog.Int64("max_upload_size", cfg.MaxUploadSize),
		slog.Duration("token_ttl", cfg.AccessTokenTTL),
	)

	return &App{
		config:   cfg,
		logger:   logger,
		store:    store,
		accounts: acc,
		records:  rec,
		handler:  NewRouter(logger, gate, h, m, reg),
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Accounts exposes the identity service for tooling and tests.
func (a *App) Accounts() *accounts.Service {
	return a.accounts
}

// Run listens on the configured address until ctx is canceled, then shuts
// down gracefully and closes the database.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.ServerAddr)
	if err != nil {
		_ = a.store.Close()
		return fmt.Errorf("failed to listen on %s: %w", a.config.ServerAddr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer func() {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", slog.Duration("timeout", a.config.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}
