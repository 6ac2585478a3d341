// Package server wires the sqlpager components into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nnnkkk7/sqlpager/pkg/config"
	"github.com/nnnkkk7/sqlpager/pkg/connection"
	"github.com/nnnkkk7/sqlpager/pkg/foreignkey"
	"github.com/nnnkkk7/sqlpager/pkg/history"
	"github.com/nnnkkk7/sqlpager/pkg/logging"
	"github.com/nnnkkk7/sqlpager/pkg/query"
	"github.com/nnnkkk7/sqlpager/server/handlers"
)

// App holds the long-lived components built from configuration.
type App struct {
	Config    *config.Config
	Log       *zap.Logger
	Resolver  *connection.Resolver
	Executor  *query.Executor
	Previewer *foreignkey.Previewer
	History   history.Store
}

// NewApp builds every component from cfg.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logging.OrNop(log)

	registry := connection.NewRegistry()
	if err := registry.Register(config.DefaultConnectionName, connection.FromAppConfig(cfg)); err != nil {
		return nil, fmt.Errorf("failed to register default connection: %w", err)
	}
	resolver := connection.NewResolver(registry, connection.WithLogger(log.Named("connection")))

	store, err := history.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	return &App{
		Config:   cfg,
		Log:      log,
		Resolver: resolver,
		Executor: query.NewExecutor(resolver,
			query.WithLogger(log.Named("query")),
			query.WithQueryTimeout(cfg.QueryTimeout)),
		Previewer: foreignkey.NewPreviewer(resolver, log.Named("preview")),
		History:   store,
	}, nil
}

// Close releases the history store when it holds a connection.
func (a *App) Close() error {
	if c, ok := a.History.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Router returns the HTTP routes of the API.
func (a *App) Router() http.Handler {
	queryHandler := handlers.NewQueryHandler(a.Executor, a.History, handlers.PageLimits{
		DefaultPerPage: a.Config.DefaultPerPage,
		MaxPerPage:     a.Config.MaxPerPage,
	}, a.Log.Named("http"))
	previewHandler := handlers.NewPreviewHandler(a.Previewer)
	historyHandler := handlers.NewHistoryHandler(a.History)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/databases/{database}/query", queryHandler.ExecuteQuery)
		r.Get("/databases/{database}/tables/{table}/records/preview", previewHandler.Preview)
		r.Get("/history", historyHandler.Recent)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			a.Log.Warn("failed to write health response", zap.Error(err))
		}
	})

	return r
}

// Serve listens on the configured port until ctx is canceled, then shuts
// down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + a.Config.Port,
		Handler:      a.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: a.Config.QueryTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("starting sqlpager", zap.String("port", a.Config.Port), zap.String("dialect", a.Config.Dialect))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
