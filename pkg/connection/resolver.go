// Package connection resolves runtime-named target databases into scoped
// connection handles without touching the primary connection.
package connection

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nnnkkk7/sqlpager/pkg/config"
	"github.com/nnnkkk7/sqlpager/pkg/logging"
)

// Resolver opens temporary connections to named databases.
//
// Each call to WithDatabase clones the default configuration with only the
// database overridden, registers it under a unique name, and releases both
// the registry entry and the pool when the callback returns, fails, or panics.
type Resolver struct {
	registry *Registry
	dialects Dialects
	log      *zap.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for connection lifecycle events.
func WithLogger(log *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.log = logging.OrNop(log)
	}
}

// WithDialect adds or replaces a dialect.
func WithDialect(d Dialect) ResolverOption {
	return func(r *Resolver) {
		r.dialects[d.Name()] = d
	}
}

// NewResolver creates a resolver reading its base configuration from registry.
func NewResolver(registry *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry: registry,
		dialects: DefaultDialects(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry the resolver writes temporary entries into.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// WithDatabase runs fn with a handle bound to target.
// Errors returned by fn are passed through unchanged.
func (r *Resolver) WithDatabase(ctx context.Context, target string, fn func(ctx context.Context, mgr *Manager) error) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}

	base, ok := r.registry.Get(config.DefaultConnectionName)
	if !ok {
		return ErrNoDefaultConnection
	}
	dialect, ok := r.dialects.Lookup(base.Dialect)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDialect, base.Dialect)
	}

	cfg := base.WithDatabase(target)
	name := config.TempConnectionPrefix + uuid.NewString()
	if err := r.registry.Register(name, cfg); err != nil {
		return err
	}
	defer r.registry.Remove(name)

	log := r.log.With(zap.String("connection", name), zap.String("database", target))

	db, err := open(ctx, dialect, cfg)
	if err != nil {
		return &ConnectionError{Database: target, Err: err}
	}
	log.Debug("opened temporary connection")
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close temporary connection", zap.Error(err))
			return
		}
		log.Debug("released temporary connection")
	}()

	return fn(ctx, NewManager(db, target, dialect))
}

// With is WithDatabase for callbacks that produce a value.
func With[T any](ctx context.Context, r *Resolver, target string, fn func(ctx context.Context, mgr *Manager) (T, error)) (T, error) {
	var out T
	err := r.WithDatabase(ctx, target, func(ctx context.Context, mgr *Manager) error {
		var err error
		out, err = fn(ctx, mgr)
		return err
	})
	return out, err
}

func open(ctx context.Context, dialect Dialect, cfg Config) (*sql.DB, error) {
	db, err := dialect.Open(cfg.DSN, cfg.Database)
	if err != nil {
		return nil, err
	}

	opts := cfg.Options
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx := ctx
	if opts.PingTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, opts.PingTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}
