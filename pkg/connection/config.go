package connection

import (
	"time"

	"github.com/nnnkkk7/sqlpager/pkg/config"
)

// Config describes how to reach one database.
type Config struct {
	Dialect  string
	DSN      string
	Database string
	Options  Options
}

// WithDatabase returns a copy of c that targets database. Nothing else changes.
func (c Config) WithDatabase(database string) Config {
	c.Database = database
	return c
}

// Options holds pool sizing for a connection.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// DefaultOptions returns pool settings suited to short-lived connections.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    config.DefaultMaxOpenConns,
		MaxIdleConns:    config.DefaultMaxIdleConns,
		ConnMaxLifetime: config.DefaultConnMaxLifetime,
		PingTimeout:     config.DefaultPingTimeout,
	}
}

// FromAppConfig builds the primary connection Config from process settings.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		Dialect:  cfg.Dialect,
		DSN:      cfg.DSN,
		Database: cfg.Database,
		Options: Options{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			PingTimeout:     cfg.PingTimeout,
		},
	}
}
