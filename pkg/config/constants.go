// Package config provides configuration constants and environment loading for sqlpager.
package config

import "time"

// Connection registry settings.
const (
	// DefaultConnectionName is the registry key of the primary connection
	// whose configuration temporary connections are cloned from.
	DefaultConnectionName = "default"

	// TempConnectionPrefix prefixes the registry key of every temporary connection.
	TempConnectionPrefix = "tmp_"
)

// Identifier limits.
const (
	MaxIdentifierLength = 64
)

// Pagination defaults.
const (
	DefaultPage    = 1
	DefaultPerPage = 25
	MaxPerPage     = 1000
)

// ReferencedColumn is the column a guessed foreign key is assumed to point at.
const ReferencedColumn = "id"

// History defaults.
const (
	DefaultHistorySize    = 50
	DefaultMaxQueryLength = 1000
	DefaultHistoryKey     = "sqlpager:history"
)

// Connection pool defaults for temporary connections.
const (
	DefaultMaxOpenConns    = 4
	DefaultMaxIdleConns    = 1
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultPingTimeout     = 5 * time.Second
	DefaultQueryTimeout    = 30 * time.Second
)

// Supported dialect names.
const (
	DialectMySQL     = "mysql"
	DialectPostgres  = "postgres"
	DialectDuckDB    = "duckdb"
	DialectSQLite    = "sqlite"
	DialectSnowflake = "snowflake"
)

// History backends.
const (
	HistoryBackendMemory = "memory"
	HistoryBackendRedis  = "redis"
)
