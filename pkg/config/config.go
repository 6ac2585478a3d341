package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment.
type Config struct {
	Port string

	// Primary connection the temporary connections are cloned from.
	Dialect  string
	DSN      string
	Database string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
	QueryTimeout    time.Duration

	DefaultPerPage int
	MaxPerPage     int

	HistoryBackend string
	HistorySize    int
	MaxQueryLength int
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Dialect:        getEnv("SQLPAGER_DIALECT", DialectDuckDB),
		DSN:            getEnv("SQLPAGER_DSN", "./data"),
		Database:       os.Getenv("SQLPAGER_DATABASE"),
		HistoryBackend: getEnv("SQLPAGER_HISTORY_BACKEND", HistoryBackendMemory),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	var err error
	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"SQLPAGER_MAX_OPEN_CONNS", DefaultMaxOpenConns, &cfg.MaxOpenConns},
		{"SQLPAGER_MAX_IDLE_CONNS", DefaultMaxIdleConns, &cfg.MaxIdleConns},
		{"SQLPAGER_DEFAULT_PER_PAGE", DefaultPerPage, &cfg.DefaultPerPage},
		{"SQLPAGER_MAX_PER_PAGE", MaxPerPage, &cfg.MaxPerPage},
		{"SQLPAGER_HISTORY_SIZE", DefaultHistorySize, &cfg.HistorySize},
		{"SQLPAGER_MAX_QUERY_LENGTH", DefaultMaxQueryLength, &cfg.MaxQueryLength},
		{"REDIS_DB", 0, &cfg.RedisDB},
	}
	for _, v := range ints {
		if *v.dest, err = getEnvInt(v.key, v.def); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"SQLPAGER_CONN_MAX_LIFETIME", DefaultConnMaxLifetime, &cfg.ConnMaxLifetime},
		{"SQLPAGER_PING_TIMEOUT", DefaultPingTimeout, &cfg.PingTimeout},
		{"SQLPAGER_QUERY_TIMEOUT", DefaultQueryTimeout, &cfg.QueryTimeout},
	}
	for _, v := range durations {
		if *v.dest, err = getEnvDuration(v.key, v.def); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable together.
func (c *Config) Validate() error {
	switch c.Dialect {
	case DialectMySQL, DialectPostgres, DialectDuckDB, DialectSQLite, DialectSnowflake:
	default:
		return fmt.Errorf("unsupported dialect %q", c.Dialect)
	}
	if c.DSN == "" {
		return errors.New("SQLPAGER_DSN is required")
	}
	if c.DefaultPerPage <= 0 || c.MaxPerPage <= 0 {
		return errors.New("page sizes must be greater than zero")
	}
	if c.DefaultPerPage > c.MaxPerPage {
		return fmt.Errorf("default page size %d exceeds maximum %d", c.DefaultPerPage, c.MaxPerPage)
	}
	switch c.HistoryBackend {
	case HistoryBackendMemory:
	case HistoryBackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis history backend")
		}
	default:
		return fmt.Errorf("unsupported history backend %q", c.HistoryBackend)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
