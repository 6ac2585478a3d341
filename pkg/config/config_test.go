package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SQLPAGER_DIALECT", "SQLPAGER_DSN", "SQLPAGER_DATABASE",
		"SQLPAGER_HISTORY_BACKEND", "SQLPAGER_DEFAULT_PER_PAGE", "SQLPAGER_MAX_PER_PAGE",
		"SQLPAGER_QUERY_TIMEOUT", "REDIS_ADDR",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	want := &Config{
		Port:            "8080",
		Dialect:         DialectDuckDB,
		DSN:             "./data",
		MaxOpenConns:    DefaultMaxOpenConns,
		MaxIdleConns:    DefaultMaxIdleConns,
		ConnMaxLifetime: DefaultConnMaxLifetime,
		PingTimeout:     DefaultPingTimeout,
		QueryTimeout:    DefaultQueryTimeout,
		DefaultPerPage:  DefaultPerPage,
		MaxPerPage:      MaxPerPage,
		HistoryBackend:  HistoryBackendMemory,
		HistorySize:     DefaultHistorySize,
		MaxQueryLength:  DefaultMaxQueryLength,
		LogLevel:        "info",
		LogFormat:       "json",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("FromEnv() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SQLPAGER_DIALECT", DialectMySQL)
	t.Setenv("SQLPAGER_DSN", "root:secret@tcp(localhost:3306)/")
	t.Setenv("SQLPAGER_DATABASE", "app")
	t.Setenv("SQLPAGER_DEFAULT_PER_PAGE", "50")
	t.Setenv("SQLPAGER_QUERY_TIMEOUT", "5s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Dialect != DialectMySQL || cfg.Database != "app" {
		t.Errorf("unexpected connection settings: %+v", cfg)
	}
	if cfg.DefaultPerPage != 50 {
		t.Errorf("DefaultPerPage = %d, want 50", cfg.DefaultPerPage)
	}
	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("QueryTimeout = %v, want 5s", cfg.QueryTimeout)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "UnknownDialect", key: "SQLPAGER_DIALECT", value: "oracle"},
		{name: "BadInteger", key: "SQLPAGER_MAX_PER_PAGE", value: "many"},
		{name: "BadDuration", key: "SQLPAGER_PING_TIMEOUT", value: "soon"},
		{name: "DefaultAboveMax", key: "SQLPAGER_DEFAULT_PER_PAGE", value: "5000"},
		{name: "RedisWithoutAddr", key: "SQLPAGER_HISTORY_BACKEND", value: HistoryBackendRedis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_ADDR", "")
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("FromEnv() with %s=%q succeeded, want error", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SQLPAGER_HISTORY_SIZE=7\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	// Register cleanup for the variable godotenv is about to set.
	t.Setenv("SQLPAGER_HISTORY_SIZE", "")
	os.Unsetenv("SQLPAGER_HISTORY_SIZE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HistorySize != 7 {
		t.Errorf("HistorySize = %d, want 7", cfg.HistorySize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Load() with missing file error = %v", err)
	}
}
