// Package history keeps a bounded, newest-first log of executed statements.
package history

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nnnkkk7/sqlpager/pkg/config"
)

// Entry is one executed statement.
type Entry struct {
	ID         string        `json:"id"`
	Database   string        `json:"database"`
	SQL        string        `json:"sql"`
	Success    bool          `json:"success"`
	TotalCount int64         `json:"totalCount"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	ExecutedAt time.Time     `json:"executedAt"`
}

// Store records entries and lists the most recent ones.
type Store interface {
	// Record adds e as the newest entry, evicting the oldest past capacity.
	Record(ctx context.Context, e Entry) error

	// Recent returns up to limit entries, newest first. A limit of zero or
	// less returns everything kept.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Limits bounds what a store keeps.
type Limits struct {
	Size           int
	MaxQueryLength int
}

// DefaultLimits returns the default capacity and statement length.
func DefaultLimits() Limits {
	return Limits{Size: config.DefaultHistorySize, MaxQueryLength: config.DefaultMaxQueryLength}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.Size <= 0 {
		l.Size = d.Size
	}
	if l.MaxQueryLength <= 0 {
		l.MaxQueryLength = d.MaxQueryLength
	}
	return l
}

// prepare fills the ID and timestamp when missing and truncates the SQL.
func (l Limits) prepare(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = time.Now()
	}
	e.SQL = truncate(e.SQL, l.MaxQueryLength)
	return e
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// New builds the store selected by cfg.HistoryBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	limits := Limits{Size: cfg.HistorySize, MaxQueryLength: cfg.MaxQueryLength}

	switch cfg.HistoryBackend {
	case config.HistoryBackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, limits)
	case config.HistoryBackendMemory, "":
		return NewMemoryStore(limits), nil
	default:
		return nil, fmt.Errorf("unsupported history backend %q", cfg.HistoryBackend)
	}
}
