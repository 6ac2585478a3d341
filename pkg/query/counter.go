package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nnnkkk7/sqlpager/pkg/logging"
)

const countQueryFormat = "SELECT COUNT(*) FROM (%s%s) AS counted"

// Counter computes how many rows an unpaginated statement produces.
type Counter struct {
	log *zap.Logger
}

// NewCounter creates a counter. A nil logger discards output.
func NewCounter(log *zap.Logger) *Counter {
	return &Counter{log: logging.OrNop(log)}
}

// Count returns the row count of p.StatementWithoutPagination, capped at the
// author's LIMIT when there is one.
//
// It wraps the statement in a COUNT(*) subquery. Only if that query fails
// does it run the statement itself and count rows as they stream. If both
// fail the count is unknown and reported as 0.
func (c *Counter) Count(ctx context.Context, q Querier, p ExistingPagination) int64 {
	stmt := p.StatementWithoutPagination

	n, err := countWrapped(ctx, q, stmt)
	if err != nil {
		c.log.Warn("count query failed, counting rows directly", zap.Error(err))
		n, err = countRows(ctx, q, stmt)
		if err != nil {
			c.log.Warn("row count unavailable", zap.Error(err))
			return 0
		}
	}
	return clampCount(n, p)
}

func countWrapped(ctx context.Context, q Querier, stmt string) (int64, error) {
	sep := ""
	if endsInLineComment(stmt) {
		sep = "\n"
	}

	var n int64
	if err := q.QueryRow(ctx, fmt.Sprintf(countQueryFormat, stmt, sep)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return n, nil
}

func countRows(ctx context.Context, q Querier, stmt string) (int64, error) {
	rows, err := q.Query(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("fallback count: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var n int64
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("fallback count: %w", err)
	}
	return n, nil
}

func clampCount(n int64, p ExistingPagination) int64 {
	if p.LimitValue != nil && *p.LimitValue < n {
		return *p.LimitValue
	}
	return n
}
