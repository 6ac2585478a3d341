package query

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPageRequest is returned for a page below 1 or a page size below 1.
var ErrInvalidPageRequest = errors.New("invalid page request")

// PageRequest is the page of output the caller wants, independent of any
// pagination inside the statement.
type PageRequest struct {
	Page    int
	PerPage int
}

// Validate checks Page >= 1 and PerPage > 0.
func (r PageRequest) Validate() error {
	if r.PerPage <= 0 {
		return fmt.Errorf("%w: perPage must be greater than zero, got %d", ErrInvalidPageRequest, r.PerPage)
	}
	if r.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidPageRequest, r.Page)
	}
	return nil
}

// Offset returns the number of rows before the requested page, saturating
// at math.MaxInt64.
func (r PageRequest) Offset() int64 {
	return mulSat(int64(r.Page-1), int64(r.PerPage))
}

// EffectiveWindow is the single LIMIT/OFFSET pair sent to the database.
type EffectiveWindow struct {
	Limit  int64
	Offset int64
}

// Merge composes the requested page with the statement's own pagination.
//
// The page is applied inside the author's window: offsets add up, and the
// limit is whatever the author's LIMIT leaves at that offset, capped at
// PerPage. The result can narrow the author's window but never widen it.
// An offset-only clause leaves rows uncapped, so only PerPage limits them.
func Merge(existing ExistingPagination, req PageRequest) EffectiveWindow {
	systemOffset := req.Offset()
	perPage := int64(req.PerPage)

	if !existing.HasUserPagination() {
		return EffectiveWindow{Limit: perPage, Offset: systemOffset}
	}

	var userOffset int64
	if existing.OffsetValue != nil {
		userOffset = *existing.OffsetValue
	}

	limit := perPage
	if existing.LimitValue != nil {
		remaining := max(0, *existing.LimitValue-systemOffset)
		limit = min(remaining, perPage)
	}

	return EffectiveWindow{Limit: limit, Offset: addSat(userOffset, systemOffset)}
}

// addSat and mulSat operate on non-negative operands and stop at math.MaxInt64.
func addSat(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

// Apply appends the window to stmt. A zero limit is kept as LIMIT 0 so the
// page comes back empty instead of unbounded.
func (w EffectiveWindow) Apply(stmt string) string {
	return fmt.Sprintf("%s%sLIMIT %d OFFSET %d", stmt, clauseSeparator(stmt), w.Limit, w.Offset)
}

func clauseSeparator(stmt string) string {
	if endsInLineComment(stmt) {
		return "\n"
	}
	return " "
}
