package query

import (
	"errors"
	"fmt"

	"github.com/nnnkkk7/sqlpager/pkg/foreignkey"
)

// QueryResult is the outcome of one paginated execution.
//
// TotalCount and Rows come from two separate statements with no transaction
// around them. If the data changes in between, "page X of Y" may be off by
// the rows that moved.
type QueryResult struct {
	Success     bool
	Columns     []string
	ColumnTypes []ColumnMetadata
	Rows        []Row

	TotalCount  int64
	CurrentPage int
	PerPage     int
	TotalPages  int64

	HasUserPagination  bool
	UserPaginationInfo ExistingPagination

	// ForeignKeys maps column names to guessed referenced tables.
	ForeignKeys foreignkey.Map

	// ExecutedSQL is the statement as sent to the database.
	ExecutedSQL  string
	ErrorMessage string
}

// Stage names a step of ExecutePaginated.
type Stage string

// Execution stages, in order.
const (
	StageResolving  Stage = "resolving"
	StageRewriting  Stage = "rewriting"
	StageCounting   Stage = "counting"
	StageExecuting  Stage = "executing"
	StageAnnotating Stage = "annotating"
)

// StageError records which stage failed. Its message is the underlying
// error's message unchanged.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, or "" when there is none.
func FailedStage(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

// ErrEmptyStatement is returned when the statement is blank.
var ErrEmptyStatement = errors.New("statement is empty")

func totalPages(total int64, perPage int) int64 {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	p := int64(perPage)
	return (total + p - 1) / p
}

func failedResult(req PageRequest, existing ExistingPagination, err error) *QueryResult {
	return &QueryResult{
		Success:            false,
		Columns:            []string{},
		Rows:               []Row{},
		CurrentPage:        req.Page,
		PerPage:            req.PerPage,
		HasUserPagination:  existing.HasUserPagination(),
		UserPaginationInfo: existing,
		ForeignKeys:        foreignkey.Map{},
		ErrorMessage:       err.Error(),
	}
}

// String summarizes the result for logs.
func (r *QueryResult) String() string {
	if !r.Success {
		return fmt.Sprintf("failed: %s", r.ErrorMessage)
	}
	return fmt.Sprintf("%d rows, page %d/%d, total %d", len(r.Rows), r.CurrentPage, r.TotalPages, r.TotalCount)
}
