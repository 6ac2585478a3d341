package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nnnkkk7/sqlpager/pkg/connection"
	"github.com/nnnkkk7/sqlpager/pkg/foreignkey"
	"github.com/nnnkkk7/sqlpager/pkg/logging"
	"github.com/nnnkkk7/sqlpager/pkg/metadata"
)

// Executor runs user statements against runtime-selected databases and
// shapes one page of output.
type Executor struct {
	resolver     *connection.Resolver
	classifier   *Classifier
	counter      *Counter
	annotate     AnnotateFunc
	queryTimeout time.Duration
	log          *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor's logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Executor) {
		e.log = logging.OrNop(log)
		e.counter = NewCounter(e.log)
	}
}

// WithQueryTimeout bounds each ExecutePaginated call. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.queryTimeout = d
	}
}

// WithAnnotator replaces foreign key inference.
func WithAnnotator(fn AnnotateFunc) Option {
	return func(e *Executor) {
		e.annotate = fn
	}
}

// NewExecutor creates an executor resolving targets through resolver.
func NewExecutor(resolver *connection.Resolver, opts ...Option) *Executor {
	e := &Executor{
		resolver:   resolver,
		classifier: DefaultClassifier,
		counter:    NewCounter(nil),
		annotate:   inferForeignKeys,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecutePaginated runs statement against target and returns the requested page.
//
// Invalid input (bad page request, blank statement, or a target that is not
// a plain identifier) is returned as an error before any connection is made.
// Every later failure yields a result with Success false, no rows, and the
// database's message in ErrorMessage. Count and annotation problems do not
// fail the call by themselves.
//
// Statements that are not SELECT-shaped run unmodified and unpaginated.
func (e *Executor) ExecutePaginated(ctx context.Context, statement, target string, page, perPage int) (*QueryResult, error) {
	req := PageRequest{Page: page, PerPage: perPage}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if trimStatement(statement, StandardQuoting) == "" {
		return nil, ErrEmptyStatement
	}
	if err := connection.ValidateIdentifier(target); err != nil {
		return nil, err
	}

	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}

	log := e.log.With(zap.String("database", target))

	var (
		result   *QueryResult
		existing ExistingPagination
	)
	err := e.resolver.WithDatabase(ctx, target, func(ctx context.Context, mgr *connection.Manager) error {
		var err error
		result, err = e.run(ctx, log, mgr, statement, req, &existing)
		return err
	})
	if err != nil {
		stage := FailedStage(err)
		if stage == "" {
			stage = StageResolving
		}
		log.Info("statement failed", zap.String("stage", string(stage)), zap.Error(err))
		return failedResult(req, existing, err), nil
	}

	log.Debug("statement succeeded", zap.Stringer("result", result))
	return result, nil
}

func (e *Executor) run(ctx context.Context, log *zap.Logger, mgr *connection.Manager, statement string, req PageRequest, existing *ExistingPagination) (*QueryResult, error) {
	if err := checkpoint(ctx, StageRewriting); err != nil {
		return nil, err
	}
	quoting := QuotingFor(mgr.Dialect())
	sqlText := trimStatement(statement, quoting)
	paginated := e.classifier.IsSelectShaped(sqlText)
	if paginated {
		*existing = Analyze(statement, quoting)
		sqlText = Merge(*existing, req).Apply(existing.StatementWithoutPagination)
	} else {
		*existing = ExistingPagination{StatementWithoutPagination: sqlText}
	}
	log.Debug("rewrote statement", zap.Bool("paginated", paginated), zap.String("sql", sqlText))

	var total int64
	if paginated {
		total = e.counter.Count(ctx, mgr, *existing)
		// Count swallows its errors, an expired context included.
		if err := checkpoint(ctx, StageCounting); err != nil {
			return nil, err
		}
	}

	rows, err := mgr.Query(ctx, sqlText)
	if err != nil {
		return nil, &StageError{Stage: StageExecuting, Err: err}
	}
	defer func() { _ = rows.Close() }()

	columns, meta, records, err := scanRows(rows)
	if err != nil {
		return nil, &StageError{Stage: StageExecuting, Err: err}
	}

	pages := totalPages(total, req.PerPage)
	if !paginated {
		total = int64(len(records))
		pages = 0
		if len(records) > 0 {
			pages = 1
		}
	}

	fks := foreignkey.Map{}
	if len(records) > 0 {
		if found, err := e.annotate(ctx, mgr, columns); err != nil {
			log.Warn("foreign key inference failed", zap.String("stage", string(StageAnnotating)), zap.Error(err))
		} else if found != nil {
			fks = found
		}
	}

	return &QueryResult{
		Success:            true,
		Columns:            columns,
		ColumnTypes:        meta,
		Rows:               records,
		TotalCount:         total,
		CurrentPage:        req.Page,
		PerPage:            req.PerPage,
		TotalPages:         pages,
		HasUserPagination:  existing.HasUserPagination(),
		UserPaginationInfo: *existing,
		ForeignKeys:        fks,
		ExecutedSQL:        sqlText,
	}, nil
}

// checkpoint fails stage when ctx is already done.
func checkpoint(ctx context.Context, stage Stage) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}

func inferForeignKeys(ctx context.Context, mgr *connection.Manager, columns []string) (foreignkey.Map, error) {
	return foreignkey.Infer(ctx, metadata.NewInspector(mgr), mgr.Database(), columns)
}
