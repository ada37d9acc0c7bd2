package sqlguard

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/wmenjoy/sql-tools/pkg/logging"
	"github.com/wmenjoy/sql-tools/pkg/sqlguard/dedup"
	"github.com/wmenjoy/sql-tools/pkg/sqlguard/parserfacade"
)

// ValidateRequest is everything the host supplies for one validation
// call — the inputs that ContextBuilder assembles into a SqlContext.
type ValidateRequest struct {
	RawSQL         string
	StatementID    string
	ThreadKey      string
	Layer          Layer
	PaginationHint *PaginationHint
	Kind           *StatementKind // nil: infer from RawSQL
}

// Validator is the inbound API described in spec §6.1.
type Validator interface {
	// Validate is synchronous, re-entrant, and thread-safe. It never
	// raises except for a strict-mode parse failure or a host
	// programming error (empty/whitespace SQL).
	Validate(ctx context.Context, req ValidateRequest) (*ValidationResult, error)

	// Reconfigure atomically swaps the running checker catalog;
	// in-flight validations keep running against the old one.
	Reconfigure(checkers []Checker)

	// ClearThreadState drops one ThreadKey's dedup bucket, called by the
	// host at the end of a task/request.
	ClearThreadState(threadKey string)
}

type validator struct {
	parser      *parserfacade.Facade
	dedup       *dedup.Filter[*ValidationResult]
	orchestrator atomic.Pointer[Orchestrator]
	logger      *slog.Logger
	strict      bool
}

// ValidatorOption configures New.
type ValidatorOption func(*validator)

// WithLogger overrides the operational logger (default: discard).
func WithLogger(logger *slog.Logger) ValidatorOption {
	return func(v *validator) { v.logger = logger }
}

// New builds a Validator from a GlobalConfig and an ordered checker
// catalog (see checkers.Default for the reference catalog). Parsing mode
// (lenient/strict) and cache sizes come from cfg; both are validated
// eagerly, so New returns a *ConfigError instead of panicking later.
func New(cfg GlobalConfig, catalog []Checker, opts ...ValidatorOption) (Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &validator{
		dedup: dedup.New[*ValidationResult](
			cfg.DedupCacheCapacity,
			time.Duration(cfg.DedupTTLMillis)*time.Millisecond,
		),
		logger: logging.Discard(),
		strict: cfg.StrictParse,
	}
	for _, opt := range opts {
		opt(v)
	}

	facade, err := parserfacade.New(cfg.ParseCacheCapacity,
		parserfacade.WithStrictMode(cfg.StrictParse),
		parserfacade.WithLogger(v.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlguard: building parser facade: %w", err)
	}
	v.parser = facade

	v.orchestrator.Store(NewOrchestrator(catalog).WithLogger(v.logger))
	return v, nil
}

func (v *validator) Validate(ctx context.Context, req ValidateRequest) (*ValidationResult, error) {
	normalized := parserfacade.Normalize(req.RawSQL)

	if req.ThreadKey != "" {
		if cached, ok := v.dedup.Lookup(req.ThreadKey, normalized); ok {
			return cached, nil
		}
		if !v.dedup.ShouldCheck(req.ThreadKey, normalized) {
			// A concurrent call for the same key is in flight (or just
			// completed and hasn't been Recorded yet); the spec's O(1)
			// guarantee is about avoiding re-running checkers, not about
			// blocking for the other call's result, so we proceed with a
			// fresh validation rather than wait.
			return v.validateOnce(req)
		}
	}

	result, err := v.validateOnce(req)
	if err == nil && req.ThreadKey != "" {
		v.dedup.Record(req.ThreadKey, normalized, result)
	}
	return result, err
}

func (v *validator) validateOnce(req ValidateRequest) (*ValidationResult, error) {
	stmt, ok, parseErr := v.parser.Parse(req.RawSQL)

	builder := NewContext(req.RawSQL).
		WithStatementID(req.StatementID).
		WithThreadKey(req.ThreadKey).
		WithLayer(req.Layer)
	if req.Kind != nil {
		builder = builder.WithKind(*req.Kind)
	}
	if req.PaginationHint != nil {
		builder = builder.WithPaginationHint(*req.PaginationHint)
	}

	if ok {
		builder = builder.WithStatement(stmt)
	} else {
		pf := &ParseFailure{SQL: req.RawSQL, Err: parseErr}
		if v.strict {
			return nil, pf
		}
		v.logger.Debug("sqlguard: lenient parse failure, raw-text checkers still run", "error", parseErr)
		builder = builder.WithParseFailure(pf)
	}

	sqlCtx, err := builder.Build()
	if err != nil {
		return nil, err
	}

	result := NewResult()
	if sqlCtx.ParseFailure() != nil {
		result.AddViolation(LOW, "ParseFailure", sqlCtx.ParseFailure().Error(), "verify the SQL is well-formed for the configured dialect")
	}

	v.orchestrator.Load().Orchestrate(sqlCtx, result)

	return result.Seal(), nil
}

func (v *validator) Reconfigure(checkers []Checker) {
	v.orchestrator.Store(NewOrchestrator(checkers).WithLogger(v.logger))
	v.logger.Info("sqlguard: orchestrator reconfigured", "checkerCount", len(checkers))
}

func (v *validator) ClearThreadState(threadKey string) {
	v.dedup.ClearThreadState(threadKey)
}
