package sqlguard

import (
	"fmt"
	"log/slog"

	"github.com/pingcap/tidb/parser/ast"

	"github.com/wmenjoy/sql-tools/pkg/logging"
)

// Orchestrator runs a configurable, ordered catalog of checkers once over
// a shared SqlContext. It never short-circuits: every enabled checker
// sees every context, and a panicking checker never blocks the rest.
type Orchestrator struct {
	checkers []Checker
	logger   *slog.Logger
}

// NewOrchestrator builds an Orchestrator from an ordered checker slice.
// Order is significant: it is the declared dispatch order, respected
// exactly, with no implicit priority (spec §9 "Checker ordering").
func NewOrchestrator(checkers []Checker) *Orchestrator {
	cp := make([]Checker, len(checkers))
	copy(cp, checkers)
	return &Orchestrator{checkers: cp, logger: logging.Discard()}
}

// WithLogger attaches an operational logger used to report recovered
// checker panics at warn level. Returns o for chaining.
func (o *Orchestrator) WithLogger(logger *slog.Logger) *Orchestrator {
	o.logger = logger
	return o
}

// Checkers returns the ordered checker list this orchestrator runs.
func (o *Orchestrator) Checkers() []Checker {
	out := make([]Checker, len(o.checkers))
	copy(out, o.checkers)
	return out
}

// Orchestrate runs every enabled checker over ctx, accumulating
// violations into result. It is the Orchestrator's only operation.
func (o *Orchestrator) Orchestrate(ctx *SqlContext, result *ValidationResult) {
	for _, c := range o.checkers {
		o.dispatch(c, ctx, result)
	}
}

func (o *Orchestrator) dispatch(c Checker, ctx *SqlContext, result *ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			err := &CheckerInternalError{CheckerID: c.ID(), Recovered: r}
			o.logger.Warn("sqlguard: checker panicked, skipped", "checker", c.ID(), "recovered", r)
			result.AddViolation(LOW, c.ID(), fmt.Sprintf("internal error, skipped: %v", err), "")
		}
	}()

	if !c.Enabled() {
		return
	}

	// Raw-text hook always runs: checkers that only care about raw SQL
	// (StackedStatements, CommentPresent, FileOut, SessionMutation) leave
	// every AST hook as a no-op via BaseChecker, so this is the only
	// dispatch they ever receive; AST-based checkers leave OnRawSQL a
	// no-op, so the call below costs nothing for them.
	c.OnRawSQL(ctx, result)

	if !ctx.HasStatement() {
		return
	}

	switch stmt := ctx.Statement().(type) {
	case *ast.SelectStmt:
		c.OnSelect(stmt, ctx, result)
	case *ast.UpdateStmt:
		c.OnUpdate(stmt, ctx, result)
	case *ast.DeleteStmt:
		c.OnDelete(stmt, ctx, result)
	case *ast.InsertStmt:
		c.OnInsert(stmt, ctx, result)
	default:
		if ddl, ok := ctx.Statement().(ast.DDLNode); ok {
			c.OnDdl(ddl, ctx, result)
		}
	}
}
