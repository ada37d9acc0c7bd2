package checkers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pingcap/tidb/parser/ast"

	"github.com/wmenjoy/sql-tools/internal/rawscan"
	"github.com/wmenjoy/sql-tools/pkg/sqlguard"
)

// StackedStatements flags multiple statements separated by an unquoted
// ';' followed by further content. Runs on raw text because the AST
// often keeps only the first statement.
type StackedStatements struct {
	cfg sqlguard.StackedStatementsConfig
	sqlguard.BaseChecker
}

func NewStackedStatements(cfg sqlguard.StackedStatementsConfig) *StackedStatements {
	return &StackedStatements{cfg: cfg}
}

func (c *StackedStatements) ID() string                   { return "StackedStatements" }
func (c *StackedStatements) Enabled() bool                { return c.cfg.Enabled }
func (c *StackedStatements) DefaultRiskLevel() sqlguard.RiskLevel {
	return c.cfg.Resolve(sqlguard.CRITICAL)
}

func (c *StackedStatements) OnRawSQL(ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	if hits := rawscan.UnquotedSemicolons(ctx.RawSQL()); len(hits) > 0 {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("statement contains %d unquoted ';' followed by further SQL", len(hits)),
			"submit one statement per call; never concatenate statements with ';'")
	}
}

// SetOperationUse flags UNION/UNION ALL/INTERSECT/MINUS/EXCEPT unless the
// specific operation is in the allow-list.
type SetOperationUse struct {
	cfg sqlguard.SetOperationUseConfig
	sqlguard.BaseChecker
}

func NewSetOperationUse(cfg sqlguard.SetOperationUseConfig) *SetOperationUse {
	return &SetOperationUse{cfg: cfg}
}

func (c *SetOperationUse) ID() string                   { return "SetOperationUse" }
func (c *SetOperationUse) Enabled() bool                { return c.cfg.Enabled }
func (c *SetOperationUse) DefaultRiskLevel() sqlguard.RiskLevel {
	return c.cfg.Resolve(sqlguard.CRITICAL)
}

var setOperationPattern = regexp.MustCompile(`(?i)\bUNION\s+ALL\b|\bUNION\b|\bINTERSECT\b|\bMINUS\b|\bEXCEPT\b`)

// OnRawSQL is this checker's only hook: tidb represents UNION / INTERSECT
// / EXCEPT at the *ast.SetOprStmt level, a sibling of *ast.SelectStmt, so
// the orchestrator's type switch never routes a set-operation statement
// through OnSelect at all. Scanning raw text instead also catches the
// set operator when the grammar returns a partial tree in lenient mode.
func (c *SetOperationUse) OnRawSQL(ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	reported := map[string]struct{}{}
	for _, op := range setOperationPattern.FindAllString(ctx.RawSQL(), -1) {
		opName := normalizeSetOp(op)
		if _, dup := reported[opName]; dup || sqlguard.MatchesAny(opName, c.cfg.AllowedOperations) {
			continue
		}
		reported[opName] = struct{}{}
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("statement uses set operation %s", opName),
			"avoid combining result sets with UNION/INTERSECT/EXCEPT in user-facing queries")
	}
}

func normalizeSetOp(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// CommentPresent flags comment markers (--, #, /* */) in raw SQL — the
// grammar strips them, so this must run on raw text.
type CommentPresent struct {
	cfg sqlguard.CommentPresentConfig
	sqlguard.BaseChecker
}

func NewCommentPresent(cfg sqlguard.CommentPresentConfig) *CommentPresent {
	return &CommentPresent{cfg: cfg}
}

func (c *CommentPresent) ID() string                   { return "CommentPresent" }
func (c *CommentPresent) Enabled() bool                { return c.cfg.Enabled }
func (c *CommentPresent) DefaultRiskLevel() sqlguard.RiskLevel {
	return c.cfg.Resolve(sqlguard.CRITICAL)
}

func (c *CommentPresent) OnRawSQL(ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	hits := rawscan.CommentMarkers(ctx.RawSQL(), c.cfg.AllowOptimizerHints)
	if len(hits) > 0 {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("statement contains %d comment marker(s)", len(hits)),
			"strip comments before the SQL reaches the database")
	}
}

// FileOut flags "INTO OUTFILE"/"INTO DUMPFILE", distinguishing it from
// the legal scalar-assignment form "SELECT col INTO var FROM ...".
type FileOut struct {
	cfg sqlguard.FileOutConfig
	sqlguard.BaseChecker
}

func NewFileOut(cfg sqlguard.FileOutConfig) *FileOut {
	return &FileOut{cfg: cfg}
}

func (c *FileOut) ID() string                   { return "FileOut" }
func (c *FileOut) Enabled() bool                { return c.cfg.Enabled }
func (c *FileOut) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.CRITICAL) }

var fileOutPattern = regexp.MustCompile(`(?i)\bINTO\s+(OUTFILE|DUMPFILE)\b`)

func (c *FileOut) OnRawSQL(ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	// Blank out string and comment contents with the shared scanner so the
	// keywords only count where they are live SQL.
	bare := []rune(ctx.RawSQL())
	rawscan.Scan(ctx.RawSQL(), func(t rawscan.Token) {
		if !t.Before.Bare() {
			bare[t.Index] = ' '
		}
	})
	if m := fileOutPattern.FindString(string(bare)); m != "" {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("statement writes to the filesystem: %s", strings.Join(strings.Fields(m), " ")),
			"remove INTO OUTFILE/DUMPFILE; use an export pipeline instead")
	}
}

// DangerousFunctions flags calls to any function in a denied set,
// following function arguments recursively.
type DangerousFunctions struct {
	cfg    sqlguard.DangerousFunctionsConfig
	denied map[string]struct{}
	sqlguard.BaseChecker
}

func NewDangerousFunctions(cfg sqlguard.DangerousFunctionsConfig) *DangerousFunctions {
	denied := make(map[string]struct{}, len(cfg.DeniedFunctions))
	for _, f := range cfg.DeniedFunctions {
		denied[strings.ToLower(f)] = struct{}{}
	}
	return &DangerousFunctions{cfg: cfg, denied: denied}
}

func (c *DangerousFunctions) ID() string                   { return "DangerousFunctions" }
func (c *DangerousFunctions) Enabled() bool                { return c.cfg.Enabled }
func (c *DangerousFunctions) DefaultRiskLevel() sqlguard.RiskLevel {
	return c.cfg.Resolve(sqlguard.CRITICAL)
}

func (c *DangerousFunctions) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.scan(n, result)
}
func (c *DangerousFunctions) OnUpdate(n *ast.UpdateStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.scan(n, result)
}
func (c *DangerousFunctions) OnDelete(n *ast.DeleteStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.scan(n, result)
}
func (c *DangerousFunctions) OnInsert(n *ast.InsertStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.scan(n, result)
}

func (c *DangerousFunctions) scan(n ast.Node, result *sqlguard.ValidationResult) {
	visited := map[ast.ExprNode]struct{}{}
	var found []string

	n.Accept(funcVisitor(func(call *ast.FuncCallExpr) bool {
		if _, seen := visited[call]; seen {
			return false
		}
		visited[call] = struct{}{}
		name := strings.ToLower(call.FnName.O)
		if _, bad := c.denied[name]; bad {
			found = append(found, call.FnName.O)
		}
		return false
	}))

	for _, name := range found {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("call to denied function %s(...)", name),
			"remove the call or move it to a trusted, non-user-facing path")
	}
}

// funcVisitor adapts a typed *ast.FuncCallExpr callback to ast.Visitor.
type funcVisitor func(*ast.FuncCallExpr) (skipChildren bool)

func (f funcVisitor) Enter(n ast.Node) (ast.Node, bool) {
	if call, ok := n.(*ast.FuncCallExpr); ok {
		return n, f(call)
	}
	return n, false
}

func (f funcVisitor) Leave(n ast.Node) (ast.Node, bool) { return n, true }
