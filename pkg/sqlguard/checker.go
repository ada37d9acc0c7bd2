package sqlguard

import (
	"regexp"
	"strings"
	"sync"

	"github.com/pingcap/tidb/parser/ast"
)

// Checker is the contract every concrete rule in the catalog implements.
// The base no-op hooks let a checker that only cares about raw text skip
// every AST hook, and vice versa.
type Checker interface {
	ID() string
	Enabled() bool
	DefaultRiskLevel() RiskLevel

	OnSelect(node *ast.SelectStmt, ctx *SqlContext, result *ValidationResult)
	OnUpdate(node *ast.UpdateStmt, ctx *SqlContext, result *ValidationResult)
	OnDelete(node *ast.DeleteStmt, ctx *SqlContext, result *ValidationResult)
	OnInsert(node *ast.InsertStmt, ctx *SqlContext, result *ValidationResult)
	OnDdl(node ast.DDLNode, ctx *SqlContext, result *ValidationResult)
	OnRawSQL(ctx *SqlContext, result *ValidationResult)
}

// BaseChecker supplies the no-op hook implementations so concrete
// checkers only override what they need; the shared field/table
// extraction and wildcard-matching helpers are the package-level
// functions below (ExtractColumns, ExtractTables, MatchesAny). Mirrors the teacher's SubValidator pattern of
// "small struct embedding shared plumbing, one behavioural method
// overridden".
type BaseChecker struct{}

func (BaseChecker) OnSelect(*ast.SelectStmt, *SqlContext, *ValidationResult)  {}
func (BaseChecker) OnUpdate(*ast.UpdateStmt, *SqlContext, *ValidationResult)  {}
func (BaseChecker) OnDelete(*ast.DeleteStmt, *SqlContext, *ValidationResult)  {}
func (BaseChecker) OnInsert(*ast.InsertStmt, *SqlContext, *ValidationResult)  {}
func (BaseChecker) OnDdl(ast.DDLNode, *SqlContext, *ValidationResult)         {}
func (BaseChecker) OnRawSQL(*SqlContext, *ValidationResult)                   {}

// astVisitFunc adapts a plain closure to ast.Visitor, the same idiom the
// SQL grammar façade uses internally (sql/export/mysql/ast.go's
// astVisitor) for one-off tree walks.
type astVisitFunc struct {
	enter func(n ast.Node) (skipChildren bool)
}

func (v *astVisitFunc) Enter(n ast.Node) (ast.Node, bool) {
	return n, v.enter(n)
}

func (v *astVisitFunc) Leave(n ast.Node) (ast.Node, bool) {
	return n, true
}

func walk(n ast.Node, enter func(ast.Node) bool) {
	if n == nil {
		return
	}
	n.Accept(&astVisitFunc{enter: enter})
}

// ExtractColumns walks an expression tree and returns the set of column
// identifiers it references, with schema/table prefixes and quote
// delimiters stripped. Literal operands are ignored; function arguments
// are traversed since they may themselves reference columns.
func ExtractColumns(n ast.Node) map[string]struct{} {
	cols := map[string]struct{}{}
	walk(n, func(node ast.Node) bool {
		if ce, ok := node.(*ast.ColumnNameExpr); ok && ce.Name != nil {
			cols[stripIdentifier(ce.Name.Name.O)] = struct{}{}
		}
		return false
	})
	return cols
}

// ExtractTables collects every table identifier reachable from a
// statement's FROM, JOIN, subquery, CTE, and set-operation branches.
func ExtractTables(n ast.Node) map[string]struct{} {
	tables := map[string]struct{}{}
	walk(n, func(node ast.Node) bool {
		if tn, ok := node.(*ast.TableName); ok {
			tables[stripIdentifier(tn.Name.O)] = struct{}{}
		}
		return false
	})
	return tables
}

func stripIdentifier(s string) string {
	s = strings.Trim(s, "`\"[]")
	return s
}

var wildcardCache sync.Map // pattern string -> *regexp.Regexp

// compileWildcard converts a pattern with a trailing '*' into the regular
// expression described by spec §4.5: "prefix, followed by a delimiter
// (_) and at least one more character, no further underscores".
// Concretely "sys_*" matches "sys_user" but not "system" and not
// "sys_user_detail". Patterns without a trailing '*' match literally
// (case-insensitively). Compiled patterns are cached process-wide since
// the same pattern set is reused across every validation call.
func compileWildcard(pattern string) *regexp.Regexp {
	if v, ok := wildcardCache.Load(pattern); ok {
		return v.(*regexp.Regexp)
	}

	var expr string
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		prefix = strings.TrimSuffix(prefix, "_")
		expr = "^(?i)" + regexp.QuoteMeta(prefix) + "_[^_]+$"
	} else {
		expr = "^(?i)" + regexp.QuoteMeta(pattern) + "$"
	}

	re := regexp.MustCompile(expr)
	wildcardCache.Store(pattern, re)
	return re
}

// MatchesAny reports whether ident matches at least one of patterns,
// using the wildcard semantics of compileWildcard.
func MatchesAny(ident string, patterns []string) bool {
	for _, p := range patterns {
		if compileWildcard(p).MatchString(ident) {
			return true
		}
	}
	return false
}

// AllMatch reports whether every element of idents matches at least one
// pattern in patterns. An empty idents set is never considered "all
// matching" by callers that guard on non-emptiness separately (see
// BlacklistOnlyWhere).
func AllMatch(idents map[string]struct{}, patterns []string) bool {
	for ident := range idents {
		if !MatchesAny(ident, patterns) {
			return false
		}
	}
	return true
}

// Disjoint reports whether no element of a appears, by wildcard match,
// among patterns b.
func Disjoint(a map[string]struct{}, b []string) bool {
	for ident := range a {
		if MatchesAny(ident, b) {
			return false
		}
	}
	return true
}
