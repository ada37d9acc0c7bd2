package checkers

import (
	"fmt"

	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/opcode"

	"github.com/wmenjoy/sql-tools/pkg/sqlguard"
)

// MissingWhere flags SELECT/UPDATE/DELETE with no WHERE clause.
type MissingWhere struct {
	cfg sqlguard.MissingWhereConfig
	sqlguard.BaseChecker
}

func NewMissingWhere(cfg sqlguard.MissingWhereConfig) *MissingWhere {
	return &MissingWhere{cfg: cfg}
}

func (c *MissingWhere) ID() string                   { return "MissingWhere" }
func (c *MissingWhere) Enabled() bool                { return c.cfg.Enabled }
func (c *MissingWhere) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.CRITICAL) }

func (c *MissingWhere) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	if n.Where == nil {
		c.emit(result)
	}
}

func (c *MissingWhere) OnUpdate(n *ast.UpdateStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	if n.Where == nil {
		c.emit(result)
	}
}

func (c *MissingWhere) OnDelete(n *ast.DeleteStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	if n.Where == nil {
		c.emit(result)
	}
}

func (c *MissingWhere) emit(result *sqlguard.ValidationResult) {
	result.AddViolation(c.DefaultRiskLevel(), c.ID(),
		"statement has no WHERE clause",
		"add a WHERE clause that narrows the affected rows")
}

// DummyPredicate flags WHERE tautologies: equal compile-time constants on
// both sides of '=', a bare boolean-literal-true predicate, or a match
// against a configured extra pattern.
type DummyPredicate struct {
	cfg sqlguard.DummyPredicateConfig
	sqlguard.BaseChecker
}

func NewDummyPredicate(cfg sqlguard.DummyPredicateConfig) *DummyPredicate {
	return &DummyPredicate{cfg: cfg}
}

func (c *DummyPredicate) ID() string                   { return "DummyPredicate" }
func (c *DummyPredicate) Enabled() bool                { return c.cfg.Enabled }
func (c *DummyPredicate) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.HIGH) }

func (c *DummyPredicate) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(n.Where, result)
}

func (c *DummyPredicate) OnUpdate(n *ast.UpdateStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(n.Where, result)
}

func (c *DummyPredicate) OnDelete(n *ast.DeleteStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(n.Where, result)
}

func (c *DummyPredicate) check(where ast.ExprNode, result *sqlguard.ValidationResult) {
	if where == nil {
		return
	}

	text := restore(where)
	upper := upperTrim(text)

	if upper == "TRUE" || upper == "1" {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("WHERE clause is a bare tautology: %s", text),
			"replace the placeholder predicate with a real filter")
		return
	}

	if bin, ok := where.(*ast.BinaryOperationExpr); ok && bin.Op == opcode.EQ {
		l, r := restore(bin.L), restore(bin.R)
		if l != "" && l == r {
			result.AddViolation(c.DefaultRiskLevel(), c.ID(),
				fmt.Sprintf("WHERE clause is always true: %s = %s", l, r),
				"replace the placeholder predicate with a real filter")
			return
		}
	}

	for _, pattern := range c.cfg.ExtraPatterns {
		if compileWildcardLike(pattern).MatchString(text) {
			result.AddViolation(c.DefaultRiskLevel(), c.ID(),
				fmt.Sprintf("WHERE clause matches configured dummy-predicate pattern %q: %s", pattern, text),
				"replace the placeholder predicate with a real filter")
			return
		}
	}
}

// BlacklistOnlyWhere flags a WHERE clause whose referenced columns are
// all low-selectivity (state flags, soft-delete markers).
type BlacklistOnlyWhere struct {
	cfg sqlguard.BlacklistOnlyWhereConfig
	sqlguard.BaseChecker
}

func NewBlacklistOnlyWhere(cfg sqlguard.BlacklistOnlyWhereConfig) *BlacklistOnlyWhere {
	return &BlacklistOnlyWhere{cfg: cfg}
}

func (c *BlacklistOnlyWhere) ID() string                   { return "BlacklistOnlyWhere" }
func (c *BlacklistOnlyWhere) Enabled() bool                { return c.cfg.Enabled }
func (c *BlacklistOnlyWhere) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.HIGH) }

func (c *BlacklistOnlyWhere) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(n.Where, result)
}

func (c *BlacklistOnlyWhere) OnUpdate(n *ast.UpdateStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(n.Where, result)
}

func (c *BlacklistOnlyWhere) OnDelete(n *ast.DeleteStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(n.Where, result)
}

func (c *BlacklistOnlyWhere) check(where ast.ExprNode, result *sqlguard.ValidationResult) {
	if where == nil {
		return
	}
	cols := sqlguard.ExtractColumns(where)
	if len(cols) == 0 {
		return
	}
	if sqlguard.AllMatch(cols, c.cfg.Fields) {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("WHERE clause uses only low-selectivity columns: %s", joinSet(cols)),
			"add a high-selectivity predicate such as a primary or unique key")
	}
}

// WhitelistRequired flags writes (and primary-FROM selects) against
// tables that require at least one high-selectivity column in WHERE.
type WhitelistRequired struct {
	cfg sqlguard.WhitelistRequiredConfig
	sqlguard.BaseChecker
}

func NewWhitelistRequired(cfg sqlguard.WhitelistRequiredConfig) *WhitelistRequired {
	return &WhitelistRequired{cfg: cfg}
}

func (c *WhitelistRequired) ID() string                   { return "WhitelistRequired" }
func (c *WhitelistRequired) Enabled() bool                { return c.cfg.Enabled }
func (c *WhitelistRequired) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.MEDIUM) }

func (c *WhitelistRequired) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	// Only the primary (left-most) FROM table is checked for SELECTs.
	tables := map[string]struct{}{}
	var node ast.ResultSetNode
	if n.From != nil && n.From.TableRefs != nil {
		node = n.From.TableRefs
	}
	for join, ok := node.(*ast.Join); ok && join != nil; join, ok = node.(*ast.Join) {
		node = join.Left
	}
	if ts, ok := node.(*ast.TableSource); ok {
		if tn, ok := ts.Source.(*ast.TableName); ok {
			tables = sqlguard.ExtractTables(tn)
		}
	}
	c.check(tables, n.Where, result)
}

func (c *WhitelistRequired) OnUpdate(n *ast.UpdateStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(sqlguard.ExtractTables(n.TableRefs), n.Where, result)
}

func (c *WhitelistRequired) OnDelete(n *ast.DeleteStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(sqlguard.ExtractTables(n.TableRefs), n.Where, result)
}

func (c *WhitelistRequired) check(tables map[string]struct{}, where ast.ExprNode, result *sqlguard.ValidationResult) {
	whereCols := map[string]struct{}{}
	if where != nil {
		whereCols = sqlguard.ExtractColumns(where)
	}

	for table := range tables {
		required, known := c.requiredFields(table)
		if !known {
			if !c.cfg.EnforceForUnknownTables {
				continue
			}
			required = c.cfg.GlobalFields
		}
		if len(required) == 0 {
			continue
		}
		if sqlguard.Disjoint(whereCols, required) {
			result.AddViolation(c.DefaultRiskLevel(), c.ID(),
				fmt.Sprintf("table %q requires one of %v in WHERE, found %s", table, required, joinSet(whereCols)),
				"add one of the required high-selectivity columns to WHERE")
		}
	}
}

func (c *WhitelistRequired) requiredFields(table string) ([]string, bool) {
	for pattern, fields := range c.cfg.ByTable {
		if sqlguard.MatchesAny(table, []string{pattern}) {
			return fields, true
		}
	}
	return nil, false
}

func joinSet(s map[string]struct{}) string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return fmt.Sprint(out)
}
