package checkers

import (
	"fmt"

	"github.com/pingcap/tidb/parser/ast"

	"github.com/wmenjoy/sql-tools/pkg/sqlguard"
	"github.com/wmenjoy/sql-tools/pkg/sqlguard/pagination"
)

// LogicalPagination flags a host-declared paginationHint with no physical
// LIMIT/TOP/FETCH/ROWNUM in the SQL text.
type LogicalPagination struct {
	cfg sqlguard.LogicalPaginationConfig
	sqlguard.BaseChecker
}

func NewLogicalPagination(cfg sqlguard.LogicalPaginationConfig) *LogicalPagination {
	return &LogicalPagination{cfg: cfg}
}

func (c *LogicalPagination) ID() string                   { return "LogicalPagination" }
func (c *LogicalPagination) Enabled() bool                { return c.cfg.Enabled }
func (c *LogicalPagination) DefaultRiskLevel() sqlguard.RiskLevel {
	return c.cfg.Resolve(sqlguard.CRITICAL)
}

func (c *LogicalPagination) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	hint, ok := ctx.PaginationHint()
	if !ok {
		return
	}
	info := pagination.Analyze(n, ctx.RawSQL())
	if !info.HasPagination() {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("host declared pagination (offset=%d limit=%d) but SQL has no physical LIMIT/TOP/FETCH/ROWNUM", hint.Offset, hint.Limit),
			"apply pagination in the SQL text itself, not only out-of-band")
	}
}

// PaginationWithoutPredicate flags physical pagination present with no
// WHERE clause — LIMIT alone never bounds which rows are affected.
type PaginationWithoutPredicate struct {
	cfg sqlguard.PaginationWithoutPredicateConfig
	sqlguard.BaseChecker
}

func NewPaginationWithoutPredicate(cfg sqlguard.PaginationWithoutPredicateConfig) *PaginationWithoutPredicate {
	return &PaginationWithoutPredicate{cfg: cfg}
}

func (c *PaginationWithoutPredicate) ID() string    { return "PaginationWithoutPredicate" }
func (c *PaginationWithoutPredicate) Enabled() bool { return c.cfg.Enabled }
func (c *PaginationWithoutPredicate) DefaultRiskLevel() sqlguard.RiskLevel {
	return c.cfg.Resolve(sqlguard.CRITICAL)
}

func (c *PaginationWithoutPredicate) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	info := pagination.Analyze(n, ctx.RawSQL())
	if info.HasPagination() && n.Where == nil {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			"pagination is present but WHERE is absent",
			"add a WHERE clause; LIMIT alone does not scope which rows are paged")
	}
}

// DeepOffset flags an explicit numeric offset above a configured
// threshold.
type DeepOffset struct {
	cfg sqlguard.DeepOffsetConfig
	sqlguard.BaseChecker
}

func NewDeepOffset(cfg sqlguard.DeepOffsetConfig) *DeepOffset {
	return &DeepOffset{cfg: cfg}
}

func (c *DeepOffset) ID() string                   { return "DeepOffset" }
func (c *DeepOffset) Enabled() bool                { return c.cfg.Enabled }
func (c *DeepOffset) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.MEDIUM) }

func (c *DeepOffset) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	info := pagination.Analyze(n, ctx.RawSQL())
	if info.Offset.Known && info.Offset.N > c.cfg.Threshold {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("offset %d exceeds threshold %d", info.Offset.N, c.cfg.Threshold),
			"use keyset/seek pagination instead of a deep OFFSET")
	}
}

// LargePageSize flags an explicit page size above a configured threshold.
type LargePageSize struct {
	cfg sqlguard.LargePageSizeConfig
	sqlguard.BaseChecker
}

func NewLargePageSize(cfg sqlguard.LargePageSizeConfig) *LargePageSize {
	return &LargePageSize{cfg: cfg}
}

func (c *LargePageSize) ID() string                   { return "LargePageSize" }
func (c *LargePageSize) Enabled() bool                { return c.cfg.Enabled }
func (c *LargePageSize) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.MEDIUM) }

func (c *LargePageSize) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	info := pagination.Analyze(n, ctx.RawSQL())
	if info.PageSize.Known && info.PageSize.N > c.cfg.Threshold {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			fmt.Sprintf("page size %d exceeds threshold %d", info.PageSize.N, c.cfg.Threshold),
			"reduce the page size or add server-side capping")
	}
}

// UnorderedPagination flags pagination without ORDER BY, which makes
// page boundaries non-deterministic across calls.
type UnorderedPagination struct {
	cfg sqlguard.UnorderedPaginationConfig
	sqlguard.BaseChecker
}

func NewUnorderedPagination(cfg sqlguard.UnorderedPaginationConfig) *UnorderedPagination {
	return &UnorderedPagination{cfg: cfg}
}

func (c *UnorderedPagination) ID() string                   { return "UnorderedPagination" }
func (c *UnorderedPagination) Enabled() bool                { return c.cfg.Enabled }
func (c *UnorderedPagination) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.LOW) }

func (c *UnorderedPagination) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	info := pagination.Analyze(n, ctx.RawSQL())
	if info.HasPagination() && !info.HasOrderBy {
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			"pagination is present but ORDER BY is absent",
			"add a deterministic ORDER BY so page boundaries are stable")
	}
}

// UnboundedSelect flags a SELECT with no pagination at all; severity
// escalates based on the strength of the WHERE clause.
type UnboundedSelect struct {
	cfg        sqlguard.UnboundedSelectConfig
	blacklist  []string
	sqlguard.BaseChecker
}

// NewUnboundedSelect takes the same blacklist patterns as
// BlacklistOnlyWhere so the two checkers agree on what "only
// low-selectivity" means when computing severity escalation.
func NewUnboundedSelect(cfg sqlguard.UnboundedSelectConfig, blacklist []string) *UnboundedSelect {
	return &UnboundedSelect{cfg: cfg, blacklist: blacklist}
}

func (c *UnboundedSelect) ID() string    { return "UnboundedSelect" }
func (c *UnboundedSelect) Enabled() bool { return c.cfg.Enabled }
func (c *UnboundedSelect) DefaultRiskLevel() sqlguard.RiskLevel {
	return c.cfg.Resolve(sqlguard.MEDIUM)
}

func (c *UnboundedSelect) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	info := pagination.Analyze(n, ctx.RawSQL())
	if info.HasPagination() {
		return
	}
	if _, hinted := ctx.PaginationHint(); hinted {
		return
	}

	level := c.cfg.Resolve(sqlguard.MEDIUM)
	switch {
	case n.Where == nil:
		level = sqlguard.CRITICAL
	case sqlguard.AllMatch(sqlguard.ExtractColumns(n.Where), c.blacklist):
		level = sqlguard.HIGH
	}

	result.AddViolation(level, c.ID(),
		"SELECT has no pagination and no pagination hint",
		"add LIMIT/OFFSET or equivalent dialect pagination")
}
