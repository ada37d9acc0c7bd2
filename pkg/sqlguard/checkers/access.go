package checkers

import (
	"fmt"

	"github.com/pingcap/tidb/parser/ast"

	"github.com/wmenjoy/sql-tools/internal/rawscan"
	"github.com/wmenjoy/sql-tools/pkg/sqlguard"
)

// DdlInDmlContext flags any DDL statement unless its top-level operation
// is in the allow-list.
type DdlInDmlContext struct {
	cfg sqlguard.DdlInDmlContextConfig
	sqlguard.BaseChecker
}

func NewDdlInDmlContext(cfg sqlguard.DdlInDmlContextConfig) *DdlInDmlContext {
	return &DdlInDmlContext{cfg: cfg}
}

func (c *DdlInDmlContext) ID() string                   { return "DdlInDmlContext" }
func (c *DdlInDmlContext) Enabled() bool                { return c.cfg.Enabled }
func (c *DdlInDmlContext) DefaultRiskLevel() sqlguard.RiskLevel {
	return c.cfg.Resolve(sqlguard.CRITICAL)
}

func (c *DdlInDmlContext) OnDdl(n ast.DDLNode, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	op := ddlOperationName(n)
	if sqlguard.MatchesAny(op, c.cfg.AllowedOperations) {
		return
	}
	result.AddViolation(c.DefaultRiskLevel(), c.ID(),
		fmt.Sprintf("DDL operation %s is not allowed in this context", op),
		"route schema changes through a migration tool, not the query path")
}

func ddlOperationName(n ast.DDLNode) string {
	switch n.(type) {
	case *ast.CreateTableStmt, *ast.CreateIndexStmt, *ast.CreateViewStmt, *ast.CreateDatabaseStmt:
		return "CREATE"
	case *ast.AlterTableStmt, *ast.AlterDatabaseStmt:
		return "ALTER"
	case *ast.DropTableStmt, *ast.DropIndexStmt, *ast.DropDatabaseStmt, *ast.DropViewStmt:
		return "DROP"
	case *ast.TruncateTableStmt:
		return "TRUNCATE"
	default:
		return "DDL"
	}
}

// ProcedureCall flags CALL/EXECUTE/EXEC. Severity HIGH — procedures are
// often legitimate, so sqlguard.DefaultStrategyConfig maps this checker
// to WARN rather than FAIL.
type ProcedureCall struct {
	cfg sqlguard.ProcedureCallConfig
	sqlguard.BaseChecker
}

func NewProcedureCall(cfg sqlguard.ProcedureCallConfig) *ProcedureCall {
	return &ProcedureCall{cfg: cfg}
}

func (c *ProcedureCall) ID() string                   { return "ProcedureCall" }
func (c *ProcedureCall) Enabled() bool                { return c.cfg.Enabled }
func (c *ProcedureCall) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.HIGH) }

func (c *ProcedureCall) OnRawSQL(ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	switch rawscan.FirstMeaningfulToken(ctx.RawSQL()) {
	case "CALL", "EXECUTE", "EXEC":
		result.AddViolation(c.DefaultRiskLevel(), c.ID(),
			"statement invokes a stored procedure",
			"review the procedure's own permissions; consider routing through a dedicated RPC path")
	}
}

// MetadataQueries flags SHOW/DESCRIBE/DESC/USE and similar
// information-schema-style statements.
type MetadataQueries struct {
	cfg sqlguard.MetadataQueriesConfig
	sqlguard.BaseChecker
}

func NewMetadataQueries(cfg sqlguard.MetadataQueriesConfig) *MetadataQueries {
	return &MetadataQueries{cfg: cfg}
}

func (c *MetadataQueries) ID() string                   { return "MetadataQueries" }
func (c *MetadataQueries) Enabled() bool                { return c.cfg.Enabled }
func (c *MetadataQueries) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.HIGH) }

var metadataKeywords = map[string]struct{}{
	"SHOW": {}, "DESCRIBE": {}, "DESC": {}, "USE": {}, "EXPLAIN": {},
}

func (c *MetadataQueries) OnRawSQL(ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	tok := rawscan.FirstMeaningfulToken(ctx.RawSQL())
	if _, isMeta := metadataKeywords[tok]; !isMeta {
		return
	}
	if sqlguard.MatchesAny(tok, c.cfg.AllowedStatements) {
		return
	}
	result.AddViolation(c.DefaultRiskLevel(), c.ID(),
		fmt.Sprintf("statement is a metadata/introspection query (%s)", tok),
		"restrict schema introspection to administrative tooling")
}

// SessionMutation flags statement-level SET (session variables, SET
// NAMES, SET @var, SET sql_mode) without flagging UPDATE ... SET ....
type SessionMutation struct {
	cfg sqlguard.SessionMutationConfig
	sqlguard.BaseChecker
}

func NewSessionMutation(cfg sqlguard.SessionMutationConfig) *SessionMutation {
	return &SessionMutation{cfg: cfg}
}

func (c *SessionMutation) ID() string                   { return "SessionMutation" }
func (c *SessionMutation) Enabled() bool                { return c.cfg.Enabled }
func (c *SessionMutation) DefaultRiskLevel() sqlguard.RiskLevel {
	return c.cfg.Resolve(sqlguard.MEDIUM)
}

func (c *SessionMutation) OnRawSQL(ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	if rawscan.FirstMeaningfulToken(ctx.RawSQL()) != "SET" {
		return
	}
	result.AddViolation(c.DefaultRiskLevel(), c.ID(),
		"statement is a session-level SET, not part of an UPDATE",
		"session variable changes should go through a dedicated connection-setup path")
}

// DeniedTable flags any referenced table matching a denied pattern.
type DeniedTable struct {
	cfg sqlguard.DeniedTableConfig
	sqlguard.BaseChecker
}

func NewDeniedTable(cfg sqlguard.DeniedTableConfig) *DeniedTable {
	return &DeniedTable{cfg: cfg}
}

func (c *DeniedTable) ID() string                   { return "DeniedTable" }
func (c *DeniedTable) Enabled() bool                { return c.cfg.Enabled }
func (c *DeniedTable) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.CRITICAL) }

func (c *DeniedTable) OnSelect(n *ast.SelectStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(sqlguard.ExtractTables(n.From), result)
}
func (c *DeniedTable) OnUpdate(n *ast.UpdateStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(sqlguard.ExtractTables(n.TableRefs), result)
}
func (c *DeniedTable) OnDelete(n *ast.DeleteStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(sqlguard.ExtractTables(n.TableRefs), result)
}
func (c *DeniedTable) OnInsert(n *ast.InsertStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(sqlguard.ExtractTables(n.Table), result)
}

func (c *DeniedTable) check(tables map[string]struct{}, result *sqlguard.ValidationResult) {
	for table := range tables {
		if sqlguard.MatchesAny(table, c.cfg.Patterns) {
			result.AddViolation(c.DefaultRiskLevel(), c.ID(),
				fmt.Sprintf("statement references denied table %q", table),
				"remove the reference or request an exception for this table")
		}
	}
}

// ReadOnlyTable flags write statements (INSERT/UPDATE/DELETE) targeting a
// table in the read-only set. Reads are always allowed.
type ReadOnlyTable struct {
	cfg sqlguard.ReadOnlyTableConfig
	sqlguard.BaseChecker
}

func NewReadOnlyTable(cfg sqlguard.ReadOnlyTableConfig) *ReadOnlyTable {
	return &ReadOnlyTable{cfg: cfg}
}

func (c *ReadOnlyTable) ID() string                   { return "ReadOnlyTable" }
func (c *ReadOnlyTable) Enabled() bool                { return c.cfg.Enabled }
func (c *ReadOnlyTable) DefaultRiskLevel() sqlguard.RiskLevel { return c.cfg.Resolve(sqlguard.HIGH) }

func (c *ReadOnlyTable) OnUpdate(n *ast.UpdateStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(sqlguard.ExtractTables(n.TableRefs), result)
}
func (c *ReadOnlyTable) OnDelete(n *ast.DeleteStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(sqlguard.ExtractTables(n.TableRefs), result)
}
func (c *ReadOnlyTable) OnInsert(n *ast.InsertStmt, ctx *sqlguard.SqlContext, result *sqlguard.ValidationResult) {
	c.check(sqlguard.ExtractTables(n.Table), result)
}

func (c *ReadOnlyTable) check(tables map[string]struct{}, result *sqlguard.ValidationResult) {
	for table := range tables {
		if sqlguard.MatchesAny(table, c.cfg.Patterns) {
			result.AddViolation(c.DefaultRiskLevel(), c.ID(),
				fmt.Sprintf("write targets read-only table %q", table),
				"route writes for this table through its owning service")
		}
	}
}
