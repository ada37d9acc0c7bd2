package sqlguard

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pingcap/tidb/parser/ast"
	"github.com/wmenjoy/sql-tools/internal/rawscan"
)

// StatementKind classifies the top-level operation of a SqlContext.
type StatementKind int

const (
	UNKNOWN StatementKind = iota
	SELECT
	INSERT
	UPDATE
	DELETE
	DDL
	OTHER
)

func (k StatementKind) String() string {
	switch k {
	case SELECT:
		return "SELECT"
	case INSERT:
		return "INSERT"
	case UPDATE:
		return "UPDATE"
	case DELETE:
		return "DELETE"
	case DDL:
		return "DDL"
	case OTHER:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// Layer tags where in the host's stack a SqlContext originated. It is
// carried for reporting only — no checker branches on it.
type Layer int

const (
	LayerUnknown Layer = iota
	OrmHigh
	OrmLow
	Pool
	Driver
)

func (l Layer) String() string {
	switch l {
	case OrmHigh:
		return "ORM_HIGH"
	case OrmLow:
		return "ORM_LOW"
	case Pool:
		return "POOL"
	case Driver:
		return "DRIVER"
	default:
		return "UNKNOWN"
	}
}

// PaginationHint is an out-of-band assertion by the host that pagination
// was applied even though the SQL text itself doesn't show it (e.g. the
// ORM appended LIMIT/OFFSET after building the string this context was
// constructed from).
type PaginationHint struct {
	Offset int64
	Limit  int64
}

// SqlContext is the immutable bundle passed between the Parser Façade,
// the Orchestrator, and every Checker. It is built once per validation
// call via NewContext(...)...Build() and never mutated afterward.
type SqlContext struct {
	rawSQL         string
	statement      ast.StmtNode
	parseFailure   *ParseFailure
	kind           StatementKind
	statementID    string
	threadKey      string
	layer          Layer
	paginationHint *PaginationHint
}

func (c *SqlContext) RawSQL() string                     { return c.rawSQL }
func (c *SqlContext) Statement() ast.StmtNode             { return c.statement }
func (c *SqlContext) HasStatement() bool                  { return c.statement != nil }
func (c *SqlContext) ParseFailure() *ParseFailure         { return c.parseFailure }
func (c *SqlContext) Kind() StatementKind                 { return c.kind }
func (c *SqlContext) StatementID() string                 { return c.statementID }
func (c *SqlContext) ThreadKey() string                   { return c.threadKey }
func (c *SqlContext) Layer() Layer                        { return c.layer }
func (c *SqlContext) PaginationHint() (PaginationHint, bool) {
	if c.paginationHint == nil {
		return PaginationHint{}, false
	}
	return *c.paginationHint, true
}

// ContextBuilder implements the fluent build-then-freeze pattern required
// by spec §4.3: non-empty rawSQL and a kind consistent with the SQL's
// first meaningful keyword are enforced in Build().
type ContextBuilder struct {
	rawSQL         string
	statement      ast.StmtNode
	parseFailure   *ParseFailure
	kind           StatementKind
	kindAsserted   bool
	statementID    string
	threadKey      string
	layer          Layer
	paginationHint *PaginationHint
}

// NewContext starts a ContextBuilder for the given raw SQL text.
func NewContext(rawSQL string) *ContextBuilder {
	return &ContextBuilder{rawSQL: rawSQL}
}

func (b *ContextBuilder) WithStatement(stmt ast.StmtNode) *ContextBuilder {
	b.statement = stmt
	return b
}

func (b *ContextBuilder) WithParseFailure(f *ParseFailure) *ContextBuilder {
	b.parseFailure = f
	return b
}

// WithKind explicitly asserts the statement kind, bypassing the
// first-keyword consistency check in Build(). Hosts that already know the
// kind from their ORM layer use this to skip redundant text scanning.
func (b *ContextBuilder) WithKind(kind StatementKind) *ContextBuilder {
	b.kind = kind
	b.kindAsserted = true
	return b
}

func (b *ContextBuilder) WithStatementID(id string) *ContextBuilder {
	b.statementID = id
	return b
}

func (b *ContextBuilder) WithThreadKey(key string) *ContextBuilder {
	b.threadKey = key
	return b
}

func (b *ContextBuilder) WithLayer(layer Layer) *ContextBuilder {
	b.layer = layer
	return b
}

func (b *ContextBuilder) WithPaginationHint(hint PaginationHint) *ContextBuilder {
	b.paginationHint = &hint
	return b
}

// Build validates and freezes the context. It is the only place host
// input is rejected outright (empty/whitespace SQL), per spec §7's
// "programming errors in the host" clause.
func (b *ContextBuilder) Build() (*SqlContext, error) {
	if strings.TrimSpace(b.rawSQL) == "" {
		return nil, fmt.Errorf("sqlguard: empty or whitespace-only SQL")
	}

	kind := b.kind
	if !b.kindAsserted {
		kind = inferKind(b.rawSQL)
	}

	id := b.statementID
	if id == "" {
		id = uuid.NewString()
	}

	return &SqlContext{
		rawSQL:         b.rawSQL,
		statement:      b.statement,
		parseFailure:   b.parseFailure,
		kind:           kind,
		statementID:    id,
		threadKey:      b.threadKey,
		layer:          b.layer,
		paginationHint: b.paginationHint,
	}, nil
}

func inferKind(sql string) StatementKind {
	tok := rawscan.FirstMeaningfulToken(sql)
	switch tok {
	case "SELECT":
		return SELECT
	case "INSERT", "REPLACE":
		return INSERT
	case "UPDATE":
		return UPDATE
	case "DELETE":
		return DELETE
	case "CREATE", "ALTER", "DROP", "TRUNCATE":
		return DDL
	case "":
		return UNKNOWN
	default:
		return OTHER
	}
}
