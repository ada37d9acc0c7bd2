// Package pagination implements the shared dialect-agnostic pagination
// helper from spec §4.8, used by every pagination checker so none of them
// re-derive LIMIT/OFFSET extraction independently.
package pagination

import (
	"regexp"
	"strconv"

	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/test_driver"

	"github.com/wmenjoy/sql-tools/internal/rawscan"
)

// Value represents a numeric pagination bound that may be unknown (a
// parameter marker, `?`, rather than a literal).
type Value struct {
	Known bool
	N     int64
}

// Info is the pagination shape of one SELECT. Each pagination checker
// computes its own Info by calling Analyze.
type Info struct {
	// HasLimit is true when the AST exposes a LIMIT/OFFSET clause.
	HasLimit bool
	Offset   Value
	PageSize Value

	// HasOrderBy is true when the statement has an ORDER BY clause.
	HasOrderBy bool

	// RawRownum is true when the raw SQL contains a standalone ROWNUM or
	// ROW_NUMBER() OVER marker outside a string literal — Oracle/SQL
	// Server-style pagination the grammar otherwise wouldn't surface as
	// a LIMIT node.
	RawRownum bool

	// RawTop is true when the raw SQL contains a SELECT TOP n marker —
	// SQL Server-style pagination tidb's MySQL grammar has no AST node
	// for.
	RawTop bool

	// RawFetch is true when the raw SQL contains a FETCH FIRST/NEXT ...
	// ROWS ONLY or OFFSET ... FETCH marker — standard SQL:2008
	// pagination tidb's MySQL grammar has no AST node for.
	RawFetch bool
}

var (
	rownumPattern = regexp.MustCompile(`(?i)\bROWNUM\b|\bROW_NUMBER\s*\(\s*\)\s*OVER\b`)
	topPattern    = regexp.MustCompile(`(?i)\bSELECT\s+(?:DISTINCT\s+)?TOP\s+\d+\b`)
	fetchPattern  = regexp.MustCompile(`(?i)\bFETCH\s+(?:FIRST|NEXT)\b|\bOFFSET\s+\d+\s+ROWS?\b`)
)

// HasPagination reports whether stmt (or its raw text) shows any physical
// pagination at all.
func (i Info) HasPagination() bool {
	return i.HasLimit || i.RawRownum || i.RawTop || i.RawFetch
}

// Analyze inspects a SELECT statement's Limit clause and raw SQL text to
// build an Info. rawSQL is used only for the ROWNUM/ROW_NUMBER()/TOP/FETCH
// text scans, which run after the shared rawscan state machine has
// blanked out the contents of string literals, so a marker inside a
// literal does not count.
func Analyze(stmt *ast.SelectStmt, rawSQL string) Info {
	bare := []rune(rawSQL)
	rawscan.Scan(rawSQL, func(t rawscan.Token) {
		if t.Before.InString() {
			bare[t.Index] = ' '
		}
	})
	text := string(bare)

	info := Info{
		RawRownum: rownumPattern.MatchString(text),
		RawTop:    topPattern.MatchString(text),
		RawFetch:  fetchPattern.MatchString(text),
	}

	if stmt == nil {
		return info
	}

	info.HasOrderBy = stmt.OrderBy != nil

	if stmt.Limit != nil {
		info.HasLimit = true
		info.PageSize = extractValue(stmt.Limit.Count)
		info.Offset = extractValue(stmt.Limit.Offset)
		if stmt.Limit.Offset == nil {
			info.Offset = Value{Known: true, N: 0}
		}
	}

	return info
}

func extractValue(expr ast.ExprNode) Value {
	if expr == nil {
		return Value{Known: true, N: 0}
	}
	switch v := expr.(type) {
	case *test_driver.ValueExpr:
		switch v.Kind() {
		case test_driver.KindInt64:
			return Value{Known: true, N: v.GetInt64()}
		case test_driver.KindUint64:
			return Value{Known: true, N: int64(v.GetUint64())}
		}
	}
	return Value{Known: false}
}

// ParseLiteralInt is a small helper for checkers that need to compare a
// raw threshold expressed in config against a parsed pagination value.
func ParseLiteralInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
