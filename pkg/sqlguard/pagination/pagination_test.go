package pagination_test

import (
	"testing"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmenjoy/sql-tools/pkg/sqlguard/pagination"
)

func parseSelect(t *testing.T, sql string) *ast.SelectStmt {
	t.Helper()
	p := parser.New()
	stmt, err := p.ParseOneStmt(sql, "", "")
	require.NoError(t, err)
	sel, ok := stmt.(*ast.SelectStmt)
	require.True(t, ok, "expected a SELECT statement")
	return sel
}

func TestAnalyze_NoLimitNoOrderBy(t *testing.T) {
	info := pagination.Analyze(parseSelect(t, "SELECT * FROM users"), "SELECT * FROM users")
	assert.False(t, info.HasPagination())
	assert.False(t, info.HasOrderBy)
}

func TestAnalyze_LimitOffsetLiterals(t *testing.T) {
	sql := "SELECT * FROM users LIMIT 50 OFFSET 2000"
	info := pagination.Analyze(parseSelect(t, sql), sql)

	assert.True(t, info.HasPagination())
	require.True(t, info.PageSize.Known)
	assert.Equal(t, int64(50), info.PageSize.N)
	require.True(t, info.Offset.Known)
	assert.Equal(t, int64(2000), info.Offset.N)
}

func TestAnalyze_LimitWithoutOffsetDefaultsOffsetToZero(t *testing.T) {
	sql := "SELECT * FROM users LIMIT 10"
	info := pagination.Analyze(parseSelect(t, sql), sql)

	require.True(t, info.Offset.Known)
	assert.Equal(t, int64(0), info.Offset.N)
}

func TestAnalyze_OrderByDetected(t *testing.T) {
	sql := "SELECT * FROM users ORDER BY id LIMIT 10"
	info := pagination.Analyze(parseSelect(t, sql), sql)
	assert.True(t, info.HasOrderBy)
}

func TestAnalyze_RownumDetectedInRawText(t *testing.T) {
	sql := "SELECT * FROM (SELECT a.*, ROWNUM rnum FROM users a) WHERE rnum <= 10"
	info := pagination.Analyze(parseSelect(t, sql), sql)
	assert.True(t, info.HasPagination())
	assert.True(t, info.RawRownum)
}

// TOP and FETCH FIRST/OFFSET-FETCH are not valid MySQL syntax, so tidb's
// grammar cannot produce an AST for them at all — exactly why §4.8 calls
// for a raw-text fallback in the first place. These exercise Analyze's
// raw-text path directly with a nil stmt, the same state a caller sees
// when the statement failed to parse but raw-text checkers still run.
func TestAnalyze_TopDetectedInRawText(t *testing.T) {
	sql := "SELECT TOP 10 * FROM users"
	info := pagination.Analyze(nil, sql)
	assert.True(t, info.HasPagination())
	assert.True(t, info.RawTop)
}

func TestAnalyze_FetchFirstDetectedInRawText(t *testing.T) {
	sql := "SELECT * FROM users ORDER BY id OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY"
	info := pagination.Analyze(nil, sql)
	assert.True(t, info.HasPagination())
	assert.True(t, info.RawFetch)
}

func TestAnalyze_OffsetRowsDetectedInRawText(t *testing.T) {
	sql := "SELECT * FROM users ORDER BY id OFFSET 5 ROWS"
	info := pagination.Analyze(nil, sql)
	assert.True(t, info.HasPagination())
	assert.True(t, info.RawFetch)
}

func TestAnalyze_NoFalsePositiveOnPlainSelect(t *testing.T) {
	sql := "SELECT * FROM users WHERE id = 1"
	info := pagination.Analyze(parseSelect(t, sql), sql)
	assert.False(t, info.HasPagination())
	assert.False(t, info.RawTop)
	assert.False(t, info.RawFetch)
	assert.False(t, info.RawRownum)
}

func TestParseLiteralInt(t *testing.T) {
	n, ok := pagination.ParseLiteralInt("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok = pagination.ParseLiteralInt("not-a-number")
	assert.False(t, ok)
}
