package sqlguard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmenjoy/sql-tools/pkg/sqlguard"
)

func TestContextBuilder_RejectsEmptySQL(t *testing.T) {
	_, err := sqlguard.NewContext("   ").Build()
	assert.Error(t, err)

	_, err = sqlguard.NewContext("").Build()
	assert.Error(t, err)
}

func TestContextBuilder_InfersKindFromRawSQL(t *testing.T) {
	cases := map[string]sqlguard.StatementKind{
		"SELECT * FROM users":  sqlguard.SELECT,
		"INSERT INTO users ()": sqlguard.INSERT,
		"UPDATE users SET x=1": sqlguard.UPDATE,
		"DELETE FROM users":    sqlguard.DELETE,
		"CREATE TABLE t (x)":   sqlguard.DDL,
		"SHOW TABLES":          sqlguard.OTHER,
	}
	for sql, want := range cases {
		ctx, err := sqlguard.NewContext(sql).Build()
		require.NoError(t, err, sql)
		assert.Equal(t, want, ctx.Kind(), sql)
	}
}

func TestContextBuilder_WithKindBypassesInference(t *testing.T) {
	ctx, err := sqlguard.NewContext("SELECT 1").WithKind(sqlguard.OTHER).Build()
	require.NoError(t, err)
	assert.Equal(t, sqlguard.OTHER, ctx.Kind())
}

func TestContextBuilder_GeneratesStatementIDWhenUnset(t *testing.T) {
	ctx, err := sqlguard.NewContext("SELECT 1").Build()
	require.NoError(t, err)
	assert.NotEmpty(t, ctx.StatementID())
}

func TestContextBuilder_PreservesExplicitStatementID(t *testing.T) {
	ctx, err := sqlguard.NewContext("SELECT 1").WithStatementID("req-42").Build()
	require.NoError(t, err)
	assert.Equal(t, "req-42", ctx.StatementID())
}

func TestContextBuilder_PaginationHintRoundTrip(t *testing.T) {
	ctx, err := sqlguard.NewContext("SELECT 1").
		WithPaginationHint(sqlguard.PaginationHint{Offset: 20, Limit: 10}).
		Build()
	require.NoError(t, err)

	hint, ok := ctx.PaginationHint()
	require.True(t, ok)
	assert.Equal(t, int64(20), hint.Offset)
	assert.Equal(t, int64(10), hint.Limit)
}

func TestContextBuilder_NoPaginationHintByDefault(t *testing.T) {
	ctx, err := sqlguard.NewContext("SELECT 1").Build()
	require.NoError(t, err)

	_, ok := ctx.PaginationHint()
	assert.False(t, ok)
}
