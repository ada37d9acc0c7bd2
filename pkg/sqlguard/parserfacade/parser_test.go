package parserfacade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmenjoy/sql-tools/pkg/sqlguard/parserfacade"
)

func TestParse_ValidSelectSucceeds(t *testing.T) {
	f, err := parserfacade.New(16)
	require.NoError(t, err)

	stmt, ok, err := f.Parse("SELECT * FROM users WHERE id = 1")
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.NotNil(t, stmt)
}

func TestParse_InvalidSQLFailsLeniently(t *testing.T) {
	f, err := parserfacade.New(16)
	require.NoError(t, err)

	_, ok, err := f.Parse("SELEKT * FROM users")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestParse_CacheHitAvoidsReparsing(t *testing.T) {
	f, err := parserfacade.New(16)
	require.NoError(t, err)

	sql := "SELECT * FROM users WHERE id = 1"
	_, ok1, _ := f.Parse(sql)
	require.True(t, ok1)
	assert.Equal(t, 1, f.Len())

	_, ok2, _ := f.Parse(sql)
	assert.True(t, ok2)
	assert.Equal(t, 1, f.Len(), "second parse of identical SQL should hit the cache, not grow it")
}

func TestParse_NormalizedVariantsShareOneCacheEntry(t *testing.T) {
	f, err := parserfacade.New(16)
	require.NoError(t, err)

	_, _, _ = f.Parse("select   *   FROM users WHERE id = 1")
	_, _, _ = f.Parse("SELECT * FROM users WHERE id = 1;")

	assert.Equal(t, 1, f.Len())
}

func TestParse_ZeroCapacityDisablesCaching(t *testing.T) {
	f, err := parserfacade.New(0)
	require.NoError(t, err)

	_, _, _ = f.Parse("SELECT 1")
	assert.Equal(t, 0, f.Len())
}

func TestEvictAndClear(t *testing.T) {
	f, err := parserfacade.New(16)
	require.NoError(t, err)

	sql := "SELECT 1"
	_, _, _ = f.Parse(sql)
	assert.Equal(t, 1, f.Len())

	f.Evict(sql)
	assert.Equal(t, 0, f.Len())

	_, _, _ = f.Parse(sql)
	_, _, _ = f.Parse("SELECT 2")
	assert.Equal(t, 2, f.Len())

	f.Clear()
	assert.Equal(t, 0, f.Len())
}

func TestNormalize_CollapsesWhitespaceAndTrimsTrailingSemicolons(t *testing.T) {
	got := parserfacade.Normalize("select   *  from users  ;;  ")
	assert.Equal(t, "SELECT * from users", got)
}

func TestNormalize_PreservesStringLiteralsAndComments(t *testing.T) {
	got := parserfacade.Normalize("select 'a   b' from x -- trailing   spaces")
	assert.Contains(t, got, "'a   b'")
}

func TestNormalize_Idempotent(t *testing.T) {
	once := parserfacade.Normalize("select  *  from users")
	twice := parserfacade.Normalize(once)
	assert.Equal(t, once, twice)
}

func TestParse_StrictModeReturnsErrorToCaller(t *testing.T) {
	f, err := parserfacade.New(16, parserfacade.WithStrictMode(true))
	require.NoError(t, err)

	_, ok, err := f.Parse("SELEKT * FROM users")
	assert.False(t, ok)
	assert.Error(t, err)
}
