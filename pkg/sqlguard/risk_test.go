package sqlguard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wmenjoy/sql-tools/pkg/sqlguard"
)

func TestRiskLevelOrdering(t *testing.T) {
	assert.True(t, sqlguard.SAFE < sqlguard.LOW)
	assert.True(t, sqlguard.LOW < sqlguard.MEDIUM)
	assert.True(t, sqlguard.MEDIUM < sqlguard.HIGH)
	assert.True(t, sqlguard.HIGH < sqlguard.CRITICAL)
}

func TestRiskLevelString(t *testing.T) {
	assert.Equal(t, "SAFE", sqlguard.SAFE.String())
	assert.Equal(t, "CRITICAL", sqlguard.CRITICAL.String())
}

func TestParseRiskLevel(t *testing.T) {
	lvl, ok := sqlguard.ParseRiskLevel("high")
	assert.True(t, ok)
	assert.Equal(t, sqlguard.HIGH, lvl)

	_, ok = sqlguard.ParseRiskLevel("nonsense")
	assert.False(t, ok)
}
