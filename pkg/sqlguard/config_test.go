package sqlguard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmenjoy/sql-tools/pkg/sqlguard"
)

func TestDefaultCatalogConfigValidates(t *testing.T) {
	cfg := sqlguard.DefaultCatalogConfig()
	assert.NoError(t, cfg.Validate())
}

func TestGlobalConfig_NegativeCapacityRejected(t *testing.T) {
	cfg := sqlguard.DefaultGlobalConfig()
	cfg.ParseCacheCapacity = -1

	err := cfg.Validate()
	require.Error(t, err)
	var cfgErr *sqlguard.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCatalogConfig_InvalidRiskLevelOverrideRejected(t *testing.T) {
	cfg := sqlguard.DefaultCatalogConfig()
	cfg.MissingWhere.RiskLevelOverride = "not-a-level"

	err := cfg.Validate()
	require.Error(t, err)
}

func TestCatalogConfig_NegativeThresholdRejected(t *testing.T) {
	cfg := sqlguard.DefaultCatalogConfig()
	cfg.DeepOffset.Threshold = -5

	err := cfg.Validate()
	require.Error(t, err)
}

func TestCheckerBase_ResolveOverride(t *testing.T) {
	base := sqlguard.CheckerBase{Enabled: true, RiskLevelOverride: "low"}
	assert.Equal(t, sqlguard.LOW, base.Resolve(sqlguard.CRITICAL))

	unset := sqlguard.CheckerBase{Enabled: true}
	assert.Equal(t, sqlguard.CRITICAL, unset.Resolve(sqlguard.CRITICAL))
}
