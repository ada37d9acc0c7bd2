package sqlguard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wmenjoy/sql-tools/pkg/sqlguard"
)

func TestStrategyDispatcher_EmptyResultIgnored(t *testing.T) {
	d := sqlguard.NewStrategyDispatcher(sqlguard.DefaultStrategyConfig())
	assert.Equal(t, sqlguard.IGNORE, d.Dispatch(sqlguard.NewResult().Seal()))
}

func TestStrategyDispatcher_TakesWorstOutcome(t *testing.T) {
	r := sqlguard.NewResult()
	r.AddViolation(sqlguard.LOW, "A", "a", "")
	r.AddViolation(sqlguard.HIGH, "B", "b", "")
	r.Seal()

	d := sqlguard.NewStrategyDispatcher(sqlguard.DefaultStrategyConfig())
	assert.Equal(t, sqlguard.FAIL, d.Dispatch(r))
}

func TestStrategyDispatcher_PerCheckerOverride(t *testing.T) {
	r := sqlguard.NewResult()
	r.AddViolation(sqlguard.CRITICAL, "NoisyChecker", "noisy", "")
	r.Seal()

	cfg := sqlguard.DefaultStrategyConfig()
	cfg.PerChecker["NoisyChecker"] = sqlguard.LOG

	d := sqlguard.NewStrategyDispatcher(cfg)
	assert.Equal(t, sqlguard.LOG, d.Dispatch(r))
}
