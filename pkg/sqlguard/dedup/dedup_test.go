package dedup_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wmenjoy/sql-tools/pkg/sqlguard/dedup"
)

func TestShouldCheck_FirstSightTrueThenFalseWithinTTL(t *testing.T) {
	f := dedup.New[string](100, time.Minute)

	assert.True(t, f.ShouldCheck("thread-1", "SELECT 1"))
	assert.False(t, f.ShouldCheck("thread-1", "SELECT 1"))
}

func TestShouldCheck_DifferentThreadsAreIndependent(t *testing.T) {
	f := dedup.New[string](100, time.Minute)

	assert.True(t, f.ShouldCheck("thread-1", "SELECT 1"))
	assert.True(t, f.ShouldCheck("thread-2", "SELECT 1"))
}

func TestShouldCheck_ExpiresAfterTTL(t *testing.T) {
	f := dedup.New[string](100, 20*time.Millisecond)

	assert.True(t, f.ShouldCheck("thread-1", "SELECT 1"))
	time.Sleep(60 * time.Millisecond)
	assert.True(t, f.ShouldCheck("thread-1", "SELECT 1"), "entry should have expired and be re-checkable")
}

func TestRecordAndLookup(t *testing.T) {
	f := dedup.New[string](100, time.Minute)

	f.ShouldCheck("thread-1", "SELECT 1")
	_, ok := f.Lookup("thread-1", "SELECT 1")
	assert.False(t, ok, "lookup before Record should miss (pending, not ready)")

	f.Record("thread-1", "SELECT 1", "cached-result")
	v, ok := f.Lookup("thread-1", "SELECT 1")
	assert.True(t, ok)
	assert.Equal(t, "cached-result", v)
}

func TestClearThreadState(t *testing.T) {
	f := dedup.New[string](100, time.Minute)

	f.ShouldCheck("thread-1", "SELECT 1")
	f.Record("thread-1", "SELECT 1", "v")

	f.ClearThreadState("thread-1")

	_, ok := f.Lookup("thread-1", "SELECT 1")
	assert.False(t, ok)
	assert.True(t, f.ShouldCheck("thread-1", "SELECT 1"), "after clearing, the key should need re-checking")
}

func TestNew_DefaultsAppliedForNonPositiveInputs(t *testing.T) {
	f := dedup.New[string](0, 0)
	assert.True(t, f.ShouldCheck("t", "SELECT 1"))
}
