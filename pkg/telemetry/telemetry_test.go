package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resgov/resgov/pkg/model"
)

func TestCollectAccumulatesStats(t *testing.T) {
	a := NewAnalyzer()
	a.Collect(model.ProcessTable{}, 10, 20)
	a.Collect(model.ProcessTable{}, 30, 40)

	stats := a.Stats()
	assert.InDelta(t, 20.0, stats.AvgMemoryUsage, 0.01)
	assert.InDelta(t, 30.0, stats.MaxMemoryUsage, 0.01)
	assert.InDelta(t, 30.0, stats.AvgCPUUsage, 0.01)
	assert.InDelta(t, 40.0, stats.MaxCPUUsage, 0.01)
}

func TestCollectWindowEvictsOldestBeyondCapacity(t *testing.T) {
	a := NewAnalyzer()
	for i := 0; i < windowSize+10; i++ {
		a.Collect(model.ProcessTable{}, float64(i), float64(i))
	}

	stats := a.Stats()
	// The oldest 10 samples (0..9) must have been evicted, so the max/avg
	// reflect only the most recent windowSize samples.
	assert.Equal(t, float64(windowSize+9), stats.MaxMemoryUsage)
	assert.InDelta(t, float64(windowSize+9+10)/2, stats.AvgMemoryUsage, 0.01)
}

func TestCollectDistributionCategorizesExclusively(t *testing.T) {
	a := NewAnalyzer()
	table := model.ProcessTable{
		{PID: 1, IsSystem: true},
		{PID: 2, IsForeground: true},
		{PID: 3},
		{PID: 4, IsSuspended: true},
	}
	a.Collect(table, 0, 0)

	dist := a.Distribution()
	assert.Equal(t, 1, dist.System)
	assert.Equal(t, 1, dist.Foreground)
	assert.Equal(t, 2, dist.Background, "the suspended, non-system, non-foreground record also counts as background")
	assert.Equal(t, 1, dist.Suspended)

	stats := a.Stats()
	assert.Equal(t, 4, stats.TotalProcesses)
	assert.Equal(t, 1, stats.Suspended)
}

func TestResetClearsState(t *testing.T) {
	a := NewAnalyzer()
	a.Collect(model.ProcessTable{{PID: 1, IsSuspended: true}}, 50, 60)

	a.Reset()

	stats := a.Stats()
	assert.Equal(t, Stats{}, stats)
	assert.Equal(t, Distribution{}, a.Distribution())
}
