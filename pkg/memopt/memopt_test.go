package memopt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resgov/resgov/pkg/actuator"
	"github.com/resgov/resgov/pkg/model"
)

type fakeActuator struct {
	suspended map[int]bool
	outcome   actuator.Outcome
	failPIDs  map[int]bool // Suspend of these pids reports NotFound
}

func newFakeActuator() *fakeActuator {
	return &fakeActuator{suspended: map[int]bool{}, outcome: actuator.Outcome{Kind: actuator.Ok}}
}

func (f *fakeActuator) Suspend(pid int) actuator.Outcome {
	f.suspended[pid] = true
	if f.failPIDs[pid] {
		return actuator.Outcome{Kind: actuator.NotFound}
	}
	return f.outcome
}

func (f *fakeActuator) Resume(pid int) actuator.Outcome {
	f.suspended[pid] = false
	return f.outcome
}

func bigProcess(pid int, memMB int64) model.ProcessRecord {
	return model.ProcessRecord{PID: pid, MemoryBytes: memMB * 1024 * 1024}
}

func TestOptimizeSuspendsUnderMemoryPressure(t *testing.T) {
	table := model.ProcessTable{bigProcess(1, 500)}
	act := newFakeActuator()

	Optimize(table, 95, 0, 200, act)

	assert.True(t, table[0].IsSuspended)
	assert.True(t, act.suspended[1])
}

func TestOptimizeSuspendsUnderSwapPressure(t *testing.T) {
	table := model.ProcessTable{bigProcess(1, 500)}
	act := newFakeActuator()

	Optimize(table, 0, 80, 200, act)

	assert.True(t, table[0].IsSuspended)
}

func TestOptimizeDeadZoneDoesNothing(t *testing.T) {
	table := model.ProcessTable{bigProcess(1, 500)}
	act := newFakeActuator()

	// Between relief (70/50) and pressure (90/70) thresholds: neither rule fires.
	Optimize(table, 80, 60, 200, act)

	assert.False(t, table[0].IsSuspended)
	assert.Empty(t, act.suspended)
}

func TestOptimizeCapsSuspendsPerRound(t *testing.T) {
	table := model.ProcessTable{
		bigProcess(1, 900),
		bigProcess(2, 800),
		bigProcess(3, 700),
		bigProcess(4, 600),
		bigProcess(5, 500),
	}
	act := newFakeActuator()

	Optimize(table, 95, 0, 200, act)

	suspendedCount := 0
	for _, rec := range table {
		if rec.IsSuspended {
			suspendedCount++
		}
	}
	assert.Equal(t, maxSuspendsPerRound, suspendedCount)
	// Largest-memory processes must be chosen first.
	assert.True(t, table[0].IsSuspended)
	assert.True(t, table[1].IsSuspended)
	assert.True(t, table[2].IsSuspended)
	assert.False(t, table[3].IsSuspended)
}

func TestOptimizeSkipsSystemForegroundAndUnderThreshold(t *testing.T) {
	table := model.ProcessTable{
		{PID: 1, IsSystem: true, MemoryBytes: 999 * 1024 * 1024},
		{PID: 2, IsForeground: true, MemoryBytes: 999 * 1024 * 1024},
		{PID: 3, MemoryBytes: 10 * 1024 * 1024},
	}
	act := newFakeActuator()

	Optimize(table, 95, 0, 200, act)

	assert.Empty(t, act.suspended)
}

func TestOptimizeResumesUnderRelief(t *testing.T) {
	table := model.ProcessTable{
		{PID: 1, IsSuspended: true},
		{PID: 2, IsSystem: true, IsSuspended: true},
	}
	act := newFakeActuator()

	Optimize(table, 40, 10, 200, act)

	assert.False(t, table[0].IsSuspended)
	assert.True(t, table[1].IsSuspended, "system processes are never auto-resumed either")
}

func TestOptimizeFailedSuspendDoesNotCountAgainstCap(t *testing.T) {
	table := model.ProcessTable{
		bigProcess(1, 900),
		bigProcess(2, 800),
	}
	act := newFakeActuator()
	act.outcome = actuator.Outcome{Kind: actuator.NotFound}

	Optimize(table, 95, 0, 200, act)

	assert.False(t, table[0].IsSuspended)
	assert.False(t, table[1].IsSuspended)

	// The largest candidate fails; the next three still fill the cap of
	// three, and the fifth is left alone.
	table = model.ProcessTable{
		bigProcess(1, 900),
		bigProcess(2, 800),
		bigProcess(3, 700),
		bigProcess(4, 600),
		bigProcess(5, 500),
	}
	act = newFakeActuator()
	act.failPIDs = map[int]bool{1: true}

	Optimize(table, 95, 0, 200, act)

	assert.False(t, table[0].IsSuspended)
	assert.True(t, table[1].IsSuspended)
	assert.True(t, table[2].IsSuspended)
	assert.True(t, table[3].IsSuspended)
	assert.False(t, table[4].IsSuspended)
}

func TestOptimizeAggregatesFailuresIntoErrorCollection(t *testing.T) {
	table := model.ProcessTable{
		bigProcess(1, 900),
		bigProcess(2, 800),
	}
	act := newFakeActuator()
	act.outcome = actuator.Outcome{Kind: actuator.Other, Err: assert.AnError}

	errs := Optimize(table, 95, 0, 200, act)

	assert.True(t, errs.HasErrors())
	assert.Len(t, errs.Errors, 2)
}

func TestOptimizeCleanPassReturnsEmptyErrorCollection(t *testing.T) {
	table := model.ProcessTable{bigProcess(1, 500)}
	act := newFakeActuator()

	errs := Optimize(table, 95, 0, 200, act)

	assert.False(t, errs.HasErrors())
}
