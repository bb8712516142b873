package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resgov/resgov/pkg/actuator"
	"github.com/resgov/resgov/pkg/logging"
	"github.com/resgov/resgov/pkg/model"
)

type fakeActuator struct {
	priorities map[int]int
	suspended  map[int]bool
	outcome    actuator.Outcome
}

func newFakeActuator() *fakeActuator {
	return &fakeActuator{priorities: map[int]int{}, suspended: map[int]bool{}, outcome: actuator.Outcome{Kind: actuator.Ok}}
}

func (f *fakeActuator) SetPriority(pid, p int) actuator.Outcome {
	f.priorities[pid] = p
	return f.outcome
}

func (f *fakeActuator) Suspend(pid int) actuator.Outcome {
	f.suspended[pid] = true
	return f.outcome
}

func (f *fakeActuator) Resume(pid int) actuator.Outcome {
	f.suspended[pid] = false
	return f.outcome
}

func silentLogger() logging.Logger {
	noop := func(string, ...interface{}) {}
	return logging.NewLogger("", logging.LogFuncs{Debugf: noop, Infof: noop, Warnf: noop, Errorf: noop})
}

func TestApplyModeGamingClampsForegroundFloor(t *testing.T) {
	table := model.ProcessTable{{PID: 1, IsForeground: true, Priority: model.MinPriority + 2}}
	act := newFakeActuator()

	ApplyMode(table, model.ModeGaming, 200, act, silentLogger())

	assert.Equal(t, -15, table[0].Priority, "gaming boost must not cross the -15 gaming floor")
}

func TestApplyModeGamingBoostsBackground(t *testing.T) {
	table := model.ProcessTable{{PID: 2, IsForeground: false, IsSystem: false, Priority: 0}}
	act := newFakeActuator()

	ApplyMode(table, model.ModeGaming, 200, act, silentLogger())

	assert.Equal(t, 5, table[0].Priority)
}

func TestApplyModePowerSavingSuspendsOverThreshold(t *testing.T) {
	table := model.ProcessTable{
		{PID: 3, IsForeground: false, IsSystem: false, MemoryBytes: 300 * 1024 * 1024, Priority: 0},
	}
	act := newFakeActuator()

	ApplyMode(table, model.ModePowerSaving, 200, act, silentLogger())

	assert.True(t, table[0].IsSuspended)
	assert.True(t, act.suspended[3])
}

func TestApplyModePowerSavingNeverResumesWhileStillPowerSaving(t *testing.T) {
	table := model.ProcessTable{
		{PID: 4, IsForeground: false, IsSystem: false, MemoryBytes: 10, Priority: 0, IsSuspended: true},
	}
	act := newFakeActuator()

	ApplyMode(table, model.ModePowerSaving, 200, act, silentLogger())

	assert.True(t, table[0].IsSuspended, "power saving mode never auto-resumes")
}

func TestApplyModeNeverSuspendsSystemProcesses(t *testing.T) {
	table := model.ProcessTable{
		{PID: 5, IsSystem: true, MemoryBytes: 999 * 1024 * 1024, Priority: 0},
	}
	act := newFakeActuator()

	ApplyMode(table, model.ModePowerSaving, 1, act, silentLogger())

	assert.False(t, table[0].IsSuspended)
}

func TestApplyAlgorithmFCFSOrdersByPID(t *testing.T) {
	table := model.ProcessTable{
		{PID: 30},
		{PID: 10},
		{PID: 20},
	}
	act := newFakeActuator()

	ApplyAlgorithm(table, model.AlgorithmFCFS, act, silentLogger())

	assert.Equal(t, model.MinPriority, act.priorities[10])
	assert.Equal(t, model.MinPriority+1, act.priorities[20])
	assert.Equal(t, model.MinPriority+2, act.priorities[30])
}

func TestApplyAlgorithmFCFSSkipsSuspendedAndSystem(t *testing.T) {
	table := model.ProcessTable{
		{PID: 1, IsSuspended: true},
		{PID: 2, IsSystem: true},
		{PID: 3},
	}
	act := newFakeActuator()

	ApplyAlgorithm(table, model.AlgorithmFCFS, act, silentLogger())

	_, sawSuspended := act.priorities[1]
	_, sawSystem := act.priorities[2]
	assert.False(t, sawSuspended)
	assert.False(t, sawSystem)
	assert.Equal(t, model.MinPriority, act.priorities[3])
}

func TestApplyAlgorithmSJFOrdersByCPUTicks(t *testing.T) {
	table := model.ProcessTable{
		{PID: 1, CPUTicksCumulative: 500},
		{PID: 2, CPUTicksCumulative: 10},
		{PID: 3, CPUTicksCumulative: 100},
	}
	act := newFakeActuator()

	ApplyAlgorithm(table, model.AlgorithmSJF, act, silentLogger())

	assert.Less(t, act.priorities[2], act.priorities[3])
	assert.Less(t, act.priorities[3], act.priorities[1])
}

func TestApplyAlgorithmPriorityIncludesSystemButExcludesSuspended(t *testing.T) {
	table := model.ProcessTable{
		{PID: 1, IsSystem: true, Priority: -5},
		{PID: 2, IsSuspended: true, Priority: -10},
		{PID: 3, Priority: 3},
	}
	act := newFakeActuator()

	ApplyAlgorithm(table, model.AlgorithmPriority, act, silentLogger())

	assert.Equal(t, -5, act.priorities[1])
	assert.Equal(t, 3, act.priorities[3])
	_, sawSuspended := act.priorities[2]
	assert.False(t, sawSuspended)
}

func TestApplyAlgorithmRRResetsEligibleToZero(t *testing.T) {
	table := model.ProcessTable{
		{PID: 1, Priority: 7},
		{PID: 2, IsSystem: true, Priority: -3},
		{PID: 3, IsSuspended: true, Priority: 9},
	}
	act := newFakeActuator()

	ApplyAlgorithm(table, model.AlgorithmRR, act, silentLogger())

	assert.Equal(t, 0, table[0].Priority)
	assert.Equal(t, -3, table[1].Priority, "system process untouched")
	assert.Equal(t, 9, table[2].Priority, "suspended process untouched")
}

func TestApplyAlgorithmHybridPartitionsByClass(t *testing.T) {
	table := model.ProcessTable{
		{PID: 1, IsForeground: true},             // interactive
		{PID: 2, IsForeground: false, CPUPercent: 90}, // cpu-bound
		{PID: 3, IsForeground: false, CPUPercent: 5},  // io-bound
		{PID: 4, IsForeground: false, CPUPercent: 50}, // background
	}
	act := newFakeActuator()

	ApplyAlgorithm(table, model.AlgorithmHybrid, act, silentLogger())

	assert.Equal(t, interactiveStart, table[0].Priority)
	assert.Equal(t, cpuBoundStart, table[1].Priority)
	assert.Equal(t, ioBoundStart, table[2].Priority)
	assert.Equal(t, backgroundStart, table[3].Priority)
}

func TestApplyAlgorithmHybridClampsBucketCeiling(t *testing.T) {
	table := make(model.ProcessTable, 0)
	for i := 0; i < 20; i++ {
		table = append(table, model.ProcessRecord{PID: i + 1, IsForeground: true})
	}
	act := newFakeActuator()

	ApplyAlgorithm(table, model.AlgorithmHybrid, act, silentLogger())

	for _, rec := range table {
		assert.LessOrEqual(t, rec.Priority, interactiveCeiling)
	}
	assert.Equal(t, interactiveCeiling, table[len(table)-1].Priority)
}

func TestApplyAlgorithmPriorityIsIdempotent(t *testing.T) {
	table := model.ProcessTable{
		{PID: 1, Priority: 5},
		{PID: 2, Priority: -3},
		{PID: 3, Priority: 0},
	}
	act := newFakeActuator()

	ApplyAlgorithm(table, model.AlgorithmPriority, act, silentLogger())
	firstPass := map[int]int{1: act.priorities[1], 2: act.priorities[2], 3: act.priorities[3]}

	act2 := newFakeActuator()
	ApplyAlgorithm(table, model.AlgorithmPriority, act2, silentLogger())

	assert.Equal(t, firstPass, act2.priorities, "re-running PRIORITY without other changes re-applies the same priorities")
}

func TestHybridBucketCeilingsNeverOverlapAcrossBuckets(t *testing.T) {
	assert.LessOrEqual(t, interactiveCeiling, ioBoundStart)
	assert.LessOrEqual(t, ioBoundCeiling, backgroundStart)
	assert.LessOrEqual(t, backgroundCeiling, cpuBoundStart)
}

func TestApplyAlgorithmUnknownLogsAndNoOps(t *testing.T) {
	table := model.ProcessTable{{PID: 1, Priority: 42}}
	act := newFakeActuator()

	ApplyAlgorithm(table, model.Algorithm("unknown"), act, silentLogger())

	assert.Equal(t, 42, table[0].Priority)
	assert.Empty(t, act.priorities)
}

func TestApplyAlgorithmAggregatesSetPriorityFailures(t *testing.T) {
	table := model.ProcessTable{{PID: 10}, {PID: 20}, {PID: 30}}
	act := newFakeActuator()
	act.outcome = actuator.Outcome{Kind: actuator.Other, Err: assert.AnError}

	errs := ApplyAlgorithm(table, model.AlgorithmFCFS, act, silentLogger())

	assert.True(t, errs.HasErrors())
	assert.Len(t, errs.Errors, 3)
}

func TestApplyModeAggregatesSuspendFailures(t *testing.T) {
	table := model.ProcessTable{
		{PID: 3, IsForeground: false, IsSystem: false, MemoryBytes: 300 * 1024 * 1024, Priority: 0},
	}
	act := newFakeActuator()
	act.outcome = actuator.Outcome{Kind: actuator.NotPermitted, Err: assert.AnError}

	errs := ApplyMode(table, model.ModePowerSaving, 200, act, silentLogger())

	assert.True(t, errs.HasErrors())
	assert.False(t, table[0].IsSuspended, "a failed suspend leaves the record's state untouched")
}

func TestApplyModeCleanPassReturnsEmptyErrorCollection(t *testing.T) {
	table := model.ProcessTable{{PID: 1, IsForeground: true}}
	act := newFakeActuator()

	errs := ApplyMode(table, model.ModeProductivity, 200, act, silentLogger())

	assert.False(t, errs.HasErrors())
}
