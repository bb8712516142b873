// Package schedule implements the Scheduling Engine: the Mode envelope
// (apply_mode) and the five scheduling Algorithms (apply_algorithm),
// dispatched from a tagged enum rather than a virtual-dispatch hierarchy,
// since algorithms are stateless functions over the table.
package schedule

import (
	"sort"

	"github.com/resgov/resgov/pkg/actuator"
	"github.com/resgov/resgov/pkg/errors"
	"github.com/resgov/resgov/pkg/logging"
	"github.com/resgov/resgov/pkg/model"
)

// Actuator is the subset of actuator.Actuator the engine drives. Accepting
// an interface keeps tests free of real syscalls.
type Actuator interface {
	SetPriority(pid, p int) actuator.Outcome
	Suspend(pid int) actuator.Outcome
	Resume(pid int) actuator.Outcome
}

// ApplyMode computes target priorities and suspend/resume intent for the
// given Mode and applies them in place via act. System processes never
// receive a mode-driven suspend. Per-pid failures never stop the walk;
// they are aggregated into the returned ErrorCollection for the caller's
// diagnostic sink.
func ApplyMode(table model.ProcessTable, mode model.Mode, thresholdMB float64, act Actuator, logger logging.Logger) *errors.ErrorCollection {
	errs := errors.NewErrorCollection()

	for i := range table {
		rec := &table[i]
		if rec.PID <= 0 {
			continue
		}

		newPriority, shouldSuspend := modeDecision(mode, *rec, thresholdMB)
		rec.Priority = model.ClampPriority(newPriority)

		if outcome := act.SetPriority(rec.PID, rec.Priority); outcome.Kind != actuator.Ok {
			if outcome.Kind == actuator.NotPermitted {
				logger.Warnf("set priority denied for pid %d: %v", rec.PID, outcome.Err)
			}
			errs.Add(outcome.Err)
		}

		switch {
		case shouldSuspend && !rec.IsSuspended:
			if outcome := act.Suspend(rec.PID); outcome.Kind == actuator.Ok {
				rec.IsSuspended = true
			} else {
				errs.Add(outcome.Err)
			}
		case !shouldSuspend && rec.IsSuspended && mode != model.ModePowerSaving:
			if outcome := act.Resume(rec.PID); outcome.Kind == actuator.Ok {
				rec.IsSuspended = false
			} else {
				errs.Add(outcome.Err)
			}
		}
	}

	return errs
}

func modeDecision(mode model.Mode, rec model.ProcessRecord, thresholdMB float64) (priority int, shouldSuspend bool) {
	priority = rec.Priority
	switch mode {
	case model.ModeGaming:
		if rec.IsForeground {
			priority = max(-15, rec.Priority-5)
		} else if !rec.IsSystem {
			priority = min(15, rec.Priority+5)
		}

	case model.ModeProductivity:
		if rec.IsForeground {
			priority = max(-10, rec.Priority-3)
		} else if !rec.IsSystem {
			priority = min(10, rec.Priority+2)
		}

	case model.ModePowerSaving:
		if !rec.IsSystem {
			priority = min(19, rec.Priority+5)
			if !rec.IsForeground && rec.MemoryBytes > int64(thresholdMB*1024*1024) {
				shouldSuspend = true
			}
		}
	}
	return priority, shouldSuspend
}

// ApplyAlgorithm runs the selected Algorithm over the table, mutating
// priorities in place and applying them via act. Per-pid SetPriority
// failures are aggregated into the returned ErrorCollection rather than
// stopping the pass.
func ApplyAlgorithm(table model.ProcessTable, algo model.Algorithm, act Actuator, logger logging.Logger) *errors.ErrorCollection {
	switch algo {
	case model.AlgorithmFCFS:
		return applySequence(table, act, byPID, skipSuspendedOrSystem)
	case model.AlgorithmSJF:
		return applySequence(table, act, byCPUTicks, skipSuspendedOrSystem)
	case model.AlgorithmPriority:
		return applyPriority(table, act)
	case model.AlgorithmRR:
		return applyRR(table, act)
	case model.AlgorithmHybrid:
		return applyHybrid(table, act)
	default:
		logger.Warnf("unknown scheduling algorithm %q, no-op", algo)
		return errors.NewErrorCollection()
	}
}

func byPID(table model.ProcessTable) {
	sort.SliceStable(table, func(i, j int) bool { return table[i].PID < table[j].PID })
}

func byCPUTicks(table model.ProcessTable) {
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].CPUTicksCumulative < table[j].CPUTicksCumulative
	})
}

func skipSuspendedOrSystem(rec model.ProcessRecord) bool {
	return rec.IsSuspended || rec.IsSystem
}

// applySequence sorts the table with order, then assigns priorities
// starting at MinPriority, incrementing by 1 per eligible record, capped
// at MaxPriority. Shared by FCFS and SJF.
func applySequence(table model.ProcessTable, act Actuator, order func(model.ProcessTable), skip func(model.ProcessRecord) bool) *errors.ErrorCollection {
	order(table)

	errs := errors.NewErrorCollection()
	priority := model.MinPriority
	for i := range table {
		rec := &table[i]
		if skip(*rec) {
			continue
		}
		rec.Priority = priority
		priority = min(model.MaxPriority, priority+1)
		if outcome := act.SetPriority(rec.PID, rec.Priority); outcome.Kind != actuator.Ok {
			errs.Add(outcome.Err)
		}
	}
	return errs
}

// applyPriority sorts ascending by current priority (stable), then
// re-applies each record's own priority. It includes system processes
// in the application pass but excludes suspended ones — the only
// algorithm that reassigns priority to system processes; preserved
// faithfully even though the original's intent here is unclear (it acts
// as a confirming pass that reasserts whatever priority the table
// already holds, rather than computing a new one).
func applyPriority(table model.ProcessTable, act Actuator) *errors.ErrorCollection {
	sort.SliceStable(table, func(i, j int) bool { return table[i].Priority < table[j].Priority })

	errs := errors.NewErrorCollection()
	for i := range table {
		rec := &table[i]
		if rec.IsSuspended {
			continue
		}
		if outcome := act.SetPriority(rec.PID, rec.Priority); outcome.Kind != actuator.Ok {
			errs.Add(outcome.Err)
		}
	}
	return errs
}

func applyRR(table model.ProcessTable, act Actuator) *errors.ErrorCollection {
	errs := errors.NewErrorCollection()
	for i := range table {
		rec := &table[i]
		if rec.IsSuspended || rec.IsSystem {
			continue
		}
		rec.Priority = 0
		if outcome := act.SetPriority(rec.PID, 0); outcome.Kind != actuator.Ok {
			errs.Add(outcome.Err)
		}
	}
	return errs
}

// Hybrid bucket priority ranges.
const (
	interactiveStart, interactiveCeiling = -15, -10
	ioBoundStart, ioBoundCeiling         = -5, 0
	backgroundStart, backgroundCeiling   = 5, 10
	cpuBoundStart, cpuBoundCeiling       = 10, 19
)

// applyHybrid partitions eligible records into interactive / cpu-bound /
// io-bound / background buckets (in that classification order) and
// assigns an incrementing, ceiling-clamped priority within each bucket,
// iterating in the table's order at partition time.
func applyHybrid(table model.ProcessTable, act Actuator) *errors.ErrorCollection {
	interactivePriority := interactiveStart
	ioBoundPriority := ioBoundStart
	backgroundPriority := backgroundStart
	cpuBoundPriority := cpuBoundStart

	errs := errors.NewErrorCollection()
	for i := range table {
		rec := &table[i]
		if rec.IsSuspended || rec.IsSystem {
			continue
		}

		switch {
		case rec.IsForeground:
			rec.Priority = interactivePriority
			interactivePriority = min(interactiveCeiling, interactivePriority+1)
		case rec.CPUPercent > 70:
			rec.Priority = cpuBoundPriority
			cpuBoundPriority = min(cpuBoundCeiling, cpuBoundPriority+1)
		case rec.CPUPercent < 20:
			rec.Priority = ioBoundPriority
			ioBoundPriority = min(ioBoundCeiling, ioBoundPriority+1)
		default:
			rec.Priority = backgroundPriority
			backgroundPriority = min(backgroundCeiling, backgroundPriority+1)
		}

		if outcome := act.SetPriority(rec.PID, rec.Priority); outcome.Kind != actuator.Ok {
			errs.Add(outcome.Err)
		}
	}
	return errs
}
