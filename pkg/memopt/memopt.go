// Package memopt implements the Memory Optimizer: pressure-triggered
// suspend, and relief-triggered resume, over a hysteresis band that keeps
// the two rules from fighting each other near the boundary.
package memopt

import (
	"sort"

	"github.com/resgov/resgov/pkg/actuator"
	"github.com/resgov/resgov/pkg/errors"
	"github.com/resgov/resgov/pkg/model"
)

// Actuator is the subset of actuator.Actuator the optimizer drives.
type Actuator interface {
	Suspend(pid int) actuator.Outcome
	Resume(pid int) actuator.Outcome
}

const (
	pressureMemPct  = 90.0
	pressureSwapPct = 70.0
	reliefMemPct    = 70.0
	reliefSwapPct   = 50.0

	// maxSuspendsPerRound caps how many processes a single round will
	// suspend under pressure, regardless of how many remain eligible.
	maxSuspendsPerRound = 3
)

// Optimize mutates table in place: under memory/swap pressure it suspends
// up to three eligible non-system, non-foreground, not-yet-suspended
// processes (largest memory first) past thresholdMB; under relief it
// resumes every suspended non-system process. The pressure/relief bands
// are deliberately non-overlapping — the zone in between is a dead zone
// where neither rule fires. Per-pid failures never stop the pass; they
// are aggregated into the returned ErrorCollection for the caller's
// diagnostic sink.
func Optimize(table model.ProcessTable, memPct, swapPct, thresholdMB float64, act Actuator) *errors.ErrorCollection {
	errs := errors.NewErrorCollection()
	if memPct > pressureMemPct || swapPct > pressureSwapPct {
		suspendUnderPressure(table, thresholdMB, act, errs)
	}
	if memPct < reliefMemPct && swapPct < reliefSwapPct {
		resumeUnderRelief(table, act, errs)
	}
	return errs
}

func suspendUnderPressure(table model.ProcessTable, thresholdMB float64, act Actuator, errs *errors.ErrorCollection) {
	order := make([]int, len(table))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return table[order[a]].MemoryBytes > table[order[b]].MemoryBytes
	})

	thresholdBytes := int64(thresholdMB * 1024 * 1024)
	suspended := 0
	for _, idx := range order {
		if suspended >= maxSuspendsPerRound {
			return
		}
		rec := &table[idx]
		if rec.IsSystem || rec.IsSuspended || rec.IsForeground {
			continue
		}
		if rec.MemoryBytes <= thresholdBytes {
			continue
		}
		if outcome := act.Suspend(rec.PID); outcome.Kind != actuator.Ok {
			// A failed actuation (process already gone, permission denied)
			// does not count against the cap; move on to the next candidate.
			errs.Add(outcome.Err)
			continue
		}
		rec.IsSuspended = true
		suspended++
	}
}

func resumeUnderRelief(table model.ProcessTable, act Actuator, errs *errors.ErrorCollection) {
	for i := range table {
		rec := &table[i]
		if !rec.IsSuspended || rec.IsSystem {
			continue
		}
		if outcome := act.Resume(rec.PID); outcome.Kind == actuator.Ok {
			rec.IsSuspended = false
		} else {
			errs.Add(outcome.Err)
		}
	}
}
