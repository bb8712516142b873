// Package model holds the data types shared across the probe, actuator,
// scheduling engine, memory optimizer and controller.
package model

const (
	// MinPriority and MaxPriority bound the OS-level nicety scale.
	MinPriority = -20
	MaxPriority = 19

	// MinMemThresholdMB and MinTimeSliceMS are the floors configuration
	// values are silently clamped up to, never rejected.
	MinMemThresholdMB = 50.0
	MinTimeSliceMS    = 1
)

// ClampPriority clamps p to [MinPriority, MaxPriority].
func ClampPriority(p int) int {
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

// ClampMemThresholdMB clamps t up to MinMemThresholdMB.
func ClampMemThresholdMB(t float64) float64 {
	if t < MinMemThresholdMB {
		return MinMemThresholdMB
	}
	return t
}

// ClampTimeSliceMS clamps ms up to MinTimeSliceMS.
func ClampTimeSliceMS(ms int) int {
	if ms < MinTimeSliceMS {
		return MinTimeSliceMS
	}
	return ms
}

// ProcessRecord describes one observed process for the current round.
type ProcessRecord struct {
	PID                int
	Name               string
	IsSystem           bool
	IsForeground       bool
	IsSuspended        bool
	Priority           int
	MemoryBytes        int64
	CPUPercent         float64
	CPUTicksCumulative uint64
}

// ProcessTable is an ordered, pid-unique sequence of process records for one round.
type ProcessTable []ProcessRecord

// Clone returns a deep (value) copy of the table, safe to hand across the
// reader/writer lock boundary without aliasing the controller's storage.
func (t ProcessTable) Clone() ProcessTable {
	if t == nil {
		return nil
	}
	out := make(ProcessTable, len(t))
	copy(out, t)
	return out
}

// IndexOf returns the index of the record with the given pid, or -1.
func (t ProcessTable) IndexOf(pid int) int {
	for i := range t {
		if t[i].PID == pid {
			return i
		}
	}
	return -1
}
