// Package telemetry implements the Performance Analyzer collaborator: a
// rolling window of system CPU%/memory% samples and a per-round category
// histogram, adapted from the original PerformanceAnalyzer's process-wide
// statics into state owned by an Analyzer instance so multiple governors
// never cross-talk.
package telemetry

import (
	"sync"

	"github.com/resgov/resgov/pkg/model"
)

// windowSize is the maximum number of retained samples; oldest-out FIFO.
const windowSize = 100

// Stats summarizes the rolling window.
type Stats struct {
	AvgCPUUsage    float64
	MaxCPUUsage    float64
	AvgMemoryUsage float64
	MaxMemoryUsage float64
	TotalProcesses int
	Suspended      int
}

// Distribution is the per-round category histogram.
type Distribution struct {
	System     int
	Foreground int
	Background int
	Suspended  int
}

// Analyzer accumulates rolling performance samples. It is safe for
// concurrent use: Collect is called from the controller's worker round,
// Stats/Distribution may be read from any goroutine.
type Analyzer struct {
	mu           sync.RWMutex
	cpuSamples   []float64
	memSamples   []float64
	distribution Distribution
}

// NewAnalyzer returns an empty Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Collect records one round's system samples and recomputes the category
// histogram wholesale from the current table.
func (a *Analyzer) Collect(table model.ProcessTable, systemMemPct, systemCPUPct float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cpuSamples = pushWindow(a.cpuSamples, systemCPUPct)
	a.memSamples = pushWindow(a.memSamples, systemMemPct)

	var dist Distribution
	for _, rec := range table {
		switch {
		case rec.IsSystem:
			dist.System++
		case rec.IsForeground:
			dist.Foreground++
		default:
			dist.Background++
		}
		if rec.IsSuspended {
			dist.Suspended++
		}
	}
	a.distribution = dist
}

func pushWindow(window []float64, sample float64) []float64 {
	window = append(window, sample)
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}
	return window
}

// Stats returns the current average/maximum over the rolling window plus
// the latest process counts.
func (a *Analyzer) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var s Stats
	if len(a.cpuSamples) > 0 {
		s.AvgCPUUsage = average(a.cpuSamples)
		s.MaxCPUUsage = max(a.cpuSamples)
	}
	if len(a.memSamples) > 0 {
		s.AvgMemoryUsage = average(a.memSamples)
		s.MaxMemoryUsage = max(a.memSamples)
	}
	s.TotalProcesses = a.distribution.System + a.distribution.Foreground + a.distribution.Background
	s.Suspended = a.distribution.Suspended
	return s
}

// Distribution returns the current category histogram.
func (a *Analyzer) Distribution() Distribution {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.distribution
}

// Reset clears all samples and the histogram.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cpuSamples = nil
	a.memSamples = nil
	a.distribution = Distribution{}
}

func average(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

func max(samples []float64) float64 {
	m := samples[0]
	for _, s := range samples[1:] {
		if s > m {
			m = s
		}
	}
	return m
}
