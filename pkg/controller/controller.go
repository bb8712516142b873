// Package controller implements the supervisory loop: it owns the
// canonical process table, the current Mode and Algorithm, and the tuning
// knobs, and drives one round per tick (probe -> schedule -> optimize ->
// telemetry). Adapted from the teacher's resourcelimits.resourceMonitor
// ticker/context loop and its monitor.go RWMutex discipline, generalized
// from "one monitored pid" to "the whole process table".
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/resgov/resgov/pkg/actuator"
	"github.com/resgov/resgov/pkg/errors"
	"github.com/resgov/resgov/pkg/filelog"
	"github.com/resgov/resgov/pkg/logging"
	"github.com/resgov/resgov/pkg/memopt"
	"github.com/resgov/resgov/pkg/model"
	"github.com/resgov/resgov/pkg/probe"
	"github.com/resgov/resgov/pkg/schedule"
	"github.com/resgov/resgov/pkg/telemetry"
)

// ProcessProbe is the subset of probe.Probe the controller drives. Accepting
// an interface lets tests substitute a fake process source.
type ProcessProbe interface {
	SnapshotSystem() probe.SystemSnapshot
	SnapshotProcesses() model.ProcessTable
}

// Actuator is the full set of actuation operations the controller and its
// collaborators need, including Terminate for the external hard-refusal
// path (pid 1).
type Actuator interface {
	SetPriority(pid, p int) actuator.Outcome
	Suspend(pid int) actuator.Outcome
	Resume(pid int) actuator.Outcome
	Terminate(pid int) actuator.Outcome
}

// Config seeds the controller's initial tuning knobs.
type Config struct {
	Mode            model.Mode
	Algorithm       model.Algorithm
	TimeSliceHintMS int
	MemThresholdMB  float64
	RoundInterval   time.Duration
}

// DefaultConfig mirrors the documented defaults: Productivity mode, Hybrid
// algorithm, 5ms time-slice hint, 200MB memory threshold, ~1s cadence.
func DefaultConfig() Config {
	return Config{
		Mode:            model.ModeProductivity,
		Algorithm:       model.AlgorithmHybrid,
		TimeSliceHintMS: 5,
		MemThresholdMB:  200,
		RoundInterval:   time.Second,
	}
}

// Controller is the single supervisory loop over one host's process table.
// Multiple Controllers are independently constructible and never cross-talk:
// all mutable state lives on the instance, never in package globals.
type Controller struct {
	// mu guards every field below. Readers (Snapshot, the System*Percent
	// accessors) take a shared hold; writers (the config setters, the
	// worker round, AdjustPriorities) take an exclusive hold. Writer calls
	// are linearized with worker rounds under this single lock, so a
	// Snapshot always reflects exactly one completed round.
	mu sync.RWMutex

	mode            model.Mode
	algorithm       model.Algorithm
	timeSliceHintMS int
	memThresholdMB  float64
	roundInterval   time.Duration

	table  model.ProcessTable
	system probe.SystemSnapshot

	probe    ProcessProbe
	act      Actuator
	analyzer *telemetry.Analyzer
	logger   logging.Logger
	fileLog  *filelog.FileLogger

	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a Controller. probe and act are required; analyzer and
// fileLog default to fresh instances if nil, so tests that don't care
// about telemetry/logging can pass nil for both.
func New(cfg Config, p ProcessProbe, act Actuator, logger logging.Logger, analyzer *telemetry.Analyzer, fileLog *filelog.FileLogger) *Controller {
	if analyzer == nil {
		analyzer = telemetry.NewAnalyzer()
	}
	if fileLog == nil {
		fileLog = filelog.New()
	}
	if cfg.RoundInterval <= 0 {
		cfg.RoundInterval = time.Second
	}

	return &Controller{
		mode:            cfg.Mode,
		algorithm:       cfg.Algorithm,
		timeSliceHintMS: model.ClampTimeSliceMS(cfg.TimeSliceHintMS),
		memThresholdMB:  model.ClampMemThresholdMB(cfg.MemThresholdMB),
		roundInterval:   cfg.RoundInterval,
		probe:           p,
		act:             act,
		analyzer:        analyzer,
		logger:          logger,
		fileLog:         fileLog,
	}
}

// Analyzer exposes the Telemetry collaborator so callers can read the
// rolling window/histogram or wire a Prometheus exporter to it.
func (c *Controller) Analyzer() *telemetry.Analyzer { return c.analyzer }

// FileLogger exposes the Logger collaborator for retargeting/disabling.
func (c *Controller) FileLogger() *filelog.FileLogger { return c.fileLog }

// SetMode changes the operating mode and immediately force-applies it
// against the current table, in addition to taking effect implicitly in
// future AdjustPriorities calls.
func (c *Controller) SetMode(m model.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	c.logActuationFailures("apply mode", schedule.ApplyMode(c.table, c.mode, c.memThresholdMB, c.act, c.logger))
}

// SetAlgorithm changes the scheduling algorithm; it takes effect at the
// next round's algorithm-application step.
func (c *Controller) SetAlgorithm(a model.Algorithm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.algorithm = a
}

// SetParams updates the time-slice hint and memory threshold, clamping
// out-of-range values up to their floor rather than rejecting them.
func (c *Controller) SetParams(sliceMS int, thresholdMB float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeSliceHintMS = model.ClampTimeSliceMS(sliceMS)
	c.memThresholdMB = model.ClampMemThresholdMB(thresholdMB)
}

// Mode returns the current operating mode.
func (c *Controller) Mode() model.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Algorithm returns the current scheduling algorithm.
func (c *Controller) Algorithm() model.Algorithm {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.algorithm
}

// Params returns the current time-slice hint and memory threshold.
func (c *Controller) Params() (timeSliceHintMS int, memThresholdMB float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeSliceHintMS, c.memThresholdMB
}

// AdjustPriorities explicitly re-applies the current mode against the
// current table, outside of the regular round cadence.
func (c *Controller) AdjustPriorities() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logActuationFailures("adjust priorities", schedule.ApplyMode(c.table, c.mode, c.memThresholdMB, c.act, c.logger))
}

// Snapshot returns a value-copy of the current process table. The copy is
// taken under the shared lock and handed back after the lock is released,
// so callers never observe torn state and never block a writer while
// they traverse the result.
func (c *Controller) Snapshot() model.ProcessTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Clone()
}

// SystemCPUPercent, SystemMemPercent and SystemSwapPercent return the
// most recently probed system-wide percentages.
func (c *Controller) SystemCPUPercent() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.system.CPUUsedPct
}

func (c *Controller) SystemMemPercent() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.system.MemUsedPct
}

func (c *Controller) SystemSwapPercent() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.system.SwapUsedPct
}

// Terminate sends SIGTERM to pid via the Actuator. It is not part of the
// round loop; callers reach it directly (e.g. an operator CLI). pid == 1
// is always refused with a typed failure, never a silent no-op.
func (c *Controller) Terminate(pid int) actuator.Outcome {
	return c.act.Terminate(pid)
}

// Start launches the monitoring worker if it is not already running. Idempotent.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true

	c.wg.Add(1)
	go c.workerLoop(ctx)
}

// Stop signals the worker to exit and joins it. Idempotent; an in-flight
// round always completes before the worker observes the stop signal.
func (c *Controller) Stop() {
	c.mu.Lock()
	running := c.running
	cancel := c.cancel
	if running {
		c.running = false
	}
	c.mu.Unlock()

	if !running {
		return
	}
	cancel()
	c.wg.Wait()
}

func (c *Controller) workerLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.roundIntervalSnapshot())
	defer ticker.Stop()

	for {
		c.runRoundSafely()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Controller) roundIntervalSnapshot() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roundInterval
}

// runRoundSafely executes one round under the exclusive lock, recovering
// from any panic a collaborator raises so a single bad round never brings
// the worker down — the Go analogue of "catch all exceptions per round".
func (c *Controller) runRoundSafely() {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("recovered from panic in monitoring round: %v", r)
		}
	}()
	c.runRound()
}

func (c *Controller) runRound() {
	table := c.probe.SnapshotProcesses()
	system := c.probe.SnapshotSystem()

	c.logActuationFailures("apply algorithm", schedule.ApplyAlgorithm(table, c.algorithm, c.act, c.logger))
	c.logActuationFailures("memory optimizer", memopt.Optimize(table, system.MemUsedPct, system.SwapUsedPct, c.memThresholdMB, c.act))

	c.table = table
	c.system = system

	c.analyzer.Collect(table, system.MemUsedPct, system.CPUUsedPct)
	c.fileLog.LogRound(table, system.MemUsedPct, system.CPUUsedPct)
}

// logActuationFailures reports a pass's aggregated per-pid failures
// without ever stopping the round over them.
func (c *Controller) logActuationFailures(pass string, errs *errors.ErrorCollection) {
	if errs.HasErrors() {
		c.logger.Warnf("%s: %d actuation failure(s): %v", pass, len(errs.Errors), errs)
	}
}
