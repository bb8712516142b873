// Package filelog implements the Logger collaborator: each round it is
// offered the table and the system memory/CPU percentages and appends a
// line recording them, adapted from the original Logger class onto the
// ambient zap-backed logging stack instead of hand-rolled timestamp
// formatting. A write failure never disturbs the controller.
package filelog

import (
	"sync"

	"github.com/resgov/resgov/pkg/logging"
	"github.com/resgov/resgov/pkg/logging/zaplog"
	"github.com/resgov/resgov/pkg/model"
)

// DefaultTarget is the append-only file the Logger collaborator writes to
// unless retargeted.
const DefaultTarget = "scheduler.log"

// FileLogger is the Logger collaborator. It may be disabled and its sink
// may be retargeted at any time; neither operation affects the controller.
type FileLogger struct {
	mu      sync.Mutex
	enabled bool
	target  string
	logger  logging.Logger
	onError func(error)
}

// New returns a FileLogger appending to DefaultTarget, enabled by default.
func New() *FileLogger {
	fl := &FileLogger{enabled: true, target: DefaultTarget}
	fl.open()
	return fl
}

func (fl *FileLogger) open() {
	logger, err := zaplog.New(zaplog.Config{
		Level:  "info",
		Format: "console",
		Output: fl.target,
	})
	if err != nil {
		if fl.onError != nil {
			fl.onError(err)
		}
		fl.logger = nil
		return
	}
	fl.logger = logger
}

// SetTarget changes the destination file, reopening the underlying sink.
func (fl *FileLogger) SetTarget(path string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.target = path
	fl.open()
}

// SetEnabled toggles whether LogRound writes anything at all.
func (fl *FileLogger) SetEnabled(enabled bool) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.enabled = enabled
}

// SetErrorSink installs a callback invoked when the sink fails to open;
// it is purely diagnostic and never propagates back to the controller.
func (fl *FileLogger) SetErrorSink(onError func(error)) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.onError = onError
}

// LogRound records one round's telemetry. Disabled loggers and write
// failures are both silent no-ops from the controller's perspective.
func (fl *FileLogger) LogRound(table model.ProcessTable, memPct, cpuPct float64) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if !fl.enabled || fl.logger == nil {
		return
	}

	suspended := 0
	for _, rec := range table {
		if rec.IsSuspended {
			suspended++
		}
	}

	fl.logger.Infof("system cpu=%.2f%% memory=%.2f%% processes=%d", cpuPct, memPct, len(table))
	if suspended > 0 {
		fl.logger.Infof("status processes_suspended=%d", suspended)
	}
}
