// Package actuator turns OS-boundary exceptions (process gone, privilege
// denied) into a typed outcome instead of relying on callers to catch and
// classify errors, mirroring the teacher repo's processstate/process
// packages but collapsing their exception-as-control-flow into a sum type.
package actuator

import (
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/resgov/resgov/pkg/errors"
	"github.com/resgov/resgov/pkg/model"
)

// OutcomeKind tags the result of an actuation call.
type OutcomeKind int

const (
	Ok OutcomeKind = iota
	NotFound
	NotPermitted
	Other
)

// Outcome is the typed result of a single actuation call. Callers
// pattern-match on Kind; the loop never relies on unwinding.
type Outcome struct {
	Kind OutcomeKind
	Err  error // nil for Ok; a *errors.DomainError for NotPermitted/Other
}

func ok() Outcome { return Outcome{Kind: Ok} }

func notFound(pid int, action string) Outcome {
	return Outcome{Kind: NotFound, Err: errors.NewNotFoundError(action+": process not found", nil).WithContext("pid", pid)}
}

func notPermitted(pid int, action string, cause error) Outcome {
	return Outcome{Kind: NotPermitted, Err: errors.NewPermissionError(action+": permission denied (needs elevated privileges)", cause).WithContext("pid", pid)}
}

func other(pid int, action string, cause error) Outcome {
	return Outcome{Kind: Other, Err: errors.NewProcessError(action+": failed", cause).WithContext("pid", pid)}
}

// Actuator issues the three side effects the Scheduling Engine and Memory
// Optimizer drive against a pid, plus termination. It performs no retries
// and no logging; it is a pure adapter over the syscalls.
type Actuator struct{}

// New returns an Actuator backed by the real Unix syscalls.
func New() *Actuator { return &Actuator{} }

// SetPriority clamps p into [model.MinPriority, model.MaxPriority] and
// applies it. A process that has already exited is reported as Ok: a
// "no such process" result is treated as a no-op, not an error.
func (a *Actuator) SetPriority(pid int, p int) Outcome {
	clamped := model.ClampPriority(p)
	err := unix.Setpriority(unix.PRIO_PROCESS, pid, clamped)
	return classify(pid, "set priority", err, true)
}

// Suspend sends SIGSTOP. Unlike SetPriority, NotFound is surfaced here
// rather than swallowed — the caller chooses whether to treat it as benign.
func (a *Actuator) Suspend(pid int) Outcome {
	return classify(pid, "suspend", unix.Kill(pid, syscall.SIGSTOP), false)
}

// Resume sends SIGCONT.
func (a *Actuator) Resume(pid int) Outcome {
	return classify(pid, "resume", unix.Kill(pid, syscall.SIGCONT), false)
}

// Terminate sends SIGTERM. Terminating pid 1 is always rejected as a typed
// failure, never treated as a silent no-op.
func (a *Actuator) Terminate(pid int) Outcome {
	if pid == 1 {
		return Outcome{Kind: NotPermitted, Err: errors.NewValidationError("refusing to terminate init (pid 1)", nil)}
	}
	return classify(pid, "terminate", unix.Kill(pid, syscall.SIGTERM), false)
}

// classify maps a syscall error to an Outcome. swallowNotFound controls
// whether a "no such process" result is reported as Ok (set_priority's
// documented no-op behavior) or as NotFound (suspend/resume/terminate).
func classify(pid int, action string, err error, swallowNotFound bool) Outcome {
	if err == nil {
		return ok()
	}
	switch err {
	case syscall.ESRCH:
		if swallowNotFound {
			return ok()
		}
		return notFound(pid, action)
	case syscall.EPERM:
		return notPermitted(pid, action, err)
	default:
		return other(pid, action, err)
	}
}
