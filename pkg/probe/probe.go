// Package probe implements the read-only OS Probe: it turns a procfs-like
// source into system and per-process snapshots. It is deterministic given
// its inputs and owns no state beyond the previous CPU/time samples needed
// to compute deltas (ProbeMemory in the spec's vocabulary).
package probe

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/resgov/resgov/pkg/model"
)

// userHZ is the kernel's default clock tick rate (CONFIG_HZ / USER_HZ).
// procfs always reports utime/stime in this unit regardless of the
// platform's actual timer frequency; 100 is the near-universal Linux
// default and is what we assume in the absence of a portable sysconf call.
const userHZ = 100.0

// minSampleInterval is the shortest elapsed wall time over which a delta
// is trusted; below it we report 0 and keep the prior baseline.
const minSampleInterval = 100 * time.Millisecond

// SystemSnapshot holds the current-round system-wide percentages.
type SystemSnapshot struct {
	MemUsedPct  float64
	SwapUsedPct float64
	CPUUsedPct  float64
}

// PriorityReader abstracts the OS call used to read a process's current
// scheduling priority, so tests can substitute a fake without requiring
// real processes and real privileges.
type PriorityReader interface {
	// GetPriority returns the process's priority and true, or false if the
	// process could not be queried (e.g. it has already exited).
	GetPriority(pid int) (priority int, ok bool)
}

type unixPriorityReader struct{}

// GetPriority reads the process priority via getpriority(2). The raw Linux
// syscall (unlike glibc's wrapper) returns 20-nice to keep 0 unambiguous as
// "no error", so we undo that offset here.
func (unixPriorityReader) GetPriority(pid int) (int, bool) {
	raw, err := unix.Getpriority(unix.PRIO_PROCESS, pid)
	if err != nil {
		return 0, false
	}
	return 20 - raw, true
}

type procTickSample struct {
	ticks uint64
	at    time.Time
}

type sysTickSample struct {
	total uint64
	idle  uint64
	at    time.Time
}

// Probe reads system and process state from a procfs-like tree rooted at
// Root (default "/proc"). A Probe is confined to a single goroutine: its
// previous-sample state is not synchronized internally, matching the
// controller's "only the worker thread touches the probe" discipline.
type Probe struct {
	// Root is the procfs mount point. Overridden in tests to point at a
	// fake tree with the same on-disk shape.
	Root string

	// SystemNamePatterns are additional substrings (besides the built-in
	// "systemd"/"kthreadd"/"kworker") that mark a process as system-owned.
	SystemNamePatterns []string

	Priority PriorityReader

	// Now is the wall clock used for interval measurement; defaults to
	// time.Now and is overridden in tests for deterministic deltas.
	Now func() time.Time

	prevProc map[int]procTickSample
	prevSys  *sysTickSample
}

// New returns a Probe reading from /proc using the real getpriority(2) syscall.
func New() *Probe {
	return &Probe{
		Root:     "/proc",
		Priority: unixPriorityReader{},
		Now:      time.Now,
	}
}

func (p *Probe) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// SnapshotSystem derives system-wide memory%, swap% and CPU% per spec §4.1.
// Any source-unavailability is reported as zeros, never an error.
func (p *Probe) SnapshotSystem() SystemSnapshot {
	memPct, swapPct := p.readMeminfo()
	cpuPct := p.readCPUPercent()
	return SystemSnapshot{
		MemUsedPct:  memPct,
		SwapUsedPct: swapPct,
		CPUUsedPct:  cpuPct,
	}
}

func (p *Probe) readMeminfo() (memPct, swapPct float64) {
	data, err := os.ReadFile(p.Root + "/meminfo")
	if err != nil {
		return 0, 0
	}

	var total, free, buffers, cached, slab, swapTotal, swapFree float64
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = value
		case "MemFree:":
			free = value
		case "Buffers:":
			buffers = value
		case "Cached:":
			cached = value
		case "Slab:":
			slab = value
		case "SwapTotal:":
			swapTotal = value
		case "SwapFree:":
			swapFree = value
		}
	}

	if total > 0 {
		used := total - free - buffers - cached - slab
		if used < 0 {
			used = 0
		}
		memPct = 100 * used / total
	}
	if swapTotal > 0 {
		swapPct = 100 * (swapTotal - swapFree) / swapTotal
	}
	return memPct, swapPct
}

func (p *Probe) readCPUPercent() float64 {
	data, err := os.ReadFile(p.Root + "/stat")
	if err != nil {
		return 0
	}

	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 9 || fields[0] != "cpu" {
		return 0
	}

	var sum uint64
	var idle uint64
	for i, f := range fields[1:9] {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			continue
		}
		sum += v
		if i == 3 { // idle is the 4th tick counter (user nice system idle ...)
			idle = v
		}
	}

	now := p.now()
	prev := p.prevSys
	p.prevSys = &sysTickSample{total: sum, idle: idle, at: now}

	if prev == nil {
		return 0
	}
	if now.Sub(prev.at) < minSampleInterval {
		p.prevSys = prev
		return 0
	}

	deltaTotal := sum - prev.total
	deltaIdle := idle - prev.idle
	if deltaTotal == 0 {
		return 0
	}

	pct := 100 * float64(deltaTotal-deltaIdle) / float64(deltaTotal)
	return clampPct(pct)
}

func clampPct(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// SnapshotProcesses enumerates /proc/<pid> directories and builds a fresh
// ProcessTable. Any per-process read failure (a transient race with exit)
// silently skips that process; it is never fatal to the round.
func (p *Probe) SnapshotProcesses() model.ProcessTable {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil
	}

	now := p.now()
	nextProc := make(map[int]procTickSample, len(p.prevProc))
	table := make(model.ProcessTable, 0, len(entries))

	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 {
			continue
		}

		rec, ticks, ok := p.readProcess(pid, now)
		if !ok {
			continue
		}
		nextProc[pid] = ticks
		table = append(table, rec)
	}

	// Entries for pids no longer present are evicted by construction: we
	// only ever copy samples for pids observed in this round.
	p.prevProc = nextProc
	return table
}

func (p *Probe) readProcess(pid int, now time.Time) (model.ProcessRecord, procTickSample, bool) {
	statPath := p.Root + "/" + strconv.Itoa(pid) + "/stat"
	statData, err := os.ReadFile(statPath)
	if err != nil {
		return model.ProcessRecord{}, procTickSample{}, false
	}

	name, state, ttyNr, utime, stime, ok := parseStatLine(string(statData))
	if !ok || name == "" {
		return model.ProcessRecord{}, procTickSample{}, false
	}

	memBytes := p.readRSSBytes(pid)

	priority, ok := p.Priority.GetPriority(pid)
	if !ok {
		// Process has disappeared between the directory listing and here.
		return model.ProcessRecord{}, procTickSample{}, false
	}

	cpuTicks := utime + stime
	cpuPercent := p.cpuPercentFor(pid, cpuTicks, now)

	rec := model.ProcessRecord{
		PID:                pid,
		Name:               name,
		IsSystem:           p.isSystem(pid, name, state),
		IsForeground:       ttyNr > 0,
		IsSuspended:        state == 'T',
		Priority:           priority,
		MemoryBytes:        memBytes,
		CPUPercent:         cpuPercent,
		CPUTicksCumulative: cpuTicks,
	}
	return rec, procTickSample{ticks: cpuTicks, at: now}, true
}

func (p *Probe) cpuPercentFor(pid int, ticks uint64, now time.Time) float64 {
	prev, had := p.prevProc[pid]
	if !had {
		return 0
	}
	deltaSecs := now.Sub(prev.at).Seconds()
	if deltaSecs < 0.1 {
		return 0
	}
	deltaTicks := ticks - prev.ticks
	pct := 100 * float64(deltaTicks) / (userHZ * deltaSecs)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

func (p *Probe) readRSSBytes(pid int) int64 {
	data, err := os.ReadFile(p.Root + "/" + strconv.Itoa(pid) + "/status")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb * 1024
	}
	return 0
}

func (p *Probe) isSystem(pid int, name string, state byte) bool {
	if pid < 1000 {
		return true
	}
	if state == 'S' && strings.Contains(name, "kworker") {
		return true
	}
	if strings.Contains(name, "systemd") || strings.Contains(name, "kthreadd") {
		return true
	}
	for _, pattern := range p.SystemNamePatterns {
		if pattern != "" && strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// parseStatLine parses a /proc/<pid>/stat line. The command name is
// bracketed by the first '(' and the LAST ')' since the name itself may
// contain parentheses.
func parseStatLine(line string) (name string, state byte, ttyNr int, utime, stime uint64, ok bool) {
	start := strings.IndexByte(line, '(')
	end := strings.LastIndexByte(line, ')')
	if start < 0 || end < 0 || end <= start {
		return "", 0, 0, 0, 0, false
	}
	name = line[start+1 : end]

	rest := strings.Fields(line[end+1:])
	// Fields after the closing paren, in order:
	// state ppid pgrp session tty_nr tpgid flags minflt cminflt majflt cmajflt utime stime
	if len(rest) < 13 {
		return "", 0, 0, 0, 0, false
	}
	state = rest[0][0]
	ttyNr, _ = strconv.Atoi(rest[4])
	utime, _ = strconv.ParseUint(rest[11], 10, 64)
	stime, _ = strconv.ParseUint(rest[12], 10, 64)
	return name, state, ttyNr, utime, stime, true
}
