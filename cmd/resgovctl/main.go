package main

import (
	"fmt"
	"os"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/resgov/resgov/pkg/actuator"
	"github.com/resgov/resgov/pkg/controller"
	"github.com/resgov/resgov/pkg/logging/zaplog"
	"github.com/resgov/resgov/pkg/model"
	"github.com/resgov/resgov/pkg/probe"
	"github.com/resgov/resgov/pkg/telemetry"
)

type flagOptions struct {
	Mode          string `long:"mode" default:"productivity" description:"gaming|productivity|power_saving"`
	Algorithm     string `long:"algorithm" default:"hybrid" description:"fcfs|sjf|priority|rr|hybrid"`
	RunDuration   int    `long:"run-duration" default:"5" description:"seconds to run before printing a snapshot and exiting"`
	RoundInterval int    `long:"round-interval-ms" default:"500" description:"milliseconds between rounds"`
	MemThreshold  int    `long:"mem-threshold-mb" default:"200" description:"memory threshold in MB used for suspend decisions"`
}

func main() {
	var opts flagOptions
	parser := flags.NewParser(&opts, flags.HelpFlag)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Running resgovctl, opts: %+v...\n", opts)

	logger, err := zaplog.New(zaplog.DefaultConfig())
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	analyzer := telemetry.NewAnalyzer()
	ctrl := controller.New(controller.Config{
		Mode:            model.Mode(opts.Mode),
		Algorithm:       model.Algorithm(opts.Algorithm),
		TimeSliceHintMS: 5,
		MemThresholdMB:  float64(opts.MemThreshold),
		RoundInterval:   time.Duration(opts.RoundInterval) * time.Millisecond,
	}, probe.New(), actuator.New(), logger, analyzer, nil)

	ctrl.Start()
	fmt.Printf("resgovctl is ready, observing for %d seconds...\n", opts.RunDuration)

	time.Sleep(time.Duration(opts.RunDuration) * time.Second)

	ctrl.Stop()

	table := ctrl.Snapshot()
	stats := analyzer.Stats()
	dist := analyzer.Distribution()

	fmt.Printf("\nprocesses observed: %d\n", len(table))
	fmt.Printf("system cpu avg=%.2f%% max=%.2f%% memory avg=%.2f%% max=%.2f%%\n",
		stats.AvgCPUUsage, stats.MaxCPUUsage, stats.AvgMemoryUsage, stats.MaxMemoryUsage)
	fmt.Printf("distribution: system=%d foreground=%d background=%d suspended=%d\n",
		dist.System, dist.Foreground, dist.Background, dist.Suspended)

	fmt.Printf("resgovctl stopped\n")
}
