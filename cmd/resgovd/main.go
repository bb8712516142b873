package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	flags "github.com/jessevdk/go-flags"

	"github.com/resgov/resgov/pkg/actuator"
	"github.com/resgov/resgov/pkg/config"
	"github.com/resgov/resgov/pkg/controller"
	"github.com/resgov/resgov/pkg/filelog"
	"github.com/resgov/resgov/pkg/logging/zaplog"
	"github.com/resgov/resgov/pkg/probe"
	"github.com/resgov/resgov/pkg/telemetry"
)

type flagOptions struct {
	ConfigFile  string `long:"config" description:"path to the governor YAML configuration file"`
	RunDuration int    `long:"run-duration" description:"stop automatically after N seconds (0 = run until signalled)"`
	MetricsAddr string `long:"metrics-addr" description:"address to serve /metrics on (overrides config)"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s , ", module)
}

func main() {
	var opts flagOptions
	parser := flags.NewParser(&opts, flags.HelpFlag)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if opts.ConfigFile != "" {
		loaded, err := config.LoadFromFile(opts.ConfigFile)
		if err != nil {
			fmt.Printf("Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}

	logger, err := zaplog.New(zaplog.Config{Level: cfg.LogLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger = zaplog.WithPrefix(logger, logPrefix("resgovd"))

	logger.Infof("starting: mode=%s algorithm=%s round_interval=%s", cfg.Mode, cfg.Algorithm, cfg.RoundInterval)

	p := probe.New()
	p.SystemNamePatterns = cfg.SystemNamePatterns
	act := actuator.New()

	analyzer := telemetry.NewAnalyzer()

	fileLog := filelog.New()
	if cfg.LogFile != "" {
		fileLog.SetTarget(cfg.LogFile)
	}

	ctrl := controller.New(controller.Config{
		Mode:            cfg.Mode,
		Algorithm:       cfg.Algorithm,
		TimeSliceHintMS: cfg.TimeSliceHintMS,
		MemThresholdMB:  cfg.MemThresholdMB,
		RoundInterval:   cfg.RoundInterval,
	}, p, act, logger, analyzer, fileLog)

	var server *http.Server
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		exporter := telemetry.NewExporter(analyzer, reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

		go func() {
			ticker := time.NewTicker(cfg.RoundInterval)
			defer ticker.Stop()
			for range ticker.C {
				exporter.Update()
			}
		}()

		go func() {
			logger.Infof("serving metrics on %s", cfg.MetricsAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorf("metrics server failed: %v", err)
			}
		}()
	}

	ctrl.Start()
	logger.Infof("governor is running")

	sig := make(chan os.Signal, 1)
	if runtime.GOOS == "windows" {
		signal.Notify(sig)
	} else {
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	}

	if opts.RunDuration > 0 {
		select {
		case receivedSignal := <-sig:
			logger.Infof("received signal: %v", receivedSignal)
		case <-time.After(time.Duration(opts.RunDuration) * time.Second):
			logger.Infof("run duration elapsed")
		}
	} else {
		receivedSignal := <-sig
		logger.Infof("received signal: %v", receivedSignal)
	}

	logger.Infof("stopping governor...")
	ctrl.Stop()
	if server != nil {
		_ = server.Close()
	}
	logger.Infof("governor stopped")
}
