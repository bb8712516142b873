package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Exporter mirrors an Analyzer's current stats onto Prometheus gauges. It
// is a pure additive decorator — the Analyzer has no Prometheus import of
// its own, so the core telemetry stays usable without pulling in a metrics
// backend.
type Exporter struct {
	analyzer *Analyzer

	avgCPU        prometheus.Gauge
	maxCPU        prometheus.Gauge
	avgMemory     prometheus.Gauge
	maxMemory     prometheus.Gauge
	totalProcs    prometheus.Gauge
	suspendedProc prometheus.Gauge
	category      *prometheus.GaugeVec
}

// NewExporter registers resgov's gauges against reg and returns an Exporter
// that keeps them in sync with analyzer on each Update call.
func NewExporter(analyzer *Analyzer, reg prometheus.Registerer) *Exporter {
	e := &Exporter{
		analyzer: analyzer,
		avgCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resgov_cpu_usage_avg_percent",
			Help: "Average system CPU usage over the rolling sample window.",
		}),
		maxCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resgov_cpu_usage_max_percent",
			Help: "Maximum system CPU usage over the rolling sample window.",
		}),
		avgMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resgov_memory_usage_avg_percent",
			Help: "Average system memory usage over the rolling sample window.",
		}),
		maxMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resgov_memory_usage_max_percent",
			Help: "Maximum system memory usage over the rolling sample window.",
		}),
		totalProcs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resgov_processes_total",
			Help: "Number of processes observed in the most recent round.",
		}),
		suspendedProc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resgov_processes_suspended",
			Help: "Number of suspended processes in the most recent round.",
		}),
		category: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "resgov_processes_by_category",
			Help: "Process count by category in the most recent round.",
		}, []string{"category"}),
	}

	reg.MustRegister(e.avgCPU, e.maxCPU, e.avgMemory, e.maxMemory, e.totalProcs, e.suspendedProc, e.category)
	return e
}

// Update pulls the analyzer's current stats and distribution into the
// registered gauges. Call it once per controller round, after Collect.
func (e *Exporter) Update() {
	stats := e.analyzer.Stats()
	dist := e.analyzer.Distribution()

	e.avgCPU.Set(stats.AvgCPUUsage)
	e.maxCPU.Set(stats.MaxCPUUsage)
	e.avgMemory.Set(stats.AvgMemoryUsage)
	e.maxMemory.Set(stats.MaxMemoryUsage)
	e.totalProcs.Set(float64(stats.TotalProcesses))
	e.suspendedProc.Set(float64(stats.Suspended))

	e.category.WithLabelValues("system").Set(float64(dist.System))
	e.category.WithLabelValues("foreground").Set(float64(dist.Foreground))
	e.category.WithLabelValues("background").Set(float64(dist.Background))
	e.category.WithLabelValues("suspended").Set(float64(dist.Suspended))
}
