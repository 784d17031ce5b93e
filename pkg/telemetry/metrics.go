package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides Prometheus metrics for lint runs.
type Metrics struct {
	config MetricsConfig

	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	probesTotal      *prometheus.CounterVec
	filesSelected    prometheus.Gauge
	policyViolations *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	namespace := cfg.Namespace
	buckets := cfg.DurationBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of lint runs by outcome",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of lint runs in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runtime_probes_total",
				Help:      "Total number of runtime probes by result",
			},
			[]string{"result"},
		),
		filesSelected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "files_selected",
				Help:      "Number of files selected by the last run",
			},
		),
		policyViolations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_violations_total",
				Help:      "Total number of policy violations by severity",
			},
			[]string{"severity"},
		),
	}

	if err := registerAll(registry,
		m.runsTotal,
		m.runDuration,
		m.probesTotal,
		m.filesSelected,
		m.policyViolations,
	); err != nil {
		return nil, err
	}

	return m, nil
}

func registerAll(registry *prometheus.Registry, collectors ...prometheus.Collector) error {
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}

// RecordRun records a finished run with its status and duration.
func (m *Metrics) RecordRun(status string, duration time.Duration) {
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordProbe records the result of a runtime probe ("ok", "failed" or
// "cached").
func (m *Metrics) RecordProbe(result string) {
	m.probesTotal.WithLabelValues(result).Inc()
}

// SetFilesSelected sets the number of files selected for the current run.
func (m *Metrics) SetFilesSelected(count int) {
	m.filesSelected.Set(float64(count))
}

// RecordPolicyViolation records one policy violation.
func (m *Metrics) RecordPolicyViolation(severity string) {
	m.policyViolations.WithLabelValues(severity).Inc()
}

// Registry returns the registry holding all collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
