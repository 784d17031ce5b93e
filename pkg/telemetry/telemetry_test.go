package telemetry

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "json logs", mutate: func(c *Config) { c.Logging.Format = "json" }},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "bad exporter", mutate: func(c *Config) { c.Tracing.Exporter = "jaeger" }, wantErr: true},
		{name: "otlp without endpoint", mutate: func(c *Config) { c.Tracing.Exporter = "otlp" }, wantErr: true},
		{
			name: "otlp with endpoint",
			mutate: func(c *Config) {
				c.Tracing.Exporter = "otlp"
				c.Tracing.Endpoint = "localhost:4317"
			},
		},
		{name: "sampling out of range", mutate: func(c *Config) { c.Tracing.SamplingRate = 2 }, wantErr: true},
		{name: "no service name", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LoggingConfig{Level: "debug", Format: "json"})

	logger.NewComponentLogger("lint").WithRunID("run-1").Info("Running JSHint...")

	out := buf.String()
	for _, want := range []string{`"component":"lint"`, `"run_id":"run-1"`, `"message":"Running JSHint..."`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %s", out, want)
		}
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LoggingConfig{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.WithError(errors.New("boom")).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("expected error field, got %q", out)
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LoggingConfig{Level: "info", Format: "json"})

	ctx := logger.WithContext(context.Background())
	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Error("expected logger from context to write")
	}

	FromContext(context.Background()).Info("discarded")
}

func TestWrapLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WrapLogger(zerolog.New(&buf))

	logger.NewComponentLogger("watch").WithField("dirs", 2).Info("Watching for changes")
	if got := logger.Zerolog(); got.GetLevel() != zerolog.TraceLevel {
		t.Errorf("wrapped level = %s, want trace", got.GetLevel())
	}

	out := buf.String()
	for _, want := range []string{`"component":"watch"`, `"dirs":2`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %s", out, want)
		}
	}
}

func TestMetricsTextfile(t *testing.T) {
	m, err := NewMetrics(DefaultConfig().Metrics)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	m.RecordRun("passed", 2*time.Second)
	m.RecordRun("failed", time.Second)
	m.RecordProbe("ok")
	m.SetFilesSelected(7)
	m.RecordPolicyViolation("warning")

	path := filepath.Join(t.TempDir(), "jshint.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("failed to write textfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`jshint_runs_total{status="passed"} 1`,
		`jshint_runs_total{status="failed"} 1`,
		`jshint_runtime_probes_total{result="ok"} 1`,
		`jshint_files_selected 7`,
		`jshint_policy_violations_total{severity="warning"} 1`,
		`jshint_run_duration_seconds_count{status="passed"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestTelemetryShutdownWritesMetrics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "out.prom")

	var buf bytes.Buffer
	tel, err := NewTelemetryWithWriter(cfg, &buf)
	if err != nil {
		t.Fatalf("failed to create telemetry: %v", err)
	}

	ctx := tel.WithContext(context.Background())
	if FromTelemetryContext(ctx) != tel {
		t.Error("expected telemetry from context")
	}

	op := tel.StartOperation(ctx, "lint.invoke", AttrFileCount.Int(3))
	if TraceID(op.Ctx) == "" {
		t.Error("expected a valid trace id")
	}
	op.End(errors.New("engine failed"))

	tel.Metrics.RecordRun("error", time.Millisecond)

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if _, err := os.Stat(cfg.Metrics.TextfilePath); err != nil {
		t.Errorf("expected metrics textfile: %v", err)
	}
}

func TestNop(t *testing.T) {
	tel := Nop()
	op := tel.StartOperation(context.Background(), "lint.resolve")
	op.End(nil)
	tel.Metrics.RecordProbe("cached")
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}
