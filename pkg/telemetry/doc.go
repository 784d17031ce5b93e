// Package telemetry provides logging, tracing and metrics for lint runs.
//
// Logging uses zerolog, tracing uses OpenTelemetry and metrics use
// Prometheus. A Telemetry value bundles all three:
//
//	tel, err := telemetry.NewTelemetry(telemetry.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// # Tracing
//
// Each pipeline stage of a run gets a span: lint.resolve, lint.select,
// lint.probe, lint.policy and lint.invoke. Exporters are "none" (spans are
// created and dropped), "stdout" (pretty JSON on stderr) and "otlp" (gRPC
// to Tracing.Endpoint).
//
//	op := tel.StartOperation(ctx, "lint.invoke", telemetry.AttrFileCount.Int(12))
//	err := invoke(op.Ctx)
//	op.End(err)
//
// # Metrics
//
// Collected metrics, all under the "jshint" namespace:
//
//   - runs_total{status}
//   - run_duration_seconds{status}
//   - runtime_probes_total{result}
//   - files_selected
//   - policy_violations_total{severity}
//
// A CLI process is short-lived, so metrics are not served over HTTP. Set
// Metrics.TextfilePath to have Shutdown write them for the node exporter's
// textfile collector.
package telemetry
