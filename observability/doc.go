// Package observability wires OpenTelemetry tracing and metrics for the
// request pipeline.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("orders"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("orders"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewPipelineMetrics(observability.Meter("orders"))
//	pipeline, err := server.New(cfg, server.WithMetrics(metrics), ...)
//
// A nil *PipelineMetrics records nothing.
package observability
