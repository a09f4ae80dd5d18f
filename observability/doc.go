// Package observability wires OpenTelemetry tracing and metrics for
// httppipe clients.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
//
// The pipeline's Tracing and Metrics policies use the global providers set
// here unless they are given their own.
package observability
