// Package observability provides OpenTelemetry tracing and metrics for
// stream terminal operations.
//
// The stream package records through the global providers, so nothing is
// exported until a provider is installed:
//
//	exp := observability.Export{ServiceName: "seqdemo", Endpoint: "localhost:4318", Insecure: true}
//	tp, err := observability.InitTracer(ctx, observability.TracerConfig{Export: exp, SampleRate: 0.25})
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.MeterConfig{Export: exp})
//	defer mp.Shutdown(ctx)
//
// Each terminal operation is tracked by an Operation:
//
//	ctx, op := observability.StartOperation(ctx, "collect", queryID, metrics)
//	op.AddElements(n)
//	op.End(ctx, err, code)
package observability
