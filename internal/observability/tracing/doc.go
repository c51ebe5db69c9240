// Package tracing provides OpenTelemetry tracing integration.
//
// The global tracer is used by the dataset loader and the refresh
// orchestrator; Middleware opens a server span per HTTP request and echoes the
// trace id in the X-Trace-Id response header. Without a configured
// TracerProvider the otel no-op provider is used and spans cost nothing.
//
// Example usage:
//
//	func (l *Loader) Load(ctx context.Context) (*entity.Dataset, error) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "dataset.Load")
//	    defer span.End()
//	    // ...
//	}
package tracing
