package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans emitted by this service.
const InstrumentationName = "einvoice-news"

// GetTracer returns the tracer of the currently registered global provider.
// It is resolved on every call so a provider installed after package
// initialisation, as tests do, is honoured.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "refresh.Run")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
