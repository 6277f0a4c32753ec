// Package tracing exposes the application tracer for creating spans around
// batch fetches and newsletter runs.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the quantum-digest application.
var tracer = otel.Tracer("quantum-digest")

// GetTracer returns the global tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "fetch-batch")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}
