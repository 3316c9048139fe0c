package runner

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/seqengine-go/emit"
)

// withTracing composes base with an OTelEmitter built from tracer,
// falling back to the OTelEmitter alone when no base emitter was
// configured (spec SPEC_FULL.md §3 ambient observability).
func withTracing(base emit.Emitter, tracer trace.Tracer) emit.Emitter {
	otelEmitter := emit.NewOTelEmitter(tracer)
	if base == nil {
		return otelEmitter
	}
	return emit.NewMultiEmitter(base, otelEmitter)
}
