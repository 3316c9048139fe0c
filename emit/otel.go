package emit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter renders each Event as an immediately-ended OpenTelemetry
// span: one point-in-time span per scheduler event, not a long-lived
// span per node. Attributes live under the "seqengine." namespace.
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an OTelEmitter using tracer, e.g.
// otel.Tracer("seqengine").
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

func (o *OTelEmitter) Emit(event Event) {
	ctx := context.Background()
	_, span := o.tracer.Start(ctx, event.Msg)
	defer span.End()
	o.annotate(span, event)
}

func (o *OTelEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, event := range events {
		_, span := o.tracer.Start(context.Background(), event.Msg)
		o.annotate(span, event)
		span.End()
	}
	return nil
}

func (o *OTelEmitter) annotate(span trace.Span, event Event) {
	span.SetAttributes(
		attribute.String("seqengine.run_id", event.RunID),
		attribute.Int("seqengine.step", event.Step),
		attribute.Int("seqengine.node_id", event.NodeID),
	)
	for key, v := range event.Meta {
		attrKey := "seqengine." + key
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(attrKey, val))
		case int:
			span.SetAttributes(attribute.Int(attrKey, val))
		case int64:
			span.SetAttributes(attribute.Int64(attrKey, val))
		case float64:
			span.SetAttributes(attribute.Float64(attrKey, val))
		case bool:
			span.SetAttributes(attribute.Bool(attrKey, val))
		case time.Duration:
			span.SetAttributes(attribute.Int64(attrKey+"_ms", int64(val/time.Millisecond)))
		default:
			span.SetAttributes(attribute.String(attrKey, fmt.Sprintf("%v", val)))
		}
	}
	switch errVal := event.Meta["error"].(type) {
	case string:
		span.SetStatus(codes.Error, errVal)
		span.RecordError(fmt.Errorf("%s", errVal))
	case bool:
		if errVal {
			span.SetStatus(codes.Error, event.Msg)
		}
	}
	if c, ok := event.Meta["color"]; ok {
		span.SetAttributes(attribute.String("seqengine.color", fmt.Sprintf("%v", c)))
	}
}

// Flush force-flushes the active tracer provider, if it supports it.
func (o *OTelEmitter) Flush(ctx context.Context) error {
	tp := otel.GetTracerProvider()
	type flusher interface {
		ForceFlush(context.Context) error
	}
	if f, ok := tp.(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}
