package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter bridges engine events to OpenTelemetry. Each event
// becomes a short span carrying the run, step, and node as attributes,
// which lets a collector correlate workflow progress with surrounding
// request traces.
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an emitter producing spans from the given
// tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

// Emit records the event as a span.
func (o *OTelEmitter) Emit(e Event) {
	_, span := o.tracer.Start(context.Background(), e.Msg)
	defer span.End()

	span.SetAttributes(
		attribute.String("workflow.run_id", e.RunID),
		attribute.Int("workflow.step", e.Step),
	)
	if e.NodeID != "" {
		span.SetAttributes(attribute.String("workflow.node_id", e.NodeID))
	}
	for k, v := range e.Meta {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String("workflow.meta."+k, val))
		case int:
			span.SetAttributes(attribute.Int("workflow.meta."+k, val))
		case int64:
			span.SetAttributes(attribute.Int64("workflow.meta."+k, val))
		case float64:
			span.SetAttributes(attribute.Float64("workflow.meta."+k, val))
		case bool:
			span.SetAttributes(attribute.Bool("workflow.meta."+k, val))
		default:
			span.SetAttributes(attribute.String("workflow.meta."+k, fmt.Sprintf("%v", val)))
		}
	}
}
