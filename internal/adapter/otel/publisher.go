package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   domain.EventPublisher
	tracer trace.Tracer
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (p *TracingPublisher) PublishRequest(ctx context.Context, event domain.RequestEvent, req domain.ServiceRequest) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.PublishRequest",
		trace.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("request.id", req.ID),
			attribute.String("request.status", string(req.Status)),
		),
	)
	defer span.End()

	err := p.next.PublishRequest(ctx, event, req)
	recordError(span, err)
	return err
}

func (p *TracingPublisher) PublishMaintenance(ctx context.Context, event domain.MaintenanceEvent, rec domain.MaintenanceRecord) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.PublishMaintenance",
		trace.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("maintenance.id", rec.ID),
			attribute.String("maintenance.status", string(rec.Status)),
		),
	)
	defer span.End()

	err := p.next.PublishMaintenance(ctx, event, rec)
	recordError(span, err)
	return err
}
