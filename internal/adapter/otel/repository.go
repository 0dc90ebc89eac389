package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

const tracerName = "github.com/neomorfeo/fleetcare/internal/adapter/otel"

// TracingRequestRepository wraps a domain.ServiceRequestRepository with
// OpenTelemetry tracing. Each method creates a span with semantic attributes
// and records errors.
type TracingRequestRepository struct {
	next   domain.ServiceRequestRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRequestRepository implements the port.
var _ domain.ServiceRequestRepository = (*TracingRequestRepository)(nil)

// NewTracingRequestRepository creates a tracing decorator around the given
// repository.
func NewTracingRequestRepository(next domain.ServiceRequestRepository) *TracingRequestRepository {
	return &TracingRequestRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRequestRepository) Create(ctx context.Context, req domain.ServiceRequest) error {
	ctx, span := r.tracer.Start(ctx, "ServiceRequestRepository.Create",
		trace.WithAttributes(
			attribute.String("request.id", req.ID),
			attribute.String("request.priority", string(req.Priority)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, req)
	recordError(span, err)
	return err
}

func (r *TracingRequestRepository) GetByID(ctx context.Context, id string) (domain.ServiceRequest, error) {
	ctx, span := r.tracer.Start(ctx, "ServiceRequestRepository.GetByID",
		trace.WithAttributes(attribute.String("request.id", id)),
	)
	defer span.End()

	req, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return req, err
}

func (r *TracingRequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]domain.ServiceRequest, error) {
	ctx, span := r.tracer.Start(ctx, "ServiceRequestRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	reqs, err := r.next.List(ctx, filter)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(reqs)))
	}
	return reqs, err
}

func (r *TracingRequestRepository) Count(ctx context.Context, filter domain.RequestFilter) (int, error) {
	ctx, span := r.tracer.Start(ctx, "ServiceRequestRepository.Count")
	defer span.End()

	n, err := r.next.Count(ctx, filter)
	recordError(span, err)
	return n, err
}

func (r *TracingRequestRepository) CountByStatus(ctx context.Context, filter domain.RequestFilter) (map[domain.RequestStatus]int, error) {
	ctx, span := r.tracer.Start(ctx, "ServiceRequestRepository.CountByStatus")
	defer span.End()

	counts, err := r.next.CountByStatus(ctx, filter)
	recordError(span, err)
	return counts, err
}

func (r *TracingRequestRepository) UpdateStatus(ctx context.Context, id string, version int, status domain.RequestStatus, response *string) (domain.ServiceRequest, error) {
	ctx, span := r.tracer.Start(ctx, "ServiceRequestRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.String("request.id", id),
			attribute.Int("request.version", version),
			attribute.String("request.status", string(status)),
		),
	)
	defer span.End()

	req, err := r.next.UpdateStatus(ctx, id, version, status, response)
	recordError(span, err)
	return req, err
}

func (r *TracingRequestRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ServiceRequestRepository.Delete",
		trace.WithAttributes(attribute.String("request.id", id)),
	)
	defer span.End()

	err := r.next.Delete(ctx, id)
	recordError(span, err)
	return err
}

// TracingMaintenanceRepository wraps a domain.MaintenanceRepository with
// OpenTelemetry tracing.
type TracingMaintenanceRepository struct {
	next   domain.MaintenanceRepository
	tracer trace.Tracer
}

// Compile-time check: TracingMaintenanceRepository implements the port.
var _ domain.MaintenanceRepository = (*TracingMaintenanceRepository)(nil)

// NewTracingMaintenanceRepository creates a tracing decorator around the
// given repository.
func NewTracingMaintenanceRepository(next domain.MaintenanceRepository) *TracingMaintenanceRepository {
	return &TracingMaintenanceRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingMaintenanceRepository) CreateWithHistory(ctx context.Context, rec domain.MaintenanceRecord, entry domain.HistoryEntry) error {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.CreateWithHistory",
		trace.WithAttributes(
			attribute.String("maintenance.id", rec.ID),
			attribute.String("maintenance.type", string(rec.Type)),
			attribute.String("equipment.id", rec.EquipmentID),
		),
	)
	defer span.End()

	err := r.next.CreateWithHistory(ctx, rec, entry)
	recordError(span, err)
	return err
}

func (r *TracingMaintenanceRepository) GetByID(ctx context.Context, id string) (domain.MaintenanceRecord, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.GetByID",
		trace.WithAttributes(attribute.String("maintenance.id", id)),
	)
	defer span.End()

	rec, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return rec, err
}

func (r *TracingMaintenanceRepository) List(ctx context.Context, filter domain.MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	recs, err := r.next.List(ctx, filter)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(recs)))
	}
	return recs, err
}

func (r *TracingMaintenanceRepository) Count(ctx context.Context, filter domain.MaintenanceFilter) (int, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.Count")
	defer span.End()

	n, err := r.next.Count(ctx, filter)
	recordError(span, err)
	return n, err
}

func (r *TracingMaintenanceRepository) CountByStatus(ctx context.Context, filter domain.MaintenanceFilter) (map[domain.MaintenanceStatus]int, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.CountByStatus")
	defer span.End()

	counts, err := r.next.CountByStatus(ctx, filter)
	recordError(span, err)
	return counts, err
}

func (r *TracingMaintenanceRepository) CountByType(ctx context.Context, filter domain.MaintenanceFilter) (map[domain.MaintenanceType]int, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.CountByType")
	defer span.End()

	counts, err := r.next.CountByType(ctx, filter)
	recordError(span, err)
	return counts, err
}

func (r *TracingMaintenanceRepository) CountCompletedBetween(ctx context.Context, filter domain.MaintenanceFilter, from, to time.Time) (int, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.CountCompletedBetween")
	defer span.End()

	n, err := r.next.CountCompletedBetween(ctx, filter, from, to)
	recordError(span, err)
	return n, err
}

func (r *TracingMaintenanceRepository) CountPendingCreatedBefore(ctx context.Context, filter domain.MaintenanceFilter, before time.Time) (int, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.CountPendingCreatedBefore")
	defer span.End()

	n, err := r.next.CountPendingCreatedBefore(ctx, filter, before)
	recordError(span, err)
	return n, err
}

func (r *TracingMaintenanceRepository) ListUpcoming(ctx context.Context, filter domain.MaintenanceFilter, limit int) ([]domain.MaintenanceRecord, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.ListUpcoming",
		trace.WithAttributes(attribute.Int("filter.limit", limit)),
	)
	defer span.End()

	recs, err := r.next.ListUpcoming(ctx, filter, limit)
	recordError(span, err)
	return recs, err
}

func (r *TracingMaintenanceRepository) MonthlyCounts(ctx context.Context, filter domain.MaintenanceFilter, since time.Time) ([]domain.MonthlyCount, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.MonthlyCounts")
	defer span.End()

	counts, err := r.next.MonthlyCounts(ctx, filter, since)
	recordError(span, err)
	return counts, err
}

func (r *TracingMaintenanceRepository) SetStatus(ctx context.Context, id string, version int, status domain.MaintenanceStatus, performedDate *time.Time, notes *string) (domain.MaintenanceRecord, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.SetStatus",
		trace.WithAttributes(
			attribute.String("maintenance.id", id),
			attribute.Int("maintenance.version", version),
			attribute.String("maintenance.status", string(status)),
		),
	)
	defer span.End()

	rec, err := r.next.SetStatus(ctx, id, version, status, performedDate, notes)
	recordError(span, err)
	return rec, err
}

func (r *TracingMaintenanceRepository) SetReportURL(ctx context.Context, id string, url string) (domain.MaintenanceRecord, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.SetReportURL",
		trace.WithAttributes(attribute.String("maintenance.id", id)),
	)
	defer span.End()

	rec, err := r.next.SetReportURL(ctx, id, url)
	recordError(span, err)
	return rec, err
}

func (r *TracingMaintenanceRepository) HistoryForRecord(ctx context.Context, recordID string) ([]domain.HistoryEntry, error) {
	ctx, span := r.tracer.Start(ctx, "MaintenanceRepository.HistoryForRecord",
		trace.WithAttributes(attribute.String("maintenance.id", recordID)),
	)
	defer span.End()

	entries, err := r.next.HistoryForRecord(ctx, recordID)
	recordError(span, err)
	return entries, err
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
