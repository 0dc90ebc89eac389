package app

import (
	"context"
	"fmt"
	"time"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// MaintenanceService owns maintenance records: creation (always paired
// atomically with a history entry), derivation from approved requests,
// lifecycle transitions, and the equipment-status coupling.
type MaintenanceService struct {
	records   domain.MaintenanceRepository
	requests  domain.ServiceRequestRepository
	equipment domain.EquipmentRepository
	users     domain.UserRepository
	publisher domain.EventPublisher
	validator domain.MaintenanceTransitionValidator
}

// NewMaintenanceService creates a service with the given adapters.
func NewMaintenanceService(records domain.MaintenanceRepository, requests domain.ServiceRequestRepository, equipment domain.EquipmentRepository, users domain.UserRepository, publisher domain.EventPublisher, validator domain.MaintenanceTransitionValidator) *MaintenanceService {
	return &MaintenanceService{
		records:   records,
		requests:  requests,
		equipment: equipment,
		users:     users,
		publisher: publisher,
		validator: validator,
	}
}

// CreateMaintenanceInput carries the creation payload.
type CreateMaintenanceInput struct {
	EquipmentID   string
	TechnicianID  string
	Type          domain.MaintenanceType
	ScheduledDate time.Time
	Description   string
	Notes         *string
}

// Create schedules maintenance. Admins and clients may create (clients only
// for their own company's equipment); technicians never create work orders.
// The record and its audit entry are inserted in one transaction.
func (s *MaintenanceService) Create(ctx context.Context, p domain.Principal, in CreateMaintenanceInput) (domain.MaintenanceRecord, error) {
	if !domain.CanCreateMaintenance(p) {
		return domain.MaintenanceRecord{}, &domain.ForbiddenError{Reason: "sin permisos"}
	}

	if err := domain.ValidateMaintenanceInput(in.Type, in.ScheduledDate, in.Description, in.Notes); err != nil {
		return domain.MaintenanceRecord{}, err
	}

	eq, err := s.equipment.GetByID(ctx, in.EquipmentID)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if p.Role == domain.RoleCliente && eq.CompanyID != p.CompanyID {
		return domain.MaintenanceRecord{}, &domain.ForbiddenError{Reason: "no tiene permisos sobre este equipo"}
	}

	tech, err := s.users.GetByID(ctx, in.TechnicianID)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if tech.Role != domain.RoleTecnico {
		return domain.MaintenanceRecord{}, &domain.ValidationError{Field: "tecnicoId", Message: "el usuario no tiene rol de técnico"}
	}

	recID, err := generateID()
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("generating maintenance id: %w", err)
	}
	histID, err := generateID()
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("generating history id: %w", err)
	}

	rec := domain.NewMaintenanceRecord(recID, in.EquipmentID, in.TechnicianID, in.Type, in.ScheduledDate, in.Description, in.Notes)
	entry := domain.NewHistoryEntry(histID, rec)

	if err := s.records.CreateWithHistory(ctx, rec, entry); err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("creating maintenance: %w", err)
	}

	if err := s.publisher.PublishMaintenance(ctx, domain.EventSchedule, rec); err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("publishing schedule event: %w", err)
	}

	return rec, nil
}

// CreateFromRequest derives a work order from an approved service request:
// equipment and description seed from the request, technician and schedule
// come from the admin.
func (s *MaintenanceService) CreateFromRequest(ctx context.Context, p domain.Principal, requestID, technicianID string, scheduledDate time.Time) (domain.MaintenanceRecord, error) {
	if p.Role != domain.RoleAdmin {
		return domain.MaintenanceRecord{}, &domain.ForbiddenError{Reason: "sin permisos"}
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}

	draft, err := domain.DeriveMaintenance(req)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}

	return s.Create(ctx, p, CreateMaintenanceInput{
		EquipmentID:   draft.EquipmentID,
		TechnicianID:  technicianID,
		Type:          draft.Type,
		ScheduledDate: scheduledDate,
		Description:   draft.Description,
	})
}

// Get returns a record visible to the principal. Cross-tenant reads report
// not-found rather than forbidden so existence is never disclosed.
func (s *MaintenanceService) Get(ctx context.Context, p domain.Principal, id string) (domain.MaintenanceRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}

	eq, err := s.equipment.GetByID(ctx, rec.EquipmentID)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}

	if !domain.CanViewMaintenance(p, rec, eq) {
		return domain.MaintenanceRecord{}, domain.ErrMaintenanceNotFound
	}

	return rec, nil
}

// List returns a page of records narrowed to the principal's scope.
// Technicians see only their assigned work, clients their company's fleet.
func (s *MaintenanceService) List(ctx context.Context, p domain.Principal, filter domain.MaintenanceFilter, page domain.Page) (domain.Paged[domain.MaintenanceRecord], error) {
	filter = domain.NarrowMaintenanceFilter(p, filter)
	filter.Limit = page.Size
	filter.Offset = page.Offset()

	recs, err := s.records.List(ctx, filter)
	if err != nil {
		return domain.Paged[domain.MaintenanceRecord]{}, fmt.Errorf("listing maintenance: %w", err)
	}

	total, err := s.records.Count(ctx, filter)
	if err != nil {
		return domain.Paged[domain.MaintenanceRecord]{}, fmt.Errorf("counting maintenance: %w", err)
	}

	return domain.NewPaged(recs, total, page), nil
}

// ListAll returns every record in the principal's scope, unpaginated. Used by
// the export endpoints.
func (s *MaintenanceService) ListAll(ctx context.Context, p domain.Principal, filter domain.MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	filter = domain.NarrowMaintenanceFilter(p, filter)
	filter.Limit = 0
	filter.Offset = 0
	return s.records.List(ctx, filter)
}

// ChangeStatus applies a lifecycle transition. Admins and the assigned
// technician only; clients are read-only. COMPLETADO stamps the performed
// date. Equipment status follows the work: EN_PROCESO flags the equipment as
// under maintenance, terminal states return it to active.
func (s *MaintenanceService) ChangeStatus(ctx context.Context, p domain.Principal, id string, target domain.MaintenanceStatus, notes *string) (domain.MaintenanceRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}

	if !domain.CanTransitionMaintenance(p, rec) {
		return domain.MaintenanceRecord{}, &domain.ForbiddenError{Reason: "sin permisos"}
	}

	event, ok := domain.MaintenanceEventForStatus(target)
	if !ok {
		return domain.MaintenanceRecord{}, &domain.TransitionError{Event: string(target), Current: string(rec.Status)}
	}

	newStatus, err := s.validator.Apply(ctx, rec.Status, event)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}

	var performed *time.Time
	if newStatus == domain.MaintenanceCompletado {
		now := time.Now().UTC()
		performed = &now
	}

	updated, err := s.records.SetStatus(ctx, id, rec.Version, newStatus, performed, notes)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}

	if err := s.syncEquipmentStatus(ctx, rec.EquipmentID, newStatus); err != nil {
		return domain.MaintenanceRecord{}, err
	}

	if err := s.publisher.PublishMaintenance(ctx, event, updated); err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("publishing event %q: %w", event, err)
	}

	return updated, nil
}

func (s *MaintenanceService) syncEquipmentStatus(ctx context.Context, equipmentID string, status domain.MaintenanceStatus) error {
	var eqStatus domain.EquipmentStatus
	switch status {
	case domain.MaintenanceEnProceso:
		eqStatus = domain.EquipmentEnMantenimiento
	case domain.MaintenanceCompletado, domain.MaintenanceCancelado:
		eqStatus = domain.EquipmentActivo
	default:
		return nil
	}

	if err := s.equipment.SetStatus(ctx, equipmentID, eqStatus); err != nil {
		return fmt.Errorf("updating equipment status: %w", err)
	}
	return nil
}

// AuthorizeReport checks, without mutating anything, that the principal may
// attach a report to the record. Callers with side effects of their own
// (persisting the upload) run it first so a rejected record costs nothing.
func (s *MaintenanceService) AuthorizeReport(ctx context.Context, p domain.Principal, id string) error {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !domain.CanTransitionMaintenance(p, rec) {
		return &domain.ForbiddenError{Reason: "sin permisos"}
	}
	return nil
}

// AttachReport stores the uploaded report URL on the record. Admins and the
// assigned technician only.
func (s *MaintenanceService) AttachReport(ctx context.Context, p domain.Principal, id, url string) (domain.MaintenanceRecord, error) {
	if err := s.AuthorizeReport(ctx, p, id); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	return s.records.SetReportURL(ctx, id, url)
}

// History returns the audit trail of a record visible to the principal.
func (s *MaintenanceService) History(ctx context.Context, p domain.Principal, id string) ([]domain.HistoryEntry, error) {
	if _, err := s.Get(ctx, p, id); err != nil {
		return nil, err
	}
	return s.records.HistoryForRecord(ctx, id)
}
