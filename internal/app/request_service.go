package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// RequestService orchestrates the service-request lifecycle: submission by
// clients, review by admins, self-cancellation, and deletion. Every operation
// runs the tenancy policy before touching state and the transition validator
// before every status change.
type RequestService struct {
	requests  domain.ServiceRequestRepository
	equipment domain.EquipmentRepository
	publisher domain.EventPublisher
	validator domain.RequestTransitionValidator
}

// NewRequestService creates a service with the given adapters.
func NewRequestService(requests domain.ServiceRequestRepository, equipment domain.EquipmentRepository, publisher domain.EventPublisher, validator domain.RequestTransitionValidator) *RequestService {
	return &RequestService{
		requests:  requests,
		equipment: equipment,
		publisher: publisher,
		validator: validator,
	}
}

// Submit creates a request for a piece of equipment owned by the client's
// company. Validation and tenancy checks run before any write.
func (s *RequestService) Submit(ctx context.Context, p domain.Principal, equipmentID, description string, priority domain.Priority) (domain.ServiceRequest, error) {
	if !domain.CanSubmitRequest(p) {
		return domain.ServiceRequest{}, &domain.ForbiddenError{Reason: "solo los clientes pueden crear solicitudes de servicio"}
	}

	if err := domain.ValidateRequestInput(description, priority); err != nil {
		return domain.ServiceRequest{}, err
	}

	eq, err := s.equipment.GetByID(ctx, equipmentID)
	if err != nil {
		return domain.ServiceRequest{}, err
	}
	if eq.CompanyID != p.CompanyID {
		return domain.ServiceRequest{}, &domain.ForbiddenError{Reason: "no tiene permisos sobre este equipo"}
	}

	id, err := generateID()
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("generating request id: %w", err)
	}

	req := domain.NewServiceRequest(id, equipmentID, p.ID, description, priority)

	if err := s.requests.Create(ctx, req); err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("creating request: %w", err)
	}

	if err := s.publisher.PublishRequest(ctx, domain.EventSubmit, req); err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("publishing submit event: %w", err)
	}

	return req, nil
}

// Get returns a request visible to the principal. Cross-tenant reads report
// not-found rather than forbidden so existence is never disclosed.
func (s *RequestService) Get(ctx context.Context, p domain.Principal, id string) (domain.ServiceRequest, error) {
	if !domain.CanListRequests(p) {
		return domain.ServiceRequest{}, &domain.ForbiddenError{Reason: "sin permisos"}
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	if !domain.CanViewRequest(p, req) {
		return domain.ServiceRequest{}, domain.ErrRequestNotFound
	}

	return req, nil
}

// List returns a page of requests narrowed to the principal's scope.
func (s *RequestService) List(ctx context.Context, p domain.Principal, filter domain.RequestFilter, page domain.Page) (domain.Paged[domain.ServiceRequest], error) {
	reqs, total, err := s.list(ctx, p, filter, page.Size, page.Offset())
	if err != nil {
		return domain.Paged[domain.ServiceRequest]{}, err
	}
	return domain.NewPaged(reqs, total, page), nil
}

// ListAll returns every request in the principal's scope, unpaginated. Used
// by the export endpoints.
func (s *RequestService) ListAll(ctx context.Context, p domain.Principal, filter domain.RequestFilter) ([]domain.ServiceRequest, error) {
	reqs, _, err := s.list(ctx, p, filter, 0, 0)
	return reqs, err
}

func (s *RequestService) list(ctx context.Context, p domain.Principal, filter domain.RequestFilter, limit, offset int) ([]domain.ServiceRequest, int, error) {
	if !domain.CanListRequests(p) {
		return nil, 0, &domain.ForbiddenError{Reason: "sin permisos"}
	}

	filter = domain.NarrowRequestFilter(p, filter)
	filter.Limit = limit
	filter.Offset = offset

	reqs, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("listing requests: %w", err)
	}

	total, err := s.requests.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting requests: %w", err)
	}

	return reqs, total, nil
}

// Review applies an admin review transition (EN_REVISION, APROBADA or
// RECHAZADA) with an optional response. The status write is a compare-and-
// swap on the row version: a concurrent reviewer gets a ConflictError.
func (s *RequestService) Review(ctx context.Context, p domain.Principal, id string, target domain.RequestStatus, response *string) (domain.ServiceRequest, error) {
	if !domain.CanReviewRequests(p) {
		return domain.ServiceRequest{}, &domain.ForbiddenError{Reason: "solo un administrador puede revisar solicitudes"}
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	event, ok := domain.RequestEventForStatus(target)
	if !ok {
		return domain.ServiceRequest{}, &domain.TransitionError{Event: string(target), Current: string(req.Status)}
	}
	if !domain.RequestEventAllowed(event, p.Role) {
		return domain.ServiceRequest{}, &domain.ForbiddenError{Reason: "sin permisos para esta transición"}
	}

	newStatus, err := s.validator.Apply(ctx, req.Status, event)
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	updated, err := s.requests.UpdateStatus(ctx, id, req.Version, newStatus, response)
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	if err := s.publisher.PublishRequest(ctx, event, updated); err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("publishing event %q: %w", event, err)
	}

	return updated, nil
}

// Cancel lets the owning client withdraw a still-pending request. The
// response is forced to the fixed cancellation note.
func (s *RequestService) Cancel(ctx context.Context, p domain.Principal, id string) (domain.ServiceRequest, error) {
	if p.Role != domain.RoleCliente {
		return domain.ServiceRequest{}, &domain.ForbiddenError{Reason: "sin permisos"}
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	if !domain.CanCancelRequest(p, req) {
		return domain.ServiceRequest{}, &domain.ForbiddenError{Reason: "sin permisos"}
	}

	newStatus, err := s.validator.Apply(ctx, req.Status, domain.EventCancel)
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	note := domain.ClientCancellationNote
	updated, err := s.requests.UpdateStatus(ctx, id, req.Version, newStatus, &note)
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	if err := s.publisher.PublishRequest(ctx, domain.EventCancel, updated); err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("publishing cancel event: %w", err)
	}

	return updated, nil
}

// Delete hard-deletes a request. Admin only, any state.
func (s *RequestService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if !domain.CanDeleteRequests(p) {
		return &domain.ForbiddenError{Reason: "sin permisos"}
	}
	return s.requests.Delete(ctx, id)
}
