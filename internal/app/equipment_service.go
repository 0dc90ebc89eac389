package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// EquipmentService manages the equipment registry. Creation is admin-only;
// reads are scoped by the tenancy policy.
type EquipmentService struct {
	equipment domain.EquipmentRepository
}

// NewEquipmentService creates a service with the given adapter.
func NewEquipmentService(equipment domain.EquipmentRepository) *EquipmentService {
	return &EquipmentService{equipment: equipment}
}

// CreateEquipmentInput carries the registration payload.
type CreateEquipmentInput struct {
	Type      string
	Brand     string
	Model     *string
	Serial    string
	CompanyID string
}

// Create registers a new piece of equipment in ACTIVO state. Admin only.
func (s *EquipmentService) Create(ctx context.Context, p domain.Principal, in CreateEquipmentInput) (domain.Equipment, error) {
	if p.Role != domain.RoleAdmin {
		return domain.Equipment{}, &domain.ForbiddenError{Reason: "solo un administrador puede registrar equipos"}
	}

	if in.Type == "" {
		return domain.Equipment{}, &domain.ValidationError{Field: "tipo", Message: "el tipo es requerido"}
	}
	if in.Brand == "" {
		return domain.Equipment{}, &domain.ValidationError{Field: "marca", Message: "la marca es requerida"}
	}
	if in.Serial == "" {
		return domain.Equipment{}, &domain.ValidationError{Field: "numeroSerie", Message: "el número de serie es requerido"}
	}
	if in.CompanyID == "" {
		return domain.Equipment{}, &domain.ValidationError{Field: "empresaId", Message: "la empresa es requerida"}
	}

	id, err := generateID()
	if err != nil {
		return domain.Equipment{}, fmt.Errorf("generating equipment id: %w", err)
	}

	eq := domain.NewEquipment(id, in.Type, in.Brand, in.Serial, in.CompanyID, in.Model)
	if err := s.equipment.Create(ctx, eq); err != nil {
		return domain.Equipment{}, err
	}
	return eq, nil
}

// Get returns a piece of equipment visible to the principal. Cross-tenant
// reads report not-found rather than forbidden.
func (s *EquipmentService) Get(ctx context.Context, p domain.Principal, id string) (domain.Equipment, error) {
	eq, err := s.equipment.GetByID(ctx, id)
	if err != nil {
		return domain.Equipment{}, err
	}
	if p.Role == domain.RoleCliente && eq.CompanyID != p.CompanyID {
		return domain.Equipment{}, domain.ErrEquipmentNotFound
	}
	return eq, nil
}

// List returns a page of equipment narrowed to the principal's scope.
func (s *EquipmentService) List(ctx context.Context, p domain.Principal, filter domain.EquipmentFilter, page domain.Page) (domain.Paged[domain.Equipment], error) {
	filter = domain.NarrowEquipmentFilter(p, filter)
	filter.Limit = page.Size
	filter.Offset = page.Offset()

	items, err := s.equipment.List(ctx, filter)
	if err != nil {
		return domain.Paged[domain.Equipment]{}, fmt.Errorf("listing equipment: %w", err)
	}

	total, err := s.equipment.Count(ctx, filter)
	if err != nil {
		return domain.Paged[domain.Equipment]{}, fmt.Errorf("counting equipment: %w", err)
	}

	return domain.NewPaged(items, total, page), nil
}
