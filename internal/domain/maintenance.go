package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaintenanceType distinguishes planned from repair work.
type MaintenanceType string

const (
	TipoPreventivo MaintenanceType = "PREVENTIVO"
	TipoCorrectivo MaintenanceType = "CORRECTIVO"
)

// Valid reports whether the maintenance type is known.
func (t MaintenanceType) Valid() bool {
	return t == TipoPreventivo || t == TipoCorrectivo
}

// MaintenanceStatus is the lifecycle state of a maintenance record.
type MaintenanceStatus string

const (
	MaintenanceProgramado MaintenanceStatus = "PROGRAMADO"
	MaintenanceEnProceso  MaintenanceStatus = "EN_PROCESO"
	MaintenanceCompletado MaintenanceStatus = "COMPLETADO"
	MaintenanceCancelado  MaintenanceStatus = "CANCELADO"
)

// Terminal reports whether the maintenance can no longer change state.
func (s MaintenanceStatus) Terminal() bool {
	return s == MaintenanceCompletado || s == MaintenanceCancelado
}

// MaintenanceEvent is an action that moves a maintenance record through its
// lifecycle.
type MaintenanceEvent string

const (
	EventSchedule   MaintenanceEvent = "schedule" // creation, published but not a transition
	EventStartWork  MaintenanceEvent = "start_work"
	EventComplete   MaintenanceEvent = "complete"
	EventCancelWork MaintenanceEvent = "cancel_work"
)

// MaintenanceTransition defines a valid maintenance state change. The
// lifecycle is closed: PROGRAMADO → EN_PROCESO → COMPLETADO, with CANCELADO
// reachable from either non-terminal state. Actor eligibility (ADMIN, or the
// assigned TECNICO) is checked by the policy, not per transition.
type MaintenanceTransition struct {
	Event MaintenanceEvent
	Src   MaintenanceStatus
	Dst   MaintenanceStatus
}

// MaintenanceTransitions defines all valid maintenance state changes.
var MaintenanceTransitions = []MaintenanceTransition{
	{Event: EventStartWork, Src: MaintenanceProgramado, Dst: MaintenanceEnProceso},
	{Event: EventComplete, Src: MaintenanceEnProceso, Dst: MaintenanceCompletado},
	{Event: EventCancelWork, Src: MaintenanceProgramado, Dst: MaintenanceCancelado},
	{Event: EventCancelWork, Src: MaintenanceEnProceso, Dst: MaintenanceCancelado},
}

// MaintenanceEventForStatus maps a requested target status to the lifecycle
// event that reaches it. Returns false for PROGRAMADO (no transition leads
// back) and for unknown statuses.
func MaintenanceEventForStatus(target MaintenanceStatus) (MaintenanceEvent, bool) {
	switch target {
	case MaintenanceEnProceso:
		return EventStartWork, true
	case MaintenanceCompletado:
		return EventComplete, true
	case MaintenanceCancelado:
		return EventCancelWork, true
	}
	return "", false
}

// MaintenanceRecord is a scheduled or completed unit of preventive or
// corrective work on a piece of equipment. Version backs the optimistic
// concurrency check on status updates.
type MaintenanceRecord struct {
	ID            string
	EquipmentID   string
	TechnicianID  string
	Type          MaintenanceType
	Status        MaintenanceStatus
	ScheduledDate time.Time
	PerformedDate *time.Time
	Description   string
	Notes         *string
	ReportURL     *string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewMaintenanceRecord creates a record in the initial PROGRAMADO state.
func NewMaintenanceRecord(id, equipmentID, technicianID string, typ MaintenanceType, scheduledDate time.Time, description string, notes *string) MaintenanceRecord {
	now := time.Now().UTC()
	return MaintenanceRecord{
		ID:            id,
		EquipmentID:   equipmentID,
		TechnicianID:  technicianID,
		Type:          typ,
		Status:        MaintenanceProgramado,
		ScheduledDate: scheduledDate,
		Description:   description,
		Notes:         notes,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HistoryEntry is an append-only audit record tied to a maintenance record.
// Exactly one entry is written, atomically, when a record is created.
type HistoryEntry struct {
	ID                  string
	EquipmentID         string
	MaintenanceRecordID string
	TechnicianID        string
	Notes               string
	CreatedAt           time.Time
}

// NewHistoryEntry creates the audit entry paired with a maintenance record.
func NewHistoryEntry(id string, rec MaintenanceRecord) HistoryEntry {
	return HistoryEntry{
		ID:                  id,
		EquipmentID:         rec.EquipmentID,
		MaintenanceRecordID: rec.ID,
		TechnicianID:        rec.TechnicianID,
		Notes:               ScheduleNote(rec.Type, rec.Description),
		CreatedAt:           time.Now().UTC(),
	}
}

// ScheduleNote renders the audit note recorded when maintenance is scheduled.
func ScheduleNote(typ MaintenanceType, description string) string {
	return fmt.Sprintf("Mantenimiento %s programado: %s", strings.ToLower(string(typ)), description)
}

// MaintenanceDraft seeds a maintenance record from an approved service
// request. Technician and schedule are supplied by the admin at creation.
type MaintenanceDraft struct {
	EquipmentID string
	Description string
	Type        MaintenanceType
}

// DeriveMaintenance builds a draft from an approved request. Only APROBADA
// requests are eligible.
func DeriveMaintenance(req ServiceRequest) (MaintenanceDraft, error) {
	if req.Status != RequestAprobada {
		return MaintenanceDraft{}, ErrRequestNotApproved
	}
	return MaintenanceDraft{
		EquipmentID: req.EquipmentID,
		Description: req.Description,
		Type:        TipoCorrectivo,
	}, nil
}

// ValidateMaintenanceInput checks creation payload constraints.
func ValidateMaintenanceInput(typ MaintenanceType, scheduledDate time.Time, description string, notes *string) error {
	if !typ.Valid() {
		return &ValidationError{Field: "tipo", Message: "tipo de mantenimiento desconocido"}
	}
	if scheduledDate.IsZero() {
		return &ValidationError{Field: "fechaProgramada", Message: "la fecha programada es requerida"}
	}
	if description == "" {
		return &ValidationError{Field: "descripcion", Message: "la descripción es requerida"}
	}
	if len(description) > DescriptionMaxLen {
		return &ValidationError{Field: "descripcion", Message: "máximo 1000 caracteres"}
	}
	if notes != nil && len(*notes) > DescriptionMaxLen {
		return &ValidationError{Field: "observaciones", Message: "máximo 1000 caracteres"}
	}
	return nil
}
