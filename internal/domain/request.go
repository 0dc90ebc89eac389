package domain

import "time"

// Priority ranks how urgent a reported problem is.
type Priority string

const (
	PrioridadBaja    Priority = "BAJA"
	PrioridadMedia   Priority = "MEDIA"
	PrioridadAlta    Priority = "ALTA"
	PrioridadUrgente Priority = "URGENTE"
)

// Valid reports whether the priority is one of the enumerated values.
func (p Priority) Valid() bool {
	switch p {
	case PrioridadBaja, PrioridadMedia, PrioridadAlta, PrioridadUrgente:
		return true
	}
	return false
}

// RequestStatus is the lifecycle state of a service request.
type RequestStatus string

const (
	RequestPendiente  RequestStatus = "PENDIENTE"
	RequestEnRevision RequestStatus = "EN_REVISION"
	RequestAprobada   RequestStatus = "APROBADA"
	RequestRechazada  RequestStatus = "RECHAZADA"
)

// Terminal reports whether the request can no longer change state.
func (s RequestStatus) Terminal() bool {
	return s == RequestAprobada || s == RequestRechazada
}

// RequestEvent is an action that moves a request through its lifecycle.
type RequestEvent string

const (
	EventSubmit      RequestEvent = "submit" // creation, published but not a transition
	EventStartReview RequestEvent = "start_review"
	EventApprove     RequestEvent = "approve"
	EventReject      RequestEvent = "reject"
	EventCancel      RequestEvent = "cancel"
)

// RequestTransition defines a valid state change and the role allowed to
// trigger it. This table is the single source of truth for the request
// workflow; the FSM adapter and the policy checks are both derived from it.
type RequestTransition struct {
	Event RequestEvent
	Src   RequestStatus
	Dst   RequestStatus
	Actor Role
}

// RequestTransitions defines all valid service-request state changes.
var RequestTransitions = []RequestTransition{
	{Event: EventStartReview, Src: RequestPendiente, Dst: RequestEnRevision, Actor: RoleAdmin},
	{Event: EventApprove, Src: RequestPendiente, Dst: RequestAprobada, Actor: RoleAdmin},
	{Event: EventApprove, Src: RequestEnRevision, Dst: RequestAprobada, Actor: RoleAdmin},
	{Event: EventReject, Src: RequestPendiente, Dst: RequestRechazada, Actor: RoleAdmin},
	{Event: EventReject, Src: RequestEnRevision, Dst: RequestRechazada, Actor: RoleAdmin},
	{Event: EventCancel, Src: RequestPendiente, Dst: RequestRechazada, Actor: RoleCliente},
}

// RequestEventForStatus maps a requested target status to the review event
// that reaches it. Returns false for PENDIENTE (no transition leads back) and
// for unknown statuses.
func RequestEventForStatus(target RequestStatus) (RequestEvent, bool) {
	switch target {
	case RequestEnRevision:
		return EventStartReview, true
	case RequestAprobada:
		return EventApprove, true
	case RequestRechazada:
		return EventReject, true
	}
	return "", false
}

// RequestEventAllowed reports whether the role appears in the transition
// table for the given event.
func RequestEventAllowed(event RequestEvent, role Role) bool {
	for _, tr := range RequestTransitions {
		if tr.Event == event && tr.Actor == role {
			return true
		}
	}
	return false
}

// ClientCancellationNote is the response recorded when the owning client
// cancels a pending request.
const ClientCancellationNote = "Cancelada por el cliente"

// Description length bounds for a service request.
const (
	DescriptionMinLen = 10
	DescriptionMaxLen = 1000
)

// ServiceRequest is a client-submitted report of an equipment problem,
// subject to administrative review. Version backs the optimistic concurrency
// check on status updates.
type ServiceRequest struct {
	ID          string
	EquipmentID string
	ClientID    string
	Description string
	Priority    Priority
	Status      RequestStatus
	Response    *string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewServiceRequest creates a request in the initial PENDIENTE state.
func NewServiceRequest(id, equipmentID, clientID, description string, priority Priority) ServiceRequest {
	now := time.Now().UTC()
	return ServiceRequest{
		ID:          id,
		EquipmentID: equipmentID,
		ClientID:    clientID,
		Description: description,
		Priority:    priority,
		Status:      RequestPendiente,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ValidateRequestInput checks submission payload constraints. It fails fast
// so no persisted state is touched on invalid input.
func ValidateRequestInput(description string, priority Priority) error {
	if len(description) < DescriptionMinLen {
		return &ValidationError{Field: "descripcion", Message: "describa el problema con al menos 10 caracteres"}
	}
	if len(description) > DescriptionMaxLen {
		return &ValidationError{Field: "descripcion", Message: "máximo 1000 caracteres"}
	}
	if !priority.Valid() {
		return &ValidationError{Field: "prioridad", Message: "prioridad desconocida"}
	}
	return nil
}
