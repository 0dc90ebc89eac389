package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs carries the data needed to process a domain event
// asynchronously. River serializes this as JSON into its job queue table. It
// includes a snapshot of the entity at the time the event was published, so
// the worker never needs to query the database.
type EventJobArgs struct {
	Event    string `json:"event"`
	Entity   string `json:"entity"` // "solicitud" or "mantenimiento"
	EntityID string `json:"entity_id"`
	Status   string `json:"status"`

	// Request snapshot fields.
	ClientID string `json:"client_id,omitempty"`
	Priority string `json:"priority,omitempty"`

	// Maintenance snapshot fields.
	EquipmentID  string `json:"equipment_id,omitempty"`
	TechnicianID string `json:"technician_id,omitempty"`
	Type         string `json:"type,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "event.published" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// PublishRequest enqueues a service-request event as an async job.
func (p *Publisher) PublishRequest(ctx context.Context, event domain.RequestEvent, req domain.ServiceRequest) error {
	_, err := p.client.Insert(ctx, EventJobArgs{
		Event:       string(event),
		Entity:      "solicitud",
		EntityID:    req.ID,
		Status:      string(req.Status),
		ClientID:    req.ClientID,
		Priority:    string(req.Priority),
		EquipmentID: req.EquipmentID,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing request event job: %w", err)
	}
	return nil
}

// PublishMaintenance enqueues a maintenance event as an async job.
func (p *Publisher) PublishMaintenance(ctx context.Context, event domain.MaintenanceEvent, rec domain.MaintenanceRecord) error {
	_, err := p.client.Insert(ctx, EventJobArgs{
		Event:        string(event),
		Entity:       "mantenimiento",
		EntityID:     rec.ID,
		Status:       string(rec.Status),
		EquipmentID:  rec.EquipmentID,
		TechnicianID: rec.TechnicianID,
		Type:         string(rec.Type),
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing maintenance event job: %w", err)
	}
	return nil
}
