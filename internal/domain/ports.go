package domain

import (
	"context"
	"io"
	"time"
)

// RequestFilter holds optional criteria for listing service requests.
// ClientID is set by the tenancy policy, never by callers directly.
type RequestFilter struct {
	Status   *RequestStatus
	Priority *Priority
	ClientID string
	Limit    int
	Offset   int
}

// MaintenanceFilter holds optional criteria for listing maintenance records.
// CompanyID scopes through the owning equipment; TechnicianID pins a
// technician's assigned work.
type MaintenanceFilter struct {
	Status       *MaintenanceStatus
	Type         *MaintenanceType
	TechnicianID string
	EquipmentID  string
	CompanyID    string
	Limit        int
	Offset       int
}

// EquipmentFilter holds optional criteria for listing equipment.
type EquipmentFilter struct {
	CompanyID string
	Status    *EquipmentStatus
	Limit     int
	Offset    int
}

// MonthlyCount is one bucket of the month-by-type maintenance series used for
// dashboard charting. Month is formatted YYYY-MM.
type MonthlyCount struct {
	Month string
	Type  MaintenanceType
	Count int
}

// ServiceRequestRepository defines the persistence contract for requests.
// UpdateStatus is a compare-and-swap on the row version: it fails with
// ConflictError when the version no longer matches, so a concurrent reviewer
// never silently overwrites another's outcome.
type ServiceRequestRepository interface {
	Create(ctx context.Context, req ServiceRequest) error
	GetByID(ctx context.Context, id string) (ServiceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]ServiceRequest, error)
	Count(ctx context.Context, filter RequestFilter) (int, error)
	CountByStatus(ctx context.Context, filter RequestFilter) (map[RequestStatus]int, error)
	UpdateStatus(ctx context.Context, id string, version int, status RequestStatus, response *string) (ServiceRequest, error)
	Delete(ctx context.Context, id string) error
}

// MaintenanceRepository defines the persistence contract for maintenance
// records and their audit trail. CreateWithHistory inserts the record and its
// history entry in one transaction: both succeed or neither exists.
type MaintenanceRepository interface {
	CreateWithHistory(ctx context.Context, rec MaintenanceRecord, entry HistoryEntry) error
	GetByID(ctx context.Context, id string) (MaintenanceRecord, error)
	List(ctx context.Context, filter MaintenanceFilter) ([]MaintenanceRecord, error)
	Count(ctx context.Context, filter MaintenanceFilter) (int, error)
	CountByStatus(ctx context.Context, filter MaintenanceFilter) (map[MaintenanceStatus]int, error)
	CountByType(ctx context.Context, filter MaintenanceFilter) (map[MaintenanceType]int, error)
	CountCompletedBetween(ctx context.Context, filter MaintenanceFilter, from, to time.Time) (int, error)
	CountPendingCreatedBefore(ctx context.Context, filter MaintenanceFilter, before time.Time) (int, error)
	ListUpcoming(ctx context.Context, filter MaintenanceFilter, limit int) ([]MaintenanceRecord, error)
	MonthlyCounts(ctx context.Context, filter MaintenanceFilter, since time.Time) ([]MonthlyCount, error)
	SetStatus(ctx context.Context, id string, version int, status MaintenanceStatus, performedDate *time.Time, notes *string) (MaintenanceRecord, error)
	SetReportURL(ctx context.Context, id string, url string) (MaintenanceRecord, error)
	HistoryForRecord(ctx context.Context, recordID string) ([]HistoryEntry, error)
}

// EquipmentRepository defines the persistence contract for equipment.
type EquipmentRepository interface {
	Create(ctx context.Context, eq Equipment) error
	GetByID(ctx context.Context, id string) (Equipment, error)
	List(ctx context.Context, filter EquipmentFilter) ([]Equipment, error)
	Count(ctx context.Context, filter EquipmentFilter) (int, error)
	CountByStatus(ctx context.Context, filter EquipmentFilter) (map[EquipmentStatus]int, error)
	SetStatus(ctx context.Context, id string, status EquipmentStatus) error
}

// UserRepository resolves user accounts for role checks.
type UserRepository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
}

// CompanyRepository resolves companies referenced by equipment and users.
type CompanyRepository interface {
	Create(ctx context.Context, c Company) error
	GetByID(ctx context.Context, id string) (Company, error)
}

// RequestTransitionValidator validates service-request state changes.
type RequestTransitionValidator interface {
	Apply(ctx context.Context, current RequestStatus, event RequestEvent) (RequestStatus, error)
}

// MaintenanceTransitionValidator validates maintenance state changes.
type MaintenanceTransitionValidator interface {
	Apply(ctx context.Context, current MaintenanceStatus, event MaintenanceEvent) (MaintenanceStatus, error)
}

// EventPublisher defines the contract for emitting domain events.
type EventPublisher interface {
	PublishRequest(ctx context.Context, event RequestEvent, req ServiceRequest) error
	PublishMaintenance(ctx context.Context, event MaintenanceEvent, rec MaintenanceRecord) error
}

// ReportStore persists uploaded maintenance report documents and returns a
// stable reference URL. The core stores only the URL.
type ReportStore interface {
	Save(ctx context.Context, fileName string, content io.Reader) (string, error)
}
