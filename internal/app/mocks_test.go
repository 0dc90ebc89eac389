package app_test

import (
	"context"
	"errors"
	"time"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// In-memory port implementations shared by the service tests.

type mockRequestRepo struct {
	requests map[string]domain.ServiceRequest
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]domain.ServiceRequest)}
}

func (m *mockRequestRepo) Create(_ context.Context, req domain.ServiceRequest) error {
	m.requests[req.ID] = req
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (domain.ServiceRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return domain.ServiceRequest{}, domain.ErrRequestNotFound
	}
	return req, nil
}

func (m *mockRequestRepo) matches(req domain.ServiceRequest, f domain.RequestFilter) bool {
	if f.ClientID != "" && req.ClientID != f.ClientID {
		return false
	}
	if f.Status != nil && req.Status != *f.Status {
		return false
	}
	if f.Priority != nil && req.Priority != *f.Priority {
		return false
	}
	return true
}

func (m *mockRequestRepo) List(_ context.Context, f domain.RequestFilter) ([]domain.ServiceRequest, error) {
	var out []domain.ServiceRequest
	for _, req := range m.requests {
		if m.matches(req, f) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) Count(ctx context.Context, f domain.RequestFilter) (int, error) {
	reqs, err := m.List(ctx, f)
	return len(reqs), err
}

func (m *mockRequestRepo) CountByStatus(ctx context.Context, f domain.RequestFilter) (map[domain.RequestStatus]int, error) {
	reqs, err := m.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.RequestStatus]int)
	for _, req := range reqs {
		out[req.Status]++
	}
	return out, nil
}

func (m *mockRequestRepo) UpdateStatus(_ context.Context, id string, version int, status domain.RequestStatus, response *string) (domain.ServiceRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return domain.ServiceRequest{}, domain.ErrRequestNotFound
	}
	if req.Version != version {
		return domain.ServiceRequest{}, &domain.ConflictError{Entity: "solicitud", ID: id}
	}
	req.Status = status
	if response != nil {
		req.Response = response
	}
	req.Version++
	req.UpdatedAt = time.Now().UTC()
	m.requests[id] = req
	return req, nil
}

func (m *mockRequestRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.requests[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

type mockEquipmentRepo struct {
	items map[string]domain.Equipment
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{items: make(map[string]domain.Equipment)}
}

func (m *mockEquipmentRepo) Create(_ context.Context, eq domain.Equipment) error {
	m.items[eq.ID] = eq
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id string) (domain.Equipment, error) {
	eq, ok := m.items[id]
	if !ok {
		return domain.Equipment{}, domain.ErrEquipmentNotFound
	}
	return eq, nil
}

func (m *mockEquipmentRepo) List(_ context.Context, f domain.EquipmentFilter) ([]domain.Equipment, error) {
	var out []domain.Equipment
	for _, eq := range m.items {
		if f.CompanyID != "" && eq.CompanyID != f.CompanyID {
			continue
		}
		if f.Status != nil && eq.Status != *f.Status {
			continue
		}
		out = append(out, eq)
	}
	return out, nil
}

func (m *mockEquipmentRepo) Count(ctx context.Context, f domain.EquipmentFilter) (int, error) {
	items, err := m.List(ctx, f)
	return len(items), err
}

func (m *mockEquipmentRepo) CountByStatus(ctx context.Context, f domain.EquipmentFilter) (map[domain.EquipmentStatus]int, error) {
	items, err := m.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.EquipmentStatus]int)
	for _, eq := range items {
		out[eq.Status]++
	}
	return out, nil
}

func (m *mockEquipmentRepo) SetStatus(_ context.Context, id string, status domain.EquipmentStatus) error {
	eq, ok := m.items[id]
	if !ok {
		return domain.ErrEquipmentNotFound
	}
	eq.Status = status
	m.items[id] = eq
	return nil
}

type mockUserRepo struct {
	users map[string]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u domain.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

var errHistoryBoom = errors.New("history insert failed")

type mockMaintenanceRepo struct {
	records map[string]domain.MaintenanceRecord
	history map[string][]domain.HistoryEntry
	// companyByEquipment lets the mock resolve company scoping like the SQL
	// join would.
	companyByEquipment map[string]string
	failHistory        bool
}

func newMockMaintenanceRepo() *mockMaintenanceRepo {
	return &mockMaintenanceRepo{
		records:            make(map[string]domain.MaintenanceRecord),
		history:            make(map[string][]domain.HistoryEntry),
		companyByEquipment: make(map[string]string),
	}
}

func (m *mockMaintenanceRepo) CreateWithHistory(_ context.Context, rec domain.MaintenanceRecord, entry domain.HistoryEntry) error {
	if m.failHistory {
		// Atomic: neither the record nor the entry survives.
		return errHistoryBoom
	}
	m.records[rec.ID] = rec
	m.history[rec.ID] = append(m.history[rec.ID], entry)
	return nil
}

func (m *mockMaintenanceRepo) GetByID(_ context.Context, id string) (domain.MaintenanceRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return domain.MaintenanceRecord{}, domain.ErrMaintenanceNotFound
	}
	return rec, nil
}

func (m *mockMaintenanceRepo) matches(rec domain.MaintenanceRecord, f domain.MaintenanceFilter) bool {
	if f.Status != nil && rec.Status != *f.Status {
		return false
	}
	if f.Type != nil && rec.Type != *f.Type {
		return false
	}
	if f.TechnicianID != "" && rec.TechnicianID != f.TechnicianID {
		return false
	}
	if f.EquipmentID != "" && rec.EquipmentID != f.EquipmentID {
		return false
	}
	if f.CompanyID != "" && m.companyByEquipment[rec.EquipmentID] != f.CompanyID {
		return false
	}
	return true
}

func (m *mockMaintenanceRepo) List(_ context.Context, f domain.MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	var out []domain.MaintenanceRecord
	for _, rec := range m.records {
		if m.matches(rec, f) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockMaintenanceRepo) Count(ctx context.Context, f domain.MaintenanceFilter) (int, error) {
	recs, err := m.List(ctx, f)
	return len(recs), err
}

func (m *mockMaintenanceRepo) CountByStatus(ctx context.Context, f domain.MaintenanceFilter) (map[domain.MaintenanceStatus]int, error) {
	recs, err := m.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.MaintenanceStatus]int)
	for _, rec := range recs {
		out[rec.Status]++
	}
	return out, nil
}

func (m *mockMaintenanceRepo) CountByType(ctx context.Context, f domain.MaintenanceFilter) (map[domain.MaintenanceType]int, error) {
	recs, err := m.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.MaintenanceType]int)
	for _, rec := range recs {
		out[rec.Type]++
	}
	return out, nil
}

func (m *mockMaintenanceRepo) CountCompletedBetween(ctx context.Context, f domain.MaintenanceFilter, from, to time.Time) (int, error) {
	recs, err := m.List(ctx, f)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range recs {
		if rec.Status != domain.MaintenanceCompletado || rec.PerformedDate == nil {
			continue
		}
		if rec.PerformedDate.Before(from) {
			continue
		}
		if !to.IsZero() && !rec.PerformedDate.Before(to) {
			continue
		}
		n++
	}
	return n, nil
}

func (m *mockMaintenanceRepo) CountPendingCreatedBefore(ctx context.Context, f domain.MaintenanceFilter, before time.Time) (int, error) {
	recs, err := m.List(ctx, f)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range recs {
		if rec.Status.Terminal() {
			continue
		}
		if rec.CreatedAt.Before(before) {
			n++
		}
	}
	return n, nil
}

func (m *mockMaintenanceRepo) ListUpcoming(ctx context.Context, f domain.MaintenanceFilter, limit int) ([]domain.MaintenanceRecord, error) {
	recs, err := m.List(ctx, f)
	if err != nil {
		return nil, err
	}
	var out []domain.MaintenanceRecord
	for _, rec := range recs {
		if !rec.Status.Terminal() {
			out = append(out, rec)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockMaintenanceRepo) MonthlyCounts(ctx context.Context, f domain.MaintenanceFilter, since time.Time) ([]domain.MonthlyCount, error) {
	recs, err := m.List(ctx, f)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]map[domain.MaintenanceType]int)
	for _, rec := range recs {
		if rec.ScheduledDate.Before(since) {
			continue
		}
		month := rec.ScheduledDate.Format("2006-01")
		if counts[month] == nil {
			counts[month] = make(map[domain.MaintenanceType]int)
		}
		counts[month][rec.Type]++
	}
	var out []domain.MonthlyCount
	for month, byType := range counts {
		for typ, n := range byType {
			out = append(out, domain.MonthlyCount{Month: month, Type: typ, Count: n})
		}
	}
	return out, nil
}

func (m *mockMaintenanceRepo) SetStatus(_ context.Context, id string, version int, status domain.MaintenanceStatus, performedDate *time.Time, notes *string) (domain.MaintenanceRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return domain.MaintenanceRecord{}, domain.ErrMaintenanceNotFound
	}
	if rec.Version != version {
		return domain.MaintenanceRecord{}, &domain.ConflictError{Entity: "mantenimiento", ID: id}
	}
	rec.Status = status
	if performedDate != nil {
		rec.PerformedDate = performedDate
	}
	if notes != nil {
		rec.Notes = notes
	}
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()
	m.records[id] = rec
	return rec, nil
}

func (m *mockMaintenanceRepo) SetReportURL(_ context.Context, id, url string) (domain.MaintenanceRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return domain.MaintenanceRecord{}, domain.ErrMaintenanceNotFound
	}
	rec.ReportURL = &url
	m.records[id] = rec
	return rec, nil
}

func (m *mockMaintenanceRepo) HistoryForRecord(_ context.Context, recordID string) ([]domain.HistoryEntry, error) {
	return m.history[recordID], nil
}

type publishedRequestEvent struct {
	event domain.RequestEvent
	req   domain.ServiceRequest
}

type publishedMaintenanceEvent struct {
	event domain.MaintenanceEvent
	rec   domain.MaintenanceRecord
}

type mockPublisher struct {
	requestEvents     []publishedRequestEvent
	maintenanceEvents []publishedMaintenanceEvent
}

func (m *mockPublisher) PublishRequest(_ context.Context, e domain.RequestEvent, req domain.ServiceRequest) error {
	m.requestEvents = append(m.requestEvents, publishedRequestEvent{event: e, req: req})
	return nil
}

func (m *mockPublisher) PublishMaintenance(_ context.Context, e domain.MaintenanceEvent, rec domain.MaintenanceRecord) error {
	m.maintenanceEvents = append(m.maintenanceEvents, publishedMaintenanceEvent{event: e, rec: rec})
	return nil
}

// Table-walking validators; the FSM adapter has its own tests.

type requestValidator struct{}

func (requestValidator) Apply(_ context.Context, current domain.RequestStatus, event domain.RequestEvent) (domain.RequestStatus, error) {
	for _, tr := range domain.RequestTransitions {
		if tr.Event == event && tr.Src == current {
			return tr.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: string(event), Current: string(current)}
}

type maintenanceValidator struct{}

func (maintenanceValidator) Apply(_ context.Context, current domain.MaintenanceStatus, event domain.MaintenanceEvent) (domain.MaintenanceStatus, error) {
	for _, tr := range domain.MaintenanceTransitions {
		if tr.Event == event && tr.Src == current {
			return tr.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: string(event), Current: string(current)}
}
