package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// DashboardStats is the tenancy-scoped rollup behind the dashboard and its
// metric cards. All values derive from one snapshot of the underlying records.
type DashboardStats struct {
	TotalEquipment      int
	EquipmentByStatus   map[domain.EquipmentStatus]int
	CriticalEquipment   int
	TotalMaintenance    int
	MaintenanceByStatus map[domain.MaintenanceStatus]int
	MaintenanceByType   map[domain.MaintenanceType]int
	RequestsByStatus    map[domain.RequestStatus]int
	CompletedThisMonth  int
	CompletedChange     int
	PendingMaintenance  int
	PendingChange       int
	Upcoming            []domain.MaintenanceRecord
	MonthlySeries       []domain.MonthlyCount
}

// StatsService computes read-only dashboard rollups. It never mutates state.
type StatsService struct {
	requests  domain.ServiceRequestRepository
	records   domain.MaintenanceRepository
	equipment domain.EquipmentRepository
}

// NewStatsService creates a service with the given adapters.
func NewStatsService(requests domain.ServiceRequestRepository, records domain.MaintenanceRepository, equipment domain.EquipmentRepository) *StatsService {
	return &StatsService{
		requests:  requests,
		records:   records,
		equipment: equipment,
	}
}

// Dashboard computes the stats visible to the principal at the given instant.
// The caller supplies now so the computation is deterministic for a snapshot.
func (s *StatsService) Dashboard(ctx context.Context, p domain.Principal, now time.Time) (DashboardStats, error) {
	eqFilter := domain.NarrowEquipmentFilter(p, domain.EquipmentFilter{})
	mFilter := domain.NarrowMaintenanceFilter(p, domain.MaintenanceFilter{})

	var stats DashboardStats
	var err error

	if stats.TotalEquipment, err = s.equipment.Count(ctx, eqFilter); err != nil {
		return DashboardStats{}, fmt.Errorf("counting equipment: %w", err)
	}
	if stats.EquipmentByStatus, err = s.equipment.CountByStatus(ctx, eqFilter); err != nil {
		return DashboardStats{}, fmt.Errorf("counting equipment by status: %w", err)
	}
	stats.CriticalEquipment = stats.EquipmentByStatus[domain.EquipmentEnMantenimiento] +
		stats.EquipmentByStatus[domain.EquipmentDadoDeBaja]

	if stats.TotalMaintenance, err = s.records.Count(ctx, mFilter); err != nil {
		return DashboardStats{}, fmt.Errorf("counting maintenance: %w", err)
	}
	if stats.MaintenanceByStatus, err = s.records.CountByStatus(ctx, mFilter); err != nil {
		return DashboardStats{}, fmt.Errorf("counting maintenance by status: %w", err)
	}
	if stats.MaintenanceByType, err = s.records.CountByType(ctx, mFilter); err != nil {
		return DashboardStats{}, fmt.Errorf("counting maintenance by type: %w", err)
	}

	// Requests are invisible to technicians; leave the map empty for them.
	if domain.CanListRequests(p) {
		rFilter := domain.NarrowRequestFilter(p, domain.RequestFilter{})
		if stats.RequestsByStatus, err = s.requests.CountByStatus(ctx, rFilter); err != nil {
			return DashboardStats{}, fmt.Errorf("counting requests by status: %w", err)
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	if stats.CompletedThisMonth, err = s.records.CountCompletedBetween(ctx, mFilter, monthStart, time.Time{}); err != nil {
		return DashboardStats{}, fmt.Errorf("counting completed this month: %w", err)
	}
	completedPrev, err := s.records.CountCompletedBetween(ctx, mFilter, prevMonthStart, monthStart)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("counting completed last month: %w", err)
	}
	stats.CompletedChange = PercentChange(completedPrev, stats.CompletedThisMonth)

	stats.PendingMaintenance = stats.MaintenanceByStatus[domain.MaintenanceProgramado] +
		stats.MaintenanceByStatus[domain.MaintenanceEnProceso]
	pendingPrev, err := s.records.CountPendingCreatedBefore(ctx, mFilter, monthStart)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("counting pending last month: %w", err)
	}
	stats.PendingChange = PercentChange(pendingPrev, stats.PendingMaintenance)

	if stats.Upcoming, err = s.records.ListUpcoming(ctx, mFilter, 10); err != nil {
		return DashboardStats{}, fmt.Errorf("listing upcoming maintenance: %w", err)
	}

	if stats.MonthlySeries, err = s.records.MonthlyCounts(ctx, mFilter, now.AddDate(0, -6, 0)); err != nil {
		return DashboardStats{}, fmt.Errorf("listing monthly series: %w", err)
	}

	return stats, nil
}

// PercentChange is the month-over-month delta, rounded to the nearest whole
// percent. With a zero prior period it reports 100 when anything happened
// this period and 0 otherwise.
func PercentChange(prior, current int) int {
	if prior > 0 {
		return int(math.Round(float64(current-prior) / float64(prior) * 100))
	}
	if current > 0 {
		return 100
	}
	return 0
}
