package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/neomorfeo/fleetcare/internal/app"
	"github.com/neomorfeo/fleetcare/internal/domain"
)

func TestPercentChange(t *testing.T) {
	cases := []struct {
		prior, current, want int
	}{
		{0, 5, 100},
		{0, 0, 0},
		{20, 25, 25},
		{10, 5, -50},
		{3, 4, 33},
		{4, 4, 0},
	}

	for _, tc := range cases {
		if got := app.PercentChange(tc.prior, tc.current); got != tc.want {
			t.Errorf("PercentChange(%d, %d) = %d, want %d", tc.prior, tc.current, got, tc.want)
		}
	}
}

func statsFixture() (*app.StatsService, *mockMaintenanceRepo, *mockEquipmentRepo, *mockRequestRepo) {
	requests := newMockRequestRepo()
	records := newMockMaintenanceRepo()
	equipment := newMockEquipmentRepo()
	return app.NewStatsService(requests, records, equipment), records, equipment, requests
}

func TestDashboard_Rollups(t *testing.T) {
	svc, records, equipment, requests := statsFixture()
	ctx := context.Background()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	equipment.items["eq-1"] = domain.Equipment{ID: "eq-1", CompanyID: "co-x", Status: domain.EquipmentActivo}
	equipment.items["eq-2"] = domain.Equipment{ID: "eq-2", CompanyID: "co-x", Status: domain.EquipmentEnMantenimiento}
	equipment.items["eq-3"] = domain.Equipment{ID: "eq-3", CompanyID: "co-x", Status: domain.EquipmentDadoDeBaja}

	// One completed this month, one completed last month, one scheduled.
	thisMonth := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	done := domain.NewMaintenanceRecord("m-1", "eq-1", "t-1", domain.TipoCorrectivo, thisMonth, "done now", nil)
	done.Status = domain.MaintenanceCompletado
	done.PerformedDate = &thisMonth
	records.records["m-1"] = done

	donePrev := domain.NewMaintenanceRecord("m-2", "eq-1", "t-1", domain.TipoPreventivo, lastMonth, "done before", nil)
	donePrev.Status = domain.MaintenanceCompletado
	donePrev.PerformedDate = &lastMonth
	records.records["m-2"] = donePrev

	pending := domain.NewMaintenanceRecord("m-3", "eq-2", "t-1", domain.TipoPreventivo, thisMonth.AddDate(0, 1, 0), "upcoming", nil)
	records.records["m-3"] = pending

	req := domain.NewServiceRequest("r-1", "eq-1", "c-1", "Screen flickers constantly", domain.PrioridadAlta)
	_ = requests.Create(ctx, req)

	stats, err := svc.Dashboard(ctx, adminP, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalEquipment != 3 {
		t.Errorf("TotalEquipment = %d, want 3", stats.TotalEquipment)
	}
	if stats.CriticalEquipment != 2 {
		t.Errorf("CriticalEquipment = %d, want 2", stats.CriticalEquipment)
	}
	if stats.TotalMaintenance != 3 {
		t.Errorf("TotalMaintenance = %d, want 3", stats.TotalMaintenance)
	}
	if stats.CompletedThisMonth != 1 {
		t.Errorf("CompletedThisMonth = %d, want 1", stats.CompletedThisMonth)
	}
	if stats.CompletedChange != 0 {
		t.Errorf("CompletedChange = %d, want 0 (1 vs 1)", stats.CompletedChange)
	}
	if stats.PendingMaintenance != 1 {
		t.Errorf("PendingMaintenance = %d, want 1", stats.PendingMaintenance)
	}
	if stats.MaintenanceByType[domain.TipoPreventivo] != 2 {
		t.Errorf("PREVENTIVO count = %d, want 2", stats.MaintenanceByType[domain.TipoPreventivo])
	}
	if stats.RequestsByStatus[domain.RequestPendiente] != 1 {
		t.Errorf("PENDIENTE requests = %d, want 1", stats.RequestsByStatus[domain.RequestPendiente])
	}
	if len(stats.Upcoming) != 1 || stats.Upcoming[0].ID != "m-3" {
		t.Errorf("Upcoming = %+v, want only m-3", stats.Upcoming)
	}
}

func TestDashboard_TechnicianScope(t *testing.T) {
	svc, records, _, _ := statsFixture()
	ctx := context.Background()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	mine := domain.NewMaintenanceRecord("m-1", "eq-1", tecnicoP.ID, domain.TipoPreventivo, now, "mine", nil)
	records.records["m-1"] = mine
	theirs := domain.NewMaintenanceRecord("m-2", "eq-1", "t-9", domain.TipoPreventivo, now, "theirs", nil)
	records.records["m-2"] = theirs

	stats, err := svc.Dashboard(ctx, tecnicoP, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalMaintenance != 1 {
		t.Errorf("technician sees %d records, want 1", stats.TotalMaintenance)
	}
	// Technicians have no view into the request workflow.
	if len(stats.RequestsByStatus) != 0 {
		t.Errorf("RequestsByStatus should be empty for technicians, got %+v", stats.RequestsByStatus)
	}
}
