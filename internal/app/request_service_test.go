package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neomorfeo/fleetcare/internal/app"
	"github.com/neomorfeo/fleetcare/internal/domain"
)

var (
	adminP   = domain.Principal{ID: "a-1", Role: domain.RoleAdmin}
	tecnicoP = domain.Principal{ID: "t-1", Role: domain.RoleTecnico, CompanyID: "co-x"}
	clienteP = domain.Principal{ID: "c-1", Role: domain.RoleCliente, CompanyID: "co-x"}
	otherP   = domain.Principal{ID: "c-2", Role: domain.RoleCliente, CompanyID: "co-y"}
)

type requestFixture struct {
	svc       *app.RequestService
	requests  *mockRequestRepo
	equipment *mockEquipmentRepo
	publisher *mockPublisher
}

func newRequestFixture() *requestFixture {
	requests := newMockRequestRepo()
	equipment := newMockEquipmentRepo()
	publisher := &mockPublisher{}

	equipment.items["eq-1"] = domain.NewEquipment("eq-1", "Impresora", "HP", "SN-1", "co-x", nil)
	equipment.items["eq-2"] = domain.NewEquipment("eq-2", "Servidor", "Dell", "SN-2", "co-y", nil)

	return &requestFixture{
		svc:       app.NewRequestService(requests, equipment, publisher, requestValidator{}),
		requests:  requests,
		equipment: equipment,
		publisher: publisher,
	}
}

func TestSubmit_Success(t *testing.T) {
	fx := newRequestFixture()

	req, err := fx.svc.Submit(context.Background(), clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Status != domain.RequestPendiente {
		t.Errorf("Status = %q, want %q", req.Status, domain.RequestPendiente)
	}
	if req.ClientID != clienteP.ID {
		t.Errorf("ClientID = %q, want %q", req.ClientID, clienteP.ID)
	}
	if len(req.ID) == 0 {
		t.Error("ID should not be empty")
	}

	if _, err := fx.requests.GetByID(context.Background(), req.ID); err != nil {
		t.Fatalf("request not persisted: %v", err)
	}

	if len(fx.publisher.requestEvents) != 1 || fx.publisher.requestEvents[0].event != domain.EventSubmit {
		t.Errorf("expected one submit event, got %+v", fx.publisher.requestEvents)
	}
}

func TestSubmit_Validation(t *testing.T) {
	fx := newRequestFixture()

	cases := []struct {
		name        string
		description string
		priority    domain.Priority
	}{
		{"short description", "too short", domain.PrioridadAlta},
		{"unknown priority", "a perfectly valid description", "CRITICA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Submit(context.Background(), clienteP, "eq-1", tc.description, tc.priority)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(fx.requests.requests) != 0 {
				t.Error("no record may exist after a validation failure")
			}
		})
	}
}

func TestSubmit_RoleAndTenancy(t *testing.T) {
	fx := newRequestFixture()
	var fErr *domain.ForbiddenError

	// Only clients submit.
	if _, err := fx.svc.Submit(context.Background(), adminP, "eq-1", "a valid description", domain.PrioridadBaja); !errors.As(err, &fErr) {
		t.Errorf("admin submit: expected ForbiddenError, got %v", err)
	}
	if _, err := fx.svc.Submit(context.Background(), tecnicoP, "eq-1", "a valid description", domain.PrioridadBaja); !errors.As(err, &fErr) {
		t.Errorf("technician submit: expected ForbiddenError, got %v", err)
	}

	// Equipment of another company.
	if _, err := fx.svc.Submit(context.Background(), clienteP, "eq-2", "a valid description", domain.PrioridadBaja); !errors.As(err, &fErr) {
		t.Errorf("cross-company equipment: expected ForbiddenError, got %v", err)
	}

	// Missing equipment.
	if _, err := fx.svc.Submit(context.Background(), clienteP, "eq-404", "a valid description", domain.PrioridadBaja); !errors.Is(err, domain.ErrEquipmentNotFound) {
		t.Errorf("expected ErrEquipmentNotFound, got %v", err)
	}
}

func TestReview_HappyPath(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	req, _ := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)

	req, err := fx.svc.Review(ctx, adminP, req.ID, domain.RequestEnRevision, nil)
	if err != nil {
		t.Fatalf("start review failed: %v", err)
	}
	if req.Status != domain.RequestEnRevision {
		t.Errorf("Status = %q, want %q", req.Status, domain.RequestEnRevision)
	}

	response := "Scheduled for Tuesday"
	req, err = fx.svc.Review(ctx, adminP, req.ID, domain.RequestAprobada, &response)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if req.Status != domain.RequestAprobada {
		t.Errorf("Status = %q, want %q", req.Status, domain.RequestAprobada)
	}
	if req.Response == nil || *req.Response != response {
		t.Errorf("Response = %v, want %q", req.Response, response)
	}
}

func TestReview_TerminalIsImmutable(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	req, _ := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)
	if _, err := fx.svc.Review(ctx, adminP, req.ID, domain.RequestAprobada, nil); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// Second approval must fail, not silently succeed.
	_, err := fx.svc.Review(ctx, adminP, req.ID, domain.RequestAprobada, nil)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Current != string(domain.RequestAprobada) {
		t.Errorf("current = %q, want %q", trErr.Current, domain.RequestAprobada)
	}

	stored, _ := fx.requests.GetByID(ctx, req.ID)
	if stored.Status != domain.RequestAprobada {
		t.Errorf("state changed on failed transition: %q", stored.Status)
	}
}

func TestReview_ConcurrentReviewerConflicts(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	req, _ := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)

	// Two reviewers read the same version; the second write must lose on the
	// compare-and-swap instead of silently overwriting the first outcome.
	if _, err := fx.requests.UpdateStatus(ctx, req.ID, req.Version, domain.RequestAprobada, nil); err != nil {
		t.Fatalf("first writer must win: %v", err)
	}
	_, err := fx.requests.UpdateStatus(ctx, req.ID, req.Version, domain.RequestRechazada, nil)
	var cErr *domain.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError for stale version, got %v", err)
	}
}

func TestReview_Forbidden(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	req, _ := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)

	var fErr *domain.ForbiddenError
	if _, err := fx.svc.Review(ctx, clienteP, req.ID, domain.RequestAprobada, nil); !errors.As(err, &fErr) {
		t.Errorf("client review: expected ForbiddenError, got %v", err)
	}
	if _, err := fx.svc.Review(ctx, tecnicoP, req.ID, domain.RequestAprobada, nil); !errors.As(err, &fErr) {
		t.Errorf("technician review: expected ForbiddenError, got %v", err)
	}
}

func TestCancel_OwnerWhilePending(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	req, _ := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)

	req, err := fx.svc.Cancel(ctx, clienteP, req.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if req.Status != domain.RequestRechazada {
		t.Errorf("Status = %q, want %q", req.Status, domain.RequestRechazada)
	}
	if req.Response == nil || *req.Response != domain.ClientCancellationNote {
		t.Errorf("Response = %v, want %q", req.Response, domain.ClientCancellationNote)
	}
}

func TestCancel_NotPendingFails(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	req, _ := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)
	if _, err := fx.svc.Review(ctx, adminP, req.ID, domain.RequestEnRevision, nil); err != nil {
		t.Fatalf("start review failed: %v", err)
	}

	_, err := fx.svc.Cancel(ctx, clienteP, req.ID)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
}

func TestCancel_CrossTenantForbidden(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	req, _ := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)

	_, err := fx.svc.Cancel(ctx, otherP, req.ID)
	var fErr *domain.ForbiddenError
	if !errors.As(err, &fErr) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}

	stored, _ := fx.requests.GetByID(ctx, req.ID)
	if stored.Status != domain.RequestPendiente {
		t.Errorf("state changed on forbidden cancel: %q", stored.Status)
	}
}

func TestGet_CrossTenantHidden(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	req, _ := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)

	// Another company's client gets not-found, not forbidden: existence is
	// never disclosed on reads.
	if _, err := fx.svc.Get(ctx, otherP, req.ID); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}

	// Technicians are shut out of the workflow entirely.
	var fErr *domain.ForbiddenError
	if _, err := fx.svc.Get(ctx, tecnicoP, req.ID); !errors.As(err, &fErr) {
		t.Errorf("expected ForbiddenError for technician, got %v", err)
	}
}

func TestList_ScopedToClient(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	if _, err := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := fx.svc.Submit(ctx, otherP, "eq-2", "No enciende el servidor", domain.PrioridadAlta); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	page, err := fx.svc.List(ctx, clienteP, domain.RequestFilter{}, domain.NewPage(1, 10))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 1 || len(page.Data) != 1 {
		t.Fatalf("client sees %d requests, want 1", page.Total)
	}
	if page.Data[0].ClientID != clienteP.ID {
		t.Errorf("leaked request of client %q", page.Data[0].ClientID)
	}

	adminPage, err := fx.svc.List(ctx, adminP, domain.RequestFilter{}, domain.NewPage(1, 10))
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if adminPage.Total != 2 {
		t.Errorf("admin sees %d requests, want 2", adminPage.Total)
	}

	var fErr *domain.ForbiddenError
	if _, err := fx.svc.List(ctx, tecnicoP, domain.RequestFilter{}, domain.NewPage(1, 10)); !errors.As(err, &fErr) {
		t.Errorf("technician list: expected ForbiddenError, got %v", err)
	}
}

func TestDelete_AdminOnly(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	req, _ := fx.svc.Submit(ctx, clienteP, "eq-1", "Screen flickers constantly", domain.PrioridadUrgente)

	var fErr *domain.ForbiddenError
	if err := fx.svc.Delete(ctx, clienteP, req.ID); !errors.As(err, &fErr) {
		t.Errorf("client delete: expected ForbiddenError, got %v", err)
	}

	if err := fx.svc.Delete(ctx, adminP, req.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if err := fx.svc.Delete(ctx, adminP, req.ID); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("second delete: expected ErrRequestNotFound, got %v", err)
	}
}
