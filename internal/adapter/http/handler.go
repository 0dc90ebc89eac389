package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/fleetcare/internal/app"
	"github.com/neomorfeo/fleetcare/internal/domain"
)

const wireTimeFormat = "2006-01-02T15:04:05Z"

// Services bundles the application services the API depends on.
type Services struct {
	Requests    *app.RequestService
	Maintenance *app.MaintenanceService
	Equipment   *app.EquipmentService
	Stats       *app.StatsService
}

// PagedResponse is the wire envelope for paginated listings.
type PagedResponse[T any] struct {
	Data       []T `json:"data" doc:"Page of results"`
	Total      int `json:"total" doc:"Total matching rows"`
	Page       int `json:"page" doc:"Current page number (1-based)"`
	Limit      int `json:"limit" doc:"Page size"`
	TotalPages int `json:"totalPages" doc:"Total number of pages"`
}

func toPagedResponse[D, T any](p domain.Paged[D], conv func(D) T) PagedResponse[T] {
	data := make([]T, len(p.Data))
	for i, d := range p.Data {
		data[i] = conv(d)
	}
	return PagedResponse[T]{
		Data:       data,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

// RequestResponse is the API representation of a service request.
type RequestResponse struct {
	ID          string  `json:"id" doc:"Unique identifier"`
	EquipoID    string  `json:"equipoId" doc:"Equipment the problem was reported on"`
	ClienteID   string  `json:"clienteId" doc:"Submitting client"`
	Descripcion string  `json:"descripcion" doc:"Problem description"`
	Prioridad   string  `json:"prioridad" doc:"Priority"`
	Estado      string  `json:"estado" doc:"Lifecycle state"`
	Respuesta   *string `json:"respuesta,omitempty" doc:"Reviewer response"`
	CreatedAt   string  `json:"createdAt" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt   string  `json:"updatedAt" doc:"Last update timestamp (ISO 8601)"`
}

func toRequestResponse(r domain.ServiceRequest) RequestResponse {
	return RequestResponse{
		ID:          r.ID,
		EquipoID:    r.EquipmentID,
		ClienteID:   r.ClientID,
		Descripcion: r.Description,
		Prioridad:   string(r.Priority),
		Estado:      string(r.Status),
		Respuesta:   r.Response,
		CreatedAt:   r.CreatedAt.Format(wireTimeFormat),
		UpdatedAt:   r.UpdatedAt.Format(wireTimeFormat),
	}
}

// MaintenanceResponse is the API representation of a maintenance record.
type MaintenanceResponse struct {
	ID              string  `json:"id" doc:"Unique identifier"`
	EquipoID        string  `json:"equipoId" doc:"Equipment under maintenance"`
	TecnicoID       string  `json:"tecnicoId" doc:"Assigned technician"`
	Tipo            string  `json:"tipo" doc:"PREVENTIVO or CORRECTIVO"`
	Estado          string  `json:"estado" doc:"Lifecycle state"`
	FechaProgramada string  `json:"fechaProgramada" doc:"Scheduled date (ISO 8601)"`
	FechaRealizada  *string `json:"fechaRealizada,omitempty" doc:"Completion date (ISO 8601)"`
	Descripcion     string  `json:"descripcion" doc:"Work description"`
	Observaciones   *string `json:"observaciones,omitempty" doc:"Technician notes"`
	ReporteURL      *string `json:"reporteUrl,omitempty" doc:"Uploaded report reference"`
	CreatedAt       string  `json:"createdAt" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt       string  `json:"updatedAt" doc:"Last update timestamp (ISO 8601)"`
}

func toMaintenanceResponse(m domain.MaintenanceRecord) MaintenanceResponse {
	resp := MaintenanceResponse{
		ID:              m.ID,
		EquipoID:        m.EquipmentID,
		TecnicoID:       m.TechnicianID,
		Tipo:            string(m.Type),
		Estado:          string(m.Status),
		FechaProgramada: m.ScheduledDate.Format(wireTimeFormat),
		Descripcion:     m.Description,
		Observaciones:   m.Notes,
		ReporteURL:      m.ReportURL,
		CreatedAt:       m.CreatedAt.Format(wireTimeFormat),
		UpdatedAt:       m.UpdatedAt.Format(wireTimeFormat),
	}
	if m.PerformedDate != nil {
		s := m.PerformedDate.Format(wireTimeFormat)
		resp.FechaRealizada = &s
	}
	return resp
}

// HistoryResponse is the API representation of an audit entry.
type HistoryResponse struct {
	ID              string `json:"id" doc:"Unique identifier"`
	EquipoID        string `json:"equipoId" doc:"Equipment the entry refers to"`
	MantenimientoID string `json:"mantenimientoId" doc:"Owning maintenance record"`
	TecnicoID       string `json:"tecnicoId" doc:"Assigned technician"`
	Notas           string `json:"notas" doc:"Audit note"`
	CreatedAt       string `json:"createdAt" doc:"Creation timestamp (ISO 8601)"`
}

func toHistoryResponse(h domain.HistoryEntry) HistoryResponse {
	return HistoryResponse{
		ID:              h.ID,
		EquipoID:        h.EquipmentID,
		MantenimientoID: h.MaintenanceRecordID,
		TecnicoID:       h.TechnicianID,
		Notas:           h.Notes,
		CreatedAt:       h.CreatedAt.Format(wireTimeFormat),
	}
}

// EquipmentResponse is the API representation of a piece of equipment.
type EquipmentResponse struct {
	ID          string  `json:"id" doc:"Unique identifier"`
	Tipo        string  `json:"tipo" doc:"Equipment category"`
	Marca       string  `json:"marca" doc:"Manufacturer"`
	Modelo      *string `json:"modelo,omitempty" doc:"Model"`
	NumeroSerie string  `json:"numeroSerie" doc:"Serial number"`
	EmpresaID   string  `json:"empresaId" doc:"Owning company"`
	Estado      string  `json:"estado" doc:"Operational state"`
	CreatedAt   string  `json:"createdAt" doc:"Creation timestamp (ISO 8601)"`
}

func toEquipmentResponse(e domain.Equipment) EquipmentResponse {
	return EquipmentResponse{
		ID:          e.ID,
		Tipo:        e.Type,
		Marca:       e.Brand,
		Modelo:      e.Model,
		NumeroSerie: e.Serial,
		EmpresaID:   e.CompanyID,
		Estado:      string(e.Status),
		CreatedAt:   e.CreatedAt.Format(wireTimeFormat),
	}
}

// --- Service requests ---

type CreateRequestInput struct {
	Body struct {
		EquipoID    string `json:"equipoId" minLength:"1" doc:"Equipment to report on"`
		Descripcion string `json:"descripcion" minLength:"10" maxLength:"1000" doc:"Problem description"`
		Prioridad   string `json:"prioridad" enum:"BAJA,MEDIA,ALTA,URGENTE" doc:"Priority"`
	}
}

type CreateRequestOutput struct {
	Status int
	Body   RequestResponse
}

type GetRequestInput struct {
	ID string `path:"id" doc:"Request ID"`
}

type GetRequestOutput struct {
	Body RequestResponse
}

type ListRequestsInput struct {
	Estado    string `query:"estado" required:"false" doc:"Filter by state"`
	Prioridad string `query:"prioridad" required:"false" doc:"Filter by priority"`
	Page      int    `query:"page" required:"false" default:"1" doc:"Page number (1-based)"`
	Limit     int    `query:"limit" required:"false" default:"10" maximum:"100" doc:"Page size"`
}

type ListRequestsOutput struct {
	Body PagedResponse[RequestResponse]
}

type UpdateRequestInput struct {
	ID   string `path:"id" doc:"Request ID"`
	Body struct {
		Estado    string  `json:"estado" enum:"EN_REVISION,APROBADA,RECHAZADA" doc:"Target state"`
		Respuesta *string `json:"respuesta,omitempty" maxLength:"1000" doc:"Reviewer response"`
	}
}

type UpdateRequestOutput struct {
	Body RequestResponse
}

type DeleteRequestInput struct {
	ID string `path:"id" doc:"Request ID"`
}

type DeleteRequestOutput struct {
	Status int
}

type DeriveMaintenanceInput struct {
	ID   string `path:"id" doc:"Approved request ID"`
	Body struct {
		TecnicoID       string    `json:"tecnicoId" minLength:"1" doc:"Technician to assign"`
		FechaProgramada time.Time `json:"fechaProgramada" doc:"Scheduled date"`
	}
}

type DeriveMaintenanceOutput struct {
	Status int
	Body   MaintenanceResponse
}

// --- Maintenance ---

type CreateMaintenanceInput struct {
	Body struct {
		EquipoID        string    `json:"equipoId" minLength:"1" doc:"Equipment to work on"`
		TecnicoID       string    `json:"tecnicoId" minLength:"1" doc:"Technician to assign"`
		Tipo            string    `json:"tipo" enum:"PREVENTIVO,CORRECTIVO" doc:"Kind of work"`
		FechaProgramada time.Time `json:"fechaProgramada" doc:"Scheduled date"`
		Descripcion     string    `json:"descripcion" minLength:"1" maxLength:"1000" doc:"Work description"`
		Observaciones   *string   `json:"observaciones,omitempty" maxLength:"1000" doc:"Notes"`
	}
}

type CreateMaintenanceOutput struct {
	Status int
	Body   MaintenanceResponse
}

type GetMaintenanceInput struct {
	ID string `path:"id" doc:"Maintenance record ID"`
}

type GetMaintenanceOutput struct {
	Body MaintenanceResponse
}

type ListMaintenanceInput struct {
	Estado    string `query:"estado" required:"false" doc:"Filter by state"`
	Tipo      string `query:"tipo" required:"false" doc:"Filter by type"`
	TecnicoID string `query:"tecnicoId" required:"false" doc:"Filter by technician"`
	EquipoID  string `query:"equipoId" required:"false" doc:"Filter by equipment"`
	EmpresaID string `query:"empresaId" required:"false" doc:"Filter by company (admin only)"`
	Page      int    `query:"page" required:"false" default:"1" doc:"Page number (1-based)"`
	Limit     int    `query:"limit" required:"false" default:"10" maximum:"100" doc:"Page size"`
}

type ListMaintenanceOutput struct {
	Body PagedResponse[MaintenanceResponse]
}

type ChangeMaintenanceStatusInput struct {
	ID   string `path:"id" doc:"Maintenance record ID"`
	Body struct {
		Estado        string  `json:"estado" enum:"EN_PROCESO,COMPLETADO,CANCELADO" doc:"Target state"`
		Observaciones *string `json:"observaciones,omitempty" maxLength:"1000" doc:"Notes"`
	}
}

type ChangeMaintenanceStatusOutput struct {
	Body MaintenanceResponse
}

type MaintenanceHistoryInput struct {
	ID string `path:"id" doc:"Maintenance record ID"`
}

type MaintenanceHistoryOutput struct {
	Body []HistoryResponse
}

// --- Equipment ---

type CreateEquipmentInput struct {
	Body struct {
		Tipo        string  `json:"tipo" minLength:"1" doc:"Equipment category"`
		Marca       string  `json:"marca" minLength:"1" doc:"Manufacturer"`
		Modelo      *string `json:"modelo,omitempty" doc:"Model"`
		NumeroSerie string  `json:"numeroSerie" minLength:"1" doc:"Serial number"`
		EmpresaID   string  `json:"empresaId" minLength:"1" doc:"Owning company"`
	}
}

type CreateEquipmentOutput struct {
	Status int
	Body   EquipmentResponse
}

type GetEquipmentInput struct {
	ID string `path:"id" doc:"Equipment ID"`
}

type GetEquipmentOutput struct {
	Body EquipmentResponse
}

type ListEquipmentInput struct {
	Estado    string `query:"estado" required:"false" doc:"Filter by state"`
	EmpresaID string `query:"empresaId" required:"false" doc:"Filter by company (admin only)"`
	Page      int    `query:"page" required:"false" default:"1" doc:"Page number (1-based)"`
	Limit     int    `query:"limit" required:"false" default:"10" maximum:"100" doc:"Page size"`
}

type ListEquipmentOutput struct {
	Body PagedResponse[EquipmentResponse]
}

// --- Dashboard ---

type DashboardInput struct{}

type MonthlyCountResponse struct {
	Mes      string `json:"mes" doc:"Month (YYYY-MM)"`
	Tipo     string `json:"tipo" doc:"Maintenance type"`
	Cantidad int    `json:"cantidad" doc:"Records scheduled that month"`
}

type DashboardOutput struct {
	Body struct {
		TotalEquipos           int                    `json:"totalEquipos" doc:"Equipment in scope"`
		EquiposPorEstado       map[string]int         `json:"equiposPorEstado" doc:"Equipment grouped by state"`
		EquiposCriticos        int                    `json:"equiposCriticos" doc:"Equipment under maintenance or retired"`
		TotalMantenimientos    int                    `json:"totalMantenimientos" doc:"Maintenance records in scope"`
		MantenimientosEstado   map[string]int         `json:"mantenimientosPorEstado" doc:"Records grouped by state"`
		MantenimientosTipo     map[string]int         `json:"mantenimientosPorTipo" doc:"Records grouped by type"`
		SolicitudesPorEstado   map[string]int         `json:"solicitudesPorEstado,omitempty" doc:"Requests grouped by state (hidden for technicians)"`
		CompletadosEsteMes     int                    `json:"completadosEsteMes" doc:"Records completed this month"`
		CompletadosCambio      int                    `json:"completadosCambio" doc:"Month-over-month change, percent"`
		MantenimientosPendient int                    `json:"mantenimientosPendientes" doc:"Scheduled plus in-progress records"`
		PendientesCambio       int                    `json:"pendientesCambio" doc:"Month-over-month change, percent"`
		ProximosMantenimientos []MaintenanceResponse  `json:"proximosMantenimientos" doc:"Next scheduled work, soonest first"`
		SeriesMensuales        []MonthlyCountResponse `json:"seriesMensuales" doc:"Six-month scheduling series"`
	}
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, svcs Services) {
	registerRequestRoutes(api, svcs)
	registerMaintenanceRoutes(api, svcs)
	registerEquipmentRoutes(api, svcs)
	registerDashboardRoutes(api, svcs)
}

func registerRequestRoutes(api huma.API, svcs Services) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-request",
		Method:        http.MethodPost,
		Path:          "/api/v1/solicitudes",
		Summary:       "Submit a service request",
		Tags:          []string{"Solicitudes"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateRequestInput) (*CreateRequestOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		req, err := svcs.Requests.Submit(ctx, p, input.Body.EquipoID, input.Body.Descripcion, domain.Priority(input.Body.Prioridad))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateRequestOutput{Status: http.StatusCreated, Body: toRequestResponse(req)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-request",
		Method:      http.MethodGet,
		Path:        "/api/v1/solicitudes/{id}",
		Summary:     "Get a service request by ID",
		Tags:        []string{"Solicitudes"},
	}, func(ctx context.Context, input *GetRequestInput) (*GetRequestOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		req, err := svcs.Requests.Get(ctx, p, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetRequestOutput{Body: toRequestResponse(req)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-requests",
		Method:      http.MethodGet,
		Path:        "/api/v1/solicitudes",
		Summary:     "List service requests",
		Tags:        []string{"Solicitudes"},
	}, func(ctx context.Context, input *ListRequestsInput) (*ListRequestsOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		var filter domain.RequestFilter
		if input.Estado != "" {
			s := domain.RequestStatus(input.Estado)
			filter.Status = &s
		}
		if input.Prioridad != "" {
			pr := domain.Priority(input.Prioridad)
			filter.Priority = &pr
		}

		page, err := svcs.Requests.List(ctx, p, filter, domain.NewPage(input.Page, input.Limit))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListRequestsOutput{Body: toPagedResponse(page, toRequestResponse)}, nil
	})

	// Review and self-cancellation share the endpoint: admins move the request
	// through review, the owning client withdraws it.
	huma.Register(api, huma.Operation{
		OperationID: "update-request",
		Method:      http.MethodPut,
		Path:        "/api/v1/solicitudes/{id}",
		Summary:     "Review or cancel a service request",
		Tags:        []string{"Solicitudes"},
	}, func(ctx context.Context, input *UpdateRequestInput) (*UpdateRequestOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		var req domain.ServiceRequest
		if p.Role == domain.RoleCliente {
			req, err = svcs.Requests.Cancel(ctx, p, input.ID)
		} else {
			req, err = svcs.Requests.Review(ctx, p, input.ID, domain.RequestStatus(input.Body.Estado), input.Body.Respuesta)
		}
		if err != nil {
			return nil, toHumaError(err)
		}
		return &UpdateRequestOutput{Body: toRequestResponse(req)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-request",
		Method:        http.MethodDelete,
		Path:          "/api/v1/solicitudes/{id}",
		Summary:       "Delete a service request",
		Tags:          []string{"Solicitudes"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteRequestInput) (*DeleteRequestOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		if err := svcs.Requests.Delete(ctx, p, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteRequestOutput{Status: http.StatusNoContent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "derive-maintenance",
		Method:        http.MethodPost,
		Path:          "/api/v1/solicitudes/{id}/mantenimiento",
		Summary:       "Create maintenance from an approved request",
		Tags:          []string{"Solicitudes"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *DeriveMaintenanceInput) (*DeriveMaintenanceOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		rec, err := svcs.Maintenance.CreateFromRequest(ctx, p, input.ID, input.Body.TecnicoID, input.Body.FechaProgramada)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &DeriveMaintenanceOutput{Status: http.StatusCreated, Body: toMaintenanceResponse(rec)}, nil
	})
}

func registerMaintenanceRoutes(api huma.API, svcs Services) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-maintenance",
		Method:        http.MethodPost,
		Path:          "/api/v1/mantenimientos",
		Summary:       "Schedule maintenance",
		Tags:          []string{"Mantenimientos"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateMaintenanceInput) (*CreateMaintenanceOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		rec, err := svcs.Maintenance.Create(ctx, p, app.CreateMaintenanceInput{
			EquipmentID:   input.Body.EquipoID,
			TechnicianID:  input.Body.TecnicoID,
			Type:          domain.MaintenanceType(input.Body.Tipo),
			ScheduledDate: input.Body.FechaProgramada,
			Description:   input.Body.Descripcion,
			Notes:         input.Body.Observaciones,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateMaintenanceOutput{Status: http.StatusCreated, Body: toMaintenanceResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-maintenance",
		Method:      http.MethodGet,
		Path:        "/api/v1/mantenimientos/{id}",
		Summary:     "Get a maintenance record by ID",
		Tags:        []string{"Mantenimientos"},
	}, func(ctx context.Context, input *GetMaintenanceInput) (*GetMaintenanceOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		rec, err := svcs.Maintenance.Get(ctx, p, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetMaintenanceOutput{Body: toMaintenanceResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-maintenance",
		Method:      http.MethodGet,
		Path:        "/api/v1/mantenimientos",
		Summary:     "List maintenance records",
		Tags:        []string{"Mantenimientos"},
	}, func(ctx context.Context, input *ListMaintenanceInput) (*ListMaintenanceOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		filter := domain.MaintenanceFilter{
			TechnicianID: input.TecnicoID,
			EquipmentID:  input.EquipoID,
			CompanyID:    input.EmpresaID,
		}
		if input.Estado != "" {
			s := domain.MaintenanceStatus(input.Estado)
			filter.Status = &s
		}
		if input.Tipo != "" {
			t := domain.MaintenanceType(input.Tipo)
			filter.Type = &t
		}

		page, err := svcs.Maintenance.List(ctx, p, filter, domain.NewPage(input.Page, input.Limit))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListMaintenanceOutput{Body: toPagedResponse(page, toMaintenanceResponse)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-maintenance-status",
		Method:      http.MethodPut,
		Path:        "/api/v1/mantenimientos/{id}/estado",
		Summary:     "Change a maintenance record's state",
		Tags:        []string{"Mantenimientos"},
	}, func(ctx context.Context, input *ChangeMaintenanceStatusInput) (*ChangeMaintenanceStatusOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		rec, err := svcs.Maintenance.ChangeStatus(ctx, p, input.ID, domain.MaintenanceStatus(input.Body.Estado), input.Body.Observaciones)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ChangeMaintenanceStatusOutput{Body: toMaintenanceResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-maintenance-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/mantenimientos/{id}/historial",
		Summary:     "Get the audit trail of a maintenance record",
		Tags:        []string{"Mantenimientos"},
	}, func(ctx context.Context, input *MaintenanceHistoryInput) (*MaintenanceHistoryOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		entries, err := svcs.Maintenance.History(ctx, p, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]HistoryResponse, len(entries))
		for i, e := range entries {
			resp[i] = toHistoryResponse(e)
		}
		return &MaintenanceHistoryOutput{Body: resp}, nil
	})
}

func registerEquipmentRoutes(api huma.API, svcs Services) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-equipment",
		Method:        http.MethodPost,
		Path:          "/api/v1/equipos",
		Summary:       "Register equipment",
		Tags:          []string{"Equipos"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateEquipmentInput) (*CreateEquipmentOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		eq, err := svcs.Equipment.Create(ctx, p, app.CreateEquipmentInput{
			Type:      input.Body.Tipo,
			Brand:     input.Body.Marca,
			Model:     input.Body.Modelo,
			Serial:    input.Body.NumeroSerie,
			CompanyID: input.Body.EmpresaID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateEquipmentOutput{Status: http.StatusCreated, Body: toEquipmentResponse(eq)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-equipment",
		Method:      http.MethodGet,
		Path:        "/api/v1/equipos/{id}",
		Summary:     "Get equipment by ID",
		Tags:        []string{"Equipos"},
	}, func(ctx context.Context, input *GetEquipmentInput) (*GetEquipmentOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		eq, err := svcs.Equipment.Get(ctx, p, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetEquipmentOutput{Body: toEquipmentResponse(eq)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-equipment",
		Method:      http.MethodGet,
		Path:        "/api/v1/equipos",
		Summary:     "List equipment",
		Tags:        []string{"Equipos"},
	}, func(ctx context.Context, input *ListEquipmentInput) (*ListEquipmentOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		filter := domain.EquipmentFilter{CompanyID: input.EmpresaID}
		if input.Estado != "" {
			s := domain.EquipmentStatus(input.Estado)
			filter.Status = &s
		}

		page, err := svcs.Equipment.List(ctx, p, filter, domain.NewPage(input.Page, input.Limit))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListEquipmentOutput{Body: toPagedResponse(page, toEquipmentResponse)}, nil
	})
}

func registerDashboardRoutes(api huma.API, svcs Services) {
	huma.Register(api, huma.Operation{
		OperationID: "dashboard-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard/stats",
		Summary:     "Dashboard statistics",
		Tags:        []string{"Dashboard"},
	}, func(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
		p, err := FromContext(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		stats, err := svcs.Stats.Dashboard(ctx, p, time.Now().UTC())
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &DashboardOutput{}
		out.Body.TotalEquipos = stats.TotalEquipment
		out.Body.EquiposPorEstado = statusMap(stats.EquipmentByStatus)
		out.Body.EquiposCriticos = stats.CriticalEquipment
		out.Body.TotalMantenimientos = stats.TotalMaintenance
		out.Body.MantenimientosEstado = statusMap(stats.MaintenanceByStatus)
		out.Body.MantenimientosTipo = statusMap(stats.MaintenanceByType)
		if stats.RequestsByStatus != nil {
			out.Body.SolicitudesPorEstado = statusMap(stats.RequestsByStatus)
		}
		out.Body.CompletadosEsteMes = stats.CompletedThisMonth
		out.Body.CompletadosCambio = stats.CompletedChange
		out.Body.MantenimientosPendient = stats.PendingMaintenance
		out.Body.PendientesCambio = stats.PendingChange

		out.Body.ProximosMantenimientos = make([]MaintenanceResponse, len(stats.Upcoming))
		for i, rec := range stats.Upcoming {
			out.Body.ProximosMantenimientos[i] = toMaintenanceResponse(rec)
		}
		out.Body.SeriesMensuales = make([]MonthlyCountResponse, len(stats.MonthlySeries))
		for i, mc := range stats.MonthlySeries {
			out.Body.SeriesMensuales[i] = MonthlyCountResponse{Mes: mc.Month, Tipo: string(mc.Type), Cantidad: mc.Count}
		}
		return out, nil
	})
}

func statusMap[K ~string](in map[K]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrUnauthenticated) {
		return huma.Error401Unauthorized("authentication required")
	}

	var forbidden *domain.ForbiddenError
	if errors.As(err, &forbidden) {
		return huma.Error403Forbidden(forbidden.Reason)
	}

	if errors.Is(err, domain.ErrRequestNotFound) ||
		errors.Is(err, domain.ErrMaintenanceNotFound) ||
		errors.Is(err, domain.ErrEquipmentNotFound) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrCompanyNotFound) {
		return huma.Error404NotFound(err.Error())
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return huma.Error400BadRequest(vErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}
	if errors.Is(err, domain.ErrRequestNotApproved) {
		return huma.Error422UnprocessableEntity(err.Error())
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return huma.Error409Conflict(conflict.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
