package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neomorfeo/fleetcare/internal/adapter/excel"
	"github.com/neomorfeo/fleetcare/internal/domain"
)

// Upload limits for maintenance report documents.
const (
	MaxReportSize     = 5 << 20 // 5 MB
	reportContentType = "application/pdf"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RegisterExportRoutes mounts the xlsx export and report upload endpoints.
// These stream binary responses, so they bypass the JSON API layer and sit
// directly on the router.
func RegisterExportRoutes(r chi.Router, svcs Services, reports domain.ReportStore, logger *slog.Logger) {
	r.Get("/api/v1/export/solicitudes", exportRequests(svcs, logger))
	r.Get("/api/v1/export/mantenimientos", exportMaintenance(svcs, logger))
	r.Post("/api/v1/mantenimientos/{id}/reporte", uploadReport(svcs, reports, logger))
}

func exportRequests(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := FromContext(r.Context())
		if err != nil {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		requests, err := svcs.Requests.ListAll(r.Context(), p, domain.RequestFilter{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		f, err := excel.RequestsWorkbook(requests)
		if err != nil {
			logger.Error("building requests workbook", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="solicitudes.xlsx"`)
		if err := f.Write(w); err != nil {
			logger.Error("streaming requests workbook", "error", err)
		}
	}
}

func exportMaintenance(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := FromContext(r.Context())
		if err != nil {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		records, err := svcs.Maintenance.ListAll(r.Context(), p, domain.MaintenanceFilter{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		f, err := excel.MaintenanceWorkbook(records)
		if err != nil {
			logger.Error("building maintenance workbook", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="mantenimientos.xlsx"`)
		if err := f.Write(w); err != nil {
			logger.Error("streaming maintenance workbook", "error", err)
		}
	}
}

func uploadReport(svcs Services, reports domain.ReportStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := FromContext(r.Context())
		if err != nil {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxReportSize)
		if err := r.ParseMultipartForm(MaxReportSize); err != nil {
			http.Error(w, "el archivo supera el límite de 5MB", http.StatusRequestEntityTooLarge)
			return
		}

		file, header, err := r.FormFile("archivo")
		if err != nil {
			http.Error(w, "falta el campo archivo", http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Header.Get("Content-Type") != reportContentType {
			http.Error(w, "solo se aceptan documentos PDF", http.StatusBadRequest)
			return
		}

		// Resolve and authorize the record before writing the upload, so a
		// rejected request leaves no orphaned file behind.
		id := chi.URLParam(r, "id")
		if err := svcs.Maintenance.AuthorizeReport(r.Context(), p, id); err != nil {
			writeDomainError(w, err)
			return
		}

		url, err := reports.Save(r.Context(), header.Filename, file)
		if err != nil {
			logger.Error("saving report", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		rec, err := svcs.Maintenance.AttachReport(r.Context(), p, id, url)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"reporteUrl":%q}`, *rec.ReportURL)
	}
}

// writeDomainError maps domain errors onto plain HTTP responses for the
// non-huma routes.
func writeDomainError(w http.ResponseWriter, err error) {
	var forbidden *domain.ForbiddenError
	var vErr *domain.ValidationError
	var conflict *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		http.Error(w, "authentication required", http.StatusUnauthorized)
	case errors.As(err, &forbidden):
		http.Error(w, forbidden.Reason, http.StatusForbidden)
	case errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrMaintenanceNotFound),
		errors.Is(err, domain.ErrEquipmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	case errors.As(err, &conflict):
		http.Error(w, conflict.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
