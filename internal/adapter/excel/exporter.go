// Package excel renders listings as xlsx workbooks for the export endpoints.
package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

const sheetName = "Sheet1"

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
}

func writeHeaders(f *excelize.File, headers []string) error {
	style, err := headerStyle(f)
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s1", col)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("writing header %q: %w", h, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return fmt.Errorf("styling header %q: %w", h, err)
		}
	}
	return nil
}

func dash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func dashTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// RequestsWorkbook renders service requests as a workbook, one row per
// request.
func RequestsWorkbook(requests []domain.ServiceRequest) (*excelize.File, error) {
	f := excelize.NewFile()

	headers := []string{"ID", "Equipo", "Cliente", "Descripción", "Prioridad", "Estado", "Respuesta", "Fecha de creación"}
	if err := writeHeaders(f, headers); err != nil {
		return nil, err
	}

	for i, req := range requests {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), req.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), req.EquipmentID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), req.ClientID)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), req.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), string(req.Priority))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), string(req.Status))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), dash(req.Response))
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), req.CreatedAt.Format("2006-01-02 15:04"))
	}

	widths := []float64{28, 28, 28, 50, 12, 14, 40, 18}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}

	return f, nil
}

// MaintenanceWorkbook renders maintenance records as a workbook, one row per
// record.
func MaintenanceWorkbook(records []domain.MaintenanceRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	headers := []string{"ID", "Equipo", "Técnico", "Tipo", "Estado", "Fecha programada", "Fecha realizada", "Descripción", "Observaciones"}
	if err := writeHeaders(f, headers); err != nil {
		return nil, err
	}

	for i, rec := range records {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), rec.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), rec.EquipmentID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), rec.TechnicianID)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), string(rec.Type))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), string(rec.Status))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), rec.ScheduledDate.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), dashTime(rec.PerformedDate))
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), rec.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), dash(rec.Notes))
	}

	widths := []float64{28, 28, 28, 14, 14, 18, 18, 50, 40}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}

	return f, nil
}
