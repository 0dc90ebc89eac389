package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// MaintenanceRepository implements domain.MaintenanceRepository using SQLite.
type MaintenanceRepository struct {
	db *sql.DB
}

const maintenanceColumns = `id, equipment_id, technician_id, type, status, scheduled_date, performed_date, description, notes, report_url, version, created_at, updated_at`

// CreateWithHistory inserts the record and its audit entry in one
// transaction. Both succeed or neither exists.
func (r *MaintenanceRepository) CreateWithHistory(ctx context.Context, rec domain.MaintenanceRecord, entry domain.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var performed *string
	if rec.PerformedDate != nil {
		s := rec.PerformedDate.Format(timeFormat)
		performed = &s
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO maintenance_records (`+maintenanceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EquipmentID, rec.TechnicianID, string(rec.Type), string(rec.Status),
		rec.ScheduledDate.Format(timeFormat), performed,
		rec.Description, rec.Notes, rec.ReportURL, rec.Version,
		rec.CreatedAt.Format(timeFormat),
		rec.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting maintenance record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history_entries (id, equipment_id, maintenance_record_id, technician_id, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.EquipmentID, entry.MaintenanceRecordID, entry.TechnicianID,
		entry.Notes, entry.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing maintenance creation: %w", err)
	}
	return nil
}

func (r *MaintenanceRepository) GetByID(ctx context.Context, id string) (domain.MaintenanceRecord, error) {
	return r.scanRecord(r.db.QueryRowContext(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records WHERE id = ?`, id,
	))
}

// maintenanceWhere builds the WHERE clause shared by every maintenance read.
// Company scoping goes through the owning equipment.
func maintenanceWhere(filter domain.MaintenanceFilter) (string, []any) {
	where := ""
	var args []any
	and := func(cond string, arg any) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
		args = append(args, arg)
	}

	if filter.Status != nil {
		and("status = ?", string(*filter.Status))
	}
	if filter.Type != nil {
		and("type = ?", string(*filter.Type))
	}
	if filter.TechnicianID != "" {
		and("technician_id = ?", filter.TechnicianID)
	}
	if filter.EquipmentID != "" {
		and("equipment_id = ?", filter.EquipmentID)
	}
	if filter.CompanyID != "" {
		and("equipment_id IN (SELECT id FROM equipment WHERE company_id = ?)", filter.CompanyID)
	}
	return where, args
}

func (r *MaintenanceRepository) List(ctx context.Context, filter domain.MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	where, args := maintenanceWhere(filter)
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_records` + where + ` ORDER BY scheduled_date DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	return r.queryRecords(ctx, query, args...)
}

func (r *MaintenanceRepository) Count(ctx context.Context, filter domain.MaintenanceFilter) (int, error) {
	where, args := maintenanceWhere(filter)
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM maintenance_records`+where, args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting maintenance records: %w", err)
	}
	return n, nil
}

func (r *MaintenanceRepository) CountByStatus(ctx context.Context, filter domain.MaintenanceFilter) (map[domain.MaintenanceStatus]int, error) {
	where, args := maintenanceWhere(filter)
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM maintenance_records`+where+` GROUP BY status`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("counting maintenance by status: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.MaintenanceStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning maintenance status count: %w", err)
		}
		out[domain.MaintenanceStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *MaintenanceRepository) CountByType(ctx context.Context, filter domain.MaintenanceFilter) (map[domain.MaintenanceType]int, error) {
	where, args := maintenanceWhere(filter)
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM maintenance_records`+where+` GROUP BY type`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("counting maintenance by type: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.MaintenanceType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scanning maintenance type count: %w", err)
		}
		out[domain.MaintenanceType(typ)] = n
	}
	return out, rows.Err()
}

// CountCompletedBetween counts completed records with a performed date in
// [from, to). A zero to leaves the interval open-ended.
func (r *MaintenanceRepository) CountCompletedBetween(ctx context.Context, filter domain.MaintenanceFilter, from, to time.Time) (int, error) {
	where, args := maintenanceWhere(filter)
	query := `SELECT COUNT(*) FROM maintenance_records` + where
	if where == "" {
		query += ` WHERE`
	} else {
		query += ` AND`
	}
	query += ` status = ? AND performed_date >= ?`
	args = append(args, string(domain.MaintenanceCompletado), from.Format(timeFormat))

	if !to.IsZero() {
		query += ` AND performed_date < ?`
		args = append(args, to.Format(timeFormat))
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting completed maintenance: %w", err)
	}
	return n, nil
}

func (r *MaintenanceRepository) CountPendingCreatedBefore(ctx context.Context, filter domain.MaintenanceFilter, before time.Time) (int, error) {
	where, args := maintenanceWhere(filter)
	query := `SELECT COUNT(*) FROM maintenance_records` + where
	if where == "" {
		query += ` WHERE`
	} else {
		query += ` AND`
	}
	query += ` status IN (?, ?) AND created_at < ?`
	args = append(args,
		string(domain.MaintenanceProgramado), string(domain.MaintenanceEnProceso),
		before.Format(timeFormat))

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pending maintenance: %w", err)
	}
	return n, nil
}

// ListUpcoming returns non-terminal records ordered by schedule, soonest
// first.
func (r *MaintenanceRepository) ListUpcoming(ctx context.Context, filter domain.MaintenanceFilter, limit int) ([]domain.MaintenanceRecord, error) {
	where, args := maintenanceWhere(filter)
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_records` + where
	if where == "" {
		query += ` WHERE`
	} else {
		query += ` AND`
	}
	query += ` status IN (?, ?) ORDER BY scheduled_date ASC`
	args = append(args,
		string(domain.MaintenanceProgramado), string(domain.MaintenanceEnProceso))

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return r.queryRecords(ctx, query, args...)
}

// MonthlyCounts buckets records by scheduled month and type for charting.
func (r *MaintenanceRepository) MonthlyCounts(ctx context.Context, filter domain.MaintenanceFilter, since time.Time) ([]domain.MonthlyCount, error) {
	where, args := maintenanceWhere(filter)
	query := `SELECT strftime('%Y-%m', scheduled_date) AS month, type, COUNT(*)
	 FROM maintenance_records` + where
	if where == "" {
		query += ` WHERE`
	} else {
		query += ` AND`
	}
	query += ` scheduled_date >= ? GROUP BY month, type ORDER BY month ASC`
	args = append(args, since.Format(timeFormat))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing monthly maintenance counts: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthlyCount
	for rows.Next() {
		var mc domain.MonthlyCount
		var typ string
		if err := rows.Scan(&mc.Month, &typ, &mc.Count); err != nil {
			return nil, fmt.Errorf("scanning monthly count: %w", err)
		}
		mc.Type = domain.MaintenanceType(typ)
		out = append(out, mc)
	}
	return out, rows.Err()
}

// SetStatus is a compare-and-swap on the row version, mirroring the request
// repository.
func (r *MaintenanceRepository) SetStatus(ctx context.Context, id string, version int, status domain.MaintenanceStatus, performedDate *time.Time, notes *string) (domain.MaintenanceRecord, error) {
	var performed *string
	if performedDate != nil {
		s := performedDate.Format(timeFormat)
		performed = &s
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE maintenance_records
		 SET status = ?, performed_date = COALESCE(?, performed_date),
		     notes = COALESCE(?, notes), version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		string(status), performed, notes,
		time.Now().UTC().Format(timeFormat), id, version,
	)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("updating maintenance status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return domain.MaintenanceRecord{}, err
		}
		return domain.MaintenanceRecord{}, &domain.ConflictError{Entity: "mantenimiento", ID: id}
	}

	return r.GetByID(ctx, id)
}

func (r *MaintenanceRepository) SetReportURL(ctx context.Context, id, url string) (domain.MaintenanceRecord, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE maintenance_records SET report_url = ?, updated_at = ? WHERE id = ?`,
		url, time.Now().UTC().Format(timeFormat), id,
	)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("setting report url: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.MaintenanceRecord{}, domain.ErrMaintenanceNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MaintenanceRepository) HistoryForRecord(ctx context.Context, recordID string) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, equipment_id, maintenance_record_id, technician_id, notes, created_at
		 FROM history_entries WHERE maintenance_record_id = ? ORDER BY created_at ASC`, recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing history entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.EquipmentID, &e.MaintenanceRecordID, &e.TechnicianID, &e.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *MaintenanceRepository) queryRecords(ctx context.Context, query string, args ...any) ([]domain.MaintenanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance records: %w", err)
	}
	defer rows.Close()

	var records []domain.MaintenanceRecord
	for rows.Next() {
		rec, err := r.scanRecordFromRows(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *MaintenanceRepository) scanRecord(row *sql.Row) (domain.MaintenanceRecord, error) {
	var rec domain.MaintenanceRecord
	var typ, status, scheduledAt, createdAt, updatedAt string
	var performedAt *string

	err := row.Scan(&rec.ID, &rec.EquipmentID, &rec.TechnicianID, &typ, &status,
		&scheduledAt, &performedAt, &rec.Description, &rec.Notes, &rec.ReportURL,
		&rec.Version, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.MaintenanceRecord{}, domain.ErrMaintenanceNotFound
		}
		return domain.MaintenanceRecord{}, fmt.Errorf("scanning maintenance record: %w", err)
	}

	fillRecord(&rec, typ, status, scheduledAt, performedAt, createdAt, updatedAt)
	return rec, nil
}

func (r *MaintenanceRepository) scanRecordFromRows(rows *sql.Rows) (domain.MaintenanceRecord, error) {
	var rec domain.MaintenanceRecord
	var typ, status, scheduledAt, createdAt, updatedAt string
	var performedAt *string

	err := rows.Scan(&rec.ID, &rec.EquipmentID, &rec.TechnicianID, &typ, &status,
		&scheduledAt, &performedAt, &rec.Description, &rec.Notes, &rec.ReportURL,
		&rec.Version, &createdAt, &updatedAt)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("scanning maintenance record row: %w", err)
	}

	fillRecord(&rec, typ, status, scheduledAt, performedAt, createdAt, updatedAt)
	return rec, nil
}

func fillRecord(rec *domain.MaintenanceRecord, typ, status, scheduledAt string, performedAt *string, createdAt, updatedAt string) {
	rec.Type = domain.MaintenanceType(typ)
	rec.Status = domain.MaintenanceStatus(status)
	rec.ScheduledDate, _ = time.Parse(timeFormat, scheduledAt)
	if performedAt != nil {
		t, _ := time.Parse(timeFormat, *performedAt)
		rec.PerformedDate = &t
	}
	rec.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	rec.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
}
