package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// EquipmentRepository implements domain.EquipmentRepository using SQLite.
type EquipmentRepository struct {
	db *sql.DB
}

const equipmentColumns = `id, type, brand, model, serial, company_id, status, created_at`

func (r *EquipmentRepository) Create(ctx context.Context, eq domain.Equipment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO equipment (`+equipmentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		eq.ID, eq.Type, eq.Brand, eq.Model, eq.Serial, eq.CompanyID,
		string(eq.Status), eq.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "equipo", ID: eq.Serial}
		}
		return fmt.Errorf("inserting equipment: %w", err)
	}
	return nil
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id string) (domain.Equipment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`, id,
	)

	var eq domain.Equipment
	var status, createdAt string
	err := row.Scan(&eq.ID, &eq.Type, &eq.Brand, &eq.Model, &eq.Serial,
		&eq.CompanyID, &status, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Equipment{}, domain.ErrEquipmentNotFound
		}
		return domain.Equipment{}, fmt.Errorf("scanning equipment: %w", err)
	}

	eq.Status = domain.EquipmentStatus(status)
	eq.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return eq, nil
}

func equipmentWhere(filter domain.EquipmentFilter) (string, []any) {
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

	if filter.CompanyID != "" {
		and("company_id = ?", filter.CompanyID)
	}
	if filter.Status != nil {
		and("status = ?", string(*filter.Status))
	}
	return where, args
}

func (r *EquipmentRepository) List(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	where, args := equipmentWhere(filter)
	query := `SELECT ` + equipmentColumns + ` FROM equipment` + where + ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		var eq domain.Equipment
		var status, createdAt string
		if err := rows.Scan(&eq.ID, &eq.Type, &eq.Brand, &eq.Model, &eq.Serial,
			&eq.CompanyID, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning equipment row: %w", err)
		}
		eq.Status = domain.EquipmentStatus(status)
		eq.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		items = append(items, eq)
	}
	return items, rows.Err()
}

func (r *EquipmentRepository) Count(ctx context.Context, filter domain.EquipmentFilter) (int, error) {
	where, args := equipmentWhere(filter)
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM equipment`+where, args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting equipment: %w", err)
	}
	return n, nil
}

func (r *EquipmentRepository) CountByStatus(ctx context.Context, filter domain.EquipmentFilter) (map[domain.EquipmentStatus]int, error) {
	where, args := equipmentWhere(filter)
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM equipment`+where+` GROUP BY status`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("counting equipment by status: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.EquipmentStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning equipment status count: %w", err)
		}
		out[domain.EquipmentStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *EquipmentRepository) SetStatus(ctx context.Context, id string, status domain.EquipmentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE equipment SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("updating equipment status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrEquipmentNotFound
	}
	return nil
}
