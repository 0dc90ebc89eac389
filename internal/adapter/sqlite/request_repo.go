package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// RequestRepository implements domain.ServiceRequestRepository using SQLite.
type RequestRepository struct {
	db *sql.DB
}

const requestColumns = `id, equipment_id, client_id, description, priority, status, response, version, created_at, updated_at`

func (r *RequestRepository) Create(ctx context.Context, req domain.ServiceRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO service_requests (`+requestColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.EquipmentID, req.ClientID, req.Description,
		string(req.Priority), string(req.Status), req.Response, req.Version,
		req.CreatedAt.Format(timeFormat),
		req.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting service request: %w", err)
	}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (domain.ServiceRequest, error) {
	return r.scanRequest(r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE id = ?`, id,
	))
}

// requestWhere builds the WHERE clause shared by List, Count, and
// CountByStatus so every read honors the same tenancy scope.
func requestWhere(filter domain.RequestFilter) (string, []any) {
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

	if filter.ClientID != "" {
		and("client_id = ?", filter.ClientID)
	}
	if filter.Status != nil {
		and("status = ?", string(*filter.Status))
	}
	if filter.Priority != nil {
		and("priority = ?", string(*filter.Priority))
	}
	return where, args
}

func (r *RequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]domain.ServiceRequest, error) {
	where, args := requestWhere(filter)
	query := `SELECT ` + requestColumns + ` FROM service_requests` + where + ` ORDER BY created_at DESC`

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
		return nil, fmt.Errorf("listing service requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.ServiceRequest
	for rows.Next() {
		req, err := r.scanRequestFromRows(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func (r *RequestRepository) Count(ctx context.Context, filter domain.RequestFilter) (int, error) {
	where, args := requestWhere(filter)
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM service_requests`+where, args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting service requests: %w", err)
	}
	return n, nil
}

func (r *RequestRepository) CountByStatus(ctx context.Context, filter domain.RequestFilter) (map[domain.RequestStatus]int, error) {
	where, args := requestWhere(filter)
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM service_requests`+where+` GROUP BY status`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("counting service requests by status: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.RequestStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning request status count: %w", err)
		}
		out[domain.RequestStatus(status)] = n
	}
	return out, rows.Err()
}

// UpdateStatus is a compare-and-swap on the row version. A version mismatch on
// an existing row means a concurrent reviewer got there first.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, version int, status domain.RequestStatus, response *string) (domain.ServiceRequest, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE service_requests
		 SET status = ?, response = COALESCE(?, response), version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		string(status), response, time.Now().UTC().Format(timeFormat), id, version,
	)
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("updating request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a stale version from a missing row.
		if _, err := r.GetByID(ctx, id); err != nil {
			return domain.ServiceRequest{}, err
		}
		return domain.ServiceRequest{}, &domain.ConflictError{Entity: "solicitud", ID: id}
	}

	return r.GetByID(ctx, id)
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM service_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting service request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) scanRequest(row *sql.Row) (domain.ServiceRequest, error) {
	var req domain.ServiceRequest
	var priority, status, createdAt, updatedAt string

	err := row.Scan(&req.ID, &req.EquipmentID, &req.ClientID, &req.Description,
		&priority, &status, &req.Response, &req.Version, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ServiceRequest{}, domain.ErrRequestNotFound
		}
		return domain.ServiceRequest{}, fmt.Errorf("scanning service request: %w", err)
	}

	req.Priority = domain.Priority(priority)
	req.Status = domain.RequestStatus(status)
	req.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	req.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return req, nil
}

func (r *RequestRepository) scanRequestFromRows(rows *sql.Rows) (domain.ServiceRequest, error) {
	var req domain.ServiceRequest
	var priority, status, createdAt, updatedAt string

	err := rows.Scan(&req.ID, &req.EquipmentID, &req.ClientID, &req.Description,
		&priority, &status, &req.Response, &req.Version, &createdAt, &updatedAt)
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("scanning service request row: %w", err)
	}

	req.Priority = domain.Priority(priority)
	req.Status = domain.RequestStatus(status)
	req.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	req.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return req, nil
}
