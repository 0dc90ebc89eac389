package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) error {
	var companyID *string
	if u.CompanyID != "" {
		companyID = &u.CompanyID
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, role, company_id) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, string(u.Role), companyID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "usuario", ID: u.Email}
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	var role string
	var companyID *string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, role, company_id FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &role, &companyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = domain.Role(role)
	if companyID != nil {
		u.CompanyID = *companyID
	}
	return u, nil
}

// CompanyRepository implements domain.CompanyRepository using SQLite.
type CompanyRepository struct {
	db *sql.DB
}

func (r *CompanyRepository) Create(ctx context.Context, c domain.Company) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (id, name) VALUES (?, ?)`, c.ID, c.Name,
	)
	if err != nil {
		return fmt.Errorf("inserting company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (domain.Company, error) {
	var c domain.Company
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Company{}, domain.ErrCompanyNotFound
		}
		return domain.Company{}, fmt.Errorf("scanning company: %w", err)
	}
	return c, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
