package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/companyhub/companyhub/internal/model"
)

// Common errors for company repository operations.
var (
	ErrCompanyNotFound     = errors.New("company not found")
	ErrCompanyNameTaken    = errors.New("company name already taken")
	ErrCompanyOwnerMissing = errors.New("company owner does not exist")
)

const (
	companiesNameKey  = "companies_name_key"
	companiesUserFKey = "companies_user_id_fkey"
)

const companyColumns = `id, name, year, user_id, created_at, updated_at`

// ListCompanies returns the companies inside scope ordered by id.
func (r *Repository) ListCompanies(ctx context.Context, scope model.CompanyScope) ([]*model.Company, error) {
	if scope.Empty() {
		return []*model.Company{}, nil
	}

	query := `SELECT ` + companyColumns + ` FROM companies WHERE user_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []*model.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return companies, nil
}

// GetCompany retrieves a company by id, constrained to scope.
// Records outside the scope are reported as ErrCompanyNotFound.
func (r *Repository) GetCompany(ctx context.Context, scope model.CompanyScope, id int64) (*model.Company, error) {
	if scope.Empty() {
		return nil, ErrCompanyNotFound
	}

	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1 AND user_id = $2`

	c, err := scanCompany(r.pool.QueryRow(ctx, query, id, scope.UserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// CompanyNameExists reports whether another company already uses name.
// excludeID skips the company being updated; pass 0 on create.
func (r *Repository) CompanyNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM companies WHERE name = $1 AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check company name: %w", err)
	}
	return exists, nil
}

// CreateCompany inserts a company and fills in its id and timestamps.
func (r *Repository) CreateCompany(ctx context.Context, c *model.Company) error {
	query := `
		INSERT INTO companies (name, year, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.Name, c.Year, c.UserID).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapCompanyWriteError(err, "create")
	}
	return nil
}

// UpdateCompany writes name and year. Ownership never changes.
func (r *Repository) UpdateCompany(ctx context.Context, c *model.Company) error {
	query := `
		UPDATE companies
		SET name = $1, year = $2, updated_at = now()
		WHERE id = $3 AND user_id = $4
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.Name, c.Year, c.ID, c.UserID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCompanyNotFound
		}
		return mapCompanyWriteError(err, "update")
	}
	return nil
}

// DeleteCompany removes a company inside scope.
func (r *Repository) DeleteCompany(ctx context.Context, scope model.CompanyScope, id int64) error {
	if scope.Empty() {
		return ErrCompanyNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1 AND user_id = $2`, id, scope.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func mapCompanyWriteError(err error, op string) error {
	switch {
	case isUniqueViolation(err, companiesNameKey):
		return ErrCompanyNameTaken
	case isForeignKeyViolation(err, companiesUserFKey):
		return ErrCompanyOwnerMissing
	default:
		return fmt.Errorf("failed to %s company: %w", op, err)
	}
}

func scanCompany(row pgx.Row) (*model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Year, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
