package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/settlement-core/internal/domain"
)

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company domain.Company) (domain.Company, error) {
	const query = `
INSERT INTO companies (id, owner_id, name)
VALUES ($1, $2, $3)
RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, company.ID, company.OwnerID, company.Name).Scan(&company.CreatedAt); err != nil {
		return domain.Company{}, fmt.Errorf("create company: %w", err)
	}

	return company, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (domain.Company, error) {
	const query = `
SELECT id, owner_id, name, created_at
FROM companies
WHERE id = $1`

	var company domain.Company
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.OwnerID,
		&company.Name,
		&company.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Company{}, domain.ErrNotFound
		}
		return domain.Company{}, fmt.Errorf("get company: %w", err)
	}

	return company, nil
}
