package repo_interfaces

import (
	"context"

	"github.com/api-sage/settlement-core/internal/domain"
)

type CompanyRepository interface {
	Create(ctx context.Context, company domain.Company) (domain.Company, error)
	GetByID(ctx context.Context, id string) (domain.Company, error)
}
