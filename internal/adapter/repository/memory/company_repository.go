package memory

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type CompanyRepository struct {
	store *Store
}

func NewCompanyRepository(store *Store) *CompanyRepository {
	return &CompanyRepository{store: store}
}

func (r *CompanyRepository) Create(_ context.Context, company domain.Company) (domain.Company, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	company.CreatedAt = time.Now().UTC()
	r.store.companies[company.ID] = company
	return company, nil
}

func (r *CompanyRepository) GetByID(_ context.Context, id string) (domain.Company, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	company, ok := r.store.companies[id]
	if !ok {
		return domain.Company{}, domain.ErrNotFound
	}
	return company, nil
}
