package memory

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type ProductRepository struct {
	store *Store
}

func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.store.products[product.ID] = product
	return product, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return product, nil
}

func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if product, ok := r.store.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}
