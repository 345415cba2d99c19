package memory

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type PaymentLinkRepository struct {
	store *Store
}

func NewPaymentLinkRepository(store *Store) *PaymentLinkRepository {
	return &PaymentLinkRepository{store: store}
}

func (r *PaymentLinkRepository) Create(_ context.Context, link domain.PaymentLink) (domain.PaymentLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	link.CreatedAt = time.Now().UTC()
	r.store.links[link.Token] = link
	return link, nil
}

func (r *PaymentLinkRepository) GetByToken(_ context.Context, token string) (domain.PaymentLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	link, ok := r.store.links[token]
	if !ok {
		return domain.PaymentLink{}, domain.ErrNotFound
	}
	return link, nil
}

func (r *PaymentLinkRepository) MarkSettled(_ context.Context, token string, settledAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	link, ok := r.store.links[token]
	if !ok {
		return domain.ErrNotFound
	}
	if link.SettledAt == nil {
		link.SettledAt = &settledAt
		r.store.links[token] = link
	}
	return nil
}
