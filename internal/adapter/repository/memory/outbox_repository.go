package memory

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type OutboxRepository struct {
	store *Store
}

func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

func (r *OutboxRepository) ListPending(_ context.Context, limit int) ([]domain.OutboxEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []domain.OutboxEvent
	for _, event := range r.store.events {
		if event.DispatchedAt != nil {
			continue
		}
		out = append(out, event)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkDispatched(_ context.Context, eventID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, event := range r.store.events {
		if event.ID == eventID && event.DispatchedAt == nil {
			now := time.Now().UTC()
			r.store.events[i].DispatchedAt = &now
			return nil
		}
	}
	return nil
}
