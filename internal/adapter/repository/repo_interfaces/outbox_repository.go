package repo_interfaces

import (
	"context"

	"github.com/api-sage/settlement-core/internal/domain"
)

type OutboxRepository interface {
	ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkDispatched(ctx context.Context, eventID string) error
}
