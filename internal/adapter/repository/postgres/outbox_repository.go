package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/settlement-core/internal/domain"
)

type OutboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	const query = `
SELECT id, kind, payload, created_at, dispatched_at
FROM outbox_events
WHERE dispatched_at IS NULL
ORDER BY created_at
LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox events: %w", err)
	}
	defer rows.Close()

	var out []domain.OutboxEvent
	for rows.Next() {
		var event domain.OutboxEvent
		var dispatchedAt sql.NullTime
		if err := rows.Scan(&event.ID, &event.Kind, &event.Payload, &event.CreatedAt, &dispatchedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		if dispatchedAt.Valid {
			value := dispatchedAt.Time
			event.DispatchedAt = &value
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}

	return out, nil
}

func (r *OutboxRepository) MarkDispatched(ctx context.Context, eventID string) error {
	const query = `
UPDATE outbox_events
SET dispatched_at = NOW()
WHERE id = $1
  AND dispatched_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("mark outbox event dispatched: %w", err)
	}

	return nil
}
