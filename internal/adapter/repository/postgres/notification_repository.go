package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/logger"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification domain.Notification) (domain.Notification, error) {
	const query = `
INSERT INTO notifications (user_id, kind, title, message, source_app)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		notification.UserID,
		notification.Kind,
		notification.Title,
		notification.Message,
		notification.SourceApp,
	).Scan(&notification.ID, &notification.CreatedAt); err != nil {
		logger.Error("notification repository create failed", err, logger.Fields{
			"userId": notification.UserID,
			"kind":   notification.Kind,
		})
		return domain.Notification{}, fmt.Errorf("create notification: %w", err)
	}

	return notification, nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	const query = `
SELECT id, user_id, kind, title, message, source_app, read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.SourceApp, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	const query = `
UPDATE notifications
SET read = TRUE
WHERE id = $1
  AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
