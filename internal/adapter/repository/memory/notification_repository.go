package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/settlement-core/internal/domain"
)

type NotificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) Create(_ context.Context, notification domain.Notification) (domain.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now().UTC()
	r.store.notifications = append(r.store.notifications, notification)
	return notification, nil
}

func (r *NotificationRepository) ListForUser(_ context.Context, userID string) ([]domain.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []domain.Notification
	for _, n := range r.store.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, notificationID, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, n := range r.store.notifications {
		if n.ID == notificationID && n.UserID == userID {
			r.store.notifications[i].Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}
