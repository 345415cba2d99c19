package services

import (
	"context"
	"strings"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/settlement-core/internal/commons"
	"github.com/api-sage/settlement-core/internal/domain"
)

type NotificationService struct {
	notifications repo_interfaces.NotificationRepository
}

func NewNotificationService(notifications repo_interfaces.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string) (commons.Response[[]models.NotificationResponse], error) {
	if strings.TrimSpace(userID) == "" {
		return failure[[]models.NotificationResponse]("user id is required", domain.ErrAccountNotFound)
	}

	notifications, err := s.notifications.ListForUser(ctx, userID)
	if err != nil {
		return failure[[]models.NotificationResponse]("notifications unavailable", err)
	}

	out := make([]models.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, models.NotificationResponse{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Title:     n.Title,
			Message:   n.Message,
			SourceApp: n.SourceApp,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return commons.SuccessResponse("notifications listed", out), nil
}

// MarkRead only flips notifications owned by the calling user; a foreign
// or unknown id reports not found.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) (commons.Response[bool], error) {
	if strings.TrimSpace(notificationID) == "" || strings.TrimSpace(userID) == "" {
		return failure[bool]("notification id and user id are required", domain.ErrNotFound)
	}
	if err := s.notifications.MarkRead(ctx, notificationID, userID); err != nil {
		return failure[bool]("notification not found", err)
	}
	return commons.SuccessResponse("notification marked read", true), nil
}
