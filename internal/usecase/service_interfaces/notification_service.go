package service_interfaces

import (
	"context"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/commons"
)

type NotificationService interface {
	ListForUser(ctx context.Context, userID string) (commons.Response[[]models.NotificationResponse], error)
	MarkRead(ctx context.Context, notificationID, userID string) (commons.Response[bool], error)
}
