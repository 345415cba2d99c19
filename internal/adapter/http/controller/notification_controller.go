package controller

import (
	"net/http"

	"github.com/api-sage/settlement-core/internal/usecase/service_interfaces"
)

type NotificationController struct {
	notifications service_interfaces.NotificationService
}

func NewNotificationController(notifications service_interfaces.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

func (c *NotificationController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/users/{userID}/notifications", c.list)
	mux.HandleFunc("POST /api/v1/users/{userID}/notifications/{notificationID}/read", c.markRead)
}

func (c *NotificationController) list(w http.ResponseWriter, r *http.Request) {
	response, err := c.notifications.ListForUser(r.Context(), r.PathValue("userID"))
	respond(w, statusFromError(err), response)
}

func (c *NotificationController) markRead(w http.ResponseWriter, r *http.Request) {
	response, err := c.notifications.MarkRead(r.Context(), r.PathValue("notificationID"), r.PathValue("userID"))
	respond(w, statusFromError(err), response)
}
