package controller

import (
	"net/http"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/logger"
	"github.com/api-sage/settlement-core/internal/usecase/service_interfaces"
)

// WebhookController receives provider settlement callbacks. Its routes
// are registered behind the channel auth middleware; the provider is the
// only caller.
type WebhookController struct {
	ledger service_interfaces.LedgerService
}

func NewWebhookController(ledger service_interfaces.LedgerService) *WebhookController {
	return &WebhookController{ledger: ledger}
}

func (c *WebhookController) RegisterRoutes(mux *http.ServeMux, authenticate func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/webhooks/provider", authenticate(http.HandlerFunc(c.providerCallback)))
}

func (c *WebhookController) providerCallback(w http.ResponseWriter, r *http.Request) {
	var request models.ProviderWebhookRequest
	if err := decodeJSON(r, &request); err != nil {
		badRequest[models.TransactionResponse](w, "malformed request body", err)
		return
	}
	if err := request.Validate(); err != nil {
		badRequest[models.TransactionResponse](w, "invalid webhook payload", err)
		return
	}

	logger.Info("provider webhook received", logger.Fields{
		"payload": logger.SanitizePayload(request),
	})

	response, err := c.ledger.HandleProviderWebhook(r.Context(), request)
	respond(w, statusFromError(err), response)
}
