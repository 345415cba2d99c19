package router

import (
	"net/http"

	"github.com/api-sage/settlement-core/internal/adapter/http/controller"
	"github.com/api-sage/settlement-core/internal/adapter/http/middleware"
)

// New assembles the public mux. Every controller registers its own
// routes; the webhook controller additionally receives the channel auth
// wrapper for the provider callback.
func New(
	wallet *controller.WalletController,
	settlements *controller.SettlementController,
	notifications *controller.NotificationController,
	webhooks *controller.WebhookController,
	channelAuth *middleware.ChannelAuth,
) http.Handler {
	mux := http.NewServeMux()

	wallet.RegisterRoutes(mux)
	settlements.RegisterRoutes(mux)
	notifications.RegisterRoutes(mux)
	webhooks.RegisterRoutes(mux, channelAuth.Wrap)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.RequestLog(mux)
}
