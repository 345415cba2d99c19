package controller

import (
	"net/http"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/usecase/service_interfaces"
)

type SettlementController struct {
	settlements service_interfaces.SettlementService
}

func NewSettlementController(settlements service_interfaces.SettlementService) *SettlementController {
	return &SettlementController{settlements: settlements}
}

func (c *SettlementController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/settlements/invoice", c.settleInvoice)
	mux.HandleFunc("POST /api/v1/settlements/order", c.settleOrder)
	mux.HandleFunc("POST /api/v1/transfers/peer", c.peerTransfer)
	mux.HandleFunc("POST /api/v1/payment-links", c.createPaymentLink)
	mux.HandleFunc("POST /api/v1/payment-links/settle", c.settlePaymentLink)
}

func (c *SettlementController) settleInvoice(w http.ResponseWriter, r *http.Request) {
	var request models.SettleInvoiceRequest
	if err := decodeJSON(r, &request); err != nil {
		badRequest[models.TransactionResponse](w, "malformed request body", err)
		return
	}
	if err := request.Validate(); err != nil {
		badRequest[models.TransactionResponse](w, "invalid settlement request", err)
		return
	}

	response, err := c.settlements.SettleInvoice(r.Context(), request)
	respond(w, statusFromError(err), response)
}

func (c *SettlementController) settleOrder(w http.ResponseWriter, r *http.Request) {
	var request models.SettleOrderRequest
	if err := decodeJSON(r, &request); err != nil {
		badRequest[models.TransactionResponse](w, "malformed request body", err)
		return
	}
	if err := request.Validate(); err != nil {
		badRequest[models.TransactionResponse](w, "invalid settlement request", err)
		return
	}

	response, err := c.settlements.SettleOrder(r.Context(), request)
	respond(w, statusFromError(err), response)
}

func (c *SettlementController) peerTransfer(w http.ResponseWriter, r *http.Request) {
	var request models.PeerTransferRequest
	if err := decodeJSON(r, &request); err != nil {
		badRequest[models.TransactionResponse](w, "malformed request body", err)
		return
	}
	if err := request.Validate(); err != nil {
		badRequest[models.TransactionResponse](w, "invalid transfer request", err)
		return
	}

	response, err := c.settlements.PeerTransfer(r.Context(), request)
	respond(w, statusFromError(err), response)
}

func (c *SettlementController) createPaymentLink(w http.ResponseWriter, r *http.Request) {
	var request models.CreatePaymentLinkRequest
	if err := decodeJSON(r, &request); err != nil {
		badRequest[models.PaymentLinkResponse](w, "malformed request body", err)
		return
	}
	if err := request.Validate(); err != nil {
		badRequest[models.PaymentLinkResponse](w, "invalid payment link request", err)
		return
	}

	response, err := c.settlements.CreatePaymentLink(r.Context(), request)
	respond(w, statusFromError(err), response)
}

func (c *SettlementController) settlePaymentLink(w http.ResponseWriter, r *http.Request) {
	var request models.SettlePaymentLinkRequest
	if err := decodeJSON(r, &request); err != nil {
		badRequest[models.TransactionResponse](w, "malformed request body", err)
		return
	}
	if err := request.Validate(); err != nil {
		badRequest[models.TransactionResponse](w, "invalid payment link request", err)
		return
	}

	response, err := c.settlements.SettlePaymentLink(r.Context(), request)
	respond(w, statusFromError(err), response)
}
