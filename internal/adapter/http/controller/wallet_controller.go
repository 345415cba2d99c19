package controller

import (
	"net/http"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/usecase/service_interfaces"
)

type WalletController struct {
	ledger service_interfaces.LedgerService
}

func NewWalletController(ledger service_interfaces.LedgerService) *WalletController {
	return &WalletController{ledger: ledger}
}

func (c *WalletController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/transfers", c.transfer)
	mux.HandleFunc("POST /api/v1/wallet/topup", c.topUp)
	mux.HandleFunc("GET /api/v1/transactions/{id}", c.getTransaction)
}

func (c *WalletController) transfer(w http.ResponseWriter, r *http.Request) {
	var request models.TransferRequest
	if err := decodeJSON(r, &request); err != nil {
		badRequest[models.TransactionResponse](w, "malformed request body", err)
		return
	}
	if err := request.Validate(); err != nil {
		badRequest[models.TransactionResponse](w, "invalid transfer request", err)
		return
	}

	response, err := c.ledger.TransferFunds(r.Context(), request)
	respond(w, statusFromError(err), response)
}

func (c *WalletController) topUp(w http.ResponseWriter, r *http.Request) {
	var request models.TopUpRequest
	if err := decodeJSON(r, &request); err != nil {
		badRequest[models.TransactionResponse](w, "malformed request body", err)
		return
	}
	if err := request.Validate(); err != nil {
		badRequest[models.TransactionResponse](w, "invalid top-up request", err)
		return
	}

	response, err := c.ledger.TopUpWallet(r.Context(), request)
	respond(w, statusFromError(err), response)
}

func (c *WalletController) getTransaction(w http.ResponseWriter, r *http.Request) {
	response, err := c.ledger.GetTransaction(r.Context(), r.PathValue("id"))
	respond(w, statusFromError(err), response)
}
