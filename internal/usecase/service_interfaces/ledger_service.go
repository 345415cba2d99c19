package service_interfaces

import (
	"context"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/commons"
)

// LedgerService exposes the direct wallet operations: transfers between
// known accounts, top-ups and the provider callback that completes a
// pending top-up.
type LedgerService interface {
	TransferFunds(ctx context.Context, request models.TransferRequest) (commons.Response[models.TransactionResponse], error)
	TopUpWallet(ctx context.Context, request models.TopUpRequest) (commons.Response[models.TransactionResponse], error)
	HandleProviderWebhook(ctx context.Context, request models.ProviderWebhookRequest) (commons.Response[models.TransactionResponse], error)
	GetTransaction(ctx context.Context, transactionID string) (commons.Response[models.TransactionResponse], error)
}
