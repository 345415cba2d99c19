package service_interfaces

import (
	"context"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/commons"
)

// SettlementService coordinates document settlements: it resolves the
// parties, runs the gate checks and hands the assembled posting to the
// repository's atomic unit.
type SettlementService interface {
	SettleInvoice(ctx context.Context, request models.SettleInvoiceRequest) (commons.Response[models.TransactionResponse], error)
	SettleOrder(ctx context.Context, request models.SettleOrderRequest) (commons.Response[models.TransactionResponse], error)
	PeerTransfer(ctx context.Context, request models.PeerTransferRequest) (commons.Response[models.TransactionResponse], error)
	CreatePaymentLink(ctx context.Context, request models.CreatePaymentLinkRequest) (commons.Response[models.PaymentLinkResponse], error)
	SettlePaymentLink(ctx context.Context, request models.SettlePaymentLinkRequest) (commons.Response[models.TransactionResponse], error)
}
