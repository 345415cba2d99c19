package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	GetByID(ctx context.Context, id string) (domain.Order, error)

	// Settle re-checks order status and stock under the same lock that
	// performs the decrements, the ledger posting and the paid patch.
	// Stock is validated across the full item list before any decrement.
	Settle(ctx context.Context, settlement domain.OrderSettlement) (domain.Transaction, error)

	// MarkPaid is the idempotent reconciliation patch; returns false
	// when the order is already paid.
	MarkPaid(ctx context.Context, orderID, transactionID string, paidAt time.Time) (bool, error)
}
