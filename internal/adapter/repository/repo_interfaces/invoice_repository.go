package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/settlement-core/internal/domain"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice domain.Invoice) (domain.Invoice, error)
	GetByID(ctx context.Context, id string) (domain.Invoice, error)

	// Settle re-checks the invoice status inside the same atomic unit
	// that performs the ledger posting and the paid patch, so concurrent
	// settlements of one invoice yield exactly one success.
	Settle(ctx context.Context, settlement domain.InvoiceSettlement) (domain.Transaction, error)

	// MarkPaid is the idempotent reconciliation patch: flipping an
	// already-paid invoice is a no-op and returns false.
	MarkPaid(ctx context.Context, invoiceID, transactionID string, paidAt time.Time) (bool, error)
}
