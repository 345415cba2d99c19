package gate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/domain"
)

// Result is the outcome of a single side-effect-free business-rule check.
// Err carries the matching domain error so callers can short-circuit
// without re-mapping reasons.
type Result struct {
	Valid  bool
	Reason string
	Err    error
}

func ok() Result {
	return Result{Valid: true}
}

func fail(reason string, err error) Result {
	return Result{Reason: reason, Err: err}
}

// CheckAmount enforces 0 < amount <= ceiling.
func CheckAmount(amount, ceiling decimal.Decimal) Result {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fail("amount must be greater than zero", domain.ErrInvalidAmount)
	}
	if amount.GreaterThan(ceiling) {
		return fail("amount exceeds the transaction ceiling", domain.ErrInvalidAmount)
	}
	return ok()
}

// CheckInvoicePayable rejects invoices that are already paid, cancelled
// or past their due date.
func CheckInvoicePayable(invoice domain.Invoice, now time.Time) Result {
	if err := invoice.Payable(now); err != nil {
		return fail(err.Error(), err)
	}
	return ok()
}

// CheckOrderPayable rejects orders that are already settled or cancelled
// and enforces the customer-ownership rule.
func CheckOrderPayable(order domain.Order, payerID string) Result {
	if order.CustomerID != payerID {
		return fail("payer does not own this order", domain.ErrOwnershipMismatch)
	}
	if err := order.Payable(); err != nil {
		return fail(err.Error(), err)
	}
	return ok()
}

// CheckStock validates the full item list before any decrement is
// applied: a multi-item order must not partially decrement then fail.
func CheckStock(items []domain.LineItem, products map[string]domain.Product) Result {
	for _, item := range items {
		product, found := products[item.ProductID]
		if !found {
			return fail("product not found: "+item.ProductID, domain.ErrNotFound)
		}
		if !product.IsActive {
			return fail("product is not active: "+item.ProductID, domain.ErrInsufficientStock)
		}
		if product.Quantity < item.Quantity {
			return fail("insufficient stock for product: "+item.ProductID, domain.ErrInsufficientStock)
		}
	}
	return ok()
}
