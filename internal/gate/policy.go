package gate

import (
	"context"

	"github.com/api-sage/settlement-core/internal/domain"
)

// InvoicePolicy: invoices are email-addressed, so any authenticated
// principal may settle one. Order settlement is the identity-bound path.
type InvoicePolicy struct{}

func (InvoicePolicy) Can(_ context.Context, principalID string, action Action, _ any) bool {
	return action == ActionSettle && principalID != ""
}

// OrderPolicy: only the customer an order names may settle it.
type OrderPolicy struct{}

func (OrderPolicy) Can(_ context.Context, principalID string, action Action, resource any) bool {
	if action != ActionSettle {
		return false
	}
	order, ok := resource.(domain.Order)
	if !ok {
		return false
	}
	return order.CustomerID == principalID
}

// WalletPolicy: a principal may only top up or transfer out of their own
// wallet.
type WalletPolicy struct{}

func (WalletPolicy) Can(_ context.Context, principalID string, action Action, resource any) bool {
	if action != ActionTopUp && action != ActionTransfer {
		return false
	}
	ownerID, ok := resource.(string)
	if !ok {
		return false
	}
	return ownerID == principalID
}

// Default returns a gate with the standard settlement policies
// registered.
func Default() *Gate {
	g := New()
	g.Register("invoice", InvoicePolicy{})
	g.Register("order", OrderPolicy{})
	g.Register("wallet", WalletPolicy{})
	return g
}
