package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is identity-addressed: only the customer it names may settle it.
// Settling an order is the only path that decrements product stock.
type Order struct {
	ID                   string
	CompanyID            string
	CustomerID           string
	Items                []LineItem
	Subtotal             decimal.Decimal
	Tax                  decimal.Decimal
	Total                decimal.Decimal
	Status               OrderStatus
	PaidAt               *time.Time
	PaymentTransactionID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Payable reports whether the order can still be settled.
func (o Order) Payable() error {
	switch o.Status {
	case OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered:
		return ErrAlreadySettled
	case OrderStatusCancelled:
		return ErrCancelled
	}
	return nil
}
