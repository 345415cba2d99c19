package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// LineItem is a single billable line on an invoice or order.
// Total is always Quantity * Rate.
type LineItem struct {
	ID        string
	ProductID string
	Name      string
	Quantity  int64
	Rate      decimal.Decimal
	Total     decimal.Decimal
}

// Invoice is addressed by email, not identity: any active account may
// settle it. PaymentTransactionID is set if and only if Status is paid.
type Invoice struct {
	ID                   string
	CompanyID            string
	ClientEmail          string
	Items                []LineItem
	Subtotal             decimal.Decimal
	Tax                  decimal.Decimal
	Total                decimal.Decimal
	Status               InvoiceStatus
	DueDate              time.Time
	PaidAt               *time.Time
	PaymentTransactionID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Payable reports whether the invoice can still be settled at the given
// instant. It mirrors the authoritative in-transaction check.
func (i Invoice) Payable(now time.Time) error {
	switch i.Status {
	case InvoiceStatusPaid:
		return ErrAlreadySettled
	case InvoiceStatusCancelled:
		return ErrCancelled
	}
	if now.After(i.DueDate) {
		return ErrExpired
	}
	return nil
}
