package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting is the input to one indivisible ledger unit: debit payer
// (unless SkipDebit), credit receiver, insert the transaction record and
// append the outbox events. Either everything in a posting is applied or
// nothing is.
type Posting struct {
	TransactionID string
	PayerID       string
	ReceiverID    string
	CompanyID     *string
	Amount        decimal.Decimal
	Type          TransactionType
	SourceApp     string
	Description   string
	Metadata      Metadata
	// SkipDebit marks a degenerate self-transfer (wallet top-up): the
	// payer and receiver are the same account and only the credit is
	// applied.
	SkipDebit bool
	Events    []OutboxEvent
}

// InvoiceSettlement couples a ledger posting with the invoice patch that
// must commit in the same atomic unit. The invoice status is re-checked
// under the same lock that performs the transfer.
type InvoiceSettlement struct {
	InvoiceID string
	Posting   Posting
	Now       time.Time
}

// OrderSettlement couples a ledger posting with the order patch and the
// stock decrements. Stock sufficiency is validated over the full item
// list before any decrement is applied.
type OrderSettlement struct {
	OrderID string
	PayerID string
	Posting Posting
	Now     time.Time
}
