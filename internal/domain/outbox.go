package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventKindTransactionCreated EventKind = "transaction_created"
	EventKindInvoicePaid        EventKind = "invoice_paid"
	EventKindOrderPaid          EventKind = "order_paid"
	EventKindTopUpCompleted     EventKind = "topup_completed"
	EventKindTopUpFailed        EventKind = "topup_failed"
)

// OutboxEvent is written in the same atomic unit as the settlement it
// describes and drained asynchronously. Delivery is at-least-once;
// consumers tolerate duplicates.
type OutboxEvent struct {
	ID           string
	Kind         EventKind
	Payload      json.RawMessage
	CreatedAt    time.Time
	DispatchedAt *time.Time
}

// EventPayload carries everything the notifier needs to address and
// template a notification without re-reading settlement state.
type EventPayload struct {
	NotifyUserID  string `json:"notifyUserId"`
	TransactionID string `json:"transactionId"`
	PayerID       string `json:"payerId,omitempty"`
	ReceiverID    string `json:"receiverId,omitempty"`
	InvoiceID     string `json:"invoiceId,omitempty"`
	OrderID       string `json:"orderId,omitempty"`
	Amount        string `json:"amount"`
	SourceApp     string `json:"sourceApp,omitempty"`
}

func (p EventPayload) Encode() json.RawMessage {
	raw, err := json.Marshal(p)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}

// DecodeEventPayload parses an outbox payload back into its struct form.
func DecodeEventPayload(raw json.RawMessage) (EventPayload, error) {
	var p EventPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return EventPayload{}, fmt.Errorf("decode outbox payload: %w", err)
	}
	return p, nil
}

// NewTransactionCreatedEvent notifies the receiving account of an
// incoming value movement.
func NewTransactionCreatedEvent(txnID, payerID, receiverID string, amount decimal.Decimal, sourceApp string) OutboxEvent {
	return OutboxEvent{
		Kind: EventKindTransactionCreated,
		Payload: EventPayload{
			NotifyUserID:  receiverID,
			TransactionID: txnID,
			PayerID:       payerID,
			ReceiverID:    receiverID,
			Amount:        amount.String(),
			SourceApp:     sourceApp,
		}.Encode(),
	}
}

// NewInvoicePaidEvent notifies the company owner that an invoice flipped
// to paid.
func NewInvoicePaidEvent(invoiceID, ownerID, payerID, txnID string, amount decimal.Decimal) OutboxEvent {
	return OutboxEvent{
		Kind: EventKindInvoicePaid,
		Payload: EventPayload{
			NotifyUserID:  ownerID,
			TransactionID: txnID,
			PayerID:       payerID,
			InvoiceID:     invoiceID,
			Amount:        amount.String(),
		}.Encode(),
	}
}

// NewOrderPaidEvent notifies the company owner that an order flipped to
// paid.
func NewOrderPaidEvent(orderID, ownerID, customerID, txnID string, amount decimal.Decimal) OutboxEvent {
	return OutboxEvent{
		Kind: EventKindOrderPaid,
		Payload: EventPayload{
			NotifyUserID:  ownerID,
			TransactionID: txnID,
			PayerID:       customerID,
			OrderID:       orderID,
			Amount:        amount.String(),
		}.Encode(),
	}
}

// NewTopUpEvent notifies the topped-up account of the provider outcome.
func NewTopUpEvent(kind EventKind, userID, txnID string, amount decimal.Decimal) OutboxEvent {
	return OutboxEvent{
		Kind: kind,
		Payload: EventPayload{
			NotifyUserID:  userID,
			TransactionID: txnID,
			ReceiverID:    userID,
			Amount:        amount.String(),
		}.Encode(),
	}
}
