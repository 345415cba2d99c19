package domain

import "time"

type NotificationKind string

const (
	NotificationKindPaymentReceived NotificationKind = "payment_received"
	NotificationKindPaymentSent     NotificationKind = "payment_sent"
	NotificationKindInvoicePaid     NotificationKind = "invoice_paid"
	NotificationKindOrderPaid       NotificationKind = "order_paid"
	NotificationKindTopUpCompleted  NotificationKind = "topup_completed"
	NotificationKindTopUpFailed     NotificationKind = "topup_failed"
)

// Notification is append-only. Only the receiving user flips Read; the
// settlement core never mutates a notification after creating it.
type Notification struct {
	ID        string
	UserID    string
	Kind      NotificationKind
	Title     string
	Message   string
	SourceApp string
	Read      bool
	CreatedAt time.Time
}
