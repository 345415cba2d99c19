package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeWalletTopUp     TransactionType = "wallet_topup"
	TransactionTypeInvoicePayment  TransactionType = "invoice_payment"
	TransactionTypeProductPurchase TransactionType = "product_purchase"
	TransactionTypeTransfer        TransactionType = "transfer"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction is the immutable ledger record of a single value movement.
// Once Status reaches completed no field may change.
type Transaction struct {
	ID          string
	PayerID     string
	ReceiverID  string
	CompanyID   *string
	Amount      decimal.Decimal
	Type        TransactionType
	Status      TransactionStatus
	SourceApp   string
	Description string
	Metadata    Metadata
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// Metadata is the per-type correlation payload of a transaction. It is a
// closed set: one concrete shape per TransactionType, so consumers can
// switch exhaustively instead of probing an open map.
type Metadata interface {
	TransactionType() TransactionType
}

type InvoiceMetadata struct {
	InvoiceID string `json:"invoiceId"`
}

func (InvoiceMetadata) TransactionType() TransactionType { return TransactionTypeInvoicePayment }

type OrderMetadata struct {
	OrderID string `json:"orderId"`
}

func (OrderMetadata) TransactionType() TransactionType { return TransactionTypeProductPurchase }

type TopUpMetadata struct {
	Method            string `json:"paymentMethod"`
	ProviderReference string `json:"reference,omitempty"`
}

func (TopUpMetadata) TransactionType() TransactionType { return TransactionTypeWalletTopUp }

type TransferMetadata struct {
	Reference     string `json:"reference,omitempty"`
	ReceiverEmail string `json:"receiverEmail,omitempty"`
}

func (TransferMetadata) TransactionType() TransactionType { return TransactionTypeTransfer }

// EncodeMetadata serializes a metadata value for persistence. A nil value
// encodes as an empty JSON object.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return []byte(`{}`), nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode transaction metadata: %w", err)
	}
	return raw, nil
}

// DecodeMetadata restores the concrete metadata shape for a transaction
// type. Unknown types are rejected rather than decoded loosely.
func DecodeMetadata(txType TransactionType, raw []byte) (Metadata, error) {
	if len(raw) == 0 {
		raw = []byte(`{}`)
	}

	switch txType {
	case TransactionTypeInvoicePayment:
		var m InvoiceMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode invoice metadata: %w", err)
		}
		return m, nil
	case TransactionTypeProductPurchase:
		var m OrderMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode order metadata: %w", err)
		}
		return m, nil
	case TransactionTypeWalletTopUp:
		var m TopUpMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode top-up metadata: %w", err)
		}
		return m, nil
	case TransactionTypeTransfer:
		var m TransferMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode transfer metadata: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown transaction type %q", txType)
	}
}
