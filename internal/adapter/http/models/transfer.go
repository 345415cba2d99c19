package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var allowedSourceApps = []string{
	"wallet",
	"invoicing",
	"inventory",
}

type TransferRequest struct {
	PayerID     string          `json:"payerId"`
	ReceiverID  string          `json:"receiverId"`
	Amount      decimal.Decimal `json:"amount"`
	SourceApp   string          `json:"sourceApp"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.PayerID) == "" {
		errs = append(errs, "payerId is required")
	}
	if strings.TrimSpace(r.ReceiverID) == "" {
		errs = append(errs, "receiverId is required")
	}
	if strings.TrimSpace(r.PayerID) != "" && strings.TrimSpace(r.PayerID) == strings.TrimSpace(r.ReceiverID) {
		errs = append(errs, "payerId and receiverId cannot be the same")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if !isAllowedSourceApp(strings.TrimSpace(r.SourceApp)) {
		errs = append(errs, "sourceApp is not supported")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type PeerTransferRequest struct {
	PayerID       string          `json:"payerId"`
	ReceiverEmail string          `json:"receiverEmail"`
	Amount        decimal.Decimal `json:"amount"`
	SourceApp     string          `json:"sourceApp"`
	Description   string          `json:"description"`
}

func (r PeerTransferRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.PayerID) == "" {
		errs = append(errs, "payerId is required")
	}
	if !strings.Contains(strings.TrimSpace(r.ReceiverEmail), "@") {
		errs = append(errs, "receiverEmail must be a valid email address")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// TransactionResponse is the uniform success payload for every
// settlement operation.
type TransactionResponse struct {
	TransactionID string           `json:"transactionId"`
	PayerID       string           `json:"payerId"`
	ReceiverID    string           `json:"receiverId"`
	Amount        *decimal.Decimal `json:"amount"`
	Type          string           `json:"type"`
	Status        string           `json:"status"`
	SourceApp     string           `json:"sourceApp,omitempty"`
	Description   string           `json:"description,omitempty"`
}

func isAllowedSourceApp(value string) bool {
	for _, allowed := range allowedSourceApps {
		if strings.EqualFold(allowed, value) {
			return true
		}
	}
	return false
}
