package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	WebhookStatusSuccessful = "SUCCESSFUL"
	WebhookStatusFailed     = "FAILED"
)

// ProviderWebhookRequest is the provider's settlement confirmation for a
// pending top-up, matched by the stored provider reference.
type ProviderWebhookRequest struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
}

func (r ProviderWebhookRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Reference) == "" {
		errs = append(errs, "reference is required")
	}
	status := strings.ToUpper(strings.TrimSpace(r.Status))
	if status != WebhookStatusSuccessful && status != WebhookStatusFailed {
		errs = append(errs, "status must be SUCCESSFUL or FAILED")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
