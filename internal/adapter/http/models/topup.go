package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var allowedTopUpMethods = []string{
	"card",
	"bank_transfer",
	"mobile_money",
}

type TopUpRequest struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	// ProviderReference marks the top-up as asynchronous: the credit is
	// deferred until the provider webhook confirms it.
	ProviderReference string `json:"providerReference"`
}

func (r TopUpRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.UserID) == "" {
		errs = append(errs, "userId is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if !isAllowedTopUpMethod(strings.TrimSpace(r.Method)) {
		errs = append(errs, "method is not supported")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isAllowedTopUpMethod(value string) bool {
	for _, allowed := range allowedTopUpMethods {
		if strings.EqualFold(allowed, value) {
			return true
		}
	}
	return false
}
