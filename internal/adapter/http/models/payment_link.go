package models

import (
	"errors"
	"strings"
)

type CreatePaymentLinkRequest struct {
	DomainID   string `json:"domainId"`
	DomainType string `json:"domainType"`
}

func (r CreatePaymentLinkRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.DomainID) == "" {
		errs = append(errs, "domainId is required")
	}
	domainType := strings.ToLower(strings.TrimSpace(r.DomainType))
	if domainType != "invoice" && domainType != "order" {
		errs = append(errs, "domainType must be invoice or order")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type SettlePaymentLinkRequest struct {
	Token   string `json:"token"`
	PayerID string `json:"payerId"`
}

func (r SettlePaymentLinkRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Token) == "" {
		errs = append(errs, "token is required")
	}
	if strings.TrimSpace(r.PayerID) == "" {
		errs = append(errs, "payerId is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type PaymentLinkResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}
