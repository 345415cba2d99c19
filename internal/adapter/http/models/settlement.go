package models

import (
	"errors"
	"strings"
)

type SettleInvoiceRequest struct {
	InvoiceID string `json:"invoiceId"`
	PayerID   string `json:"payerId"`
}

func (r SettleInvoiceRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.InvoiceID) == "" {
		errs = append(errs, "invoiceId is required")
	}
	if strings.TrimSpace(r.PayerID) == "" {
		errs = append(errs, "payerId is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type SettleOrderRequest struct {
	OrderID string `json:"orderId"`
	PayerID string `json:"payerId"`
}

func (r SettleOrderRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.OrderID) == "" {
		errs = append(errs, "orderId is required")
	}
	if strings.TrimSpace(r.PayerID) == "" {
		errs = append(errs, "payerId is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
