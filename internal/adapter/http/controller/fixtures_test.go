package controller_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/domain"
)

func accountFixture(id, email, balance string) domain.Account {
	return domain.Account{
		ID:            id,
		Email:         email,
		WalletBalance: decimal.RequireFromString(balance),
		IsActive:      true,
	}
}

func companyFixture(id, ownerID string) domain.Company {
	return domain.Company{ID: id, OwnerID: ownerID, Name: "Co " + id}
}

func invoiceFixture(id, companyID, total string) domain.Invoice {
	return domain.Invoice{
		ID:        id,
		CompanyID: companyID,
		Total:     decimal.RequireFromString(total),
		Status:    domain.InvoiceStatusSent,
		DueDate:   time.Now().Add(24 * time.Hour),
	}
}
