package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the wallet-bearing subset of a user as supplied by the
// identity provider. The balance is mutated exclusively by ledger
// postings; no other write path is permitted.
type Account struct {
	ID            string
	Email         string
	WalletBalance decimal.Decimal
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
