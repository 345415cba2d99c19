package domain

import "time"

type LinkDomainType string

const (
	LinkDomainInvoice LinkDomainType = "invoice"
	LinkDomainOrder   LinkDomainType = "order"
)

// PaymentLink defers a settlement until the payer has completed identity
// resolution out-of-band. The token is opaque; settlement is re-invoked
// against the bound document once a payer id is known.
type PaymentLink struct {
	Token      string
	DomainID   string
	DomainType LinkDomainType
	CreatedAt  time.Time
	SettledAt  *time.Time
}
