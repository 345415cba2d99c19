package domain

import "time"

// Product stock decreases only through a successful order settlement and
// never below zero; an insufficient line aborts the whole settlement.
type Product struct {
	ID                string
	CompanyID         string
	Name              string
	Quantity          int64
	LowStockThreshold int64
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LowStock reports whether the product has fallen to or below its
// restock threshold.
func (p Product) LowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}
