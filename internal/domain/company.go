package domain

import "time"

// Company owns invoices, orders and products. Its owner account receives
// every payment made against them.
type Company struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
}
