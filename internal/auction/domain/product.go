package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a harvested lot listed by a seller. The engine only reads it,
// except for the quantity write-back at settlement.
type Product struct {
	Seller     uuid.UUID
	ID         uuid.UUID
	Type       string
	Region     string
	Price      int64 // listed unit price, currency smallest unit
	Quantity   int64
	ExpiryDate time.Time
}

// Expired reports whether the lot is past its expiry at the given instant.
func (p *Product) Expired(now time.Time) bool {
	return !now.Before(p.ExpiryDate)
}
