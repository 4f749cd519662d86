package domain

import "time"

// PropertyStatus is the lifecycle state of a property offering.
type PropertyStatus string

const (
	PropertyStatusComingSoon PropertyStatus = "coming_soon"
	PropertyStatusAvailable  PropertyStatus = "available"
	PropertyStatusFunded     PropertyStatus = "funded"
	PropertyStatusExited     PropertyStatus = "exited"
)

// Property represents a fixed-supply real-estate offering.
// AvailableShares is the authoritative counter; it mutates only through
// the inventory reservation calls, never directly.
type Property struct {
	ID              string
	Name            string
	Currency        string
	TotalShares     int64
	AvailableShares int64
	SharePriceCents int64
	Status          PropertyStatus
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanReserve checks whether quantity shares can be taken from this
// property. It is an advisory pre-check; the repository decrement is the
// authority under concurrency.
func (p *Property) CanReserve(quantity int64) error {
	if p.Status != PropertyStatusAvailable {
		return ErrPropertyNotOpen
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > p.AvailableShares {
		return ErrInsufficientShares
	}
	return nil
}
