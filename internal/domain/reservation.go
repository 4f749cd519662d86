package domain

// Reservation is the token returned by a successful share reservation.
// It is valid for the remainder of the allocation transaction; a caller
// that cannot complete the allocation must release it so the property's
// available shares never leak.
type Reservation struct {
	PropertyID string
	Quantity   int64
	// Funded is true when this reservation took the last available
	// shares and flipped the property to funded.
	Funded bool
}
