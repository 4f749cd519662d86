package domain

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrAmountTooLarge  = errors.New("amount exceeds maximum allowed")
	ErrInvalidIDFormat = errors.New("invalid ID format")
)

// Validation constants
const (
	// MaxTransactionCents caps a single wallet movement (1 billion in
	// major units).
	MaxTransactionCents = int64(100_000_000_000)

	DefaultPageLimit = 20
	MaxPageLimit     = 100

	ulidLength = 26
)

// Supported settlement currencies.
var validCurrencies = map[string]bool{
	"EGP": true, "USD": true, "EUR": true, "SAR": true, "AED": true,
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(code string) error {
	if !validCurrencies[code] {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return nil
}

// ValidateAmount checks a monetary amount in cents.
func ValidateAmount(cents int64) error {
	if cents <= 0 {
		return ErrInvalidAmount
	}
	if cents > MaxTransactionCents {
		return ErrAmountTooLarge
	}
	return nil
}

// ValidatePagination clamps limit/offset to sane bounds.
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, nil
}

// ValidateID checks that an ID looks like a ULID.
func ValidateID(id string) error {
	if len(id) != ulidLength {
		return ErrInvalidIDFormat
	}
	return nil
}
