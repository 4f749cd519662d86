package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"EGP", "USD", "EUR", "SAR", "AED"} {
		if err := ValidateCurrency(code); err != nil {
			t.Fatalf("expected %q to be valid, got %v", code, err)
		}
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}

	// Codes are case sensitive.
	if err := ValidateCurrency("egp"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency for lowercase code, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(10_025); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(-100); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	if err := ValidateAmount(MaxTransactionCents + 1); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}

	if err := ValidateAmount(MaxTransactionCents); err != nil {
		t.Fatalf("expected maximum amount to be valid, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults applied", 0, 0, DefaultPageLimit, 0},
		{"negative limit defaulted", -5, 0, DefaultPageLimit, 0},
		{"limit clamped to max", 500, 0, MaxPageLimit, 0},
		{"negative offset zeroed", 10, -3, 10, 0},
		{"valid passthrough", 50, 100, 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset, err := ValidatePagination(tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	t.Parallel()

	if err := ValidateID("01HZXW5T4V8B2M3N4P5Q6R7S8T"); err != nil {
		t.Fatalf("expected ULID-length ID to be valid, got %v", err)
	}

	if err := ValidateID("short"); !errors.Is(err, ErrInvalidIDFormat) {
		t.Fatalf("expected ErrInvalidIDFormat, got %v", err)
	}

	tooLong := strings.Repeat("0", 27)
	if err := ValidateID(tooLong); !errors.Is(err, ErrInvalidIDFormat) {
		t.Fatalf("expected ErrInvalidIDFormat, got %v", err)
	}
}
