package domain

import "time"

// FundingSource is where the money for an investment comes from.
type FundingSource string

const (
	// FundingSourceWallet debits the investor's wallet immediately.
	FundingSourceWallet FundingSource = "wallet"
	// FundingSourceExternal settles later through bank transfer, Fawry
	// or card; the investment stays pending until confirmation.
	FundingSourceExternal FundingSource = "external"
)

// InvestmentStatus is the lifecycle state of an investment.
type InvestmentStatus string

const (
	InvestmentStatusPending   InvestmentStatus = "pending"
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// Investment is an allocated (or pending) block of property shares.
// Monetary fields are integer cents; OwnershipUnits is 0.0001% units.
// Immutable once active except for status transitions.
type Investment struct {
	ID               string
	PropertyID       string
	UserID           string
	NumberOfShares   int64
	InvestmentAmount int64
	PlatformFee      int64
	ProcessingFee    int64
	TotalAmount      int64
	OwnershipUnits   int64
	FundingSource    FundingSource
	Status           InvestmentStatus
	// PaymentTransactionID links the wallet transaction that funded
	// (or will fund) this investment.
	PaymentTransactionID string
	// ExpiresAt bounds how long a pending external-payment investment
	// may hold its share reservation before the sweep releases it.
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether a pending investment has outlived its
// reservation window.
func (i *Investment) Expired(now time.Time) bool {
	return i.Status == InvestmentStatusPending && i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}
