package domain

import "github.com/shopspring/decimal"

// OwnershipScale converts shares into ownership percentage units.
// Ownership is stored as an integer number of 0.0001% units, so a fully
// owned property is 1_000_000 units (100.0000%).
const OwnershipScale = 1_000_000

// ProcessingFeeMode selects how the processing fee is computed.
type ProcessingFeeMode string

const (
	ProcessingFeeFlat       ProcessingFeeMode = "flat"
	ProcessingFeePercentage ProcessingFeeMode = "percentage"
)

// FeePolicy is the configured fee schedule applied to every quote.
// Percentages are basis points (1bp = 0.01%).
type FeePolicy struct {
	PlatformFeeBps    int64
	ProcessingFeeMode ProcessingFeeMode
	ProcessingFeeBps  int64
	ProcessingFlatFee int64
}

// Quote is the priced breakdown of an investment request. All monetary
// fields are integer cents.
type Quote struct {
	PropertyID       string
	NumberOfShares   int64
	InvestmentAmount int64
	PlatformFee      int64
	ProcessingFee    int64
	TotalAmount      int64
	// OwnershipUnits is the resulting ownership in 0.0001% units,
	// truncated so ownership is never over-reported.
	OwnershipUnits int64
}

// OwnershipPercent renders ownership units as a percentage with four
// decimal places.
func (q *Quote) OwnershipPercent() decimal.Decimal {
	return OwnershipPercent(q.OwnershipUnits)
}

// OwnershipPercent renders 0.0001% ownership units as a percentage.
func OwnershipPercent(units int64) decimal.Decimal {
	return decimal.New(units, -4)
}

// CalculateQuote prices numberOfShares of the property under policy.
// Pure: no side effects, safe to call repeatedly for previews.
func CalculateQuote(p *Property, numberOfShares int64, policy FeePolicy) (*Quote, error) {
	if numberOfShares < 1 {
		return nil, ErrInvalidQuantity
	}
	if numberOfShares > p.AvailableShares {
		return nil, ErrInsufficientShares
	}

	investmentAmount := numberOfShares * p.SharePriceCents
	platformFee := applyBps(investmentAmount, policy.PlatformFeeBps)

	var processingFee int64
	switch policy.ProcessingFeeMode {
	case ProcessingFeePercentage:
		processingFee = applyBps(investmentAmount, policy.ProcessingFeeBps)
	default:
		processingFee = policy.ProcessingFlatFee
	}

	return &Quote{
		PropertyID:       p.ID,
		NumberOfShares:   numberOfShares,
		InvestmentAmount: investmentAmount,
		PlatformFee:      platformFee,
		ProcessingFee:    processingFee,
		TotalAmount:      investmentAmount + platformFee + processingFee,
		OwnershipUnits:   numberOfShares * OwnershipScale / p.TotalShares,
	}, nil
}

// applyBps computes amount x bps/10000 in cents, rounding half-up.
func applyBps(amount, bps int64) int64 {
	return (amount*bps + 5_000) / 10_000
}

// ProRataShare computes the portion of totalAmount owed to an ownership
// position, rounding half-up to the nearest cent.
func ProRataShare(totalAmount, ownershipUnits int64) int64 {
	amt := decimal.NewFromInt(totalAmount).
		Mul(decimal.New(ownershipUnits, 0)).
		DivRound(decimal.NewFromInt(OwnershipScale), 0)
	return amt.IntPart()
}
