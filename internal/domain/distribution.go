package domain

import "time"

// DistributionRun records one pro-rata payout of property income.
// (PropertyID, PeriodID) uniquely identifies a run and makes re-runs
// idempotent. RemainderCents is the sum lost to per-investor rounding;
// it is retained as platform revenue and reported, never dropped.
type DistributionRun struct {
	ID               string
	PropertyID       string
	PeriodID         string
	TotalAmount      int64
	DistributedCents int64
	RemainderCents   int64
	InvestorsPaid    int
	CreatedAt        time.Time
}

// ReferenceID builds the idempotency key for one investment's credit
// within this run.
func (r *DistributionRun) ReferenceID(investmentID string) string {
	return r.PropertyID + ":" + r.PeriodID + ":" + investmentID
}
