package domain

import "time"

// Event types
const (
	EventTypeInvestmentConfirmed  = "investment.confirmed"
	EventTypeInvestmentCancelled  = "investment.cancelled"
	EventTypeDistributionReceived = "distribution.received"
	EventTypeDepositSettled       = "deposit.settled"
	EventTypeWithdrawalSettled    = "withdrawal.settled"
	EventTypePropertyFunded       = "property.funded"
)

// Aggregate types
const (
	AggregateTypeInvestment   = "investment"
	AggregateTypeWallet       = "wallet"
	AggregateTypeProperty     = "property"
	AggregateTypeDistribution = "distribution"
)

// OutboxEvent represents a notification event to be published. Events
// are written in the same transaction as the ledger change that caused
// them; delivery failures never roll the ledger back.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// InvestmentConfirmedEvent payload
type InvestmentConfirmedEvent struct {
	InvestmentID   string `json:"investment_id"`
	PropertyID     string `json:"property_id"`
	UserID         string `json:"user_id"`
	NumberOfShares int64  `json:"number_of_shares"`
	TotalAmount    int64  `json:"total_amount"`
}

// DistributionReceivedEvent payload
type DistributionReceivedEvent struct {
	PropertyID   string `json:"property_id"`
	PeriodID     string `json:"period_id"`
	InvestmentID string `json:"investment_id"`
	UserID       string `json:"user_id"`
	Amount       int64  `json:"amount"`
}

// DepositSettledEvent payload
type DepositSettledEvent struct {
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	Amount        int64  `json:"amount"`
	Outcome       string `json:"outcome"`
}
