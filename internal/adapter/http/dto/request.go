package dto

import (
	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

// CreatePropertyRequest represents a request to list a new offering.
type CreatePropertyRequest struct {
	Name            string `json:"name"`
	Currency        string `json:"currency"`
	TotalShares     int64  `json:"total_shares"`
	SharePriceCents int64  `json:"share_price_cents"`
	Status          string `json:"status,omitempty"`
}

// OpenAccountRequest represents a request to open a wallet account.
type OpenAccountRequest struct {
	Currency string `json:"currency"`
}

// InvestRequest represents a request to invest in a property.
type InvestRequest struct {
	PropertyID     string `json:"property_id"`
	NumberOfShares int64  `json:"number_of_shares"`
	FundingSource  string `json:"funding_source"`
	PaymentMethod  string `json:"payment_method,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *InvestRequest) ToUseCaseInput(userID string) usecase.InvestInput {
	return usecase.InvestInput{
		UserID:         userID,
		PropertyID:     r.PropertyID,
		NumberOfShares: r.NumberOfShares,
		FundingSource:  domain.FundingSource(r.FundingSource),
		PaymentMethod:  r.PaymentMethod,
	}
}

// SettleInvestmentRequest resolves a pending external-payment investment.
type SettleInvestmentRequest struct {
	Outcome          string `json:"outcome"`
	PaymentReference string `json:"payment_reference,omitempty"`
}

// DepositRequest represents a request to top up a wallet.
type DepositRequest struct {
	Amount           int64  `json:"amount"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
}

// WithdrawalRequest represents a request to withdraw wallet funds.
type WithdrawalRequest struct {
	Amount        int64  `json:"amount"`
	BankAccountID string `json:"bank_account_id"`
}

// AddBankAccountRequest registers a withdrawal destination.
type AddBankAccountRequest struct {
	BankName      string `json:"bank_name"`
	AccountHolder string `json:"account_holder"`
	IBAN          string `json:"iban"`
}

// SettleTransactionRequest resolves a pending wallet transaction.
type SettleTransactionRequest struct {
	Outcome string `json:"outcome"`
}

// RunDistributionRequest triggers a pro-rata income distribution.
type RunDistributionRequest struct {
	PropertyID  string `json:"property_id"`
	PeriodID    string `json:"period_id"`
	TotalAmount int64  `json:"total_amount"`
}
