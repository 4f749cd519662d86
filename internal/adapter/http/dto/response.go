package dto

import (
	"time"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PropertyResponse represents a property offering.
type PropertyResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Currency        string    `json:"currency"`
	TotalShares     int64     `json:"total_shares"`
	AvailableShares int64     `json:"available_shares"`
	SharePriceCents int64     `json:"share_price_cents"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PropertyFromDomain converts a domain property.
func PropertyFromDomain(p *domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:              p.ID,
		Name:            p.Name,
		Currency:        p.Currency,
		TotalShares:     p.TotalShares,
		AvailableShares: p.AvailableShares,
		SharePriceCents: p.SharePriceCents,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// PropertiesFromDomain converts a slice of domain properties.
func PropertiesFromDomain(properties []*domain.Property) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		out = append(out, PropertyFromDomain(p))
	}
	return out
}

// ListPropertiesResponse wraps a page of properties.
type ListPropertiesResponse struct {
	Properties []PropertyResponse `json:"properties"`
	Total      int64              `json:"total"`
}

// QuoteResponse represents an investment cost preview. All monetary
// fields are integer cents.
type QuoteResponse struct {
	PropertyID       string `json:"property_id"`
	NumberOfShares   int64  `json:"number_of_shares"`
	InvestmentAmount int64  `json:"investment_amount"`
	PlatformFee      int64  `json:"platform_fee"`
	ProcessingFee    int64  `json:"processing_fee"`
	TotalAmount      int64  `json:"total_amount"`
	OwnershipPercent string `json:"ownership_percent"`
}

// QuoteFromDomain converts a domain quote.
func QuoteFromDomain(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		PropertyID:       q.PropertyID,
		NumberOfShares:   q.NumberOfShares,
		InvestmentAmount: q.InvestmentAmount,
		PlatformFee:      q.PlatformFee,
		ProcessingFee:    q.ProcessingFee,
		TotalAmount:      q.TotalAmount,
		OwnershipPercent: q.OwnershipPercent().StringFixed(4),
	}
}

// WalletAccountResponse represents a wallet account.
type WalletAccountResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Currency  string    `json:"currency"`
	Balance   int64     `json:"balance"`
	Frozen    bool      `json:"frozen"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WalletAccountFromDomain converts a domain wallet account.
func WalletAccountFromDomain(a *domain.WalletAccount) WalletAccountResponse {
	return WalletAccountResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Currency:  a.Currency,
		Balance:   a.Balance,
		Frozen:    a.Frozen,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// TransactionResponse represents a wallet ledger row.
type TransactionResponse struct {
	ID            string     `json:"id"`
	AccountID     string     `json:"account_id"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Amount        int64      `json:"amount"`
	BalanceAfter  *int64     `json:"balance_after,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
}

// TransactionFromDomain converts a domain wallet transaction.
func TransactionFromDomain(t *domain.WalletTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		Type:          string(t.Type),
		Status:        string(t.Status),
		Amount:        t.Amount,
		BalanceAfter:  t.BalanceAfter,
		PaymentMethod: t.PaymentMethod,
		ReferenceID:   t.ReferenceID,
		CreatedAt:     t.CreatedAt,
		SettledAt:     t.SettledAt,
	}
}

// TransactionsFromDomain converts a slice of domain transactions.
func TransactionsFromDomain(txns []*domain.WalletTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, TransactionFromDomain(t))
	}
	return out
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
}

// InvestmentResponse represents an investment.
type InvestmentResponse struct {
	ID                   string     `json:"id"`
	PropertyID           string     `json:"property_id"`
	UserID               string     `json:"user_id"`
	NumberOfShares       int64      `json:"number_of_shares"`
	InvestmentAmount     int64      `json:"investment_amount"`
	PlatformFee          int64      `json:"platform_fee"`
	ProcessingFee        int64      `json:"processing_fee"`
	TotalAmount          int64      `json:"total_amount"`
	OwnershipPercent     string     `json:"ownership_percent"`
	FundingSource        string     `json:"funding_source"`
	Status               string     `json:"status"`
	PaymentTransactionID string     `json:"payment_transaction_id,omitempty"`
	ExpiresAt            *time.Time `json:"expires_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// InvestmentFromDomain converts a domain investment.
func InvestmentFromDomain(i *domain.Investment) InvestmentResponse {
	return InvestmentResponse{
		ID:                   i.ID,
		PropertyID:           i.PropertyID,
		UserID:               i.UserID,
		NumberOfShares:       i.NumberOfShares,
		InvestmentAmount:     i.InvestmentAmount,
		PlatformFee:          i.PlatformFee,
		ProcessingFee:        i.ProcessingFee,
		TotalAmount:          i.TotalAmount,
		OwnershipPercent:     domain.OwnershipPercent(i.OwnershipUnits).StringFixed(4),
		FundingSource:        string(i.FundingSource),
		Status:               string(i.Status),
		PaymentTransactionID: i.PaymentTransactionID,
		ExpiresAt:            i.ExpiresAt,
		CreatedAt:            i.CreatedAt,
		UpdatedAt:            i.UpdatedAt,
	}
}

// InvestmentsFromDomain converts a slice of domain investments.
func InvestmentsFromDomain(investments []*domain.Investment) []InvestmentResponse {
	out := make([]InvestmentResponse, 0, len(investments))
	for _, i := range investments {
		out = append(out, InvestmentFromDomain(i))
	}
	return out
}

// ListInvestmentsResponse wraps a page of investments.
type ListInvestmentsResponse struct {
	Investments []InvestmentResponse `json:"investments"`
	Total       int64                `json:"total"`
}

// BankAccountResponse represents a withdrawal destination.
type BankAccountResponse struct {
	ID            string    `json:"id"`
	BankName      string    `json:"bank_name"`
	AccountHolder string    `json:"account_holder"`
	IBAN          string    `json:"iban"`
	CreatedAt     time.Time `json:"created_at"`
}

// BankAccountFromDomain converts a domain bank account.
func BankAccountFromDomain(a *domain.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:            a.ID,
		BankName:      a.BankName,
		AccountHolder: a.AccountHolder,
		IBAN:          a.IBAN,
		CreatedAt:     a.CreatedAt,
	}
}

// BankAccountsFromDomain converts a slice of domain bank accounts.
func BankAccountsFromDomain(accounts []*domain.BankAccount) []BankAccountResponse {
	out := make([]BankAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, BankAccountFromDomain(a))
	}
	return out
}

// DistributionRunResponse represents a completed distribution run.
type DistributionRunResponse struct {
	ID               string    `json:"id"`
	PropertyID       string    `json:"property_id"`
	PeriodID         string    `json:"period_id"`
	TotalAmount      int64     `json:"total_amount"`
	DistributedCents int64     `json:"distributed_cents"`
	RemainderCents   int64     `json:"remainder_cents"`
	InvestorsPaid    int       `json:"investors_paid"`
	CreatedAt        time.Time `json:"created_at"`
}

// DistributionRunFromDomain converts a domain distribution run.
func DistributionRunFromDomain(r *domain.DistributionRun) DistributionRunResponse {
	return DistributionRunResponse{
		ID:               r.ID,
		PropertyID:       r.PropertyID,
		PeriodID:         r.PeriodID,
		TotalAmount:      r.TotalAmount,
		DistributedCents: r.DistributedCents,
		RemainderCents:   r.RemainderCents,
		InvestorsPaid:    r.InvestorsPaid,
		CreatedAt:        r.CreatedAt,
	}
}

// DistributionRunsFromDomain converts a slice of domain runs.
func DistributionRunsFromDomain(runs []*domain.DistributionRun) []DistributionRunResponse {
	out := make([]DistributionRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, DistributionRunFromDomain(r))
	}
	return out
}

// ReconciliationResultResponse represents one account's replay result.
type ReconciliationResultResponse struct {
	AccountID        string    `json:"account_id"`
	UserID           string    `json:"user_id"`
	RecordedBalance  int64     `json:"recorded_balance"`
	ReplayedBalance  int64     `json:"replayed_balance"`
	Difference       int64     `json:"difference"`
	IsReconciled     bool      `json:"is_reconciled"`
	FrozenByThisScan bool      `json:"frozen_by_this_scan"`
	LastChecked      time.Time `json:"last_checked"`
}

// ReconciliationResultFromUseCase converts a reconciliation result.
func ReconciliationResultFromUseCase(r *usecase.ReconciliationResult) ReconciliationResultResponse {
	return ReconciliationResultResponse{
		AccountID:        r.AccountID,
		UserID:           r.UserID,
		RecordedBalance:  r.RecordedBalance,
		ReplayedBalance:  r.ReplayedBalance,
		Difference:       r.Difference,
		IsReconciled:     r.IsReconciled,
		FrozenByThisScan: r.FrozenByThisScan,
		LastChecked:      r.LastChecked,
	}
}

// ReconciliationReportResponse represents a full reconciliation sweep.
type ReconciliationReportResponse struct {
	TotalAccounts      int                            `json:"total_accounts"`
	ReconciledAccounts int                            `json:"reconciled_accounts"`
	Discrepancies      []ReconciliationResultResponse `json:"discrepancies"`
	CheckedAt          time.Time                      `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) ReconciliationReportResponse {
	discrepancies := make([]ReconciliationResultResponse, 0, len(r.Discrepancies))
	for _, d := range r.Discrepancies {
		discrepancies = append(discrepancies, ReconciliationResultFromUseCase(d))
	}

	return ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}
