package domain

import "time"

// WalletAccount is a user's monetary balance. The stored balance is a
// cache derived from completed transactions; replaying the transaction
// log must always reproduce it. Frozen accounts reject further debits
// until an operator clears the reconciliation alert.
type WalletAccount struct {
	ID        string
	UserID    string
	Currency  string
	Balance   int64
	Frozen    bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks whether amount can be taken from the account.
func (a *WalletAccount) ValidateDebit(amount int64) error {
	if a.Frozen {
		return ErrAccountFrozen
	}
	if a.Balance < amount {
		return ErrInsufficientBalance
	}
	return nil
}

// TransactionType classifies a wallet transaction.
type TransactionType string

const (
	TransactionTypeDeposit            TransactionType = "deposit"
	TransactionTypeWithdrawal         TransactionType = "withdrawal"
	TransactionTypeInvestmentDebit    TransactionType = "investment_debit"
	TransactionTypeDistributionCredit TransactionType = "distribution_credit"
	TransactionTypeRefund             TransactionType = "refund"
)

// BalanceDirection reports how a completed transaction of this type
// moves the balance: +1 credit, -1 debit.
func (t TransactionType) BalanceDirection() int64 {
	switch t {
	case TransactionTypeDeposit, TransactionTypeDistributionCredit, TransactionTypeRefund:
		return 1
	case TransactionTypeWithdrawal, TransactionTypeInvestmentDebit:
		return -1
	}
	return 0
}

// TransactionStatus is the lifecycle state of a wallet transaction.
// Rows are created pending or completed and transition at most once;
// completed and failed rows are never mutated.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// SettlementOutcome is the terminal state requested for a pending
// transaction.
type SettlementOutcome string

const (
	SettlementCompleted SettlementOutcome = "completed"
	SettlementFailed    SettlementOutcome = "failed"
	SettlementCancelled SettlementOutcome = "cancelled"
)

// Valid reports whether the outcome is one of the terminal states.
func (o SettlementOutcome) Valid() bool {
	switch o {
	case SettlementCompleted, SettlementFailed, SettlementCancelled:
		return true
	}
	return false
}

// WalletTransaction is one append-only ledger row. Amount is unsigned;
// the type determines the balance direction. ReferenceID together with
// the type forms the idempotency key for credits.
type WalletTransaction struct {
	ID            string
	AccountID     string
	Type          TransactionType
	Status        TransactionStatus
	Amount        int64
	BalanceAfter  *int64
	PaymentMethod string
	ReferenceID   string
	CreatedAt     time.Time
	SettledAt     *time.Time
}

// Validate checks structural validity of a new transaction.
func (t *WalletTransaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.Type.BalanceDirection() == 0 {
		return ErrInvalidAmount
	}
	return nil
}
