package domain

import "errors"

var (
	// Quote and inventory errors
	ErrInvalidQuantity    = errors.New("number of shares must be at least 1")
	ErrInsufficientShares = errors.New("not enough shares available")
	ErrPropertyNotFound   = errors.New("property not found")
	ErrPropertyNotOpen    = errors.New("property is not open for investment")

	// Wallet errors
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrAccountNotFound     = errors.New("wallet account not found")
	ErrAccountFrozen       = errors.New("wallet account is frozen pending reconciliation")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrCurrencyMismatch    = errors.New("currency mismatch")

	// Transaction lifecycle errors
	ErrTransactionNotFound     = errors.New("wallet transaction not found")
	ErrAlreadySettled          = errors.New("transaction already settled")
	ErrNotPending              = errors.New("transaction is not pending")
	ErrInvestmentPaymentSettle = errors.New("investment payments settle through the investment settlement flow")

	// Investment errors
	ErrInvestmentNotFound   = errors.New("investment not found")
	ErrInvestmentNotPending = errors.New("investment is not pending")
	ErrNotEligible          = errors.New("investor is not eligible to invest")
	ErrReservationExpired   = errors.New("share reservation has expired")

	// Withdrawal errors
	ErrBankAccountNotFound = errors.New("bank account not found")
	ErrBankAccountNotOwned = errors.New("bank account belongs to another user")

	// Distribution errors
	ErrDistributionNotFound = errors.New("distribution run not found")
)
