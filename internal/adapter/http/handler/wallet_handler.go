package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sahmly/engine/internal/adapter/http/dto"
	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

// WalletService defines the ledger behavior needed by WalletHandler.
type WalletService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.WalletAccount, error)
	GetBalance(ctx context.Context, userID string) (*domain.WalletAccount, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.WalletTransaction, error)
}

// IntakeService defines the money movement requests needed by
// WalletHandler.
type IntakeService interface {
	RequestDeposit(ctx context.Context, input usecase.RequestDepositInput) (*domain.WalletTransaction, error)
	RequestWithdrawal(ctx context.Context, input usecase.RequestWithdrawalInput) (*domain.WalletTransaction, error)
	AddBankAccount(ctx context.Context, input usecase.AddBankAccountInput) (*domain.BankAccount, error)
	ListBankAccounts(ctx context.Context, userID string) ([]*domain.BankAccount, error)
}

// WalletHandler handles wallet HTTP requests.
type WalletHandler struct {
	walletUC WalletService
	intakeUC IntakeService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService, intakeUC IntakeService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC, intakeUC: intakeUC}
}

// OpenAccount opens a wallet account for the caller.
func (h *WalletHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.walletUC.OpenAccount(r.Context(), usecase.OpenAccountInput{
		UserID:   userID(r),
		Currency: req.Currency,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.WalletAccountFromDomain(account))
}

// GetBalance returns the caller's wallet account.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account, err := h.walletUC.GetBalance(r.Context(), userID(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletAccountFromDomain(account))
}

// ListTransactions pages the caller's ledger, newest first.
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.walletUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		UserID: userID(r),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Total:        int64(len(txns)),
	})
}

// Deposit opens a pending top-up awaiting settlement.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.intakeUC.RequestDeposit(r.Context(), usecase.RequestDepositInput{
		UserID:           userID(r),
		Amount:           req.Amount,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to request deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Withdraw opens a pending withdrawal to a registered bank account.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.intakeUC.RequestWithdrawal(r.Context(), usecase.RequestWithdrawalInput{
		UserID:        userID(r),
		BankAccountID: req.BankAccountID,
		Amount:        req.Amount,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to request withdrawal", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// AddBankAccount registers a withdrawal destination.
func (h *WalletHandler) AddBankAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.AddBankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.intakeUC.AddBankAccount(r.Context(), usecase.AddBankAccountInput{
		UserID:        userID(r),
		BankName:      req.BankName,
		AccountHolder: req.AccountHolder,
		IBAN:          req.IBAN,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add bank account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BankAccountFromDomain(account))
}

// ListBankAccounts lists the caller's withdrawal destinations.
func (h *WalletHandler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.intakeUC.ListBankAccounts(r.Context(), userID(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list bank accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BankAccountsFromDomain(accounts))
}
