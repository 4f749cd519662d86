package usecase

import (
	"context"
	"time"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/infrastructure/metrics"
)

// LedgerUseCase owns wallet accounts and their append-only transaction
// log. Every mutation runs as a single database transaction holding a
// row lock on the wallet, so operations on the same wallet serialize
// while different wallets proceed in parallel.
type LedgerUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// OpenAccountInput represents input for opening a wallet account.
type OpenAccountInput struct {
	UserID   string
	Currency string
}

// OpenAccount creates a wallet account for a user.
func (uc *LedgerUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.WalletAccount, error) {
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.WalletAccount{
		ID:        uc.idGen.Generate(),
		UserID:    input.UserID,
		Currency:  input.Currency,
		Balance:   0,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.walletRepo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetBalance retrieves a user's wallet account.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, userID string) (*domain.WalletAccount, error) {
	return uc.walletRepo.GetAccountByUserID(ctx, userID)
}

// ListTransactionsInput represents input for listing transactions.
type ListTransactionsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListTransactions lists a user's wallet transactions.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.WalletTransaction, error) {
	account, err := uc.walletRepo.GetAccountByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.walletRepo.ListTransactionsByAccount(ctx, account.ID, limit, offset)
}

// EntryInput describes one balance-affecting ledger operation.
type EntryInput struct {
	AccountID     string
	Amount        int64
	Type          domain.TransactionType
	PaymentMethod string
	ReferenceID   string
}

// Credit applies an immediate credit, idempotent per (type, reference).
func (uc *LedgerUseCase) Credit(ctx context.Context, input EntryInput) (*domain.WalletTransaction, error) {
	return uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.WalletTransaction, error) {
		return uc.CreditInTx(txCtx, tx, input)
	})
}

// Debit applies an immediate debit, failing with InsufficientBalance
// before any state change.
func (uc *LedgerUseCase) Debit(ctx context.Context, input EntryInput) (*domain.WalletTransaction, error) {
	return uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.WalletTransaction, error) {
		return uc.DebitInTx(txCtx, tx, input)
	})
}

// OpenPending writes a pending row without touching the balance. Used
// for bank-transfer and Fawry deposits and for all withdrawals, which
// need a second-party confirmation step.
func (uc *LedgerUseCase) OpenPending(ctx context.Context, input EntryInput) (*domain.WalletTransaction, error) {
	return uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.WalletTransaction, error) {
		return uc.OpenPendingInTx(txCtx, tx, input)
	})
}

// CreditInTx is Credit running inside the caller's transaction.
// A repeated call with the same (type, reference) returns the original
// completed row without applying the balance change again.
func (uc *LedgerUseCase) CreditInTx(ctx context.Context, tx Transaction, input EntryInput) (*domain.WalletTransaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	// Lock the wallet first: concurrent same-reference credits
	// serialize here, making the duplicate lookup race-free.
	account, err := uc.walletRepo.GetAccountByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if input.ReferenceID != "" {
		existing, err := uc.walletRepo.GetCompletedByReference(ctx, tx, input.Type, input.ReferenceID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	now := time.Now().UTC()
	newBalance := account.Balance + input.Amount

	txn := &domain.WalletTransaction{
		ID:            uc.idGen.Generate(),
		AccountID:     account.ID,
		Type:          input.Type,
		Status:        domain.TransactionStatusCompleted,
		Amount:        input.Amount,
		BalanceAfter:  &newBalance,
		PaymentMethod: input.PaymentMethod,
		ReferenceID:   input.ReferenceID,
		CreatedAt:     now,
		SettledAt:     &now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.walletRepo.CreateTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.walletRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerCredits.Inc()
	}

	return txn, nil
}

// DebitInTx is Debit running inside the caller's transaction.
func (uc *LedgerUseCase) DebitInTx(ctx context.Context, tx Transaction, input EntryInput) (*domain.WalletTransaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	account, err := uc.walletRepo.GetAccountByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newBalance := account.Balance - input.Amount

	txn := &domain.WalletTransaction{
		ID:            uc.idGen.Generate(),
		AccountID:     account.ID,
		Type:          input.Type,
		Status:        domain.TransactionStatusCompleted,
		Amount:        input.Amount,
		BalanceAfter:  &newBalance,
		PaymentMethod: input.PaymentMethod,
		ReferenceID:   input.ReferenceID,
		CreatedAt:     now,
		SettledAt:     &now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.walletRepo.CreateTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.walletRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerDebits.Inc()
	}

	return txn, nil
}

// OpenPendingInTx is OpenPending running inside the caller's transaction.
func (uc *LedgerUseCase) OpenPendingInTx(ctx context.Context, tx Transaction, input EntryInput) (*domain.WalletTransaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	account, err := uc.walletRepo.GetAccountByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	txn := &domain.WalletTransaction{
		ID:            uc.idGen.Generate(),
		AccountID:     account.ID,
		Type:          input.Type,
		Status:        domain.TransactionStatusPending,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		ReferenceID:   input.ReferenceID,
		CreatedAt:     time.Now().UTC(),
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.walletRepo.CreateTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

// SettlePendingInput represents input for settling a pending transaction.
type SettlePendingInput struct {
	TransactionID string
	Outcome       domain.SettlementOutcome
	ActorID       string
}

// SettlePending transitions a pending transaction to its terminal state.
// A completed outcome applies the balance delta; failed and cancelled
// leave the balance untouched. At most one settlement per transaction:
// repeats are rejected with AlreadySettled.
func (uc *LedgerUseCase) SettlePending(ctx context.Context, input SettlePendingInput) (*domain.WalletTransaction, error) {
	if !input.Outcome.Valid() {
		return nil, domain.ErrNotPending
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Investment payments carry a share reservation that only the
	// investment settlement flow knows how to resolve. Settling one
	// here would strand the reserved shares.
	pending, err := uc.walletRepo.GetTransactionByIDForUpdate(txCtx, tx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if pending.Type == domain.TransactionTypeInvestmentDebit {
		return nil, domain.ErrInvestmentPaymentSettle
	}

	txn, err := uc.SettlePendingInTx(txCtx, tx, input.TransactionID, input.Outcome)
	if err != nil {
		return nil, err
	}

	account, err := uc.walletRepo.GetAccountByID(txCtx, txn.AccountID)
	if err != nil {
		return nil, err
	}

	eventType := domain.EventTypeDepositSettled
	if txn.Type == domain.TransactionTypeWithdrawal {
		eventType = domain.EventTypeWithdrawalSettled
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     eventType,
		Payload: map[string]any{
			"transaction_id": txn.ID,
			"user_id":        account.UserID,
			"amount":         txn.Amount,
			"outcome":        string(input.Outcome),
		},
		CreatedAt: time.Now().UTC(),
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		actor := input.ActorID
		if actor == "" {
			actor = "system"
		}
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      actor,
			Action:       string(domain.AuditActionTransactionSettle),
			ResourceType: "wallet_transaction",
			ResourceID:   txn.ID,
			AfterState:   domain.MarshalState(txn),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    time.Now().UTC(),
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SettlementsProcessed.WithLabelValues(string(txn.Type), string(input.Outcome)).Inc()
	}

	return txn, nil
}

// SettlePendingInTx is the settlement core running inside the caller's
// transaction. It locks the transaction row and, for completed
// outcomes, the wallet row; withdrawal settlements re-check balance at
// settle time.
func (uc *LedgerUseCase) SettlePendingInTx(ctx context.Context, tx Transaction, transactionID string, outcome domain.SettlementOutcome) (*domain.WalletTransaction, error) {
	txn, err := uc.walletRepo.GetTransactionByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.Status != domain.TransactionStatusPending {
		return nil, domain.ErrAlreadySettled
	}

	now := time.Now().UTC()

	if outcome != domain.SettlementCompleted {
		status := domain.TransactionStatusFailed
		if outcome == domain.SettlementCancelled {
			status = domain.TransactionStatusCancelled
		}
		if err := uc.walletRepo.UpdateTransactionStatus(ctx, tx, txn.ID, status, nil, now); err != nil {
			return nil, err
		}
		txn.Status = status
		txn.SettledAt = &now
		return txn, nil
	}

	account, err := uc.walletRepo.GetAccountByIDForUpdate(ctx, tx, txn.AccountID)
	if err != nil {
		return nil, err
	}

	var newBalance int64
	if txn.Type.BalanceDirection() > 0 {
		newBalance = account.Balance + txn.Amount
	} else {
		if err := account.ValidateDebit(txn.Amount); err != nil {
			return nil, err
		}
		newBalance = account.Balance - txn.Amount
	}

	if err := uc.walletRepo.UpdateTransactionStatus(ctx, tx, txn.ID, domain.TransactionStatusCompleted, &newBalance, now); err != nil {
		return nil, err
	}

	if err := uc.walletRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	txn.Status = domain.TransactionStatusCompleted
	txn.BalanceAfter = &newBalance
	txn.SettledAt = &now

	return txn, nil
}

// inTx runs op in a fresh bounded transaction and commits on success.
func (uc *LedgerUseCase) inTx(ctx context.Context, op func(context.Context, Transaction) (*domain.WalletTransaction, error)) (*domain.WalletTransaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	txn, err := op(txCtx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return txn, nil
}
