package usecase

import (
	"context"
	"time"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/infrastructure/metrics"
)

// IntakeUseCase converts external payment proofs into pending ledger
// entries subject to approval: deposits by bank transfer or Fawry, and
// all withdrawal requests. Second-party confirmation happens through
// the ledger's SettlePending.
type IntakeUseCase struct {
	ledger          *LedgerUseCase
	walletRepo      WalletRepository
	bankAccountRepo BankAccountRepository
	auditRepo       AuditRepository
	idGen           IDGenerator
	metrics         *metrics.Metrics
}

// NewIntakeUseCase creates a new IntakeUseCase.
func NewIntakeUseCase(
	ledger *LedgerUseCase,
	walletRepo WalletRepository,
	bankAccountRepo BankAccountRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *IntakeUseCase {
	return &IntakeUseCase{
		ledger:          ledger,
		walletRepo:      walletRepo,
		bankAccountRepo: bankAccountRepo,
		auditRepo:       auditRepo,
		idGen:           idGen,
		metrics:         metrics,
	}
}

// RequestDepositInput represents a deposit claim backed by an external
// payment proof.
type RequestDepositInput struct {
	UserID        string
	Amount        int64
	PaymentMethod string
	// PaymentReference identifies the external payment (transfer
	// receipt number, Fawry reference).
	PaymentReference string
}

// RequestDeposit opens a pending deposit awaiting admin or webhook
// confirmation. The balance is untouched until settlement.
func (uc *IntakeUseCase) RequestDeposit(ctx context.Context, input RequestDepositInput) (*domain.WalletTransaction, error) {
	account, err := uc.walletRepo.GetAccountByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	txn, err := uc.ledger.OpenPending(ctx, EntryInput{
		AccountID:     account.ID,
		Amount:        input.Amount,
		Type:          domain.TransactionTypeDeposit,
		PaymentMethod: input.PaymentMethod,
		ReferenceID:   input.PaymentReference,
	})
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, input.UserID, domain.AuditActionDepositRequest, txn)

	if uc.metrics != nil {
		uc.metrics.DepositsRequested.Inc()
	}

	return txn, nil
}

// RequestWithdrawalInput represents a withdrawal request to a saved
// bank account.
type RequestWithdrawalInput struct {
	UserID        string
	BankAccountID string
	Amount        int64
}

// RequestWithdrawal opens a pending withdrawal after verifying the
// destination is owned by the caller and the current balance covers
// the amount. The balance check repeats at settlement time; this one
// rejects obviously bad requests early.
func (uc *IntakeUseCase) RequestWithdrawal(ctx context.Context, input RequestWithdrawalInput) (*domain.WalletTransaction, error) {
	bankAccount, err := uc.bankAccountRepo.GetByID(ctx, input.BankAccountID)
	if err != nil {
		return nil, err
	}
	if bankAccount.UserID != input.UserID {
		return nil, domain.ErrBankAccountNotOwned
	}

	account, err := uc.walletRepo.GetAccountByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	txn, err := uc.ledger.OpenPending(ctx, EntryInput{
		AccountID:     account.ID,
		Amount:        input.Amount,
		Type:          domain.TransactionTypeWithdrawal,
		PaymentMethod: "bank_transfer",
		ReferenceID:   bankAccount.ID,
	})
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, input.UserID, domain.AuditActionWithdrawalRequest, txn)

	if uc.metrics != nil {
		uc.metrics.WithdrawalsRequested.Inc()
	}

	return txn, nil
}

// AddBankAccountInput represents a new withdrawal destination.
type AddBankAccountInput struct {
	UserID        string
	BankName      string
	AccountHolder string
	IBAN          string
}

// AddBankAccount registers a withdrawal destination for a user.
func (uc *IntakeUseCase) AddBankAccount(ctx context.Context, input AddBankAccountInput) (*domain.BankAccount, error) {
	account := &domain.BankAccount{
		ID:            uc.idGen.Generate(),
		UserID:        input.UserID,
		BankName:      input.BankName,
		AccountHolder: input.AccountHolder,
		IBAN:          input.IBAN,
		CreatedAt:     time.Now().UTC(),
	}

	if err := uc.bankAccountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// ListBankAccounts lists a user's withdrawal destinations.
func (uc *IntakeUseCase) ListBankAccounts(ctx context.Context, userID string) ([]*domain.BankAccount, error) {
	return uc.bankAccountRepo.ListByUser(ctx, userID)
}

func (uc *IntakeUseCase) audit(ctx context.Context, actorID string, action domain.AuditAction, txn *domain.WalletTransaction) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       string(action),
		ResourceType: "wallet_transaction",
		ResourceID:   txn.ID,
		AfterState:   domain.MarshalState(txn),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
