package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
	"github.com/sahmly/engine/internal/usecase/mocks"
)

type intakeFixture struct {
	uc              *usecase.IntakeUseCase
	walletRepo      *mocks.MockWalletRepository
	bankAccountRepo *mocks.MockBankAccountRepository
	auditRepo       *mocks.MockAuditRepository
}

func newIntakeFixture() *intakeFixture {
	f := &intakeFixture{
		walletRepo:      mocks.NewMockWalletRepository(),
		bankAccountRepo: mocks.NewMockBankAccountRepository(),
		auditRepo:       mocks.NewMockAuditRepository(),
	}

	idGen := mocks.NewMockIDGenerator()
	ledger := usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		f.walletRepo,
		mocks.NewMockOutboxRepository(),
		f.auditRepo,
		idGen,
		nil,
	)

	f.uc = usecase.NewIntakeUseCase(ledger, f.walletRepo, f.bankAccountRepo, f.auditRepo, idGen, nil)
	return f
}

func TestIntakeUseCase_RequestDeposit(t *testing.T) {
	f := newIntakeFixture()
	f.walletRepo.SeedAccount(&domain.WalletAccount{
		ID:      "acc-1",
		UserID:  "user-1",
		Balance: 1_000,
	})

	txn, err := f.uc.RequestDeposit(context.Background(), usecase.RequestDepositInput{
		UserID:           "user-1",
		Amount:           50_000,
		PaymentMethod:    "bank_transfer",
		PaymentReference: "receipt-42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != domain.TransactionStatusPending {
		t.Errorf("status = %q, want pending", txn.Status)
	}
	if txn.ReferenceID != "receipt-42" {
		t.Errorf("reference = %q, want receipt-42", txn.ReferenceID)
	}

	account, _ := f.walletRepo.GetAccountByID(context.Background(), "acc-1")
	if account.Balance != 1_000 {
		t.Errorf("balance = %d, want 1000 before settlement", account.Balance)
	}

	if len(f.auditRepo.Logs()) != 1 {
		t.Errorf("audit logs = %d, want 1", len(f.auditRepo.Logs()))
	}
}

func TestIntakeUseCase_RequestWithdrawal(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*intakeFixture)
		input       usecase.RequestWithdrawalInput
		expectError error
	}{
		{
			name: "successful withdrawal request",
			setup: func(f *intakeFixture) {
				f.walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 100_000})
				f.bankAccountRepo.Seed(&domain.BankAccount{ID: "bank-1", UserID: "user-1"})
			},
			input: usecase.RequestWithdrawalInput{
				UserID:        "user-1",
				BankAccountID: "bank-1",
				Amount:        50_000,
			},
		},
		{
			name: "bank account owned by another user",
			setup: func(f *intakeFixture) {
				f.walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 100_000})
				f.bankAccountRepo.Seed(&domain.BankAccount{ID: "bank-1", UserID: "user-2"})
			},
			input: usecase.RequestWithdrawalInput{
				UserID:        "user-1",
				BankAccountID: "bank-1",
				Amount:        50_000,
			},
			expectError: domain.ErrBankAccountNotOwned,
		},
		{
			name: "unknown bank account",
			setup: func(f *intakeFixture) {
				f.walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 100_000})
			},
			input: usecase.RequestWithdrawalInput{
				UserID:        "user-1",
				BankAccountID: "bank-1",
				Amount:        50_000,
			},
			expectError: domain.ErrBankAccountNotFound,
		},
		{
			name: "insufficient balance rejected early",
			setup: func(f *intakeFixture) {
				f.walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 100})
				f.bankAccountRepo.Seed(&domain.BankAccount{ID: "bank-1", UserID: "user-1"})
			},
			input: usecase.RequestWithdrawalInput{
				UserID:        "user-1",
				BankAccountID: "bank-1",
				Amount:        50_000,
			},
			expectError: domain.ErrInsufficientBalance,
		},
		{
			name: "frozen account rejected",
			setup: func(f *intakeFixture) {
				f.walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 100_000, Frozen: true})
				f.bankAccountRepo.Seed(&domain.BankAccount{ID: "bank-1", UserID: "user-1"})
			},
			input: usecase.RequestWithdrawalInput{
				UserID:        "user-1",
				BankAccountID: "bank-1",
				Amount:        50_000,
			},
			expectError: domain.ErrAccountFrozen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIntakeFixture()
			tt.setup(f)

			txn, err := f.uc.RequestWithdrawal(context.Background(), tt.input)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if txn.Status != domain.TransactionStatusPending {
				t.Errorf("status = %q, want pending", txn.Status)
			}
			if txn.Type != domain.TransactionTypeWithdrawal {
				t.Errorf("type = %q, want withdrawal", txn.Type)
			}

			// Balance moves only at settlement.
			account, _ := f.walletRepo.GetAccountByID(context.Background(), "acc-1")
			if account.Balance != 100_000 {
				t.Errorf("balance = %d, want 100000 before settlement", account.Balance)
			}
		})
	}
}

func TestIntakeUseCase_BankAccounts(t *testing.T) {
	f := newIntakeFixture()

	created, err := f.uc.AddBankAccount(context.Background(), usecase.AddBankAccountInput{
		UserID:        "user-1",
		BankName:      "CIB",
		AccountHolder: "Dina Fouad",
		IBAN:          "EG380019000500000000263180002",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}

	accounts, err := f.uc.ListBankAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 1 || accounts[0].BankName != "CIB" {
		t.Errorf("unexpected accounts: %+v", accounts)
	}

	other, err := f.uc.ListBankAccounts(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no accounts for other user, got %d", len(other))
	}
}
