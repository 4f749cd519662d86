package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
	"github.com/sahmly/engine/internal/usecase/mocks"
)

func newReconciliationFixture() (*usecase.ReconciliationUseCase, *mocks.MockWalletRepository, *mocks.MockAuditRepository) {
	walletRepo := mocks.NewMockWalletRepository()
	auditRepo := mocks.NewMockAuditRepository()
	uc := usecase.NewReconciliationUseCase(walletRepo, auditRepo, mocks.NewMockIDGenerator(), zerolog.Nop(), nil)
	return uc, walletRepo, auditRepo
}

func seedCompleted(repo *mocks.MockWalletRepository, id, accountID string, txnType domain.TransactionType, amount int64) {
	now := time.Now().UTC()
	repo.SeedTransaction(&domain.WalletTransaction{
		ID:        id,
		AccountID: accountID,
		Type:      txnType,
		Status:    domain.TransactionStatusCompleted,
		Amount:    amount,
		CreatedAt: now,
		SettledAt: &now,
	})
}

func TestReconciliationUseCase_ReconcileAccount(t *testing.T) {
	t.Run("balance matches replay", func(t *testing.T) {
		uc, walletRepo, _ := newReconciliationFixture()
		walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 7_000})
		seedCompleted(walletRepo, "t1", "acc-1", domain.TransactionTypeDeposit, 10_000)
		seedCompleted(walletRepo, "t2", "acc-1", domain.TransactionTypeInvestmentDebit, 3_000)

		result, err := uc.ReconcileAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !result.IsReconciled {
			t.Error("expected account to reconcile")
		}
		if result.ReplayedBalance != 7_000 {
			t.Errorf("replayed = %d, want 7000", result.ReplayedBalance)
		}

		account, _ := walletRepo.GetAccountByID(context.Background(), "acc-1")
		if account.Frozen {
			t.Error("reconciled account must not be frozen")
		}
	})

	t.Run("pending rows are excluded from the replay", func(t *testing.T) {
		uc, walletRepo, _ := newReconciliationFixture()
		walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 10_000})
		seedCompleted(walletRepo, "t1", "acc-1", domain.TransactionTypeDeposit, 10_000)
		walletRepo.SeedTransaction(&domain.WalletTransaction{
			ID:        "t2",
			AccountID: "acc-1",
			Type:      domain.TransactionTypeWithdrawal,
			Status:    domain.TransactionStatusPending,
			Amount:    4_000,
		})

		result, err := uc.ReconcileAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsReconciled {
			t.Errorf("pending row leaked into replay: %+v", result)
		}
	})

	t.Run("drift freezes the account", func(t *testing.T) {
		uc, walletRepo, auditRepo := newReconciliationFixture()
		walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 9_999})
		seedCompleted(walletRepo, "t1", "acc-1", domain.TransactionTypeDeposit, 10_000)

		result, err := uc.ReconcileAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.IsReconciled {
			t.Fatal("expected drift verdict")
		}
		if result.Difference != -1 {
			t.Errorf("difference = %d, want -1", result.Difference)
		}
		if !result.FrozenByThisScan {
			t.Error("expected scan to freeze the account")
		}

		account, _ := walletRepo.GetAccountByID(context.Background(), "acc-1")
		if !account.Frozen {
			t.Error("drifted account must be frozen")
		}
		if len(auditRepo.Logs()) != 1 {
			t.Errorf("audit logs = %d, want 1", len(auditRepo.Logs()))
		}

		// Drifted accounts reject debits until an operator intervenes.
		if err := account.ValidateDebit(1); !errors.Is(err, domain.ErrAccountFrozen) {
			t.Errorf("expected ErrAccountFrozen, got %v", err)
		}
	})

	t.Run("already frozen account is not re-frozen", func(t *testing.T) {
		uc, walletRepo, auditRepo := newReconciliationFixture()
		walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 9_999, Frozen: true})
		seedCompleted(walletRepo, "t1", "acc-1", domain.TransactionTypeDeposit, 10_000)

		result, err := uc.ReconcileAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.FrozenByThisScan {
			t.Error("repeat scan must not claim the freeze")
		}
		if len(auditRepo.Logs()) != 0 {
			t.Errorf("audit logs = %d, want 0", len(auditRepo.Logs()))
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		uc, _, _ := newReconciliationFixture()

		_, err := uc.ReconcileAccount(context.Background(), "acc-missing")
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})
}

func TestReconciliationUseCase_ReconcileAll(t *testing.T) {
	uc, walletRepo, _ := newReconciliationFixture()

	walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Balance: 5_000})
	seedCompleted(walletRepo, "t1", "acc-1", domain.TransactionTypeDeposit, 5_000)

	walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-2", UserID: "user-2", Balance: 100})
	seedCompleted(walletRepo, "t2", "acc-2", domain.TransactionTypeDeposit, 5_000)

	report, err := uc.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalAccounts != 2 {
		t.Errorf("total = %d, want 2", report.TotalAccounts)
	}
	if report.ReconciledAccounts != 1 {
		t.Errorf("reconciled = %d, want 1", report.ReconciledAccounts)
	}
	if len(report.Discrepancies) != 1 {
		t.Fatalf("discrepancies = %d, want 1", len(report.Discrepancies))
	}
	if report.Discrepancies[0].AccountID != "acc-2" {
		t.Errorf("drifted account = %q, want acc-2", report.Discrepancies[0].AccountID)
	}
}
