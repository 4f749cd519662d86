package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
	"github.com/sahmly/engine/internal/usecase/mocks"
)

type distributionFixture struct {
	uc               *usecase.DistributionUseCase
	propertyRepo     *mocks.MockPropertyRepository
	investmentRepo   *mocks.MockInvestmentRepository
	walletRepo       *mocks.MockWalletRepository
	distributionRepo *mocks.MockDistributionRepository
	outboxRepo       *mocks.MockOutboxRepository
}

func newDistributionFixture() *distributionFixture {
	f := &distributionFixture{
		propertyRepo:     mocks.NewMockPropertyRepository(),
		investmentRepo:   mocks.NewMockInvestmentRepository(),
		walletRepo:       mocks.NewMockWalletRepository(),
		distributionRepo: mocks.NewMockDistributionRepository(),
		outboxRepo:       mocks.NewMockOutboxRepository(),
	}

	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	auditRepo := mocks.NewMockAuditRepository()

	ledger := usecase.NewLedgerUseCase(txManager, f.walletRepo, f.outboxRepo, auditRepo, idGen, nil)

	f.uc = usecase.NewDistributionUseCase(
		txManager,
		f.propertyRepo,
		f.investmentRepo,
		f.walletRepo,
		f.distributionRepo,
		ledger,
		f.outboxRepo,
		auditRepo,
		idGen,
		nil,
	)

	return f
}

// seedInvestor creates a wallet and an active investment holding
// ownershipUnits of prop-1.
func (f *distributionFixture) seedInvestor(n int, ownershipUnits int64) {
	userID := "user-" + string(rune('0'+n))
	f.walletRepo.SeedAccount(&domain.WalletAccount{
		ID:       "acc-" + string(rune('0'+n)),
		UserID:   userID,
		Currency: "EGP",
	})
	f.investmentRepo.Seed(&domain.Investment{
		ID:             "inv-" + string(rune('0'+n)),
		PropertyID:     "prop-1",
		UserID:         userID,
		OwnershipUnits: ownershipUnits,
		Status:         domain.InvestmentStatusActive,
	})
}

func TestDistributionUseCase_RunDistribution(t *testing.T) {
	f := newDistributionFixture()
	f.propertyRepo.Seed(&domain.Property{ID: "prop-1", TotalShares: 1000, Status: domain.PropertyStatusFunded})
	f.seedInvestor(1, 100_000) // 10%
	f.seedInvestor(2, 50_000)  // 5%

	run, err := f.uc.RunDistribution(context.Background(), usecase.RunDistributionInput{
		PropertyID:  "prop-1",
		PeriodID:    "2026-Q1",
		TotalAmount: 10_000,
		ActorID:     "ops-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.InvestorsPaid != 2 {
		t.Errorf("investors paid = %d, want 2", run.InvestorsPaid)
	}
	if run.DistributedCents != 1_500 {
		t.Errorf("distributed = %d, want 1500", run.DistributedCents)
	}
	if run.RemainderCents != 8_500 {
		t.Errorf("remainder = %d, want 8500", run.RemainderCents)
	}

	acc1, _ := f.walletRepo.GetAccountByID(context.Background(), "acc-1")
	if acc1.Balance != 1_000 {
		t.Errorf("investor 1 balance = %d, want 1000", acc1.Balance)
	}
	acc2, _ := f.walletRepo.GetAccountByID(context.Background(), "acc-2")
	if acc2.Balance != 500 {
		t.Errorf("investor 2 balance = %d, want 500", acc2.Balance)
	}

	var notified int
	for _, e := range f.outboxRepo.Events() {
		if e.EventType == domain.EventTypeDistributionReceived {
			notified++
		}
	}
	if notified != 2 {
		t.Errorf("distribution events = %d, want 2", notified)
	}
}

func TestDistributionUseCase_RunDistribution_RerunIsNoOp(t *testing.T) {
	f := newDistributionFixture()
	f.propertyRepo.Seed(&domain.Property{ID: "prop-1", TotalShares: 1000, Status: domain.PropertyStatusFunded})
	f.seedInvestor(1, 100_000)

	input := usecase.RunDistributionInput{
		PropertyID:  "prop-1",
		PeriodID:    "2026-Q1",
		TotalAmount: 10_000,
	}

	first, err := f.uc.RunDistribution(context.Background(), input)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	second, err := f.uc.RunDistribution(context.Background(), input)
	if err != nil {
		t.Fatalf("re-run failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-run created a new run %q, want original %q", second.ID, first.ID)
	}

	acc, _ := f.walletRepo.GetAccountByID(context.Background(), "acc-1")
	if acc.Balance != 1_000 {
		t.Errorf("balance = %d after re-run, want 1000", acc.Balance)
	}
}

func TestDistributionUseCase_RunDistribution_ResumeAfterPartialFailure(t *testing.T) {
	f := newDistributionFixture()
	f.propertyRepo.Seed(&domain.Property{ID: "prop-1", TotalShares: 1000, Status: domain.PropertyStatusFunded})
	f.seedInvestor(1, 100_000)
	f.seedInvestor(2, 50_000)

	// Investor 1 was already credited by an attempt that crashed before
	// writing the run row.
	balance := int64(1_000)
	settled := time.Now().UTC().Add(-time.Minute)
	f.walletRepo.SeedAccount(&domain.WalletAccount{ID: "acc-1", UserID: "user-1", Currency: "EGP", Balance: 1_000})
	f.walletRepo.SeedTransaction(&domain.WalletTransaction{
		ID:           "txn-prior",
		AccountID:    "acc-1",
		Type:         domain.TransactionTypeDistributionCredit,
		Status:       domain.TransactionStatusCompleted,
		Amount:       1_000,
		BalanceAfter: &balance,
		ReferenceID:  "prop-1:2026-Q1:inv-1",
		CreatedAt:    settled,
		SettledAt:    &settled,
	})

	run, err := f.uc.RunDistribution(context.Background(), usecase.RunDistributionInput{
		PropertyID:  "prop-1",
		PeriodID:    "2026-Q1",
		TotalAmount: 10_000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Investor 1 keeps the single credit; investor 2 gets paid now.
	acc1, _ := f.walletRepo.GetAccountByID(context.Background(), "acc-1")
	if acc1.Balance != 1_000 {
		t.Errorf("investor 1 balance = %d, want 1000", acc1.Balance)
	}
	acc2, _ := f.walletRepo.GetAccountByID(context.Background(), "acc-2")
	if acc2.Balance != 500 {
		t.Errorf("investor 2 balance = %d, want 500", acc2.Balance)
	}
	if run.DistributedCents != 1_500 {
		t.Errorf("distributed = %d, want 1500", run.DistributedCents)
	}
}

func TestDistributionUseCase_RunDistribution_Errors(t *testing.T) {
	f := newDistributionFixture()

	if _, err := f.uc.RunDistribution(context.Background(), usecase.RunDistributionInput{
		PropertyID:  "prop-missing",
		PeriodID:    "2026-Q1",
		TotalAmount: 10_000,
	}); !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Errorf("expected ErrPropertyNotFound, got %v", err)
	}

	if _, err := f.uc.RunDistribution(context.Background(), usecase.RunDistributionInput{
		PropertyID:  "prop-1",
		PeriodID:    "2026-Q1",
		TotalAmount: 0,
	}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDistributionUseCase_RunDistribution_LookupFailureStopsRun(t *testing.T) {
	f := newDistributionFixture()
	f.propertyRepo.Seed(&domain.Property{ID: "prop-1", TotalShares: 1000, Status: domain.PropertyStatusFunded})
	f.seedInvestor(1, 100_000)

	// A failing prior-run lookup must not be read as "no prior run":
	// that would re-pay the period whenever the database hiccups.
	lookupErr := errors.New("connection reset by peer")
	f.distributionRepo.GetByPropertyAndPeriodFunc = func(ctx context.Context, propertyID, periodID string) (*domain.DistributionRun, error) {
		return nil, lookupErr
	}

	_, err := f.uc.RunDistribution(context.Background(), usecase.RunDistributionInput{
		PropertyID:  "prop-1",
		PeriodID:    "2026-Q1",
		TotalAmount: 10_000,
	})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error to propagate, got %v", err)
	}

	account, _ := f.walletRepo.GetAccountByID(context.Background(), "acc-1")
	if account.Balance != 0 {
		t.Errorf("balance = %d, want 0 (no credits before the lookup resolves)", account.Balance)
	}
}

func TestDistributionUseCase_GetRun(t *testing.T) {
	f := newDistributionFixture()
	f.propertyRepo.Seed(&domain.Property{ID: "prop-1", TotalShares: 1000, Status: domain.PropertyStatusFunded})
	f.seedInvestor(1, 100_000)

	if _, err := f.uc.RunDistribution(context.Background(), usecase.RunDistributionInput{
		PropertyID:  "prop-1",
		PeriodID:    "2026-Q1",
		TotalAmount: 10_000,
	}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	run, err := f.uc.GetRun(context.Background(), "prop-1", "2026-Q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.PeriodID != "2026-Q1" {
		t.Errorf("period = %q, want 2026-Q1", run.PeriodID)
	}

	if _, err := f.uc.GetRun(context.Background(), "prop-1", "2026-Q2"); !errors.Is(err, domain.ErrDistributionNotFound) {
		t.Errorf("expected ErrDistributionNotFound, got %v", err)
	}
}
