package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahmly/engine/internal/adapter/repository/postgres"
	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
	"github.com/sahmly/engine/tests/testutil"
)

// allowAllEligibility stands in for the profile service.
type allowAllEligibility struct{}

func (allowAllEligibility) GetEligibility(_ context.Context, userID string) (*domain.Eligibility, error) {
	return &domain.Eligibility{UserID: userID, CanInvest: true, EmailVerified: true}, nil
}

var testFeePolicy = domain.FeePolicy{
	PlatformFeeBps:    200,
	ProcessingFeeMode: domain.ProcessingFeeFlat,
	ProcessingFlatFee: 500,
}

// engine bundles the use cases wired against a real database.
type engine struct {
	propertyRepo   *postgres.PropertyRepository
	investmentRepo *postgres.InvestmentRepository
	walletRepo     *postgres.WalletRepository
	outboxRepo     *postgres.OutboxRepository

	ledger         *usecase.LedgerUseCase
	inventory      *usecase.InventoryUseCase
	investment     *usecase.InvestmentUseCase
	distribution   *usecase.DistributionUseCase
	reconciliation *usecase.ReconciliationUseCase
	intake         *usecase.IntakeUseCase
}

func newEngine(t *testing.T, testDB *testutil.TestDB) *engine {
	t.Helper()

	pool := testDB.Pool
	e := &engine{
		propertyRepo:   postgres.NewPropertyRepository(pool),
		investmentRepo: postgres.NewInvestmentRepository(pool),
		walletRepo:     postgres.NewWalletRepository(pool),
		outboxRepo:     postgres.NewOutboxRepository(pool),
	}

	bankAccountRepo := postgres.NewBankAccountRepository(pool)
	distributionRepo := postgres.NewDistributionRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier()
	idGen := postgres.NewULIDGenerator()

	e.ledger = usecase.NewLedgerUseCase(txManager, e.walletRepo, e.outboxRepo, auditRepo, idGen, nil)
	e.inventory = usecase.NewInventoryUseCase(txManager, e.propertyRepo, e.outboxRepo, idGen, nil)

	e.investment = usecase.NewInvestmentUseCase(usecase.InvestmentUseCaseConfig{
		TxManager:         txManager,
		Retrier:           retrier,
		Eligibility:       allowAllEligibility{},
		PropertyRepo:      e.propertyRepo,
		InvestmentRepo:    e.investmentRepo,
		WalletRepo:        e.walletRepo,
		Inventory:         e.inventory,
		Ledger:            e.ledger,
		OutboxRepo:        e.outboxRepo,
		AuditRepo:         auditRepo,
		IDGen:             idGen,
		Policy:            testFeePolicy,
		ReservationWindow: time.Hour,
	})

	e.distribution = usecase.NewDistributionUseCase(
		txManager, e.propertyRepo, e.investmentRepo, e.walletRepo,
		distributionRepo, e.ledger, e.outboxRepo, auditRepo, idGen, nil,
	)

	e.reconciliation = usecase.NewReconciliationUseCase(e.walletRepo, auditRepo, idGen, zerolog.Nop(), nil)

	e.intake = usecase.NewIntakeUseCase(e.ledger, e.walletRepo, bankAccountRepo, auditRepo, idGen, nil)

	return e
}
