package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/infrastructure/metrics"
)

// DistributionUseCase credits investors their pro-rata share of
// property income. Runs are idempotent twice over: the run row is
// unique per (property, period), and every credit carries a reference
// the ledger deduplicates on, so a re-run after a partial failure
// finishes the remaining credits without double-paying anyone.
type DistributionUseCase struct {
	txManager        TransactionManager
	propertyRepo     PropertyRepository
	investmentRepo   InvestmentRepository
	walletRepo       WalletRepository
	distributionRepo DistributionRepository
	ledger           *LedgerUseCase
	outboxRepo       OutboxRepository
	auditRepo        AuditRepository
	idGen            IDGenerator
	metrics          *metrics.Metrics
}

// NewDistributionUseCase creates a new DistributionUseCase.
func NewDistributionUseCase(
	txManager TransactionManager,
	propertyRepo PropertyRepository,
	investmentRepo InvestmentRepository,
	walletRepo WalletRepository,
	distributionRepo DistributionRepository,
	ledger *LedgerUseCase,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *DistributionUseCase {
	return &DistributionUseCase{
		txManager:        txManager,
		propertyRepo:     propertyRepo,
		investmentRepo:   investmentRepo,
		walletRepo:       walletRepo,
		distributionRepo: distributionRepo,
		ledger:           ledger,
		outboxRepo:       outboxRepo,
		auditRepo:        auditRepo,
		idGen:            idGen,
		metrics:          metrics,
	}
}

// RunDistributionInput represents one payout event.
type RunDistributionInput struct {
	PropertyID  string
	PeriodID    string
	TotalAmount int64
	ActorID     string
}

// RunDistribution pays each active investor on the property its
// pro-rata share of TotalAmount. The rounding remainder is recorded on
// the run row, never silently dropped.
func (uc *DistributionUseCase) RunDistribution(ctx context.Context, input RunDistributionInput) (*domain.DistributionRun, error) {
	if err := domain.ValidateAmount(input.TotalAmount); err != nil {
		return nil, err
	}

	if _, err := uc.propertyRepo.GetByID(ctx, input.PropertyID); err != nil {
		return nil, err
	}

	// A finished run for this period is a no-op re-run. Only a missing
	// run means "not yet paid"; a lookup failure must not start one.
	existing, err := uc.distributionRepo.GetByPropertyAndPeriod(ctx, input.PropertyID, input.PeriodID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrDistributionNotFound) {
		return nil, err
	}

	investments, err := uc.investmentRepo.ListActiveByProperty(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}

	run := &domain.DistributionRun{
		ID:          uc.idGen.Generate(),
		PropertyID:  input.PropertyID,
		PeriodID:    input.PeriodID,
		TotalAmount: input.TotalAmount,
		CreatedAt:   time.Now().UTC(),
	}

	// Credits first, the run row last: a crash mid-way leaves no run
	// row, and the ledger's per-reference idempotency absorbs the
	// repeats on the next attempt.
	var distributed int64
	for _, investment := range investments {
		creditAmount := domain.ProRataShare(input.TotalAmount, investment.OwnershipUnits)
		if creditAmount <= 0 {
			continue
		}

		if err := uc.creditInvestor(ctx, run, investment, creditAmount); err != nil {
			return nil, err
		}

		distributed += creditAmount
		run.InvestorsPaid++
	}

	run.DistributedCents = distributed
	run.RemainderCents = input.TotalAmount - distributed

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.distributionRepo.Create(txCtx, tx, run); err != nil {
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
			Action:       string(domain.AuditActionDistributionRun),
			ResourceType: "distribution_run",
			ResourceID:   run.ID,
			AfterState:   domain.MarshalState(run),
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
		uc.metrics.DistributionsRun.Inc()
		uc.metrics.DistributionRemainder.Add(float64(run.RemainderCents))
	}

	return run, nil
}

// creditInvestor credits one investment's share in its own transaction
// together with the notification event.
func (uc *DistributionUseCase) creditInvestor(ctx context.Context, run *domain.DistributionRun, investment *domain.Investment, amount int64) error {
	account, err := uc.walletRepo.GetAccountByUserID(ctx, investment.UserID)
	if err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	referenceID := run.ReferenceID(investment.ID)

	txn, err := uc.ledger.CreditInTx(txCtx, tx, EntryInput{
		AccountID:   account.ID,
		Amount:      amount,
		Type:        domain.TransactionTypeDistributionCredit,
		ReferenceID: referenceID,
	})
	if err != nil {
		return err
	}

	// Re-run replay: the credit already existed, nothing new to notify.
	if txn.ReferenceID == referenceID && txn.CreatedAt.Before(run.CreatedAt) {
		return tx.Commit(txCtx)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   investment.ID,
		AggregateType: domain.AggregateTypeDistribution,
		EventType:     domain.EventTypeDistributionReceived,
		Payload: map[string]any{
			"property_id":   run.PropertyID,
			"period_id":     run.PeriodID,
			"investment_id": investment.ID,
			"user_id":       investment.UserID,
			"amount":        amount,
		},
		CreatedAt: time.Now().UTC(),
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.DistributionCredits.Inc()
	}

	return tx.Commit(txCtx)
}

// GetRun retrieves a distribution run by property and period.
func (uc *DistributionUseCase) GetRun(ctx context.Context, propertyID, periodID string) (*domain.DistributionRun, error) {
	return uc.distributionRepo.GetByPropertyAndPeriod(ctx, propertyID, periodID)
}

// ListRuns lists distribution runs for a property.
func (uc *DistributionUseCase) ListRuns(ctx context.Context, propertyID string, limit, offset int) ([]*domain.DistributionRun, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.distributionRepo.ListByProperty(ctx, propertyID, limit, offset)
}
