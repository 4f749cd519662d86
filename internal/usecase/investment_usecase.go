package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/infrastructure/metrics"
)

// InvestmentUseCase coordinates an allocation: eligibility, pricing,
// share reservation and wallet debit as one atomic unit of work.
// Ordering is always reserve-then-debit so a wallet lock is never held
// while waiting on contended share inventory.
type InvestmentUseCase struct {
	txManager      TransactionManager
	retrier        Retrier
	eligibility    EligibilityService
	propertyRepo   PropertyRepository
	investmentRepo InvestmentRepository
	walletRepo     WalletRepository
	inventory      *InventoryUseCase
	ledger         *LedgerUseCase
	outboxRepo     OutboxRepository
	auditRepo      AuditRepository
	idGen          IDGenerator
	policy         domain.FeePolicy
	window         time.Duration
	logger         zerolog.Logger
	metrics        *metrics.Metrics
}

// InvestmentUseCaseConfig holds dependencies for InvestmentUseCase.
type InvestmentUseCaseConfig struct {
	TxManager      TransactionManager
	Retrier        Retrier
	Eligibility    EligibilityService
	PropertyRepo   PropertyRepository
	InvestmentRepo InvestmentRepository
	WalletRepo     WalletRepository
	Inventory      *InventoryUseCase
	Ledger         *LedgerUseCase
	OutboxRepo     OutboxRepository
	AuditRepo      AuditRepository
	IDGen          IDGenerator
	Policy         domain.FeePolicy
	// ReservationWindow bounds pending external-payment investments.
	ReservationWindow time.Duration
	Logger            zerolog.Logger
	Metrics           *metrics.Metrics
}

// NewInvestmentUseCase creates a new InvestmentUseCase.
func NewInvestmentUseCase(cfg InvestmentUseCaseConfig) *InvestmentUseCase {
	if cfg.ReservationWindow == 0 {
		cfg.ReservationWindow = DefaultReservationWindow
	}

	return &InvestmentUseCase{
		txManager:      cfg.TxManager,
		retrier:        cfg.Retrier,
		eligibility:    cfg.Eligibility,
		propertyRepo:   cfg.PropertyRepo,
		investmentRepo: cfg.InvestmentRepo,
		walletRepo:     cfg.WalletRepo,
		inventory:      cfg.Inventory,
		ledger:         cfg.Ledger,
		outboxRepo:     cfg.OutboxRepo,
		auditRepo:      cfg.AuditRepo,
		idGen:          cfg.IDGen,
		policy:         cfg.Policy,
		window:         cfg.ReservationWindow,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
	}
}

// InvestInput represents an allocation request.
type InvestInput struct {
	UserID         string
	PropertyID     string
	NumberOfShares int64
	FundingSource  domain.FundingSource
	PaymentMethod  string
}

// Invest allocates shares for an investor. Wallet-funded allocations
// debit immediately and come back active; external-payment allocations
// come back pending with their shares reserved until settlement or
// expiry. Any failure after reservation rolls the reservation back
// before returning, so available shares never leak.
func (uc *InvestmentUseCase) Invest(ctx context.Context, input InvestInput) (*domain.Investment, error) {
	// Eligibility first: fails before any state is touched.
	eligibility, err := uc.eligibility.GetEligibility(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := eligibility.CheckInvest(); err != nil {
		return nil, err
	}

	account, err := uc.walletRepo.GetAccountByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	var investment *domain.Investment

	op := func() error {
		investment = nil

		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		// Lock the property row: the quote below is computed against
		// supply that cannot change until commit.
		property, err := uc.propertyRepo.GetByIDForUpdate(txCtx, tx, input.PropertyID)
		if err != nil {
			return err
		}

		if property.Status != domain.PropertyStatusAvailable {
			return domain.ErrPropertyNotOpen
		}

		quote, err := domain.CalculateQuote(property, input.NumberOfShares, uc.policy)
		if err != nil {
			return err
		}

		if _, err := uc.inventory.ReserveInTx(txCtx, tx, input.PropertyID, input.NumberOfShares); err != nil {
			return err
		}

		now := time.Now().UTC()
		investment = &domain.Investment{
			ID:               uc.idGen.Generate(),
			PropertyID:       input.PropertyID,
			UserID:           input.UserID,
			NumberOfShares:   quote.NumberOfShares,
			InvestmentAmount: quote.InvestmentAmount,
			PlatformFee:      quote.PlatformFee,
			ProcessingFee:    quote.ProcessingFee,
			TotalAmount:      quote.TotalAmount,
			OwnershipUnits:   quote.OwnershipUnits,
			FundingSource:    input.FundingSource,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		entry := EntryInput{
			AccountID:     account.ID,
			Amount:        quote.TotalAmount,
			Type:          domain.TransactionTypeInvestmentDebit,
			PaymentMethod: input.PaymentMethod,
			ReferenceID:   investment.ID,
		}

		switch input.FundingSource {
		case domain.FundingSourceWallet:
			// On InsufficientBalance the rollback below restores the
			// reservation: reserve and debit share one transaction.
			txn, err := uc.ledger.DebitInTx(txCtx, tx, entry)
			if err != nil {
				return err
			}
			investment.Status = domain.InvestmentStatusActive
			investment.PaymentTransactionID = txn.ID

		case domain.FundingSourceExternal:
			txn, err := uc.ledger.OpenPendingInTx(txCtx, tx, entry)
			if err != nil {
				return err
			}
			expiresAt := now.Add(uc.window)
			investment.Status = domain.InvestmentStatusPending
			investment.ExpiresAt = &expiresAt
			investment.PaymentTransactionID = txn.ID

		default:
			return domain.ErrInvalidAmount
		}

		if err := uc.investmentRepo.Create(txCtx, tx, investment); err != nil {
			return err
		}

		if investment.Status == domain.InvestmentStatusActive {
			if err := uc.emitConfirmed(txCtx, tx, investment); err != nil {
				return err
			}
		}

		if uc.auditRepo != nil {
			auditLog := &domain.AuditLog{
				ID:           uc.idGen.Generate(),
				ActorID:      input.UserID,
				Action:       string(domain.AuditActionInvestmentCreate),
				ResourceType: "investment",
				ResourceID:   investment.ID,
				AfterState:   domain.MarshalState(investment),
				Status:       string(domain.AuditStatusSuccess),
				CreatedAt:    now,
			}
			if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
				return err
			}
		}

		return tx.Commit(txCtx)
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InvestmentsCreated.WithLabelValues(string(input.FundingSource)).Inc()
	}

	return investment, nil
}

// SettleInput represents the settlement verdict for a pending
// external-payment investment.
type SettleInput struct {
	InvestmentID string
	Outcome      domain.SettlementOutcome
	// PaymentReference is the external payment proof backing a
	// completed settlement.
	PaymentReference string
	ActorID          string
}

// Settle resolves a pending external-payment investment. A completed
// outcome books the external funds as a deposit and consumes the
// pending debit, flipping the investment active; failed or cancelled
// outcomes hand the reserved shares back. Settlement locks the
// investment row, then the transaction row, then the wallet, which
// can deadlock against concurrent settlement paths taking the locks
// in another order; the retrier absorbs the aborted attempt.
func (uc *InvestmentUseCase) Settle(ctx context.Context, input SettleInput) (*domain.Investment, error) {
	if !input.Outcome.Valid() {
		return nil, domain.ErrNotPending
	}

	var investment *domain.Investment

	op := func() error {
		investment = nil

		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		investment, err = uc.investmentRepo.GetByIDForUpdate(txCtx, tx, input.InvestmentID)
		if err != nil {
			return err
		}

		if investment.Status != domain.InvestmentStatusPending {
			return domain.ErrInvestmentNotPending
		}

		account, err := uc.walletRepo.GetAccountByUserID(txCtx, investment.UserID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		if input.Outcome == domain.SettlementCompleted {
			// Book the external funds first so the pending debit settles
			// against a covered balance; the two rows net to zero and keep
			// the replay invariant intact.
			paymentRef := input.PaymentReference
			if paymentRef == "" {
				paymentRef = "payment:" + investment.ID
			}
			if _, err := uc.ledger.CreditInTx(txCtx, tx, EntryInput{
				AccountID:   account.ID,
				Amount:      investment.TotalAmount,
				Type:        domain.TransactionTypeDeposit,
				ReferenceID: paymentRef,
			}); err != nil {
				return err
			}

			if _, err := uc.ledger.SettlePendingInTx(txCtx, tx, investment.PaymentTransactionID, domain.SettlementCompleted); err != nil {
				return err
			}

			if err := uc.investmentRepo.UpdateStatus(txCtx, tx, investment.ID, domain.InvestmentStatusActive, now); err != nil {
				return err
			}
			investment.Status = domain.InvestmentStatusActive

			if err := uc.emitConfirmed(txCtx, tx, investment); err != nil {
				return err
			}
		} else {
			if _, err := uc.ledger.SettlePendingInTx(txCtx, tx, investment.PaymentTransactionID, input.Outcome); err != nil {
				return err
			}

			if err := uc.inventory.ReleaseInTx(txCtx, tx, &domain.Reservation{
				PropertyID: investment.PropertyID,
				Quantity:   investment.NumberOfShares,
			}); err != nil {
				return err
			}

			if err := uc.investmentRepo.UpdateStatus(txCtx, tx, investment.ID, domain.InvestmentStatusCancelled, now); err != nil {
				return err
			}
			investment.Status = domain.InvestmentStatusCancelled
		}

		if uc.auditRepo != nil {
			actor := input.ActorID
			if actor == "" {
				actor = "system"
			}
			auditLog := &domain.AuditLog{
				ID:           uc.idGen.Generate(),
				ActorID:      actor,
				Action:       string(domain.AuditActionInvestmentSettle),
				ResourceType: "investment",
				ResourceID:   investment.ID,
				AfterState:   domain.MarshalState(investment),
				Status:       string(domain.AuditStatusSuccess),
				CreatedAt:    now,
			}
			if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
				return err
			}
		}

		return tx.Commit(txCtx)
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InvestmentsSettled.WithLabelValues(string(input.Outcome)).Inc()
	}

	return investment, nil
}

// ExpireInvestments releases reservations held by pending investments
// whose confirmation window elapsed. Called periodically by the sweep
// worker; returns how many were cancelled. One investment failing to
// expire must not block the rest of the batch, so failures are logged
// and skipped; the next tick picks them up again.
func (uc *InvestmentUseCase) ExpireInvestments(ctx context.Context, now time.Time) (int, error) {
	expired, err := uc.investmentRepo.ListExpiredPending(ctx, now, SweepBatchSize)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, investment := range expired {
		if err := uc.expireOne(ctx, investment.ID); err != nil {
			uc.logger.Error().Err(err).
				Str("investment_id", investment.ID).
				Msg("failed to expire investment, skipping")
			continue
		}
		cancelled++
	}

	if uc.metrics != nil && cancelled > 0 {
		uc.metrics.InvestmentsExpired.Add(float64(cancelled))
	}

	return cancelled, nil
}

func (uc *InvestmentUseCase) expireOne(ctx context.Context, investmentID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	investment, err := uc.investmentRepo.GetByIDForUpdate(txCtx, tx, investmentID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	// Re-check under the lock: settlement may have won the race.
	if !investment.Expired(now) {
		return tx.Rollback(txCtx)
	}

	if _, err := uc.ledger.SettlePendingInTx(txCtx, tx, investment.PaymentTransactionID, domain.SettlementCancelled); err != nil {
		return err
	}

	if err := uc.inventory.ReleaseInTx(txCtx, tx, &domain.Reservation{
		PropertyID: investment.PropertyID,
		Quantity:   investment.NumberOfShares,
	}); err != nil {
		return err
	}

	if err := uc.investmentRepo.UpdateStatus(txCtx, tx, investment.ID, domain.InvestmentStatusCancelled, now); err != nil {
		return err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      "system",
			Action:       string(domain.AuditActionInvestmentExpire),
			ResourceType: "investment",
			ResourceID:   investment.ID,
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return err
		}
	}

	return tx.Commit(txCtx)
}

// GetInvestment retrieves an investment by ID.
func (uc *InvestmentUseCase) GetInvestment(ctx context.Context, id string) (*domain.Investment, error) {
	return uc.investmentRepo.GetByID(ctx, id)
}

// ListInvestmentsInput represents input for listing a user's investments.
type ListInvestmentsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListInvestments lists a user's investments.
func (uc *InvestmentUseCase) ListInvestments(ctx context.Context, input ListInvestmentsInput) ([]*domain.Investment, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.investmentRepo.ListByUser(ctx, input.UserID, limit, offset)
}

func (uc *InvestmentUseCase) emitConfirmed(ctx context.Context, tx Transaction, investment *domain.Investment) error {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   investment.ID,
		AggregateType: domain.AggregateTypeInvestment,
		EventType:     domain.EventTypeInvestmentConfirmed,
		Payload: map[string]any{
			"investment_id":    investment.ID,
			"property_id":      investment.PropertyID,
			"user_id":          investment.UserID,
			"number_of_shares": investment.NumberOfShares,
			"total_amount":     investment.TotalAmount,
		},
		CreatedAt: time.Now().UTC(),
		Published: false,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}
