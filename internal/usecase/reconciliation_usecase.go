package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/infrastructure/metrics"
)

// ReconciliationUseCase verifies that every cached wallet balance
// matches a replay of its completed transactions. Drift is fatal for
// the account: it is frozen against further debits and an operator
// alert is raised; the number is never silently fixed.
type ReconciliationUseCase struct {
	walletRepo WalletRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case.
func NewReconciliationUseCase(
	walletRepo WalletRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		walletRepo: walletRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		logger:     logger,
		metrics:    metrics,
	}
}

// ReconciliationResult represents the verdict for one account.
type ReconciliationResult struct {
	AccountID        string
	UserID           string
	RecordedBalance  int64
	ReplayedBalance  int64
	Difference       int64
	IsReconciled     bool
	FrozenByThisScan bool
	LastChecked      time.Time
}

// ReconcileAccount replays one account's transaction log against its
// cached balance.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.walletRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	replayed, err := uc.walletRepo.SumCompleted(ctx, accountID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		AccountID:       accountID,
		UserID:          account.UserID,
		RecordedBalance: account.Balance,
		ReplayedBalance: replayed,
		Difference:      account.Balance - replayed,
		IsReconciled:    account.Balance == replayed,
		LastChecked:     time.Now().UTC(),
	}

	if result.IsReconciled {
		return result, nil
	}

	// Drift: halt debits on the account and alert. Recovery is a
	// manual operator decision.
	if !account.Frozen {
		if err := uc.walletRepo.SetFrozen(ctx, accountID, true); err != nil {
			return nil, err
		}
		result.FrozenByThisScan = true

		if uc.auditRepo != nil {
			_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
				ID:           uc.idGen.Generate(),
				ActorID:      "system",
				Action:       string(domain.AuditActionAccountFreeze),
				ResourceType: "wallet_account",
				ResourceID:   accountID,
				AfterState: domain.JSON{
					"recorded_balance": account.Balance,
					"replayed_balance": replayed,
				},
				Status:    string(domain.AuditStatusFailure),
				CreatedAt: time.Now().UTC(),
			})
		}
	}

	uc.logger.Error().
		Str("account_id", accountID).
		Int64("recorded_balance", account.Balance).
		Int64("replayed_balance", replayed).
		Int64("difference", result.Difference).
		Msg("ledger drift detected, account frozen")

	if uc.metrics != nil {
		uc.metrics.DriftDetected.Inc()
	}

	return result, nil
}

// ReconciliationReport represents a full reconciliation sweep.
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// ReconcileAll replays every account, paging through the account list.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	offset := 0
	for {
		accounts, err := uc.walletRepo.ListAccounts(ctx, domain.MaxPageLimit, offset)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			break
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, err
			}

			report.TotalAccounts++
			if result.IsReconciled {
				report.ReconciledAccounts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		offset += len(accounts)
	}

	return report, nil
}
