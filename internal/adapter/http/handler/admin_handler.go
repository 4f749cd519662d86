package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sahmly/engine/internal/adapter/http/dto"
	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

// SettlementService resolves pending wallet transactions.
type SettlementService interface {
	SettlePending(ctx context.Context, input usecase.SettlePendingInput) (*domain.WalletTransaction, error)
}

// DistributionService runs and reads income distributions.
type DistributionService interface {
	RunDistribution(ctx context.Context, input usecase.RunDistributionInput) (*domain.DistributionRun, error)
	GetRun(ctx context.Context, propertyID, periodID string) (*domain.DistributionRun, error)
	ListRuns(ctx context.Context, propertyID string, limit, offset int) ([]*domain.DistributionRun, error)
}

// ReconciliationService replays wallet ledgers against cached balances.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// AdminHandler handles back-office HTTP requests: settlement,
// distribution and reconciliation. The gateway restricts these routes
// to operator roles.
type AdminHandler struct {
	settlementUC     SettlementService
	distributionUC   DistributionService
	reconciliationUC ReconciliationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(settlementUC SettlementService, distributionUC DistributionService, reconciliationUC ReconciliationService) *AdminHandler {
	return &AdminHandler{
		settlementUC:     settlementUC,
		distributionUC:   distributionUC,
		reconciliationUC: reconciliationUC,
	}
}

// SettleTransaction resolves a pending deposit or withdrawal.
func (h *AdminHandler) SettleTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.SettleTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.settlementUC.SettlePending(r.Context(), usecase.SettlePendingInput{
		TransactionID: id,
		Outcome:       domain.SettlementOutcome(req.Outcome),
		ActorID:       userID(r),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to settle transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// RunDistribution distributes property income pro rata.
func (h *AdminHandler) RunDistribution(w http.ResponseWriter, r *http.Request) {
	var req dto.RunDistributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	run, err := h.distributionUC.RunDistribution(r.Context(), usecase.RunDistributionInput{
		PropertyID:  req.PropertyID,
		PeriodID:    req.PeriodID,
		TotalAmount: req.TotalAmount,
		ActorID:     userID(r),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run distribution", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.DistributionRunFromDomain(run))
}

// GetDistribution retrieves a run by property and period.
func (h *AdminHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	periodID := chi.URLParam(r, "period")

	run, err := h.distributionUC.GetRun(r.Context(), propertyID, periodID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get distribution", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributionRunFromDomain(run))
}

// ListDistributions pages a property's runs.
func (h *AdminHandler) ListDistributions(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")

	runs, err := h.distributionUC.ListRuns(r.Context(), propertyID,
		parseIntQuery(r, "limit", 20),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list distributions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributionRunsFromDomain(runs))
}

// ReconcileAccount replays one account's ledger.
func (h *AdminHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationResultFromUseCase(result))
}

// ReconcileAll replays every account's ledger.
func (h *AdminHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.ReconcileAll(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
