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

// InvestmentService defines the behavior needed by InvestmentHandler.
type InvestmentService interface {
	Invest(ctx context.Context, input usecase.InvestInput) (*domain.Investment, error)
	Settle(ctx context.Context, input usecase.SettleInput) (*domain.Investment, error)
	GetInvestment(ctx context.Context, id string) (*domain.Investment, error)
	ListInvestments(ctx context.Context, input usecase.ListInvestmentsInput) ([]*domain.Investment, error)
}

// InvestmentHandler handles investment HTTP requests.
type InvestmentHandler struct {
	investmentUC InvestmentService
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentUC InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investmentUC: investmentUC}
}

// Create allocates shares for the caller.
func (h *InvestmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.InvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	investment, err := h.investmentUC.Invest(r.Context(), req.ToUseCaseInput(userID(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create investment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvestmentFromDomain(investment))
}

// Get retrieves one of the caller's investments.
func (h *InvestmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	investment, err := h.investmentUC.GetInvestment(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get investment", err.Error())
		return
	}
	if investment.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "failed to get investment", domain.ErrInvestmentNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvestmentFromDomain(investment))
}

// List lists the caller's investments.
func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	investments, err := h.investmentUC.ListInvestments(r.Context(), usecase.ListInvestmentsInput{
		UserID: userID(r),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list investments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListInvestmentsResponse{
		Investments: dto.InvestmentsFromDomain(investments),
		Total:       int64(len(investments)),
	})
}

// Settle resolves a pending external-payment investment. Admin only;
// typically driven by a payment provider webhook consumer.
func (h *InvestmentHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.SettleInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	investment, err := h.investmentUC.Settle(r.Context(), usecase.SettleInput{
		InvestmentID:     id,
		Outcome:          domain.SettlementOutcome(req.Outcome),
		PaymentReference: req.PaymentReference,
		ActorID:          userID(r),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to settle investment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvestmentFromDomain(investment))
}
