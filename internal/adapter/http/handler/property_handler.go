package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/sahmly/engine/internal/adapter/http/dto"
	"github.com/sahmly/engine/internal/domain"
)

// PropertyCatalog defines the behavior needed by PropertyHandler.
type PropertyCatalog interface {
	Create(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Property, error)
}

// QuoteService prices investment previews.
type QuoteService interface {
	Calculate(ctx context.Context, propertyID string, numberOfShares int64) (*domain.Quote, error)
}

// PropertyHandler handles property catalog HTTP requests.
type PropertyHandler struct {
	catalog PropertyCatalog
	quotes  QuoteService
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(catalog PropertyCatalog, quotes QuoteService) *PropertyHandler {
	return &PropertyHandler{catalog: catalog, quotes: quotes}
}

// Create lists a new property offering.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.TotalShares < 1 || req.SharePriceCents < 1 {
		writeError(w, http.StatusBadRequest, "invalid property", "total_shares and share_price_cents must be positive")
		return
	}
	if err := domain.ValidateCurrency(req.Currency); err != nil {
		writeError(w, http.StatusBadRequest, "invalid property", err.Error())
		return
	}

	status := domain.PropertyStatus(req.Status)
	if status == "" {
		status = domain.PropertyStatusAvailable
	}

	now := time.Now().UTC()
	property := &domain.Property{
		ID:              ulid.Make().String(),
		Name:            req.Name,
		Currency:        req.Currency,
		TotalShares:     req.TotalShares,
		AvailableShares: req.TotalShares,
		SharePriceCents: req.SharePriceCents,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.catalog.Create(r.Context(), property); err != nil {
		writeError(w, mapDomainError(err), "failed to create property", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PropertyFromDomain(property))
}

// Get retrieves a property by ID.
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	property, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get property", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PropertyFromDomain(property))
}

// List lists property offerings.
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, _ := domain.ValidatePagination(
		parseIntQuery(r, "limit", 20),
		parseIntQuery(r, "offset", 0),
	)

	properties, err := h.catalog.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list properties", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPropertiesResponse{
		Properties: dto.PropertiesFromDomain(properties),
		Total:      int64(len(properties)),
	})
}

// Quote previews the cost of buying shares without reserving anything.
func (h *PropertyHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	shares := parseInt64Query(r, "shares", 0)

	quote, err := h.quotes.Calculate(r.Context(), id, shares)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to calculate quote", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromDomain(quote))
}
