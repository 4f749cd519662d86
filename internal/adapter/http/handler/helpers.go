package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sahmly/engine/internal/adapter/http/dto"
	"github.com/sahmly/engine/internal/adapter/http/middleware"
	"github.com/sahmly/engine/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrPropertyNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrInvestmentNotFound),
		errors.Is(err, domain.ErrBankAccountNotFound),
		errors.Is(err, domain.ErrDistributionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientShares),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrPropertyNotOpen),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrInvestmentPaymentSettle),
		errors.Is(err, domain.ErrInvestmentNotPending),
		errors.Is(err, domain.ErrReservationExpired):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAccountFrozen),
		errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrBankAccountNotOwned):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidIDFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// userID returns the gateway-authenticated caller.
func userID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseInt64Query parses an int64 query parameter.
func parseInt64Query(r *http.Request, key string, defaultValue int64) int64 {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultValue
	}
	return i
}
