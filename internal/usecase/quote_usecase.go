package usecase

import (
	"context"
	"encoding/json"

	"github.com/sahmly/engine/internal/domain"
)

// QuoteUseCase prices investment requests. It is read-only: the quote
// is an advisory pre-check, supply is re-verified at reservation time.
type QuoteUseCase struct {
	propertyRepo PropertyRepository
	cache        Cache
	policy       domain.FeePolicy
}

// NewQuoteUseCase creates a new QuoteUseCase. cache may be nil.
func NewQuoteUseCase(propertyRepo PropertyRepository, cache Cache, policy domain.FeePolicy) *QuoteUseCase {
	return &QuoteUseCase{
		propertyRepo: propertyRepo,
		cache:        cache,
		policy:       policy,
	}
}

// Policy returns the configured fee schedule.
func (uc *QuoteUseCase) Policy() domain.FeePolicy {
	return uc.policy
}

// Calculate prices numberOfShares of the property for a UI preview or
// as the first step of an allocation.
func (uc *QuoteUseCase) Calculate(ctx context.Context, propertyID string, numberOfShares int64) (*domain.Quote, error) {
	property, err := uc.getProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if property.Status != domain.PropertyStatusAvailable {
		return nil, domain.ErrPropertyNotOpen
	}

	return domain.CalculateQuote(property, numberOfShares, uc.policy)
}

// getProperty reads a property, serving repeat quote traffic from a
// short-lived cache snapshot.
func (uc *QuoteUseCase) getProperty(ctx context.Context, id string) (*domain.Property, error) {
	if uc.cache == nil {
		return uc.propertyRepo.GetByID(ctx, id)
	}

	key := "property:" + id
	if cached, err := uc.cache.Get(ctx, key); err == nil {
		var p domain.Property
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
	}

	property, err := uc.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(property); err == nil {
		_ = uc.cache.Set(ctx, key, string(data), QuoteCacheTTL)
	}

	return property, nil
}
