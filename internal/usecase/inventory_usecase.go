package usecase

import (
	"context"
	"time"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/infrastructure/metrics"
)

// InventoryUseCase guards each property's remaining share supply. The
// repository's conditional decrement is the single authority over the
// counter; this layer adds the funded transition event and rollback
// semantics.
type InventoryUseCase struct {
	txManager    TransactionManager
	propertyRepo PropertyRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewInventoryUseCase creates a new InventoryUseCase.
func NewInventoryUseCase(
	txManager TransactionManager,
	propertyRepo PropertyRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *InventoryUseCase {
	return &InventoryUseCase{
		txManager:    txManager,
		propertyRepo: propertyRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		metrics:      metrics,
	}
}

// ReserveInTx takes quantity shares from the property inside the
// caller's transaction. Atomic with respect to all other reservations
// on the same property: concurrent over-subscription resolves so that
// only requests that fit succeed, the rest fail with
// InsufficientShares and no state change.
func (uc *InventoryUseCase) ReserveInTx(ctx context.Context, tx Transaction, propertyID string, quantity int64) (*domain.Reservation, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	reservation, err := uc.propertyRepo.Reserve(ctx, tx, propertyID, quantity)
	if err != nil {
		return nil, err
	}

	if reservation.Funded {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   propertyID,
			AggregateType: domain.AggregateTypeProperty,
			EventType:     domain.EventTypePropertyFunded,
			Payload: map[string]any{
				"property_id": propertyID,
			},
			CreatedAt: time.Now().UTC(),
			Published: false,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if uc.metrics != nil {
		uc.metrics.SharesReserved.Add(float64(quantity))
	}

	return reservation, nil
}

// ReleaseInTx restores a reservation inside the caller's transaction.
// Used when a later step of the same allocation fails, and by the
// expiry sweep for unconfirmed pending investments.
func (uc *InventoryUseCase) ReleaseInTx(ctx context.Context, tx Transaction, reservation *domain.Reservation) error {
	if err := uc.propertyRepo.Release(ctx, tx, reservation); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.SharesReleased.Add(float64(reservation.Quantity))
	}

	return nil
}

// Release restores a reservation in its own transaction. Callers that
// already committed the reserving transaction (the external-payment
// settlement path) use this to hand shares back.
func (uc *InventoryUseCase) Release(ctx context.Context, reservation *domain.Reservation) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.ReleaseInTx(txCtx, tx, reservation); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}
