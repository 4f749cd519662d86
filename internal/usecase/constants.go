package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database
	// transaction, preventing long-running transactions from holding
	// row locks.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// QuoteCacheTTL bounds staleness of cached property snapshots used
	// by the read-only quote endpoint. Quotes are advisory; reservation
	// re-checks supply.
	QuoteCacheTTL = 30 * time.Second

	// DefaultReservationWindow is how long a pending external-payment
	// investment may hold its share reservation before the sweep
	// releases it.
	DefaultReservationWindow = 48 * time.Hour

	// SweepBatchSize caps expired investments processed per sweep tick.
	SweepBatchSize = 100
)
