package usecase

import (
	"context"
	"time"

	"github.com/sahmly/engine/internal/domain"
)

// PropertyRepository defines data access for property offerings.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Property, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Property, error)
	// Reserve atomically decrements available shares if and only if
	// quantity is still available; it is the single authority over the
	// counter. Returns domain.ErrInsufficientShares without state change
	// when the race is lost.
	Reserve(ctx context.Context, tx Transaction, propertyID string, quantity int64) (*domain.Reservation, error)
	// Release restores a reservation's quantity, flipping a funded
	// property back to available when shares reappear.
	Release(ctx context.Context, tx Transaction, reservation *domain.Reservation) error
}

// InvestmentRepository defines data access for investments.
type InvestmentRepository interface {
	Create(ctx context.Context, tx Transaction, investment *domain.Investment) error
	GetByID(ctx context.Context, id string) (*domain.Investment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Investment, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.InvestmentStatus, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Investment, error)
	ListActiveByProperty(ctx context.Context, propertyID string) ([]*domain.Investment, error)
	// ListExpiredPending returns pending investments whose reservation
	// window elapsed before now, for the expiry sweep.
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.Investment, error)
}

// WalletRepository defines data access for wallet accounts and their
// append-only transaction log.
type WalletRepository interface {
	CreateAccount(ctx context.Context, account *domain.WalletAccount) error
	GetAccountByID(ctx context.Context, id string) (*domain.WalletAccount, error)
	GetAccountByUserID(ctx context.Context, userID string) (*domain.WalletAccount, error)
	GetAccountByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.WalletAccount, error)
	UpdateBalance(ctx context.Context, tx Transaction, accountID string, balance int64, updatedAt time.Time) error
	SetFrozen(ctx context.Context, accountID string, frozen bool) error
	ListAccounts(ctx context.Context, limit, offset int) ([]*domain.WalletAccount, error)

	CreateTransaction(ctx context.Context, tx Transaction, txn *domain.WalletTransaction) error
	GetTransactionByID(ctx context.Context, id string) (*domain.WalletTransaction, error)
	GetTransactionByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.WalletTransaction, error)
	// GetCompletedByReference looks up a completed transaction by its
	// idempotency key.
	GetCompletedByReference(ctx context.Context, tx Transaction, txnType domain.TransactionType, referenceID string) (*domain.WalletTransaction, error)
	UpdateTransactionStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, balanceAfter *int64, settledAt time.Time) error
	ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.WalletTransaction, error)
	// SumCompleted replays the transaction log: signed sum of all
	// completed rows for the account.
	SumCompleted(ctx context.Context, accountID string) (int64, error)
}

// BankAccountRepository defines data access for withdrawal destinations.
type BankAccountRepository interface {
	Create(ctx context.Context, account *domain.BankAccount) error
	GetByID(ctx context.Context, id string) (*domain.BankAccount, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.BankAccount, error)
}

// DistributionRepository defines data access for distribution runs.
type DistributionRepository interface {
	Create(ctx context.Context, tx Transaction, run *domain.DistributionRun) error
	GetByPropertyAndPeriod(ctx context.Context, propertyID, periodID string) (*domain.DistributionRun, error)
	ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]*domain.DistributionRun, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// EligibilityService reads the investor's KYC verdict from the profile
// collaborator.
type EligibilityService interface {
	GetEligibility(ctx context.Context, userID string) (*domain.Eligibility, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
