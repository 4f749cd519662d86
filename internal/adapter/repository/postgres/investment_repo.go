package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

// InvestmentRepository implements usecase.InvestmentRepository.
type InvestmentRepository struct {
	pool *pgxpool.Pool
}

// NewInvestmentRepository creates a new InvestmentRepository.
func NewInvestmentRepository(pool *pgxpool.Pool) *InvestmentRepository {
	return &InvestmentRepository{pool: pool}
}

const investmentColumns = `id, property_id, user_id, number_of_shares, investment_amount, platform_fee, processing_fee, total_amount, ownership_units, funding_source, status, payment_transaction_id, expires_at, created_at, updated_at`

// Create creates a new investment within a transaction.
func (r *InvestmentRepository) Create(ctx context.Context, tx usecase.Transaction, investment *domain.Investment) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO investments (`+investmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		investment.ID,
		investment.PropertyID,
		investment.UserID,
		investment.NumberOfShares,
		investment.InvestmentAmount,
		investment.PlatformFee,
		investment.ProcessingFee,
		investment.TotalAmount,
		investment.OwnershipUnits,
		investment.FundingSource,
		investment.Status,
		investment.PaymentTransactionID,
		investment.ExpiresAt,
		investment.CreatedAt,
		investment.UpdatedAt,
	)

	return err
}

// GetByID retrieves an investment by ID.
func (r *InvestmentRepository) GetByID(ctx context.Context, id string) (*domain.Investment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+investmentColumns+` FROM investments WHERE id = $1
	`, id)

	return scanInvestment(row)
}

// GetByIDForUpdate retrieves an investment with a FOR UPDATE lock,
// serializing settlement against the expiry sweep.
func (r *InvestmentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Investment, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+investmentColumns+` FROM investments WHERE id = $1 FOR UPDATE
	`, id)

	return scanInvestment(row)
}

// UpdateStatus transitions an investment's lifecycle state.
func (r *InvestmentRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.InvestmentStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE investments SET status = $2, updated_at = $3 WHERE id = $1
	`, id, status, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvestmentNotFound
	}

	return nil
}

// ListByUser pages a user's investments, newest first.
func (r *InvestmentRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Investment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+investmentColumns+`
		FROM investments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvestments(rows)
}

// ListActiveByProperty retrieves every active investment in a property,
// oldest first, for distribution runs.
func (r *InvestmentRepository) ListActiveByProperty(ctx context.Context, propertyID string) ([]*domain.Investment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+investmentColumns+`
		FROM investments
		WHERE property_id = $1 AND status = 'active'
		ORDER BY created_at ASC
	`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvestments(rows)
}

// ListExpiredPending retrieves pending investments whose reservation
// window elapsed before now.
func (r *InvestmentRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.Investment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+investmentColumns+`
		FROM investments
		WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvestments(rows)
}

func collectInvestments(rows pgx.Rows) ([]*domain.Investment, error) {
	var investments []*domain.Investment
	for rows.Next() {
		investment, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		investments = append(investments, investment)
	}

	return investments, rows.Err()
}

func scanInvestment(row rowScanner) (*domain.Investment, error) {
	var i domain.Investment
	err := row.Scan(
		&i.ID,
		&i.PropertyID,
		&i.UserID,
		&i.NumberOfShares,
		&i.InvestmentAmount,
		&i.PlatformFee,
		&i.ProcessingFee,
		&i.TotalAmount,
		&i.OwnershipUnits,
		&i.FundingSource,
		&i.Status,
		&i.PaymentTransactionID,
		&i.ExpiresAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestmentNotFound
		}
		return nil, err
	}

	return &i, nil
}
