package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

// DistributionRepository implements usecase.DistributionRepository.
type DistributionRepository struct {
	pool *pgxpool.Pool
}

// NewDistributionRepository creates a new DistributionRepository.
func NewDistributionRepository(pool *pgxpool.Pool) *DistributionRepository {
	return &DistributionRepository{pool: pool}
}

const distributionColumns = `id, property_id, period_id, total_amount, distributed_cents, remainder_cents, investors_paid, created_at`

// Create records a distribution run within a transaction. A unique
// index on (property_id, period_id) rejects duplicate runs.
func (r *DistributionRepository) Create(ctx context.Context, tx usecase.Transaction, run *domain.DistributionRun) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO distribution_runs (`+distributionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		run.ID,
		run.PropertyID,
		run.PeriodID,
		run.TotalAmount,
		run.DistributedCents,
		run.RemainderCents,
		run.InvestorsPaid,
		run.CreatedAt,
	)

	return err
}

// GetByPropertyAndPeriod retrieves a run by its natural key.
func (r *DistributionRepository) GetByPropertyAndPeriod(ctx context.Context, propertyID, periodID string) (*domain.DistributionRun, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+distributionColumns+`
		FROM distribution_runs
		WHERE property_id = $1 AND period_id = $2
	`, propertyID, periodID)

	return scanDistributionRun(row)
}

// ListByProperty pages a property's runs, newest first.
func (r *DistributionRepository) ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]*domain.DistributionRun, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+distributionColumns+`
		FROM distribution_runs
		WHERE property_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, propertyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.DistributionRun
	for rows.Next() {
		run, err := scanDistributionRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func scanDistributionRun(row rowScanner) (*domain.DistributionRun, error) {
	var d domain.DistributionRun
	err := row.Scan(
		&d.ID,
		&d.PropertyID,
		&d.PeriodID,
		&d.TotalAmount,
		&d.DistributedCents,
		&d.RemainderCents,
		&d.InvestorsPaid,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDistributionNotFound
		}
		return nil, err
	}

	return &d, nil
}
