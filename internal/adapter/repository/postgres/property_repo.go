package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

// PropertyRepository implements usecase.PropertyRepository.
type PropertyRepository struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

const propertyColumns = `id, name, currency, total_shares, available_shares, share_price_cents, status, version, created_at, updated_at`

// Create creates a new property offering.
func (r *PropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO properties (`+propertyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		property.ID,
		property.Name,
		property.Currency,
		property.TotalShares,
		property.AvailableShares,
		property.SharePriceCents,
		property.Status,
		property.Version,
		property.CreatedAt,
		property.UpdatedAt,
	)

	return err
}

// GetByID retrieves a property by ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+propertyColumns+` FROM properties WHERE id = $1
	`, id)

	return scanProperty(row)
}

// GetByIDForUpdate retrieves a property by ID with a FOR UPDATE lock.
func (r *PropertyRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Property, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+propertyColumns+` FROM properties WHERE id = $1 FOR UPDATE
	`, id)

	return scanProperty(row)
}

// List retrieves properties ordered by creation time, newest first.
func (r *PropertyRepository) List(ctx context.Context, limit, offset int) ([]*domain.Property, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*domain.Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}

	return properties, rows.Err()
}

// Reserve atomically decrements available shares. The conditional UPDATE
// is the single authority over the counter: two concurrent reservations
// serialize on the row and the loser's WHERE clause no longer matches.
// A decrement that empties the property flips it to funded in the same
// statement.
func (r *PropertyRepository) Reserve(ctx context.Context, tx usecase.Transaction, propertyID string, quantity int64) (*domain.Reservation, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var remaining int64
	err := pgxTx.QueryRow(ctx, `
		UPDATE properties
		SET available_shares = available_shares - $2,
		    status = CASE WHEN available_shares - $2 = 0 THEN 'funded' ELSE status END,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'available'
		  AND available_shares >= $2
		RETURNING available_shares
	`, propertyID, quantity).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.reserveFailure(ctx, pgxTx, propertyID)
		}
		return nil, err
	}

	return &domain.Reservation{
		PropertyID: propertyID,
		Quantity:   quantity,
		Funded:     remaining == 0,
	}, nil
}

// reserveFailure classifies a lost reservation: missing property, a
// closed offering, or simply not enough shares left.
func (r *PropertyRepository) reserveFailure(ctx context.Context, pgxTx pgx.Tx, propertyID string) error {
	var status domain.PropertyStatus
	err := pgxTx.QueryRow(ctx, `
		SELECT status FROM properties WHERE id = $1
	`, propertyID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPropertyNotFound
		}
		return err
	}
	if status != domain.PropertyStatusAvailable {
		return domain.ErrPropertyNotOpen
	}

	return domain.ErrInsufficientShares
}

// Release restores a reservation's quantity. A funded property gains
// back availability and reopens.
func (r *PropertyRepository) Release(ctx context.Context, tx usecase.Transaction, reservation *domain.Reservation) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE properties
		SET available_shares = available_shares + $2,
		    status = CASE WHEN status = 'funded' THEN 'available' ELSE status END,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
	`, reservation.PropertyID, reservation.Quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Currency,
		&p.TotalShares,
		&p.AvailableShares,
		&p.SharePriceCents,
		&p.Status,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, err
	}

	return &p, nil
}
