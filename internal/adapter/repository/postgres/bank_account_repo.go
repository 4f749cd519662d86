package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahmly/engine/internal/domain"
)

// BankAccountRepository implements usecase.BankAccountRepository.
type BankAccountRepository struct {
	pool *pgxpool.Pool
}

// NewBankAccountRepository creates a new BankAccountRepository.
func NewBankAccountRepository(pool *pgxpool.Pool) *BankAccountRepository {
	return &BankAccountRepository{pool: pool}
}

const bankAccountColumns = `id, user_id, bank_name, account_holder, iban, created_at`

// Create registers a withdrawal destination.
func (r *BankAccountRepository) Create(ctx context.Context, account *domain.BankAccount) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bank_accounts (`+bankAccountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		account.ID,
		account.UserID,
		account.BankName,
		account.AccountHolder,
		account.IBAN,
		account.CreatedAt,
	)

	return err
}

// GetByID retrieves a bank account by ID.
func (r *BankAccountRepository) GetByID(ctx context.Context, id string) (*domain.BankAccount, error) {
	var a domain.BankAccount
	err := r.pool.QueryRow(ctx, `
		SELECT `+bankAccountColumns+` FROM bank_accounts WHERE id = $1
	`, id).Scan(
		&a.ID,
		&a.UserID,
		&a.BankName,
		&a.AccountHolder,
		&a.IBAN,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBankAccountNotFound
		}
		return nil, err
	}

	return &a, nil
}

// ListByUser retrieves a user's bank accounts, oldest first.
func (r *BankAccountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.BankAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bankAccountColumns+`
		FROM bank_accounts
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.BankAccount
	for rows.Next() {
		var a domain.BankAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.BankName, &a.AccountHolder, &a.IBAN, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, &a)
	}

	return accounts, rows.Err()
}
