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

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

const (
	walletAccountColumns = `id, user_id, currency, balance, frozen, version, created_at, updated_at`
	walletTxnColumns     = `id, account_id, type, status, amount, balance_after, payment_method, reference_id, created_at, settled_at`
)

// CreateAccount creates a new wallet account.
func (r *WalletRepository) CreateAccount(ctx context.Context, account *domain.WalletAccount) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wallet_accounts (`+walletAccountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		account.ID,
		account.UserID,
		account.Currency,
		account.Balance,
		account.Frozen,
		account.Version,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

// GetAccountByID retrieves a wallet account by ID.
func (r *WalletRepository) GetAccountByID(ctx context.Context, id string) (*domain.WalletAccount, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+walletAccountColumns+` FROM wallet_accounts WHERE id = $1
	`, id)

	return scanWalletAccount(row)
}

// GetAccountByUserID retrieves a user's wallet account.
func (r *WalletRepository) GetAccountByUserID(ctx context.Context, userID string) (*domain.WalletAccount, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+walletAccountColumns+` FROM wallet_accounts WHERE user_id = $1
	`, userID)

	return scanWalletAccount(row)
}

// GetAccountByIDForUpdate retrieves a wallet account with a FOR UPDATE
// lock. The lock serializes all balance mutations for the account.
func (r *WalletRepository) GetAccountByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WalletAccount, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+walletAccountColumns+` FROM wallet_accounts WHERE id = $1 FOR UPDATE
	`, id)

	return scanWalletAccount(row)
}

// UpdateBalance writes the cached balance for a locked account.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, accountID string, balance int64, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE wallet_accounts
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1
	`, accountID, balance, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// SetFrozen flips the account freeze flag.
func (r *WalletRepository) SetFrozen(ctx context.Context, accountID string, frozen bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE wallet_accounts
		SET frozen = $2, version = version + 1, updated_at = now()
		WHERE id = $1
	`, accountID, frozen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ListAccounts pages through all wallet accounts, oldest first, for the
// reconciliation sweep.
func (r *WalletRepository) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.WalletAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+walletAccountColumns+`
		FROM wallet_accounts
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.WalletAccount
	for rows.Next() {
		account, err := scanWalletAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// CreateTransaction appends a ledger row within a transaction.
func (r *WalletRepository) CreateTransaction(ctx context.Context, tx usecase.Transaction, txn *domain.WalletTransaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO wallet_transactions (`+walletTxnColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		txn.ID,
		txn.AccountID,
		txn.Type,
		txn.Status,
		txn.Amount,
		txn.BalanceAfter,
		txn.PaymentMethod,
		txn.ReferenceID,
		txn.CreatedAt,
		txn.SettledAt,
	)

	return err
}

// GetTransactionByID retrieves a ledger row by ID.
func (r *WalletRepository) GetTransactionByID(ctx context.Context, id string) (*domain.WalletTransaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+walletTxnColumns+` FROM wallet_transactions WHERE id = $1
	`, id)

	return scanWalletTransaction(row)
}

// GetTransactionByIDForUpdate retrieves a ledger row with a FOR UPDATE
// lock, serializing concurrent settlement attempts.
func (r *WalletRepository) GetTransactionByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WalletTransaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+walletTxnColumns+` FROM wallet_transactions WHERE id = $1 FOR UPDATE
	`, id)

	return scanWalletTransaction(row)
}

// GetCompletedByReference looks up a completed row by its idempotency
// key. Callers hold the account row lock, so the lookup and any
// subsequent insert do not race. A partial unique index on
// (type, reference_id) WHERE status = 'completed' backstops the check.
func (r *WalletRepository) GetCompletedByReference(ctx context.Context, tx usecase.Transaction, txnType domain.TransactionType, referenceID string) (*domain.WalletTransaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+walletTxnColumns+`
		FROM wallet_transactions
		WHERE type = $1 AND reference_id = $2 AND status = 'completed'
	`, txnType, referenceID)

	txn, err := scanWalletTransaction(row)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, nil
	}

	return txn, err
}

// UpdateTransactionStatus settles a pending row. Completed and failed
// rows are never touched again; status transitions happen exactly once.
func (r *WalletRepository) UpdateTransactionStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, balanceAfter *int64, settledAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE wallet_transactions
		SET status = $2, balance_after = $3, settled_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, status, balanceAfter, settledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadySettled
	}

	return nil
}

// ListTransactionsByAccount pages an account's ledger, newest first.
func (r *WalletRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+walletTxnColumns+`
		FROM wallet_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.WalletTransaction
	for rows.Next() {
		txn, err := scanWalletTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

// SumCompleted replays the ledger for an account: the signed sum of all
// completed rows. Credits count positive, debits negative.
func (r *WalletRepository) SumCompleted(ctx context.Context, accountID string) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(
			CASE WHEN type IN ('deposit', 'distribution_credit', 'refund')
			     THEN amount ELSE -amount END
		), 0)
		FROM wallet_transactions
		WHERE account_id = $1 AND status = 'completed'
	`, accountID).Scan(&sum)

	return sum, err
}

func scanWalletAccount(row rowScanner) (*domain.WalletAccount, error) {
	var a domain.WalletAccount
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Currency,
		&a.Balance,
		&a.Frozen,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanWalletTransaction(row rowScanner) (*domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Type,
		&t.Status,
		&t.Amount,
		&t.BalanceAfter,
		&t.PaymentMethod,
		&t.ReferenceID,
		&t.CreatedAt,
		&t.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	return &t, nil
}
