package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
)

// AccountRepository is a PostgreSQL implementation of repository.AccountRepository.
type AccountRepository struct {
	q Querier
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{q: db}
}

// NewAccountRepositoryWithTx creates an account repository using a transaction.
func NewAccountRepositoryWithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `id, name, available_balance, reserved_balance, credit_limit, commission_rate, tier, active, created_at`

// Create persists a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.AvailableBalance,
		account.ReservedBalance,
		account.CreditLimit,
		account.CommissionRate,
		account.Tier,
		account.Active,
		account.CreatedAt,
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByIDForUpdate retrieves an account by ID with an exclusive row lock.
// Concurrent ledger operations against the same account block here until
// the holding transaction commits, so balance checks never run against a
// stale balance pair.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *AccountRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	var account domain.Account

	err := r.q.QueryRowContext(ctx, query, args...).Scan(
		&account.ID,
		&account.Name,
		&account.AvailableBalance,
		&account.ReservedBalance,
		&account.CreditLimit,
		&account.CommissionRate,
		&account.Tier,
		&account.Active,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &account, nil
}

// UpdateBalances writes the available and reserved balances of an account.
func (r *AccountRepository) UpdateBalances(ctx context.Context, id string, available, reserved int64) error {
	query := `UPDATE accounts SET available_balance = $1, reserved_balance = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, available, reserved, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Deactivate marks an account inactive.
func (r *AccountRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE accounts SET active = FALSE WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetAll retrieves all accounts.
func (r *AccountRepository) GetAll(ctx context.Context) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.AvailableBalance,
			&account.ReservedBalance,
			&account.CreditLimit,
			&account.CommissionRate,
			&account.Tier,
			&account.Active,
			&account.CreatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	return accounts, rows.Err()
}

// Ensure AccountRepository implements repository.AccountRepository.
var _ repository.AccountRepository = (*AccountRepository)(nil)
