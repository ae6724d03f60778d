package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// Create persists a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.Active,
		driver.CreatedAt,
	)

	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT id, name, phone, active, created_at FROM drivers WHERE id = $1`

	var driver domain.Driver
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Active,
		&driver.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
type WalletRepository struct {
	q Querier
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

// Credit adds amount to the driver's wallet, creating the row on first credit.
func (r *WalletRepository) Credit(ctx context.Context, driverID string, amount int64) error {
	query := `
		INSERT INTO driver_wallets (driver_id, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (driver_id) DO UPDATE SET
			balance = driver_wallets.balance + EXCLUDED.balance,
			updated_at = NOW()
	`

	_, err := r.q.ExecContext(ctx, query, driverID, amount)
	return err
}

// GetByDriverID retrieves a driver's wallet. A driver never credited has a
// zero-balance wallet rather than ErrNotFound.
func (r *WalletRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	query := `SELECT driver_id, balance, updated_at FROM driver_wallets WHERE driver_id = $1`

	var wallet domain.DriverWallet
	err := r.q.QueryRowContext(ctx, query, driverID).Scan(
		&wallet.DriverID,
		&wallet.Balance,
		&wallet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.DriverWallet{DriverID: driverID}, nil
		}
		return nil, err
	}

	return &wallet, nil
}

// Ensure implementations satisfy the repository interfaces.
var (
	_ repository.DriverRepository = (*DriverRepository)(nil)
	_ repository.WalletRepository = (*WalletRepository)(nil)
)
