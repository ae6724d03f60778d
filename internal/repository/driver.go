package repository

import (
	"context"

	"cargoride/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create persists a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)
}

// WalletRepository defines the persistence operations for driver wallets.
type WalletRepository interface {
	// Credit adds amount to the driver's wallet, creating the wallet row on
	// first credit.
	Credit(ctx context.Context, driverID string, amount int64) error

	// GetByDriverID retrieves a driver's wallet. Returns a zero-balance
	// wallet when the driver has never been credited.
	GetByDriverID(ctx context.Context, driverID string) (*domain.DriverWallet, error)
}
