package repository

import (
	"context"

	"cargoride/internal/domain"
)

// AccountRepository defines the persistence operations for corporate accounts.
type AccountRepository interface {
	// Create persists a new account.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByIDForUpdate retrieves an account by ID with an exclusive row lock,
	// serializing concurrent ledger operations against the same account.
	// Only meaningful inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Account, error)

	// UpdateBalances writes the available and reserved balances of an account.
	UpdateBalances(ctx context.Context, id string, available, reserved int64) error

	// Deactivate marks an account inactive. Accounts are never deleted.
	Deactivate(ctx context.Context, id string) error

	// GetAll retrieves all accounts.
	GetAll(ctx context.Context) ([]*domain.Account, error)
}
