package service

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"cargoride/internal/domain"
	"cargoride/internal/repository/postgres"
)

// LedgerServiceInterface defines the account ledger contract.
// This interface allows for testing with mock implementations.
type LedgerServiceInterface interface {
	Reserve(ctx context.Context, accountID string, amount int64) (*domain.Account, error)
	Settle(ctx context.Context, accountID string, reservedAmount, finalAmount int64, driverID string) (*domain.Account, error)
	Refund(ctx context.Context, accountID string, amount int64) (*domain.Account, error)
}

// Ensure LedgerService implements LedgerServiceInterface.
var _ LedgerServiceInterface = (*LedgerService)(nil)

// LedgerService moves money between corporate accounts, drivers, and the
// platform. Every operation is one database transaction holding an
// exclusive lock on the account row, so concurrent trips against the same
// account observe each other's balances before either proceeds and the
// reserved balance can never be jointly overdrawn.
type LedgerService struct {
	db *sql.DB
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Reserve locks amount against the account: available decreases, reserved
// increases. Fails with InsufficientFundsError when available plus credit
// headroom cannot cover the amount; the caller must treat that as a hard
// stop, not retry, since the same reservation applied twice double-reserves.
func (s *LedgerService) Reserve(ctx context.Context, accountID string, amount int64) (*domain.Account, error) {
	return s.mutate(ctx, accountID, func(account *domain.Account) error {
		if !account.Active {
			return ErrAccountInactive
		}
		return account.Reserve(amount)
	}, amount, nil)
}

// Settle releases reservedAmount from the reservation and reconciles the
// final fare: an overrun is charged against available, an underrun credited
// back. When driverID is set the driver's wallet is credited the
// commission-adjusted fare inside the same transaction; the platform keeps
// the difference.
func (s *LedgerService) Settle(ctx context.Context, accountID string, reservedAmount, finalAmount int64, driverID string) (*domain.Account, error) {
	if finalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	var payout func(tx *sql.Tx, account *domain.Account) error
	if driverID != "" {
		payout = func(tx *sql.Tx, account *domain.Account) error {
			walletRepo := postgres.NewWalletRepositoryWithTx(tx)
			return walletRepo.Credit(ctx, driverID, account.DriverCredit(finalAmount))
		}
	}

	return s.mutate(ctx, accountID, func(account *domain.Account) error {
		return account.Settle(reservedAmount, finalAmount)
	}, reservedAmount, payout)
}

// Refund releases a reservation back to available. Used only on trip
// cancellation, always with the amount originally reserved for that trip.
func (s *LedgerService) Refund(ctx context.Context, accountID string, amount int64) (*domain.Account, error) {
	return s.mutate(ctx, accountID, func(account *domain.Account) error {
		return account.Refund(amount)
	}, amount, nil)
}

// mutate runs one ledger operation as a single transaction: lock the
// account row, apply the balance transition, write the new balance pair,
// run the optional in-transaction extra step, commit. No partial state is
// visible to any concurrent reader.
func (s *LedgerService) mutate(
	ctx context.Context,
	accountID string,
	apply func(account *domain.Account) error,
	amount int64,
	extra func(tx *sql.Tx, account *domain.Account) error,
) (account *domain.Account, err error) {
	if accountID == "" {
		return nil, ErrInvalidAccountID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	accountRepo := postgres.NewAccountRepositoryWithTx(tx)

	account, err = accountRepo.GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err = apply(account); err != nil {
		var integrity *domain.LedgerIntegrityError
		if errors.As(err, &integrity) {
			// A reservation is being released twice or was never taken.
			// Never clamped; surfaced for operator intervention.
			log.Printf("ALERT: %v", integrity)
		}
		return nil, err
	}

	if err = accountRepo.UpdateBalances(ctx, accountID, account.AvailableBalance, account.ReservedBalance); err != nil {
		return nil, err
	}

	if extra != nil {
		if err = extra(tx, account); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return account, nil
}
