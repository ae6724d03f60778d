package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
)

// WalletService handles driver identities and their wallets. Wallet
// balances are credited only by the ledger's settle operation; this service
// just reads them.
type WalletService struct {
	driverRepo repository.DriverRepository
	walletRepo repository.WalletRepository
}

// NewWalletService creates a new WalletService.
func NewWalletService(driverRepo repository.DriverRepository, walletRepo repository.WalletRepository) *WalletService {
	return &WalletService{
		driverRepo: driverRepo,
		walletRepo: walletRepo,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name  string
	Phone string
}

// RegisterDriver creates a driver identity. The wallet row appears lazily
// on first settlement credit.
func (s *WalletService) RegisterDriver(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.Name == "" || req.Phone == "" {
		return nil, ErrInvalidDriverID
	}

	driver := &domain.Driver{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Active:    true,
		CreatedAt: time.Now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// GetWallet retrieves a driver's wallet, verifying the driver exists.
func (s *WalletService) GetWallet(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	return s.walletRepo.GetByDriverID(ctx, driverID)
}
