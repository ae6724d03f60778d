package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
)

// DefaultCommissionRate is the platform's share of settled fares when a
// business account signs up without a negotiated rate.
const DefaultCommissionRate = 0.15

// AccountService handles corporate account signup and membership. Balances
// are mutated only through the ledger; this service never touches them
// after creation.
type AccountService struct {
	accountRepo repository.AccountRepository
	memberRepo  repository.MemberRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo repository.AccountRepository, memberRepo repository.MemberRepository) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		memberRepo:  memberRepo,
	}
}

// CreateAccountRequest contains the parameters for business-account signup.
type CreateAccountRequest struct {
	Name           string
	OpeningBalance int64
	CreditLimit    int64
	CommissionRate *float64 // nil means the default rate
	Tier           domain.AccountTier
}

// CreateAccount creates a corporate account.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error) {
	if req.Name == "" {
		return nil, ErrInvalidAccountID
	}
	if req.OpeningBalance < 0 || req.CreditLimit < 0 {
		return nil, ErrInvalidAmount
	}

	rate := DefaultCommissionRate
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
	}
	if rate < 0 || rate > 1 {
		return nil, ErrInvalidCommissionRate
	}

	tier := req.Tier
	if tier == "" {
		tier = domain.AccountTierStandard
	}

	account := &domain.Account{
		ID:               uuid.New().String(),
		Name:             req.Name,
		AvailableBalance: req.OpeningBalance,
		CreditLimit:      req.CreditLimit,
		CommissionRate:   rate,
		Tier:             tier,
		Active:           true,
		CreatedAt:        time.Now(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if accountID == "" {
		return nil, ErrInvalidAccountID
	}

	return s.accountRepo.GetByID(ctx, accountID)
}

// Balances is the running balance pair of an account.
type Balances struct {
	Available int64 `json:"available"`
	Reserved  int64 `json:"reserved"`
}

// GetBalances retrieves the account's available and reserved balances.
func (s *AccountService) GetBalances(ctx context.Context, accountID string) (*Balances, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &Balances{
		Available: account.AvailableBalance,
		Reserved:  account.ReservedBalance,
	}, nil
}

// DeactivateAccount marks an account inactive. Accounts are never deleted:
// trips, reservations, and receipts keep referring to them.
func (s *AccountService) DeactivateAccount(ctx context.Context, accountID string) error {
	if accountID == "" {
		return ErrInvalidAccountID
	}

	return s.accountRepo.Deactivate(ctx, accountID)
}

// AddMemberRequest contains the parameters for enrolling a member.
type AddMemberRequest struct {
	AccountID       string
	Name            string
	Phone           string
	DailySpendLimit *int64
}

// AddMember enrolls a member into an account.
func (s *AccountService) AddMember(ctx context.Context, req AddMemberRequest) (*domain.Member, error) {
	if req.AccountID == "" {
		return nil, ErrInvalidAccountID
	}
	if req.DailySpendLimit != nil && *req.DailySpendLimit <= 0 {
		return nil, ErrInvalidAmount
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, ErrAccountInactive
	}

	member := &domain.Member{
		ID:              uuid.New().String(),
		AccountID:       req.AccountID,
		Name:            req.Name,
		Phone:           req.Phone,
		DailySpendLimit: req.DailySpendLimit,
		Active:          true,
		CreatedAt:       time.Now(),
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// GetMembers retrieves all members of an account.
func (s *AccountService) GetMembers(ctx context.Context, accountID string) ([]*domain.Member, error) {
	if accountID == "" {
		return nil, ErrInvalidAccountID
	}

	return s.memberRepo.GetByAccountID(ctx, accountID)
}

// UpdateMemberLimit sets or clears a member's daily spending cap.
func (s *AccountService) UpdateMemberLimit(ctx context.Context, memberID string, limit *int64) error {
	if memberID == "" {
		return ErrInvalidMemberID
	}
	if limit != nil && *limit <= 0 {
		return ErrInvalidAmount
	}

	return s.memberRepo.UpdateDailyLimit(ctx, memberID, limit)
}
