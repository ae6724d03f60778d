package service

import (
	"context"
	"time"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
)

// SpendLimitServiceInterface defines the spending limit guard contract.
// This interface allows for testing with mock implementations.
type SpendLimitServiceInterface interface {
	CheckAllowed(ctx context.Context, member *domain.Member, amount int64) (*SpendDecision, error)
}

// Ensure SpendLimitService implements SpendLimitServiceInterface.
var _ SpendLimitServiceInterface = (*SpendLimitService)(nil)

// Decline reasons returned by the guard.
const (
	DeclineReasonInsufficientFunds = "INSUFFICIENT_FUNDS"
	DeclineReasonDailyLimit        = "DAILY_LIMIT_EXCEEDED"
)

// SpendDecision is the guard's verdict on a candidate charge, with enough
// detail for a client to render an actionable message.
type SpendDecision struct {
	Allowed    bool
	Reason     string // empty when allowed
	Attempted  int64
	Available  int64
	TodaySpend int64
	Limit      int64 // zero when the member has no cap
}

// SpendLimitService gates wallet use: the account must have the funds
// available and the member must stay under their daily cap. The decision is
// advisory; the ledger's own funds check at reservation time is the hard
// guarantee.
type SpendLimitService struct {
	accountRepo repository.AccountRepository
	tripRepo    repository.TripRepository
	now         func() time.Time
}

// NewSpendLimitService creates a new SpendLimitService.
func NewSpendLimitService(accountRepo repository.AccountRepository, tripRepo repository.TripRepository) *SpendLimitService {
	return &SpendLimitService{
		accountRepo: accountRepo,
		tripRepo:    tripRepo,
		now:         time.Now,
	}
}

// CheckAllowed decides whether charging amount to the member's account is
// allowed. Two checks in order: the account's available balance must cover
// the amount (the credit limit is deliberately not consulted here; it only
// gives the reservation headroom past zero), and the member's spend for the
// current calendar day plus the amount must stay within their cap, when one
// is configured.
func (s *SpendLimitService) CheckAllowed(ctx context.Context, member *domain.Member, amount int64) (*SpendDecision, error) {
	if member == nil {
		return nil, ErrInvalidMemberID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	account, err := s.accountRepo.GetByID(ctx, member.AccountID)
	if err != nil {
		return nil, err
	}

	decision := &SpendDecision{
		Attempted: amount,
		Available: account.AvailableBalance,
	}

	if account.AvailableBalance < amount {
		decision.Reason = DeclineReasonInsufficientFunds
		return decision, nil
	}

	if member.DailySpendLimit != nil {
		todaySpend, err := s.tripRepo.SumMemberSpendSince(ctx, member.ID, s.dayStart())
		if err != nil {
			return nil, err
		}

		decision.TodaySpend = todaySpend
		decision.Limit = *member.DailySpendLimit

		if todaySpend+amount > *member.DailySpendLimit {
			decision.Reason = DeclineReasonDailyLimit
			return decision, nil
		}
	}

	decision.Allowed = true
	return decision, nil
}

// dayStart is midnight of the current calendar day in local time.
func (s *SpendLimitService) dayStart() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
