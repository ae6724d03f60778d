package tests

import (
	"context"
	"testing"
	"time"

	"cargoride/internal/domain"
	"cargoride/internal/service"
)

// ──────────────────────────────────────────────
// SPENDING LIMIT GUARD
// ──────────────────────────────────────────────

func int64Ptr(v int64) *int64 { return &v }

func TestSpendLimit_FundsCheckIgnoresCredit(t *testing.T) {
	t.Parallel()

	accountRepo := NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{
		ID:               "acct-1",
		AvailableBalance: 1000,
		CreditLimit:      50000,
		Active:           true,
	})
	tripRepo := NewMockTripRepository()

	guard := service.NewSpendLimitService(accountRepo, tripRepo)
	member := &domain.Member{ID: "mem-1", AccountID: "acct-1", Active: true}

	// Credit headroom belongs to the ledger reservation, not the guard;
	// the guard looks only at available balance.
	decision, err := guard.CheckAllowed(context.Background(), member, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decision.Allowed {
		t.Error("expected decline when available balance is short")
	}
	if decision.Reason != service.DeclineReasonInsufficientFunds {
		t.Errorf("expected reason %s, got %s", service.DeclineReasonInsufficientFunds, decision.Reason)
	}
	if decision.Available != 1000 || decision.Attempted != 2000 {
		t.Errorf("unexpected decision amounts: %+v", decision)
	}
}

func TestSpendLimit_AllowedWithinBalanceAndCap(t *testing.T) {
	t.Parallel()

	accountRepo := NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{
		ID:               "acct-1",
		AvailableBalance: 100000,
		Active:           true,
	})
	tripRepo := NewMockTripRepository()

	guard := service.NewSpendLimitService(accountRepo, tripRepo)
	member := &domain.Member{
		ID:              "mem-1",
		AccountID:       "acct-1",
		DailySpendLimit: int64Ptr(50000),
		Active:          true,
	}

	decision, err := guard.CheckAllowed(context.Background(), member, 13000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Allowed {
		t.Errorf("expected allowed, got decline: %s", decision.Reason)
	}
}

func TestSpendLimit_DailyCapCountsTodaysTrips(t *testing.T) {
	t.Parallel()

	accountRepo := NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{
		ID:               "acct-1",
		AvailableBalance: 1000000,
		Active:           true,
	})

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{
		ID:            "trip-1",
		MemberID:      "mem-1",
		FareEstimate:  30000,
		PaymentMethod: domain.PaymentMethodWallet,
		Status:        domain.TripStatusOngoing,
		CreatedAt:     time.Now(),
	})
	// Settled trips count at their final fare, not the estimate.
	tripRepo.AddTrip(&domain.Trip{
		ID:            "trip-2",
		MemberID:      "mem-1",
		FareEstimate:  10000,
		FinalFare:     15000,
		PaymentMethod: domain.PaymentMethodWallet,
		Status:        domain.TripStatusCompleted,
		CreatedAt:     time.Now(),
	})

	guard := service.NewSpendLimitService(accountRepo, tripRepo)
	member := &domain.Member{
		ID:              "mem-1",
		AccountID:       "acct-1",
		DailySpendLimit: int64Ptr(50000),
		Active:          true,
	}

	// 45000 spent today; another 13000 would breach the 50000 cap.
	decision, err := guard.CheckAllowed(context.Background(), member, 13000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decision.Allowed {
		t.Error("expected decline over the daily cap")
	}
	if decision.Reason != service.DeclineReasonDailyLimit {
		t.Errorf("expected reason %s, got %s", service.DeclineReasonDailyLimit, decision.Reason)
	}
	if decision.TodaySpend != 45000 || decision.Limit != 50000 {
		t.Errorf("unexpected decision amounts: %+v", decision)
	}

	// 5000 still fits exactly.
	decision, err = guard.CheckAllowed(context.Background(), member, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Errorf("expected 5000 to fit the cap, got decline: %s", decision.Reason)
	}
}

func TestSpendLimit_YesterdaysTripsDoNotCount(t *testing.T) {
	t.Parallel()

	accountRepo := NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{
		ID:               "acct-1",
		AvailableBalance: 1000000,
		Active:           true,
	})

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{
		ID:            "trip-old",
		MemberID:      "mem-1",
		FareEstimate:  49000,
		PaymentMethod: domain.PaymentMethodWallet,
		Status:        domain.TripStatusCompleted,
		CreatedAt:     time.Now().Add(-48 * time.Hour),
	})

	guard := service.NewSpendLimitService(accountRepo, tripRepo)
	member := &domain.Member{
		ID:              "mem-1",
		AccountID:       "acct-1",
		DailySpendLimit: int64Ptr(50000),
		Active:          true,
	}

	decision, err := guard.CheckAllowed(context.Background(), member, 13000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Allowed {
		t.Errorf("expected old spend to be ignored, got decline: %s", decision.Reason)
	}
}

func TestSpendLimit_CancelledTripsDoNotCount(t *testing.T) {
	t.Parallel()

	accountRepo := NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{
		ID:               "acct-1",
		AvailableBalance: 1000000,
		Active:           true,
	})

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{
		ID:            "trip-cancelled",
		MemberID:      "mem-1",
		FareEstimate:  49000,
		PaymentMethod: domain.PaymentMethodWallet,
		Status:        domain.TripStatusCancelled,
		CreatedAt:     time.Now(),
	})

	guard := service.NewSpendLimitService(accountRepo, tripRepo)
	member := &domain.Member{
		ID:              "mem-1",
		AccountID:       "acct-1",
		DailySpendLimit: int64Ptr(50000),
		Active:          true,
	}

	decision, err := guard.CheckAllowed(context.Background(), member, 13000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Allowed {
		t.Errorf("expected cancelled spend to be ignored, got decline: %s", decision.Reason)
	}
}

func TestSpendLimit_NoCapMemberOnlyNeedsFunds(t *testing.T) {
	t.Parallel()

	accountRepo := NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{
		ID:               "acct-1",
		AvailableBalance: 1000000,
		Active:           true,
	})

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{
		ID:            "trip-1",
		MemberID:      "mem-1",
		FareEstimate:  900000,
		PaymentMethod: domain.PaymentMethodWallet,
		Status:        domain.TripStatusCompleted,
		CreatedAt:     time.Now(),
	})

	guard := service.NewSpendLimitService(accountRepo, tripRepo)
	member := &domain.Member{ID: "mem-1", AccountID: "acct-1", Active: true}

	decision, err := guard.CheckAllowed(context.Background(), member, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Allowed {
		t.Errorf("expected uncapped member to pass on funds alone, got decline: %s", decision.Reason)
	}
}
