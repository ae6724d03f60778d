package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cargoride/internal/domain"
)

// ──────────────────────────────────────────────
// ACCOUNT LEDGER
// ──────────────────────────────────────────────

// The real LedgerService wraps these transitions in a locked database
// transaction; the balance laws themselves live on the account and are
// tested here directly.

func TestLedger_ReserveMovesAvailableToReserved(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acct-1", AvailableBalance: 50000, Active: true}

	if err := account.Reserve(13000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.AvailableBalance != 37000 {
		t.Errorf("expected available 37000, got %d", account.AvailableBalance)
	}
	if account.ReservedBalance != 13000 {
		t.Errorf("expected reserved 13000, got %d", account.ReservedBalance)
	}
}

func TestLedger_ReserveThenRefundRestoresBalances(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acct-1", AvailableBalance: 50000, Active: true}

	if err := account.Reserve(13000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := account.Refund(13000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.AvailableBalance != 50000 || account.ReservedBalance != 0 {
		t.Errorf("expected balances restored to 50000/0, got %d/%d",
			account.AvailableBalance, account.ReservedBalance)
	}
}

func TestLedger_InsufficientFundsLeavesBalancesUntouched(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acct-1", AvailableBalance: 10000, CreditLimit: 2000, Active: true}

	err := account.Reserve(13000)

	var insufficient *domain.InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if insufficient.Required != 13000 || insufficient.Available != 10000 || insufficient.CreditLimit != 2000 {
		t.Errorf("unexpected error details: %+v", insufficient)
	}

	if account.AvailableBalance != 10000 || account.ReservedBalance != 0 {
		t.Errorf("balances must be untouched on decline, got %d/%d",
			account.AvailableBalance, account.ReservedBalance)
	}
}

func TestLedger_CreditLimitGivesReservationHeadroom(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acct-1", AvailableBalance: 10000, CreditLimit: 5000, Active: true}

	if err := account.Reserve(13000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.AvailableBalance != -3000 {
		t.Errorf("expected available -3000 within credit, got %d", account.AvailableBalance)
	}
}

func TestLedger_SettleEqualFinalFare(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acct-1", AvailableBalance: 37000, ReservedBalance: 13000, Active: true}

	if err := account.Settle(13000, 13000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.AvailableBalance != 37000 || account.ReservedBalance != 0 {
		t.Errorf("expected 37000/0 after even settle, got %d/%d",
			account.AvailableBalance, account.ReservedBalance)
	}
}

func TestLedger_SettleOverrunChargesAvailable(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acct-1", AvailableBalance: 37000, ReservedBalance: 13000, Active: true}

	// Final fare 15000 came in 2000 over the reservation.
	if err := account.Settle(13000, 15000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.AvailableBalance != 35000 || account.ReservedBalance != 0 {
		t.Errorf("expected 35000/0 after overrun settle, got %d/%d",
			account.AvailableBalance, account.ReservedBalance)
	}
}

func TestLedger_SettleUnderrunRefundsDifference(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acct-1", AvailableBalance: 37000, ReservedBalance: 13000, Active: true}

	// Final fare 11000 releases the overcollected 2000.
	if err := account.Settle(13000, 11000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.AvailableBalance != 39000 || account.ReservedBalance != 0 {
		t.Errorf("expected 39000/0 after underrun settle, got %d/%d",
			account.AvailableBalance, account.ReservedBalance)
	}
}

func TestLedger_SettlePastReservationIsIntegrityViolation(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acct-1", AvailableBalance: 37000, ReservedBalance: 13000, Active: true}

	err := account.Settle(20000, 20000)

	var integrity *domain.LedgerIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected LedgerIntegrityError, got %v", err)
	}

	// Never clamped, never partially applied.
	if account.AvailableBalance != 37000 || account.ReservedBalance != 13000 {
		t.Errorf("balances must be untouched on integrity violation, got %d/%d",
			account.AvailableBalance, account.ReservedBalance)
	}
}

func TestLedger_DoubleSettleCaughtByIntegrityCheck(t *testing.T) {
	t.Parallel()

	ledger := NewMockLedgerService()
	ledger.SetAccount(&domain.Account{ID: "acct-1", AvailableBalance: 37000, ReservedBalance: 13000, Active: true})

	ctx := context.Background()
	if _, err := ledger.Settle(ctx, "acct-1", 13000, 13000, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := ledger.Settle(ctx, "acct-1", 13000, 13000, "")
	var integrity *domain.LedgerIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected LedgerIntegrityError on second settle, got %v", err)
	}
}

func TestLedger_DriverCreditIsCommissionAdjusted(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acct-1", CommissionRate: 0.15}

	if credit := account.DriverCredit(13000); credit != 11050 {
		t.Errorf("expected payout 11050 at 15%% commission, got %d", credit)
	}

	zeroCommission := &domain.Account{ID: "acct-2"}
	if credit := zeroCommission.DriverCredit(13000); credit != 13000 {
		t.Errorf("expected full payout without commission, got %d", credit)
	}
}

func TestLedger_ConcurrentReservesNeverJointlyOverdraw(t *testing.T) {
	t.Parallel()

	ledger := NewMockLedgerService()
	ledger.SetAccount(&domain.Account{ID: "acct-1", AvailableBalance: 25000, CreditLimit: 0, Active: true})

	ctx := context.Background()
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	// Ten concurrent 10000 reservations against 25000 of funds: exactly two
	// can fit, the rest must fail, and the account can never go past its
	// credit headroom.
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Reserve(ctx, "acct-1", 10000); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 2 {
		t.Errorf("expected exactly 2 reservations to fit, got %d", succeeded)
	}

	account := ledger.Account("acct-1")
	if account.AvailableBalance < -account.CreditLimit {
		t.Errorf("account jointly overdrawn: available %d past credit %d",
			account.AvailableBalance, account.CreditLimit)
	}
	if account.ReservedBalance != 20000 {
		t.Errorf("expected reserved 20000, got %d", account.ReservedBalance)
	}
}
