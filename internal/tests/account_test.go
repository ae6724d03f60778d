package tests

import (
	"context"
	"errors"
	"testing"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
	"cargoride/internal/service"
)

// ──────────────────────────────────────────────
// ACCOUNTS AND MEMBERSHIP
// ──────────────────────────────────────────────

func TestAccount_CreateDefaults(t *testing.T) {
	t.Parallel()

	accountService := service.NewAccountService(NewMockAccountRepository(), NewMockMemberRepository())

	account, err := accountService.CreateAccount(context.Background(), service.CreateAccountRequest{
		Name:           "Kariakoo Traders Ltd",
		OpeningBalance: 500000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.CommissionRate != service.DefaultCommissionRate {
		t.Errorf("expected default commission %f, got %f", service.DefaultCommissionRate, account.CommissionRate)
	}
	if account.Tier != domain.AccountTierStandard {
		t.Errorf("expected STANDARD tier, got %s", account.Tier)
	}
	if !account.Active {
		t.Error("new account must be active")
	}
	if account.AvailableBalance != 500000 || account.ReservedBalance != 0 {
		t.Errorf("expected balances 500000/0, got %d/%d",
			account.AvailableBalance, account.ReservedBalance)
	}
}

func TestAccount_CreateRejectsBadInput(t *testing.T) {
	t.Parallel()

	accountService := service.NewAccountService(NewMockAccountRepository(), NewMockMemberRepository())
	ctx := context.Background()

	if _, err := accountService.CreateAccount(ctx, service.CreateAccountRequest{}); err == nil {
		t.Error("expected error for missing name")
	}

	if _, err := accountService.CreateAccount(ctx, service.CreateAccountRequest{
		Name:           "Acme",
		OpeningBalance: -1,
	}); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for negative balance, got %v", err)
	}

	badRate := 1.5
	if _, err := accountService.CreateAccount(ctx, service.CreateAccountRequest{
		Name:           "Acme",
		CommissionRate: &badRate,
	}); !errors.Is(err, service.ErrInvalidCommissionRate) {
		t.Errorf("expected ErrInvalidCommissionRate, got %v", err)
	}
}

func TestAccount_AddMemberToInactiveAccountFails(t *testing.T) {
	t.Parallel()

	accountRepo := NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{ID: "acct-1", Name: "Acme", Active: false})

	accountService := service.NewAccountService(accountRepo, NewMockMemberRepository())

	_, err := accountService.AddMember(context.Background(), service.AddMemberRequest{
		AccountID: "acct-1",
		Name:      "Asha",
	})

	if !errors.Is(err, service.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestAccount_DeactivateKeepsAccount(t *testing.T) {
	t.Parallel()

	accountRepo := NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{ID: "acct-1", Name: "Acme", Active: true})

	accountService := service.NewAccountService(accountRepo, NewMockMemberRepository())

	if err := accountService.DeactivateAccount(context.Background(), "acct-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account := accountRepo.GetAccount("acct-1")
	if account == nil {
		t.Fatal("deactivated account must still exist")
	}
	if account.Active {
		t.Error("expected account inactive")
	}
}

func TestAccount_UpdateMemberLimit(t *testing.T) {
	t.Parallel()

	memberRepo := NewMockMemberRepository()
	memberRepo.AddMember(&domain.Member{ID: "mem-1", AccountID: "acct-1", Active: true})

	accountService := service.NewAccountService(NewMockAccountRepository(), memberRepo)
	ctx := context.Background()

	limit := int64(25000)
	if err := accountService.UpdateMemberLimit(ctx, "mem-1", &limit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	member, err := memberRepo.GetByID(ctx, "mem-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if member.DailySpendLimit == nil || *member.DailySpendLimit != 25000 {
		t.Errorf("expected limit 25000, got %v", member.DailySpendLimit)
	}

	// Nil clears the cap.
	if err := accountService.UpdateMemberLimit(ctx, "mem-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	member, _ = memberRepo.GetByID(ctx, "mem-1")
	if member.DailySpendLimit != nil {
		t.Error("expected cap cleared")
	}

	zero := int64(0)
	if err := accountService.UpdateMemberLimit(ctx, "mem-1", &zero); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for zero limit, got %v", err)
	}
}

// ──────────────────────────────────────────────
// DRIVER WALLETS
// ──────────────────────────────────────────────

func TestWallet_UnknownDriverHasNoWallet(t *testing.T) {
	t.Parallel()

	walletService := service.NewWalletService(NewMockDriverRepository(), NewMockWalletRepository())

	_, err := walletService.GetWallet(context.Background(), "nobody")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWallet_NeverCreditedDriverReadsZero(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	walletRepo := NewMockWalletRepository()
	walletService := service.NewWalletService(driverRepo, walletRepo)

	driver, err := walletService.RegisterDriver(context.Background(), service.RegisterDriverRequest{
		Name:  "Juma",
		Phone: "+255700000001",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wallet, err := walletService.GetWallet(context.Background(), driver.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Balance != 0 {
		t.Errorf("expected zero balance, got %d", wallet.Balance)
	}

	// Settlement credits accumulate.
	if err := walletRepo.Credit(context.Background(), driver.ID, 11050); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wallet, _ = walletService.GetWallet(context.Background(), driver.ID)
	if wallet.Balance != 11050 {
		t.Errorf("expected balance 11050, got %d", wallet.Balance)
	}
}
