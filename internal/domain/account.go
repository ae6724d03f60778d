package domain

import (
	"math"
	"time"
)

// AccountTier represents the service tier of a corporate account.
type AccountTier string

const (
	AccountTierStandard   AccountTier = "STANDARD"
	AccountTierEnterprise AccountTier = "ENTERPRISE"
)

// Account is a corporate wallet owner. AvailableBalance plus ReservedBalance
// is the company's total committed funds; ReservedBalance never goes
// negative, and AvailableBalance may go negative only down to -CreditLimit.
// Accounts are never deleted, only deactivated.
type Account struct {
	ID              string
	Name            string
	AvailableBalance int64
	ReservedBalance  int64
	CreditLimit      int64
	CommissionRate   float64 // platform share of settled fares, 0..1
	Tier             AccountTier
	Active           bool
	CreatedAt        time.Time
}

// Reserve moves amount from available to reserved, failing with
// InsufficientFundsError when available plus credit headroom cannot cover it.
func (a *Account) Reserve(amount int64) error {
	if a.AvailableBalance+a.CreditLimit < amount {
		return &InsufficientFundsError{
			AccountID:   a.ID,
			Required:    amount,
			Available:   a.AvailableBalance,
			CreditLimit: a.CreditLimit,
		}
	}
	a.AvailableBalance -= amount
	a.ReservedBalance += amount
	return nil
}

// Settle releases reservedAmount from the reserved balance and applies the
// over/under difference against available: a final fare above the
// reservation is an extra charge, below it a refund of the overcollected
// portion.
func (a *Account) Settle(reservedAmount, finalAmount int64) error {
	if a.ReservedBalance < reservedAmount {
		return &LedgerIntegrityError{
			AccountID: a.ID,
			Reserved:  a.ReservedBalance,
			Requested: reservedAmount,
		}
	}
	a.ReservedBalance -= reservedAmount
	a.AvailableBalance -= finalAmount - reservedAmount
	return nil
}

// Refund releases a reservation back to available. Used only on trip
// cancellation, always with the amount originally reserved.
func (a *Account) Refund(amount int64) error {
	if a.ReservedBalance < amount {
		return &LedgerIntegrityError{
			AccountID: a.ID,
			Reserved:  a.ReservedBalance,
			Requested: amount,
		}
	}
	a.ReservedBalance -= amount
	a.AvailableBalance += amount
	return nil
}

// DriverCredit is the commission-adjusted amount paid to the driver when a
// fare of finalAmount settles against this account.
func (a *Account) DriverCredit(finalAmount int64) int64 {
	return int64(math.Round(float64(finalAmount) * (1 - a.CommissionRate)))
}

// Member belongs to exactly one account. A nil DailySpendLimit means the
// member has no per-day cap.
type Member struct {
	ID              string
	AccountID       string
	Name            string
	Phone           string
	DailySpendLimit *int64
	Active          bool
	CreatedAt       time.Time
}
