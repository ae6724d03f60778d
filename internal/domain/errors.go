package domain

import "fmt"

// PricingRuleMissingError is returned when no active pricing rule exists for
// a vehicle class. A fare must never be fabricated for an unpriced class.
type PricingRuleMissingError struct {
	VehicleClass VehicleClass
}

func (e *PricingRuleMissingError) Error() string {
	return fmt.Sprintf("no active pricing rule for vehicle class %s", e.VehicleClass)
}

// InsufficientFundsError is returned when a reservation exceeds the account's
// available balance plus credit headroom. Expected and user-facing; carries
// the amounts a client needs to render an actionable message.
type InsufficientFundsError struct {
	AccountID   string
	Required    int64
	Available   int64
	CreditLimit int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %d, available %d, credit limit %d",
		e.Required, e.Available, e.CreditLimit)
}

// SpendingLimitExceededError is returned when a charge would push a member
// past their daily spending cap.
type SpendingLimitExceededError struct {
	MemberID   string
	TodaySpend int64
	Limit      int64
	Attempted  int64
}

func (e *SpendingLimitExceededError) Error() string {
	return fmt.Sprintf("daily spending limit exceeded: spent %d today, limit %d, attempted %d",
		e.TodaySpend, e.Limit, e.Attempted)
}

// IllegalTransitionError is returned when a trip status change is not in the
// transition table. Names the offending pair.
type IllegalTransitionError struct {
	From TripStatus
	To   TripStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal trip status transition %s -> %s", e.From, e.To)
}

// LedgerIntegrityError is returned when a ledger operation would drive an
// account's reserved balance negative. This means settle or refund ran
// without a matching reservation: a data-integrity bug, never auto-corrected
// by clamping.
type LedgerIntegrityError struct {
	AccountID string
	Reserved  int64
	Requested int64
}

func (e *LedgerIntegrityError) Error() string {
	return fmt.Sprintf("ledger integrity violation on account %s: reserved balance %d cannot release %d",
		e.AccountID, e.Reserved, e.Requested)
}
