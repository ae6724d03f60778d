package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusPending   TripStatus = "PENDING"
	TripStatusAccepted  TripStatus = "ACCEPTED"
	TripStatusLoading   TripStatus = "LOADING"
	TripStatusOngoing   TripStatus = "ONGOING"
	TripStatusDelivered TripStatus = "DELIVERED"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// tripTransitions is the legal status transition table. COMPLETED and
// CANCELLED are terminal.
var tripTransitions = map[TripStatus][]TripStatus{
	TripStatusPending:   {TripStatusAccepted},
	TripStatusAccepted:  {TripStatusLoading, TripStatusCancelled},
	TripStatusLoading:   {TripStatusOngoing, TripStatusCancelled},
	TripStatusOngoing:   {TripStatusDelivered, TripStatusCancelled},
	TripStatusDelivered: {TripStatusCompleted},
}

// Valid reports whether the status is a known trip status.
func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPending, TripStatusAccepted, TripStatusLoading,
		TripStatusOngoing, TripStatusDelivered, TripStatusCompleted,
		TripStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// CanTransitionTo reports whether the transition table allows moving from s
// to next. Re-applying the current status is not a transition; callers treat
// it as an idempotent no-op.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	for _, t := range tripTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// PaymentMethod represents how a trip is paid for. Only wallet trips touch
// the account ledger.
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentMethodWallet      PaymentMethod = "WALLET"
)

// SettlementState tracks the two-phase reserve/settle lifecycle of a trip's
// wallet charge, so settle and refund cannot run twice or without a prior
// reservation.
type SettlementState string

const (
	SettlementNone     SettlementState = "NONE"
	SettlementReserved SettlementState = "RESERVED"
	SettlementSettled  SettlementState = "SETTLED"
	SettlementRefunded SettlementState = "REFUNDED"
)

// Trip represents a cargo trip. Status advances monotonically through the
// transition table; FinalFare is set at most once, at or before completion.
type Trip struct {
	ID             string
	PayerID        string // user who requested the trip
	MemberID       string // set for wallet trips
	AccountID      string // set for wallet trips
	DriverID       string // set when a driver accepts
	VehicleClass   VehicleClass
	PickupAddress  string
	DropoffAddress string
	DistanceKm     float64
	FareEstimate   int64 // the amount reserved
	FinalFare      int64 // zero until set at completion
	PaymentMethod  PaymentMethod
	Status         TripStatus
	Settlement     SettlementState
	Quote          FareBreakdown // immutable audit snapshot from quoting
	BusinessTrip   bool
	CreatedAt      time.Time
	CompletedAt    time.Time
	CancelledAt    time.Time
	CancelReason   string
}

// SettlementAmount is the final fare if one was recorded, else the estimate.
func (t *Trip) SettlementAmount() int64 {
	if t.FinalFare > 0 {
		return t.FinalFare
	}
	return t.FareEstimate
}

// WalletPaid reports whether this trip charges a corporate wallet.
func (t *Trip) WalletPaid() bool {
	return t.PaymentMethod == PaymentMethodWallet
}

// PartyTo reports whether the given actor is a party to this trip: the
// payer, the charged member, or the assigned driver.
func (t *Trip) PartyTo(actorID string) bool {
	if actorID == "" {
		return false
	}
	return actorID == t.PayerID || actorID == t.MemberID || actorID == t.DriverID
}
