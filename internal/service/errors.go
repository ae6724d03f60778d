package service

import "errors"

var (
	// ErrInvalidPayerID is returned when payer ID is empty.
	ErrInvalidPayerID = errors.New("invalid payer id")

	// ErrInvalidMemberID is returned when member ID is empty.
	ErrInvalidMemberID = errors.New("invalid member id")

	// ErrInvalidAccountID is returned when account ID is empty.
	ErrInvalidAccountID = errors.New("invalid account id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidVehicleClass is returned when the vehicle class is unknown.
	ErrInvalidVehicleClass = errors.New("invalid vehicle class")

	// ErrInvalidDistance is returned when the trip distance is outside the
	// plausible range.
	ErrInvalidDistance = errors.New("trip distance out of range")

	// ErrInvalidAmount is returned when a ledger amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidStatus is returned when a trip status is unknown.
	ErrInvalidStatus = errors.New("invalid trip status")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidCommissionRate is returned when a commission rate is outside 0..1.
	ErrInvalidCommissionRate = errors.New("commission rate must be between 0 and 1")

	// ErrInvalidPricingRule is returned when a pricing rule fails validation.
	ErrInvalidPricingRule = errors.New("invalid pricing rule")

	// ErrAccountInactive is returned when a deactivated account is charged.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrMemberInactive is returned when a deactivated member is charged.
	ErrMemberInactive = errors.New("member is inactive")

	// ErrAccountBusy is returned when the account's trip-creation lock is
	// held by another request.
	ErrAccountBusy = errors.New("account has another trip being created")

	// ErrNotPartyToTrip is returned when the caller does not own and is not
	// party to the trip.
	ErrNotPartyToTrip = errors.New("caller is not a party to this trip")

	// ErrFinalFareAlreadySet is returned when a final fare is submitted for
	// a trip that already has one. The final fare is set at most once.
	ErrFinalFareAlreadySet = errors.New("final fare already set")

	// ErrTripNotReserved is returned when a wallet trip reaches settlement
	// without a live reservation.
	ErrTripNotReserved = errors.New("trip has no live reservation")
)
