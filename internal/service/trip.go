package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"cargoride/internal/domain"
	"cargoride/internal/redis"
	"cargoride/internal/repository"
)

// Plausible trip distance bounds. The fare engine prices whatever distance
// it is given; rejecting nonsense distances is this caller's job.
const (
	MinTripDistanceKm = 0.5
	MaxTripDistanceKm = 300.0
)

// accountLockTTL bounds how long a trip-creation lock can outlive a crashed
// request.
const accountLockTTL = 10 * time.Second

// TripService handles trip creation and the status state machine. Its
// transitions into COMPLETED and CANCELLED are the only callers of the
// ledger's settle and refund operations.
type TripService struct {
	tripRepo            repository.TripRepository
	memberRepo          repository.MemberRepository
	accountRepo         repository.AccountRepository
	driverRepo          repository.DriverRepository
	fareService         FareServiceInterface
	spendLimitService   SpendLimitServiceInterface
	ledger              LedgerServiceInterface
	lockStore           redis.LockStoreInterface
	notificationService *NotificationService
	receiptService      *ReceiptService
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	memberRepo repository.MemberRepository,
	accountRepo repository.AccountRepository,
	driverRepo repository.DriverRepository,
	fareService FareServiceInterface,
	spendLimitService SpendLimitServiceInterface,
	ledger LedgerServiceInterface,
	lockStore redis.LockStoreInterface,
	notificationService *NotificationService,
	receiptService *ReceiptService,
) *TripService {
	return &TripService{
		tripRepo:            tripRepo,
		memberRepo:          memberRepo,
		accountRepo:         accountRepo,
		driverRepo:          driverRepo,
		fareService:         fareService,
		spendLimitService:   spendLimitService,
		ledger:              ledger,
		lockStore:           lockStore,
		notificationService: notificationService,
		receiptService:      receiptService,
	}
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	PayerID        string
	MemberID       string // required for wallet payment
	VehicleClass   domain.VehicleClass
	PickupAddress  string
	DropoffAddress string
	DistanceKm     float64
	PaymentMethod  domain.PaymentMethod
	BusinessTrip   bool
	PriceOverride  *float64
}

// CreateTrip quotes the fare and creates the trip in PENDING state. For
// wallet-paid trips the spending limit guard must approve and the fare is
// reserved against the corporate account before the trip exists; a failed
// reservation means no trip and no charge.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	quote, err := s.fareService.Quote(ctx, QuoteRequest{
		DistanceKm:    req.DistanceKm,
		VehicleClass:  req.VehicleClass,
		PriceOverride: req.PriceOverride,
		BusinessTrip:  req.BusinessTrip,
	})
	if err != nil {
		return nil, err
	}

	trip := &domain.Trip{
		ID:             uuid.New().String(),
		PayerID:        req.PayerID,
		VehicleClass:   req.VehicleClass,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		DistanceKm:     req.DistanceKm,
		FareEstimate:   quote.Fare,
		PaymentMethod:  req.PaymentMethod,
		Status:         domain.TripStatusPending,
		Settlement:     domain.SettlementNone,
		Quote:          quote.Breakdown,
		BusinessTrip:   req.BusinessTrip,
		CreatedAt:      time.Now(),
	}

	if req.PaymentMethod == domain.PaymentMethodWallet {
		if err := s.reserveForTrip(ctx, req.MemberID, trip); err != nil {
			return nil, err
		}
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		// The reservation exists but the trip does not; release the funds.
		if trip.Settlement == domain.SettlementReserved {
			if _, refundErr := s.ledger.Refund(ctx, trip.AccountID, trip.FareEstimate); refundErr != nil {
				log.Printf("ALERT: failed to release reservation of %d on account %s after trip create failure: %v",
					trip.FareEstimate, trip.AccountID, refundErr)
			}
		}
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTripCreated(ctx, trip)
	}

	return trip, nil
}

// reserveForTrip resolves the member and account, runs the spending limit
// guard, and reserves the fare. The guard check and the reservation are two
// operations; the per-account creation lock keeps two concurrent trips for
// the same account from both passing the daily-cap check before either
// reserves.
func (s *TripService) reserveForTrip(ctx context.Context, memberID string, trip *domain.Trip) error {
	if memberID == "" {
		return ErrInvalidMemberID
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if !member.Active {
		return ErrMemberInactive
	}

	account, err := s.accountRepo.GetByID(ctx, member.AccountID)
	if err != nil {
		return err
	}
	if !account.Active {
		return ErrAccountInactive
	}

	if s.lockStore != nil {
		ok, err := s.lockStore.AcquireAccountLock(ctx, account.ID, accountLockTTL)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAccountBusy
		}
		defer func() {
			_ = s.lockStore.ReleaseAccountLock(ctx, account.ID)
		}()
	}

	decision, err := s.spendLimitService.CheckAllowed(ctx, member, trip.FareEstimate)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		switch decision.Reason {
		case DeclineReasonDailyLimit:
			return &domain.SpendingLimitExceededError{
				MemberID:   member.ID,
				TodaySpend: decision.TodaySpend,
				Limit:      decision.Limit,
				Attempted:  decision.Attempted,
			}
		default:
			return &domain.InsufficientFundsError{
				AccountID:   account.ID,
				Required:    decision.Attempted,
				Available:   decision.Available,
				CreditLimit: account.CreditLimit,
			}
		}
	}

	if _, err := s.ledger.Reserve(ctx, account.ID, trip.FareEstimate); err != nil {
		return err
	}

	trip.MemberID = member.ID
	trip.AccountID = account.ID
	trip.Settlement = domain.SettlementReserved

	return nil
}

// AdvanceStatusRequest contains the parameters for a trip status change.
type AdvanceStatusRequest struct {
	TripID       string
	NewStatus    domain.TripStatus
	ActorID      string // verified caller identity, must be party to the trip
	DriverID     string // required when accepting
	FinalFare    *int64 // optional, only when completing; set at most once
	CancelReason string
}

// AdvanceStatusResponse contains the result of a status change.
type AdvanceStatusResponse struct {
	Trip    *domain.Trip
	Receipt *SettlementReceipt
}

// AdvanceStatus moves a trip through its state machine. Re-applying the
// current status is an idempotent no-op; every other transition must be in
// the transition table. Entering COMPLETED settles the reservation and pays
// the driver; entering CANCELLED refunds it. No other transition touches
// the ledger.
func (s *TripService) AdvanceStatus(ctx context.Context, req AdvanceStatusRequest) (*AdvanceStatusResponse, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if !req.NewStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	// Idempotent retry: same status, no side effects.
	if trip.Status == req.NewStatus {
		return &AdvanceStatusResponse{Trip: trip}, nil
	}

	if err := s.authorizeActor(ctx, trip, req); err != nil {
		return nil, err
	}

	if !trip.Status.CanTransitionTo(req.NewStatus) {
		return nil, &domain.IllegalTransitionError{From: trip.Status, To: req.NewStatus}
	}

	from := trip.Status

	var account *domain.Account
	var receipt *SettlementReceipt

	switch req.NewStatus {
	case domain.TripStatusAccepted:
		if req.DriverID == "" {
			return nil, ErrInvalidDriverID
		}
		if _, err := s.driverRepo.GetByID(ctx, req.DriverID); err != nil {
			return nil, err
		}
		trip.DriverID = req.DriverID

	case domain.TripStatusCompleted:
		if req.FinalFare != nil {
			if trip.FinalFare > 0 {
				return nil, ErrFinalFareAlreadySet
			}
			if *req.FinalFare <= 0 {
				return nil, ErrInvalidAmount
			}
			trip.FinalFare = *req.FinalFare
		}
		trip.CompletedAt = time.Now()

		if trip.WalletPaid() {
			if trip.Settlement != domain.SettlementReserved {
				return nil, ErrTripNotReserved
			}
			// Funds move first; if persisting the trip fails below, a
			// retried settle is caught by the ledger integrity check
			// instead of silently double-paying.
			account, err = s.ledger.Settle(ctx, trip.AccountID, trip.FareEstimate, trip.SettlementAmount(), trip.DriverID)
			if err != nil {
				return nil, err
			}
			trip.Settlement = domain.SettlementSettled
		}

	case domain.TripStatusCancelled:
		trip.CancelledAt = time.Now()
		trip.CancelReason = req.CancelReason

		if trip.WalletPaid() {
			if trip.Settlement != domain.SettlementReserved {
				return nil, ErrTripNotReserved
			}
			if _, err := s.ledger.Refund(ctx, trip.AccountID, trip.FareEstimate); err != nil {
				return nil, err
			}
			trip.Settlement = domain.SettlementRefunded
		}
	}

	trip.Status = req.NewStatus

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		if req.NewStatus.Terminal() && trip.WalletPaid() {
			log.Printf("ALERT: ledger %s applied for trip %s but trip update failed: %v",
				trip.Settlement, trip.ID, err)
		}
		return nil, err
	}

	switch req.NewStatus {
	case domain.TripStatusCompleted:
		payout := trip.SettlementAmount()
		if account != nil {
			payout = account.DriverCredit(trip.SettlementAmount())
		}
		if s.notificationService != nil {
			_ = s.notificationService.NotifyTripCompleted(ctx, trip, payout)
		}
		if s.receiptService != nil {
			receipt, _ = s.receiptService.GenerateReceipt(ctx, trip, account)
		}
	case domain.TripStatusCancelled:
		if s.notificationService != nil {
			_ = s.notificationService.NotifyTripCancelled(ctx, trip)
		}
	default:
		if s.notificationService != nil {
			_ = s.notificationService.NotifyStatusChanged(ctx, trip, from)
		}
	}

	return &AdvanceStatusResponse{Trip: trip, Receipt: receipt}, nil
}

// authorizeActor rejects status changes from callers who are not party to
// the trip. Accepting is the exception: the accepting driver is not a party
// yet, so the actor must be the driver taking the trip.
func (s *TripService) authorizeActor(ctx context.Context, trip *domain.Trip, req AdvanceStatusRequest) error {
	if req.ActorID == "" {
		return ErrNotPartyToTrip
	}

	if req.NewStatus == domain.TripStatusAccepted {
		if req.ActorID != req.DriverID {
			return ErrNotPartyToTrip
		}
		return nil
	}

	if !trip.PartyTo(req.ActorID) {
		return ErrNotPartyToTrip
	}
	return nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.tripRepo.GetByID(ctx, tripID)
}

// GetAllTrips retrieves recent trips.
func (s *TripService) GetAllTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

func (s *TripService) validateCreateRequest(req CreateTripRequest) error {
	if req.PayerID == "" {
		return ErrInvalidPayerID
	}
	if !req.VehicleClass.Valid() {
		return ErrInvalidVehicleClass
	}
	if req.DistanceKm < MinTripDistanceKm || req.DistanceKm > MaxTripDistanceKm {
		return ErrInvalidDistance
	}
	switch req.PaymentMethod {
	case domain.PaymentMethodCash, domain.PaymentMethodMobileMoney, domain.PaymentMethodWallet:
	default:
		return ErrInvalidPaymentMethod
	}
	return nil
}
