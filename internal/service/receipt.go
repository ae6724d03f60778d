package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cargoride/internal/domain"
)

// ReceiptService builds settlement receipts for completed trips.
type ReceiptService struct {
	notificationService *NotificationService
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(notificationService *NotificationService) *ReceiptService {
	return &ReceiptService{
		notificationService: notificationService,
	}
}

// SettlementReceipt summarizes how a completed trip's money moved: what was
// reserved, what finally settled, the platform's commission, and the
// driver's payout.
type SettlementReceipt struct {
	ID            string               `json:"id"`
	TripID        string               `json:"trip_id"`
	PayerID       string               `json:"payer_id"`
	AccountID     string               `json:"account_id,omitempty"`
	DriverID      string               `json:"driver_id,omitempty"`
	FareEstimate  int64                `json:"fare_estimate"`
	FinalFare     int64                `json:"final_fare"`
	Adjustment    int64                `json:"adjustment"` // final minus reserved; negative means refunded difference
	DriverPayout  int64                `json:"driver_payout"`
	Commission    int64                `json:"commission"`
	Currency      string               `json:"currency"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Breakdown     domain.FareBreakdown `json:"breakdown"`
	CompletedAt   time.Time            `json:"completed_at"`
	CreatedAt     time.Time            `json:"created_at"`
}

// GenerateReceipt builds the settlement receipt for a completed trip. The
// account supplies the commission rate; nil for non-wallet trips, where the
// whole fare goes to the driver.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, trip *domain.Trip, account *domain.Account) (*SettlementReceipt, error) {
	if trip == nil {
		return nil, ErrInvalidTripID
	}

	finalFare := trip.SettlementAmount()

	payout := finalFare
	if account != nil {
		payout = account.DriverCredit(finalFare)
	}

	receipt := &SettlementReceipt{
		ID:            uuid.New().String(),
		TripID:        trip.ID,
		PayerID:       trip.PayerID,
		AccountID:     trip.AccountID,
		DriverID:      trip.DriverID,
		FareEstimate:  trip.FareEstimate,
		FinalFare:     finalFare,
		Adjustment:    finalFare - trip.FareEstimate,
		DriverPayout:  payout,
		Commission:    finalFare - payout,
		Currency:      domain.Currency,
		PaymentMethod: trip.PaymentMethod,
		Breakdown:     trip.Quote,
		CompletedAt:   trip.CompletedAt,
		CreatedAt:     time.Now(),
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyReceiptReady(ctx, receipt)
	}

	return receipt, nil
}
