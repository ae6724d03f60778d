package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"cargoride/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationTripCreated   NotificationType = "TRIP_CREATED"
	NotificationTripAccepted  NotificationType = "TRIP_ACCEPTED"
	NotificationStatusChanged NotificationType = "TRIP_STATUS_CHANGED"
	NotificationTripCompleted NotificationType = "TRIP_COMPLETED"
	NotificationTripCancelled NotificationType = "TRIP_CANCELLED"
	NotificationReceiptReady  NotificationType = "RECEIPT_READY"
)

// Notification represents an event emitted on a trip status transition.
// Delivery (push, SMS, websocket) happens elsewhere; this core only emits.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService emits trip lifecycle events.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyTripCreated notifies the payer that the trip was created.
func (s *NotificationService) NotifyTripCreated(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripCreated,
		RecipientID: trip.PayerID,
		Title:       "Trip Created",
		Message:     fmt.Sprintf("Your %s trip is booked, fare %d %s", trip.VehicleClass, trip.FareEstimate, domain.Currency),
		Data: map[string]interface{}{
			"trip_id":        trip.ID,
			"fare_estimate":  trip.FareEstimate,
			"payment_method": trip.PaymentMethod,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyStatusChanged notifies the payer of a non-terminal status change.
func (s *NotificationService) NotifyStatusChanged(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error {
	return s.send(ctx, Notification{
		Type:        NotificationStatusChanged,
		RecipientID: trip.PayerID,
		Title:       "Trip Update",
		Message:     fmt.Sprintf("Your trip is now %s", trip.Status),
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"from":    from,
			"to":      trip.Status,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripCompleted notifies payer and driver that the trip settled.
func (s *NotificationService) NotifyTripCompleted(ctx context.Context, trip *domain.Trip, driverPayout int64) error {
	if err := s.send(ctx, Notification{
		Type:        NotificationTripCompleted,
		RecipientID: trip.PayerID,
		Title:       "Trip Completed",
		Message:     fmt.Sprintf("Trip completed, final fare %d %s", trip.SettlementAmount(), domain.Currency),
		Data: map[string]interface{}{
			"trip_id":    trip.ID,
			"final_fare": trip.SettlementAmount(),
		},
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}

	if trip.DriverID == "" {
		return nil
	}
	return s.send(ctx, Notification{
		Type:        NotificationTripCompleted,
		RecipientID: trip.DriverID,
		Title:       "Payout Credited",
		Message:     fmt.Sprintf("You earned %d %s for this trip", driverPayout, domain.Currency),
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"payout":  driverPayout,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripCancelled notifies the payer that the trip was cancelled and
// any reservation released.
func (s *NotificationService) NotifyTripCancelled(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripCancelled,
		RecipientID: trip.PayerID,
		Title:       "Trip Cancelled",
		Message:     "Your trip has been cancelled",
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"reason":  trip.CancelReason,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyReceiptReady notifies the payer that the settlement receipt is ready.
func (s *NotificationService) NotifyReceiptReady(ctx context.Context, receipt *SettlementReceipt) error {
	return s.send(ctx, Notification{
		Type:        NotificationReceiptReady,
		RecipientID: receipt.PayerID,
		Title:       "Receipt Ready",
		Message:     fmt.Sprintf("Your receipt for %d %s is ready", receipt.FinalFare, domain.Currency),
		Data: map[string]interface{}{
			"receipt_id": receipt.ID,
			"trip_id":    receipt.TripID,
			"final_fare": receipt.FinalFare,
		},
		CreatedAt: time.Now(),
	})
}

// send emits a notification. Delivery is handled by an external dispatcher;
// here the event is only logged.
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
