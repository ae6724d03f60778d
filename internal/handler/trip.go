package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cargoride/internal/domain"
	"cargoride/internal/service"
)

// callerHeader carries the caller identity, verified by the upstream
// gateway before requests reach this service.
const callerHeader = "X-Caller-ID"

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for creating a trip.
type CreateTripRequest struct {
	PayerID        string  `json:"payer_id" binding:"required"`
	MemberID       string  `json:"member_id,omitempty"`
	VehicleClass   string  `json:"vehicle_class" binding:"required"`
	PickupAddress  string  `json:"pickup_address"`
	DropoffAddress string  `json:"dropoff_address"`
	DistanceKm     float64 `json:"distance_km" binding:"required,gt=0"`
	PaymentMethod  string  `json:"payment_method" binding:"required"` // CASH, MOBILE_MONEY, WALLET
	BusinessTrip   bool    `json:"business_trip"`
}

// AdvanceStatusRequest is the HTTP request body for a status change.
type AdvanceStatusRequest struct {
	Status       string `json:"status" binding:"required"`
	DriverID     string `json:"driver_id,omitempty"`
	FinalFare    *int64 `json:"final_fare,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID         string                     `json:"trip_id"`
	PayerID        string                     `json:"payer_id"`
	MemberID       string                     `json:"member_id,omitempty"`
	AccountID      string                     `json:"account_id,omitempty"`
	DriverID       string                     `json:"driver_id,omitempty"`
	VehicleClass   string                     `json:"vehicle_class"`
	PickupAddress  string                     `json:"pickup_address,omitempty"`
	DropoffAddress string                     `json:"dropoff_address,omitempty"`
	DistanceKm     float64                    `json:"distance_km"`
	FareEstimate   int64                      `json:"fare_estimate"`
	FinalFare      int64                      `json:"final_fare,omitempty"`
	Currency       string                     `json:"currency"`
	PaymentMethod  string                     `json:"payment_method"`
	Status         string                     `json:"status"`
	Settlement     string                     `json:"settlement"`
	Breakdown      domain.FareBreakdown       `json:"breakdown"`
	CreatedAt      string                     `json:"created_at"`
	CompletedAt    string                     `json:"completed_at,omitempty"`
	CancelledAt    string                     `json:"cancelled_at,omitempty"`
	CancelReason   string                     `json:"cancel_reason,omitempty"`
	Receipt        *service.SettlementReceipt `json:"receipt,omitempty"`
}

func tripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		TripID:         trip.ID,
		PayerID:        trip.PayerID,
		MemberID:       trip.MemberID,
		AccountID:      trip.AccountID,
		DriverID:       trip.DriverID,
		VehicleClass:   string(trip.VehicleClass),
		PickupAddress:  trip.PickupAddress,
		DropoffAddress: trip.DropoffAddress,
		DistanceKm:     trip.DistanceKm,
		FareEstimate:   trip.FareEstimate,
		FinalFare:      trip.FinalFare,
		Currency:       domain.Currency,
		PaymentMethod:  string(trip.PaymentMethod),
		Status:         string(trip.Status),
		Settlement:     string(trip.Settlement),
		Breakdown:      trip.Quote,
		CreatedAt:      trip.CreatedAt.Format(time.RFC3339),
	}

	if !trip.CompletedAt.IsZero() {
		resp.CompletedAt = trip.CompletedAt.Format(time.RFC3339)
	}
	if !trip.CancelledAt.IsZero() {
		resp.CancelledAt = trip.CancelledAt.Format(time.RFC3339)
		resp.CancelReason = trip.CancelReason
	}

	return resp
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		PayerID:        req.PayerID,
		MemberID:       req.MemberID,
		VehicleClass:   domain.VehicleClass(req.VehicleClass),
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		DistanceKm:     req.DistanceKm,
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		BusinessTrip:   req.BusinessTrip,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip))
}

// AdvanceStatus handles POST /v1/trips/:id/status
func (h *TripHandler) AdvanceStatus(c *gin.Context) {
	var req AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.tripService.AdvanceStatus(c.Request.Context(), service.AdvanceStatusRequest{
		TripID:       c.Param("id"),
		NewStatus:    domain.TripStatus(req.Status),
		ActorID:      c.GetHeader(callerHeader),
		DriverID:     req.DriverID,
		FinalFare:    req.FinalFare,
		CancelReason: req.CancelReason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := tripResponse(result.Trip)
	resp.Receipt = result.Receipt
	respondJSON(c, http.StatusOK, resp)
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.GetAllTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		responses = append(responses, tripResponse(trip))
	}

	respondJSON(c, http.StatusOK, responses)
}
