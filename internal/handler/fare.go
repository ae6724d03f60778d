package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cargoride/internal/domain"
	"cargoride/internal/service"
)

// FareHandler handles HTTP requests for fare quotes.
type FareHandler struct {
	fareService service.FareServiceInterface
}

// NewFareHandler creates a new FareHandler.
func NewFareHandler(fareService service.FareServiceInterface) *FareHandler {
	return &FareHandler{fareService: fareService}
}

// QuoteFareRequest is the HTTP request body for quoting a fare.
type QuoteFareRequest struct {
	DistanceKm   float64 `json:"distance_km" binding:"required,gt=0"`
	VehicleClass string  `json:"vehicle_class" binding:"required"`
	BusinessTrip bool    `json:"business_trip"`
}

// QuoteFareResponse is the HTTP response for a fare quote.
type QuoteFareResponse struct {
	DistanceKm   float64              `json:"distance_km"`
	VehicleClass string               `json:"vehicle_class"`
	Fare         int64                `json:"fare"`
	Currency     string               `json:"currency"`
	Breakdown    domain.FareBreakdown `json:"breakdown"`
}

// QuoteFare handles POST /v1/fares/quote
func (h *FareHandler) QuoteFare(c *gin.Context) {
	var req QuoteFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	quote, err := h.fareService.Quote(c.Request.Context(), service.QuoteRequest{
		DistanceKm:   req.DistanceKm,
		VehicleClass: domain.VehicleClass(req.VehicleClass),
		BusinessTrip: req.BusinessTrip,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, QuoteFareResponse{
		DistanceKm:   quote.DistanceKm,
		VehicleClass: string(quote.VehicleClass),
		Fare:         quote.Fare,
		Currency:     quote.Currency,
		Breakdown:    quote.Breakdown,
	})
}
