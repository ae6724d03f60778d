package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
	"cargoride/internal/service"
)

// ErrorResponse represents an error response. Details carries the
// structured amounts a client needs to render an actionable message for
// financial declines.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	var insufficientFunds *domain.InsufficientFundsError
	if errors.As(err, &insufficientFunds) {
		c.JSON(http.StatusPaymentRequired, ErrorResponse{
			Error: insufficientFunds.Error(),
			Code:  "INSUFFICIENT_FUNDS",
			Details: map[string]any{
				"required":     insufficientFunds.Required,
				"available":    insufficientFunds.Available,
				"credit_limit": insufficientFunds.CreditLimit,
			},
		})
		return
	}

	var limitExceeded *domain.SpendingLimitExceededError
	if errors.As(err, &limitExceeded) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error: limitExceeded.Error(),
			Code:  "SPENDING_LIMIT_EXCEEDED",
			Details: map[string]any{
				"today_spend": limitExceeded.TodaySpend,
				"limit":       limitExceeded.Limit,
				"attempted":   limitExceeded.Attempted,
			},
		})
		return
	}

	var ruleMissing *domain.PricingRuleMissingError
	if errors.As(err, &ruleMissing) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ruleMissing.Error(),
			Code:  "PRICING_RULE_MISSING",
			Details: map[string]any{
				"vehicle_class": ruleMissing.VehicleClass,
			},
		})
		return
	}

	var illegalTransition *domain.IllegalTransitionError
	if errors.As(err, &illegalTransition) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: illegalTransition.Error(),
			Code:  "ILLEGAL_TRANSITION",
			Details: map[string]any{
				"from": illegalTransition.From,
				"to":   illegalTransition.To,
			},
		})
		return
	}

	// Integrity violations are an internal alert, never rendered raw to
	// end users; the ledger already logged the specifics.
	var integrity *domain.LedgerIntegrityError
	if errors.As(err, &integrity) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal ledger error",
			Code:  "LEDGER_INTEGRITY",
		})
		return
	}

	c.JSON(mapErrorToHTTPStatus(err), ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository sentinel errors to HTTP
// status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPayerID),
		errors.Is(err, service.ErrInvalidMemberID),
		errors.Is(err, service.ErrInvalidAccountID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidVehicleClass),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidCommissionRate),
		errors.Is(err, service.ErrInvalidPricingRule):
		return http.StatusBadRequest

	// Authorization errors
	case errors.Is(err, service.ErrNotPartyToTrip):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrAccountBusy),
		errors.Is(err, service.ErrAccountInactive),
		errors.Is(err, service.ErrMemberInactive),
		errors.Is(err, service.ErrFinalFareAlreadySet),
		errors.Is(err, service.ErrTripNotReserved):
		return http.StatusConflict

	// Default to internal server error
	default:
		log.Printf("unhandled error: %v", err)
		return http.StatusInternalServerError
	}
}
