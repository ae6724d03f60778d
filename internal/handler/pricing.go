package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cargoride/internal/domain"
	"cargoride/internal/service"
)

// PricingHandler handles the admin HTTP surface for pricing configuration.
type PricingHandler struct {
	pricingService *service.PricingService
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(pricingService *service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// UpsertCommodityRequest is the HTTP request body for a commodity update.
type UpsertCommodityRequest struct {
	Value       float64 `json:"value" binding:"required,gt=0"`
	Description string  `json:"description,omitempty"`
}

// CommodityResponse is the HTTP response for commodity operations.
type CommodityResponse struct {
	Key         string  `json:"key"`
	Value       float64 `json:"value"`
	Description string  `json:"description,omitempty"`
	UpdatedBy   string  `json:"updated_by,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// UpsertCommodity handles PUT /v1/pricing/commodities/:key
func (h *PricingHandler) UpsertCommodity(c *gin.Context) {
	var req UpsertCommodityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	price, err := h.pricingService.UpsertCommodity(c.Request.Context(), service.UpsertCommodityRequest{
		Key:         c.Param("key"),
		Value:       req.Value,
		Description: req.Description,
		UpdatedBy:   c.GetHeader(callerHeader),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CommodityResponse{
		Key:         price.Key,
		Value:       price.Value,
		Description: price.Description,
		UpdatedBy:   price.UpdatedBy,
		UpdatedAt:   price.UpdatedAt.Format(time.RFC3339),
	})
}

// GetCommodity handles GET /v1/pricing/commodities/:key
func (h *PricingHandler) GetCommodity(c *gin.Context) {
	price, err := h.pricingService.GetCommodity(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := CommodityResponse{
		Key:         price.Key,
		Value:       price.Value,
		Description: price.Description,
		UpdatedBy:   price.UpdatedBy,
	}
	if !price.UpdatedAt.IsZero() {
		resp.UpdatedAt = price.UpdatedAt.Format(time.RFC3339)
	}

	respondJSON(c, http.StatusOK, resp)
}

// UpsertRuleRequest is the HTTP request body for a pricing rule upsert.
type UpsertRuleRequest struct {
	VehicleClass       string             `json:"vehicle_class" binding:"required"`
	Model              string             `json:"model" binding:"required"` // RANGE or LINEAR
	BaseFareMultiplier float64            `json:"base_fare_multiplier"`
	PerKmMultiplier    float64            `json:"per_km_multiplier"`
	MinFareMultiplier  float64            `json:"min_fare_multiplier"`
	Tiers              []domain.RangeTier `json:"tiers,omitempty"`
	Active             bool               `json:"active"`
}

// RuleResponse is the HTTP response for pricing rule operations.
type RuleResponse struct {
	VehicleClass       string             `json:"vehicle_class"`
	Model              string             `json:"model"`
	BaseFareMultiplier float64            `json:"base_fare_multiplier"`
	PerKmMultiplier    float64            `json:"per_km_multiplier"`
	MinFareMultiplier  float64            `json:"min_fare_multiplier"`
	Tiers              []domain.RangeTier `json:"tiers,omitempty"`
	Active             bool               `json:"active"`
}

func ruleResponse(rule *domain.PricingRule) RuleResponse {
	return RuleResponse{
		VehicleClass:       string(rule.VehicleClass),
		Model:              string(rule.Model),
		BaseFareMultiplier: rule.BaseFareMultiplier,
		PerKmMultiplier:    rule.PerKmMultiplier,
		MinFareMultiplier:  rule.MinFareMultiplier,
		Tiers:              rule.Tiers,
		Active:             rule.Active,
	}
}

// UpsertRule handles POST /v1/pricing/rules
func (h *PricingHandler) UpsertRule(c *gin.Context) {
	var req UpsertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	rule, err := h.pricingService.UpsertRule(c.Request.Context(), service.UpsertRuleRequest{
		VehicleClass:       domain.VehicleClass(req.VehicleClass),
		Model:              domain.PricingModel(req.Model),
		BaseFareMultiplier: req.BaseFareMultiplier,
		PerKmMultiplier:    req.PerKmMultiplier,
		MinFareMultiplier:  req.MinFareMultiplier,
		Tiers:              req.Tiers,
		Active:             req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ruleResponse(rule))
}

// GetRules handles GET /v1/pricing/rules
func (h *PricingHandler) GetRules(c *gin.Context) {
	rules, err := h.pricingService.GetRules(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		responses = append(responses, ruleResponse(rule))
	}

	respondJSON(c, http.StatusOK, responses)
}
