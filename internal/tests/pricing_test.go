package tests

import (
	"context"
	"errors"
	"testing"

	"cargoride/internal/domain"
	"cargoride/internal/service"
)

// ──────────────────────────────────────────────
// PRICING ADMINISTRATION
// ──────────────────────────────────────────────

func TestPricing_UpsertRuleSortsTiers(t *testing.T) {
	t.Parallel()

	ruleRepo := NewMockPricingRuleRepository()
	pricingService := service.NewPricingService(NewMockCommodityPriceRepository(), ruleRepo, nil)

	rule, err := pricingService.UpsertRule(context.Background(), service.UpsertRuleRequest{
		VehicleClass:       domain.VehicleClassCanter,
		Model:              domain.PricingModelRange,
		BaseFareMultiplier: 5,
		PerKmMultiplier:    1.2,
		MinFareMultiplier:  10,
		Tiers: []domain.RangeTier{
			{MaxKm: 15, Multiplier: 18},
			{MaxKm: 5, Multiplier: 10},
		},
		Active: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rule.Tiers[0].MaxKm != 5 || rule.Tiers[1].MaxKm != 15 {
		t.Errorf("expected tiers sorted ascending, got %+v", rule.Tiers)
	}
}

func TestPricing_UpsertRuleValidation(t *testing.T) {
	t.Parallel()

	pricingService := service.NewPricingService(NewMockCommodityPriceRepository(), NewMockPricingRuleRepository(), nil)
	ctx := context.Background()

	if _, err := pricingService.UpsertRule(ctx, service.UpsertRuleRequest{
		VehicleClass: "SEDAN",
		Model:        domain.PricingModelLinear,
	}); !errors.Is(err, service.ErrInvalidVehicleClass) {
		t.Errorf("expected ErrInvalidVehicleClass, got %v", err)
	}

	// Range rules need at least one tier.
	if _, err := pricingService.UpsertRule(ctx, service.UpsertRuleRequest{
		VehicleClass: domain.VehicleClassCanter,
		Model:        domain.PricingModelRange,
	}); !errors.Is(err, service.ErrInvalidPricingRule) {
		t.Errorf("expected ErrInvalidPricingRule for tierless range rule, got %v", err)
	}

	if _, err := pricingService.UpsertRule(ctx, service.UpsertRuleRequest{
		VehicleClass: domain.VehicleClassCanter,
		Model:        "QUADRATIC",
	}); !errors.Is(err, service.ErrInvalidPricingRule) {
		t.Errorf("expected ErrInvalidPricingRule for unknown model, got %v", err)
	}
}

func TestPricing_CommodityUpsertAndDefault(t *testing.T) {
	t.Parallel()

	commodityRepo := NewMockCommodityPriceRepository()
	pricingService := service.NewPricingService(commodityRepo, NewMockPricingRuleRepository(), nil)
	ctx := context.Background()

	// An unset key reads back the hard-coded default.
	price, err := pricingService.GetCommodity(ctx, domain.CommodityFuelPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.Value != 3200 {
		t.Errorf("expected default 3200, got %f", price.Value)
	}

	if _, err := pricingService.UpsertCommodity(ctx, service.UpsertCommodityRequest{
		Key:       domain.CommodityFuelPrice,
		Value:     3350,
		UpdatedBy: "admin-1",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	price, err = pricingService.GetCommodity(ctx, domain.CommodityFuelPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.Value != 3350 {
		t.Errorf("expected updated 3350, got %f", price.Value)
	}

	if _, err := pricingService.UpsertCommodity(ctx, service.UpsertCommodityRequest{
		Key:   domain.CommodityFuelPrice,
		Value: -1,
	}); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestPricing_UpdateDoesNotAlterQuotedTrips(t *testing.T) {
	t.Parallel()

	ruleRepo := NewMockPricingRuleRepository()
	ruleRepo.AddRule(linearKirikuuRule())
	commodityRepo := NewMockCommodityPriceRepository()
	commodityRepo.SetPrice(domain.CommodityFuelPrice, 3200)

	fareService := service.NewFareService(commodityRepo, ruleRepo, nil)
	pricingService := service.NewPricingService(commodityRepo, ruleRepo, nil)
	ctx := context.Background()

	quote, err := fareService.Quote(ctx, service.QuoteRequest{
		DistanceKm:   10,
		VehicleClass: domain.VehicleClassKirikuu,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapshot := quote.Breakdown

	if _, err := pricingService.UpsertCommodity(ctx, service.UpsertCommodityRequest{
		Key:   domain.CommodityFuelPrice,
		Value: 4000,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The earlier quote's snapshot is untouched; only new quotes see the
	// new index.
	if snapshot.CommodityPrice != 3200 {
		t.Errorf("expected snapshot price 3200, got %f", snapshot.CommodityPrice)
	}

	quote, err = fareService.Quote(ctx, service.QuoteRequest{
		DistanceKm:   10,
		VehicleClass: domain.VehicleClassKirikuu,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Breakdown.CommodityPrice != 4000 {
		t.Errorf("expected new quotes to price at 4000, got %f", quote.Breakdown.CommodityPrice)
	}
}
