package repository

import (
	"context"

	"cargoride/internal/domain"
)

// PricingRuleRepository defines the persistence operations for pricing rules.
type PricingRuleRepository interface {
	// Upsert creates or replaces the pricing rule for a vehicle class.
	Upsert(ctx context.Context, rule *domain.PricingRule) error

	// GetByVehicleClass retrieves the active rule for a vehicle class.
	// Returns ErrNotFound when no active rule exists.
	GetByVehicleClass(ctx context.Context, class domain.VehicleClass) (*domain.PricingRule, error)

	// GetAll retrieves all pricing rules, active or not.
	GetAll(ctx context.Context) ([]*domain.PricingRule, error)
}

// CommodityPriceRepository defines the persistence operations for indexed
// commodity prices.
type CommodityPriceRepository interface {
	// Upsert creates or updates a commodity price by key.
	Upsert(ctx context.Context, price *domain.CommodityPrice) error

	// GetByKey retrieves a commodity price by key. Returns ErrNotFound when
	// the key has never been set; callers fall back to domain defaults.
	GetByKey(ctx context.Context, key string) (*domain.CommodityPrice, error)
}
