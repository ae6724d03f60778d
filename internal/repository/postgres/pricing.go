package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
)

// PricingRuleRepository is a PostgreSQL implementation of repository.PricingRuleRepository.
// Range tiers are stored as a JSONB column.
type PricingRuleRepository struct {
	q Querier
}

// NewPricingRuleRepository creates a new PostgreSQL pricing rule repository.
func NewPricingRuleRepository(db *sql.DB) *PricingRuleRepository {
	return &PricingRuleRepository{q: db}
}

// Upsert creates or replaces the pricing rule for a vehicle class.
func (r *PricingRuleRepository) Upsert(ctx context.Context, rule *domain.PricingRule) error {
	tiers, err := json.Marshal(rule.Tiers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pricing_rules (id, vehicle_class, model, base_fare_multiplier, per_km_multiplier, min_fare_multiplier, tiers, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (vehicle_class) DO UPDATE SET
			model = EXCLUDED.model,
			base_fare_multiplier = EXCLUDED.base_fare_multiplier,
			per_km_multiplier = EXCLUDED.per_km_multiplier,
			min_fare_multiplier = EXCLUDED.min_fare_multiplier,
			tiers = EXCLUDED.tiers,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.q.ExecContext(ctx, query,
		rule.ID,
		rule.VehicleClass,
		rule.Model,
		rule.BaseFareMultiplier,
		rule.PerKmMultiplier,
		rule.MinFareMultiplier,
		tiers,
		rule.Active,
		rule.UpdatedAt,
	)

	return err
}

// GetByVehicleClass retrieves the active rule for a vehicle class.
func (r *PricingRuleRepository) GetByVehicleClass(ctx context.Context, class domain.VehicleClass) (*domain.PricingRule, error) {
	query := `
		SELECT id, vehicle_class, model, base_fare_multiplier, per_km_multiplier, min_fare_multiplier, tiers, active, updated_at
		FROM pricing_rules WHERE vehicle_class = $1 AND active = TRUE
	`

	rule, err := scanPricingRule(r.q.QueryRowContext(ctx, query, class))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return rule, nil
}

// GetAll retrieves all pricing rules.
func (r *PricingRuleRepository) GetAll(ctx context.Context) ([]*domain.PricingRule, error) {
	query := `
		SELECT id, vehicle_class, model, base_fare_multiplier, per_km_multiplier, min_fare_multiplier, tiers, active, updated_at
		FROM pricing_rules ORDER BY vehicle_class
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.PricingRule
	for rows.Next() {
		rule, err := scanPricingRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func scanPricingRule(s scanner) (*domain.PricingRule, error) {
	var rule domain.PricingRule
	var tiers []byte

	err := s.Scan(
		&rule.ID,
		&rule.VehicleClass,
		&rule.Model,
		&rule.BaseFareMultiplier,
		&rule.PerKmMultiplier,
		&rule.MinFareMultiplier,
		&tiers,
		&rule.Active,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &rule.Tiers); err != nil {
			return nil, err
		}
	}

	return &rule, nil
}

// CommodityPriceRepository is a PostgreSQL implementation of repository.CommodityPriceRepository.
type CommodityPriceRepository struct {
	q Querier
}

// NewCommodityPriceRepository creates a new PostgreSQL commodity price repository.
func NewCommodityPriceRepository(db *sql.DB) *CommodityPriceRepository {
	return &CommodityPriceRepository{q: db}
}

// Upsert creates or updates a commodity price by key.
func (r *CommodityPriceRepository) Upsert(ctx context.Context, price *domain.CommodityPrice) error {
	query := `
		INSERT INTO commodity_prices (key, value, description, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = EXCLUDED.description,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.q.ExecContext(ctx, query,
		price.Key,
		price.Value,
		price.Description,
		price.UpdatedBy,
		price.UpdatedAt,
	)

	return err
}

// GetByKey retrieves a commodity price by key.
func (r *CommodityPriceRepository) GetByKey(ctx context.Context, key string) (*domain.CommodityPrice, error) {
	query := `
		SELECT key, value, description, updated_by, updated_at
		FROM commodity_prices WHERE key = $1
	`

	var price domain.CommodityPrice
	err := r.q.QueryRowContext(ctx, query, key).Scan(
		&price.Key,
		&price.Value,
		&price.Description,
		&price.UpdatedBy,
		&price.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &price, nil
}

// Ensure implementations satisfy the repository interfaces.
var (
	_ repository.PricingRuleRepository    = (*PricingRuleRepository)(nil)
	_ repository.CommodityPriceRepository = (*CommodityPriceRepository)(nil)
)
