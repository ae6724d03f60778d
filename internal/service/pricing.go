package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"cargoride/internal/domain"
	"cargoride/internal/redis"
	"cargoride/internal/repository"
)

// PricingService handles the admin side of pricing configuration: commodity
// price updates and pricing rule upserts. Quotes consume this data through
// the fare service; updates here invalidate its cache so new quotes see the
// new values. Already-quoted fares are untouched, their breakdowns were
// snapshotted at quote time.
type PricingService struct {
	commodityRepo repository.CommodityPriceRepository
	ruleRepo      repository.PricingRuleRepository
	cache         redis.PricingCacheInterface
}

// NewPricingService creates a new PricingService. The cache is optional.
func NewPricingService(
	commodityRepo repository.CommodityPriceRepository,
	ruleRepo repository.PricingRuleRepository,
	cache redis.PricingCacheInterface,
) *PricingService {
	return &PricingService{
		commodityRepo: commodityRepo,
		ruleRepo:      ruleRepo,
		cache:         cache,
	}
}

// UpsertCommodityRequest contains the parameters for a commodity update.
type UpsertCommodityRequest struct {
	Key         string
	Value       float64
	Description string
	UpdatedBy   string
}

// UpsertCommodity creates or updates an indexed commodity price.
func (s *PricingService) UpsertCommodity(ctx context.Context, req UpsertCommodityRequest) (*domain.CommodityPrice, error) {
	if req.Key == "" {
		return nil, ErrInvalidPricingRule
	}
	if req.Value <= 0 {
		return nil, ErrInvalidAmount
	}

	price := &domain.CommodityPrice{
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
		UpdatedBy:   req.UpdatedBy,
		UpdatedAt:   time.Now(),
	}

	if err := s.commodityRepo.Upsert(ctx, price); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateCommodity(ctx, req.Key); err != nil {
			log.Printf("commodity cache invalidation failed for %s: %v", req.Key, err)
		}
	}

	return price, nil
}

// GetCommodity retrieves a commodity price, falling back to the hard-coded
// default when the key was never set.
func (s *PricingService) GetCommodity(ctx context.Context, key string) (*domain.CommodityPrice, error) {
	price, err := s.commodityRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.CommodityPrice{Key: key, Value: domain.CommodityDefault(key)}, nil
		}
		return nil, err
	}

	return price, nil
}

// UpsertRuleRequest contains the parameters for a pricing rule upsert.
type UpsertRuleRequest struct {
	VehicleClass       domain.VehicleClass
	Model              domain.PricingModel
	BaseFareMultiplier float64
	PerKmMultiplier    float64
	MinFareMultiplier  float64
	Tiers              []domain.RangeTier
	Active             bool
}

// UpsertRule creates or replaces the pricing rule for a vehicle class.
// Range rules must carry the linear multipliers too: distances past the
// last tier price through the linear fallback.
func (s *PricingService) UpsertRule(ctx context.Context, req UpsertRuleRequest) (*domain.PricingRule, error) {
	if !req.VehicleClass.Valid() {
		return nil, ErrInvalidVehicleClass
	}
	if req.Model != domain.PricingModelRange && req.Model != domain.PricingModelLinear {
		return nil, ErrInvalidPricingRule
	}
	if req.BaseFareMultiplier < 0 || req.PerKmMultiplier < 0 || req.MinFareMultiplier < 0 {
		return nil, ErrInvalidPricingRule
	}
	if req.Model == domain.PricingModelRange && len(req.Tiers) == 0 {
		return nil, ErrInvalidPricingRule
	}
	for _, tier := range req.Tiers {
		if tier.MaxKm <= 0 || tier.Multiplier <= 0 {
			return nil, ErrInvalidPricingRule
		}
	}

	// Tier scan assumes ascending brackets.
	tiers := make([]domain.RangeTier, len(req.Tiers))
	copy(tiers, req.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MaxKm < tiers[j].MaxKm })

	rule := &domain.PricingRule{
		ID:                 uuid.New().String(),
		VehicleClass:       req.VehicleClass,
		Model:              req.Model,
		BaseFareMultiplier: req.BaseFareMultiplier,
		PerKmMultiplier:    req.PerKmMultiplier,
		MinFareMultiplier:  req.MinFareMultiplier,
		Tiers:              tiers,
		Active:             req.Active,
		UpdatedAt:          time.Now(),
	}

	if err := s.ruleRepo.Upsert(ctx, rule); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateRule(ctx, req.VehicleClass); err != nil {
			log.Printf("pricing rule cache invalidation failed for %s: %v", req.VehicleClass, err)
		}
	}

	return rule, nil
}

// GetRules retrieves all pricing rules.
func (s *PricingService) GetRules(ctx context.Context) ([]*domain.PricingRule, error) {
	return s.ruleRepo.GetAll(ctx)
}
