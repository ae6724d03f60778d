package service

import (
	"context"
	"errors"
	"log"
	"math"

	"cargoride/internal/domain"
	"cargoride/internal/redis"
	"cargoride/internal/repository"
)

// FareServiceInterface defines the fare quoting contract.
// This interface allows for testing with mock implementations.
type FareServiceInterface interface {
	Quote(ctx context.Context, req QuoteRequest) (*domain.FareQuote, error)
}

// Ensure FareService implements FareServiceInterface.
var _ FareServiceInterface = (*FareService)(nil)

// FareService prices trips from an indexed commodity price and the pricing
// rule table. It never mutates state and is safe for concurrent use; the
// same request always prices against whatever the index holds at that
// moment, and the returned breakdown is the caller's immutable snapshot.
type FareService struct {
	commodityRepo repository.CommodityPriceRepository
	ruleRepo      repository.PricingRuleRepository
	cache         redis.PricingCacheInterface
}

// NewFareService creates a new FareService. The cache is optional.
func NewFareService(
	commodityRepo repository.CommodityPriceRepository,
	ruleRepo repository.PricingRuleRepository,
	cache redis.PricingCacheInterface,
) *FareService {
	return &FareService{
		commodityRepo: commodityRepo,
		ruleRepo:      ruleRepo,
		cache:         cache,
	}
}

// QuoteRequest contains the parameters for pricing a trip.
type QuoteRequest struct {
	DistanceKm    float64
	VehicleClass  domain.VehicleClass
	PriceOverride *float64 // bypasses the commodity index when set
	BusinessTrip  bool
}

// Quote prices the given distance for a vehicle class.
//
// Range-priced classes pick the first tier covering the distance; trips past
// every tier fall back to the rule's linear formula. Linear pricing is
// base + per-km, floored at the rule's minimum. The result is rounded up to
// the next multiple of 500, and business trips carry a margin surcharge
// applied to the rounded fare and re-rounded.
func (s *FareService) Quote(ctx context.Context, req QuoteRequest) (*domain.FareQuote, error) {
	if !req.VehicleClass.Valid() {
		return nil, ErrInvalidVehicleClass
	}

	// Resolve the commodity price: override, then index, then default.
	price := s.commodityValue(ctx, domain.CommodityFuelPrice)
	if req.PriceOverride != nil {
		price = *req.PriceOverride
	}

	rule, err := s.resolveRule(ctx, req.VehicleClass)
	if err != nil {
		return nil, err
	}

	breakdown := domain.FareBreakdown{
		CommodityPrice: price,
		Model:          rule.Model,
	}

	var raw float64
	tier := (*domain.RangeTier)(nil)
	if rule.Model == domain.PricingModelRange {
		tier = rule.TierFor(req.DistanceKm)
	}

	if tier != nil {
		raw = tier.Multiplier * price
		breakdown.TierMaxKm = tier.MaxKm
	} else {
		// Linear model, or a range rule whose tiers the distance outran.
		raw = (rule.BaseFareMultiplier * price) + (req.DistanceKm * rule.PerKmMultiplier * price)
		if floor := rule.MinFareMultiplier * price; raw < floor {
			raw = floor
			breakdown.MinFareApplied = true
		}
	}

	breakdown.RawPrice = raw
	fare := roundUpFare(raw)

	if req.BusinessTrip {
		margin := s.commodityValue(ctx, domain.CommodityBusinessMargin)
		fare = roundUpFare(float64(fare) * (1 + margin))
		breakdown.BusinessMargin = true
	}

	return &domain.FareQuote{
		DistanceKm:   req.DistanceKm,
		VehicleClass: req.VehicleClass,
		Fare:         fare,
		Currency:     domain.Currency,
		Breakdown:    breakdown,
	}, nil
}

// resolveRule returns the active pricing rule for the class, reading through
// the cache. A missing rule is a hard error: an unpriced vehicle class must
// never move money.
func (s *FareService) resolveRule(ctx context.Context, class domain.VehicleClass) (*domain.PricingRule, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRule(ctx, class)
		if err != nil {
			log.Printf("pricing rule cache read failed for %s: %v", class, err)
		} else if cached != nil {
			return cached.ToRule(), nil
		}
	}

	rule, err := s.ruleRepo.GetByVehicleClass(ctx, class)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &domain.PricingRuleMissingError{VehicleClass: class}
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetRule(ctx, redis.NewCachedRule(rule)); err != nil {
			log.Printf("pricing rule cache write failed for %s: %v", class, err)
		}
	}

	return rule, nil
}

// commodityValue reads an indexed value through the cache, falling back to
// the hard-coded default when the key was never set. Cache failures degrade
// to a repository read, and repository failures to the default: a quote must
// not fail because the index is unreachable.
func (s *FareService) commodityValue(ctx context.Context, key string) float64 {
	if s.cache != nil {
		cached, err := s.cache.GetCommodity(ctx, key)
		if err != nil {
			log.Printf("commodity cache read failed for %s: %v", key, err)
		} else if cached != nil {
			return cached.Value
		}
	}

	price, err := s.commodityRepo.GetByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("commodity lookup failed for %s, using default: %v", key, err)
		}
		return domain.CommodityDefault(key)
	}

	if s.cache != nil {
		if err := s.cache.SetCommodity(ctx, &redis.CachedCommodity{Key: key, Value: price.Value}); err != nil {
			log.Printf("commodity cache write failed for %s: %v", key, err)
		}
	}

	return price.Value
}

// roundUpFare rounds a price up to the next multiple of the fare rounding
// granularity. A fare is always at least one rounding unit, so every quote
// is a positive multiple of 500. The epsilon keeps float noise from pushing
// an exact multiple into the next bracket.
func roundUpFare(v float64) int64 {
	const epsilon = 1e-9

	fare := int64(math.Ceil(v/float64(domain.FareRounding)-epsilon)) * domain.FareRounding
	if fare < domain.FareRounding {
		return domain.FareRounding
	}
	return fare
}
