package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"cargoride/internal/domain"
)

// CacheStore handles pricing configuration caching in Redis. Commodity
// prices and pricing rules are read on every quote, so quotes go through
// this cache and admin updates invalidate it.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	CommodityCacheTTL = 60 * time.Second // fuel price changes at most a few times a day
	RuleCacheTTL      = 5 * time.Minute  // pricing rules change rarely
)

// Key prefixes
const (
	commodityCachePrefix = "cache:commodity:"
	ruleCachePrefix      = "cache:rule:"
)

// CachedCommodity represents a cached commodity price entry.
type CachedCommodity struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// CachedRule represents a cached pricing rule.
type CachedRule struct {
	VehicleClass       string             `json:"vehicle_class"`
	Model              string             `json:"model"`
	BaseFareMultiplier float64            `json:"base_fare_multiplier"`
	PerKmMultiplier    float64            `json:"per_km_multiplier"`
	MinFareMultiplier  float64            `json:"min_fare_multiplier"`
	Tiers              []domain.RangeTier `json:"tiers,omitempty"`
}

// ToRule converts the cached form back to a domain pricing rule.
func (c *CachedRule) ToRule() *domain.PricingRule {
	return &domain.PricingRule{
		VehicleClass:       domain.VehicleClass(c.VehicleClass),
		Model:              domain.PricingModel(c.Model),
		BaseFareMultiplier: c.BaseFareMultiplier,
		PerKmMultiplier:    c.PerKmMultiplier,
		MinFareMultiplier:  c.MinFareMultiplier,
		Tiers:              c.Tiers,
	}
}

// NewCachedRule converts a domain pricing rule to its cached form.
func NewCachedRule(rule *domain.PricingRule) *CachedRule {
	return &CachedRule{
		VehicleClass:       string(rule.VehicleClass),
		Model:              string(rule.Model),
		BaseFareMultiplier: rule.BaseFareMultiplier,
		PerKmMultiplier:    rule.PerKmMultiplier,
		MinFareMultiplier:  rule.MinFareMultiplier,
		Tiers:              rule.Tiers,
	}
}

// GetCommodity retrieves a commodity price from cache. Returns nil on miss.
func (s *CacheStore) GetCommodity(ctx context.Context, key string) (*CachedCommodity, error) {
	data, err := s.client.Get(ctx, commodityCachePrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var commodity CachedCommodity
	if err := json.Unmarshal(data, &commodity); err != nil {
		return nil, err
	}
	return &commodity, nil
}

// SetCommodity stores a commodity price in cache.
func (s *CacheStore) SetCommodity(ctx context.Context, commodity *CachedCommodity) error {
	data, err := json.Marshal(commodity)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, commodityCachePrefix+commodity.Key, data, CommodityCacheTTL).Err()
}

// InvalidateCommodity removes a commodity price from cache.
func (s *CacheStore) InvalidateCommodity(ctx context.Context, key string) error {
	return s.client.Del(ctx, commodityCachePrefix+key).Err()
}

// GetRule retrieves a pricing rule from cache. Returns nil on miss.
func (s *CacheStore) GetRule(ctx context.Context, class domain.VehicleClass) (*CachedRule, error) {
	data, err := s.client.Get(ctx, ruleCachePrefix+string(class)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var rule CachedRule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// SetRule stores a pricing rule in cache.
func (s *CacheStore) SetRule(ctx context.Context, rule *CachedRule) error {
	data, err := json.Marshal(rule)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, ruleCachePrefix+rule.VehicleClass, data, RuleCacheTTL).Err()
}

// InvalidateRule removes a pricing rule from cache.
func (s *CacheStore) InvalidateRule(ctx context.Context, class domain.VehicleClass) error {
	return s.client.Del(ctx, ruleCachePrefix+string(class)).Err()
}
