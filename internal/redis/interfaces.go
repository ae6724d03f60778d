package redis

import (
	"context"
	"time"

	"cargoride/internal/domain"
)

// PricingCacheInterface defines the interface for pricing configuration caching.
type PricingCacheInterface interface {
	GetCommodity(ctx context.Context, key string) (*CachedCommodity, error)
	SetCommodity(ctx context.Context, commodity *CachedCommodity) error
	InvalidateCommodity(ctx context.Context, key string) error
	GetRule(ctx context.Context, class domain.VehicleClass) (*CachedRule, error)
	SetRule(ctx context.Context, rule *CachedRule) error
	InvalidateRule(ctx context.Context, class domain.VehicleClass) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireAccountLock(ctx context.Context, accountID string, ttl time.Duration) (bool, error)
	ReleaseAccountLock(ctx context.Context, accountID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ PricingCacheInterface = (*CacheStore)(nil)
	_ LockStoreInterface    = (*LockStore)(nil)
)
