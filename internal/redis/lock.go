package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireAccountLock attempts to acquire the trip-creation lock for the
// given account. The spending-limit check and the subsequent reservation
// are two separate operations; holding this lock across both keeps two
// simultaneous trips for the same account from both passing the daily-cap
// check before either reserves.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireAccountLock(ctx context.Context, accountID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:account:%s", accountID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseAccountLock releases the lock for the given account.
func (s *LockStore) ReleaseAccountLock(ctx context.Context, accountID string) error {
	key := fmt.Sprintf("lock:account:%s", accountID)

	return s.client.Del(ctx, key).Err()
}
