package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for ride seat locking.
type LockStoreInterface interface {
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

// RateLimiterInterface defines the interface for request rate limiting.
type RateLimiterInterface interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// GeocodeCacheInterface defines the interface for geocode result caching.
type GeocodeCacheInterface interface {
	Get(ctx context.Context, query string) (*CachedPlace, error)
	Set(ctx context.Context, query string, place *CachedPlace) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface    = (*LockStore)(nil)
	_ RateLimiterInterface  = (*RateLimiter)(nil)
	_ GeocodeCacheInterface = (*GeocodeCache)(nil)
)
