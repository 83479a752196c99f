package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Geocode results change rarely; cache them for a week.
const geocodeCacheTTL = 7 * 24 * time.Hour

const geocodeCachePrefix = "cache:geocode:"

// CachedPlace is a cached geocoding result.
type CachedPlace struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// GeocodeCache stores geocoding results in Redis.
type GeocodeCache struct {
	client *redis.Client
}

// NewGeocodeCache creates a new GeocodeCache.
func NewGeocodeCache(client *redis.Client) *GeocodeCache {
	return &GeocodeCache{client: client}
}

// Get retrieves a cached result for a query. Returns nil on cache miss.
func (c *GeocodeCache) Get(ctx context.Context, query string) (*CachedPlace, error) {
	data, err := c.client.Get(ctx, cacheKey(query)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var place CachedPlace
	if err := json.Unmarshal(data, &place); err != nil {
		return nil, err
	}
	return &place, nil
}

// Set stores a geocoding result.
func (c *GeocodeCache) Set(ctx context.Context, query string, place *CachedPlace) error {
	data, err := json.Marshal(place)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(query), data, geocodeCacheTTL).Err()
}

func cacheKey(query string) string {
	return geocodeCachePrefix + strings.ToLower(strings.TrimSpace(query))
}
