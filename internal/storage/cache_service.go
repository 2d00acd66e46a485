package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService provides high-level caching for read-heavy feed and analytics queries
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyDrafts is for the drafts feed per user
	CacheKeyDrafts CacheKeyType = "drafts"
	// CacheKeyAnalytics is for the analytics dashboard per user
	CacheKeyAnalytics CacheKeyType = "analytics"
)

// GenerateCacheKey generates a cache key for a given type and parameters.
// Format: <type>:<param1>:<param2>:...
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	normalizedParams := make([]string, len(params))
	for i, param := range params {
		normalizedParams[i] = strings.ToLower(param)
	}

	parts := append([]string{string(keyType)}, normalizedParams...)
	return strings.Join(parts, ":")
}

// GenerateDraftsKey generates a cache key for a user's drafts feed page.
// Format: drafts:<user-id>:<limit>:<offset>
func (c *CacheService) GenerateDraftsKey(userID string, limit, offset int) string {
	return c.GenerateCacheKey(CacheKeyDrafts, userID, fmt.Sprintf("%d", limit), fmt.Sprintf("%d", offset))
}

// GenerateAnalyticsKey generates a cache key for a user's analytics dashboard.
// Format: analytics:<user-id>
func (c *CacheService) GenerateAnalyticsKey(userID string) string {
	return c.GenerateCacheKey(CacheKeyAnalytics, userID)
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with a custom TTL
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redis.Set(ctx, key, data, ttl)
}

// Get retrieves a value from cache and deserializes it. The boolean result
// reports a cache hit; a missing key is not an error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}

// InvalidateUser removes all cached feed and analytics entries for a user.
// Called after send, archive, and swipe actions mutate the underlying rows.
func (c *CacheService) InvalidateUser(ctx context.Context, userID string) error {
	patterns := []string{
		c.GenerateCacheKey(CacheKeyDrafts, userID) + ":*",
		c.GenerateAnalyticsKey(userID),
	}

	var keys []string
	for _, pattern := range patterns {
		matched, err := c.redis.Keys(ctx, pattern)
		if err != nil {
			return fmt.Errorf("failed to list cache keys: %w", err)
		}
		keys = append(keys, matched...)
	}

	return c.Invalidate(ctx, keys...)
}
