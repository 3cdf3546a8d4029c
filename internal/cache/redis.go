package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pharmaguard-server/internal/domain"
)

// RedisCache shares cached explanations between server instances
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

type cachedExplanation struct {
	Sections domain.ExplanationSections `json:"sections"`
	CachedAt time.Time                  `json:"cached_at"`
}

// NewRedisCache creates a Redis-backed cache from a redis:// URL. It does not connect.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return NewRedisCacheWithOptions(opts), nil
}

// NewRedisCacheWithOptions creates a Redis-backed cache from explicit client options
func NewRedisCacheWithOptions(opts *redis.Options) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(opts),
		defaultTTL: defaultTTL,
	}
}

// Ping checks the connection
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// Get returns the cached sections for key
func (r *RedisCache) Get(ctx context.Context, key string) (domain.ExplanationSections, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.ExplanationSections{}, false, nil
	}
	if err != nil {
		return domain.ExplanationSections{}, false, fmt.Errorf("failed to get explanation cache: %w", err)
	}

	var cached cachedExplanation
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return domain.ExplanationSections{}, false, fmt.Errorf("failed to unmarshal cached explanation: %w", err)
	}
	return cached.Sections, true, nil
}

// Set stores sections under key. A non-positive ttl uses the default.
func (r *RedisCache) Set(ctx context.Context, key string, sections domain.ExplanationSections, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	data, err := json.Marshal(cachedExplanation{Sections: sections, CachedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal explanation: %w", err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set explanation cache: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (r *RedisCache) Close() error {
	return r.client.Close()
}
