// Package cache stores remotely generated explanations in memory or in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	keyPrefix = "pgx:explanation:"

	defaultMaxItems = 1024
	defaultTTL      = 24 * time.Hour
	pingTimeout     = 5 * time.Second
)

// Key derives the cache key for one explanation request. Drug and phenotype are
// upper-cased so the key follows the fallback table's normalization.
func Key(model, drug, phenotype, riskLabel, gene, variantContext string) string {
	h := sha256.New()
	for _, part := range []string{
		model,
		strings.ToUpper(strings.TrimSpace(drug)),
		strings.ToUpper(strings.TrimSpace(phenotype)),
		riskLabel,
		gene,
		variantContext,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the configured cache. It returns nil when caching is disabled. A Redis
// backend that cannot be reached at start-up is replaced by the memory backend.
func New(ctx context.Context, cfg domain.CacheConfig, logger *logrus.Logger) (domain.ExplanationCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemoryCache(cfg.MaxItems, cfg.TTL), nil
	case BackendRedis:
		redisCache, err := NewRedisCache(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.WithError(err).Warn("Redis cache unreachable, using in-memory cache")
			_ = redisCache.Close()
			return NewMemoryCache(cfg.MaxItems, cfg.TTL), nil
		}
		return redisCache, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
