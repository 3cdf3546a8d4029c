package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pharmaguard-server/internal/domain"
)

type memoryEntry struct {
	sections  domain.ExplanationSections
	expiresAt time.Time
}

// MemoryCache is a size-bounded in-process cache. Entries expire after the cache TTL
// or the per-entry TTL passed to Set, whichever is shorter.
type MemoryCache struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryCache creates a memory cache holding at most maxItems entries
func NewMemoryCache(maxItems int, ttl time.Duration) *MemoryCache {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, memoryEntry](maxItems, nil, ttl),
		now: time.Now,
	}
}

// Get returns the cached sections for key
func (m *MemoryCache) Get(_ context.Context, key string) (domain.ExplanationSections, bool, error) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return domain.ExplanationSections{}, false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.lru.Remove(key)
		return domain.ExplanationSections{}, false, nil
	}
	return entry.sections, true, nil
}

// Set stores sections under key
func (m *MemoryCache) Set(_ context.Context, key string, sections domain.ExplanationSections, ttl time.Duration) error {
	entry := memoryEntry{sections: sections}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.lru.Add(key, entry)
	return nil
}

// Len returns the number of cached entries
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}
