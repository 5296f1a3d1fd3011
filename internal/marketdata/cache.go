package marketdata

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tradequest/tradequest/internal/core"
)

// Cache stores fetched histories. Get returns core.ErrCacheMiss for absent or
// expired keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]core.Bar, error)
	Set(ctx context.Context, key string, bars []core.Bar, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheKey builds the cache key for one symbol and date range
func CacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("bars:%s:%s:%s",
		strings.ToUpper(strings.TrimSpace(symbol)),
		start.UTC().Format(time.DateOnly),
		end.UTC().Format(time.DateOnly))
}

type memoryEntry struct {
	bars      []core.Bar
	expiresAt time.Time
}

// MemoryCache is an in-process Cache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]core.Bar, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, core.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, core.ErrCacheMiss
	}
	return append([]core.Bar(nil), e.bars...), nil
}

// Set stores bars under key. A non-positive ttl never expires.
func (m *MemoryCache) Set(_ context.Context, key string, bars []core.Bar, ttl time.Duration) error {
	e := memoryEntry{bars: append([]core.Bar(nil), bars...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
