package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCache implements an in-memory cache with TTL support. When
// MaxEntries is set the oldest entry is evicted first.
type MemoryCache struct {
	mu     sync.Mutex
	items  map[string]cacheItem
	order  []string
	config Config
	now    func() time.Time
}

// cacheItem represents an item stored in the cache
type cacheItem struct {
	value      []byte
	expiration time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(config Config) *MemoryCache {
	return &MemoryCache{
		items:  make(map[string]cacheItem),
		config: config,
		now:    time.Now,
	}
}

// Get retrieves a value from the cache
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullKey := m.config.Prefix + key

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[fullKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}

	// Check if item has expired
	if !item.expiration.IsZero() && m.now().After(item.expiration) {
		m.remove(fullKey)
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}

	return item.value, nil
}

// Set stores a value in the cache with a TTL
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullKey := m.config.Prefix + key

	// Use default TTL if none provided
	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	item := cacheItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiration = m.now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[fullKey]; !exists {
		m.order = append(m.order, fullKey)
	}
	m.items[fullKey] = item

	for m.config.MaxEntries > 0 && len(m.items) > m.config.MaxEntries {
		m.remove(m.order[0])
	}
	return nil
}

// Delete removes a value from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(m.config.Prefix + key)
	return nil
}

// Clear removes all values from the cache
func (m *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]cacheItem)
	m.order = nil
	return nil
}

// Len returns the number of stored entries, expired ones included
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close implements Cache
func (m *MemoryCache) Close() error {
	return nil
}

// remove deletes a key; the caller holds the lock
func (m *MemoryCache) remove(fullKey string) {
	if _, ok := m.items[fullKey]; !ok {
		return
	}
	delete(m.items, fullKey)
	for i, k := range m.order {
		if k == fullKey {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
