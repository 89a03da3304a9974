package services

import (
	"context"
	"sync"
	"time"

	"github.com/fenilmodi00/market-pulse/models"
	"github.com/sirupsen/logrus"
)

// CacheEntry represents a cached item with expiration
type CacheEntry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// IsExpired checks if the cache entry has expired
func (ce *CacheEntry) IsExpired() bool {
	return time.Now().After(ce.ExpiresAt)
}

// CacheService is an in-memory TTL cache with a size cap and periodic cleanup.
type CacheService struct {
	cache    map[string]*CacheEntry
	mutex    sync.RWMutex
	maxSize  int
	stop     chan struct{}
	stopOnce sync.Once
}

// NewCacheServiceWithConfig creates a cache service and starts its cleanup loop
func NewCacheServiceWithConfig(maxSize int, cleanupInterval time.Duration) *CacheService {
	cs := &CacheService{
		cache:   make(map[string]*CacheEntry),
		maxSize: maxSize,
		stop:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go cs.cleanupExpired(cleanupInterval)
	}

	return cs
}

// Get retrieves a value from cache
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	entry, exists := cs.cache[key]
	if !exists || entry.IsExpired() {
		return nil, false
	}

	return entry.Data, true
}

// SetWithTTL stores a value in cache with custom TTL
func (cs *CacheService) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if _, exists := cs.cache[key]; !exists && len(cs.cache) >= cs.maxSize {
		cs.evictOldest()
	}

	cs.cache[key] = &CacheEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// evictOldest removes the entry closest to expiry
func (cs *CacheService) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range cs.cache {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(cs.cache, oldestKey)
	}
}

// Delete removes a value from cache
func (cs *CacheService) Delete(key string) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	delete(cs.cache, key)
}

// Clear removes all values from cache
func (cs *CacheService) Clear() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.cache = make(map[string]*CacheEntry)
}

// Size returns the number of items in cache
func (cs *CacheService) Size() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	return len(cs.cache)
}

// Close stops the cleanup loop
func (cs *CacheService) Close() {
	cs.stopOnce.Do(func() { close(cs.stop) })
}

// RemoveExpired drops expired entries and returns how many were removed
func (cs *CacheService) RemoveExpired() int {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	removed := 0
	for key, entry := range cs.cache {
		if entry.IsExpired() {
			delete(cs.cache, key)
			removed++
		}
	}
	return removed
}

func (cs *CacheService) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stop:
			return
		case <-ticker.C:
			if removed := cs.RemoveExpired(); removed > 0 {
				logrus.WithFields(logrus.Fields{
					"component": "CacheService",
					"removed":   removed,
				}).Debug("Removed expired cache entries")
			}
		}
	}
}

const moversCacheKey = "top_movers"

// CachedMoversFetcher wraps a MoversFetcher and caches successful results
type CachedMoversFetcher struct {
	fetcher MoversFetcher
	cache   *CacheService
	ttl     time.Duration
}

// NewCachedMoversFetcher creates a cached fetcher. A non-positive ttl bypasses the cache.
func NewCachedMoversFetcher(fetcher MoversFetcher, cache *CacheService, ttl time.Duration) *CachedMoversFetcher {
	return &CachedMoversFetcher{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
	}
}

// FetchTopMovers returns cached movers when fresh, otherwise fetches and caches them
func (cf *CachedMoversFetcher) FetchTopMovers(ctx context.Context, apiKey string) (*models.MoversResult, error) {
	if cf.ttl <= 0 {
		return cf.fetcher.FetchTopMovers(ctx, apiKey)
	}

	if cached, found := cf.cache.Get(moversCacheKey); found {
		if result, ok := cached.(*models.MoversResult); ok {
			return result, nil
		}
	}

	result, err := cf.fetcher.FetchTopMovers(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	cf.cache.SetWithTTL(moversCacheKey, result, cf.ttl)
	return result, nil
}

// Refresh fetches movers upstream and replaces the cached result only on success,
// so a rejected refresh keeps serving the last good movers
func (cf *CachedMoversFetcher) Refresh(ctx context.Context, apiKey string) (*models.MoversResult, error) {
	result, err := cf.fetcher.FetchTopMovers(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	if cf.ttl > 0 {
		cf.cache.SetWithTTL(moversCacheKey, result, cf.ttl)
	}
	return result, nil
}

// GetCacheStats returns cache statistics
func (cf *CachedMoversFetcher) GetCacheStats() map[string]interface{} {
	return map[string]interface{}{
		"size":        cf.cache.Size(),
		"type":        "in-memory",
		"ttl_seconds": cf.ttl.Seconds(),
	}
}
