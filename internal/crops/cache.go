package crops

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Goopi7/crop-connect/internal/metrics"
)

const enumerationPrefix = "findall:"

// CatalogCache holds crop enumerations keyed by category with a fixed TTL
type CatalogCache struct {
	data    map[string]*cacheEntry
	gen     uint64
	ttl     time.Duration
	mu      sync.RWMutex
	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once

	hits   atomic.Int64
	misses atomic.Int64
}

// cacheEntry represents a cache entry with expiration
type cacheEntry struct {
	records    []CropRecord
	expiration time.Time
}

// CacheStats reports catalogue cache efficiency
type CacheStats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewCatalogCache creates a cache and starts its cleanup goroutine
func NewCatalogCache(ttl time.Duration) *CatalogCache {
	cache := &CatalogCache{
		data:    make(map[string]*cacheEntry),
		ttl:     ttl,
		cleanup: time.NewTicker(time.Minute),
		done:    make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// Get retrieves an unexpired enumeration from the cache
func (c *CatalogCache) Get(key string) ([]CropRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || time.Now().After(entry.expiration) {
		return nil, false
	}
	return entry.records, true
}

// Set stores an enumeration in the cache
func (c *CatalogCache) Set(key string, records []CropRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		records:    records,
		expiration: time.Now().Add(c.ttl),
	}
}

// Generation returns a counter that DeleteByPrefix advances. A load that saw
// an older generation must not be stored.
func (c *CatalogCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.gen
}

// SetIfCurrent stores an enumeration unless the cache was invalidated since gen
func (c *CatalogCache) SetIfCurrent(key string, records []CropRecord, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	c.data[key] = &cacheEntry{
		records:    records,
		expiration: time.Now().Add(c.ttl),
	}
	return true
}

// DeleteByPrefix removes all entries with keys starting with the given prefix
func (c *CatalogCache) DeleteByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.deletePrefixLocked(prefix)
}

func (c *CatalogCache) deletePrefixLocked(prefix string) {
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
}

// replace drops every key under prefix and stores records at prefix, unless
// the cache was invalidated since gen
func (c *CatalogCache) replace(prefix string, records []CropRecord, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return
	}
	c.deletePrefixLocked(prefix)
	c.data[prefix] = &cacheEntry{
		records:    records,
		expiration: time.Now().Add(c.ttl),
	}
}

// Size returns the number of entries in the cache
func (c *CatalogCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}

// GetOrLoad returns the cached enumeration for key or loads and stores it
func (c *CatalogCache) GetOrLoad(key string, load func() ([]CropRecord, error)) ([]CropRecord, error) {
	if records, ok := c.Get(key); ok {
		c.hits.Add(1)
		metrics.RecordCatalogCache(true)
		return records, nil
	}
	c.misses.Add(1)
	metrics.RecordCatalogCache(false)

	gen := c.Generation()
	records, err := load()
	if err != nil {
		return nil, err
	}
	c.SetIfCurrent(key, records, gen)
	return records, nil
}

// Stats returns cache statistics
func (c *CatalogCache) Stats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	stats := CacheStats{Size: c.Size(), Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

// Stop stops the cleanup goroutine
func (c *CatalogCache) Stop() {
	c.once.Do(func() {
		c.cleanup.Stop()
		close(c.done)
	})
}

func (c *CatalogCache) cleanupLoop() {
	for {
		select {
		case <-c.cleanup.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *CatalogCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.After(entry.expiration) {
			delete(c.data, key)
		}
	}
}

// CachedRepository wraps a Repository and caches FindAll results.
// Any write through it invalidates every cached enumeration.
type CachedRepository struct {
	Repository
	cache *CatalogCache
}

// NewCachedRepository wraps repo with a catalogue cache. A zero TTL returns repo unwrapped.
func NewCachedRepository(repo Repository, ttl time.Duration) Repository {
	if ttl <= 0 {
		return repo
	}
	return &CachedRepository{Repository: repo, cache: NewCatalogCache(ttl)}
}

func (r *CachedRepository) FindAll(ctx context.Context, category string) ([]CropRecord, error) {
	return r.cache.GetOrLoad(enumerationPrefix+category, func() ([]CropRecord, error) {
		return r.Repository.FindAll(ctx, category)
	})
}

// Refresh reloads the full enumeration and drops every category-scoped entry.
// A write that lands during the reload wins: the reloaded data is discarded.
func (r *CachedRepository) Refresh(ctx context.Context) (int, error) {
	gen := r.cache.Generation()
	records, err := r.Repository.FindAll(ctx, "")
	if err != nil {
		return 0, err
	}
	r.cache.replace(enumerationPrefix, records, gen)
	return len(records), nil
}

func (r *CachedRepository) Create(ctx context.Context, record *CropRecord) error {
	defer r.invalidate()
	return r.Repository.Create(ctx, record)
}

func (r *CachedRepository) Update(ctx context.Context, record *CropRecord) error {
	defer r.invalidate()
	return r.Repository.Update(ctx, record)
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	defer r.invalidate()
	return r.Repository.Delete(ctx, id)
}

func (r *CachedRepository) Upsert(ctx context.Context, records []CropRecord) (int, error) {
	defer r.invalidate()
	return r.Repository.Upsert(ctx, records)
}

// Stats returns statistics of the underlying cache
func (r *CachedRepository) Stats() CacheStats {
	return r.cache.Stats()
}

// Close stops the cache cleanup goroutine
func (r *CachedRepository) Close() {
	r.cache.Stop()
}

func (r *CachedRepository) invalidate() {
	r.cache.DeleteByPrefix(enumerationPrefix)
}
