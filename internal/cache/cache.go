package cache

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache interface defines cache operations
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// CacheEntry represents a cached piece of generated content
type CacheEntry struct {
	Key         string    `json:"key"`
	Template    string    `json:"template"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	AccessedAt  time.Time `json:"accessed_at"`
	AccessCount int       `json:"access_count"`
}

// Stats represents cache statistics
type Stats struct {
	TotalEntries   int           `json:"total_entries"`
	HitCount       int64         `json:"hit_count"`
	MissCount      int64         `json:"miss_count"`
	HitRate        float64       `json:"hit_rate"`
	MemoryUsage    int64         `json:"memory_usage_bytes"`
	OldestEntry    time.Time     `json:"oldest_entry"`
	AverageAge     time.Duration `json:"average_age"`
	ExpiredEntries int           `json:"expired_entries"`
}

// Common cache errors
var (
	ErrCacheMiss = errors.New("cache miss")
)

// cleanupInterval is how often expired entries are swept
var cleanupInterval = 10 * time.Minute

// MemoryCache implements in-memory cache
type MemoryCache struct {
	entries     map[string]*CacheEntry
	mutex       sync.RWMutex
	duration    time.Duration
	hitCount    int64
	missCount   int64
	now         func() time.Time
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(duration time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]*CacheEntry),
		duration:    duration,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	// Start cleanup goroutine
	go cache.cleanup()

	return cache
}

// Get retrieves an entry from cache
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.missCount++
		return nil, ErrCacheMiss
	}

	now := c.now()
	if now.After(entry.ExpiresAt) {
		delete(c.entries, key)
		c.missCount++
		return nil, ErrCacheMiss
	}

	entry.AccessedAt = now
	entry.AccessCount++
	c.hitCount++

	copied := *entry
	return &copied, nil
}

// Set stores an entry in cache
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	stored := *entry
	stored.Key = key
	stored.CreatedAt = now
	stored.ExpiresAt = now.Add(c.duration)
	stored.AccessedAt = now
	stored.AccessCount = 0

	c.entries[key] = &stored
	return nil
}

// Delete removes an entry from cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
	return nil
}

// Exists checks if an unexpired entry exists in cache
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return false, nil
	}
	return !c.now().After(entry.ExpiresAt), nil
}

// Clear removes all entries from cache
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*CacheEntry)
	c.hitCount = 0
	c.missCount = 0
	return nil
}

// GetStats returns cache statistics
func (c *MemoryCache) GetStats(ctx context.Context) (*Stats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := &Stats{
		TotalEntries: len(c.entries),
		HitCount:     c.hitCount,
		MissCount:    c.missCount,
	}

	if c.hitCount+c.missCount > 0 {
		stats.HitRate = float64(c.hitCount) / float64(c.hitCount+c.missCount)
	}

	var totalAge time.Duration
	now := c.now()

	for _, entry := range c.entries {
		// Rough estimate: content dominates the entry size
		stats.MemoryUsage += int64(len(entry.Key) + len(entry.Title) + len(entry.Template) + len(entry.Content))

		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		totalAge += now.Sub(entry.CreatedAt)

		if now.After(entry.ExpiresAt) {
			stats.ExpiredEntries++
		}
	}

	if len(c.entries) > 0 {
		stats.AverageAge = totalAge / time.Duration(len(c.entries))
	}

	return stats, nil
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	return nil
}

// cleanup removes expired entries periodically
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

// cleanupExpired removes expired entries
func (c *MemoryCache) cleanupExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}
}

// GenerateKey generates a cache key from the fields that shape generated content
func GenerateKey(template, title, language string, points []string) string {
	identifier := strings.Join([]string{
		template,
		title,
		language,
		strings.Join(points, "\x1f"),
	}, "\x1e")

	// Create MD5 hash for consistent key length
	hash := md5.Sum([]byte(identifier))
	return fmt.Sprintf("content:%x", hash)
}
