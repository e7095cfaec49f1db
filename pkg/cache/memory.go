package cache

import (
	"time"

	goCache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval is how often expired in-process entries are evicted.
const DefaultCleanupInterval = 5 * time.Minute

// NewMemory returns an in-process TTL cache.
func NewMemory(defaultTTL time.Duration) *goCache.Cache {
	if defaultTTL <= 0 {
		defaultTTL = goCache.NoExpiration
	}
	return goCache.New(defaultTTL, DefaultCleanupInterval)
}
