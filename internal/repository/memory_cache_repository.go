package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	goCache "github.com/patrickmn/go-cache"

	appErrors "github.com/noah-isme/unitrack-api/pkg/errors"
)

// MemoryCacheRepository is the in-process counterpart of CacheRepository.
// Values are stored JSON encoded so callers never share mutable state.
type MemoryCacheRepository struct {
	cache *goCache.Cache
}

// NewMemoryCacheRepository wraps a go-cache instance.
func NewMemoryCacheRepository(cache *goCache.Cache) *MemoryCacheRepository {
	return &MemoryCacheRepository{cache: cache}
}

// Get unmarshals the cached value into dest or returns ErrCacheMiss.
func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := r.cache.Get(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	payload, ok := raw.([]byte)
	if !ok {
		r.cache.Delete(key)
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores value for ttl.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	r.cache.Set(key, payload, ttl)
	return nil
}

// DeleteByPattern removes keys matching a glob pattern.
func (r *MemoryCacheRepository) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range r.cache.Items() {
		ok, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("match pattern %s: %w", pattern, err)
		}
		if ok {
			r.cache.Delete(key)
		}
	}
	return nil
}
