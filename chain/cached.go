package chain

import (
	"context"
	"time"

	"github.com/OxBryte/onchain-linktree/config"
	"github.com/OxBryte/onchain-linktree/model"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

const allUsersCacheKey = "chain:all_users"

// CachedReader decorates a Reader with a Ristretto in-process cache
// for the hot read paths: per-address user details and the full user
// list. "My" reads and existence checks pass through uncached so the
// owner always sees fresh state after a write.
type CachedReader struct {
	inner Reader
	cache *ristretto.Cache
	ttl   time.Duration
}

var _ Reader = (*CachedReader)(nil)

// NewCachedReader wraps inner with a detail cache sized per cfg.
func NewCachedReader(inner Reader, cfg config.CacheConfig) (*CachedReader, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(cfg.CounterSize),
		MaxCost:     int64(cfg.MaxSizeMB) * 1024 * 1024,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("max_size_mb", cfg.MaxSizeMB).
		Int("ttl_seconds", cfg.TTLSeconds).
		Msg("Contract read cache initialized")

	return &CachedReader{
		inner: inner,
		cache: cache,
		ttl:   time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

func (c *CachedReader) GetAllUsers(ctx context.Context) ([]string, error) {
	if cached, found := c.cache.Get(allUsersCacheKey); found {
		if addresses, ok := cached.([]string); ok {
			return addresses, nil
		}
	}

	addresses, err := c.inner.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(allUsersCacheKey, addresses, int64(len(addresses)+1), c.ttl)
	return addresses, nil
}

func (c *CachedReader) GetUserDetails(ctx context.Context, address string) (model.User, error) {
	key := "chain:details:" + address
	if cached, found := c.cache.Get(key); found {
		if user, ok := cached.(model.User); ok {
			return user, nil
		}
	}

	user, err := c.inner.GetUserDetails(ctx, address)
	if err != nil {
		return model.User{}, err
	}
	c.cache.SetWithTTL(key, user, 1, c.ttl)
	return user, nil
}

func (c *CachedReader) GetMyDetails(ctx context.Context, caller string) (model.User, error) {
	return c.inner.GetMyDetails(ctx, caller)
}

func (c *CachedReader) GetUserDataArray(ctx context.Context, address string) ([]model.Link, error) {
	return c.inner.GetUserDataArray(ctx, address)
}

func (c *CachedReader) GetMyDataArray(ctx context.Context, caller string) ([]model.Link, error) {
	return c.inner.GetMyDataArray(ctx, caller)
}

func (c *CachedReader) UserExists(ctx context.Context, address string) (bool, error) {
	return c.inner.UserExists(ctx, address)
}

// InvalidateUsers drops the cached user list, called after a
// registration so the new profile shows up in discovery immediately.
func (c *CachedReader) InvalidateUsers() {
	c.cache.Del(allUsersCacheKey)
}

// Close cleanly shuts down the cache.
func (c *CachedReader) Close() {
	c.cache.Close()
	log.Info().Msg("Contract read cache closed")
}

// MetricsSnapshot is a point-in-time view of cache performance.
type MetricsSnapshot struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	KeysAdded   uint64  `json:"keys_added"`
	KeysEvicted uint64  `json:"keys_evicted"`
	HitRatio    float64 `json:"hit_ratio"`
	TTLSeconds  int     `json:"ttl_seconds"`
}

// Metrics returns current cache metrics.
func (c *CachedReader) Metrics() MetricsSnapshot {
	m := c.cache.Metrics
	if m == nil {
		return MetricsSnapshot{TTLSeconds: int(c.ttl.Seconds())}
	}

	hits, misses := m.Hits(), m.Misses()
	ratio := 0.0
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}

	return MetricsSnapshot{
		Hits:        hits,
		Misses:      misses,
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
		HitRatio:    ratio,
		TTLSeconds:  int(c.ttl.Seconds()),
	}
}
