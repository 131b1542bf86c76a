package utils

import (
	"context"
	"encoding/json"
	"time"
)

// Cache-aside helpers for slow-changing reads: the yoga and therapist
// catalogs and per-day AI insights. A redis outage only costs the cache,
// never the request.

const (
	defaultCacheTTL = time.Hour
	cacheOpTimeout  = 2 * time.Second
)

func cacheCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cacheOpTimeout)
}

// CacheGetBytes returns the cached value for a key, or false on miss or
// when redis is unavailable.
func CacheGetBytes(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := cacheCtx()
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		Sugar.Debugw("cache miss", "key", key, "error", err)
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores raw bytes under a key. Non-positive ttl means the
// one hour default.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := cacheCtx()
	defer cancel()
	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil {
		Sugar.Warnw("cache set failed", "key", key, "error", err)
	}
}

// CacheSetJSON marshals v and stores the JSON bytes. An unmarshalable value
// is skipped; the next read simply misses.
func CacheSetJSON(key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSetBytes(key, b, ttl)
}

// InvalidateByPrefix deletes every key under a prefix. Used when a catalog
// write (rating update, booking change) makes cached reads stale.
func InvalidateByPrefix(prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var cursor uint64
	// Bounded rounds: a runaway SCAN must not stall a request goroutine.
	for round := 0; round < 10; round++ {
		keys, next, err := rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			Sugar.Warnw("cache invalidation scan failed", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			pipe := rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
