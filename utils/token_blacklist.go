package utils

import (
	"context"
	"sync"
	"time"
)

// Logout revocation list. A blacklisted token stays listed until its own
// exp claim passes, after which the regular JWT validation rejects it
// anyway. Redis-backed when available so logout holds across instances.

const revokedTokenPrefix = "session:revoked:"

type revokedToken struct {
	expiresAt time.Time
}

var (
	revokedTokens   = map[string]revokedToken{}
	revokedTokensMu sync.RWMutex
)

// BlacklistToken revokes a token until its natural expiration.
func BlacklistToken(token string, expiresAt time.Time) {
	if rc := GetRedis(); rc != nil {
		ttl := time.Until(expiresAt)
		if ttl <= 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rc.Set(ctx, revokedTokenPrefix+token, "1", ttl).Err()
		return
	}
	revokedTokensMu.Lock()
	revokedTokens[token] = revokedToken{expiresAt: expiresAt}
	revokedTokensMu.Unlock()
}

// IsTokenBlacklisted reports whether a token was revoked by logout. A redis
// error fails open: locking every user out is worse than honoring a
// logged-out token for its remaining lifetime.
func IsTokenBlacklisted(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, revokedTokenPrefix+token).Result()
		if err == nil {
			return n > 0
		}
		Sugar.Warnw("blacklist lookup failed", "error", err)
		return false
	}

	revokedTokensMu.RLock()
	entry, ok := revokedTokens[token]
	revokedTokensMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(entry.expiresAt) {
		revokedTokensMu.Lock()
		delete(revokedTokens, token)
		revokedTokensMu.Unlock()
		return false
	}
	return true
}
