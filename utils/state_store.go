package utils

import (
	"context"
	"sync"
	"time"
)

// Single-use state tokens for the Google login round trip. Redis keeps them
// shared across instances; the in-memory map covers dev setups without
// redis, where a single instance is assumed.

const (
	oauthStatePrefix = "login:state:"
	stateDefaultTTL  = 10 * time.Minute
)

type pendingState struct {
	expiresAt time.Time
}

var (
	pendingStates   = map[string]pendingState{}
	pendingStatesMu sync.Mutex
)

// SaveState registers a state token for a pending OAuth redirect.
func SaveState(state string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = stateDefaultTTL
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rc.Set(ctx, oauthStatePrefix+state, "1", ttl).Err()
		return
	}
	pendingStatesMu.Lock()
	pendingStates[state] = pendingState{expiresAt: time.Now().Add(ttl)}
	pendingStatesMu.Unlock()
}

// ConsumeState reports whether the state token is valid and removes it, so a
// replayed callback fails.
func ConsumeState(state string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := oauthStatePrefix + state
		if v, err := rc.GetDel(ctx, key).Result(); err == nil {
			return v != ""
		}
		// Older servers lack GETDEL; an atomic get+del script covers them.
		script := `local v=redis.call('GET', KEYS[1]); if v then redis.call('DEL', KEYS[1]); end; return v`
		if res, err := rc.Eval(ctx, script, []string{key}).Result(); err == nil {
			return res != nil
		}
		return false
	}

	pendingStatesMu.Lock()
	entry, ok := pendingStates[state]
	if ok {
		delete(pendingStates, state)
	}
	pendingStatesMu.Unlock()
	return ok && time.Now().Before(entry.expiresAt)
}
