package session

import (
	"sync"
	"time"
)

// Purger is any client-local cache that must be wiped when the session
// is destroyed. CredentialSync purges every registered Purger on logout
// so no ephemeral storage outlives the account.
type Purger interface {
	Purge()
}

// MemCache is a small in-memory TTL cache for backend responses fetched
// during a session. It is never persisted.
type MemCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	value   any
	expires time.Time
}

// NewMemCache returns an empty cache.
func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]memEntry)}
}

// Get returns the cached value for key, if present and unexpired.
func (c *MemCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the given TTL.
func (c *MemCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memEntry{value: value, expires: time.Now().Add(ttl)}
}

// Purge drops every entry.
func (c *MemCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memEntry)
}
