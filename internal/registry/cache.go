package registry

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// expiryCache is a key-value store with per-entry TTLs used to track session
// liveness. Entries are never removed by a background janitor; expired keys
// simply stop resolving, and Sweep deletes them from the owning goroutine so
// all registry mutation stays single-threaded.
type expiryCache struct {
	cacheInstance *gocache.Cache
}

func newExpiryCache() *expiryCache {
	return &expiryCache{cacheInstance: gocache.New(gocache.NoExpiration, 0)}
}

// Put sets a key/value pair in the cache with a duration. Passing 0 for ttl
// will cause the default expiration to be used and -1 will not set a ttl.
func (c *expiryCache) Put(key string, value interface{}, ttl time.Duration) {
	c.cacheInstance.Set(key, value, ttl)
}

// Get fetches a value from the cache, returning the value as well as whether
// or not the value was found (semantics similar to map). Expired entries are
// not found.
func (c *expiryCache) Get(key string) (interface{}, bool) {
	return c.cacheInstance.Get(key)
}

// Delete removes a key from the cache if it is present.
func (c *expiryCache) Delete(key string) {
	c.cacheInstance.Delete(key)
}
