package countries

import "github.com/jellydator/ttlcache/v3"

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type programCache struct {
	items *ttlcache.Cache[string, any]
}

// NewProgramCache returns a ProgramCache holding at most capacity programs,
// evicting the least recently used. Zero means unbounded. Programs never
// expire.
func NewProgramCache(capacity uint64) ProgramCache {
	opts := []ttlcache.Option[string, any]{
		ttlcache.WithTTL[string, any](ttlcache.NoTTL),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, any](capacity))
	}
	return &programCache{items: ttlcache.New(opts...)}
}

func (c *programCache) Get(key string) (any, bool) {
	item := c.items.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (c *programCache) Set(key string, value any) {
	c.items.Set(key, value, ttlcache.DefaultTTL)
}
