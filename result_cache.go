package countries

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/sync/singleflight"
)

// CacheKey identifies a memoized call. Keys with structurally equal
// arguments are equal, whatever the identity of the argument containers.
type CacheKey struct {
	Operation string
	Args      []any
	// Hydrated separates hydrated results from raw ones.
	Hydrated bool
}

var keyEncoding = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("countries: cbor encoding mode: %v", err))
	}
	return mode
}()

// Identifier returns the canonical encoding of the key. Maps are encoded with
// sorted keys, so argument order inside a map never matters.
func (k CacheKey) Identifier() (string, error) {
	args := k.Args
	if args == nil {
		args = []any{}
	}
	raw, err := keyEncoding.Marshal([]any{k.Operation, args, k.Hydrated})
	if err != nil {
		return "", fmt.Errorf("%w: cache key for %q: %v", ErrInvalidArgument, k.Operation, err)
	}
	return string(raw), nil
}

// ResultCache memoizes operation results for the lifetime of the process.
type ResultCache interface {
	// GetOrCompute returns the value stored under key, running producer only
	// when nothing is stored yet. Producer errors are returned, not stored.
	GetOrCompute(key CacheKey, producer func() (any, error)) (any, error)
}

// MemoCache is an unbounded ResultCache. Concurrent callers asking for the
// same missing key share a single producer run.
type MemoCache struct {
	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
}

// NewResultCache returns an empty MemoCache.
func NewResultCache() *MemoCache {
	return &MemoCache{entries: make(map[string]any)}
}

func (c *MemoCache) GetOrCompute(key CacheKey, producer func() (any, error)) (any, error) {
	id, err := key.Identifier()
	if err != nil {
		return nil, err
	}
	if value, ok := c.lookup(id); ok {
		return value, nil
	}

	value, err, _ := c.group.Do(id, func() (any, error) {
		if value, ok := c.lookup(id); ok {
			return value, nil
		}
		value, err := producer()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[id] = value
		c.mu.Unlock()
		return value, nil
	})
	return value, err
}

func (c *MemoCache) lookup(id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[id]
	return value, ok
}

// Len returns the number of stored results.
func (c *MemoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
