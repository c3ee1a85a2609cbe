// Package cache provides the pixel tile cache and a generic sharded cache
// used by the renderer and the text measurement path.
package cache

import "sync/atomic"

// TileKey addresses one cached tile: tile coordinates plus the scene content
// hash the pixels were rendered from. Content-addressing makes the key
// self-invalidating: when the scene changes, the hash changes, and every
// lookup for the new content misses without any explicit eviction signal.
type TileKey struct {
	X, Y int
	Hash uint64
}

// TileCache maps tile keys to rendered RGBA pixel bytes.
//
// Eviction is capacity-driven only and removes one arbitrary entry (map
// iteration order). There is no ordering guarantee on which entry goes;
// callers must not rely on FIFO or LRU behavior.
//
// TileCache is not safe for concurrent mutation; it is owned exclusively by
// the render context.
type TileCache struct {
	entries  map[TileKey][]byte
	maxTiles int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewTileCache creates a tile cache holding at most maxTiles entries.
// Non-positive capacities fall back to 256.
func NewTileCache(maxTiles int) *TileCache {
	if maxTiles <= 0 {
		maxTiles = 256
	}
	return &TileCache{
		entries:  make(map[TileKey][]byte),
		maxTiles: maxTiles,
	}
}

// Get returns the cached pixels for the exact key, if present. The returned
// slice is shared with the cache; callers must treat it as read-only.
func (c *TileCache) Get(x, y int, hash uint64) ([]byte, bool) {
	data, ok := c.entries[TileKey{X: x, Y: y, Hash: hash}]
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return data, ok
}

// Put stores pixels under the key, evicting one arbitrary existing entry
// first when the cache is at capacity and the key is new.
func (c *TileCache) Put(x, y int, hash uint64, data []byte) {
	key := TileKey{X: x, Y: y, Hash: hash}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxTiles {
		for victim := range c.entries {
			delete(c.entries, victim)
			c.evictions.Add(1)
			break
		}
	}
	c.entries[key] = data
}

// Clear drops all entries.
func (c *TileCache) Clear() {
	c.entries = make(map[TileKey][]byte)
}

// Len returns the number of cached tiles.
func (c *TileCache) Len() int { return len(c.entries) }

// Capacity returns the maximum number of cached tiles.
func (c *TileCache) Capacity() int { return c.maxTiles }

// Stats returns a snapshot of the cache counters.
func (c *TileCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Len:       len(c.entries),
		Capacity:  c.maxTiles,
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: c.evictions.Load(),
	}
}

// Stats holds cache counters for monitoring.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	HitRate   float64
	Evictions uint64
}
