package tiles

import (
	"container/list"
	"fmt"
	"image"
	"sync"

	"github.com/littleearth/osmmap/proj"
)

// MemoryCache holds decoded tile images under a byte budget with LRU
// eviction. It is safe for concurrent use; Source workers add tiles while
// the viewport peeks.
type MemoryCache struct {
	maxBytes  int64 // 0 means unlimited
	usedBytes int64
	tiles     map[proj.Tile]*cacheEntry
	lru       *list.List // most recent at front
	mu        sync.Mutex
}

type cacheEntry struct {
	tile    proj.Tile
	img     image.Image
	size    int64
	element *list.Element
}

// NewMemoryCache returns a cache limited to maxBytes of estimated pixel
// data. Pass 0 for no limit.
func NewMemoryCache(maxBytes int64) *MemoryCache {
	return &MemoryCache{
		maxBytes: maxBytes,
		tiles:    make(map[proj.Tile]*cacheEntry),
		lru:      list.New(),
	}
}

// Peek returns the cached image for a tile without loading anything.
func (c *MemoryCache) Peek(tile proj.Tile) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.tiles[tile]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(entry.element)
	return entry.img, true
}

// Add stores a tile image, evicting least-recently-used tiles until the
// budget holds. An image larger than the whole budget is rejected.
func (c *MemoryCache) Add(tile proj.Tile, img image.Image) error {
	size := estimateImageBytes(img)
	if c.maxBytes > 0 && size > c.maxBytes {
		return fmt.Errorf("tile %v too large for cache (%d bytes > %d bytes max)",
			tile, size, c.maxBytes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.tiles[tile]; ok {
		c.usedBytes += size - entry.size
		entry.img = img
		entry.size = size
		c.lru.MoveToFront(entry.element)
		return nil
	}

	if c.maxBytes > 0 {
		for c.usedBytes+size > c.maxBytes && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{tile: tile, img: img, size: size}
	entry.element = c.lru.PushFront(entry)
	c.tiles[tile] = entry
	c.usedBytes += size
	return nil
}

// evictLRU removes the least recently used tile. Caller holds c.mu.
func (c *MemoryCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.tiles, entry.tile)
	c.usedBytes -= entry.size
}

// Remove drops one tile from the cache.
func (c *MemoryCache) Remove(tile proj.Tile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.tiles[tile]; ok {
		c.lru.Remove(entry.element)
		delete(c.tiles, tile)
		c.usedBytes -= entry.size
	}
}

// Clear empties the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tiles = make(map[proj.Tile]*cacheEntry)
	c.lru.Init()
	c.usedBytes = 0
}

// Stats returns the current cache occupancy.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		TileCount: len(c.tiles),
		UsedBytes: c.usedBytes,
		MaxBytes:  c.maxBytes,
	}
}

// CacheStats holds cache occupancy numbers.
type CacheStats struct {
	TileCount int
	UsedBytes int64
	MaxBytes  int64
}

// estimateImageBytes approximates the memory held by a decoded image:
// 4 bytes per pixel plus a little fixed overhead.
func estimateImageBytes(img image.Image) int64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return int64(b.Dx())*int64(b.Dy())*4 + 256
}
