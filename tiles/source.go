package tiles

import (
	"image"
	"sync"

	"github.com/littleearth/osmmap/proj"
)

// SourceConfig sizes a Source. Zero values select the defaults.
type SourceConfig struct {
	// Workers is the number of concurrent fetch goroutines. Default 4.
	Workers int
	// CacheBytes is the decoded-tile memory budget. Default 64 MiB.
	CacheBytes int64
	// QueueSize bounds the pending fetch queue. Requests beyond it are
	// dropped and can simply be issued again next frame. Default 128.
	QueueSize int
}

func (c SourceConfig) withDefaults() SourceConfig {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.CacheBytes <= 0 {
		c.CacheBytes = 64 << 20
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 128
	}
	return c
}

// Source decouples a single-threaded viewport from blocking tile fetches.
// The viewport Peeks for instantly available tiles while drawing and
// Requests the missing ones; workers fetch in the background and report
// finished tiles on Ready. The owner drains Ready on its own thread and
// refreshes the affected tiles.
type Source struct {
	provider Provider
	cache    *MemoryCache

	jobs  chan proj.Tile
	ready chan proj.Tile

	mu       sync.Mutex
	inflight map[proj.Tile]bool
	closed   bool

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSource starts a source fetching through provider.
func NewSource(provider Provider, cfg SourceConfig) *Source {
	cfg = cfg.withDefaults()
	s := &Source{
		provider: provider,
		cache:    NewMemoryCache(cfg.CacheBytes),
		jobs:     make(chan proj.Tile, cfg.QueueSize),
		ready:    make(chan proj.Tile, cfg.QueueSize*2),
		inflight: make(map[proj.Tile]bool),
	}
	s.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go s.worker()
	}
	return s
}

// Peek returns the tile image if it is already decoded in memory. It never
// blocks and never triggers a fetch.
func (s *Source) Peek(tile proj.Tile) (image.Image, bool) {
	return s.cache.Peek(tile)
}

// Request schedules a background fetch for the tile unless it is cached,
// already being fetched, or the queue is full. A dropped request is not an
// error; the caller asks again on the next repaint.
func (s *Source) Request(tile proj.Tile) {
	if _, ok := s.cache.Peek(tile); ok {
		return
	}

	s.mu.Lock()
	if s.closed || s.inflight[tile] {
		s.mu.Unlock()
		return
	}
	s.inflight[tile] = true
	s.mu.Unlock()

	select {
	case s.jobs <- tile:
	default:
		s.mu.Lock()
		delete(s.inflight, tile)
		s.mu.Unlock()
	}
}

// Ready reports tiles that have arrived in the cache since the last drain.
func (s *Source) Ready() <-chan proj.Tile {
	return s.ready
}

// Drain empties the ready channel without blocking, calling fn for each
// arrived tile, and returns how many there were.
func (s *Source) Drain(fn func(proj.Tile)) int {
	n := 0
	for {
		select {
		case tile := <-s.ready:
			if fn != nil {
				fn(tile)
			}
			n++
		default:
			return n
		}
	}
}

// Stats returns the memory cache occupancy.
func (s *Source) Stats() CacheStats {
	return s.cache.Stats()
}

// Close stops the workers. Pending queue entries are finished first;
// Request becomes a no-op.
func (s *Source) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.jobs)
		s.wg.Wait()
	})
}

func (s *Source) worker() {
	defer s.wg.Done()
	for tile := range s.jobs {
		img, err := s.provider.GetTile(tile)
		if err != nil {
			logger().Warn("tile fetch failed", "tile", tile.String(), "error", err)
		} else {
			if err := s.cache.Add(tile, img); err != nil {
				logger().Warn("tile cache add failed", "tile", tile.String(), "error", err)
			}
			select {
			case s.ready <- tile:
			default:
				// Ready queue full; the tile is cached, a later
				// repaint will pick it up.
			}
		}
		s.mu.Lock()
		delete(s.inflight, tile)
		s.mu.Unlock()
	}
}
