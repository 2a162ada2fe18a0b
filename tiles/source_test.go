package tiles

import (
	"errors"
	"testing"
	"time"

	"github.com/littleearth/osmmap/proj"
)

func waitReady(t *testing.T, s *Source) proj.Tile {
	t.Helper()
	select {
	case tile := <-s.Ready():
		return tile
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a ready tile")
		return proj.Tile{}
	}
}

func waitIdle(t *testing.T, s *Source) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		s.mu.Lock()
		n := len(s.inflight)
		s.mu.Unlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for fetches to settle")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSourceRequestDeliversTile(t *testing.T) {
	provider := newStubProvider()
	src := NewSource(provider, SourceConfig{Workers: 2})
	defer src.Close()

	tile := proj.Tile{Zoom: 6, X: 33, Y: 21}
	if _, ok := src.Peek(tile); ok {
		t.Fatal("fresh source reported a cached tile")
	}

	src.Request(tile)
	got := waitReady(t, src)
	if got != tile {
		t.Fatalf("ready tile = %v; want %v", got, tile)
	}

	if _, ok := src.Peek(tile); !ok {
		t.Fatal("ready tile not peekable")
	}
	if n := provider.callCount(tile); n != 1 {
		t.Errorf("provider called %d times; want 1", n)
	}
}

func TestSourceDeduplicatesInflight(t *testing.T) {
	provider := newStubProvider()
	provider.gate = make(chan struct{})
	src := NewSource(provider, SourceConfig{Workers: 2})
	defer src.Close()

	tile := proj.Tile{Zoom: 5, X: 1, Y: 1}
	src.Request(tile)
	src.Request(tile)
	src.Request(tile)

	close(provider.gate)
	waitReady(t, src)
	waitIdle(t, src)

	if n := provider.callCount(tile); n != 1 {
		t.Errorf("provider called %d times for one tile; want 1", n)
	}
}

func TestSourceCachedTileNotRefetched(t *testing.T) {
	provider := newStubProvider()
	src := NewSource(provider, SourceConfig{})
	defer src.Close()

	tile := proj.Tile{Zoom: 2, X: 1, Y: 0}
	src.Request(tile)
	waitReady(t, src)

	src.Request(tile)
	waitIdle(t, src)

	if n := provider.callCount(tile); n != 1 {
		t.Errorf("provider called %d times; want 1", n)
	}
}

func TestSourceFetchErrorAllowsRetry(t *testing.T) {
	provider := newStubProvider()
	provider.err = errors.New("server unavailable")
	src := NewSource(provider, SourceConfig{})
	defer src.Close()

	tile := proj.Tile{Zoom: 4, X: 7, Y: 3}
	src.Request(tile)
	waitIdle(t, src)

	if _, ok := src.Peek(tile); ok {
		t.Fatal("failed tile ended up in the cache")
	}

	// The failure cleared the in-flight slot, so the tile can be asked
	// for again.
	provider.err = nil
	src.Request(tile)
	got := waitReady(t, src)
	if got != tile {
		t.Fatalf("ready tile = %v; want %v", got, tile)
	}
	if n := provider.callCount(tile); n != 2 {
		t.Errorf("provider called %d times; want 2", n)
	}
}

func TestSourceDrain(t *testing.T) {
	provider := newStubProvider()
	src := NewSource(provider, SourceConfig{Workers: 4})
	defer src.Close()

	requested := []proj.Tile{
		{Zoom: 3, X: 0, Y: 0},
		{Zoom: 3, X: 1, Y: 0},
		{Zoom: 3, X: 2, Y: 0},
	}
	for _, tile := range requested {
		src.Request(tile)
	}
	waitIdle(t, src)

	seen := make(map[proj.Tile]bool)
	total := 0
	deadline := time.Now().Add(5 * time.Second)
	for total < len(requested) {
		if time.Now().After(deadline) {
			t.Fatalf("drained %d tiles; want %d", total, len(requested))
		}
		total += src.Drain(func(tile proj.Tile) { seen[tile] = true })
		time.Sleep(time.Millisecond)
	}

	for _, tile := range requested {
		if !seen[tile] {
			t.Errorf("tile %v never reported ready", tile)
		}
	}

	if src.Drain(nil) != 0 {
		t.Error("drained channel reported more tiles")
	}
}

func TestSourceCloseIsIdempotent(t *testing.T) {
	src := NewSource(newStubProvider(), SourceConfig{})
	src.Close()
	src.Close()

	// Request after close must be a quiet no-op.
	src.Request(proj.Tile{Zoom: 1, X: 0, Y: 0})
}
