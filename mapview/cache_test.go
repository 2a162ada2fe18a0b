package mapview

import (
	"image"
	"testing"

	"github.com/gogpu/gg"

	"github.com/littleearth/osmmap/proj"
)

// passTile is an OnDrawTile callback that claims every tile so tests can
// count paints without rasterizing placeholders.
func passTile(counter *int) func(*gg.Context, proj.Tile, image.Point) bool {
	return func(*gg.Context, proj.Tile, image.Point) bool {
		if counter != nil {
			*counter++
		}
		return true
	}
}

func TestCacheSizing(t *testing.T) {
	cases := []struct {
		name         string
		cfg          Config
		wantW, wantH int
	}{
		{
			name:  "default minimum wins",
			cfg:   Config{Width: 600, Height: 400, Zoom: 10},
			wantW: 2048,
			wantH: 2048,
		},
		{
			name:  "view plus margin wins",
			cfg:   Config{Width: 600, Height: 400, Zoom: 10, CacheSize: 256},
			wantW: 1792,
			wantH: 1536,
		},
		{
			name:  "clamped to map size",
			cfg:   Config{Width: 600, Height: 400, Zoom: 1},
			wantW: 512,
			wantH: 512,
		},
		{
			name:  "large viewport",
			cfg:   Config{Width: 2000, Height: 1200, Zoom: 10},
			wantW: 3072,
			wantH: 2304,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := New(tc.cfg)
			v.OnDrawTile = passTile(nil)
			v.Invalidate()
			v.Frame()
			if w, h := v.cache.Width(), v.cache.Height(); w != tc.wantW || h != tc.wantH {
				t.Fatalf("cache = %dx%d, want %dx%d", w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestCacheGrowsOnViewResize(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 10})
	v.OnDrawTile = passTile(nil)
	if got := v.cache.Width(); got != 2048 {
		t.Fatalf("initial cache width = %d, want 2048", got)
	}

	v.SetSize(2000, 1200)
	v.Frame()
	if w, h := v.cache.Width(), v.cache.Height(); w != 3072 || h != 2304 {
		t.Fatalf("cache after resize = %dx%d, want 3072x2304", w, h)
	}
	if got := v.frame.Width(); got != 2000 {
		t.Fatalf("frame width = %d, want 2000", got)
	}
}

func TestRepositionSymmetricMargin(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 10})
	v.OnDrawTile = passTile(nil)

	v.ScrollTo(image.Pt(100000, 100000))
	v.Frame()

	// Aligned view spans 99840..100608 on both axes, leaving 1280px of
	// spare cache per axis; half of that floored to a tile is 512.
	want := image.Rect(99328, 99328, 101376, 101376)
	if v.cacheRect != want {
		t.Fatalf("cacheRect = %v, want %v", v.cacheRect, want)
	}
}

func TestRepositionHonorsMarginLimit(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 10, CacheSize: 4096, MarginLimit: 2})
	v.OnDrawTile = passTile(nil)

	v.ScrollTo(image.Pt(100000, 100000))
	v.Frame()

	// Spare cache would allow a margin of well over two tiles, but the
	// limit caps it at 512px on the leading sides.
	wantMin := image.Pt(99840-512, 99840-512)
	if v.cacheRect.Min != wantMin {
		t.Fatalf("cacheRect.Min = %v, want %v", v.cacheRect.Min, wantMin)
	}
}

func TestCacheCoversViewAfterScrolling(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 8})
	v.OnDrawTile = passTile(nil)
	size := proj.MapSize(8)

	targets := []image.Point{
		{X: 0, Y: 0},
		{X: size, Y: size},
		{X: size / 2, Y: size / 3},
		{X: -500, Y: size / 2},
	}
	for _, p := range targets {
		v.ScrollTo(p)
		v.Frame()

		vr := v.viewRect()
		if !vr.In(v.cacheRect) {
			t.Fatalf("after ScrollTo(%v): view %v not covered by cache %v", p, vr, v.cacheRect)
		}
		if !v.cacheRect.In(proj.MapRect(8)) {
			t.Fatalf("after ScrollTo(%v): cache %v leaves the map", p, v.cacheRect)
		}
		if v.cacheRect.Min.X%proj.TileSize != 0 || v.cacheRect.Min.Y%proj.TileSize != 0 ||
			v.cacheRect.Dx()%proj.TileSize != 0 || v.cacheRect.Dy()%proj.TileSize != 0 {
			t.Fatalf("after ScrollTo(%v): cache %v not tile aligned", p, v.cacheRect)
		}
	}
}

func TestScrollInsideCacheDoesNotRepaint(t *testing.T) {
	paints := 0
	v := New(Config{Width: 600, Height: 400, Zoom: 10})
	v.OnDrawTile = passTile(&paints)
	v.Frame()

	paints = 0
	v.ScrollBy(40, 40)
	v.Frame()
	if paints != 0 {
		t.Fatalf("small scroll repainted %d tiles, want 0", paints)
	}

	v.ScrollBy(5000, 0)
	v.Frame()
	if paints == 0 {
		t.Fatal("scroll beyond the cache did not repaint")
	}
}

func TestBuiltinPlaceholder(t *testing.T) {
	v := New(Config{Width: 300, Height: 200, Zoom: 4})
	v.Frame()

	// Sample well inside the first cached tile, away from the border and
	// the centered label.
	pm := v.cache.ResizeTarget()
	i := 16*4*pm.Width() + 16*4
	data := pm.Data()
	if data[i] != placeholderFill.R || data[i+1] != placeholderFill.G || data[i+2] != placeholderFill.B {
		t.Fatalf("placeholder pixel = %02x%02x%02x, want %02x%02x%02x",
			data[i], data[i+1], data[i+2],
			placeholderFill.R, placeholderFill.G, placeholderFill.B)
	}
}

func TestTileDrawFallbackOrder(t *testing.T) {
	var order []string
	v := New(Config{Width: 300, Height: 200, Zoom: 3})
	v.OnDrawTile = func(_ *gg.Context, tile proj.Tile, _ image.Point) bool {
		order = append(order, "tile")
		return tile.X%2 == 0
	}
	v.OnDrawTileLoading = func(*gg.Context, proj.Tile, image.Point) bool {
		order = append(order, "loading")
		return true
	}

	v.Invalidate()
	v.Frame()

	var tiles, loadings int
	for _, s := range order {
		switch s {
		case "tile":
			tiles++
		case "loading":
			loadings++
		}
	}
	cols := v.cacheRect.Dx() / proj.TileSize
	rows := v.cacheRect.Dy() / proj.TileSize
	if tiles != cols*rows {
		t.Fatalf("OnDrawTile called %d times, want %d", tiles, cols*rows)
	}
	// Odd tile columns decline the draw and fall through to the loading
	// callback.
	wantLoadings := (cols / 2) * rows
	if loadings != wantLoadings {
		t.Fatalf("OnDrawTileLoading called %d times, want %d", loadings, wantLoadings)
	}
}

func TestRefreshTile(t *testing.T) {
	paints := 0
	v := New(Config{Width: 600, Height: 400, Zoom: 10})
	v.OnDrawTile = passTile(&paints)
	v.ScrollTo(image.Pt(100000, 100000))
	v.Frame()

	inside := proj.TileAt(10, v.cacheRect.Min)

	paints = 0
	v.RefreshTile(inside)
	if paints != 1 {
		t.Fatalf("refresh of a cached tile painted %d times, want 1", paints)
	}

	paints = 0
	v.RefreshTile(proj.Tile{Zoom: 11, X: inside.X, Y: inside.Y})
	if paints != 0 {
		t.Fatal("refresh for another zoom level was not ignored")
	}

	v.RefreshTile(proj.Tile{Zoom: 10, X: 0, Y: 0})
	if paints != 0 {
		t.Fatal("refresh outside the cached area was not ignored")
	}

	v.Invalidate()
	v.RefreshTile(inside)
	if paints != 0 {
		t.Fatal("refresh with a pending repaint was not ignored")
	}
}
