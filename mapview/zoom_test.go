package mapview

import (
	"image"
	"testing"

	"github.com/littleearth/osmmap/proj"
)

func TestSetZoomAtKeepsAnchorPinned(t *testing.T) {
	cases := []struct {
		name     string
		from, to int
		anchor   image.Point
	}{
		{name: "zoom in at cursor", from: 10, to: 11, anchor: image.Pt(411, 123)},
		{name: "zoom out at cursor", from: 10, to: 9, anchor: image.Pt(50, 350)},
		{name: "zoom in at center", from: 6, to: 7, anchor: image.Pt(300, 200)},
		{name: "two levels", from: 8, to: 10, anchor: image.Pt(520, 30)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := New(Config{Width: 600, Height: 400, Zoom: tc.from})
			v.OnDrawTile = passTile(nil)
			v.CenterOn(proj.NewGeoPoint(11.4, 47.3))

			anchorGeo := v.ViewToGeo(tc.anchor)
			v.SetZoomAt(tc.to, tc.anchor)

			if v.Zoom() != tc.to {
				t.Fatalf("zoom = %d, want %d", v.Zoom(), tc.to)
			}
			if got := v.GeoToView(anchorGeo); got != tc.anchor {
				t.Fatalf("anchor moved from %v to %v", tc.anchor, got)
			}
		})
	}
}

func TestSetZoomKeepsTopLeftPinned(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 9})
	v.OnDrawTile = passTile(nil)
	v.CenterOn(proj.NewGeoPoint(-73.98, 40.75))

	corner := v.ViewToGeo(image.Point{})
	v.SetZoom(10)

	if got := v.GeoToView(corner); got != (image.Point{}) {
		t.Fatalf("top-left corner moved to %v", got)
	}
}

func TestSetZoomRejectsNoopAndOutOfRange(t *testing.T) {
	events := 0
	v := New(Config{Width: 600, Height: 400, Zoom: 5, MinZoom: 3, MaxZoom: 8})
	v.OnDrawTile = passTile(nil)
	v.OnZoomChanged = func() { events++ }
	before := v.ViewRect()

	v.SetZoom(5)
	v.SetZoom(2)
	v.SetZoom(9)
	v.SetZoom(-1)

	if events != 0 {
		t.Fatalf("rejected transitions fired %d zoom events", events)
	}
	if v.Zoom() != 5 || v.ViewRect() != before {
		t.Fatal("rejected transition mutated the view")
	}
}

func TestZoomRepaintsEveryCachedTile(t *testing.T) {
	paints := 0
	v := New(Config{Width: 600, Height: 400, Zoom: 10})
	v.OnDrawTile = passTile(&paints)
	v.Frame()

	paints = 0
	v.SetZoom(11)

	want := (v.cacheRect.Dx() / proj.TileSize) * (v.cacheRect.Dy() / proj.TileSize)
	if paints != want {
		t.Fatalf("zoom transition painted %d tiles, want %d", paints, want)
	}
	if !v.viewRect().In(v.cacheRect) {
		t.Fatal("view not covered after the transition")
	}
}

func TestZoomChangedFiresOncePerTransition(t *testing.T) {
	events := 0
	v := New(Config{Width: 600, Height: 400, Zoom: 4})
	v.OnDrawTile = passTile(nil)
	v.OnZoomChanged = func() { events++ }

	v.SetZoom(5)
	v.SetZoomAt(6, image.Pt(100, 100))
	if events != 2 {
		t.Fatalf("got %d zoom events, want 2", events)
	}
}

func TestStartupZoomFallback(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 5})
	if v.Zoom() != 5 {
		t.Fatalf("zoom = %d, want 5", v.Zoom())
	}
	if !v.viewRect().In(v.cacheRect) {
		t.Fatal("initial view not covered by the cache")
	}
}

func TestSetZoomRangeClampsCurrentZoom(t *testing.T) {
	events := 0
	v := New(Config{Width: 600, Height: 400, Zoom: 12})
	v.OnDrawTile = passTile(nil)
	v.OnZoomChanged = func() { events++ }
	center := v.Center()

	v.SetZoomRange(2, 9)

	if v.Zoom() != 9 {
		t.Fatalf("zoom = %d, want 9", v.Zoom())
	}
	if events != 1 {
		t.Fatalf("clamping fired %d zoom events, want 1", events)
	}
	// The transition is anchored at the view center, so the centered
	// point survives the clamp.
	if got := proj.GeoToMap(9, v.Center()); got != proj.GeoToMap(9, center) {
		t.Fatalf("center moved from %v to %v", center, v.Center())
	}

	v.SetZoomRange(2, 9)
	if events != 1 {
		t.Fatal("re-applying the same range fired a zoom event")
	}
}

func TestSetZoomRangePanicsOnBadRange(t *testing.T) {
	v := New(Config{Width: 300, Height: 200})
	defer func() {
		if recover() == nil {
			t.Fatal("inverted range did not panic")
		}
	}()
	v.SetZoomRange(9, 2)
}
