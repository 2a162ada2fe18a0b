package mapview

import (
	"image"
	"testing"

	"github.com/gogpu/gg"

	"github.com/littleearth/osmmap/overlay"
	"github.com/littleearth/osmmap/proj"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Fatalf("viewport = %dx%d, want 800x600", cfg.Width, cfg.Height)
	}
	if cfg.MinZoom != proj.MinZoom || cfg.MaxZoom != proj.MaxZoom {
		t.Fatalf("zoom range = [%d, %d], want [%d, %d]", cfg.MinZoom, cfg.MaxZoom, proj.MinZoom, proj.MaxZoom)
	}
	if cfg.MarginTiles != 2 || cfg.MarginLimit != 4 {
		t.Fatalf("margins = %d/%d, want 2/4", cfg.MarginTiles, cfg.MarginLimit)
	}
	if cfg.CacheSize != 2048 {
		t.Fatalf("cache size = %d, want 2048", cfg.CacheSize)
	}
	if cfg.Background.A == 0 {
		t.Fatal("background left transparent")
	}
}

func TestConfigNormalization(t *testing.T) {
	cases := []struct {
		name string
		in   Config
		want func(Config) bool
	}{
		{
			name: "zoom clamped to max",
			in:   Config{Zoom: 25},
			want: func(c Config) bool { return c.Zoom == proj.MaxZoom },
		},
		{
			name: "zoom raised to min",
			in:   Config{MinZoom: 5, Zoom: 2},
			want: func(c Config) bool { return c.Zoom == 5 },
		},
		{
			name: "cache size tile aligned",
			in:   Config{CacheSize: 1000},
			want: func(c Config) bool { return c.CacheSize == 1024 },
		},
		{
			name: "margin limit covers margin",
			in:   Config{MarginTiles: 6},
			want: func(c Config) bool { return c.MarginLimit == 6 },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.withDefaults(); !tc.want(got) {
				t.Fatalf("normalized config = %+v", got)
			}
		})
	}
}

func TestScrollClamping(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 3})
	v.OnDrawTile = passTile(nil)

	v.ScrollTo(image.Pt(-100, -100))
	if v.viewTopLeft != (image.Point{}) {
		t.Fatalf("negative scroll gave %v, want origin", v.viewTopLeft)
	}

	v.ScrollTo(image.Pt(99999, 99999))
	if want := image.Pt(2048-600, 2048-400); v.viewTopLeft != want {
		t.Fatalf("overscroll gave %v, want %v", v.viewTopLeft, want)
	}
}

func TestViewLargerThanMap(t *testing.T) {
	v := New(Config{Width: 800, Height: 600, Zoom: 0})
	v.ScrollTo(image.Pt(500, 500))

	if v.viewTopLeft != (image.Point{}) {
		t.Fatalf("scroll offset = %v, want origin", v.viewTopLeft)
	}
	if want := image.Rect(0, 0, 256, 256); v.ViewRect() != want {
		t.Fatalf("view rect = %v, want %v", v.ViewRect(), want)
	}
}

func TestCenterOnRoundTrips(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 11})
	v.OnDrawTile = passTile(nil)

	g := proj.NewGeoPoint(2.3522, 48.8566)
	v.CenterOn(g)

	if got, want := proj.GeoToMap(11, v.Center()), proj.GeoToMap(11, g); got != want {
		t.Fatalf("center pixel = %v, want %v", got, want)
	}
}

func TestViewGeoConversions(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 9})
	v.OnDrawTile = passTile(nil)
	v.CenterOn(proj.NewGeoPoint(13.4, 52.5))

	p := image.Pt(123, 321)
	g := v.ViewToGeo(p)
	if !g.Valid() {
		t.Fatalf("ViewToGeo returned invalid point %+v", g)
	}
	if got := v.GeoToView(g); got != p {
		t.Fatalf("round trip moved %v to %v", p, got)
	}
}

func TestViewToGeoClampsOutsideMap(t *testing.T) {
	v := New(Config{Width: 800, Height: 600, Zoom: 0})
	g := v.ViewToGeo(image.Pt(790, 590))
	if !g.Valid() {
		t.Fatalf("clamped conversion returned invalid point %+v", g)
	}
	if want := proj.MapToGeo(0, image.Pt(255, 255)); g != want {
		t.Fatalf("ViewToGeo = %+v, want map corner %+v", g, want)
	}
}

func TestSelectionBox(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 5})
	v.OnDrawTile = passTile(nil)

	var got proj.GeoRect
	fired := 0
	v.OnSelectionBox = func(r proj.GeoRect) {
		got = r
		fired++
	}

	// Dragged up-left; the box is normalized regardless.
	v.BeginSelection(image.Pt(150, 120))
	v.UpdateSelection(image.Pt(50, 50))
	if !v.Selecting() {
		t.Fatal("drag in progress but Selecting() is false")
	}

	region, ok := v.EndSelection()
	if !ok || fired != 1 {
		t.Fatalf("EndSelection: ok=%v fired=%d, want true/1", ok, fired)
	}
	if region != got {
		t.Fatalf("returned region %+v differs from notified %+v", region, got)
	}
	if region.TopLeft.Lon >= region.BottomRight.Lon || region.TopLeft.Lat <= region.BottomRight.Lat {
		t.Fatalf("region not normalized: %+v", region)
	}
	if mid := v.ViewToGeo(image.Pt(100, 85)); !region.Contains(mid) {
		t.Fatalf("region %+v does not contain dragged midpoint %+v", region, mid)
	}
	if v.Selecting() {
		t.Fatal("still selecting after EndSelection")
	}
}

func TestSelectionClickIsDropped(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 5})
	v.OnDrawTile = passTile(nil)
	v.OnSelectionBox = func(proj.GeoRect) { t.Fatal("degenerate selection was notified") }

	v.BeginSelection(image.Pt(70, 70))
	v.UpdateSelection(image.Pt(71, 70))
	if _, ok := v.EndSelection(); ok {
		t.Fatal("click-sized selection reported a region")
	}
}

func TestSelectionCancel(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 5})
	v.OnDrawTile = passTile(nil)
	v.OnSelectionBox = func(proj.GeoRect) { t.Fatal("cancelled selection was notified") }

	v.BeginSelection(image.Pt(50, 50))
	v.UpdateSelection(image.Pt(200, 150))
	v.CancelSelection()
	if _, ok := v.EndSelection(); ok {
		t.Fatal("cancelled selection reported a region")
	}
}

func TestDrawMarksFiltersAndOrders(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 7})
	v.OnDrawTile = passTile(nil)
	v.CenterOn(proj.NewGeoPoint(8.5, 47.4))
	center := v.Center()

	var seen []string
	v.OnDrawMark = func(_ *gg.Context, _ image.Point, m *overlay.MapMark) bool {
		seen = append(seen, m.Caption)
		return true
	}

	upper := overlay.NewMapMark(center, "upper")
	upper.Layer = 2
	lower := overlay.NewMapMark(center, "lower")
	lower.Layer = 1
	hidden := overlay.NewMapMark(center, "hidden")
	hidden.Layer = 5
	invisible := overlay.NewMapMark(center, "invisible")
	invisible.Visible = false
	offscreen := overlay.NewMapMark(v.ViewToGeo(image.Pt(5000, 5000)), "offscreen")

	v.Marks.Add(upper)
	v.Marks.Add(lower)
	v.Marks.Add(hidden)
	v.Marks.Add(invisible)
	v.Marks.Add(offscreen)
	v.Layers.SetVisible(5, false)

	v.Frame()

	if len(seen) != 2 || seen[0] != "lower" || seen[1] != "upper" {
		t.Fatalf("drawn marks = %v, want [lower upper]", seen)
	}
}

func TestDrawMarkReceivesViewPoint(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 7})
	v.OnDrawTile = passTile(nil)
	v.CenterOn(proj.NewGeoPoint(-0.1, 51.5))

	m := overlay.NewMapMark(v.ViewToGeo(image.Pt(210, 140)), "pin")
	v.Marks.Add(m)

	var at image.Point
	calls := 0
	v.OnDrawMark = func(_ *gg.Context, p image.Point, _ *overlay.MapMark) bool {
		at = p
		calls++
		return true
	}

	v.Frame()
	if calls != 1 {
		t.Fatalf("mark drawn %d times, want 1", calls)
	}
	if want := image.Pt(210, 140); at != want {
		t.Fatalf("mark drawn at %v, want %v", at, want)
	}
}

func TestDefaultMarkRendering(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 7})
	v.OnDrawTile = passTile(nil)
	v.CenterOn(proj.NewGeoPoint(8.5, 47.4))

	m := overlay.NewMapMark(v.Center(), "depot")
	m.Selected = true
	m.Style.Glyph = overlay.GlyphTriangle
	m.Style.CaptionBackground = overlay.DefaultMarkStyle().Font.Color
	m.Override = overlay.OverrideGlyph | overlay.OverrideCaptionBackground
	v.Marks.Add(m)

	// No OnDrawMark: the built-in glyph, halo and caption path runs.
	f := v.Frame()
	if f.Width() != 600 || f.Height() != 400 {
		t.Fatalf("frame = %dx%d, want 600x400", f.Width(), f.Height())
	}
}

func TestFrameComposition(t *testing.T) {
	v := New(Config{Width: 320, Height: 240, Zoom: 0, Copyright: "© Test", ShowScaleBar: true})
	f := v.Frame()

	if f != v.frame {
		t.Fatal("Frame returned a foreign context")
	}
	px := v.Pixels()
	if len(px) != 320*240*4 {
		t.Fatalf("Pixels length = %d, want %d", len(px), 320*240*4)
	}

	sample := func(x, y int) [3]uint8 {
		i := (y*320 + x) * 4
		return [3]uint8{px[i], px[i+1], px[i+2]}
	}

	// Inside the single zoom-0 tile: the built-in placeholder fill.
	if got := sample(100, 60); got != [3]uint8{placeholderFill.R, placeholderFill.G, placeholderFill.B} {
		t.Fatalf("tile pixel = %v, want placeholder fill", got)
	}
	// Beyond the map surface: the view background.
	bg := v.cfg.Background
	if got := sample(300, 60); got != [3]uint8{bg.R, bg.G, bg.B} {
		t.Fatalf("background pixel = %v, want %v", got, bg)
	}
	// Bottom-right corner: the opaque copyright backing.
	if v.copyright == nil {
		t.Fatal("copyright label was not rendered")
	}
	cw := v.copyright.Width()
	if got := sample(320-labelInset-cw+1, 240-labelInset-2); got != [3]uint8{0xff, 0xff, 0xff} {
		t.Fatalf("copyright backing pixel = %v, want white", got)
	}
	// Bottom-left corner: the scale bar backing.
	if v.scaleBar == nil {
		t.Fatal("scale bar was not rendered")
	}
	if got := sample(labelInset+1, 240-labelInset-2); got != [3]uint8{0xff, 0xff, 0xff} {
		t.Fatalf("scale bar backing pixel = %v, want white", got)
	}
}

func TestScaleBarRegeneratedPerZoom(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 4, ShowScaleBar: true})
	v.OnDrawTile = passTile(nil)

	v.Frame()
	first := v.scaleBar
	if first == nil || v.scaleZoom != 4 {
		t.Fatalf("scale bar not built for zoom 4 (zoom tag %d)", v.scaleZoom)
	}

	v.Frame()
	if v.scaleBar != first {
		t.Fatal("scale bar rebuilt without a zoom change")
	}

	v.SetZoom(5)
	v.Frame()
	if v.scaleBar == first {
		t.Fatal("scale bar not rebuilt after a zoom change")
	}
	if v.scaleZoom != 5 {
		t.Fatalf("scale bar zoom tag = %d, want 5", v.scaleZoom)
	}
}

func TestTracksAndAreasDrawWithinFrame(t *testing.T) {
	v := New(Config{Width: 600, Height: 400, Zoom: 6})
	v.OnDrawTile = passTile(nil)
	v.CenterOn(proj.NewGeoPoint(10, 50))

	track := overlay.NewTrack(
		proj.NewGeoPoint(9.5, 49.5),
		proj.NewGeoPoint(10.0, 50.0),
		proj.NewGeoPoint(10.5, 49.8),
	)
	track.Dash = []float64{6, 3}
	v.Shapes.Add(track)

	area := overlay.NewArea(
		proj.NewGeoPoint(9.8, 50.2),
		proj.NewGeoPoint(10.2, 50.2),
		proj.NewGeoPoint(10.2, 49.9),
		proj.NewGeoPoint(9.8, 49.9),
	)
	v.Shapes.Add(area)

	// Far away; culled by the spatial index.
	v.Shapes.Add(overlay.NewTrack(
		proj.NewGeoPoint(-100, -40),
		proj.NewGeoPoint(-99, -41),
	))

	f := v.Frame()
	if f.Width() != 600 {
		t.Fatalf("frame width = %d, want 600", f.Width())
	}
}
