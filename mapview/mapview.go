// Package mapview implements a slippy-map viewport over the Web-Mercator
// tile pyramid. A MapView keeps a tile-aligned raster cache somewhat larger
// than the visible viewport, so panning is a plain blit and tiles are only
// redrawn when the view leaves the cached area or the zoom level changes.
// Mapmarks, tracks and areas are composed on top of the map on every frame
// in ascending layer order.
//
// Tile imagery is pulled in through the OnDrawTile callback, which keeps the
// view independent of any particular tile source; see the tiles package for
// an asynchronous HTTP source that pairs with RefreshTile.
//
// A MapView is not safe for concurrent use. All methods, and the callbacks
// they invoke, must run on a single goroutine. Asynchronous tile fetchers
// hand results over from that goroutine, typically by draining a ready
// channel into RefreshTile once per frame.
package mapview

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"

	"github.com/littleearth/osmmap/overlay"
	"github.com/littleearth/osmmap/proj"
)

const (
	defaultWidth       = 800
	defaultHeight      = 600
	defaultMarginTiles = 2
	defaultMarginLimit = 4
	defaultCacheSize   = 2048
)

// Config carries the initial state of a MapView. The zero value is usable:
// missing fields fall back to an 800x600 viewport at zoom 0 over a light
// map background.
type Config struct {
	// Width and Height give the viewport size in pixels.
	Width, Height int

	// Zoom is the initial zoom level, clamped into [MinZoom, MaxZoom].
	Zoom int

	// Center is the geographic point the view is initially centered on.
	Center proj.GeoPoint

	// MinZoom and MaxZoom bound the zoom range. A zero MaxZoom means the
	// deepest level the projection supports.
	MinZoom, MaxZoom int

	// MarginTiles is the number of tile rows and columns the cache keeps
	// around the viewport so small pans stay inside it. Default 2.
	MarginTiles int

	// MarginLimit caps, in tiles, the margin a cache reposition may leave
	// on one side regardless of how much spare cache there is. Default 4.
	MarginLimit int

	// CacheSize is the minimum edge of the tile cache in pixels. It is
	// rounded up to a whole tile. Default 2048.
	CacheSize int

	// Background shows through where no tile has been drawn and outside
	// the map surface. Leaving it fully transparent selects the default
	// light tint.
	Background color.NRGBA

	// Copyright is the attribution label drawn in the bottom-right corner.
	// An empty string disables the label.
	Copyright string

	// ShowScaleBar enables the distance scale in the bottom-left corner.
	ShowScaleBar bool
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.MinZoom < proj.MinZoom {
		c.MinZoom = proj.MinZoom
	}
	if c.MaxZoom <= 0 || c.MaxZoom > proj.MaxZoom {
		c.MaxZoom = proj.MaxZoom
	}
	if c.MinZoom > c.MaxZoom {
		c.MinZoom = c.MaxZoom
	}
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	if c.Zoom > c.MaxZoom {
		c.Zoom = c.MaxZoom
	}
	if c.MarginTiles < 1 {
		c.MarginTiles = defaultMarginTiles
	}
	if c.MarginLimit <= 0 {
		c.MarginLimit = defaultMarginLimit
	}
	if c.MarginLimit < c.MarginTiles {
		c.MarginLimit = c.MarginTiles
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
	c.CacheSize = proj.CeilToTile(c.CacheSize)
	if c.Background.A == 0 {
		c.Background = color.NRGBA{R: 0xf2, G: 0xef, B: 0xe9, A: 0xff}
	}
	return c
}

// MapView is the viewport core: it owns the tile cache, the current zoom
// and scroll state, and the overlay collections, and composes them into a
// view-sized frame on demand.
type MapView struct {
	// Marks holds the mapmarks, kept sorted by layer.
	Marks *overlay.MarkList

	// Shapes indexes tracks and areas for viewport culling.
	Shapes *overlay.ShapeIndex

	// Layers switches overlay layers on and off.
	Layers *overlay.LayerSet

	// OnDrawTile renders one ready tile with its top-left corner at
	// topLeft on dst and reports whether it drew anything. Returning
	// false hands the tile to OnDrawTileLoading.
	OnDrawTile func(dst *gg.Context, tile proj.Tile, topLeft image.Point) bool

	// OnDrawTileLoading renders a custom placeholder for a tile whose
	// imagery is not available yet. Returning false falls back to the
	// built-in placeholder.
	OnDrawTileLoading func(dst *gg.Context, tile proj.Tile, topLeft image.Point) bool

	// OnDrawMark renders one mark at the view point at and reports
	// whether it handled it. Returning false falls back to the mark's
	// effective style.
	OnDrawMark func(dst *gg.Context, at image.Point, mark *overlay.MapMark) bool

	// OnZoomChanged fires after every completed zoom transition.
	OnZoomChanged func()

	// OnSelectionBox fires when a selection drag completes, with the
	// selected region in geographic coordinates.
	OnSelectionBox func(region proj.GeoRect)

	cfg Config

	zoom             int // -1 until the first zoom transition completes
	minZoom, maxZoom int

	viewSize    image.Point
	viewTopLeft image.Point // scroll offset in map pixels

	cache      *gg.Context
	cacheRect  image.Rectangle
	cacheValid bool

	frame *gg.Context

	copyright *gg.Context
	scaleBar  *gg.Context
	scaleZoom int

	selecting bool
	selAnchor image.Point
	selRect   image.Rectangle
}

// New builds a MapView from cfg, paints its initial cache and centers it.
// Callbacks that affect tile painting should be assigned right after New;
// call Invalidate afterwards so the next frame repaints through them.
func New(cfg Config) *MapView {
	cfg = cfg.withDefaults()
	v := &MapView{
		Marks:     overlay.NewMarkList(),
		Shapes:    overlay.NewShapeIndex(),
		Layers:    overlay.NewLayerSet(),
		cfg:       cfg,
		zoom:      -1,
		minZoom:   cfg.MinZoom,
		maxZoom:   cfg.MaxZoom,
		viewSize:  image.Pt(cfg.Width, cfg.Height),
		frame:     gg.NewContext(cfg.Width, cfg.Height),
		scaleZoom: -1,
	}
	v.applyZoom(cfg.Zoom, image.Point{})
	v.CenterOn(cfg.Center)
	return v
}

// Zoom returns the current zoom level.
func (v *MapView) Zoom() int { return v.zoom }

// ZoomRange returns the allowed zoom bounds.
func (v *MapView) ZoomRange() (minZoom, maxZoom int) { return v.minZoom, v.maxZoom }

// Size returns the viewport size in pixels.
func (v *MapView) Size() image.Point { return v.viewSize }

// SetSize resizes the viewport. The tile cache is regrown and repainted as
// needed on the next frame.
func (v *MapView) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if v.viewSize == image.Pt(width, height) {
		return
	}
	if err := v.frame.Resize(width, height); err != nil {
		logger().Warn("resizing frame buffer failed", "width", width, "height", height, "error", err)
		return
	}
	v.viewSize = image.Pt(width, height)
	v.clampScroll()
}

// ViewRect returns the visible part of the map surface in map pixels. It is
// smaller than the viewport when the whole map fits inside it.
func (v *MapView) ViewRect() image.Rectangle {
	return v.viewRect()
}

func (v *MapView) viewRect() image.Rectangle {
	r := image.Rectangle{Min: v.viewTopLeft, Max: v.viewTopLeft.Add(v.viewSize)}
	return r.Intersect(proj.MapRect(v.zoom))
}

// ScrollTo moves the view so its top-left corner sits at p in map pixels,
// clamped so the view never leaves the map surface.
func (v *MapView) ScrollTo(p image.Point) {
	v.viewTopLeft = p
	v.clampScroll()
}

// ScrollBy moves the view by a pixel delta, clamped to the map surface.
func (v *MapView) ScrollBy(dx, dy int) {
	v.ScrollTo(v.viewTopLeft.Add(image.Pt(dx, dy)))
}

// CenterOn scrolls the view so g sits at its center.
func (v *MapView) CenterOn(g proj.GeoPoint) {
	p := proj.GeoToMap(v.zoom, g)
	v.ScrollTo(p.Sub(image.Pt(v.viewSize.X/2, v.viewSize.Y/2)))
}

// Center returns the geographic point at the view center.
func (v *MapView) Center() proj.GeoPoint {
	c := v.viewTopLeft.Add(image.Pt(v.viewSize.X/2, v.viewSize.Y/2))
	return proj.MapToGeo(v.zoom, proj.EnsureInMap(v.zoom, c))
}

// ViewToGeo converts a viewport point, a mouse position say, to geographic
// coordinates. Points outside the map surface are clamped onto its edge.
func (v *MapView) ViewToGeo(p image.Point) proj.GeoPoint {
	return proj.MapToGeo(v.zoom, proj.EnsureInMap(v.zoom, p.Add(v.viewTopLeft)))
}

// GeoToView converts geographic coordinates to a viewport point. The result
// may lie outside the viewport.
func (v *MapView) GeoToView(g proj.GeoPoint) image.Point {
	return proj.GeoToMap(v.zoom, g).Sub(v.viewTopLeft)
}

func (v *MapView) clampScroll() {
	size := proj.MapSize(v.zoom)
	v.viewTopLeft.X = clampScrollAxis(v.viewTopLeft.X, size, v.viewSize.X)
	v.viewTopLeft.Y = clampScrollAxis(v.viewTopLeft.Y, size, v.viewSize.Y)
}

func clampScrollAxis(offset, mapSize, viewSize int) int {
	max := mapSize - viewSize
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// BeginSelection starts a selection drag at the viewport point p.
func (v *MapView) BeginSelection(p image.Point) {
	v.selecting = true
	v.selAnchor = p
	v.selRect = image.Rectangle{Min: p, Max: p}
}

// UpdateSelection extends the selection drag to the viewport point p.
func (v *MapView) UpdateSelection(p image.Point) {
	if !v.selecting {
		return
	}
	v.selRect = image.Rect(v.selAnchor.X, v.selAnchor.Y, p.X, p.Y)
}

// Selecting reports whether a selection drag is in progress.
func (v *MapView) Selecting() bool { return v.selecting }

// CancelSelection abandons the selection drag without notifying anyone.
func (v *MapView) CancelSelection() {
	v.selecting = false
}

// EndSelection finishes the selection drag. If the dragged box covers a
// usable part of the map it is reported through OnSelectionBox and returned;
// degenerate boxes from a plain click are dropped.
func (v *MapView) EndSelection() (proj.GeoRect, bool) {
	if !v.selecting {
		return proj.GeoRect{}, false
	}
	v.selecting = false
	r := v.selRect.Add(v.viewTopLeft).Intersect(proj.MapRect(v.zoom))
	if r.Dx() < 2 || r.Dy() < 2 {
		return proj.GeoRect{}, false
	}
	region := proj.MapToGeoRect(v.zoom, r)
	if v.OnSelectionBox != nil {
		v.OnSelectionBox(region)
	}
	return region, true
}

// Invalidate drops the cached tile raster so the next frame repaints every
// tile through the draw callbacks.
func (v *MapView) Invalidate() {
	v.cacheValid = false
}

// rgbaView wraps a pixmap's backing store as an image.RGBA without copying.
// The cache and frame hold only opaque pixels by the time they are blitted,
// so straight versus premultiplied alpha makes no difference.
func rgbaView(pm *gg.Pixmap) *image.RGBA {
	return &image.RGBA{
		Pix:    pm.Data(),
		Stride: 4 * pm.Width(),
		Rect:   image.Rect(0, 0, pm.Width(), pm.Height()),
	}
}
