package mapview

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"

	"github.com/littleearth/osmmap/proj"
)

// syncCache brings the tile cache up to date with the current view: the
// raster is resized when the sizing rule asks for different dimensions,
// repositioned when the view is no longer covered, and repainted when its
// content is stale. Frame calls this on every cycle; zoom transitions call
// it eagerly after invalidating.
func (v *MapView) syncCache() {
	resized := v.resizeCache()
	if resized || !v.viewRect().In(v.cacheRect) || !v.cacheRect.In(proj.MapRect(v.zoom)) {
		v.repositionCache()
		v.cacheValid = false
	}
	if !v.cacheValid {
		v.repaintCache()
	}
}

// resizeCache reallocates the cache raster when the sizing rule yields new
// dimensions and reports whether it did. Each axis is the configured
// minimum, grown to hold the view plus the tile margin on both sides and
// rounded up to whole tiles, but never larger than the map itself.
func (v *MapView) resizeCache() bool {
	w := v.cacheEdge(v.viewSize.X)
	h := v.cacheEdge(v.viewSize.Y)
	if v.cache != nil && v.cache.Width() == w && v.cache.Height() == h {
		return false
	}
	v.cache = gg.NewContext(w, h)
	v.cacheValid = false
	return true
}

func (v *MapView) cacheEdge(viewExtent int) int {
	edge := proj.CeilToTile(viewExtent + 2*v.cfg.MarginTiles*proj.TileSize)
	if edge < v.cfg.CacheSize {
		edge = v.cfg.CacheSize
	}
	if size := proj.MapSize(v.zoom); edge > size {
		edge = size
	}
	return edge
}

// repositionCache moves the cache rectangle so it covers the tile-aligned
// view with as much symmetric tile-aligned margin as the spare cache area
// allows, capped at the configured margin limit and clamped to the map
// surface. The content is stale afterwards; callers repaint.
func (v *MapView) repositionCache() {
	size := proj.MapSize(v.zoom)
	vr := v.viewRect()
	w, h := v.cache.Width(), v.cache.Height()
	min := image.Pt(
		v.cacheMin(vr.Min.X, vr.Max.X, w, size),
		v.cacheMin(vr.Min.Y, vr.Max.Y, h, size),
	)
	v.cacheRect = image.Rectangle{Min: min, Max: min.Add(image.Pt(w, h))}
}

func (v *MapView) cacheMin(viewMin, viewMax, cacheExtent, mapSize int) int {
	alignedMin := proj.FloorToTile(viewMin)
	alignedMax := proj.CeilToTile(viewMax)
	margin := proj.FloorToTile((cacheExtent - (alignedMax - alignedMin)) / 2)
	if limit := v.cfg.MarginLimit * proj.TileSize; margin > limit {
		margin = limit
	}
	min := alignedMin - margin
	if min+cacheExtent > mapSize {
		min = mapSize - cacheExtent
	}
	if min < 0 {
		min = 0
	}
	return min
}

// repaintCache clears the raster to the background color and redraws every
// tile it covers through the draw callbacks.
func (v *MapView) repaintCache() {
	v.cache.ClearWithColor(gg.FromColor(v.cfg.Background))
	r := v.cacheRect
	for ty := r.Min.Y / proj.TileSize; ty < r.Max.Y/proj.TileSize; ty++ {
		for tx := r.Min.X / proj.TileSize; tx < r.Max.X/proj.TileSize; tx++ {
			v.paintTile(proj.Tile{Zoom: v.zoom, X: tx, Y: ty})
		}
	}
	v.cacheValid = true
}

// paintTile draws one tile into the cache, trying OnDrawTile, then
// OnDrawTileLoading, then the built-in placeholder.
func (v *MapView) paintTile(tile proj.Tile) {
	topLeft := proj.TileRect(tile).Min.Sub(v.cacheRect.Min)
	if v.OnDrawTile != nil && v.OnDrawTile(v.cache, tile, topLeft) {
		return
	}
	if v.OnDrawTileLoading != nil && v.OnDrawTileLoading(v.cache, tile, topLeft) {
		return
	}
	v.paintPlaceholder(tile, topLeft)
}

func (v *MapView) paintPlaceholder(tile proj.Tile, topLeft image.Point) {
	x, y := float64(topLeft.X), float64(topLeft.Y)
	c := v.cache
	c.SetColor(placeholderFill)
	c.DrawRectangle(x, y, proj.TileSize, proj.TileSize)
	c.Fill()
	c.SetColor(placeholderBorder)
	c.SetLineWidth(1)
	c.DrawRectangle(x+0.5, y+0.5, proj.TileSize-1, proj.TileSize-1)
	c.Stroke()
	c.SetFont(face(11, false))
	c.SetColor(placeholderText)
	label := fmt.Sprintf("Loading [%d : %d]...", tile.X, tile.Y)
	c.DrawStringAnchored(label, x+proj.TileSize/2, y+proj.TileSize/2, 0.5, 0.5)
}

// RefreshTile redraws a single tile of the current zoom level in place.
// Tiles for another zoom level, outside the cached area, or arriving while
// a full repaint is pending are ignored, which makes it safe to feed with
// late asynchronous fetch results.
func (v *MapView) RefreshTile(tile proj.Tile) {
	if !tile.Valid() || tile.Zoom != v.zoom {
		return
	}
	if v.cache == nil || !v.cacheValid {
		return
	}
	if !proj.TileRect(tile).In(v.cacheRect) {
		return
	}
	v.paintTile(tile)
}
