package mapview

import (
	"image"

	"github.com/littleearth/osmmap/proj"
)

// SetZoom changes the zoom level, keeping the geographic point under the
// view's top-left corner in place. Requests for the current level or
// outside the allowed range are ignored.
func (v *MapView) SetZoom(zoom int) {
	v.applyZoom(zoom, v.viewTopLeft)
}

// SetZoomAt changes the zoom level, keeping the geographic point under the
// viewport point at in place. This is what mouse-wheel zooming wants: pass
// the cursor position and the map appears to zoom around it.
func (v *MapView) SetZoomAt(zoom int, at image.Point) {
	v.applyZoom(zoom, at.Add(v.viewTopLeft))
}

// SetZoomRange narrows or widens the allowed zoom range. A current zoom
// outside the new range is clamped into it through a regular transition
// anchored at the view center.
func (v *MapView) SetZoomRange(minZoom, maxZoom int) {
	if !proj.ValidZoom(minZoom) || !proj.ValidZoom(maxZoom) || minZoom > maxZoom {
		panic("mapview: invalid zoom range")
	}
	v.minZoom, v.maxZoom = minZoom, maxZoom
	target := v.zoom
	if target < minZoom {
		target = minZoom
	}
	if target > maxZoom {
		target = maxZoom
	}
	if target != v.zoom {
		center := v.viewTopLeft.Add(image.Pt(v.viewSize.X/2, v.viewSize.Y/2))
		v.applyZoom(target, center)
	}
}

// applyZoom runs one zoom transition: it captures the geographic point
// under anchorMap and its viewport offset, switches levels, places the view
// so the anchor stays put, and rebuilds the tile cache for the new level.
// anchorMap is in map pixels of the outgoing level.
func (v *MapView) applyZoom(zoom int, anchorMap image.Point) {
	if zoom == v.zoom || zoom < v.minZoom || zoom > v.maxZoom {
		return
	}

	var anchorGeo proj.GeoPoint
	var anchorOffset image.Point
	if proj.ValidZoom(v.zoom) {
		anchorGeo = proj.MapToGeo(v.zoom, proj.EnsureInMap(v.zoom, anchorMap))
		anchorOffset = anchorMap.Sub(v.viewTopLeft)
	} else {
		// First transition after construction: no outgoing level to
		// anchor in, so anchor the map origin at the viewport origin.
		anchorGeo = proj.MapToGeo(v.minZoom, image.Point{})
	}

	v.zoom = zoom
	v.viewTopLeft = proj.GeoToMap(zoom, anchorGeo).Sub(anchorOffset)
	v.clampScroll()

	v.cacheValid = false
	v.syncCache()

	if v.OnZoomChanged != nil {
		v.OnZoomChanged()
	}
}
