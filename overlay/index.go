package overlay

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/littleearth/osmmap/proj"
)

// rectEps pads degenerate extents: an R-tree rectangle must have positive
// length on every axis, but a single-point track has none.
const rectEps = 1e-9

// shapeEntry adapts a Shape to the rtreego.Spatial interface. Entries are
// stored by pointer so the tree can delete them by identity.
type shapeEntry struct {
	shape Shape
	rect  rtreego.Rect
}

func (e *shapeEntry) Bounds() rtreego.Rect {
	return e.rect
}

// ShapeIndex answers "which tracks and areas touch this region" without
// walking every shape. Search is O(log N) against the R-tree, which is what
// keeps panning smooth once a few thousand shapes are loaded.
type ShapeIndex struct {
	tree    *rtreego.Rtree
	entries map[Shape]*shapeEntry
}

// NewShapeIndex returns an empty index.
func NewShapeIndex() *ShapeIndex {
	return &ShapeIndex{
		// 2D tree, node fan-out between 25 and 50
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[Shape]*shapeEntry),
	}
}

// Add inserts a shape. Re-adding a shape whose geometry changed refreshes
// its indexed bounds.
func (x *ShapeIndex) Add(s Shape) {
	if s == nil {
		panic("overlay: Add of nil shape")
	}
	if _, ok := x.entries[s]; ok {
		x.Remove(s)
	}
	e := &shapeEntry{shape: s, rect: geoRectToRTree(s.GeoBounds())}
	x.entries[s] = e
	x.tree.Insert(e)
}

// Remove deletes a shape and reports whether it was present.
func (x *ShapeIndex) Remove(s Shape) bool {
	e, ok := x.entries[s]
	if !ok {
		return false
	}
	delete(x.entries, s)
	return x.tree.Delete(e)
}

// Count returns the number of indexed shapes.
func (x *ShapeIndex) Count() int {
	return len(x.entries)
}

// Search returns every shape whose bounds intersect the region, sorted by
// ascending layer so the caller can draw them in paint order.
func (x *ShapeIndex) Search(region proj.GeoRect) []Shape {
	spatials := x.tree.SearchIntersect(geoRectToRTree(region))

	result := make([]Shape, 0, len(spatials))
	for _, spatial := range spatials {
		result = append(result, spatial.(*shapeEntry).shape)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return shapeLayer(result[i]) < shapeLayer(result[j])
	})
	return result
}

func geoRectToRTree(r proj.GeoRect) rtreego.Rect {
	point := rtreego.Point{r.TopLeft.Lon, r.BottomRight.Lat}
	lengths := []float64{
		r.BottomRight.Lon - r.TopLeft.Lon + rectEps,
		r.TopLeft.Lat - r.BottomRight.Lat + rectEps,
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

func shapeLayer(s Shape) int {
	switch v := s.(type) {
	case *Track:
		return v.Layer
	case *Area:
		return v.Layer
	}
	return 0
}

// shapeVisible honors both the shape's own flag and the layer set.
func shapeVisible(s Shape, layers *LayerSet) bool {
	switch v := s.(type) {
	case *Track:
		return v.Visible && layers.Visible(v.Layer)
	case *Area:
		return v.Visible && layers.Visible(v.Layer)
	}
	return true
}

// VisibleIn returns the shapes intersecting the region that are actually
// drawable under the layer set, in paint order.
func (x *ShapeIndex) VisibleIn(region proj.GeoRect, layers *LayerSet) []Shape {
	all := x.Search(region)
	visible := all[:0]
	for _, s := range all {
		if shapeVisible(s, layers) {
			visible = append(visible, s)
		}
	}
	return visible
}
