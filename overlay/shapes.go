package overlay

import (
	"fmt"
	"image/color"

	earcut "github.com/flywave/go-earcut"

	"github.com/littleearth/osmmap/proj"
)

// Shape is anything the spatial index can hold. The built-in shapes are
// *Track and *Area.
type Shape interface {
	GeoBounds() proj.GeoRect
}

// Track is a polyline over the map, a GPS trace or a route.
type Track struct {
	Points  []proj.GeoPoint
	Width   float64
	Color   color.NRGBA
	Dash    []float64 // stroke dash pattern, nil for solid
	Layer   int
	Visible bool
}

// NewTrack returns a visible 3px solid blue track on layer 0.
func NewTrack(points ...proj.GeoPoint) *Track {
	return &Track{
		Points:  points,
		Width:   3,
		Color:   color.NRGBA{R: 0x19, G: 0x76, B: 0xd2, A: 0xff},
		Visible: true,
	}
}

// Length returns the track length in metres, summed segment by segment on
// the ellipsoid.
func (t *Track) Length() float64 {
	var total float64
	for i := 1; i < len(t.Points); i++ {
		total += proj.Distance(t.Points[i-1], t.Points[i])
	}
	return total
}

// GeoBounds returns the smallest geographic rectangle containing every
// track point. An empty track yields the zero rectangle.
func (t *Track) GeoBounds() proj.GeoRect {
	return boundsOf(t.Points)
}

// Area is a filled polygon over the map, with optional holes. Rendering
// works on triangles, so the polygon is triangulated once and the result is
// cached until the geometry changes.
type Area struct {
	Outline []proj.GeoPoint
	Holes   [][]proj.GeoPoint

	FillColor   color.NRGBA
	StrokeColor color.NRGBA
	StrokeWidth float64
	Layer       int
	Visible     bool

	tris      []int
	trisValid bool
}

// NewArea returns a visible area on layer 0 with a translucent green fill.
func NewArea(outline ...proj.GeoPoint) *Area {
	return &Area{
		Outline:     outline,
		FillColor:   color.NRGBA{R: 0x38, G: 0x8e, B: 0x3c, A: 0x60},
		StrokeColor: color.NRGBA{R: 0x38, G: 0x8e, B: 0x3c, A: 0xff},
		StrokeWidth: 2,
		Visible:     true,
	}
}

// GeoBounds returns the smallest geographic rectangle containing the
// outline. Holes lie inside the outline and do not widen it.
func (a *Area) GeoBounds() proj.GeoRect {
	return boundsOf(a.Outline)
}

// Invalidate drops the cached triangulation. Call it after mutating
// Outline or Holes.
func (a *Area) Invalidate() {
	a.trisValid = false
}

// Vertices returns the polygon vertices in triangulation order: the outline
// first, then each hole ring. Indices returned by Triangulate point into
// this slice.
func (a *Area) Vertices() []proj.GeoPoint {
	verts := make([]proj.GeoPoint, 0, len(a.Outline)+holePointCount(a.Holes))
	verts = append(verts, a.Outline...)
	for _, hole := range a.Holes {
		verts = append(verts, hole...)
	}
	return verts
}

// Triangulate ear-cuts the polygon into triangles and returns a flat index
// list, three indices per triangle, referring into Vertices. The result is
// cached; Invalidate forces a recut.
func (a *Area) Triangulate() ([]int, error) {
	if a.trisValid {
		return a.tris, nil
	}
	if len(a.Outline) < 3 {
		return nil, fmt.Errorf("overlay: area outline has %d points, need at least 3", len(a.Outline))
	}

	data := make([]float64, 0, 2*(len(a.Outline)+holePointCount(a.Holes)))
	for _, p := range a.Outline {
		data = append(data, p.Lon, p.Lat)
	}
	var holeIndices []int
	offset := len(a.Outline)
	for _, hole := range a.Holes {
		holeIndices = append(holeIndices, offset)
		for _, p := range hole {
			data = append(data, p.Lon, p.Lat)
		}
		offset += len(hole)
	}

	tris, err := earcut.Earcut(data, holeIndices, 2)
	if err != nil {
		return nil, fmt.Errorf("overlay: triangulate area: %w", err)
	}
	a.tris = tris
	a.trisValid = true
	return a.tris, nil
}

func holePointCount(holes [][]proj.GeoPoint) int {
	var n int
	for _, h := range holes {
		n += len(h)
	}
	return n
}

func boundsOf(points []proj.GeoPoint) proj.GeoRect {
	if len(points) == 0 {
		return proj.GeoRect{}
	}
	minLon, maxLon := points[0].Lon, points[0].Lon
	minLat, maxLat := points[0].Lat, points[0].Lat
	for _, p := range points[1:] {
		if p.Lon < minLon {
			minLon = p.Lon
		}
		if p.Lon > maxLon {
			maxLon = p.Lon
		}
		if p.Lat < minLat {
			minLat = p.Lat
		}
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
	}
	return proj.GeoRect{
		TopLeft:     proj.GeoPoint{Lon: minLon, Lat: maxLat},
		BottomRight: proj.GeoPoint{Lon: maxLon, Lat: minLat},
	}
}

// LayerSet tracks which overlay layers are switched off. Layers are visible
// until hidden, so the zero value shows everything.
type LayerSet struct {
	hidden map[int]struct{}
}

// NewLayerSet returns a set with every layer visible.
func NewLayerSet() *LayerSet {
	return &LayerSet{hidden: make(map[int]struct{})}
}

// Visible reports whether the layer is shown.
func (s *LayerSet) Visible(layer int) bool {
	if s == nil || s.hidden == nil {
		return true
	}
	_, off := s.hidden[layer]
	return !off
}

// SetVisible shows or hides a layer.
func (s *LayerSet) SetVisible(layer int, visible bool) {
	if s.hidden == nil {
		s.hidden = make(map[int]struct{})
	}
	if visible {
		delete(s.hidden, layer)
	} else {
		s.hidden[layer] = struct{}{}
	}
}

// Toggle flips a layer and reports its new visibility.
func (s *LayerSet) Toggle(layer int) bool {
	v := !s.Visible(layer)
	s.SetVisible(layer, v)
	return v
}
