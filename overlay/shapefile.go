package overlay

import (
	"fmt"

	shp "github.com/jonas-p/go-shp"

	"github.com/littleearth/osmmap/proj"
)

// ShapefileContent is what LoadShapefile pulled out of one file: points as
// marks, polylines as tracks, polygons as areas. Skipped counts records of
// geometry types the loader does not handle.
type ShapefileContent struct {
	Marks   []*MapMark
	Tracks  []*Track
	Areas   []*Area
	Skipped int
}

// LoadShapefile reads an ESRI shapefile and converts its records to overlay
// shapes on the given layer. Coordinates are expected in WGS84 degrees;
// values outside the legal domain are clamped onto it, so a file in a
// projected CRS shows up pinned to the map edge instead of crashing.
//
// Point records become marks captioned by the record's first character
// attribute. Multi-part polylines yield one track per part. Polygon rings
// are split by winding order: clockwise rings open a new area, counter-
// clockwise rings become holes of the area opened last.
func LoadShapefile(path string, layer int) (*ShapefileContent, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("overlay: open shapefile: %w", err)
	}
	defer r.Close()

	captionField := -1
	for i, f := range r.Fields() {
		if f.Fieldtype == 'C' {
			captionField = i
			break
		}
	}

	content := &ShapefileContent{}
	for r.Next() {
		n, shape := r.Shape()
		switch s := shape.(type) {
		case *shp.Point:
			content.addMark(r, n, captionField, layer, s.X, s.Y)
		case *shp.PointZ:
			content.addMark(r, n, captionField, layer, s.X, s.Y)
		case *shp.PointM:
			content.addMark(r, n, captionField, layer, s.X, s.Y)
		case *shp.PolyLine:
			content.addTracks(layer, s.Parts, s.Points)
		case *shp.Polygon:
			content.addAreas(layer, s.Parts, s.Points)
		default:
			content.Skipped++
		}
	}
	return content, nil
}

func (c *ShapefileContent) addMark(r *shp.Reader, row, captionField, layer int, x, y float64) {
	m := NewMapMark(clampGeo(x, y), "")
	m.Layer = layer
	if captionField >= 0 {
		m.Caption = r.ReadAttribute(row, captionField)
	}
	c.Marks = append(c.Marks, m)
}

func (c *ShapefileContent) addTracks(layer int, parts []int32, points []shp.Point) {
	for _, ring := range splitParts(parts, points) {
		if len(ring) < 2 {
			continue
		}
		t := NewTrack(ring...)
		t.Layer = layer
		c.Tracks = append(c.Tracks, t)
	}
}

func (c *ShapefileContent) addAreas(layer int, parts []int32, points []shp.Point) {
	var current *Area
	for _, ring := range splitParts(parts, points) {
		ring = dropClosingPoint(ring)
		if len(ring) < 3 {
			continue
		}
		// ESRI polygons wind outer rings clockwise and holes counter-
		// clockwise.
		if clockwise(ring) || current == nil {
			current = NewArea(ring...)
			current.Layer = layer
			c.Areas = append(c.Areas, current)
		} else {
			current.Holes = append(current.Holes, ring)
			current.Invalidate()
		}
	}
}

// splitParts cuts the flat point list into its rings using the part offsets.
func splitParts(parts []int32, points []shp.Point) [][]proj.GeoPoint {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	rings := make([][]proj.GeoPoint, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if int(start) >= end {
			continue
		}
		ring := make([]proj.GeoPoint, 0, end-int(start))
		for _, p := range points[start:end] {
			ring = append(ring, clampGeo(p.X, p.Y))
		}
		rings = append(rings, ring)
	}
	return rings
}

// dropClosingPoint removes the duplicated last vertex shapefile rings carry.
func dropClosingPoint(ring []proj.GeoPoint) []proj.GeoPoint {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}

// clockwise reports the ring's winding via the shoelace sum, negative in
// east/north axes meaning clockwise.
func clockwise(ring []proj.GeoPoint) bool {
	var sum float64
	for i := range ring {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		sum += a.Lon*b.Lat - b.Lon*a.Lat
	}
	return sum < 0
}

func clampGeo(lon, lat float64) proj.GeoPoint {
	return proj.GeoPoint{
		Lon: clampFloat(lon, proj.MinLon, proj.MaxLon),
		Lat: clampFloat(lat, proj.MinLat, proj.MaxLat),
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
