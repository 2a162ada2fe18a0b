// Package proj implements the slippy-map (Web Mercator) coordinate math
// shared by every other osmmap package: geographic degrees to absolute map
// pixels and back, tile arithmetic, and clamping to the map surface.
//
// All functions are pure and stateless. Map pixels are expressed with the
// stdlib image.Point/image.Rectangle types; the map surface at a zoom level
// covers [0, MapSize(zoom)) on both axes, so image.Rectangle's exclusive Max
// matches the pixel ranges exactly.
package proj

import (
	"fmt"
	"image"
	"math"
)

// Constants for the Web Mercator projection and the tile scheme.
const (
	// TileSize is the side of a map tile in pixels.
	TileSize = 256

	// MinZoom and MaxZoom bound the discrete zoom levels.
	MinZoom = 0
	MaxZoom = 19

	// MinLat and MaxLat bound the legal latitude domain. The Mercator
	// square itself tops out at arctan(sinh(π)) ≈ 85.0511; the slightly
	// wider legal domain projects onto the edge pixel row.
	MaxLat = 85.1
	MinLat = -85.1

	// MinLon and MaxLon bound the legal longitude domain.
	MaxLon = 180.0
	MinLon = -180.0

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// floorEps guards the floor-to-pixel conversions against floating-point
// jitter when a coordinate lands exactly on a pixel boundary.
const floorEps = 1e-6

// pow2 contains pre-calculated powers of 2 for zoom levels 0-19.
var pow2 = [MaxZoom + 1]float64{
	1, 2, 4, 8, 16, 32, 64, 128, 256, 512,
	1024, 2048, 4096, 8192, 16384, 32768, 65536,
	131072, 262144, 524288,
}

// GeoPoint is a geographic coordinate in degrees.
type GeoPoint struct {
	Lon float64
	Lat float64
}

// NewGeoPoint returns a GeoPoint and panics if either coordinate lies
// outside the legal domain. Out-of-range input is a contract violation,
// not a recoverable condition; callers with uncertain data should clamp
// before constructing.
func NewGeoPoint(lon, lat float64) GeoPoint {
	g := GeoPoint{Lon: lon, Lat: lat}
	if !g.Valid() {
		panic(fmt.Sprintf("proj: geo coordinate (%v, %v) out of range", lon, lat))
	}
	return g
}

// Valid reports whether the point lies within the legal geographic domain.
func (g GeoPoint) Valid() bool {
	return g.Lon >= MinLon && g.Lon <= MaxLon && g.Lat >= MinLat && g.Lat <= MaxLat
}

// GeoRect is a geographic rectangle. TopLeft holds the minimum longitude and
// the MAXIMUM latitude, BottomRight the maximum longitude and the minimum
// latitude: latitude grows northward while map pixel Y grows southward, and
// the containment tests below depend on that inversion.
type GeoRect struct {
	TopLeft     GeoPoint
	BottomRight GeoPoint
}

// NewGeoRect returns a GeoRect and panics if the corners are out of the legal
// domain or do not form a top-left/bottom-right pair.
func NewGeoRect(topLeft, bottomRight GeoPoint) GeoRect {
	if !topLeft.Valid() || !bottomRight.Valid() {
		panic(fmt.Sprintf("proj: geo rect corners (%v, %v) out of range", topLeft, bottomRight))
	}
	if topLeft.Lon > bottomRight.Lon || topLeft.Lat < bottomRight.Lat {
		panic(fmt.Sprintf("proj: inverted geo rect (%v, %v)", topLeft, bottomRight))
	}
	return GeoRect{TopLeft: topLeft, BottomRight: bottomRight}
}

// Contains reports whether g lies inside the rectangle, borders included.
// Note the inverted latitude comparison: TopLeft carries the larger latitude.
func (r GeoRect) Contains(g GeoPoint) bool {
	return g.Lon >= r.TopLeft.Lon && g.Lon <= r.BottomRight.Lon &&
		g.Lat <= r.TopLeft.Lat && g.Lat >= r.BottomRight.Lat
}

// Tile addresses one map tile: zoom level plus column (X) and row (Y).
type Tile struct {
	Zoom int
	X    int
	Y    int
}

// Valid reports whether the tile indices are legal for the tile's zoom.
func (t Tile) Valid() bool {
	if !ValidZoom(t.Zoom) {
		return false
	}
	n := TileCount(t.Zoom)
	return t.X >= 0 && t.X < n && t.Y >= 0 && t.Y < n
}

// String renders the conventional zoom/x/y form, e.g. "12/654/1582".
func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

// ValidZoom reports whether z is a supported zoom level.
func ValidZoom(z int) bool {
	return z >= MinZoom && z <= MaxZoom
}

func mustZoom(z int) {
	if !ValidZoom(z) {
		panic(fmt.Sprintf("proj: zoom %d out of range [%d, %d]", z, MinZoom, MaxZoom))
	}
}

// MapSize returns the side of the whole map surface in pixels at a zoom
// level: TileSize * 2^zoom.
func MapSize(zoom int) int {
	mustZoom(zoom)
	return TileSize << uint(zoom)
}

// MapRect returns the full map surface as a pixel rectangle.
func MapRect(zoom int) image.Rectangle {
	size := MapSize(zoom)
	return image.Rect(0, 0, size, size)
}

// TileCount returns the number of tile columns (= rows) at a zoom level.
func TileCount(zoom int) int {
	mustZoom(zoom)
	return 1 << uint(zoom)
}

// TileRect returns the pixel rectangle a tile covers on the map surface.
func TileRect(t Tile) image.Rectangle {
	if !t.Valid() {
		panic(fmt.Sprintf("proj: invalid tile %d/%d/%d", t.Zoom, t.X, t.Y))
	}
	return image.Rect(t.X*TileSize, t.Y*TileSize, (t.X+1)*TileSize, (t.Y+1)*TileSize)
}

// TileAt returns the tile containing the given map pixel.
func TileAt(zoom int, p image.Point) Tile {
	mustMapPoint(zoom, p)
	return Tile{Zoom: zoom, X: p.X / TileSize, Y: p.Y / TileSize}
}

func mustMapPoint(zoom int, p image.Point) {
	size := MapSize(zoom)
	if p.X < 0 || p.X >= size || p.Y < 0 || p.Y >= size {
		panic(fmt.Sprintf("proj: map pixel (%d, %d) out of range for zoom %d", p.X, p.Y, zoom))
	}
}

// GeoToMap converts a geographic coordinate to an absolute map pixel at the
// given zoom level.
//
// Longitude maps linearly onto [0, MapSize); latitude goes through the
// inverse Mercator transform. The result is floored to a whole pixel and
// always lies within the map surface for legal input; out-of-domain input
// panics.
func GeoToMap(zoom int, g GeoPoint) image.Point {
	mustZoom(zoom)
	if !g.Valid() {
		panic(fmt.Sprintf("proj: geo coordinate (%v, %v) out of range", g.Lon, g.Lat))
	}

	size := TileSize * pow2[zoom]

	// The operation order below makes the longitude round-trip through
	// MapToGeo land on the exact same pixel; see the tests.
	x := int(math.Floor((g.Lon+180)/360*size + floorEps))

	latRad := g.Lat * degToRad
	y := int(math.Floor((1-math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi)/2*size + floorEps))

	// Latitudes near the ±85.1 domain edge project beyond the Mercator
	// square; clamp them onto the edge row/column.
	last := int(size) - 1
	x = clampInt(x, 0, last)
	y = clampInt(y, 0, last)
	return image.Point{X: x, Y: y}
}

// MapToGeo converts an absolute map pixel back to geographic degrees at the
// given zoom level. It is the inverse of GeoToMap up to sub-pixel drift:
// converting the result forward again yields the same pixel.
//
// The pixel must lie within [0, MapSize) on both axes; out-of-range input
// panics. Use EnsureInMap first when the pixel may be outside.
func MapToGeo(zoom int, p image.Point) GeoPoint {
	mustZoom(zoom)
	mustMapPoint(zoom, p)

	size := TileSize * pow2[zoom]
	lon := float64(p.X)/size*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*float64(p.Y)/size))) * radToDeg
	return GeoPoint{Lon: lon, Lat: lat}
}

// MapToGeoRect converts a map pixel rectangle to the geographic rectangle
// spanned by its corners. The rectangle must lie within the map surface;
// the exclusive Max corner is mapped through its last contained pixel.
func MapToGeoRect(zoom int, r image.Rectangle) GeoRect {
	topLeft := MapToGeo(zoom, r.Min)
	bottomRight := MapToGeo(zoom, image.Point{X: r.Max.X - 1, Y: r.Max.Y - 1})
	return GeoRect{TopLeft: topLeft, BottomRight: bottomRight}
}

// FloorToTile rounds a pixel offset down to the nearest tile multiple.
func FloorToTile(v int) int {
	d := v / TileSize
	if v%TileSize != 0 && v < 0 {
		d--
	}
	return d * TileSize
}

// CeilToTile rounds a pixel offset up to the nearest tile multiple.
func CeilToTile(v int) int {
	d := v / TileSize
	if v%TileSize != 0 && v > 0 {
		d++
	}
	return d * TileSize
}

// AlignToTiles expands a pixel rectangle outward to whole tiles: the top-left
// corner is floored and the bottom-right corner is ceiled to tile multiples.
// The result always contains the input, and a tile-aligned cache built from
// it holds only whole tiles.
func AlignToTiles(r image.Rectangle) image.Rectangle {
	return image.Rectangle{
		Min: image.Point{X: FloorToTile(r.Min.X), Y: FloorToTile(r.Min.Y)},
		Max: image.Point{X: CeilToTile(r.Max.X), Y: CeilToTile(r.Max.Y)},
	}
}

// EnsureInMap clamps a map pixel into the map surface at the given zoom.
// This is the soft counterpart of the panicking conversions: clamp first,
// then convert.
func EnsureInMap(zoom int, p image.Point) image.Point {
	last := MapSize(zoom) - 1
	return image.Point{
		X: clampInt(p.X, 0, last),
		Y: clampInt(p.Y, 0, last),
	}
}

// ClampToMap intersects a pixel rectangle with the map surface.
func ClampToMap(zoom int, r image.Rectangle) image.Rectangle {
	return r.Intersect(MapRect(zoom))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
