package proj

import (
	"math"
	"strconv"
)

// WGS84 ellipsoid parameters.
const (
	equatorRadius       = 6378137.0
	eccentricitySquared = 0.00669437999014
)

// metersPerPixel is the ground resolution at the equator for each zoom
// level: Earth circumference / (TileSize * 2^zoom).
var metersPerPixel = [MaxZoom + 1]float64{
	156543.03, 78271.52, 39135.76, 19567.88, 9783.94,
	4891.97, 2445.98, 1222.99, 611.50, 305.75,
	152.87, 76.437, 38.219, 19.109, 9.5546,
	4.7773, 2.3887, 1.1943, 0.5972, 0.2986,
}

// scaleBarKm lists the candidate scale-bar lengths in kilometres, from
// widest to narrowest. ScaleBar picks the first one that fits.
var scaleBarKm = [20]float64{
	10000, 5000, 2000, 1000, 500,
	200, 100, 50, 20, 10,
	5, 2, 1, 0.5, 0.2,
	0.1, 0.05, 0.02, 0.01, 0.005,
}

// Distance returns the planar distance in metres between two geographic
// points, computed on the WGS84 ellipsoid: the latitude difference is scaled
// by the meridional curvature radius M and the longitude difference by the
// prime-vertical radius N at the mean latitude. For the short spans a map
// viewport deals in, this agrees with great-circle formulas to well under a
// metre while staying cheap.
func Distance(a, b GeoPoint) float64 {
	if !a.Valid() || !b.Valid() {
		panic("proj: distance between out-of-range coordinates")
	}

	midLat := (a.Lat + b.Lat) / 2 * degToRad
	sinLat := math.Sin(midLat)
	t := 1 - eccentricitySquared*sinLat*sinLat

	m := equatorRadius * (1 - eccentricitySquared) / math.Pow(t, 1.5)
	n := equatorRadius / math.Sqrt(t)

	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad
	return math.Hypot(m*dLat, n*math.Cos(midLat)*dLon)
}

// ScaleBar picks the widest "nice" scale-bar length that fits within
// maxWidth pixels at the given zoom level, using the equatorial ground
// resolution. It returns the bar width in pixels and a ready-to-draw label,
// "200 m" below one kilometre and "5 km" from one kilometre up.
//
// If even the narrowest candidate does not fit, that candidate is returned
// anyway so callers always get a drawable bar.
func ScaleBar(zoom, maxWidth int) (widthPx int, label string) {
	mustZoom(zoom)

	mpp := metersPerPixel[zoom]
	km := scaleBarKm[len(scaleBarKm)-1]
	for _, candidate := range scaleBarKm {
		if candidate*1000/mpp <= float64(maxWidth) {
			km = candidate
			break
		}
	}

	widthPx = int(km*1000/mpp + 0.5)
	if km >= 1 {
		label = strconv.Itoa(int(km)) + " km"
	} else {
		label = strconv.Itoa(int(km*1000+0.5)) + " m"
	}
	return widthPx, label
}
