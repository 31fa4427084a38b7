// Package geo provides distance and bounding box math for aircraft scans.
package geo

import "math"

const earthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// BoundingBox is an axis-aligned box around a scan center.
type BoundingBox struct {
	South float64
	North float64
	West  float64
	East  float64
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoxAround computes a bounding box of radiusKm around center. Longitude
// deltas are widened near the poles; the cosine is clamped so the box stays
// finite.
func BoxAround(center Point, radiusKm float64) BoundingBox {
	latDelta := radiusKm / 111.0
	lngDenom := 111.0 * math.Max(math.Cos(center.Lat*math.Pi/180), 0.01)
	lngDelta := radiusKm / lngDenom

	return BoundingBox{
		South: center.Lat - latDelta,
		North: center.Lat + latDelta,
		West:  center.Lng - lngDelta,
		East:  center.Lng + lngDelta,
	}
}

// Contains reports whether p falls inside the box.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

// CrossTrackKm returns the distance from p to the great circle through
// routeStart and routeEnd.
func CrossTrackKm(p, routeStart, routeEnd Point) float64 {
	d13 := HaversineKm(routeStart, p) / earthRadiusKm
	theta13 := initialBearing(routeStart, p)
	theta12 := initialBearing(routeStart, routeEnd)

	return math.Abs(math.Asin(math.Sin(d13)*math.Sin(theta13-theta12)) * earthRadiusKm)
}

// PointNearRoute reports whether p could plausibly lie under the
// origin-to-destination route. Providers sometimes report stale positions for
// a flight; an aircraft physically overhead with a route nowhere near the
// listener is bad data, not a real sighting. The tolerance is generous:
// either endpoint within 500km, or the point inside the route's padded
// bounding box and within 750km of the great circle.
func PointNearRoute(p, origin, dest Point) bool {
	const endpointToleranceKm = 500.0
	const crossTrackToleranceKm = 750.0
	const boxPaddingDeg = 5.0

	if HaversineKm(p, origin) <= endpointToleranceKm || HaversineKm(p, dest) <= endpointToleranceKm {
		return true
	}

	box := BoundingBox{
		South: math.Min(origin.Lat, dest.Lat) - boxPaddingDeg,
		North: math.Max(origin.Lat, dest.Lat) + boxPaddingDeg,
		West:  math.Min(origin.Lng, dest.Lng) - boxPaddingDeg,
		East:  math.Max(origin.Lng, dest.Lng) + boxPaddingDeg,
	}
	if !box.Contains(p) {
		return false
	}

	return CrossTrackKm(p, origin, dest) <= crossTrackToleranceKm
}

// KmToMiles converts kilometres to statute miles.
func KmToMiles(km float64) float64 {
	return km * 0.621371
}

func initialBearing(from, to Point) float64 {
	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLng := (to.Lng - from.Lng) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	return math.Atan2(y, x)
}
