package geo

import (
	"math"
	"testing"
)

func TestHaversineKm_KnownDistance(t *testing.T) {
	// JFK to LHR is roughly 5540km
	jfk := Point{Lat: 40.6413, Lng: -73.7781}
	lhr := Point{Lat: 51.4700, Lng: -0.4543}

	d := HaversineKm(jfk, lhr)
	if d < 5500 || d > 5600 {
		t.Errorf("Expected JFK-LHR around 5540km, got %.1f", d)
	}
}

func TestHaversineKm_ZeroDistance(t *testing.T) {
	p := Point{Lat: 40.0, Lng: -74.0}
	if d := HaversineKm(p, p); d != 0 {
		t.Errorf("Expected 0 for identical points, got %f", d)
	}
}

func TestBoxAround_ContainsCenter(t *testing.T) {
	center := Point{Lat: 51.5074, Lng: -0.1278}
	box := BoxAround(center, 100)

	if !box.Contains(center) {
		t.Error("Bounding box should contain its own center")
	}
	if box.North <= box.South {
		t.Error("North bound should exceed south bound")
	}
	if box.East <= box.West {
		t.Error("East bound should exceed west bound")
	}
}

func TestBoxAround_WidensNearPoles(t *testing.T) {
	equator := BoxAround(Point{Lat: 0, Lng: 0}, 100)
	arctic := BoxAround(Point{Lat: 80, Lng: 0}, 100)

	eqWidth := equator.East - equator.West
	arcticWidth := arctic.East - arctic.West
	if arcticWidth <= eqWidth {
		t.Errorf("Longitude span at 80N (%f) should exceed span at equator (%f)", arcticWidth, eqWidth)
	}
}

func TestBoxAround_RadiusRoughlyHonored(t *testing.T) {
	center := Point{Lat: 40.0, Lng: -74.0}
	box := BoxAround(center, 100)

	northEdge := Point{Lat: box.North, Lng: center.Lng}
	d := HaversineKm(center, northEdge)
	if math.Abs(d-100) > 5 {
		t.Errorf("North edge should be ~100km away, got %.1f", d)
	}
}

func TestPointNearRoute_UnderFlightPath(t *testing.T) {
	// A listener in Philadelphia sits under the BOS-ATL corridor
	phl := Point{Lat: 39.95, Lng: -75.17}
	bos := Point{Lat: 42.36, Lng: -71.01}
	atl := Point{Lat: 33.64, Lng: -84.43}

	if !PointNearRoute(phl, bos, atl) {
		t.Error("Philadelphia should be near the BOS-ATL route")
	}
}

func TestPointNearRoute_RejectsDistantRoute(t *testing.T) {
	// A listener in London is nowhere near a Tokyo-Sydney flight
	london := Point{Lat: 51.51, Lng: -0.13}
	tokyo := Point{Lat: 35.68, Lng: 139.65}
	sydney := Point{Lat: -33.87, Lng: 151.21}

	if PointNearRoute(london, tokyo, sydney) {
		t.Error("London should not be near the Tokyo-Sydney route")
	}
}

func TestPointNearRoute_EndpointProximity(t *testing.T) {
	// Near the origin airport counts even off the great circle
	nearOrigin := Point{Lat: 42.0, Lng: -72.0}
	bos := Point{Lat: 42.36, Lng: -71.01}
	lax := Point{Lat: 33.94, Lng: -118.41}

	if !PointNearRoute(nearOrigin, bos, lax) {
		t.Error("Points close to an endpoint should pass the route check")
	}
}

func TestKmToMiles(t *testing.T) {
	if m := KmToMiles(100); math.Abs(m-62.1371) > 0.001 {
		t.Errorf("Expected 62.1371 miles, got %f", m)
	}
}
