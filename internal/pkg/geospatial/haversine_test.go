package geospatial_test

import (
	"math"
	"testing"

	"github.com/jmerino/hiddengems/internal/pkg/geospatial"
)

func TestHaversine_Symmetric(t *testing.T) {
	cases := [][4]float64{
		{40.73, -73.93, 43.263, -2.935},
		{0, 0, 0, 180},          // antipodal on the equator
		{51.5, 179.9, 51.5, -179.9}, // across the date line
		{-33.86, 151.2, 35.68, 139.69},
	}
	for _, c := range cases {
		ab := geospatial.Haversine(c[0], c[1], c[2], c[3])
		ba := geospatial.Haversine(c[2], c[3], c[0], c[1])
		if ab != ba {
			t.Errorf("Haversine(%v) not symmetric: %f vs %f", c, ab, ba)
		}
	}
}

func TestHaversine_ZeroForSamePoint(t *testing.T) {
	if d := geospatial.Haversine(40.73, -73.93, 40.73, -73.93); d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	d := geospatial.Haversine(40.0, -73.93, 41.0, -73.93)
	if math.Abs(d-111195) > 50 {
		t.Errorf("expected ~111195m for one degree of latitude, got %f", d)
	}
}

func TestHaversine_DateLineCrossing(t *testing.T) {
	// 0.2 degrees of longitude at the equator, straddling the date line.
	d := geospatial.Haversine(0, 179.9, 0, -179.9)
	if d > 25000 {
		t.Errorf("date-line crossing should be ~22km, got %f", d)
	}
}

func TestMilesToMeters(t *testing.T) {
	if got := geospatial.MilesToMeters(1); got != 1609.34 {
		t.Errorf("expected 1609.34, got %f", got)
	}
	if got := geospatial.MilesToMeters(5); math.Abs(got-8046.7) > 1e-9 {
		t.Errorf("expected 8046.7, got %f", got)
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(40.73, -73.93, 3000)

	// A point 2km north must be inside the 3km box.
	if lat := 40.73 + 2000/111320.0; lat > maxLat {
		t.Errorf("2km north escaped the 3km box: %f > %f", lat, maxLat)
	}
	if minLat >= maxLat || minLon >= maxLon {
		t.Errorf("degenerate box: [%f %f %f %f]", minLat, minLon, maxLat, maxLon)
	}
}
