package coord

import (
	"math"
	"testing"
)

func TestGridRoundTrip(t *testing.T) {
	g := NewGrid(4.4, 53.8, 62.0)
	lon, lat := 14.1618, 57.7826 // Jönköping
	c := g.FromLonLat(lon, lat)
	gotLon, gotLat := g.ToLonLat(c)

	// Spec §8.7: round-trip modulo a 1-decimeter rounding tolerance.
	tolDeg := 1.0 / g.decimetersPerDegreeLon
	if diff := math.Abs(gotLon - lon); diff > tolDeg*1.5 {
		t.Errorf("lon round-trip: got %v want %v (diff %v)", gotLon, lon, diff)
	}
	tolDegLat := 1.0 / g.decimetersPerDegreeLat
	if diff := math.Abs(gotLat - lat); diff > tolDegLat*1.5 {
		t.Errorf("lat round-trip: got %v want %v (diff %v)", gotLat, lat, diff)
	}
}

func TestInvalidCoordSentinel(t *testing.T) {
	var c Coord
	if !c.Invalid() {
		t.Fatal("zero-value Coord must be invalid")
	}
	if (Coord{X: 1, Y: 0}).Invalid() != true {
		t.Fatal("y=0 must be invalid")
	}
	if (Coord{X: 1, Y: 1}).Invalid() {
		t.Fatal("x=1,y=1 must be valid")
	}
}

func TestDistanceGeodesicIdentityAndSymmetry(t *testing.T) {
	a := GeodesicDistance(14.16, 57.78, 14.16, 57.78)
	if a != 0 {
		t.Fatalf("distance to self must be 0, got %v", a)
	}
	d1 := GeodesicDistance(14.16, 57.78, 11.97, 57.70)
	d2 := GeodesicDistance(11.97, 57.70, 14.16, 57.78)
	if math.Abs(d1-d2) > 1e-6 {
		t.Fatalf("geodesic distance must be symmetric: %v vs %v", d1, d2)
	}
	if d1 < 100000 || d1 > 200000 {
		t.Fatalf("Jönköping-Göteborg distance out of expected range: %v", d1)
	}
}

func TestDistanceGridSqMatchesDistanceGrid(t *testing.T) {
	a := Coord{X: 100, Y: 100}
	b := Coord{X: 400, Y: 500}
	sq := DistanceGridSq(a, b)
	d := DistanceGrid(a, b)
	if math.Abs(d*d*100-float64(sq)) > 1e-6 {
		t.Fatalf("DistanceGrid^2 (in decimeters^2) must match DistanceGridSq: %v vs %v", d*d*100, sq)
	}
}
