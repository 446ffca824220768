package geo

import (
	"math"
	"testing"

	"citytwin/internal/model"
)

func TestDistanceKM(t *testing.T) {
	a := model.Location{Lat: 55.7558, Lng: 37.6173} // Moscow
	b := model.Location{Lat: 59.9343, Lng: 30.3351} // Saint Petersburg

	got := DistanceKM(a, b)
	if math.Abs(got-634) > 5 {
		t.Fatalf("DistanceKM(Moscow, SPb) = %.1f, want ~634", got)
	}

	if d := DistanceKM(a, a); d != 0 {
		t.Fatalf("distance to self = %f, want 0", d)
	}

	// One degree of latitude is close to 111.19 km everywhere.
	c := model.Location{Lat: 56.7558, Lng: 37.6173}
	if d := DistanceKM(a, c); math.Abs(d-111.19) > 0.5 {
		t.Fatalf("one degree of latitude = %.2f km, want ~111.19", d)
	}
}

func TestNormalizeRing(t *testing.T) {
	open := [][]float64{{37.60, 55.75}, {37.62, 55.75}, {37.62, 55.76}}
	ring := NormalizeRing(open)
	if len(ring) != 4 {
		t.Fatalf("ring length = %d, want 4 (auto-closed)", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Fatal("ring is not closed")
	}

	// Malformed vertices are dropped, not propagated.
	ring = NormalizeRing([][]float64{{37.60, 55.75}, {37.62}, {37.62, 55.76}})
	for _, p := range ring {
		if p[0] == 0 && p[1] == 0 {
			t.Fatal("malformed vertex leaked into ring")
		}
	}

	if got := NormalizeRing(nil); len(got) != 0 {
		t.Fatalf("empty polygon produced %d vertices", len(got))
	}
}

func TestPolygonAreaKM2(t *testing.T) {
	// Roughly 0.01 x 0.01 degrees near Moscow: about 1.11 km tall and
	// 0.63 km wide, so ~0.7 km2.
	square := NormalizeRing([][]float64{
		{37.60, 55.75}, {37.61, 55.75}, {37.61, 55.76}, {37.60, 55.76},
	})
	got := PolygonAreaKM2(square)
	if got < 0.5 || got > 0.9 {
		t.Fatalf("area = %.4f km2, want ~0.7", got)
	}

	if a := PolygonAreaKM2(NormalizeRing([][]float64{{37.60, 55.75}, {37.61, 55.75}})); a != 0 {
		t.Fatalf("degenerate ring area = %f, want 0", a)
	}
}

func TestPolygonCentroid(t *testing.T) {
	square := NormalizeRing([][]float64{
		{37.60, 55.75}, {37.62, 55.75}, {37.62, 55.77}, {37.60, 55.77},
	})
	lon, lat := PolygonCentroid(square)
	if math.Abs(lon-37.61) > 0.005 || math.Abs(lat-55.76) > 0.005 {
		t.Fatalf("centroid = (%.4f, %.4f), want ~(37.61, 55.76)", lon, lat)
	}

	lon, lat = PolygonCentroid(NormalizeRing([][]float64{{37.60, 55.75}}))
	if lon != 37.60 || lat != 55.75 {
		t.Fatalf("degenerate centroid = (%f, %f), want first vertex", lon, lat)
	}
}

func TestCircleRing(t *testing.T) {
	ring := CircleRing(37.61, 55.75, 2.0, 36)
	if len(ring) != 37 {
		t.Fatalf("ring has %d points, want steps+1 = 37", len(ring))
	}
	first, last := ring[0], ring[len(ring)-1]
	if math.Abs(first[0]-last[0]) > 1e-9 || math.Abs(first[1]-last[1]) > 1e-9 {
		t.Fatal("circle ring is not closed")
	}

	// Every point should sit roughly the radius away from the center.
	center := model.Location{Lat: 55.75, Lng: 37.61}
	for _, p := range ring {
		d := DistanceKM(center, model.Location{Lat: p[1], Lng: p[0]})
		if math.Abs(d-2.0) > 0.1 {
			t.Fatalf("ring point %.2f km from center, want ~2.0", d)
		}
	}
}

func TestAnalyzePolygon(t *testing.T) {
	params := InsightsParams{
		PopDensityPerKM2: 2900,
		AvgHouseholdSize: 2.8,
		StudentRatio:     0.18,
		SchoolCapacity:   900,
	}
	square := [][]float64{
		{37.60, 55.75}, {37.64, 55.75}, {37.64, 55.78}, {37.60, 55.78},
	}

	got := AnalyzePolygon(square, 10, "walking", params)
	if got.AreaKM2 <= 0 {
		t.Fatal("expected a positive area")
	}
	if got.EstimatedPopulation <= 0 {
		t.Fatal("expected a positive population estimate")
	}
	if got.EstimatedStudents >= got.EstimatedPopulation {
		t.Fatal("students must be a fraction of the population")
	}
	if got.AccessiblePopulationEstimate > got.EstimatedPopulation {
		t.Fatal("accessible population cannot exceed the total")
	}
	if len(got.Recommendations) == 0 {
		t.Fatal("expected at least one recommendation")
	}
	if got.Profile != "walking" || got.AccessMinutes != 10 {
		t.Fatalf("echoed profile/minutes = %s/%d", got.Profile, got.AccessMinutes)
	}
}
