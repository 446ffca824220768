// Package geo provides the geometry primitives used by the simulation engine
// and the geo-insights endpoints: great-circle distance, planar polygon
// area/centroid and circle-ring generation for fallback isochrones.
package geo

import (
	"math"

	"citytwin/internal/model"
)

const (
	// EarthRadiusKM is the mean Earth radius used for haversine distances.
	EarthRadiusKM = 6371.0

	earthRadiusM = 6_371_008.8
)

// DistanceKM returns the great-circle distance between two locations in
// kilometers. Inputs are not validated; garbage in, garbage out.
func DistanceKM(a, b model.Location) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKM * 2 * math.Asin(math.Sqrt(h))
}

// NormalizeRing drops malformed vertices and closes the ring if the first and
// last vertex differ. Points are [lon, lat] pairs.
func NormalizeRing(polygon [][]float64) [][2]float64 {
	ring := make([][2]float64, 0, len(polygon)+1)
	for _, p := range polygon {
		if len(p) < 2 {
			continue
		}
		ring = append(ring, [2]float64{p[0], p[1]})
	}
	if len(ring) == 0 {
		return ring
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// PolygonAreaKM2 computes the area of a closed ring via an equirectangular
// projection and the shoelace formula. Degenerate rings yield 0.
func PolygonAreaKM2(ring [][2]float64) float64 {
	if len(ring) < 4 {
		return 0
	}
	pts := projectToMeters(ring)
	area := 0.0
	for i := 0; i < len(pts)-1; i++ {
		area += pts[i][0]*pts[i+1][1] - pts[i+1][0]*pts[i][1]
	}
	return math.Abs(area) / 2 / 1e6
}

// PolygonCentroid returns the centroid of a closed ring as (lon, lat).
// Degenerate rings return the first vertex.
func PolygonCentroid(ring [][2]float64) (float64, float64) {
	if len(ring) == 0 {
		return 0, 0
	}
	if len(ring) < 4 {
		return ring[0][0], ring[0][1]
	}

	pts := projectToMeters(ring)
	var signedArea, cx, cy float64
	for i := 0; i < len(pts)-1; i++ {
		cross := pts[i][0]*pts[i+1][1] - pts[i+1][0]*pts[i][1]
		signedArea += cross
		cx += (pts[i][0] + pts[i+1][0]) * cross
		cy += (pts[i][1] + pts[i+1][1]) * cross
	}
	signedArea /= 2
	if math.Abs(signedArea) < 1e-9 {
		return ring[0][0], ring[0][1]
	}
	cx /= 6 * signedArea
	cy /= 6 * signedArea

	meanLat := radians(meanLatitude(ring))
	lat := degrees(cy / earthRadiusM)
	lon := degrees(cx / (earthRadiusM * math.Max(math.Cos(meanLat), 1e-6)))
	return lon, lat
}

// CircleRing builds a closed [lon, lat] ring approximating a circle of the
// given radius around a center point.
func CircleRing(centerLon, centerLat, radiusKM float64, steps int) [][]float64 {
	if steps <= 0 {
		steps = 72
	}
	lonFactor := math.Max(math.Cos(radians(centerLat)), 1e-6)

	coords := make([][]float64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		dLat := (radiusKM / 111.32) * math.Sin(angle)
		dLon := (radiusKM / (111.32 * lonFactor)) * math.Cos(angle)
		coords = append(coords, []float64{centerLon + dLon, centerLat + dLat})
	}
	return coords
}

func projectToMeters(ring [][2]float64) [][2]float64 {
	cosLat := math.Max(math.Cos(radians(meanLatitude(ring))), 1e-6)
	pts := make([][2]float64, len(ring))
	for i, p := range ring {
		pts[i][0] = earthRadiusM * radians(p[0]) * cosLat
		pts[i][1] = earthRadiusM * radians(p[1])
	}
	return pts
}

func meanLatitude(ring [][2]float64) float64 {
	sum := 0.0
	for _, p := range ring {
		sum += p[1]
	}
	return sum / float64(len(ring))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
