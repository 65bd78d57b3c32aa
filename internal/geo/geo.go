package geo

import "math"

// earthRadiusKm is the mean Earth radius. A spherical model is good enough
// for the UX-level distance estimates this service produces.
const earthRadiusKm = 6371.0

// Point is a WGS-84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm returns the great-circle distance between two points using the
// haversine formula.
func DistanceKm(from, to Point) float64 {
	dLat := degreesToRadians(to.Lat - from.Lat)
	dLng := degreesToRadians(to.Lng - from.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(from.Lat))*math.Cos(degreesToRadians(to.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
