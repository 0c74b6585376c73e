// Package geomath provides the pure geometric primitives used by the
// evaluation pipeline. All functions operate on well-formed coordinates
// and have no error conditions.
package geomath

import (
	"math"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// earthRadiusKm is the mean radius of the Earth used by the haversine formula.
const earthRadiusKm = 6371.0

// Radians converts decimal degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// Degrees converts radians to decimal degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// DistanceKm returns the great-circle distance between two points in
// kilometers, computed with the haversine formula on a spherical Earth.
// It is symmetric and returns zero for identical points.
func DistanceKm(a, b models.Coordinates) float64 {
	lat1 := Radians(a.Latitude)
	lat2 := Radians(b.Latitude)
	dLat := Radians(b.Latitude - a.Latitude)
	dLon := Radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(h))

	return earthRadiusKm * c
}
