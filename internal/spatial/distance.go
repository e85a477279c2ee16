package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/nextloc/nextloc-go/internal/models"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers
)

// HaversineDistance calculates the great-circle distance between two points in meters
// using the Haversine formula
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PathLengthMeters sums great-circle distances along consecutive trajectory
// positions. Fewer than two positions give zero length.
func PathLengthMeters(positions []models.Position) float64 {
	var total float64
	for i := 1; i < len(positions); i++ {
		total += HaversineDistance(
			positions[i-1].Lat, positions[i-1].Lon,
			positions[i].Lat, positions[i].Lon,
		)
	}
	return total
}
