package routing

import "math"

// DistanceCalculator measures the distance in metres between two coordinates
type DistanceCalculator interface {
	Distance(lat1, lon1, lat2, lon2 float64) float64
}

// EarthRadius is the mean earth radius in metres
const EarthRadius = 6371008.8

// Haversine is the great-circle distance
type Haversine struct{}

func (Haversine) Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(a)))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// MetersPerDegreeLat is a good-enough constant for bounding boxes
const MetersPerDegreeLat = 111_195.0
