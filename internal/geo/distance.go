package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0

// DistanceKm calculates the haversine great-circle distance between two
// WGS84 points given in degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance is DistanceKm over Coordinates
func Distance(a, b Coordinates) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
