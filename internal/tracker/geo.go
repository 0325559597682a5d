package tracker

import "math"

// EarthRadiusNM is the spherical earth radius used for all great-circle
// math in this package, in nautical miles.
const EarthRadiusNM = 3440.065

// GreatCircleNM returns the haversine distance between two points in
// nautical miles.
func GreatCircleNM(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return EarthRadiusNM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// pathDistanceNM sums the great-circle distance over consecutive points.
func pathDistanceNM(points []position) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += GreatCircleNM(points[i-1].lat, points[i-1].lon, points[i].lat, points[i].lon)
	}
	return total
}

type position struct {
	lat, lon float64
}
