// Package geo holds great-circle distance math and its per-engine memo table.
package geo

import (
	"math"

	"routeopt/internal/model"
)

const earthRadiusKm = 6371.0

// Distance returns the haversine great-circle distance between a and b in km.
func Distance(a, b model.Coordinates) float64 {
	if a == b {
		return 0
	}
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// TravelTime converts a distance in km at speedKmh into whole minutes.
func TravelTime(distanceKm, speedKmh float64) int {
	if speedKmh <= 0 || distanceKm <= 0 {
		return 0
	}
	return int(math.Round(distanceKm / speedKmh * 60))
}

// Centroid returns the arithmetic mean of the points; zero value when empty.
func Centroid(points []model.Coordinates) model.Coordinates {
	if len(points) == 0 {
		return model.Coordinates{}
	}
	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return model.Coordinates{Lat: lat / n, Lng: lng / n}
}
