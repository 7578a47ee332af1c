package opt

import (
	"math"

	"routeopt/internal/geo"
	"routeopt/internal/model"
)

// DefaultTraffic is a fixed time-of-day profile evaluated at the simulated
// departure time: morning and evening rush hours are slowest, lunchtime is
// moderately slower. It never reads the wall clock.
func DefaultTraffic(minuteOfDay int) float64 {
	m := minuteOfDay % (24 * 60)
	switch {
	case m >= 7*60 && m < 9*60, m >= 16*60 && m < 18*60:
		return 1.5
	case m >= 12*60 && m < 13*60:
		return 1.2
	default:
		return 1.0
	}
}

// FlatTraffic returns a profile applying the same factor all day.
func FlatTraffic(factor float64) model.TrafficProfile {
	return func(int) float64 { return factor }
}

// legMinutes is the travel time of one leg departing at minute now.
func legMinutes(distanceKm float64, v model.Vehicle, now int, o model.OptimizationOptions) int {
	t := geo.TravelTime(distanceKm, v.SpeedKmh)
	if !o.ConsiderTraffic || t == 0 {
		return t
	}
	profile := o.Traffic
	if profile == nil {
		profile = DefaultTraffic
	}
	f := profile(now)
	if f <= 0 {
		f = 1
	}
	return int(math.Round(float64(t) * f))
}
