package opt

import (
	"fmt"
	"math"
	"strings"

	"routeopt/internal/clock"
	"routeopt/internal/model"
)

const (
	penaltyMinor    = 5.0
	penaltyMajor    = 15.0
	penaltyCritical = 30.0
	// travel beyond this share of the working day costs efficiency
	travelRatioLimit = 0.3
	utilizationBonus = 10.0
	utilizationLimit = 0.8
)

// BuildRouteSolution simulates the vehicle visiting locations in the given
// order on a fresh engine.
func BuildRouteSolution(ordered []model.Location, v model.Vehicle, o model.OptimizationOptions) model.RouteSolution {
	return NewEngine().Simulate(ordered, v, o)
}

// Simulate walks ordered from the vehicle's start at the start of its
// available hours and produces the fully timed route. It never fails:
// constraint conflicts are recorded as violations.
func (e *Engine) Simulate(ordered []model.Location, v model.Vehicle, o model.OptimizationOptions) model.RouteSolution {
	return e.simulate(newTable(ordered), identity(len(ordered)), v, o)
}

func (e *Engine) simulate(t *table, order []int, v model.Vehicle, o model.OptimizationOptions) model.RouteSolution {
	e.stats.Evaluations++
	dayStart := clock.MustMinutes(v.AvailableHours.Start)
	dayEnd := clock.MustMinutes(v.AvailableHours.End)

	sol := model.RouteSolution{
		Vehicle:    v,
		Stops:      make([]model.RouteStop, 0, len(order)),
		Breaks:     []model.BreakStop{},
		Violations: []model.RouteViolation{},
		StartTime:  clock.FromMinutes(dayStart),
	}

	breakAfter := 0
	if o.IncludeBreaks && v.Breaks != nil && v.Breaks.AfterHours > 0 {
		breakAfter = int(math.Round(v.Breaks.AfterHours * 60))
	}

	now := dayStart
	worked := 0
	travelTotal := 0
	var distance, cost float64
	prev := startPoint(v)

	for i, idx := range order {
		loc := t.locs[idx]
		d := e.cache.Distance(prev, t.points[idx])
		travel := legMinutes(d, v, now, o)
		distance += d
		cost += d * v.CostPerKm
		travelTotal += travel
		now += travel
		worked += travel

		if breakAfter > 0 && worked >= breakAfter {
			sol.Breaks = append(sol.Breaks, model.BreakStop{
				StartTime: clock.FromMinutes(now),
				EndTime:   clock.FromMinutes(now + v.Breaks.Duration),
				Duration:  v.Breaks.Duration,
				AfterStop: i,
			})
			now += v.Breaks.Duration
			worked = 0
		}

		arrival, wait := e.checkWindows(&sol, t, idx, now, o)
		if loc.Access != nil && loc.Access.RequiresKey && strings.TrimSpace(loc.Access.Code) == "" && strings.TrimSpace(loc.Access.Instructions) == "" {
			sol.Violations = append(sol.Violations, model.RouteViolation{
				Type:         model.ViolationAccess,
				Severity:     model.SeverityMinor,
				LocationID:   loc.ID,
				Description:  fmt.Sprintf("%s requires a key but has no access code or instructions", displayName(loc)),
				SuggestedFix: "Record key pickup or access instructions before dispatch",
			})
		}

		departure := arrival + loc.EstimatedDuration
		sol.Stops = append(sol.Stops, model.RouteStop{
			Location:             loc,
			ArrivalTime:          clock.FromMinutes(arrival),
			DepartureTime:        clock.FromMinutes(departure),
			Order:                i + 1,
			TravelTime:           travel,
			DistanceFromPrevious: d,
			WaitTime:             wait,
		})
		now = departure
		worked += loc.EstimatedDuration
		prev = t.points[idx]
	}

	if v.EndLocation != nil {
		d := e.cache.Distance(prev, endPoint(v))
		travel := legMinutes(d, v, now, o)
		distance += d
		cost += d * v.CostPerKm
		travelTotal += travel
		now += travel
	}

	if v.Capacity > 0 && len(order) > v.Capacity {
		sol.Violations = append(sol.Violations, model.RouteViolation{
			Type:         model.ViolationCapacity,
			Severity:     model.SeverityMajor,
			Description:  fmt.Sprintf("%d stops assigned to %s exceed its capacity of %d", len(order), vehicleName(v), v.Capacity),
			SuggestedFix: "Use cluster_first with more vehicles or raise the vehicle capacity",
		})
	}
	if now > dayEnd {
		sol.Violations = append(sol.Violations, model.RouteViolation{
			Type:         model.ViolationDuration,
			Severity:     model.SeverityMajor,
			Description:  fmt.Sprintf("route ends at %s, after %s's available hours end at %s", clock.FromMinutes(now), vehicleName(v), clock.FromMinutes(dayEnd)),
			SuggestedFix: "Move some locations to another vehicle or extend available hours",
		})
	}

	sol.TotalDistance = distance
	sol.TotalCost = cost
	sol.TotalTime = now - dayStart
	sol.EndTime = clock.FromMinutes(now)
	sol.Efficiency = efficiency(sol.Violations, travelTotal, sol.TotalTime, len(order), v.Capacity)
	return sol
}

// checkWindows applies the location's time windows to an arrival at minute
// now and returns the effective arrival and the wait it required.
func (e *Engine) checkWindows(sol *model.RouteSolution, t *table, idx, now int, o model.OptimizationOptions) (int, int) {
	loc := t.locs[idx]
	var required, preferred []window
	for _, w := range t.windows[idx] {
		switch w.kind {
		case model.WindowRequired:
			required = append(required, w)
		case model.WindowPreferred:
			preferred = append(preferred, w)
		}
	}

	arrival, wait := now, 0
	if len(required) > 0 && !anyContains(required, now) {
		next := -1
		for _, w := range required {
			if w.Start > now && (next < 0 || w.Start < next) {
				next = w.Start
			}
		}
		if next >= 0 {
			wait = next - now
			arrival = next
			sol.Violations = append(sol.Violations, model.RouteViolation{
				Type:         model.ViolationTimeWindow,
				Severity:     model.SeverityMajor,
				LocationID:   loc.ID,
				Description:  fmt.Sprintf("arrival at %s (%s) is before its required window; waiting %d min", displayName(loc), clock.FromMinutes(now), wait),
				SuggestedFix: fmt.Sprintf("Schedule %s closer to %s", displayName(loc), clock.FromMinutes(next)),
			})
		} else {
			sol.Violations = append(sol.Violations, model.RouteViolation{
				Type:         model.ViolationTimeWindow,
				Severity:     model.SeverityCritical,
				LocationID:   loc.ID,
				Description:  fmt.Sprintf("arrival at %s (%s) misses every required window", displayName(loc), clock.FromMinutes(now)),
				SuggestedFix: fmt.Sprintf("Visit %s earlier in the route or widen its required window", displayName(loc)),
			})
		}
	}

	for _, w := range t.windows[idx] {
		if w.kind == model.WindowUnavailable && w.Contains(arrival) {
			sol.Violations = append(sol.Violations, model.RouteViolation{
				Type:         model.ViolationTimeWindow,
				Severity:     model.SeverityMajor,
				LocationID:   loc.ID,
				Description:  fmt.Sprintf("arrival at %s (%s) falls in an unavailable window", displayName(loc), clock.FromMinutes(arrival)),
				SuggestedFix: fmt.Sprintf("Move the visit outside %s-%s", clock.FromMinutes(w.Start), clock.FromMinutes(w.End)),
			})
			break
		}
	}

	if o.PrioritizeTimeWindows && len(required) == 0 && len(preferred) > 0 && !anyContains(preferred, arrival) {
		sol.Violations = append(sol.Violations, model.RouteViolation{
			Type:         model.ViolationTimeWindow,
			Severity:     model.SeverityMinor,
			LocationID:   loc.ID,
			Description:  fmt.Sprintf("arrival at %s (%s) is outside its preferred windows", displayName(loc), clock.FromMinutes(arrival)),
			SuggestedFix: "Reorder the route to reach preferred windows",
		})
	}
	return arrival, wait
}

func anyContains(ws []window, t int) bool {
	for _, w := range ws {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

func efficiency(vs []model.RouteViolation, travel, total, stops, capacity int) float64 {
	score := 100.0
	for _, v := range vs {
		switch v.Severity {
		case model.SeverityMinor:
			score -= penaltyMinor
		case model.SeverityMajor:
			score -= penaltyMajor
		case model.SeverityCritical:
			score -= penaltyCritical
		}
	}
	if total > 0 {
		if ratio := float64(travel) / float64(total); ratio > travelRatioLimit {
			score -= (ratio - travelRatioLimit) * 100
		}
	}
	if capacity > 0 && float64(stops)/float64(capacity) > utilizationLimit {
		score += utilizationBonus
	}
	return math.Max(0, math.Min(100, score))
}

func displayName(l model.Location) string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

func vehicleName(v model.Vehicle) string {
	if v.Name != "" {
		return v.Name
	}
	return v.ID
}
