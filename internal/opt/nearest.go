package opt

import (
	"math"

	"routeopt/internal/geo"
	"routeopt/internal/model"
)

// NearestNeighbor builds the route greedily from the vehicle start, always
// moving to the closest unvisited location. Ties keep input order, so the
// result is fully deterministic.
func (e *Engine) NearestNeighbor(locations []model.Location, v model.Vehicle, o model.OptimizationOptions) model.RouteSolution {
	t := newTable(locations)
	return e.simulate(t, e.nearestOrder(t, startPoint(v)), v, o)
}

func (e *Engine) nearestOrder(t *table, from geo.Point) []int {
	n := len(t.locs)
	visited := make([]bool, n)
	order := make([]int, 0, n)
	cur := from
	for len(order) < n {
		next, bestD := -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if visited[i] {
				continue
			}
			// strict comparison keeps the earliest index on ties
			if d := e.cache.Distance(cur, t.points[i]); d < bestD {
				next, bestD = i, d
			}
		}
		visited[next] = true
		order = append(order, next)
		cur = t.points[next]
	}
	return order
}
