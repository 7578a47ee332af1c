package opt

import (
	"routeopt/internal/geo"
	"routeopt/internal/model"
)

const twoOptMaxPasses = 50

// TwoOpt seeds with the nearest-neighbor order and improves it by reversing
// segments while that shortens the open path from the vehicle start.
func (e *Engine) TwoOpt(locations []model.Location, v model.Vehicle, o model.OptimizationOptions) model.RouteSolution {
	t := newTable(locations)
	start := startPoint(v)
	order := e.improve2Opt(t, start, e.nearestOrder(t, start), twoOptMaxPasses)
	return e.simulate(t, order, v, o)
}

// improve2Opt keeps the first leg anchored at start, so every position
// including the first is eligible for reversal.
func (e *Engine) improve2Opt(t *table, start geo.Point, order []int, passes int) []int {
	if passes <= 0 {
		passes = 1
	}
	best := append([]int(nil), order...)
	bestDist := e.pathDistance(t, start, best)
	n := len(best)
	for it := 0; it < passes; it++ {
		improved := false
		for i := 0; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				cand := twoOptSwap(best, i, k)
				d := e.pathDistance(t, start, cand)
				if d+1e-6 < bestDist {
					best = cand
					bestDist = d
					improved = true
				}
			}
		}
		e.stats.Iterations++
		if !improved {
			break
		}
		e.stats.Improvements++
	}
	return best
}

func twoOptSwap(ord []int, i, k int) []int {
	out := make([]int, len(ord))
	copy(out, ord[:i])
	// reverse i..k
	pos := i
	for j := k; j >= i; j-- {
		out[pos] = ord[j]
		pos++
	}
	copy(out[pos:], ord[k+1:])
	return out
}

func (e *Engine) pathDistance(t *table, start geo.Point, order []int) float64 {
	total := 0.0
	prev := start
	for _, idx := range order {
		total += e.cache.Distance(prev, t.points[idx])
		prev = t.points[idx]
	}
	return total
}
