package opt

import (
	"context"
	"math"

	"routeopt/internal/model"
)

const (
	defaultAnnealIterations = 1000
	initialTemperature      = 1000.0
	coolingRate             = 0.995
	annealReportEvery       = 100
)

// SimulatedAnnealing runs a swap-move local search from a random
// permutation. Worse moves are accepted with probability exp(-delta/T) as
// the temperature cools; the best route seen is returned.
func (e *Engine) SimulatedAnnealing(ctx context.Context, locations []model.Location, v model.Vehicle, o model.OptimizationOptions) (model.RouteSolution, error) {
	t := newTable(locations)
	n := len(locations)
	if n < 2 {
		return e.simulate(t, identity(n), v, o), nil
	}
	defer e.startClock()()
	iterations := o.MaxIterations
	if iterations <= 0 {
		iterations = defaultAnnealIterations
	}
	e.log.Debugf("annealing: %d locations, %d iterations, seed %d", n, iterations, e.seed)

	current := e.rng.Perm(n)
	curSol := e.simulate(t, current, v, o)
	bestSol := curSol
	temp := initialTemperature

	for it := 0; it < iterations; it++ {
		if err := ctx.Err(); err != nil {
			e.stats.BestDistance = bestSol.TotalDistance
			return bestSol, err
		}
		if e.expired() {
			e.log.Debugf("annealing: time budget reached after %d iterations", it)
			break
		}
		cand := append([]int(nil), current...)
		i, j := e.rng.Intn(n), e.rng.Intn(n)
		cand[i], cand[j] = cand[j], cand[i]
		candSol := e.simulate(t, cand, v, o)

		delta := candSol.TotalDistance - curSol.TotalDistance
		if delta < 0 {
			current, curSol = cand, candSol
		} else if e.rng.Float64() < math.Exp(-delta/temp) {
			current, curSol = cand, candSol
			if delta > 0 {
				e.stats.AcceptedWorse++
			}
		}
		if curSol.TotalDistance < bestSol.TotalDistance {
			bestSol = curSol
			e.stats.Improvements++
		}
		temp *= coolingRate
		e.stats.Iterations++
		if (it+1)%annealReportEvery == 0 {
			e.report(it+1, model.AlgorithmSimulatedAnnealing, bestSol.TotalDistance)
		}
	}
	e.stats.BestDistance = bestSol.TotalDistance
	return bestSol, nil
}
