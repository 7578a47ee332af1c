package opt

import (
	"context"

	"golang.org/x/sync/errgroup"

	"routeopt/internal/model"
)

type restartResult struct {
	sol   model.RouteSolution
	stats model.RunStats
	err   error
}

// BestOfRestarts runs n independent solver runs concurrently, each on its
// own Engine with a seed drawn from e's random source, and keeps the
// shortest route. Ties go to the lowest restart index so a seeded call is
// reproducible. Counters of all runs are added to e's stats.
func (e *Engine) BestOfRestarts(ctx context.Context, algo model.Algorithm, locations []model.Location, v model.Vehicle, o model.OptimizationOptions, n int) (model.RouteSolution, error) {
	if n < 1 {
		n = 1
	}
	if _, err := e.Solver(algo); err != nil {
		return model.RouteSolution{}, err
	}
	seeds := make([]int64, n)
	for i := range seeds {
		for seeds[i] == 0 {
			seeds[i] = e.rng.Int63()
		}
	}

	results := make([]restartResult, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		child := NewEngine(WithSeed(seeds[i]), WithLogger(e.log), WithProgress(e.progress), WithTimeBudget(e.budget))
		child.restart = i
		child.deadline = e.deadline
		g.Go(func() error {
			s, _ := child.Solver(algo)
			sol, err := s.Solve(ctx, locations, v, o)
			results[i] = restartResult{sol: sol, stats: child.Stats(), err: err}
			return nil
		})
	}
	_ = g.Wait()

	best := 0
	var firstErr error
	for i, r := range results {
		e.stats.Evaluations += r.stats.Evaluations
		e.stats.Iterations += r.stats.Iterations
		e.stats.Improvements += r.stats.Improvements
		e.stats.AcceptedWorse += r.stats.AcceptedWorse
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		if r.sol.TotalDistance < results[best].sol.TotalDistance {
			best = i
		}
	}
	e.log.Debugf("restarts: %d runs of %s, best run %d (seed %d) %.3f km", n, algo, best, seeds[best], results[best].sol.TotalDistance)
	return results[best].sol, firstErr
}
