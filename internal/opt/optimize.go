package opt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"routeopt/internal/model"
)

// Optimize runs one optimization on a fresh Engine.
func Optimize(ctx context.Context, locations []model.Location, vehicles []model.Vehicle, o model.OptimizationOptions, opts ...Option) (model.OptimizationResult, error) {
	return NewEngine(opts...).Optimize(ctx, locations, vehicles, o)
}

// Optimize validates the input, then either clusters the locations over the
// vehicles (cluster_first) or solves every location against the first
// vehicle. Violations never make it fail; on cancellation the routes solved
// so far are returned together with the context error.
func (e *Engine) Optimize(ctx context.Context, locations []model.Location, vehicles []model.Vehicle, o model.OptimizationOptions) (model.OptimizationResult, error) {
	started := time.Now()
	if err := model.Validate(locations, vehicles); err != nil {
		return model.OptimizationResult{}, err
	}
	algo := o.Algorithm
	if algo == "" {
		algo = model.AlgorithmNearestNeighbor
	}
	inner := algo
	if algo == model.AlgorithmClusterFirst {
		inner = o.ClusterAlgorithm
		if inner == "" {
			inner = model.AlgorithmNearestNeighbor
		}
	}
	if _, err := e.Solver(inner); err != nil {
		return model.OptimizationResult{}, err
	}

	if o.Seed != 0 {
		e.reseed(o.Seed)
	}
	e.stats = model.RunStats{Seed: e.seed}
	e.deadline = time.Time{}
	defer e.startClock()()

	res := model.OptimizationResult{
		ID:                  uuid.NewString(),
		Routes:              []model.RouteSolution{},
		UnassignedLocations: []model.Location{},
		Algorithm:           string(algo),
		AllowViolations:     o.AllowViolations,
	}
	var runErr error
	if algo == model.AlgorithmClusterFirst {
		res.Algorithm = fmt.Sprintf("%s:%s", algo, inner)
		clusters := e.Cluster(locations, vehicles[0].Capacity)
		if o.BalanceWorkload {
			sort.SliceStable(clusters, func(i, j int) bool {
				return clusters[i].TotalDuration > clusters[j].TotalDuration
			})
		}
		res.Clusters = clusters
		for i, c := range clusters {
			if i >= len(vehicles) {
				res.UnassignedLocations = append(res.UnassignedLocations, c.Locations...)
				continue
			}
			if runErr != nil {
				res.UnassignedLocations = append(res.UnassignedLocations, c.Locations...)
				continue
			}
			sol, err := e.solve(ctx, inner, c.Locations, vehicles[i], o)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return model.OptimizationResult{}, err
			}
			runErr = err
			res.Routes = append(res.Routes, sol)
		}
	} else {
		sol, err := e.solve(ctx, algo, locations, vehicles[0], o)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return model.OptimizationResult{}, err
		}
		runErr = err
		res.Routes = append(res.Routes, sol)
	}

	res.Summary = summarize(res.Routes, len(locations))
	e.stats.BestDistance = res.Summary.TotalDistance
	res.Stats = e.stats
	res.ComputationTime = time.Since(started)
	e.log.Infof("optimize %s: %d routes, %.2f km, %d violations (%d critical) in %s",
		res.Algorithm, len(res.Routes), res.Summary.TotalDistance, res.Summary.Violations, res.Summary.CriticalCount, res.ComputationTime)
	return res, runErr
}

func (e *Engine) solve(ctx context.Context, algo model.Algorithm, locations []model.Location, v model.Vehicle, o model.OptimizationOptions) (model.RouteSolution, error) {
	if o.Restarts > 1 && algo.Stochastic() {
		return e.BestOfRestarts(ctx, algo, locations, v, o, o.Restarts)
	}
	s, err := e.Solver(algo)
	if err != nil {
		return model.RouteSolution{}, err
	}
	return s.Solve(ctx, locations, v, o)
}

func summarize(routes []model.RouteSolution, totalLocations int) model.Summary {
	s := model.Summary{TotalLocations: totalLocations}
	if len(routes) == 0 {
		return s
	}
	eff := make([]float64, len(routes))
	durations := make([]float64, len(routes))
	for i, r := range routes {
		s.TotalDistance += r.TotalDistance
		s.TotalTime += r.TotalTime
		s.TotalCost += r.TotalCost
		s.AssignedLocations += len(r.Stops)
		if len(r.Stops) > 0 {
			s.VehiclesUsed++
		}
		s.Violations += len(r.Violations)
		s.CriticalCount += r.CountSeverity(model.SeverityCritical)
		eff[i] = r.Efficiency
		durations[i] = float64(r.TotalTime)
	}
	s.AverageEfficiency = stat.Mean(eff, nil)
	if len(durations) > 1 {
		s.WorkloadStdDev = math.Sqrt(stat.PopVariance(durations, nil))
	}
	return s
}
