package opt

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"routeopt/internal/clock"
	"routeopt/internal/geo"
	"routeopt/internal/logger"
	"routeopt/internal/model"
)

// Progress is a search snapshot emitted while a solver runs.
type Progress struct {
	Algorithm    model.Algorithm `json:"algorithm"`
	Restart      int             `json:"restart"`
	Iteration    int             `json:"iteration"`
	BestDistance float64         `json:"bestDistance"`
}

// ProgressFunc receives snapshots. With Restarts > 1 it is called from
// several goroutines and must be safe for concurrent use.
type ProgressFunc func(Progress)

// Engine holds the state of one optimization: its distance memo table, its
// random source and search counters. Engines are not shared between
// concurrent optimizations; BestOfRestarts gives every run its own.
type Engine struct {
	cache    *geo.Cache
	rng      *rand.Rand
	seed     int64
	log      logger.Logger
	progress ProgressFunc
	restart  int
	budget   time.Duration
	deadline time.Time
	stats    model.RunStats
}

type Option func(*Engine)

// WithSeed fixes the random source; options.Seed overrides it per call.
func WithSeed(seed int64) Option { return func(e *Engine) { e.seed = seed } }

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithProgress(fn ProgressFunc) Option { return func(e *Engine) { e.progress = fn } }

// WithTimeBudget bounds the wall-clock time of the genetic and annealing
// loops. When it runs out the best solution found so far is returned.
func WithTimeBudget(d time.Duration) Option { return func(e *Engine) { e.budget = d } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{cache: geo.NewCache(), log: logger.Nop()}
	for _, o := range opts {
		o(e)
	}
	e.reseed(e.seed)
	return e
}

func (e *Engine) reseed(seed int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e.seed = seed
	e.rng = rand.New(rand.NewSource(seed))
}

// Seed returns the seed of the engine's random source.
func (e *Engine) Seed() int64 { return e.seed }

// Stats returns the counters accumulated since the last Optimize call.
func (e *Engine) Stats() model.RunStats { return e.stats }

func (e *Engine) report(iteration int, algo model.Algorithm, best float64) {
	if e.progress == nil {
		return
	}
	e.progress(Progress{Algorithm: algo, Restart: e.restart, Iteration: iteration, BestDistance: best})
}

// startClock arms the time budget unless an enclosing Optimize already did.
// The returned func disarms it again when this call was the one that armed it.
func (e *Engine) startClock() (release func()) {
	if e.budget <= 0 || !e.deadline.IsZero() {
		return func() {}
	}
	e.deadline = time.Now().Add(e.budget)
	return func() { e.deadline = time.Time{} }
}

func (e *Engine) expired() bool {
	return !e.deadline.IsZero() && time.Now().After(e.deadline)
}

// Solver is the contract shared by all ordering strategies: produce an
// ordering of the locations and return its simulated RouteSolution.
type Solver interface {
	Solve(ctx context.Context, locations []model.Location, v model.Vehicle, o model.OptimizationOptions) (model.RouteSolution, error)
}

type SolverFunc func(ctx context.Context, locations []model.Location, v model.Vehicle, o model.OptimizationOptions) (model.RouteSolution, error)

func (f SolverFunc) Solve(ctx context.Context, locations []model.Location, v model.Vehicle, o model.OptimizationOptions) (model.RouteSolution, error) {
	return f(ctx, locations, v, o)
}

// Solver returns the engine-bound solver for a concrete algorithm.
func (e *Engine) Solver(algo model.Algorithm) (Solver, error) {
	switch algo {
	case model.AlgorithmNearestNeighbor:
		return SolverFunc(func(_ context.Context, l []model.Location, v model.Vehicle, o model.OptimizationOptions) (model.RouteSolution, error) {
			return e.NearestNeighbor(l, v, o), nil
		}), nil
	case model.AlgorithmTwoOpt:
		return SolverFunc(func(_ context.Context, l []model.Location, v model.Vehicle, o model.OptimizationOptions) (model.RouteSolution, error) {
			return e.TwoOpt(l, v, o), nil
		}), nil
	case model.AlgorithmGenetic:
		return SolverFunc(e.Genetic), nil
	case model.AlgorithmSimulatedAnnealing:
		return SolverFunc(e.SimulatedAnnealing), nil
	}
	return nil, fmt.Errorf("%w: unknown algorithm %q", model.ErrInvalidInput, algo)
}

// table is the immutable location arena candidate orders index into.
type table struct {
	locs    []model.Location
	points  []geo.Point
	windows [][]window
}

type window struct {
	clock.Window
	kind model.WindowKind
}

func newTable(locs []model.Location) *table {
	t := &table{
		locs:    locs,
		points:  make([]geo.Point, len(locs)),
		windows: make([][]window, len(locs)),
	}
	for i, l := range locs {
		t.points[i] = locationPoint(l)
		for _, tw := range l.TimeWindows {
			w, err := clock.ParseWindow(tw)
			if err != nil {
				continue
			}
			t.windows[i] = append(t.windows[i], window{Window: w, kind: tw.Kind})
		}
	}
	return t
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Point ids carry the coordinates so a reused Engine never serves a memoized
// distance for an id whose position has changed.
func locationPoint(l model.Location) geo.Point {
	return geo.Point{ID: fmt.Sprintf("loc:%s@%.6f,%.6f", l.ID, l.Coordinates.Lat, l.Coordinates.Lng), Coords: l.Coordinates}
}

func startPoint(v model.Vehicle) geo.Point {
	return geo.Point{ID: fmt.Sprintf("start:%s@%.6f,%.6f", v.ID, v.StartLocation.Lat, v.StartLocation.Lng), Coords: v.StartLocation}
}

func endPoint(v model.Vehicle) geo.Point {
	return geo.Point{ID: fmt.Sprintf("end:%s@%.6f,%.6f", v.ID, v.EndLocation.Lat, v.EndLocation.Lng), Coords: *v.EndLocation}
}
