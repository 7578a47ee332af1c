package opt

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeopt/internal/geo"
	"routeopt/internal/model"
)

func randomLocations(seed int64, n int) []model.Location {
	rng := rand.New(rand.NewSource(seed))
	out := make([]model.Location, n)
	for i := range out {
		out[i] = loc(string(rune('A'+i%26))+string(rune('a'+i/26)), 40+rng.Float64()*0.2, -74+rng.Float64()*0.2, 15+rng.Intn(30))
	}
	return out
}

func ids(locs []model.Location) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.ID
	}
	sort.Strings(out)
	return out
}

func allSolvers(e *Engine) map[model.Algorithm]Solver {
	out := map[model.Algorithm]Solver{}
	for _, a := range []model.Algorithm{model.AlgorithmNearestNeighbor, model.AlgorithmTwoOpt, model.AlgorithmGenetic, model.AlgorithmSimulatedAnnealing} {
		s, err := e.Solver(a)
		if err != nil {
			panic(err)
		}
		out[a] = s
	}
	return out
}

func TestSolversPreserveLocations(t *testing.T) {
	locs := randomLocations(3, 12)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	o := model.OptimizationOptions{MaxIterations: 30}
	for algo, s := range allSolvers(NewEngine(WithSeed(11))) {
		sol, err := s.Solve(context.Background(), locs, v, o)
		require.NoError(t, err, algo)
		assert.Equal(t, ids(locs), ids(sol.Locations()), algo)
		for i, st := range sol.Stops {
			assert.Equal(t, i+1, st.Order, algo)
		}
		assert.GreaterOrEqual(t, sol.Efficiency, 0.0, algo)
		assert.LessOrEqual(t, sol.Efficiency, 100.0, algo)
		assertTimesNonDecreasing(t, sol)
	}
}

func TestSolversDoNotMutateInput(t *testing.T) {
	locs := randomLocations(5, 8)
	before := append([]model.Location(nil), locs...)
	v := vehicleAt(model.Coordinates{Lat: 40, Lng: -74})
	for algo, s := range allSolvers(NewEngine(WithSeed(2))) {
		_, err := s.Solve(context.Background(), locs, v, model.OptimizationOptions{MaxIterations: 10})
		require.NoError(t, err, algo)
		assert.Equal(t, before, locs, algo)
	}
}

func TestNearestNeighborVisitsLineInOrder(t *testing.T) {
	start := model.Coordinates{Lat: 0, Lng: 0}
	// shuffled input along a meridian
	locs := []model.Location{
		loc("p3", 0.03, 0, 10),
		loc("p1", 0.01, 0, 10),
		loc("p5", 0.05, 0, 10),
		loc("p2", 0.02, 0, 10),
		loc("p4", 0.04, 0, 10),
	}
	sol := NewEngine().NearestNeighbor(locs, vehicleAt(start), model.OptimizationOptions{})

	got := make([]string, len(sol.Stops))
	want := 0.0
	prev := start
	for i, st := range sol.Stops {
		got[i] = st.Location.ID
		want += geo.Distance(prev, st.Location.Coordinates)
		prev = st.Location.Coordinates
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, got)
	assert.InDelta(t, want, sol.TotalDistance, 1e-9)
	assert.InDelta(t, geo.Distance(start, model.Coordinates{Lat: 0.05}), sol.TotalDistance, 1e-6)
}

func TestNearestNeighborDeterministic(t *testing.T) {
	locs := randomLocations(9, 15)
	v := vehicleAt(model.Coordinates{Lat: 40.05, Lng: -73.95})
	a := NewEngine().NearestNeighbor(locs, v, model.OptimizationOptions{})
	b := NewEngine(WithSeed(99)).NearestNeighbor(locs, v, model.OptimizationOptions{})
	assert.Equal(t, a, b)
}

func TestNearestNeighborTiesKeepInputOrder(t *testing.T) {
	here := model.Coordinates{Lat: 1, Lng: 1}
	locs := []model.Location{loc("x", 1, 1, 5), loc("y", 1, 1, 5), loc("z", 1, 1, 5)}
	sol := NewEngine().NearestNeighbor(locs, vehicleAt(here), model.OptimizationOptions{})
	assert.Equal(t, []string{"x", "y", "z"}, []string{sol.Stops[0].Location.ID, sol.Stops[1].Location.ID, sol.Stops[2].Location.ID})
}

func TestTwoOptNeverWorseThanNearestNeighbor(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		locs := randomLocations(seed, 20)
		v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
		nn := NewEngine().NearestNeighbor(locs, v, model.OptimizationOptions{})
		two := NewEngine().TwoOpt(locs, v, model.OptimizationOptions{})
		assert.LessOrEqual(t, two.TotalDistance, nn.TotalDistance+1e-9)
	}
}

func TestOrderCrossoverProducesPermutation(t *testing.T) {
	e := NewEngine(WithSeed(4))
	for i := 0; i < 200; i++ {
		p1, p2 := e.rng.Perm(9), e.rng.Perm(9)
		child := e.orderCrossover(p1, p2)
		sorted := append([]int(nil), child...)
		sort.Ints(sorted)
		assert.Equal(t, identity(9), sorted)
	}
}

func TestStochasticSolversReproducibleWithSeed(t *testing.T) {
	locs := randomLocations(21, 10)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	o := model.OptimizationOptions{MaxIterations: 40}

	ga1, err := NewEngine(WithSeed(42)).Genetic(context.Background(), locs, v, o)
	require.NoError(t, err)
	ga2, err := NewEngine(WithSeed(42)).Genetic(context.Background(), locs, v, o)
	require.NoError(t, err)
	assert.Equal(t, ga1, ga2)

	sa1, err := NewEngine(WithSeed(42)).SimulatedAnnealing(context.Background(), locs, v, o)
	require.NoError(t, err)
	sa2, err := NewEngine(WithSeed(42)).SimulatedAnnealing(context.Background(), locs, v, o)
	require.NoError(t, err)
	assert.Equal(t, sa1, sa2)
}

func TestAnnealingReturnsBestSeen(t *testing.T) {
	locs := randomLocations(8, 10)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	e := NewEngine(WithSeed(5))
	sol, err := e.SimulatedAnnealing(context.Background(), locs, v, model.OptimizationOptions{MaxIterations: 500})
	require.NoError(t, err)
	assert.Equal(t, 500, e.Stats().Iterations)
	assert.Equal(t, 501, e.Stats().Evaluations)
	assert.InDelta(t, e.Stats().BestDistance, sol.TotalDistance, 1e-9)
}

func TestGeneticCountsGenerations(t *testing.T) {
	locs := randomLocations(8, 6)
	e := NewEngine(WithSeed(5))
	_, err := e.Genetic(context.Background(), locs, vehicleAt(model.Coordinates{Lat: 40, Lng: -74}), model.OptimizationOptions{MaxIterations: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, e.Stats().Iterations)
	// initial population, one per generation, and the final re-evaluation
	assert.Equal(t, populationSize*8+1, e.Stats().Evaluations)
}

func TestCancelledSolversReturnBestSoFar(t *testing.T) {
	locs := randomLocations(13, 10)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ga, err := NewEngine(WithSeed(1)).Genetic(ctx, locs, v, model.OptimizationOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, ga.Stops, len(locs))

	sa, err := NewEngine(WithSeed(1)).SimulatedAnnealing(ctx, locs, v, model.OptimizationOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sa.Stops, len(locs))
}

func TestTimeBudgetStopsWithoutError(t *testing.T) {
	locs := randomLocations(17, 10)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	e := NewEngine(WithSeed(1), WithTimeBudget(time.Nanosecond))
	sol, err := e.SimulatedAnnealing(context.Background(), locs, v, model.OptimizationOptions{MaxIterations: 1_000_000})
	require.NoError(t, err)
	assert.Len(t, sol.Stops, len(locs))
	assert.Less(t, e.Stats().Iterations, 1_000_000)
}

func TestProgressReported(t *testing.T) {
	var got []Progress
	e := NewEngine(WithSeed(3), WithProgress(func(p Progress) { got = append(got, p) }))
	_, err := e.Genetic(context.Background(), randomLocations(1, 6), vehicleAt(model.Coordinates{Lat: 40, Lng: -74}), model.OptimizationOptions{MaxIterations: 5})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, 5, got[4].Iteration)
	assert.Equal(t, model.AlgorithmGenetic, got[4].Algorithm)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i].BestDistance, got[i-1].BestDistance+1e-9)
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	_, err := NewEngine().Solver("tabu")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestTimeBudgetArmedPerSolverCall(t *testing.T) {
	locs := randomLocations(21, 8)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	e := NewEngine(WithSeed(2), WithTimeBudget(20*time.Millisecond))
	o := model.OptimizationOptions{MaxIterations: 50}

	_, err := e.SimulatedAnnealing(context.Background(), locs, v, o)
	require.NoError(t, err)
	first := e.Stats().Iterations
	require.Equal(t, 50, first)

	// the first call's budget has long run out; the second gets its own
	time.Sleep(30 * time.Millisecond)
	_, err = e.SimulatedAnnealing(context.Background(), locs, v, o)
	require.NoError(t, err)
	assert.Equal(t, 50, e.Stats().Iterations-first)

	time.Sleep(30 * time.Millisecond)
	before := e.Stats().Iterations
	_, err = e.Genetic(context.Background(), locs, v, model.OptimizationOptions{MaxIterations: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, e.Stats().Iterations-before)
}
