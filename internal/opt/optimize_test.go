package opt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeopt/internal/geo"
	"routeopt/internal/model"
)

func TestClusterPartitionsInput(t *testing.T) {
	locs := randomLocations(31, 23)
	e := NewEngine(WithSeed(8))
	groups := e.Cluster(locs, 5)

	require.Len(t, groups, 5)
	seen := map[string]int{}
	total := 0
	for i, g := range groups {
		assert.NotEmpty(t, g.Locations)
		assert.Equal(t, "cluster_"+string(rune('0'+i)), g.ID)
		dur := 0
		for _, l := range g.Locations {
			seen[l.ID]++
			dur += l.EstimatedDuration
		}
		assert.Equal(t, dur, g.TotalDuration)
		assert.GreaterOrEqual(t, g.Radius, 0.0)
		total += len(g.Locations)
	}
	assert.Equal(t, len(locs), total)
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}

func TestClusterSmallInputIsOneGroup(t *testing.T) {
	locs := randomLocations(1, 4)
	groups := NewEngine().Cluster(locs, 10)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Locations, 4)
	assert.Nil(t, NewEngine().Cluster(nil, 3))
}

func TestOptimizeSingleVehicle(t *testing.T) {
	locs := randomLocations(2, 8)
	vehicles := []model.Vehicle{vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9}), vehicleAt(model.Coordinates{Lat: 41, Lng: -73})}
	res, err := Optimize(context.Background(), locs, vehicles, model.OptimizationOptions{})
	require.NoError(t, err)

	require.Len(t, res.Routes, 1)
	assert.Equal(t, "van-1", res.Routes[0].Vehicle.ID)
	assert.Equal(t, string(model.AlgorithmNearestNeighbor), res.Algorithm)
	assert.Equal(t, ids(locs), ids(res.Routes[0].Locations()))
	assert.Empty(t, res.UnassignedLocations)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 8, res.Summary.AssignedLocations)
	assert.Equal(t, 1, res.Summary.VehiclesUsed)
	assert.InDelta(t, res.Routes[0].TotalDistance, res.Summary.TotalDistance, 1e-9)
	assert.Equal(t, res.Routes[0].Efficiency, res.Summary.AverageEfficiency)
	assert.Zero(t, res.Summary.WorkloadStdDev)
	assert.Positive(t, res.Stats.Evaluations)
}

func TestOptimizeClusterFirstReportsUnassigned(t *testing.T) {
	locs := randomLocations(6, 20)
	v1 := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	v1.Capacity = 5
	v2 := v1
	v2.ID = "van-2"
	o := model.OptimizationOptions{Algorithm: model.AlgorithmClusterFirst, Seed: 12}

	res, err := Optimize(context.Background(), locs, []model.Vehicle{v1, v2}, o)
	require.NoError(t, err)
	assert.Equal(t, "cluster_first:nearest_neighbor", res.Algorithm)
	require.Len(t, res.Routes, 2)
	assert.Equal(t, "van-1", res.Routes[0].Vehicle.ID)
	assert.Equal(t, "van-2", res.Routes[1].Vehicle.ID)

	var all []model.Location
	for _, r := range res.Routes {
		all = append(all, r.Locations()...)
	}
	all = append(all, res.UnassignedLocations...)
	assert.Equal(t, ids(locs), ids(all))
	assert.NotEmpty(t, res.UnassignedLocations)
	assert.Equal(t, 20, res.Summary.TotalLocations)
	assert.Equal(t, 20-len(res.UnassignedLocations), res.Summary.AssignedLocations)
}

func TestOptimizeBalanceWorkloadOrdersClusters(t *testing.T) {
	locs := randomLocations(6, 20)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	v.Capacity = 5
	o := model.OptimizationOptions{Algorithm: model.AlgorithmClusterFirst, BalanceWorkload: true, Seed: 12}

	res, err := Optimize(context.Background(), locs, []model.Vehicle{v}, o)
	require.NoError(t, err)
	for i := 1; i < len(res.Clusters); i++ {
		assert.GreaterOrEqual(t, res.Clusters[i-1].TotalDuration, res.Clusters[i].TotalDuration)
	}
	require.Len(t, res.Routes, 1)
	assert.Len(t, res.Routes[0].Stops, len(res.Clusters[0].Locations))
}

func TestOptimizeNestedClusterAlgorithm(t *testing.T) {
	locs := randomLocations(4, 12)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	v.Capacity = 6
	o := model.OptimizationOptions{Algorithm: model.AlgorithmClusterFirst, ClusterAlgorithm: model.AlgorithmGenetic, MaxIterations: 5, Seed: 3}
	res, err := Optimize(context.Background(), locs, []model.Vehicle{v, v}, o)
	require.NoError(t, err)
	assert.Equal(t, "cluster_first:genetic", res.Algorithm)

	o.ClusterAlgorithm = model.AlgorithmClusterFirst
	_, err = Optimize(context.Background(), locs, []model.Vehicle{v}, o)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestOptimizeRejectsBadInput(t *testing.T) {
	locs := randomLocations(1, 3)
	_, err := Optimize(context.Background(), locs, nil, model.OptimizationOptions{})
	assert.ErrorIs(t, err, model.ErrNoVehicle)

	v := vehicleAt(model.Coordinates{Lat: 40, Lng: -74})
	_, err = Optimize(context.Background(), locs, []model.Vehicle{v}, model.OptimizationOptions{Algorithm: "tabu"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestOptimizeCriticalResultIsStillReturned(t *testing.T) {
	v := vehicleAt(model.Coordinates{Lat: 40, Lng: -74})
	late := loc("late", 40.01, -74, 20)
	late.TimeWindows = []model.TimeWindow{{Start: "05:00", End: "06:00", Kind: model.WindowRequired}}
	locs := []model.Location{loc("a", 40.02, -74, 20), late}

	res, err := Optimize(context.Background(), locs, []model.Vehicle{v}, model.OptimizationOptions{})
	require.NoError(t, err)
	require.Len(t, res.Routes[0].Stops, 2)
	assert.Equal(t, 1, res.Summary.CriticalCount)
	assert.False(t, res.Feasible())
	assert.False(t, res.Acceptable())

	res, err = Optimize(context.Background(), locs, []model.Vehicle{v}, model.OptimizationOptions{AllowViolations: true})
	require.NoError(t, err)
	assert.True(t, res.Acceptable())
}

func TestOptimizeRestartsReproducible(t *testing.T) {
	locs := randomLocations(44, 10)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	o := model.OptimizationOptions{Algorithm: model.AlgorithmSimulatedAnnealing, MaxIterations: 200, Restarts: 4, Seed: 77}

	a, err := Optimize(context.Background(), locs, []model.Vehicle{v}, o)
	require.NoError(t, err)
	b, err := Optimize(context.Background(), locs, []model.Vehicle{v}, o)
	require.NoError(t, err)
	assert.Equal(t, a.Routes, b.Routes)
	assert.Equal(t, int64(77), a.Stats.Seed)
	assert.Equal(t, 4*200, a.Stats.Iterations)

	single, err := Optimize(context.Background(), locs, []model.Vehicle{v}, model.OptimizationOptions{Algorithm: model.AlgorithmSimulatedAnnealing, MaxIterations: 200, Seed: 77})
	require.NoError(t, err)
	assert.Equal(t, 200, single.Stats.Iterations)
}

func TestOptimizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	locs := randomLocations(3, 6)
	v := vehicleAt(model.Coordinates{Lat: 40.1, Lng: -73.9})
	res, err := Optimize(ctx, locs, []model.Vehicle{v}, model.OptimizationOptions{Algorithm: model.AlgorithmGenetic})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Routes, 1)
	assert.Len(t, res.Routes[0].Stops, 6)
}

func TestReusedEngineSeesMovedLocation(t *testing.T) {
	v := vehicleAt(model.Coordinates{Lat: 0, Lng: 0})
	o := model.OptimizationOptions{Algorithm: model.AlgorithmNearestNeighbor}
	e := NewEngine(WithSeed(1))

	first, err := e.Optimize(context.Background(), []model.Location{loc("job", 0.1, 0, 30)}, []model.Vehicle{v}, o)
	require.NoError(t, err)
	moved := loc("job", 0.5, 0, 30)
	reused, err := e.Optimize(context.Background(), []model.Location{moved}, []model.Vehicle{v}, o)
	require.NoError(t, err)
	fresh, err := NewEngine(WithSeed(1)).Optimize(context.Background(), []model.Location{moved}, []model.Vehicle{v}, o)
	require.NoError(t, err)

	want := geo.Distance(v.StartLocation, moved.Coordinates)
	assert.InDelta(t, want, reused.Routes[0].TotalDistance, 1e-9)
	assert.InDelta(t, want, reused.Routes[0].Stops[0].DistanceFromPrevious, 1e-9)
	assert.InDelta(t, fresh.Routes[0].TotalDistance, reused.Routes[0].TotalDistance, 1e-9)
	assert.Less(t, first.Routes[0].TotalDistance, reused.Routes[0].TotalDistance)
}
