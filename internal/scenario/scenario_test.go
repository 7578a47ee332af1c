package scenario

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeopt/internal/model"
	"routeopt/internal/opt"
)

const sample = `name: downtown offices
planDate: "2026-10-17"
options:
  algorithm: cluster_first
  clusterAlgorithm: two_opt
  includeBreaks: true
  seed: 42
vehicles:
  - id: van-1
    capacity: 4
    start: [45.0703, 7.6869]
    end: [45.0703, 7.6869]
    hours: "07:30-16:00"
    costPerKm: 0.4
    break:
      minutes: 30
      afterHours: 4
locations:
  - id: bank
    name: Banca Centrale
    at: [45.0677, 7.6825]
    duration: 90
    windows:
      - {start: "06:00", end: "08:30", type: required}
  - id: gym
    name: Palestra Nord
    at: [45.0801, 7.6712]
    duration: 60
    requiresKey: true
    accessCode: "4471"
`

func TestDecodeAndConvert(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, "downtown offices", s.Name)

	req, err := s.ToModel()
	require.NoError(t, err)
	require.Len(t, req.Vehicles, 1)
	v := req.Vehicles[0]
	assert.Equal(t, model.Hours{Start: "07:30", End: "16:00"}, v.AvailableHours)
	assert.Equal(t, 30.0, v.SpeedKmh)
	require.NotNil(t, v.EndLocation)
	assert.Equal(t, 45.0703, v.EndLocation.Lat)
	assert.Equal(t, &model.BreakPolicy{Duration: 30, AfterHours: 4}, v.Breaks)

	require.Len(t, req.Locations, 2)
	assert.Equal(t, model.Coordinates{Lat: 45.0677, Lng: 7.6825}, req.Locations[0].Coordinates)
	assert.Equal(t, model.WindowRequired, req.Locations[0].TimeWindows[0].Kind)
	assert.Nil(t, req.Locations[0].Access)
	assert.Equal(t, "4471", req.Locations[1].Access.Code)

	assert.Equal(t, model.AlgorithmClusterFirst, req.Options.Algorithm)
	assert.Equal(t, model.AlgorithmTwoOpt, req.Options.ClusterAlgorithm)
	assert.Equal(t, int64(42), req.Options.Seed)
	assert.True(t, req.Options.IncludeBreaks)
	require.NoError(t, model.Validate(req.Locations, req.Vehicles))
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("vehicles:\n  - id: a\n    capacty: 3\n"))
	assert.Error(t, err)
}

func TestBadHours(t *testing.T) {
	s := &Scenario{Vehicles: []Vehicle{{ID: "v", Hours: "morning"}}}
	_, err := s.ToModel()
	assert.ErrorContains(t, err, "hours")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Locations, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBundledScenarioSolves(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "scenarios", "manhattan.yaml"))
	require.NoError(t, err)
	req, err := s.ToModel()
	require.NoError(t, err)
	require.Len(t, req.Vehicles, 2)
	require.Len(t, req.Locations, 9)

	res, err := opt.Optimize(context.Background(), req.Locations, req.Vehicles, req.Options)
	require.NoError(t, err)
	assigned := len(res.UnassignedLocations)
	for _, rt := range res.Routes {
		assigned += len(rt.Stops)
	}
	assert.Equal(t, 9, assigned)
	assert.Equal(t, "cluster_first:two_opt", res.Algorithm)
}
