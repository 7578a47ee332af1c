package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVehicle() Vehicle {
	return Vehicle{
		ID:             "v1",
		Capacity:       5,
		StartLocation:  Coordinates{Lat: 52.37, Lng: 4.89},
		AvailableHours: Hours{Start: "08:00", End: "17:00"},
		SpeedKmh:       30,
		CostPerKm:      0.5,
	}
}

func TestValidateNoVehicle(t *testing.T) {
	err := Validate(nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoVehicle))
}

func TestValidateLocationErrors(t *testing.T) {
	cases := map[string]Location{
		"missing id":   {Coordinates: Coordinates{Lat: 1, Lng: 1}},
		"nan coords":   {ID: "a", Coordinates: Coordinates{Lat: math.NaN(), Lng: 1}},
		"out of range": {ID: "a", Coordinates: Coordinates{Lat: 91, Lng: 1}},
		"negative dur": {ID: "a", EstimatedDuration: -1},
		"bad window":   {ID: "a", TimeWindows: []TimeWindow{{Start: "9", End: "10:00", Kind: WindowRequired}}},
		"bad kind":     {ID: "a", TimeWindows: []TimeWindow{{Start: "09:00", End: "10:00", Kind: "sometimes"}}},
	}
	for name, loc := range cases {
		err := Validate([]Location{loc}, []Vehicle{validVehicle()})
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrInvalidInput), name)
	}
}

func TestValidateDuplicateLocation(t *testing.T) {
	l := Location{ID: "a", Coordinates: Coordinates{Lat: 1, Lng: 1}}
	err := Validate([]Location{l, l}, []Vehicle{validVehicle()})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateVehicleErrors(t *testing.T) {
	mutate := []func(*Vehicle){
		func(v *Vehicle) { v.ID = "" },
		func(v *Vehicle) { v.Capacity = 0 },
		func(v *Vehicle) { v.SpeedKmh = 0 },
		func(v *Vehicle) { v.CostPerKm = -1 },
		func(v *Vehicle) { v.AvailableHours.Start = "25:00" },
		func(v *Vehicle) { v.Breaks = &BreakPolicy{Duration: 30} },
		func(v *Vehicle) { v.EndLocation = &Coordinates{Lat: 0, Lng: 200} },
	}
	for i, m := range mutate {
		v := validVehicle()
		m(&v)
		assert.ErrorIs(t, ValidateVehicle(v), ErrInvalidInput, "case %d", i)
	}
	assert.NoError(t, ValidateVehicle(validVehicle()))
}

func TestRouteSolutionFeasibility(t *testing.T) {
	r := RouteSolution{Violations: []RouteViolation{{Severity: SeverityMajor}}}
	assert.True(t, r.IsFeasible())
	r.Violations = append(r.Violations, RouteViolation{Severity: SeverityCritical})
	assert.False(t, r.IsFeasible())
	assert.Equal(t, 1, r.CountSeverity(SeverityCritical))

	res := OptimizationResult{Routes: []RouteSolution{r}}
	assert.False(t, res.Feasible())
	assert.False(t, res.Acceptable())
	res.AllowViolations = true
	assert.True(t, res.Acceptable())
}
