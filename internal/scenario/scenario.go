// Package scenario reads optimization inputs from YAML files, the format
// used by the solve command and the sample data.
package scenario

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"routeopt/internal/model"
)

type Scenario struct {
	Name      string     `yaml:"name"`
	PlanDate  string     `yaml:"planDate"`
	Options   Options    `yaml:"options"`
	Vehicles  []Vehicle  `yaml:"vehicles"`
	Locations []Location `yaml:"locations"`
}

type Options struct {
	Algorithm             string `yaml:"algorithm"`
	ClusterAlgorithm      string `yaml:"clusterAlgorithm"`
	PrioritizeTimeWindows bool   `yaml:"prioritizeTimeWindows"`
	AllowViolations       bool   `yaml:"allowViolations"`
	IncludeBreaks         bool   `yaml:"includeBreaks"`
	ConsiderTraffic       bool   `yaml:"considerTraffic"`
	BalanceWorkload       bool   `yaml:"balanceWorkload"`
	MaxIterations         int    `yaml:"maxIterations"`
	Seed                  int64  `yaml:"seed"`
	Restarts              int    `yaml:"restarts"`
}

// Point is written as [lat, lng].
type Point [2]float64

type Vehicle struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Capacity  int     `yaml:"capacity"`
	Start     Point   `yaml:"start"`
	End       *Point  `yaml:"end"`
	Hours     string  `yaml:"hours"` // "08:00-17:00"
	SpeedKmh  float64 `yaml:"speedKmh"`
	CostPerKm float64 `yaml:"costPerKm"`
	Break     *struct {
		Minutes    int     `yaml:"minutes"`
		AfterHours float64 `yaml:"afterHours"`
	} `yaml:"break"`
}

type Window struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Type  string `yaml:"type"`
}

type Location struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Address     string   `yaml:"address"`
	At          Point    `yaml:"at"`
	Type        string   `yaml:"type"`
	Priority    int      `yaml:"priority"`
	Duration    int      `yaml:"duration"`
	Windows     []Window `yaml:"windows"`
	RequiresKey bool     `yaml:"requiresKey"`
	AccessCode  string   `yaml:"accessCode"`
	AccessNotes string   `yaml:"accessNotes"`
}

// Load reads and decodes a scenario file.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode rejects unknown keys so typos do not silently drop constraints.
func Decode(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ToModel converts the scenario into an optimization request.
func (s *Scenario) ToModel() (model.OptimizeRequest, error) {
	req := model.OptimizeRequest{
		PlanDate: s.PlanDate,
		Options: model.OptimizationOptions{
			Algorithm:             model.Algorithm(s.Options.Algorithm),
			ClusterAlgorithm:      model.Algorithm(s.Options.ClusterAlgorithm),
			PrioritizeTimeWindows: s.Options.PrioritizeTimeWindows,
			AllowViolations:       s.Options.AllowViolations,
			IncludeBreaks:         s.Options.IncludeBreaks,
			ConsiderTraffic:       s.Options.ConsiderTraffic,
			BalanceWorkload:       s.Options.BalanceWorkload,
			MaxIterations:         s.Options.MaxIterations,
			Seed:                  s.Options.Seed,
			Restarts:              s.Options.Restarts,
		},
	}
	for _, v := range s.Vehicles {
		mv, err := v.toModel()
		if err != nil {
			return model.OptimizeRequest{}, err
		}
		req.Vehicles = append(req.Vehicles, mv)
	}
	for _, l := range s.Locations {
		req.Locations = append(req.Locations, l.toModel())
	}
	return req, nil
}

func (p Point) coords() model.Coordinates { return model.Coordinates{Lat: p[0], Lng: p[1]} }

func (v Vehicle) toModel() (model.Vehicle, error) {
	hours := v.Hours
	if hours == "" {
		hours = "08:00-17:00"
	}
	start, end, ok := strings.Cut(hours, "-")
	if !ok || strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return model.Vehicle{}, fmt.Errorf("vehicle %s: hours %q: want HH:MM-HH:MM", v.ID, v.Hours)
	}
	out := model.Vehicle{
		ID:             v.ID,
		Name:           v.Name,
		Capacity:       v.Capacity,
		StartLocation:  v.Start.coords(),
		AvailableHours: model.Hours{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)},
		SpeedKmh:       v.SpeedKmh,
		CostPerKm:      v.CostPerKm,
	}
	if out.SpeedKmh == 0 {
		out.SpeedKmh = 30
	}
	if v.End != nil {
		c := v.End.coords()
		out.EndLocation = &c
	}
	if v.Break != nil {
		out.Breaks = &model.BreakPolicy{Duration: v.Break.Minutes, AfterHours: v.Break.AfterHours}
	}
	return out, nil
}

func (l Location) toModel() model.Location {
	out := model.Location{
		ID:                l.ID,
		Name:              l.Name,
		Address:           l.Address,
		Coordinates:       l.At.coords(),
		Type:              l.Type,
		Priority:          l.Priority,
		EstimatedDuration: l.Duration,
	}
	for _, w := range l.Windows {
		kind := model.WindowKind(w.Type)
		if kind == "" {
			kind = model.WindowPreferred
		}
		out.TimeWindows = append(out.TimeWindows, model.TimeWindow{Start: w.Start, End: w.End, Kind: kind})
	}
	if l.RequiresKey || l.AccessCode != "" || l.AccessNotes != "" {
		out.Access = &model.AccessInfo{RequiresKey: l.RequiresKey, Code: l.AccessCode, Instructions: l.AccessNotes}
	}
	return out
}
