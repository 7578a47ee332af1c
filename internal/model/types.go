package model

import "time"

// Core domain types for route optimization. Everything here is built per
// optimization call and treated as an immutable value afterwards.

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type WindowKind string

const (
	WindowPreferred   WindowKind = "preferred"
	WindowRequired    WindowKind = "required"
	WindowUnavailable WindowKind = "unavailable"
)

// TimeWindow is a same-day interval in "HH:MM" form.
type TimeWindow struct {
	Start string     `json:"start"`
	End   string     `json:"end"`
	Kind  WindowKind `json:"type"`
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type AccessInfo struct {
	Instructions string `json:"instructions,omitempty"`
	RequiresKey  bool   `json:"requiresKey,omitempty"`
	Code         string `json:"code,omitempty"`
}

// Location is a service site (a cleaning job).
type Location struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Address           string       `json:"address,omitempty"`
	Coordinates       Coordinates  `json:"coordinates"`
	Type              string       `json:"type,omitempty"`
	Priority          int          `json:"priority,omitempty"`
	TimeWindows       []TimeWindow `json:"timeWindows,omitempty"`
	EstimatedDuration int          `json:"estimatedDuration"` // minutes
	Contact           *Contact     `json:"contact,omitempty"`
	Access            *AccessInfo  `json:"access,omitempty"`
}

type Hours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BreakPolicy inserts a break of Duration minutes once AfterHours of work
// have accumulated since the previous break.
type BreakPolicy struct {
	Duration   int     `json:"duration"`
	AfterHours float64 `json:"afterHours"`
}

type Vehicle struct {
	ID             string       `json:"id"`
	Name           string       `json:"name,omitempty"`
	Capacity       int          `json:"capacity"`
	StartLocation  Coordinates  `json:"startLocation"`
	EndLocation    *Coordinates `json:"endLocation,omitempty"`
	AvailableHours Hours        `json:"availableHours"`
	SpeedKmh       float64      `json:"speedKmh"`
	CostPerKm      float64      `json:"costPerKm"`
	Breaks         *BreakPolicy `json:"breaks,omitempty"`
}

type RouteStop struct {
	Location             Location `json:"location"`
	ArrivalTime          string   `json:"arrivalTime"`
	DepartureTime        string   `json:"departureTime"`
	Order                int      `json:"order"`
	TravelTime           int      `json:"travelTime"`
	DistanceFromPrevious float64  `json:"distanceFromPrevious"`
	WaitTime             int      `json:"waitTime,omitempty"`
}

type BreakStop struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  int    `json:"duration"`
	// AfterStop is the order of the last completed stop, 0 before the first.
	AfterStop int `json:"afterStop"`
}

type ViolationType string

const (
	ViolationTimeWindow ViolationType = "time_window"
	ViolationCapacity   ViolationType = "capacity"
	ViolationDuration   ViolationType = "duration"
	ViolationAccess     ViolationType = "access"
)

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

type RouteViolation struct {
	Type         ViolationType `json:"type"`
	Severity     Severity      `json:"severity"`
	LocationID   string        `json:"locationId,omitempty"`
	Description  string        `json:"description"`
	SuggestedFix string        `json:"suggestedFix,omitempty"`
}

type RouteSolution struct {
	Vehicle       Vehicle          `json:"vehicle"`
	Stops         []RouteStop      `json:"stops"`
	TotalDistance float64          `json:"totalDistance"` // km
	TotalTime     int              `json:"totalTime"`     // minutes
	TotalCost     float64          `json:"totalCost"`
	Efficiency    float64          `json:"efficiency"`
	StartTime     string           `json:"startTime"`
	EndTime       string           `json:"endTime"`
	Breaks        []BreakStop      `json:"breaks"`
	Violations    []RouteViolation `json:"violations"`
}

// Locations returns the visited locations in stop order.
func (r RouteSolution) Locations() []Location {
	out := make([]Location, len(r.Stops))
	for i, s := range r.Stops {
		out[i] = s.Location
	}
	return out
}

// IsFeasible reports whether the route carries no critical violation.
// Routes with critical violations are still returned as best-effort plans.
func (r RouteSolution) IsFeasible() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityCritical {
			return false
		}
	}
	return true
}

// CountSeverity returns the number of violations with the given severity.
func (r RouteSolution) CountSeverity(s Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == s {
			n++
		}
	}
	return n
}

type ClusterGroup struct {
	ID            string      `json:"id"`
	Locations     []Location  `json:"locations"`
	Centroid      Coordinates `json:"centroid"`
	Radius        float64     `json:"radius"`        // km
	TotalDuration int         `json:"totalDuration"` // minutes
}

type Algorithm string

const (
	AlgorithmNearestNeighbor    Algorithm = "nearest_neighbor"
	AlgorithmGenetic            Algorithm = "genetic"
	AlgorithmSimulatedAnnealing Algorithm = "simulated_annealing"
	AlgorithmTwoOpt             Algorithm = "two_opt"
	AlgorithmClusterFirst       Algorithm = "cluster_first"
)

// Stochastic reports whether the algorithm consumes randomness.
func (a Algorithm) Stochastic() bool {
	return a == AlgorithmGenetic || a == AlgorithmSimulatedAnnealing
}

// TrafficProfile returns the travel-time multiplier for a departure at the
// given minute of the operating day.
type TrafficProfile func(minuteOfDay int) float64

type OptimizationOptions struct {
	Algorithm             Algorithm `json:"algorithm,omitempty"`
	PrioritizeTimeWindows bool      `json:"prioritizeTimeWindows,omitempty"`
	AllowViolations       bool      `json:"allowViolations,omitempty"`
	IncludeBreaks         bool      `json:"includeBreaks,omitempty"`
	ConsiderTraffic       bool      `json:"considerTraffic,omitempty"`
	BalanceWorkload       bool      `json:"balanceWorkload,omitempty"`
	MaxIterations         int       `json:"maxIterations,omitempty"`
	// ClusterAlgorithm is the solver used per cluster in cluster_first mode.
	ClusterAlgorithm Algorithm `json:"clusterAlgorithm,omitempty"`
	// Seed drives the genetic/annealing rng and cluster seeding; 0 picks one.
	Seed int64 `json:"seed,omitempty"`
	// Restarts runs that many independent seeded solver runs and keeps the best.
	Restarts int            `json:"restarts,omitempty"`
	Traffic  TrafficProfile `json:"-"`
}

type Summary struct {
	TotalDistance     float64 `json:"totalDistance"`
	TotalTime         int     `json:"totalTime"`
	TotalCost         float64 `json:"totalCost"`
	AverageEfficiency float64 `json:"averageEfficiency"`
	TotalLocations    int     `json:"totalLocations"`
	AssignedLocations int     `json:"assignedLocations"`
	VehiclesUsed      int     `json:"vehiclesUsed"`
	Violations        int     `json:"violations"`
	CriticalCount     int     `json:"criticalViolations"`
	// WorkloadStdDev is the standard deviation of route durations in minutes.
	WorkloadStdDev float64 `json:"workloadStdDev"`
}

// RunStats describes the search effort spent on one optimization.
type RunStats struct {
	Evaluations   int     `json:"evaluations"`
	Iterations    int     `json:"iterations"`
	Improvements  int     `json:"improvements"`
	AcceptedWorse int     `json:"acceptedWorse"`
	BestDistance  float64 `json:"bestDistance"`
	Seed          int64   `json:"seed"`
}

type OptimizationResult struct {
	ID                  string          `json:"id"`
	Routes              []RouteSolution `json:"routes"`
	Clusters            []ClusterGroup  `json:"clusters,omitempty"`
	UnassignedLocations []Location      `json:"unassignedLocations"`
	Summary             Summary         `json:"summary"`
	ComputationTime     time.Duration   `json:"computationTimeNs"`
	Algorithm           string          `json:"algorithm"`
	AllowViolations     bool            `json:"allowViolations"`
	Stats               RunStats        `json:"stats"`
}

// Feasible reports whether every produced route is free of critical violations.
func (r OptimizationResult) Feasible() bool {
	for _, rt := range r.Routes {
		if !rt.IsFeasible() {
			return false
		}
	}
	return true
}

// Acceptable applies the caller's AllowViolations policy: a result is
// acceptable when it is feasible, or when violations were explicitly allowed.
func (r OptimizationResult) Acceptable() bool {
	return r.AllowViolations || r.Feasible()
}

// OptimizeRequest is the wire form of an optimization call.
type OptimizeRequest struct {
	PlanDate  string              `json:"planDate,omitempty"`
	Locations []Location          `json:"locations"`
	Vehicles  []Vehicle           `json:"vehicles"`
	Options   OptimizationOptions `json:"options"`
}

// ExportRequest carries a solved route to be rendered.
type ExportRequest struct {
	Route RouteSolution `json:"route"`
}
