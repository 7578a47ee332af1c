package store

import (
    "context"
    "errors"
    "time"

    "routeopt/internal/model"
)

// PlanMetrics is the search effort and outcome of one optimization run.
// Routes themselves are never persisted.
type PlanMetrics struct {
    ID                string    `json:"id"`
    TenantID          string    `json:"tenantId"`
    PlanDate          string    `json:"planDate"`
    Algorithm         string    `json:"algo"`
    Iterations        int       `json:"iterations"`
    Improvements      int       `json:"improvements"`
    AcceptedWorse     int       `json:"acceptedWorse"`
    Evaluations       int       `json:"evaluations"`
    Seed              int64     `json:"seed"`
    TotalDistance     float64   `json:"totalDistance"`
    AverageEfficiency float64   `json:"averageEfficiency"`
    Routes            int       `json:"routes"`
    Unassigned        int       `json:"unassigned"`
    Violations        int       `json:"violations"`
    CriticalCount     int       `json:"criticalViolations"`
    ComputationMs     int64     `json:"computationMs"`
    CreatedAt         time.Time `json:"createdAt"`
}

// PlanMetricsFromResult extracts the persisted run statistics from a result.
func PlanMetricsFromResult(tenantID, planDate string, res model.OptimizationResult) PlanMetrics {
    return PlanMetrics{
        TenantID:          tenantID,
        PlanDate:          planDate,
        Algorithm:         res.Algorithm,
        Iterations:        res.Stats.Iterations,
        Improvements:      res.Stats.Improvements,
        AcceptedWorse:     res.Stats.AcceptedWorse,
        Evaluations:       res.Stats.Evaluations,
        Seed:              res.Stats.Seed,
        TotalDistance:     res.Summary.TotalDistance,
        AverageEfficiency: res.Summary.AverageEfficiency,
        Routes:            len(res.Routes),
        Unassigned:        len(res.UnassignedLocations),
        Violations:        res.Summary.Violations,
        CriticalCount:     res.Summary.CriticalCount,
        ComputationMs:     res.ComputationTime.Milliseconds(),
    }
}

// Store is the persistence interface used by the API server.
type Store interface {
    // Plan metrics, one row per (tenant, plan date, algorithm); saving again replaces it.
    SavePlanMetrics(ctx context.Context, m PlanMetrics) error
    ListPlanMetrics(ctx context.Context, tenantID, planDate, algo string) ([]PlanMetrics, error)

    // Optimizer config per tenant
    GetOptimizerConfig(ctx context.Context, tenantID string) (map[string]any, error)
    SaveOptimizerConfig(ctx context.Context, tenantID string, cfg map[string]any) error

    Ping(ctx context.Context) error
    Close() error
}

var ErrNotFound = errors.New("not found")
