package metrics

import (
    "errors"
    "testing"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    dto "github.com/prometheus/client_model/go"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "routeopt/internal/model"
)

func TestObserveResult(t *testing.T) {
    RegisterDefault()
    res := model.OptimizationResult{
        Algorithm:       "test_algo",
        ComputationTime: 20 * time.Millisecond,
        Stats:           model.RunStats{Evaluations: 51},
        Routes: []model.RouteSolution{{Violations: []model.RouteViolation{
            {Type: model.ViolationTimeWindow, Severity: model.SeverityCritical},
            {Type: model.ViolationAccess, Severity: model.SeverityMinor},
        }}},
    }
    before := counterValue(t, RouteViolations.WithLabelValues("time_window", "critical"))
    ObserveResult(res, nil)

    assert.Equal(t, 1.0, counterValue(t, Optimizations.WithLabelValues("test_algo", "infeasible")))
    assert.Equal(t, 51.0, counterValue(t, SolverEvaluations.WithLabelValues("test_algo")))
    assert.Equal(t, before+1, counterValue(t, RouteViolations.WithLabelValues("time_window", "critical")))

    ObserveResult(model.OptimizationResult{Algorithm: "test_algo"}, errors.New("boom"))
    assert.Equal(t, 1.0, counterValue(t, Optimizations.WithLabelValues("test_algo", "error")))
    assert.Equal(t, 51.0, counterValue(t, SolverEvaluations.WithLabelValues("test_algo")))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
    t.Helper()
    var m dto.Metric
    require.NoError(t, c.Write(&m))
    return m.GetCounter().GetValue()
}
