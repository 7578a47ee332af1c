package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"

    "routeopt/internal/model"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // Optimizations counts optimization runs by algorithm and outcome (ok, infeasible, error)
    Optimizations = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "optimizations_total", Help: "Optimization runs by algorithm and outcome."},
        []string{"algorithm", "outcome"},
    )
    // OptimizationDuration tracks wall-clock solve time
    OptimizationDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "optimization_duration_seconds", Help: "Optimization wall-clock time in seconds.", Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30}},
        []string{"algorithm"},
    )
    // SolverEvaluations counts route simulations performed by the solvers
    SolverEvaluations = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "solver_evaluations_total", Help: "Route simulations performed by solvers."},
        []string{"algorithm"},
    )
    // RouteViolations counts produced violations by type and severity
    RouteViolations = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "route_violations_total", Help: "Route violations by type and severity."},
        []string{"type", "severity"},
    )
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
    regOnce.Do(func(){
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(Optimizations)
        Registry.MustRegister(OptimizationDuration)
        Registry.MustRegister(SolverEvaluations)
        Registry.MustRegister(RouteViolations)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once

// ObserveResult records one finished optimization.
func ObserveResult(res model.OptimizationResult, err error) {
    outcome := "ok"
    switch {
    case err != nil:
        outcome = "error"
    case !res.Feasible():
        outcome = "infeasible"
    }
    Optimizations.WithLabelValues(res.Algorithm, outcome).Inc()
    if err != nil && len(res.Routes) == 0 {
        return
    }
    OptimizationDuration.WithLabelValues(res.Algorithm).Observe(res.ComputationTime.Seconds())
    SolverEvaluations.WithLabelValues(res.Algorithm).Add(float64(res.Stats.Evaluations))
    for _, r := range res.Routes {
        for _, v := range r.Violations {
            RouteViolations.WithLabelValues(string(v.Type), string(v.Severity)).Inc()
        }
    }
}
