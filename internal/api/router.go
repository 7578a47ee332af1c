package api

import (
    "net/http"

    "github.com/prometheus/client_golang/prometheus/promhttp"

    "routeopt/internal/metrics"
)

// Handler returns the service mux with logging, metrics and rate limiting.
func (s *Server) Handler() http.Handler {
    metrics.RegisterDefault()
    mux := http.NewServeMux()
    handle := func(path string, h http.HandlerFunc) {
        mux.HandleFunc(path, s.observe(path, s.rateLimit(h)))
    }

    // Optimization
    handle("/v1/optimize", s.OptimizeHandler)
    handle("/v1/optimize/stream", s.OptimizeStreamHandler)
    handle("/v1/export", s.ExportHandler)
    handle("/v1/optimizer/config", s.OptimizerConfigHandler)
    handle("/v1/plans/events/stream", s.PlanEventsHandler)

    // Admin
    handle("/v1/admin/optimizer/config", s.AdminOptimizerConfigHandler)
    handle("/v1/admin/plan-metrics", s.PlanMetricsHandler)

    // Health, docs, debug
    mux.HandleFunc("/healthz", s.HealthHandler)
    mux.HandleFunc("/readyz", s.ReadyHandler)
    mux.HandleFunc("/openapi.yaml", s.OpenAPIHandler)
    mux.HandleFunc("/openapi.json", s.OpenAPIJSONHandler)
    mux.HandleFunc("/docs", s.DocsHandler)
    mux.HandleFunc("/debug/info", s.DebugJSON)
    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
    return mux
}
