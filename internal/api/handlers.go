package api

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "routeopt/internal/export"
    "routeopt/internal/metrics"
    "routeopt/internal/model"
    "routeopt/internal/opt"
    "routeopt/internal/store"
)

// OptimizeHandler handles POST /v1/optimize
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    p := s.getPrincipal(r)
    if !p.CanPlan() { writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path); return }
    var req model.OptimizeRequest
    if err := s.decodeJSON(w, r, &req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if err := validateOptimizeRequest(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
        return
    }
    res, err := s.runOptimization(r.Context(), p.Tenant, req, nil)
    if err != nil {
        status, title := optimizeErrorStatus(err)
        writeProblem(w, status, title, err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, optimizeResponse(res))
}

func optimizeResponse(res model.OptimizationResult) map[string]any {
    return map[string]any{"result": res, "feasible": res.Feasible(), "acceptable": res.Acceptable()}
}

func optimizeErrorStatus(err error) (int, string) {
    switch {
    case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrNoVehicle):
        return http.StatusBadRequest, "Invalid optimize request"
    case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
        return http.StatusServiceUnavailable, "Optimization cancelled"
    }
    return http.StatusInternalServerError, "Optimization failed"
}

// runOptimization applies tenant and service defaults, solves, records run
// metrics and publishes the plan event. Cancellation is returned as an error
// even though the engine hands back a partial result.
func (s *Server) runOptimization(ctx context.Context, tenant string, req model.OptimizeRequest, progress opt.ProgressFunc) (model.OptimizationResult, error) {
    o, budget := s.tenantOptions(ctx, tenant, req.Options)
    planDate := req.PlanDate
    if planDate == "" { planDate = time.Now().UTC().Format("2006-01-02") }

    eng := opt.NewEngine(
        opt.WithLogger(s.Log.With(map[string]any{"tenant": tenant, "planDate": planDate})),
        opt.WithTimeBudget(budget),
        opt.WithProgress(progress),
    )
    res, err := eng.Optimize(ctx, req.Locations, req.Vehicles, o)
    metrics.ObserveResult(res, err)
    if err != nil {
        PublishPlanFailure(s.Broker, tenant, planDate, o.Algorithm, err)
        return res, err
    }
    // metrics are best effort; a store outage must not fail the plan
    sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
    defer cancel()
    if err := s.Store.SavePlanMetrics(sctx, store.PlanMetricsFromResult(tenant, planDate, res)); err != nil {
        s.Log.Warnf("save plan metrics: %v", err)
    }
    PublishPlan(s.Broker, tenant, planDate, res)
    return res, nil
}

// tenantOptions overlays stored tenant config, then service defaults, on
// fields the request left unset.
func (s *Server) tenantOptions(ctx context.Context, tenant string, o model.OptimizationOptions) (model.OptimizationOptions, time.Duration) {
    budget := s.Cfg.Optimizer.TimeBudget()
    cfg, err := s.Store.GetOptimizerConfig(ctx, tenant)
    if err == nil {
        if v, ok := cfg["algorithm"].(string); ok && o.Algorithm == "" { o.Algorithm = model.Algorithm(v) }
        if v, ok := cfg["maxIterations"].(float64); ok && o.MaxIterations == 0 { o.MaxIterations = int(v) }
        if v, ok := cfg["restarts"].(float64); ok && o.Restarts == 0 { o.Restarts = int(v) }
        if v, ok := cfg["timeBudgetMs"].(float64); ok && v > 0 { budget = time.Duration(v) * time.Millisecond }
    }
    return s.Cfg.Optimizer.Apply(o), budget
}

// ExportHandler handles POST /v1/export?format=json|csv|gpx
func (s *Server) ExportHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
    f, err := export.ParseFormat(r.URL.Query().Get("format"))
    if err != nil { writeProblem(w, 400, "Invalid format", err.Error(), r.URL.Path); return }
    var req model.ExportRequest
    if err := s.decodeJSON(w, r, &req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    body, err := export.Render(f, req.Route)
    if err != nil { writeProblem(w, 500, "Export failed", err.Error(), r.URL.Path); return }
    name := req.Route.Vehicle.ID
    if name == "" { name = "route" }
    w.Header().Set("Content-Type", f.ContentType())
    w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+string(f)))
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(body)
}

// OptimizerConfigHandler returns default optimizer configuration
func (s *Server) OptimizerConfigHandler(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/v1/optimizer/config" || r.Method != http.MethodGet { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
    defaults := map[string]any{
        "algorithm":     s.Cfg.Optimizer.Algorithm,
        "maxIterations": s.Cfg.Optimizer.MaxIterations,
        "restarts":      s.Cfg.Optimizer.Restarts,
        "timeBudgetMs":  s.Cfg.Optimizer.TimeBudgetMs,
        "algorithms": []model.Algorithm{
            model.AlgorithmNearestNeighbor, model.AlgorithmTwoOpt, model.AlgorithmGenetic,
            model.AlgorithmSimulatedAnnealing, model.AlgorithmClusterFirst,
        },
    }
    // overlay tenant config if present
    p := s.getPrincipal(r)
    if cfg, err := s.Store.GetOptimizerConfig(r.Context(), p.Tenant); err == nil {
        for k, v := range cfg { defaults[k] = v }
    }
    writeJSON(w, 200, map[string]any{"defaults": defaults})
}

// Admin get/set optimizer tenant config
func (s *Server) AdminOptimizerConfigHandler(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/v1/admin/optimizer/config" { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
    p := s.getPrincipal(r)
    if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
    switch r.Method {
    case http.MethodGet:
        cfg, err := s.Store.GetOptimizerConfig(r.Context(), p.Tenant)
        if errors.Is(err, store.ErrNotFound) { cfg = map[string]any{} } else if err != nil { writeProblem(w, 500, "Load failed", err.Error(), r.URL.Path); return }
        writeJSON(w, 200, map[string]any{"config": cfg})
    case http.MethodPut:
        var body struct{ Config map[string]any `json:"config"` }
        if err := s.decodeJSON(w, r, &body); err != nil { writeProblem(w, 400, "Invalid JSON", err.Error(), r.URL.Path); return }
        if body.Config == nil { writeProblem(w, 400, "Missing config", "", r.URL.Path); return }
        if err := validateTenantConfig(body.Config); err != nil { writeProblem(w, 400, "Invalid config", err.Error(), r.URL.Path); return }
        if err := s.Store.SaveOptimizerConfig(r.Context(), p.Tenant, body.Config); err != nil { writeProblem(w, 500, "Save failed", err.Error(), r.URL.Path); return }
        writeJSON(w, 200, map[string]bool{"ok": true})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

func validateTenantConfig(cfg map[string]any) error {
    var o model.OptimizationOptions
    for k, v := range cfg {
        switch k {
        case "algorithm":
            a, ok := v.(string)
            if !ok { return fmt.Errorf("algorithm must be a string") }
            o.Algorithm = model.Algorithm(a)
        case "maxIterations", "restarts", "timeBudgetMs":
            n, ok := v.(float64)
            if !ok || n < 0 { return fmt.Errorf("%s must be a non-negative number", k) }
            if k == "restarts" { o.Restarts = int(n) }
        default:
            return fmt.Errorf("unknown key: %s (allowed: algorithm,maxIterations,restarts,timeBudgetMs)", k)
        }
    }
    return validateOptions(o)
}

// Admin plan metrics by algorithm
func (s *Server) PlanMetricsHandler(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/v1/admin/plan-metrics" || r.Method != http.MethodGet { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
    p := s.getPrincipal(r)
    if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
    planDate := r.URL.Query().Get("planDate")
    if planDate == "" { writeProblem(w, 400, "Missing planDate", "", r.URL.Path); return }
    items, err := s.Store.ListPlanMetrics(r.Context(), p.Tenant, planDate, r.URL.Query().Get("algo"))
    if err != nil { writeProblem(w, 500, "Plan metrics failed", err.Error(), r.URL.Path); return }
    writeJSON(w, 200, map[string]any{"items": items})
}

// PlanEventsHandler streams the tenant's plan events as server-sent events.
func (s *Server) PlanEventsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    p := s.getPrincipal(r)
    flusher, ok := w.(http.Flusher)
    if !ok { writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path); return }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")
    ch := s.Broker.Subscribe(p.Tenant)
    defer s.Broker.Unsubscribe(p.Tenant, ch)
    heartbeat := func() {
        fmt.Fprintf(w, "event: heartbeat\n")
        fmt.Fprintf(w, "data: {\"tenant\":%q,\"ts\":%q}\n\n", p.Tenant, time.Now().Format(time.RFC3339))
        flusher.Flush()
    }
    heartbeat()
    ticker := time.NewTicker(15 * time.Second)
    defer ticker.Stop()
    for {
        select {
        case <-r.Context().Done():
            return
        case evt, ok := <-ch:
            if !ok { return }
            b, _ := jsonMarshal(evt.Data)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", string(b))
            flusher.Flush()
        case <-ticker.C:
            heartbeat()
        }
    }
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
    defer cancel()
    if err := s.Store.Ping(ctx); err != nil { writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path); return }
    writeJSON(w, 200, map[string]string{"status": "ready", "store": strings.ToLower(s.Cfg.Store.Driver)})
}
