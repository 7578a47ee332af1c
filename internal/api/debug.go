package api

import (
    "net/http"
    "time"

    "routeopt/internal/buildinfo"
)

// DebugJSON reports build info and a secret-free view of the running config.
func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
    _, redis := s.Broker.(*RedisBroker)
    info := map[string]any{
        "build":  buildinfo.Info(),
        "time":   time.Now().UTC().Format(time.RFC3339),
        "uptime": time.Since(s.started).Round(time.Second).String(),
        "config": map[string]any{
            "addr":           s.Cfg.Server.Addr,
            "rateLimitRps":   s.Cfg.Server.RateLimitRPS,
            "rateLimitBurst": s.Cfg.Server.RateLimitBurst,
            "maxBodyBytes":   s.Cfg.Server.MaxBodyBytes,
            "hasAdminKey":    s.Cfg.Server.AdminKey != "",
            "storeDriver":    s.Cfg.Store.Driver,
            "redisBroker":    redis,
            "optimizer":      s.Cfg.Optimizer,
        },
    }
    writeJSON(w, http.StatusOK, info)
}
