// Package api implements the HTTP surface of the route optimization service.
package api

import (
    "context"
    "time"

    "routeopt/internal/config"
    "routeopt/internal/logger"
    "routeopt/internal/store"
)

type Server struct {
    Store  store.Store
    Broker EventBroker
    Cfg    *config.Config
    Log    logger.Logger

    limiter *clientLimiter
    started time.Time
}

// NewServer wires the store and broker selected by cfg. Without a DSN the
// in-memory store is used; without a Redis URL events stay in process.
func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Server, error) {
    if cfg == nil { cfg = config.Default() }
    if log == nil { log = logger.Nop() }
    var st store.Store
    if cfg.Store.Driver == "memory" {
        st = store.NewMemory()
    } else {
        sq, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
        if err != nil {
            return nil, err
        }
        st = sq
    }
    var broker EventBroker = NewBroker()
    if cfg.Broker.RedisURL != "" {
        rb, err := NewRedisBroker(cfg.Broker.RedisURL)
        if err != nil {
            log.Warnf("redis broker unavailable, using in-process events: %v", err)
        } else {
            broker = rb
        }
    }
    return NewServerWith(cfg, st, broker, log), nil
}

// NewServerWith builds a Server from ready dependencies.
func NewServerWith(cfg *config.Config, st store.Store, broker EventBroker, log logger.Logger) *Server {
    if cfg == nil { cfg = config.Default() }
    if log == nil { log = logger.Nop() }
    s := &Server{Store: st, Broker: broker, Cfg: cfg, Log: log, started: time.Now()}
    if cfg.Server.RateLimitRPS > 0 {
        s.limiter = newClientLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
    }
    return s
}

// Close releases the store and broker connections.
func (s *Server) Close() error {
    if c, ok := s.Broker.(interface{ Close() error }); ok { _ = c.Close() }
    return s.Store.Close()
}
