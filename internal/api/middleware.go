package api

import (
    "bufio"
    "fmt"
    "net"
    "net/http"
    "strconv"
    "sync"
    "time"

    "golang.org/x/time/rate"

    "routeopt/internal/metrics"
)

type statusRecorder struct {
    http.ResponseWriter
    status int
}

func (r *statusRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
    if f, ok := r.ResponseWriter.(http.Flusher); ok { f.Flush() }
}

// Hijack is needed by the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
    h, ok := r.ResponseWriter.(http.Hijacker)
    if !ok { return nil, nil, fmt.Errorf("response writer does not support hijacking") }
    r.status = http.StatusSwitchingProtocols
    return h.Hijack()
}

// Unwrap lets http.ResponseController and the websocket upgrader reach the
// underlying connection.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// observe logs and records metrics for every request. path is the route
// pattern so label cardinality stays bounded.
func (s *Server) observe(path string, next http.HandlerFunc) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
        next(rec, r)
        dur := time.Since(start)
        code := strconv.Itoa(rec.status)
        metrics.HTTPRequests.WithLabelValues(r.Method, path, code).Inc()
        metrics.HTTPDuration.WithLabelValues(r.Method, path, code).Observe(dur.Seconds())
        s.Log.Debugf("%s %s %s %d %v", r.RemoteAddr, r.Method, r.URL.Path, rec.status, dur)
    }
}

// clientLimiter keeps one token bucket per tenant (or remote IP).
type clientLimiter struct {
    mu      sync.Mutex
    rps     rate.Limit
    burst   int
    clients map[string]*rate.Limiter
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
    if burst <= 0 { burst = 1 }
    return &clientLimiter{rps: rate.Limit(rps), burst: burst, clients: map[string]*rate.Limiter{}}
}

func (c *clientLimiter) allow(key string) bool {
    c.mu.Lock()
    l, ok := c.clients[key]
    if !ok {
        l = rate.NewLimiter(c.rps, c.burst)
        c.clients[key] = l
    }
    c.mu.Unlock()
    return l.Allow()
}

func clientKey(r *http.Request) string {
    if t := r.Header.Get("X-Tenant-Id"); t != "" { return "t:" + t }
    host, _, err := net.SplitHostPort(r.RemoteAddr)
    if err != nil { host = r.RemoteAddr }
    return "ip:" + host
}

func (s *Server) rateLimit(next http.HandlerFunc) http.HandlerFunc {
    if s.limiter == nil { return next }
    return func(w http.ResponseWriter, r *http.Request) {
        if !s.limiter.allow(clientKey(r)) {
            w.Header().Set("Retry-After", "1")
            writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded", r.URL.Path)
            return
        }
        next(w, r)
    }
}
