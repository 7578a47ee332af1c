package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"routeopt/internal/model"
	"routeopt/internal/opt"
)

// Optimization over WebSocket: the client sends an optimize message and
// receives throttled progress frames followed by a result or error frame.

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

const progressInterval = 100 * time.Millisecond

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsConn serializes writes; gorilla allows a single concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(typ, id string, v any) error {
	var payload json.RawMessage
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		payload = b
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(wsMessage{Type: typ, ID: id, Payload: payload})
}

func (c *wsConn) fail(id, msg string) {
	_ = c.send("error", id, map[string]string{"message": msg})
	_ = c.send("complete", id, nil)
}

// OptimizeStreamHandler handles /v1/optimize/stream
func (s *Server) OptimizeStreamHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	if !p.CanPlan() {
		writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path)
		return
	}
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn := &wsConn{conn: raw}
	defer func() { _ = raw.Close() }()

	// runs are cancelled, then awaited, when the client disconnects
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancelAll := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancelAll()
	var runsMu sync.Mutex
	runs := map[string]context.CancelFunc{}

	raw.SetReadLimit(s.Cfg.Server.MaxBodyBytes)
	for {
		var msg wsMessage
		if err := raw.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "connection_init":
			_ = conn.send("connection_ack", "", nil)
		case "ping":
			_ = conn.send("pong", "", nil)
		case "optimize":
			var req model.OptimizeRequest
			dec := json.NewDecoder(bytes.NewReader(msg.Payload))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				conn.fail(msg.ID, "invalid payload: "+err.Error())
				continue
			}
			if err := validateOptimizeRequest(&req); err != nil {
				conn.fail(msg.ID, err.Error())
				continue
			}
			runsMu.Lock()
			if _, busy := runs[msg.ID]; busy {
				runsMu.Unlock()
				conn.fail(msg.ID, "id already running")
				continue
			}
			rctx, cancel := context.WithCancel(ctx)
			runs[msg.ID] = cancel
			runsMu.Unlock()
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				defer func() {
					runsMu.Lock()
					delete(runs, id)
					runsMu.Unlock()
					cancel()
				}()
				s.streamOptimization(rctx, conn, p.Tenant, id, req)
			}(msg.ID)
		case "cancel":
			runsMu.Lock()
			if c, ok := runs[msg.ID]; ok {
				c()
			}
			runsMu.Unlock()
		}
	}
}

func (s *Server) streamOptimization(ctx context.Context, conn *wsConn, tenant, id string, req model.OptimizeRequest) {
	var mu sync.Mutex
	var last time.Time
	progress := func(pr opt.Progress) {
		mu.Lock()
		now := time.Now()
		if now.Sub(last) < progressInterval {
			mu.Unlock()
			return
		}
		last = now
		mu.Unlock()
		_ = conn.send("progress", id, pr)
	}
	res, err := s.runOptimization(ctx, tenant, req, progress)
	if err != nil {
		conn.fail(id, err.Error())
		return
	}
	_ = conn.send("result", id, optimizeResponse(res))
	_ = conn.send("complete", id, nil)
}
