// Package main runs a demo WebSocket client that optimizes a scenario file
// and prints progress frames as they arrive.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"routeopt/internal/scenario"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	path := "scenarios/manhattan.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	sc, err := scenario.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	req, err := sc.ToModel()
	if err != nil {
		log.Fatal(err)
	}
	// a longer search makes the progress stream visible
	req.Options.Algorithm = "genetic"
	req.Options.MaxIterations = 2000
	pl, err := json.Marshal(req)
	if err != nil {
		log.Fatal(err)
	}

	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/optimize/stream"}
	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_demo")
	hdr.Set("X-Role", "dispatcher")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	if err := c.WriteJSON(wsMessage{Type: "optimize", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	_ = c.SetReadDeadline(time.Now().Add(time.Minute))
	for {
		var m wsMessage
		if err := c.ReadJSON(&m); err != nil {
			log.Printf("read: %v", err)
			return
		}
		switch m.Type {
		case "result":
			var out struct {
				Result struct {
					Summary json.RawMessage `json:"summary"`
				} `json:"result"`
			}
			_ = json.Unmarshal(m.Payload, &out)
			log.Printf("WS <- result: %s", string(out.Result.Summary))
		case "complete":
			return
		default:
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}
}
