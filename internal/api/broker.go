package api

import (
    "sync"

    "routeopt/internal/model"
)

// Plan events are published on the tenant's topic once an optimization ends.
const (
    EventPlanCompleted = "plan.completed"
    EventPlanFailed    = "plan.failed"
)

type SSEEvent struct {
    Type string         `json:"type"`
    Data map[string]any `json:"data"`
}

// EventBroker fans plan events out to the subscribers of a tenant.
type EventBroker interface {
    Subscribe(tenant string) chan SSEEvent
    Unsubscribe(tenant string, ch chan SSEEvent)
    Publish(tenant string, evt SSEEvent)
}

// PublishPlan announces a finished plan with its headline numbers; routes
// are not part of the event.
func PublishPlan(b EventBroker, tenant, planDate string, res model.OptimizationResult) {
    b.Publish(tenant, SSEEvent{Type: EventPlanCompleted, Data: map[string]any{
        "resultId":      res.ID,
        "planDate":      planDate,
        "algorithm":     res.Algorithm,
        "routes":        len(res.Routes),
        "unassigned":    len(res.UnassignedLocations),
        "totalDistance": res.Summary.TotalDistance,
        "violations":    res.Summary.Violations,
        "feasible":      res.Feasible(),
    }})
}

// PublishPlanFailure announces an optimization that returned an error.
func PublishPlanFailure(b EventBroker, tenant, planDate string, algo model.Algorithm, err error) {
    b.Publish(tenant, SSEEvent{Type: EventPlanFailed, Data: map[string]any{
        "planDate":  planDate,
        "algorithm": string(algo),
        "error":     err.Error(),
    }})
}

// MemoryBroker is the in-process EventBroker used by a single replica.
type MemoryBroker struct {
    mu   sync.Mutex
    subs map[string]map[chan SSEEvent]struct{} // tenant -> subscribers
}

func NewBroker() *MemoryBroker {
    return &MemoryBroker{subs: map[string]map[chan SSEEvent]struct{}{}}
}

func (b *MemoryBroker) Subscribe(tenant string) chan SSEEvent {
    ch := make(chan SSEEvent, 8)
    b.mu.Lock()
    if b.subs[tenant] == nil { b.subs[tenant] = map[chan SSEEvent]struct{}{} }
    b.subs[tenant][ch] = struct{}{}
    b.mu.Unlock()
    return ch
}

// Unsubscribe closes ch once; unknown or already removed channels are ignored.
func (b *MemoryBroker) Unsubscribe(tenant string, ch chan SSEEvent) {
    b.mu.Lock()
    defer b.mu.Unlock()
    m := b.subs[tenant]
    if _, ok := m[ch]; !ok { return }
    delete(m, ch)
    if len(m) == 0 { delete(b.subs, tenant) }
    close(ch)
}

// Publish never blocks: slow subscribers drop events.
func (b *MemoryBroker) Publish(tenant string, evt SSEEvent) {
    b.mu.Lock()
    defer b.mu.Unlock()
    for ch := range b.subs[tenant] {
        select { case ch <- evt: default: }
    }
}
