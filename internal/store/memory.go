package store

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"
)

// Memory is a simple in-memory store used when no database is configured.
type Memory struct {
    mu     sync.Mutex
    planMx map[string]map[string][]PlanMetrics // tenant -> planDate -> items
    optCfg map[string]map[string]any           // tenant -> config
}

func NewMemory() *Memory {
    return &Memory{
        planMx: map[string]map[string][]PlanMetrics{},
        optCfg: map[string]map[string]any{},
    }
}

func (m *Memory) SavePlanMetrics(ctx context.Context, pm PlanMetrics) error {
    m.mu.Lock(); defer m.mu.Unlock()
    if m.planMx[pm.TenantID] == nil { m.planMx[pm.TenantID] = map[string][]PlanMetrics{} }
    if pm.ID == "" { pm.ID = uuid.New().String() }
    pm.CreatedAt = time.Now().UTC()
    items := m.planMx[pm.TenantID][pm.PlanDate]
    for i := range items {
        if items[i].Algorithm == pm.Algorithm {
            pm.ID = items[i].ID
            items[i] = pm
            return nil
        }
    }
    m.planMx[pm.TenantID][pm.PlanDate] = append(items, pm)
    return nil
}

func (m *Memory) ListPlanMetrics(ctx context.Context, tenantID, planDate, algo string) ([]PlanMetrics, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    out := []PlanMetrics{}
    for _, it := range m.planMx[tenantID][planDate] {
        if algo == "" || it.Algorithm == algo { out = append(out, it) }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Algorithm < out[j].Algorithm })
    return out, nil
}

func (m *Memory) GetOptimizerConfig(ctx context.Context, tenantID string) (map[string]any, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    cfg, ok := m.optCfg[tenantID]
    if !ok { return nil, ErrNotFound }
    out := make(map[string]any, len(cfg))
    for k, v := range cfg { out[k] = v }
    return out, nil
}

func (m *Memory) SaveOptimizerConfig(ctx context.Context, tenantID string, cfg map[string]any) error {
    m.mu.Lock(); defer m.mu.Unlock()
    cp := make(map[string]any, len(cfg))
    for k, v := range cfg { cp[k] = v }
    m.optCfg[tenantID] = cp
    return nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
func (m *Memory) Close() error { return nil }
