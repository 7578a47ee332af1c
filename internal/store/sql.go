package store

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    _ "github.com/jackc/pgx/v5/stdlib"
    _ "modernc.org/sqlite"
)

// SQL implements Store over database/sql. The queries stick to the subset
// Postgres (pgx) and SQLite both accept: $N placeholders, ON CONFLICT
// upserts and timestamps kept as RFC3339 text.
type SQL struct {
    db     *sql.DB
    driver string
}

// Open connects with driver "postgres"/"pgx" or "sqlite" and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*SQL, error) {
    switch driver {
    case "postgres", "pgx":
        return NewPostgres(ctx, dsn)
    case "sqlite":
        return NewSQLite(ctx, dsn)
    }
    return nil, fmt.Errorf("unsupported store driver %q", driver)
}

func NewPostgres(ctx context.Context, dsn string) (*SQL, error) {
    return open(ctx, "pgx", dsn)
}

// NewSQLite opens a SQLite database; ":memory:" gives a private database
// that lives as long as the store.
func NewSQLite(ctx context.Context, dsn string) (*SQL, error) {
    s, err := open(ctx, "sqlite", dsn)
    if err != nil {
        return nil, err
    }
    // a single connection keeps ":memory:" shared and serializes writers
    s.db.SetMaxOpenConns(1)
    return s, nil
}

func open(ctx context.Context, driver, dsn string) (*SQL, error) {
    db, err := sql.Open(driver, dsn)
    if err != nil {
        return nil, err
    }
    if err := db.PingContext(ctx); err != nil {
        _ = db.Close()
        return nil, err
    }
    s := &SQL{db: db, driver: driver}
    if err := s.Migrate(ctx); err != nil {
        _ = db.Close()
        return nil, fmt.Errorf("migrate: %w", err)
    }
    return s, nil
}

var schema = []string{
    `CREATE TABLE IF NOT EXISTS plan_metrics (
        id TEXT PRIMARY KEY,
        tenant_id TEXT NOT NULL,
        plan_date TEXT NOT NULL,
        algo TEXT NOT NULL,
        iterations INTEGER NOT NULL DEFAULT 0,
        improvements INTEGER NOT NULL DEFAULT 0,
        accepted_worse INTEGER NOT NULL DEFAULT 0,
        evaluations INTEGER NOT NULL DEFAULT 0,
        seed BIGINT NOT NULL DEFAULT 0,
        total_distance DOUBLE PRECISION NOT NULL DEFAULT 0,
        avg_efficiency DOUBLE PRECISION NOT NULL DEFAULT 0,
        routes INTEGER NOT NULL DEFAULT 0,
        unassigned INTEGER NOT NULL DEFAULT 0,
        violations INTEGER NOT NULL DEFAULT 0,
        critical INTEGER NOT NULL DEFAULT 0,
        computation_ms BIGINT NOT NULL DEFAULT 0,
        created_at TEXT NOT NULL,
        UNIQUE (tenant_id, plan_date, algo)
    )`,
    `CREATE TABLE IF NOT EXISTS optimizer_config (
        tenant_id TEXT PRIMARY KEY,
        config TEXT NOT NULL,
        updated_at TEXT NOT NULL
    )`,
}

// Migrate creates the tables if they do not exist.
func (s *SQL) Migrate(ctx context.Context) error {
    for _, stmt := range schema {
        if _, err := s.db.ExecContext(ctx, stmt); err != nil {
            return err
        }
    }
    return nil
}

func (s *SQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *SQL) Close() error { return s.db.Close() }

func (s *SQL) SavePlanMetrics(ctx context.Context, m PlanMetrics) error {
    if m.ID == "" { m.ID = uuid.New().String() }
    _, err := s.db.ExecContext(ctx, `INSERT INTO plan_metrics (id, tenant_id, plan_date, algo, iterations, improvements, accepted_worse, evaluations, seed, total_distance, avg_efficiency, routes, unassigned, violations, critical, computation_ms, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        ON CONFLICT (tenant_id, plan_date, algo) DO UPDATE SET
          iterations=excluded.iterations, improvements=excluded.improvements, accepted_worse=excluded.accepted_worse, evaluations=excluded.evaluations, seed=excluded.seed,
          total_distance=excluded.total_distance, avg_efficiency=excluded.avg_efficiency, routes=excluded.routes, unassigned=excluded.unassigned,
          violations=excluded.violations, critical=excluded.critical, computation_ms=excluded.computation_ms, created_at=excluded.created_at`,
        m.ID, m.TenantID, m.PlanDate, m.Algorithm, m.Iterations, m.Improvements, m.AcceptedWorse, m.Evaluations, m.Seed,
        m.TotalDistance, m.AverageEfficiency, m.Routes, m.Unassigned, m.Violations, m.CriticalCount, m.ComputationMs,
        time.Now().UTC().Format(time.RFC3339Nano),
    )
    return err
}

func (s *SQL) ListPlanMetrics(ctx context.Context, tenantID, planDate, algo string) ([]PlanMetrics, error) {
    base := `SELECT id, tenant_id, plan_date, algo, iterations, improvements, accepted_worse, evaluations, seed, total_distance, avg_efficiency, routes, unassigned, violations, critical, computation_ms, created_at FROM plan_metrics WHERE tenant_id=$1 AND plan_date=$2`
    args := []any{tenantID, planDate}
    if algo != "" { base += ` AND algo=$3`; args = append(args, algo) }
    rows, err := s.db.QueryContext(ctx, base+` ORDER BY algo`, args...)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []PlanMetrics{}
    for rows.Next() {
        var m PlanMetrics
        var created string
        if err := rows.Scan(&m.ID, &m.TenantID, &m.PlanDate, &m.Algorithm, &m.Iterations, &m.Improvements, &m.AcceptedWorse, &m.Evaluations, &m.Seed,
            &m.TotalDistance, &m.AverageEfficiency, &m.Routes, &m.Unassigned, &m.Violations, &m.CriticalCount, &m.ComputationMs, &created); err != nil {
            return nil, err
        }
        m.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
        out = append(out, m)
    }
    return out, rows.Err()
}

func (s *SQL) GetOptimizerConfig(ctx context.Context, tenantID string) (map[string]any, error) {
    row := s.db.QueryRowContext(ctx, `SELECT config FROM optimizer_config WHERE tenant_id=$1`, tenantID)
    var js string
    if err := row.Scan(&js); err != nil {
        if errors.Is(err, sql.ErrNoRows) { return nil, ErrNotFound }
        return nil, err
    }
    out := map[string]any{}
    if err := json.Unmarshal([]byte(js), &out); err != nil { return nil, err }
    return out, nil
}

func (s *SQL) SaveOptimizerConfig(ctx context.Context, tenantID string, cfg map[string]any) error {
    js, err := json.Marshal(cfg)
    if err != nil { return err }
    _, err = s.db.ExecContext(ctx, `INSERT INTO optimizer_config (tenant_id, config, updated_at) VALUES ($1,$2,$3)
        ON CONFLICT (tenant_id) DO UPDATE SET config=excluded.config, updated_at=excluded.updated_at`,
        tenantID, string(js), time.Now().UTC().Format(time.RFC3339Nano))
    return err
}
