package config

import (
	"fmt"
	"time"

	"routeopt/internal/model"
)

type ServerConfig struct {
	Addr string `json:"addr"`
	// RateLimitRPS is the per-client request rate; 0 disables limiting.
	RateLimitRPS   float64 `json:"rate_limit_rps"`
	RateLimitBurst int     `json:"rate_limit_burst"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `json:"max_body_bytes"`
	// AdminKey guards /v1/admin endpoints when set.
	AdminKey string `json:"admin_key"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		c.RateLimitBurst = int(c.RateLimitRPS) + 1
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 4 << 20
	}
}

func (c ServerConfig) Validate() error {
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps must be >= 0")
	}
	return nil
}

// OptimizerConfig holds defaults applied to requests that leave them unset.
type OptimizerConfig struct {
	Algorithm     string `json:"algorithm"`
	MaxIterations int    `json:"max_iterations"`
	Restarts      int    `json:"restarts"`
	TimeBudgetMs  int    `json:"time_budget_ms"`
}

func (c *OptimizerConfig) SetDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = string(model.AlgorithmNearestNeighbor)
	}
	if c.TimeBudgetMs <= 0 {
		c.TimeBudgetMs = 10000
	}
}

func (c OptimizerConfig) Validate() error {
	switch model.Algorithm(c.Algorithm) {
	case model.AlgorithmNearestNeighbor, model.AlgorithmGenetic, model.AlgorithmSimulatedAnnealing,
		model.AlgorithmTwoOpt, model.AlgorithmClusterFirst:
	default:
		return fmt.Errorf("unknown algorithm %q", c.Algorithm)
	}
	if c.MaxIterations < 0 || c.Restarts < 0 {
		return fmt.Errorf("max_iterations and restarts must be >= 0")
	}
	return nil
}

// TimeBudget is the wall-clock cap for one optimization.
func (c OptimizerConfig) TimeBudget() time.Duration {
	return time.Duration(c.TimeBudgetMs) * time.Millisecond
}

// Apply fills the options fields the caller left at their zero value.
func (c OptimizerConfig) Apply(o model.OptimizationOptions) model.OptimizationOptions {
	if o.Algorithm == "" {
		o.Algorithm = model.Algorithm(c.Algorithm)
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = c.MaxIterations
	}
	if o.Restarts == 0 {
		o.Restarts = c.Restarts
	}
	return o
}

type StoreConfig struct {
	// Driver is memory, postgres or sqlite.
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "memory"
	}
}

func (c StoreConfig) Validate() error {
	switch c.Driver {
	case "memory":
		return nil
	case "postgres", "pgx", "sqlite":
		if c.DSN == "" {
			return fmt.Errorf("dsn is required for driver %s", c.Driver)
		}
		return nil
	}
	return fmt.Errorf("unknown driver %s", c.Driver)
}

// BrokerConfig selects the plan event broker; an empty RedisURL keeps events in process.
type BrokerConfig struct {
	RedisURL string `json:"redis_url"`
}

type LoggingConfig struct {
	Level string `json:"level"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}
