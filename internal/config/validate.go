package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Server.WriteRateLimit < 1 {
		return fmt.Errorf("server.write_rate_limit must be >= 1 (got %d)", c.Server.WriteRateLimit)
	}

	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := c.Grid.validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path)
	}

	return nil
}

func (d *DatabaseConfig) validate() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case DriverPostgres:
		if d.DSN == "" {
			return fmt.Errorf("dsn is required for the %s driver", DriverPostgres)
		}
		if d.MinConns > d.MaxConns {
			return fmt.Errorf("min_conns (%d) must not exceed max_conns (%d)", d.MinConns, d.MaxConns)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("driver must be %q or %q (got %q)", DriverPostgres, DriverMemory, d.Driver)
	}
	return nil
}

func (g *GridConfig) validate() error {
	if g.DefaultPageSize < 1 {
		return fmt.Errorf("default_page_size must be >= 1 (got %d)", g.DefaultPageSize)
	}
	if g.MaxPageSize < g.DefaultPageSize {
		return fmt.Errorf("max_page_size (%d) must be >= default_page_size (%d)", g.MaxPageSize, g.DefaultPageSize)
	}
	return nil
}
