package simrun

import (
	"fmt"
	"runtime"

	"github.com/caarlos0/env/v11"
)

// Config is a serialisable representation of the orchestrator settings. It
// can be populated from JSON, YAML or SIMRUN_* environment variables; start
// from DefaultConfig since the zero value is not valid.
type Config struct {
	Pool PoolConfig `json:"pool" yaml:"pool"`
	// RunIDPrefix scopes generated run IDs, e.g. "sim".
	RunIDPrefix string `json:"runIDPrefix,omitempty" yaml:"runIDPrefix,omitempty" env:"SIMRUN_RUN_ID_PREFIX"`
	// RunTimeout bounds Runtime.Run when no explicit timeout is passed.
	RunTimeout string `json:"runTimeout,omitempty" yaml:"runTimeout,omitempty" env:"SIMRUN_RUN_TIMEOUT"`
}

// PoolConfig controls the execution unit pool.
type PoolConfig struct {
	// Units is the default pool size used when a request omits it.
	Units int `json:"units" yaml:"units" env:"SIMRUN_POOL_UNITS"`
}

// DefaultConfig returns a Config sized to the host CPU count.
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			Units: runtime.NumCPU(),
		},
		RunIDPrefix: "sim",
		RunTimeout:  "10m",
	}
}

// ConfigFromEnv returns DefaultConfig overridden by SIMRUN_* environment variables.
func ConfigFromEnv() (*Config, error) {
	ret := DefaultConfig()
	if err := env.Parse(ret); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return ret, ret.Validate()
}

// Validate returns an error describing the first invalid setting, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Pool.Units <= 0 {
		return fmt.Errorf("pool.units must be > 0")
	}
	if c.RunTimeout != "" {
		if _, err := parseTimeout(c.RunTimeout); err != nil {
			return fmt.Errorf("invalid runTimeout: %w", err)
		}
	}
	return nil
}
