// Package engine defines the contract of the stochastic simulation engine
// invoked by every execution unit. The engine is a black box to the
// orchestrator: it receives a private configuration and a trial count and
// returns per-shard statistics or an error.
package engine

import (
	"context"

	"github.com/viant/simrun/model"
)

// Engine runs iterations independent trials against config.
type Engine interface {
	Run(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error)
}

// Func adapts a function to the Engine interface.
type Func func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error)

// Run calls f.
func (f Func) Run(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
	return f(ctx, config, iterations)
}
