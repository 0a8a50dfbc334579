// Package gauss provides a reference engine: every trial draws an encounter
// duration and per-player damage with gaussian noise, and reports damage per
// second as the trial metric.
package gauss

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/viant/simrun/model"
	"github.com/viant/simrun/service/engine"
)

// ErrNoPlayers is returned for configurations without players.
var ErrNoPlayers = errors.New("gauss: config has no players")

// checkEvery is the number of trials between context checks.
const checkEvery = 64

// Engine implements engine.Engine.
type Engine struct{}

// New creates a reference engine.
func New() *Engine {
	return &Engine{}
}

// Run runs iterations trials. Trial k of a seeded config uses seed+k, so
// shards carrying consecutive seed ranges reproduce a single-unit run.
func (e *Engine) Run(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
	if config == nil || len(config.Players) == 0 {
		return nil, ErrNoPlayers
	}
	if config.Duration <= 0 {
		return nil, fmt.Errorf("gauss: invalid duration: %v", config.Duration)
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("gauss: invalid iterations: %v", iterations)
	}
	summary := &model.Summary{}
	entropy := rand.Uint64()
	for k := 0; k < iterations; k++ {
		if k%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var rng *rand.Rand
		if config.Seeded() {
			rng = rand.New(rand.NewPCG(uint64(config.RngSeed+int64(k)), 0))
		} else {
			rng = rand.New(rand.NewPCG(entropy, uint64(time.Now().UnixNano())+uint64(k)))
		}
		summary.Observe(trial(rng, config))
	}
	return summary, nil
}

func trial(rng *rand.Rand, config *model.SimConfig) float64 {
	duration := config.Duration - config.DurationVariance + rng.Float64()*config.DurationVariance*2
	if duration <= 0 {
		duration = config.Duration
	}
	targets := config.Targets
	if targets < 1 {
		targets = 1
	}
	total := 0.0
	for _, player := range config.Players {
		if player == nil {
			continue
		}
		dps := player.Power * (1 + rng.NormFloat64()*player.Variance)
		if dps < 0 {
			dps = 0
		}
		total += dps * duration * float64(targets)
	}
	return total / duration
}

var _ engine.Engine = (*Engine)(nil)
