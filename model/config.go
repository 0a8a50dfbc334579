package model

// SimConfig represents a simulation configuration handed to the engine.
//
// The orchestrator only interprets RngSeed; every other field is opaque to it
// and forwarded unchanged to the engine.
type SimConfig struct {
	// RngSeed seeds the trial random stream; zero leaves seeding to entropy.
	RngSeed          int64           `json:"rngSeed,omitempty" yaml:"rngSeed,omitempty"`
	Duration         float64         `json:"duration" yaml:"duration"`
	DurationVariance float64         `json:"durationVariance,omitempty" yaml:"durationVariance,omitempty"`
	TargetLevel      int             `json:"targetLevel,omitempty" yaml:"targetLevel,omitempty"`
	Targets          int             `json:"targets,omitempty" yaml:"targets,omitempty"`
	Players          []*Player       `json:"players,omitempty" yaml:"players,omitempty"`
	Debuffs          map[string]bool `json:"debuffs,omitempty" yaml:"debuffs,omitempty"`
}

// Player describes a single simulated actor.
type Player struct {
	Name     string  `json:"name" yaml:"name"`
	Level    int     `json:"level,omitempty" yaml:"level,omitempty"`
	Power    float64 `json:"power" yaml:"power"`
	Variance float64 `json:"variance,omitempty" yaml:"variance,omitempty"`
}

// Seeded returns true when the configuration requests a reproducible stream.
func (c *SimConfig) Seeded() bool {
	return c != nil && c.RngSeed > 0
}

// Clone returns a deep copy of the configuration. Execution units must only
// ever see their own clone.
func (c *SimConfig) Clone() *SimConfig {
	if c == nil {
		return nil
	}
	ret := *c
	if c.Players != nil {
		ret.Players = make([]*Player, len(c.Players))
		for i, player := range c.Players {
			if player == nil {
				continue
			}
			p := *player
			ret.Players[i] = &p
		}
	}
	if c.Debuffs != nil {
		ret.Debuffs = make(map[string]bool, len(c.Debuffs))
		for k, v := range c.Debuffs {
			ret.Debuffs[k] = v
		}
	}
	return &ret
}
