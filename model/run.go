package model

import "time"

// Run states.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
	StateCanceled  = "canceled"
)

// Run is the persisted record of a simulation run.
type Run struct {
	ID         string     `json:"id" yaml:"id"`
	State      string     `json:"state" yaml:"state"`
	PoolSize   int        `json:"poolSize" yaml:"poolSize"`
	Iterations int        `json:"iterations" yaml:"iterations"`
	Shards     int        `json:"shards" yaml:"shards"`
	Result     *Aggregate `json:"result,omitempty" yaml:"result,omitempty"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt" yaml:"startedAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty" yaml:"endedAt,omitempty"`
}

// Terminal returns true for resolved runs.
func (r *Run) Terminal() bool {
	switch r.State {
	case StateSucceeded, StateFailed, StateCanceled:
		return true
	}
	return false
}

// Clone returns a copy safe to hand out of a store.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	ret := *r
	if r.Result != nil {
		result := *r.Result
		if r.Result.Histogram != nil {
			result.Histogram = make(map[int]int, len(r.Result.Histogram))
			for k, v := range r.Result.Histogram {
				result.Histogram[k] = v
			}
		}
		ret.Result = &result
	}
	if r.EndedAt != nil {
		endedAt := *r.EndedAt
		ret.EndedAt = &endedAt
	}
	return &ret
}
