package progress

import (
	"sync"
	"time"

	"github.com/viant/simrun/internal/clock"
)

// Progress is a snapshot of a run's shard and iteration counters.
type Progress struct {
	RunID           string
	TotalIterations int
	StartedAt       time.Time

	TotalShards         int
	RunningShards       int
	CompletedShards     int
	FailedShards        int
	CompletedIterations int
}

// Fraction returns the completed share of the requested iterations in [0,1].
func (p Progress) Fraction() float64 {
	if p.TotalIterations == 0 {
		return 0
	}
	return float64(p.CompletedIterations) / float64(p.TotalIterations)
}

// Tracker keeps the counters of one run. It is safe for concurrent use; a nil
// *Tracker ignores updates.
type Tracker struct {
	mux      sync.Mutex
	state    Progress
	listener func(Progress)
}

// New creates a tracker for a run of totalIterations. listener, when set,
// receives a snapshot after every change.
func New(runID string, totalIterations int, listener func(Progress)) *Tracker {
	return &Tracker{
		state: Progress{
			RunID:           runID,
			TotalIterations: totalIterations,
			StartedAt:       clock.Now(),
		},
		listener: listener,
	}
}

// Planned records the number of shards the run was split into.
func (t *Tracker) Planned(shards int) {
	t.apply(func(p *Progress) { p.TotalShards = shards })
}

// Started records a unit that received its shard.
func (t *Tracker) Started() {
	t.apply(func(p *Progress) { p.RunningShards++ })
}

// Succeeded records a unit that reported iterations completed trials.
func (t *Tracker) Succeeded(iterations int) {
	t.apply(func(p *Progress) {
		p.RunningShards--
		p.CompletedShards++
		p.CompletedIterations += iterations
	})
}

// Failed records a unit that reported an error.
func (t *Tracker) Failed() {
	t.apply(func(p *Progress) {
		p.RunningShards--
		p.FailedShards++
	})
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Progress {
	if t == nil {
		return Progress{}
	}
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.state
}

// apply mutates the counters and notifies the listener outside the lock.
func (t *Tracker) apply(change func(p *Progress)) {
	if t == nil {
		return
	}
	t.mux.Lock()
	change(&t.state)
	snapshot := t.state
	listener := t.listener
	t.mux.Unlock()
	if listener != nil {
		listener(snapshot)
	}
}
