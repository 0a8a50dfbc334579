package orchestrator

import (
	"context"

	"github.com/viant/simrun/model"
	"github.com/viant/simrun/progress"
)

// Handle controls a started run.
type Handle struct {
	ID  string
	run *run
}

// Done is closed once the run resolved and its callback returned.
func (h *Handle) Done() <-chan struct{} {
	return h.run.done
}

// Cancel cancels the run. An unresolved run resolves with context.Canceled.
func (h *Handle) Cancel() {
	h.run.cancel()
}

// Wait blocks until the run resolves or ctx is done, returning the run
// aggregate or failure cause.
func (h *Handle) Wait(ctx context.Context) (*model.Aggregate, error) {
	select {
	case <-h.run.done:
		return h.run.result, h.run.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Progress returns a snapshot of the run counters.
func (h *Handle) Progress() progress.Progress {
	return h.run.tracker.Snapshot()
}
