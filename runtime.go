package simrun

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/simrun/model"
	"github.com/viant/simrun/service/dao"
	"github.com/viant/simrun/service/dao/criteria"
	"github.com/viant/simrun/service/loader"
	"github.com/viant/simrun/service/orchestrator"
)

// Runtime represents a simulation run runtime
type Runtime struct {
	orchestrator   *orchestrator.Service
	loader         *loader.Service
	runDAO         dao.Service[string, model.Run]
	defaultPool    int
	defaultTimeout time.Duration
}

// LoadConfig loads a simulation config from URL (relative to the configured
// base URL) and applies key=value overrides.
func (r *Runtime) LoadConfig(ctx context.Context, URL string, overrides ...string) (*model.SimConfig, error) {
	return r.loader.Load(ctx, URL, overrides...)
}

// NewRequest builds a validated request from loosely typed values. A nil or
// zero pool size falls back to the configured pool units.
func (r *Runtime) NewRequest(poolSize, iterations interface{}, config *model.SimConfig) (*model.Request, error) {
	if poolSize == nil || poolSize == 0 || poolSize == "" {
		poolSize = r.defaultPool
	}
	return model.NewRequest(poolSize, iterations, config)
}

// Start starts a run without waiting for its outcome.
func (r *Runtime) Start(ctx context.Context, request *model.Request, callbacks orchestrator.Callbacks) (*orchestrator.Handle, error) {
	return r.orchestrator.Start(ctx, request, callbacks)
}

// Run starts a run and waits for its aggregate. A zero timeout uses the
// configured run timeout; once it elapses the run is cancelled. Without any
// timeout Run waits until the run resolves or ctx is done.
func (r *Runtime) Run(ctx context.Context, request *model.Request, timeout time.Duration) (*model.Aggregate, error) {
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	handle, err := r.orchestrator.Start(ctx, request, orchestrator.Callbacks{})
	if err != nil {
		return nil, err
	}
	var waitCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		waitCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	result, err := handle.Wait(waitCtx)
	if err != nil && waitCtx.Err() != nil {
		handle.Cancel()
		<-handle.Done()
		return nil, fmt.Errorf("run %v did not complete within %v: %w", handle.ID, timeout, err)
	}
	return result, err
}

// CancelRun cancels an unresolved run; it returns false when the run is
// unknown or already resolved.
func (r *Runtime) CancelRun(runID string) bool {
	handle, ok := r.orchestrator.Lookup(runID)
	if !ok {
		return false
	}
	handle.Cancel()
	return true
}

// LookupRun returns the record of a run.
func (r *Runtime) LookupRun(ctx context.Context, runID string) (*model.Run, error) {
	return r.runDAO.Load(ctx, runID)
}

// ListRuns returns run records, optionally filtered by state.
func (r *Runtime) ListRuns(ctx context.Context, states ...string) ([]*model.Run, error) {
	var parameters []*dao.Parameter
	if len(states) > 0 {
		parameters = append(parameters, dao.NewParameter(criteria.StateParameter, states...))
	}
	return r.runDAO.List(ctx, parameters...)
}

// Shutdown cancels active runs and waits for them to resolve.
func (r *Runtime) Shutdown(ctx context.Context) error {
	return r.orchestrator.Shutdown(ctx)
}

func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
