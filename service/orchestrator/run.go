package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/viant/simrun/internal/clock"
	"github.com/viant/simrun/model"
	"github.com/viant/simrun/progress"
	"github.com/viant/simrun/service/event"
	"github.com/viant/simrun/service/messaging/memory"
	"github.com/viant/simrun/service/partition"
	"github.com/viant/simrun/service/reducer"
	"github.com/viant/simrun/service/unit"
	"github.com/viant/simrun/tracing"
)

// run holds the state of one orchestrated run. Fields below replies are
// owned by the reaction goroutine once dispatch returns.
type run struct {
	service   *Service
	id        string
	request   *model.Request
	shards    []*partition.Shard
	ctx       context.Context
	cancel    context.CancelFunc
	callbacks Callbacks
	tracker   *progress.Tracker
	span      *tracing.Span
	startedAt time.Time

	replies   *memory.Queue[model.Reply]
	units     map[int]*unit.Unit
	unitSpans map[int]*tracing.Span
	record    *model.Run
	acc       *model.Aggregate
	succeeded int

	done   chan struct{}
	result *model.Aggregate
	err    error
}

// dispatch spawns one unit per shard and sends it the start message.
func (r *run) dispatch() {
	r.tracker.Planned(len(r.shards))
	for _, shard := range r.shards {
		unitCtx, span := tracing.StartUnit(r.ctx, r.id, shard.Index, shard.Iterations)
		u := unit.New(unitCtx, shard.Index, r.service.engine, r.replies)
		r.units[shard.Index] = u
		r.unitSpans[shard.Index] = span
		u.Start()
		r.tracker.Started()
		if err := u.Send(r.ctx, model.NewDispatch(shard.Config, shard.Iterations)); err != nil {
			u.Terminate()
			_ = r.replies.Publish(context.Background(), model.NewFailure(shard.Index, fmt.Errorf("%w: %v", unit.ErrTransport, err)))
			continue
		}
		r.span.Event(event.TypeUnitDispatched, shard.Index)
		r.service.publish(r.eventContext(event.TypeUnitDispatched, shard.Index, shard.Iterations), event.Notice{})
	}
	r.record.State = model.StateRunning
	r.save()
	r.service.publish(r.eventContext(event.TypeRunStarted, 0, r.request.Iterations), event.Notice{
		State:  model.StateRunning,
		Shards: len(r.shards),
	})
}

// react consumes unit replies until the run resolves.
func (r *run) react() {
	for {
		message, err := r.replies.Consume(r.ctx)
		if err != nil {
			r.resolve(model.StateCanceled, nil, r.cause(err))
			return
		}
		_ = message.Ack()
		if r.ctx.Err() != nil {
			r.resolve(model.StateCanceled, nil, r.ctx.Err())
			return
		}
		if r.handle(message.T()) {
			return
		}
	}
}

func (r *run) cause(err error) error {
	if ctxErr := r.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// handle applies one reply and returns true once the run resolved.
func (r *run) handle(reply *model.Reply) bool {
	if u, ok := r.units[reply.Unit]; ok {
		u.Terminate()
	}
	span := r.unitSpans[reply.Unit]
	delete(r.unitSpans, reply.Unit)

	if reply.Type == model.MessageSuccess && reply.Result == nil {
		reply = model.NewFailure(reply.Unit, unit.ErrEmptyResult)
	}
	if reply.Type != model.MessageSuccess {
		err := &unit.Error{Unit: reply.Unit, Err: reply.Err()}
		span.End(err)
		r.span.Event(event.TypeUnitFailed, reply.Unit)
		r.tracker.Failed()
		r.service.publish(r.eventContext(event.TypeUnitFailed, reply.Unit, 0), event.Notice{Error: err.Error()})
		r.resolve(model.StateFailed, nil, err)
		return true
	}

	summary := reply.Result
	span.End(nil)
	r.span.Event(event.TypeUnitSucceeded, reply.Unit)
	r.acc = reducer.Merge(r.acc, summary)
	r.succeeded++
	r.tracker.Succeeded(summary.Iterations)
	r.service.publish(r.eventContext(event.TypeUnitSucceeded, reply.Unit, summary.Iterations), event.Notice{Summary: summary})

	switch {
	case len(r.shards) == 1, r.acc.Iterations >= r.request.Iterations:
		reducer.Finalize(r.acc, clock.Since(r.startedAt))
		r.resolve(model.StateSucceeded, r.acc, nil)
		return true
	case r.succeeded == len(r.shards):
		r.resolve(model.StateFailed, nil, fmt.Errorf("%w: %d of %d", ErrIncompleteRun, r.acc.Iterations, r.request.Iterations))
		return true
	}
	return false
}

// resolve terminates the remaining units, records the outcome and invokes
// the matching callback. It runs once per run.
func (r *run) resolve(state string, result *model.Aggregate, err error) {
	r.cancel()
	for _, u := range r.units {
		u.Terminate()
	}
	for index, span := range r.unitSpans {
		span.End(context.Canceled)
		delete(r.unitSpans, index)
	}
	_ = r.replies.Close()

	endedAt := clock.Now()
	r.record.State = state
	r.record.Result = result
	r.record.EndedAt = &endedAt
	if err != nil {
		r.record.Error = err.Error()
	}
	r.save()
	r.result, r.err = result, err

	eventType := event.TypeRunSucceeded
	notice := event.Notice{State: state, Shards: len(r.shards), Result: result}
	if err != nil {
		eventType = event.TypeRunFailed
		notice.Error = err.Error()
	}
	eventContext := r.eventContext(eventType, 0, r.request.Iterations)
	eventContext.TimeTakenMs = int(endedAt.Sub(r.startedAt).Milliseconds())
	r.service.publish(eventContext, notice)
	r.span.End(err)
	r.service.release(r.id)

	if err != nil {
		if r.callbacks.OnError != nil {
			r.callbacks.OnError(err)
		}
	} else if r.callbacks.OnSuccess != nil {
		r.callbacks.OnSuccess(result)
	}
	close(r.done)
}

func (r *run) save() {
	if err := r.service.runDAO.Save(context.Background(), r.record); err != nil {
		log.Printf("orchestrator: failed to save run %v: %v", r.id, err)
	}
}

func (r *run) eventContext(eventType string, unitIndex, iterations int) *event.Context {
	return &event.Context{
		RunID:      r.id,
		Unit:       unitIndex,
		EventType:  eventType,
		Iterations: iterations,
	}
}
