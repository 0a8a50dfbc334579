package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/simrun/model"
	"github.com/viant/simrun/service/dao"
	"github.com/viant/simrun/service/dao/criteria"
	runmemory "github.com/viant/simrun/service/dao/run/memory"
	"github.com/viant/simrun/service/engine"
	"github.com/viant/simrun/service/engine/gauss"
	"github.com/viant/simrun/service/event"
	"github.com/viant/simrun/service/unit"
)

type outcome struct {
	successes atomic.Int32
	failures  atomic.Int32
	result    *model.Aggregate
	err       error
}

func (o *outcome) callbacks() Callbacks {
	return Callbacks{
		OnSuccess: func(result *model.Aggregate) {
			o.successes.Add(1)
			o.result = result
		},
		OnError: func(err error) {
			o.failures.Add(1)
			o.err = err
		},
	}
}

func waitDone(t *testing.T, handle *Handle) {
	select {
	case <-handle.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("run %v did not resolve", handle.ID)
	}
}

func newService(t *testing.T, anEngine engine.Engine, opts ...Option) *Service {
	srv, err := New(append([]Option{WithEngine(anEngine)}, opts...)...)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return srv
}

func TestService_Start_ConcreteScenario(t *testing.T) {
	bySeed := map[int64]*model.Summary{
		100: {MinMetric: 1, MaxMetric: 5, AvgMetric: 3, Iterations: 4},
		104: {MinMetric: 2, MaxMetric: 6, AvgMetric: 4, Iterations: 3},
		107: {MinMetric: 0, MaxMetric: 7, AvgMetric: 2, Iterations: 3},
	}
	var mux sync.Mutex
	dispatched := map[int64]int{}
	srv := newService(t, engine.Func(func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
		mux.Lock()
		dispatched[config.RngSeed] = iterations
		mux.Unlock()
		summary := *bySeed[config.RngSeed]
		return &summary, nil
	}))

	request, err := model.NewRequest(3, "10", &model.SimConfig{RngSeed: 100})
	assert.NoError(t, err)
	out := &outcome{}
	handle, err := srv.Start(context.Background(), request, out.callbacks())
	if !assert.NoError(t, err) {
		return
	}
	waitDone(t, handle)

	assert.EqualValues(t, 1, out.successes.Load())
	assert.EqualValues(t, 0, out.failures.Load())
	assert.Equal(t, map[int64]int{100: 4, 104: 3, 107: 3}, dispatched)
	assert.EqualValues(t, 0, out.result.MinMetric)
	assert.EqualValues(t, 7, out.result.MaxMetric)
	assert.Equal(t, 10, out.result.Iterations)
	assert.InDelta(t, 3.0, out.result.AvgMetric, 1e-12)
	assert.True(t, out.result.ElapsedSeconds >= 0)

	result, err := handle.Wait(context.Background())
	assert.NoError(t, err)
	assert.Same(t, out.result, result)

	record, err := srv.RunDAO().Load(context.Background(), handle.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StateSucceeded, record.State)
	assert.Equal(t, 3, record.Shards)
	assert.Equal(t, 10, record.Result.Iterations)
	assert.NotNil(t, record.EndedAt)

	snapshot := handle.Progress()
	assert.Equal(t, 3, snapshot.TotalShards)
	assert.Equal(t, 3, snapshot.CompletedShards)
	assert.Equal(t, 0, snapshot.RunningShards)
	assert.Equal(t, 10, snapshot.CompletedIterations)
}

func TestService_Start_SingleShardFastPath(t *testing.T) {
	var calls atomic.Int32
	srv := newService(t, engine.Func(func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
		calls.Add(1)
		// an under-reporting engine still resolves a single-shard run
		return &model.Summary{MinMetric: 9, MaxMetric: 9, AvgMetric: 9}, nil
	}))
	out := &outcome{}
	handle, err := srv.Start(context.Background(), &model.Request{PoolSize: 5, Iterations: 1}, out.callbacks())
	if !assert.NoError(t, err) {
		return
	}
	waitDone(t, handle)
	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 1, out.successes.Load())
	assert.EqualValues(t, 0, out.failures.Load())
	assert.EqualValues(t, 9, out.result.AvgMetric)
}

func TestService_Start_FailureAtAnyPosition(t *testing.T) {
	for position := 0; position < 3; position++ {
		t.Run(fmt.Sprintf("position %d", position), func(t *testing.T) {
			gates := map[int64]chan struct{}{1: make(chan struct{}), 5: make(chan struct{}), 8: make(chan struct{})}
			order := []int64{1, 5, 8}
			failing := order[position]
			srv := newService(t, engine.Func(func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
				select {
				case <-gates[config.RngSeed]:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				if config.RngSeed == failing {
					return nil, assert.AnError
				}
				return &model.Summary{MinMetric: 1, MaxMetric: 2, AvgMetric: 1.5, Iterations: iterations}, nil
			}))
			out := &outcome{}
			handle, err := srv.Start(context.Background(), &model.Request{PoolSize: 3, Iterations: 10, Config: &model.SimConfig{RngSeed: 1}}, out.callbacks())
			if !assert.NoError(t, err) {
				return
			}
			for i, seed := range order {
				close(gates[seed])
				if seed == failing {
					break
				}
				expect := i + 1
				assert.Eventually(t, func() bool {
					return handle.Progress().CompletedShards == expect
				}, 2*time.Second, time.Millisecond)
			}
			waitDone(t, handle)

			assert.EqualValues(t, 0, out.successes.Load())
			assert.EqualValues(t, 1, out.failures.Load())
			assert.ErrorIs(t, out.err, assert.AnError)
			unitErr := &unit.Error{}
			if assert.True(t, errors.As(out.err, &unitErr)) {
				assert.Equal(t, position, unitErr.Unit)
			}
			record, err := srv.RunDAO().Load(context.Background(), handle.ID)
			assert.NoError(t, err)
			assert.Equal(t, model.StateFailed, record.State)
			assert.Nil(t, record.Result)
		})
	}
}

func TestService_Start_FailureTerminatesSiblings(t *testing.T) {
	var canceled sync.WaitGroup
	canceled.Add(2)
	srv := newService(t, engine.Func(func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
		if config.RngSeed == 1 {
			return nil, assert.AnError
		}
		<-ctx.Done()
		canceled.Done()
		return nil, ctx.Err()
	}))
	out := &outcome{}
	handle, err := srv.Start(context.Background(), &model.Request{PoolSize: 3, Iterations: 3, Config: &model.SimConfig{RngSeed: 1}}, out.callbacks())
	if !assert.NoError(t, err) {
		return
	}
	waitDone(t, handle)
	assert.ErrorIs(t, out.err, assert.AnError)

	siblingsDone := make(chan struct{})
	go func() {
		canceled.Wait()
		close(siblingsDone)
	}()
	select {
	case <-siblingsDone:
	case <-time.After(2 * time.Second):
		t.Fatal("sibling units were not terminated")
	}
	assert.EqualValues(t, 1, out.failures.Load())
	assert.EqualValues(t, 0, out.successes.Load())
}

func TestService_Start_Cancel(t *testing.T) {
	started := make(chan struct{}, 4)
	srv := newService(t, engine.Func(func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	out := &outcome{}
	handle, err := srv.Start(context.Background(), &model.Request{PoolSize: 4, Iterations: 100}, out.callbacks())
	if !assert.NoError(t, err) {
		return
	}
	_, ok := srv.Lookup(handle.ID)
	assert.True(t, ok)
	for i := 0; i < 4; i++ {
		<-started
	}
	handle.Cancel()
	waitDone(t, handle)

	assert.EqualValues(t, 0, out.successes.Load())
	assert.EqualValues(t, 1, out.failures.Load())
	assert.ErrorIs(t, out.err, context.Canceled)
	_, ok = srv.Lookup(handle.ID)
	assert.False(t, ok)

	runs, err := srv.RunDAO().List(context.Background(), dao.NewParameter(criteria.StateParameter, model.StateCanceled))
	assert.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestService_Start_Validation(t *testing.T) {
	var calls atomic.Int32
	runDAO := runmemory.New()
	srv := newService(t, engine.Func(func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
		calls.Add(1)
		return &model.Summary{Iterations: iterations}, nil
	}), WithRunDAO(runDAO))

	var testCases = []struct {
		description string
		request     *model.Request
		expect      error
	}{
		{description: "zero pool", request: &model.Request{PoolSize: 0, Iterations: 10}, expect: model.ErrInvalidPoolSize},
		{description: "zero iterations", request: &model.Request{PoolSize: 2, Iterations: 0}, expect: model.ErrInvalidIterations},
		{description: "negative iterations", request: &model.Request{PoolSize: 2, Iterations: -5}, expect: model.ErrInvalidIterations},
		{description: "nil request", request: nil},
	}
	for _, testCase := range testCases {
		out := &outcome{}
		handle, err := srv.Start(context.Background(), testCase.request, out.callbacks())
		assert.Error(t, err, testCase.description)
		assert.Nil(t, handle, testCase.description)
		if testCase.expect != nil {
			assert.ErrorIs(t, err, testCase.expect, testCase.description)
		}
		assert.EqualValues(t, 0, out.failures.Load(), testCase.description)
	}
	assert.EqualValues(t, 0, calls.Load())
	runs, err := runDAO.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestService_Start_IncompleteRun(t *testing.T) {
	srv := newService(t, engine.Func(func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
		return &model.Summary{Iterations: iterations - 1}, nil
	}))
	out := &outcome{}
	handle, err := srv.Start(context.Background(), &model.Request{PoolSize: 2, Iterations: 10}, out.callbacks())
	if !assert.NoError(t, err) {
		return
	}
	waitDone(t, handle)
	assert.ErrorIs(t, out.err, ErrIncompleteRun)
	assert.EqualValues(t, 0, out.successes.Load())
}

func TestService_Start_Reproducible(t *testing.T) {
	srv := newService(t, gauss.New())
	config := &model.SimConfig{
		RngSeed:          2024,
		Duration:         120,
		DurationVariance: 10,
		Targets:          1,
		Players:          []*model.Player{{Name: "mage", Power: 600, Variance: 0.1}, {Name: "rogue", Power: 550, Variance: 0.15}},
	}
	execute := func(pool int) *model.Aggregate {
		handle, err := srv.Start(context.Background(), &model.Request{PoolSize: pool, Iterations: 997, Config: config}, Callbacks{})
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		result, err := handle.Wait(ctx)
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		return result
	}
	single := execute(1)
	parallel := execute(6)
	assert.Equal(t, 997, single.Iterations)
	assert.Equal(t, 997, parallel.Iterations)
	assert.Equal(t, single.MinMetric, parallel.MinMetric)
	assert.Equal(t, single.MaxMetric, parallel.MaxMetric)
	assert.InEpsilon(t, single.AvgMetric, parallel.AvgMetric, 1e-9)
	assert.Equal(t, single.Histogram, parallel.Histogram)
}

func TestService_Events(t *testing.T) {
	events, err := event.New()
	if !assert.NoError(t, err) {
		return
	}
	defer events.Close()
	var mux sync.Mutex
	var types []string
	received := make(chan struct{})
	assert.NoError(t, event.SetListenerOf[event.Notice](events, func(e *event.Event[event.Notice]) {
		mux.Lock()
		types = append(types, e.Context.EventType)
		mux.Unlock()
		if e.Context.EventType == event.TypeRunSucceeded {
			assert.Equal(t, 4, e.Data.Result.Iterations)
			close(received)
		}
	}))

	srv := newService(t, engine.Func(func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
		return &model.Summary{MinMetric: 1, MaxMetric: 1, AvgMetric: 1, Iterations: iterations}, nil
	}), WithEventService(events))
	handle, err := srv.Start(context.Background(), &model.Request{PoolSize: 2, Iterations: 4}, Callbacks{})
	if !assert.NoError(t, err) {
		return
	}
	waitDone(t, handle)
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("run.succeeded event was not delivered")
	}
	mux.Lock()
	defer mux.Unlock()
	assert.ElementsMatch(t, []string{
		event.TypeUnitDispatched, event.TypeUnitDispatched, event.TypeRunStarted,
		event.TypeUnitSucceeded, event.TypeUnitSucceeded, event.TypeRunSucceeded,
	}, types)
}

func TestService_Shutdown(t *testing.T) {
	srv := newService(t, engine.Func(func(ctx context.Context, config *model.SimConfig, iterations int) (*model.Summary, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	out := &outcome{}
	handle, err := srv.Start(context.Background(), &model.Request{PoolSize: 2, Iterations: 2}, out.callbacks())
	if !assert.NoError(t, err) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
	waitDone(t, handle)
	assert.ErrorIs(t, out.err, context.Canceled)

	_, err = srv.Start(context.Background(), &model.Request{PoolSize: 1, Iterations: 1}, Callbacks{})
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestNew(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrMissingEngine)
}
