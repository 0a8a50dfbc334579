package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/viant/simrun/internal/clock"
	"github.com/viant/simrun/internal/idgen"
	"github.com/viant/simrun/model"
	"github.com/viant/simrun/progress"
	"github.com/viant/simrun/service/dao"
	runmemory "github.com/viant/simrun/service/dao/run/memory"
	"github.com/viant/simrun/service/engine"
	"github.com/viant/simrun/service/event"
	"github.com/viant/simrun/service/messaging"
	"github.com/viant/simrun/service/messaging/memory"
	"github.com/viant/simrun/service/partition"
	"github.com/viant/simrun/service/unit"
	"github.com/viant/simrun/tracing"
)

// Callbacks receive the run outcome. At most one of them is called per run,
// from the run reaction goroutine.
type Callbacks struct {
	OnSuccess func(result *model.Aggregate)
	OnError   func(err error)
}

// Service orchestrates simulation runs.
type Service struct {
	engine      engine.Engine
	runDAO      dao.Service[string, model.Run]
	events      *event.Service
	notices     *event.Publisher[event.Notice]
	onProgress  func(progress.Progress)
	runIDPrefix string

	mux      sync.Mutex
	active   map[string]*run
	shutdown bool
}

// RunDAO returns the run record store.
func (s *Service) RunDAO() dao.Service[string, model.Run] {
	return s.runDAO
}

// Start validates and partitions request, dispatches one shard per non-empty
// unit and returns without waiting for the outcome. Validation errors are
// returned synchronously and no unit is created.
func (s *Service) Start(ctx context.Context, request *model.Request, callbacks Callbacks) (*Handle, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	shards := partition.Partition(request)
	runID := idgen.NewRunID(s.runIDPrefix)

	s.mux.Lock()
	if s.shutdown {
		s.mux.Unlock()
		return nil, ErrShutdown
	}
	runCtx, cancel := context.WithCancel(ctx)
	tracker := progress.New(runID, request.Iterations, s.onProgress)
	runCtx, span := tracing.StartRun(runCtx, runID, request.PoolSize, request.Iterations)

	r := &run{
		service:   s,
		id:        runID,
		request:   request,
		shards:    shards,
		ctx:       runCtx,
		cancel:    cancel,
		callbacks: callbacks,
		tracker:   tracker,
		span:      span,
		replies:   memory.NewQueue[model.Reply](memory.Config{QueueBuffer: len(shards)}),
		units:     make(map[int]*unit.Unit, len(shards)),
		unitSpans: make(map[int]*tracing.Span, len(shards)),
		done:      make(chan struct{}),
		startedAt: clock.Now(),
	}
	r.record = &model.Run{
		ID:         runID,
		State:      model.StatePending,
		PoolSize:   request.PoolSize,
		Iterations: request.Iterations,
		Shards:     len(shards),
		StartedAt:  r.startedAt,
	}
	s.active[runID] = r
	s.mux.Unlock()

	r.save()
	r.dispatch()
	go r.react()
	return &Handle{ID: runID, run: r}, nil
}

// Lookup returns the handle of an unresolved run.
func (s *Service) Lookup(runID string) (*Handle, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	r, ok := s.active[runID]
	if !ok {
		return nil, false
	}
	return &Handle{ID: runID, run: r}, true
}

// Shutdown rejects new runs, cancels active ones and waits until they
// resolve or ctx is done.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	s.shutdown = true
	runs := make([]*run, 0, len(s.active))
	for _, r := range s.active {
		runs = append(runs, r)
	}
	s.mux.Unlock()
	for _, r := range runs {
		r.cancel()
	}
	for _, r := range runs {
		select {
		case <-r.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Service) release(runID string) {
	s.mux.Lock()
	delete(s.active, runID)
	s.mux.Unlock()
}

func (s *Service) publish(eventContext *event.Context, notice event.Notice) {
	if s.notices == nil {
		return
	}
	err := s.notices.Publish(context.Background(), event.NewEvent(eventContext, notice))
	if err != nil && !errors.Is(err, messaging.ErrFull) {
		log.Printf("orchestrator: failed to publish %v event for run %v: %v", eventContext.EventType, eventContext.RunID, err)
	}
}

// New creates an orchestrator. An engine is required; runs are stored in
// memory unless WithRunDAO is supplied.
func New(opts ...Option) (*Service, error) {
	ret := &Service{active: make(map[string]*run)}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.engine == nil {
		return nil, ErrMissingEngine
	}
	if ret.runDAO == nil {
		ret.runDAO = runmemory.New()
	}
	if ret.events != nil {
		publisher, err := event.PublisherOf[event.Notice](ret.events)
		if err != nil {
			return nil, fmt.Errorf("failed to create event publisher: %w", err)
		}
		ret.notices = publisher
	}
	return ret, nil
}
