package simrun

import (
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/simrun/model"
	"github.com/viant/simrun/progress"
	"github.com/viant/simrun/service/dao"
	runmemory "github.com/viant/simrun/service/dao/run/memory"
	"github.com/viant/simrun/service/engine"
	"github.com/viant/simrun/service/engine/gauss"
	"github.com/viant/simrun/service/event"
	"github.com/viant/simrun/service/loader"
	"github.com/viant/simrun/service/orchestrator"
)

// Service wires the orchestrator with its stores, loader and event service.
type Service struct {
	runtime         *Runtime
	config          *Config
	engine          engine.Engine
	eventService    *event.Service
	runDAO          dao.Service[string, model.Run]
	onProgress      func(progress.Progress)
	configBaseURL   string
	configFsOptions []storage.Option
	tracingErr      error
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.tracingErr != nil {
		return fmt.Errorf("failed to initialise tracing: %w", s.tracingErr)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}
	timeout, err := parseTimeout(s.config.RunTimeout)
	if err != nil {
		return fmt.Errorf("invalid runTimeout: %w", err)
	}
	s.runtime.orchestrator, err = orchestrator.New(
		orchestrator.WithEngine(s.engine),
		orchestrator.WithRunDAO(s.runDAO),
		orchestrator.WithEventService(s.eventService),
		orchestrator.WithProgressListener(s.onProgress),
		orchestrator.WithRunIDPrefix(s.config.RunIDPrefix))
	if err != nil {
		return err
	}
	s.runtime.loader = loader.New(afs.New(), s.configBaseURL, s.configFsOptions...)
	s.runtime.runDAO = s.runDAO
	s.runtime.defaultPool = s.config.Pool.Units
	s.runtime.defaultTimeout = timeout
	return nil
}

func (s *Service) ensureBaseSetup() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.engine == nil {
		s.engine = gauss.New()
	}
	if s.runDAO == nil {
		s.runDAO = runmemory.New()
	}
	if s.eventService == nil {
		var err error
		if s.eventService, err = event.New(); err != nil {
			return fmt.Errorf("failed to create event service: %w", err)
		}
	}
	return nil
}

// Runtime returns the service runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// EventService returns the lifecycle event service.
func (s *Service) EventService() *event.Service {
	return s.eventService
}

// New creates a service.
func New(options ...Option) (*Service, error) {
	ret := &Service{runtime: &Runtime{}}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
