package orchestrator

import (
	"github.com/viant/simrun/model"
	"github.com/viant/simrun/progress"
	"github.com/viant/simrun/service/dao"
	"github.com/viant/simrun/service/engine"
	"github.com/viant/simrun/service/event"
)

// Option customises the orchestrator.
type Option func(s *Service)

// WithEngine sets the simulation engine run by every unit.
func WithEngine(anEngine engine.Engine) Option {
	return func(s *Service) {
		s.engine = anEngine
	}
}

// WithRunDAO sets the run record store.
func WithRunDAO(runDAO dao.Service[string, model.Run]) Option {
	return func(s *Service) {
		s.runDAO = runDAO
	}
}

// WithEventService enables lifecycle event publishing.
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithProgressListener registers a callback receiving progress snapshots of every run.
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(s *Service) {
		s.onProgress = listener
	}
}

// WithRunIDPrefix sets the prefix of generated run IDs.
func WithRunIDPrefix(prefix string) Option {
	return func(s *Service) {
		s.runIDPrefix = prefix
	}
}
