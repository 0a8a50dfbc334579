package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/simrun/model"
	"github.com/viant/simrun/service/dao"
	"github.com/viant/simrun/service/dao/criteria"
)

// Service implements an in-memory, thread-safe store for run records. All
// API methods work with copies to eliminate data races between goroutines.
type Service struct {
	runs map[string]*model.Run
	mux  sync.RWMutex
}

var _ dao.Service[string, model.Run] = (*Service)(nil)

// Save inserts or replaces a run record.
func (s *Service) Save(_ context.Context, run *model.Run) error {
	if run == nil {
		return dao.ErrNilEntity
	}
	if run.ID == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.runs[run.ID] = run.Clone()
	return nil
}

// Load returns a copy of the run record.
func (s *Service) Load(_ context.Context, id string) (*model.Run, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.RLock()
	run, ok := s.runs[id]
	s.mux.RUnlock()
	if !ok {
		return nil, dao.ErrNotFound
	}
	return run.Clone(), nil
}

// Delete removes the run record.
func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.runs[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.runs, id)
	return nil
}

// List returns run records matching parameters, oldest first.
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*model.Run, error) {
	s.mux.RLock()
	out := make([]*model.Run, 0, len(s.runs))
	for _, run := range s.runs {
		if !criteria.FilterByState(run.State, parameters) {
			continue
		}
		out = append(out, run.Clone())
	}
	s.mux.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

// New creates an in-memory run store.
func New() *Service {
	return &Service{runs: make(map[string]*model.Run)}
}
