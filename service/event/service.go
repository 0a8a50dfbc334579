// Package event publishes run lifecycle events on typed in-memory queues so
// that callers can observe runs without blocking the orchestrator.
package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/simrun/service/messaging"
	"github.com/viant/simrun/service/messaging/memory"
)

// Service manages typed publishers and listeners.
type Service struct {
	publisher         *Publisher[any]
	listener          *Listener[any]
	typedPublishers   map[reflect.Type]any
	typedListener     map[reflect.Type]any
	mux               *sync.RWMutex
	memNewQueueConfig func(name string) memory.Config
}

// DefaultQueueConfig returns the queue configuration used by the service;
// events are dropped rather than blocking publishers when a listener lags.
func DefaultQueueConfig(string) memory.Config {
	config := memory.DefaultConfig()
	config.QueueBuffer = 1024
	config.DropWhenFull = true
	return config
}

// New creates an event service backed by memory queues.
func New(opts ...Option) (*Service, error) {
	ret := &Service{
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]any),
		mux:             &sync.RWMutex{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.memNewQueueConfig == nil {
		ret.memNewQueueConfig = DefaultQueueConfig
	}
	queue, err := QueueOf[Event[any]](ret, "any")
	if err != nil {
		return nil, err
	}
	ret.publisher = NewPublisher[any](queue)
	return ret, nil
}

// SetListener replaces the listener receiving every published event.
func (s *Service) SetListener(handler func(*Event[any])) {
	s.mux.Lock()
	previous := s.listener
	s.listener = NewListener[any](s.publisher, handler)
	s.listener.Start()
	s.mux.Unlock()
	if previous != nil {
		previous.Stop()
	}
}

// Close stops all listeners.
func (s *Service) Close() {
	s.mux.Lock()
	var stops []func()
	if s.listener != nil {
		stops = append(stops, s.listener.Stop)
		s.listener = nil
	}
	for key, listener := range s.typedListener {
		if stopper, ok := listener.(interface{ Stop() }); ok {
			stops = append(stops, stopper.Stop)
		}
		delete(s.typedListener, key)
	}
	s.mux.Unlock()
	for _, stop := range stops {
		stop()
	}
}

func (s *Service) mirror() messaging.Queue[Event[any]] {
	s.mux.RLock()
	defer s.mux.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.publisher.queue
}

func (s *Service) listening(key reflect.Type) bool {
	s.mux.RLock()
	_, ok := s.typedListener[key]
	s.mux.RUnlock()
	return ok
}

// QueueOf creates a named queue.
func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	if s.memNewQueueConfig == nil {
		return nil, fmt.Errorf("memory queue config was not set for %v", name)
	}
	return memory.NewQueue[T](s.memNewQueueConfig(name)), nil
}

func keyOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf replaces the listener receiving events of type T.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) error {
	key := keyOf[T]()
	publisher, err := PublisherOf[T](s)
	if err != nil {
		return err
	}
	listener := NewListener[T](publisher, handler)
	s.mux.Lock()
	previous, ok := s.typedListener[key]
	s.typedListener[key] = listener
	listener.Start()
	s.mux.Unlock()
	if ok {
		previous.(*Listener[T]).Stop()
	}
	return nil
}

// PublisherOf returns a publisher for the provided type
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T]), nil
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		return ret.(*Publisher[T]), nil
	}
	queue, err := QueueOf[Event[T]](s, key.String())
	if err != nil {
		return nil, err
	}
	publisher := NewPublisher[T](queue)
	publisher.mirror = s.mirror
	publisher.active = func() bool { return s.listening(key) }
	s.typedPublishers[key] = publisher
	return publisher, nil
}
