package event

import (
	"github.com/viant/simrun/service/messaging/memory"
)

// Option customises the event service.
type Option func(s *Service)

// WithNewMemoryQueueConfig sets the memory queue configuration factory
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newConfig
	}
}
