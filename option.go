package simrun

import (
	"github.com/viant/afs/storage"
	"github.com/viant/simrun/model"
	"github.com/viant/simrun/progress"
	"github.com/viant/simrun/service/dao"
	"github.com/viant/simrun/service/engine"
	"github.com/viant/simrun/service/event"
	"github.com/viant/simrun/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service.
type Option func(s *Service)

// WithConfig sets the service configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithEngine sets the simulation engine; the reference gauss engine is used by default.
func WithEngine(anEngine engine.Engine) Option {
	return func(s *Service) {
		s.engine = anEngine
	}
}

// WithEventService sets the lifecycle event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithRunDAO sets the run record store
func WithRunDAO(runDAO dao.Service[string, model.Run]) Option {
	return func(s *Service) {
		s.runDAO = runDAO
	}
}

// WithProgressListener registers a callback receiving progress snapshots.
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(s *Service) {
		s.onProgress = listener
	}
}

// WithConfigBaseURL sets the base URL relative simulation config locations are resolved against.
func WithConfigBaseURL(URL string) Option {
	return func(s *Service) {
		s.configBaseURL = URL
	}
}

// WithConfigFsOptions sets file system options used when loading simulation configs (e.g. embed.FS).
func WithConfigFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.configFsOptions = options
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter, or a
// file exporter when outputFile is set. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
