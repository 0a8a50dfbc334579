package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/viant/simrun"

var (
	mux      sync.Mutex
	provider *sdktrace.TracerProvider
	output   io.Closer
)

// Init writes spans as JSON to outputFile, or to os.Stdout when outputFile is
// empty. Only the first successful initialisation takes effect.
func Init(serviceName, serviceVersion, outputFile string) error {
	mux.Lock()
	installed := provider != nil
	mux.Unlock()
	if installed {
		return nil
	}
	var w io.Writer = os.Stdout
	var file *os.File
	if outputFile != "" {
		var err error
		if file, err = os.Create(outputFile); err != nil {
			return err
		}
		w = file
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		if file != nil {
			_ = file.Close()
		}
		return err
	}
	if err = InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
		return err
	}
	if file != nil {
		mux.Lock()
		output = file
		mux.Unlock()
	}
	return nil
}

// InitWithExporter installs exporter as the span sink of the global provider.
// Only the first successful initialisation takes effect.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	mux.Lock()
	defer mux.Unlock()
	if provider != nil {
		return nil
	}
	res, err := resource.New(context.Background(), resource.WithAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
	))
	if err != nil {
		return err
	}
	provider = sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return nil
}

// Shutdown flushes the provider and closes the trace file, if any.
func Shutdown(ctx context.Context) error {
	mux.Lock()
	p, closer := provider, output
	output = nil
	mux.Unlock()
	if p == nil {
		return nil
	}
	err := p.Shutdown(ctx)
	if closer != nil {
		if closeErr := closer.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// Span is a run or unit span. A nil *Span is valid and does nothing.
type Span struct {
	span trace.Span
}

// StartRun opens the span covering a whole run.
func StartRun(ctx context.Context, runID string, poolSize, iterations int) (context.Context, *Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "run",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.poolSize", poolSize),
			attribute.Int("run.iterations", iterations),
		))
	return ctx, &Span{span: span}
}

// StartUnit opens a child span covering one execution unit of a run.
func StartUnit(ctx context.Context, runID string, unit, iterations int) (context.Context, *Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "unit.run",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("unit.index", unit),
			attribute.Int("unit.iterations", iterations),
		))
	return ctx, &Span{span: span}
}

// Event records a lifecycle event of unit on the span.
func (s *Span) Event(name string, unit int) {
	if s == nil {
		return
	}
	s.span.AddEvent(name, trace.WithAttributes(attribute.Int("unit.index", unit)))
}

// End marks the span failed when err is not nil and ends it.
func (s *Span) End(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
