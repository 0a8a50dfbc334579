package event

import (
	"context"
	"errors"

	"github.com/viant/simrun/internal/clock"
	"github.com/viant/simrun/service/messaging"
)

// Publisher publishes typed events. When created by Service, events are only
// queued while a listener of the matching type is attached, and mirrored to
// the catch-all queue while a catch-all listener is attached.
type Publisher[T any] struct {
	queue  messaging.Queue[Event[T]]
	active func() bool
	mirror func() messaging.Queue[Event[any]]
}

// NewPublisher creates a publisher that always queues events.
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{
		queue: queue,
	}
}

// Publish publishes the event.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	var errs []error
	if p.mirror != nil {
		if anyQueue := p.mirror(); anyQueue != nil {
			errs = append(errs, anyQueue.Publish(ctx, &Event[any]{
				Context:   event.Context,
				CreatedAt: event.CreatedAt,
				Metadata:  event.Metadata,
				Data:      event.Data,
			}))
		}
	}
	if p.active == nil || p.active() {
		errs = append(errs, p.queue.Publish(ctx, event))
	}
	return errors.Join(errs...)
}

// Consume blocks until the next event is available.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
