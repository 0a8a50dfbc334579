package event

import (
	"context"
	"errors"
	"log"

	"github.com/viant/simrun/service/messaging"
)

// Listener consumes events from a publisher and passes them to a handler on
// its own goroutine.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewListener creates a listener.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Stop stops the listener and waits for the in-flight handler to return.
func (l *Listener[T]) Stop() {
	l.cancel()
	<-l.done
}

// Start starts consuming events.
func (l *Listener[T]) Start() {
	go func() {
		defer close(l.done)
		for {
			event, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if l.ctx.Err() != nil || errors.Is(err, messaging.ErrClosed) {
					return
				}
				log.Printf("event listener: failed to consume event: %v", err)
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}
