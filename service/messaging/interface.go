package messaging

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned when publishing to or consuming from a closed queue.
	ErrClosed = errors.New("messaging: queue closed")
	// ErrFull is returned by queues configured to drop messages instead of blocking.
	ErrFull = errors.New("messaging: queue full")
)

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)

	// Close releases the queue; pending and future Consume calls fail with ErrClosed
	Close() error
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
