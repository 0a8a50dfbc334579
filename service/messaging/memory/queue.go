package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/viant/simrun/service/messaging"
)

var errSettled = errors.New("message already settled")

// Config for memory queue implementation
type Config struct {
	// QueueBuffer is the channel capacity; Publish blocks once it is reached.
	QueueBuffer int
	// KeepRejected retains nacked messages so that they can be inspected with Rejected.
	KeepRejected bool
	// DropWhenFull makes Publish fail with messaging.ErrFull instead of blocking.
	DropWhenFull bool
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{QueueBuffer: 100, KeepRejected: true}
}

// envelope carries one published payload.
type envelope[T any] struct {
	id      string
	payload T
	settled atomic.Bool
	cause   error
	queue   *Queue[T]
}

func (e *envelope[T]) T() *T {
	return &e.payload
}

func (e *envelope[T]) Ack() error {
	if !e.settled.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %v", errSettled, e.id)
	}
	return nil
}

func (e *envelope[T]) Nack(err error) error {
	if !e.settled.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %v", errSettled, e.id)
	}
	e.cause = err
	e.queue.reject(e)
	return nil
}

// Queue is a channel backed messaging.Queue. Payloads are copied on publish
// so that senders may reuse them.
type Queue[T any] struct {
	config  Config
	pending chan *envelope[T]
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64

	mux      sync.Mutex
	rejected []*envelope[T]
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		config:  config,
		pending: make(chan *envelope[T], config.QueueBuffer),
		done:    make(chan struct{}),
	}
}

func (q *Queue[T]) isClosed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Publish enqueues a copy of t.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if t == nil {
		return fmt.Errorf("payload was nil")
	}
	if q.isClosed() {
		return messaging.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	item := &envelope[T]{id: uuid.New().String(), payload: *t, queue: q}
	if q.config.DropWhenFull {
		select {
		case q.pending <- item:
			return nil
		default:
			q.dropped.Add(1)
			return messaging.ErrFull
		}
	}
	select {
	case q.pending <- item:
		return nil
	case <-q.done:
		return messaging.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until a message is available, the queue is closed or ctx is
// done. Messages buffered before Close are still delivered.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case item := <-q.pending:
		return item, nil
	default:
	}
	select {
	case item := <-q.pending:
		return item, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.done:
	}
	select {
	case item := <-q.pending:
		return item, nil
	default:
		return nil, messaging.ErrClosed
	}
}

// Close closes the queue; it is safe to call multiple times
func (q *Queue[T]) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}

// Size returns the number of buffered messages.
func (q *Queue[T]) Size() int {
	return len(q.pending)
}

// Dropped returns how many messages were discarded because the queue was full.
func (q *Queue[T]) Dropped() int {
	return int(q.dropped.Load())
}

// Rejected returns the causes of nacked messages kept by the queue.
func (q *Queue[T]) Rejected() []error {
	q.mux.Lock()
	defer q.mux.Unlock()
	ret := make([]error, 0, len(q.rejected))
	for _, item := range q.rejected {
		ret = append(ret, item.cause)
	}
	return ret
}

func (q *Queue[T]) reject(item *envelope[T]) {
	if !q.config.KeepRejected {
		return
	}
	q.mux.Lock()
	q.rejected = append(q.rejected, item)
	q.mux.Unlock()
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
