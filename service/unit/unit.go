// Package unit implements an execution unit: an isolated goroutine that
// receives exactly one start message, runs its shard against the engine and
// reports one terminal reply.
package unit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/viant/simrun/model"
	"github.com/viant/simrun/service/engine"
	"github.com/viant/simrun/service/messaging"
	"github.com/viant/simrun/service/messaging/memory"
)

// Unit represents a single execution unit.
type Unit struct {
	index      int
	engine     engine.Engine
	inbox      messaging.Queue[model.Dispatch]
	replies    messaging.Queue[model.Reply]
	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	terminated atomic.Bool
	done       chan struct{}
}

// Option customises a unit.
type Option func(u *Unit)

// WithInbox overrides the unit inbox queue.
func WithInbox(inbox messaging.Queue[model.Dispatch]) Option {
	return func(u *Unit) {
		u.inbox = inbox
	}
}

// New creates a unit reporting to replies. The unit context derives from ctx,
// so cancelling ctx terminates the unit.
func New(ctx context.Context, index int, anEngine engine.Engine, replies messaging.Queue[model.Reply], options ...Option) *Unit {
	ret := &Unit{
		index:   index,
		engine:  anEngine,
		replies: replies,
		done:    make(chan struct{}),
	}
	ret.ctx, ret.cancel = context.WithCancel(ctx)
	for _, option := range options {
		option(ret)
	}
	if ret.inbox == nil {
		ret.inbox = memory.NewQueue[model.Dispatch](memory.Config{QueueBuffer: 1})
	}
	return ret
}

// Index returns the unit index.
func (u *Unit) Index() int {
	return u.index
}

// Start spawns the unit goroutine; subsequent calls are no-ops.
func (u *Unit) Start() {
	if !u.started.CompareAndSwap(false, true) {
		return
	}
	go u.run()
}

// Send posts a dispatch message to the unit inbox.
func (u *Unit) Send(ctx context.Context, dispatch *model.Dispatch) error {
	if u.terminated.Load() {
		return fmt.Errorf("%w: unit %d already terminated", ErrTransport, u.index)
	}
	return u.inbox.Publish(ctx, dispatch)
}

// Terminate cancels the unit and releases its inbox. It is safe to call
// multiple times and from any goroutine.
func (u *Unit) Terminate() {
	if !u.terminated.CompareAndSwap(false, true) {
		return
	}
	u.cancel()
	_ = u.inbox.Close()
}

// Terminated returns true once Terminate was called.
func (u *Unit) Terminated() bool {
	return u.terminated.Load()
}

// Done is closed when the unit goroutine exits.
func (u *Unit) Done() <-chan struct{} {
	return u.done
}

func (u *Unit) run() {
	defer close(u.done)
	reply := u.handle()
	if reply == nil {
		return
	}
	if err := u.replies.Publish(context.Background(), reply); err != nil && !errors.Is(err, messaging.ErrClosed) {
		log.Printf("unit %d: failed to publish %v reply: %v", u.index, reply.Type, err)
	}
}

// handle returns nil when the unit was terminated before producing an outcome.
func (u *Unit) handle() (reply *model.Reply) {
	defer func() {
		if r := recover(); r != nil {
			reply = model.NewFailure(u.index, fmt.Errorf("%w: unit %d panicked: %v", ErrTransport, u.index, r))
		}
	}()
	message, err := u.inbox.Consume(u.ctx)
	if err != nil {
		if u.ctx.Err() != nil {
			return nil
		}
		return model.NewFailure(u.index, fmt.Errorf("%w: %v", ErrTransport, err))
	}
	dispatch := message.T()
	if dispatch.Type != model.MessageStart {
		_ = message.Nack(ErrUnexpectedMessage)
		return model.NewFailure(u.index, fmt.Errorf("%w: %q", ErrUnexpectedMessage, dispatch.Type))
	}
	_ = message.Ack()
	summary, err := u.engine.Run(u.ctx, dispatch.Config, dispatch.Iterations)
	if err != nil {
		return model.NewFailure(u.index, err)
	}
	if summary == nil {
		return model.NewFailure(u.index, ErrEmptyResult)
	}
	return model.NewSuccess(u.index, summary)
}
