package observer

import (
	"context"
	"sync"

	"github.com/jrife/kvnode/storage/kv"
	"github.com/jrife/kvnode/utils/stream"
)

var _ stream.Stream[kv.Option[kv.Value]] = (*Subscription)(nil)

// Subscription adapts a listener into a pull stream.
// Notifications are buffered without bound so that the
// lane delivering them never waits on the consumer.
type Subscription struct {
	registry *Registry
	ctx      context.Context
	signal   chan struct{}

	mu           sync.Mutex
	registration *Registration
	stopWatching func() bool
	pending      []kv.Option[kv.Value]
	ended        bool
	err          error

	value kv.Option[kv.Value]
}

// Subscribe registers a listener for key of node and returns it
// as a stream. Values in seed are emitted before any notification.
// The stream ends when ctx is done or the node is retired.
func (registry *Registry) Subscribe(ctx context.Context, node, key string, seed ...kv.Option[kv.Value]) *Subscription {
	subscription := &Subscription{
		registry: registry,
		ctx:      ctx,
		signal:   make(chan struct{}, 1),
		pending:  append([]kv.Option[kv.Value](nil), seed...),
	}

	registration := registry.addListener(node, key, subscription.push, func() {
		subscription.end(nil)
	})
	stopWatching := context.AfterFunc(ctx, func() {
		subscription.end(ctx.Err())
	})

	subscription.mu.Lock()
	subscription.registration = registration
	subscription.stopWatching = stopWatching
	ended := subscription.ended
	subscription.mu.Unlock()

	// ctx may already be done, in which case end ran
	// before it could see the registration
	if ended {
		stopWatching()
		registry.RemoveListener(registration)
	}

	return subscription
}

// Next implements stream.Stream.Next. It blocks until a value
// arrives or the subscription ends.
func (subscription *Subscription) Next() bool {
	for {
		subscription.mu.Lock()

		if subscription.err != nil {
			subscription.value = kv.Option[kv.Value]{}
			subscription.mu.Unlock()

			return false
		}

		if len(subscription.pending) > 0 {
			subscription.value = subscription.pending[0]
			subscription.pending[0] = kv.Option[kv.Value]{}
			subscription.pending = subscription.pending[1:]
			subscription.mu.Unlock()

			return true
		}

		if subscription.ended {
			subscription.value = kv.Option[kv.Value]{}
			subscription.mu.Unlock()

			return false
		}

		subscription.mu.Unlock()

		select {
		case <-subscription.signal:
		case <-subscription.ctx.Done():
			subscription.end(subscription.ctx.Err())
		}
	}
}

// Value implements stream.Stream.Value
func (subscription *Subscription) Value() kv.Option[kv.Value] {
	return subscription.value
}

// Error implements stream.Stream.Error
func (subscription *Subscription) Error() error {
	subscription.mu.Lock()
	defer subscription.mu.Unlock()

	return subscription.err
}

// Close ends the subscription. Values still buffered are
// returned by Next before it reports the end.
func (subscription *Subscription) Close() {
	subscription.end(nil)
}

func (subscription *Subscription) push(value kv.Option[kv.Value]) {
	subscription.mu.Lock()

	if subscription.ended {
		subscription.mu.Unlock()

		return
	}

	subscription.pending = append(subscription.pending, value)
	subscription.mu.Unlock()

	subscription.wake()
}

func (subscription *Subscription) end(err error) {
	subscription.mu.Lock()

	if subscription.ended {
		subscription.mu.Unlock()

		return
	}

	subscription.ended = true
	subscription.err = err
	registration := subscription.registration
	stopWatching := subscription.stopWatching
	subscription.mu.Unlock()

	if stopWatching != nil {
		stopWatching()
	}

	if registration != nil {
		subscription.registry.RemoveListener(registration)
	}

	subscription.wake()
}

func (subscription *Subscription) wake() {
	select {
	case subscription.signal <- struct{}{}:
	default:
	}
}
