package node

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/jrife/kvnode/observer"
	"github.com/jrife/kvnode/storage/kv"
	"github.com/jrife/kvnode/utils/log"
	"github.com/jrife/kvnode/utils/stream"
	"go.uber.org/zap"
)

var _ kv.Node = (*Node)(nil)

// Node is the kv.Node implementation shared by every backend.
// Its contents live in an immutable kv.NodeMap that is swapped
// on every write, so Get never takes a lock. Writes serialize on
// a short critical section covering persistence, the swap and the
// enqueue of the change notification; this is what keeps the
// notification order for a key equal to the order writes were
// applied.
type Node struct {
	name      string
	registry  *observer.Registry
	persister Persister
	logger    *zap.Logger

	current atomic.Pointer[kv.NodeMap]

	// writeMu guards baseline and orders writes
	writeMu sync.Mutex
	// baseline maps each key touched by the open transaction to
	// the value it held before the transaction first touched it.
	// It is nil while no transaction is open.
	baseline map[string]kv.Option[kv.Value]
	closed   bool

	// txnMu allows one transaction at a time
	txnMu sync.Mutex
}

// New creates a node. persister may be nil, in which case the
// node is purely in-memory. The node starts with the persisted
// contents, if any.
func New(name string, registry *observer.Registry, persister Persister, logger *zap.Logger) (*Node, error) {
	node := &Node{
		name:      name,
		registry:  registry,
		persister: persister,
		logger:    log.OrNop(logger).With(zap.String("node", name)),
	}

	contents := kv.EmptyNodeMap()

	if persister != nil {
		var err error

		contents, err = persister.Load()

		if err != nil {
			return nil, fmt.Errorf("could not load node %s: %w", name, err)
		}
	}

	node.current.Store(contents)

	return node, nil
}

// Name implements kv.Node.Name
func (node *Node) Name() string {
	return node.name
}

// Put implements kv.Node.Put
func (node *Node) Put(key string, value kv.Value) error {
	if !value.Kind().Valid() {
		return kv.ErrInvalidValue
	}

	return node.write(key, kv.Some(value))
}

// Remove implements kv.Node.Remove
func (node *Node) Remove(key string) error {
	return node.write(key, kv.None[kv.Value]())
}

// Get implements kv.Node.Get
func (node *Node) Get(key string) (kv.Value, bool) {
	return node.current.Load().Get(key)
}

// Contains implements kv.Node.Contains
func (node *Node) Contains(key string) bool {
	_, ok := node.current.Load().Get(key)

	return ok
}

// Keys implements kv.Node.Keys
func (node *Node) Keys() *treeset.Set {
	return node.current.Load().Keys()
}

// KeyCount implements kv.Node.KeyCount
func (node *Node) KeyCount() int64 {
	return int64(node.current.Load().Len())
}

// DBFileSize implements kv.Node.DBFileSize
func (node *Node) DBFileSize() int64 {
	if node.persister == nil {
		return 0
	}

	size, err := node.persister.Size()

	if err != nil {
		node.logger.Warn("could not determine backing file size", zap.Error(err))

		return 0
	}

	return size
}

// Vacuum implements kv.Node.Vacuum
func (node *Node) Vacuum() error {
	if node.persister == nil {
		return nil
	}

	node.writeMu.Lock()
	defer node.writeMu.Unlock()

	if node.closed {
		return kv.ErrClosed
	}

	return node.persister.Vacuum()
}

// Observe implements kv.Node.Observe
func (node *Node) Observe(ctx context.Context, key string, mode kv.ObserveMode) stream.Stream[kv.Option[kv.Value]] {
	var seed []kv.Option[kv.Value]

	// Holding writeMu pins the current value so that the seed
	// and the first notification can't be reordered or lost.
	node.writeMu.Lock()

	if mode == kv.ReplayCurrent {
		seed = append(seed, node.current.Load().Lookup(key))
	}

	subscription := node.registry.Subscribe(ctx, node.name, key, seed...)

	node.writeMu.Unlock()

	logger, _ := log.LoggerFromContext(ctx, node.logger)

	if logger != node.logger {
		logger = logger.With(zap.String("node", node.name))
	}

	logger = log.WithContext(ctx, logger).With(zap.String("key", key))

	if !logger.Core().Enabled(zap.DebugLevel) {
		return subscription
	}

	logger.Debug("observing key", zap.Bool("replay", mode == kv.ReplayCurrent))

	return stream.Pipeline[kv.Option[kv.Value]](subscription, stream.Log[kv.Option[kv.Value]](logger))
}

// Clear implements kv.Node.Clear
func (node *Node) Clear() error {
	node.writeMu.Lock()
	defer node.writeMu.Unlock()

	if node.persister != nil {
		if node.closed {
			return kv.ErrClosed
		}

		if err := node.persister.Clear(); err != nil {
			return fmt.Errorf("could not clear node %s: %w", node.name, err)
		}
	}

	current := node.current.Load()

	if node.baseline != nil {
		current.Each(func(key string, value kv.Value) {
			if _, ok := node.baseline[key]; !ok {
				node.baseline[key] = kv.Some(value)
			}
		})
	}

	node.current.Store(kv.EmptyNodeMap())
	node.registry.NotifyClear(node.name)

	return nil
}

// Close implements kv.Node.Close. Observations of this node end
// once their pending notifications have been delivered. An
// in-memory node keeps working after Close; a persisted node
// rejects further writes with kv.ErrClosed.
func (node *Node) Close() error {
	node.writeMu.Lock()

	if node.closed {
		node.writeMu.Unlock()

		return nil
	}

	node.closed = true
	node.writeMu.Unlock()

	node.registry.RetireNode(node.name)

	if node.persister == nil {
		return nil
	}

	if err := node.persister.Close(); err != nil {
		return fmt.Errorf("could not close node %s: %w", node.name, err)
	}

	return nil
}

// Transaction implements kv.Node.Transaction. A block that never
// returns, such as one ending in runtime.Goexit, is rolled back.
func (node *Node) Transaction(block func() kv.Outcome) (outcome kv.Outcome) {
	node.txnMu.Lock()
	defer node.txnMu.Unlock()

	node.writeMu.Lock()
	node.baseline = make(map[string]kv.Option[kv.Value])
	node.writeMu.Unlock()

	returned := false

	defer func() {
		node.writeMu.Lock()
		baseline := node.baseline
		node.baseline = nil
		node.writeMu.Unlock()

		if returned && !outcome.RolledBack() {
			node.logger.Debug("transaction committed", zap.Int("keys", len(baseline)))

			return
		}

		if !returned {
			node.logger.Warn("transaction block exited without returning")
		}

		node.logger.Debug("transaction rolled back", zap.Int("keys", len(baseline)), zap.NamedError("reason", outcome.Reason()))
		node.restore(baseline)
	}()

	outcome = node.run(block)
	returned = true

	return outcome
}

func (node *Node) restore(baseline map[string]kv.Option[kv.Value]) {
	for key, previous := range baseline {
		if err := node.write(key, previous); err != nil {
			node.logger.Warn("could not restore key during rollback", zap.String("key", key), zap.Error(err))
		}
	}
}

func (node *Node) isClosed() bool {
	node.writeMu.Lock()
	defer node.writeMu.Unlock()

	return node.closed
}

// run invokes block, turning a panic into a rollback
func (node *Node) run(block func() kv.Outcome) (outcome kv.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("transaction block panicked: %v", r)
			node.logger.Warn("rolling back transaction", zap.Error(err))
			outcome = kv.Rollback(err)
		}
	}()

	return block()
}

// write applies the write-then-notify protocol for one key
func (node *Node) write(key string, value kv.Option[kv.Value]) error {
	node.writeMu.Lock()
	defer node.writeMu.Unlock()

	if node.persister != nil {
		if node.closed {
			return kv.ErrClosed
		}

		var err error

		if value.Present {
			err = node.persister.Put(key, value.Value)
		} else {
			err = node.persister.Delete(key)
		}

		if err != nil {
			return fmt.Errorf("could not write key %s of node %s: %w", key, node.name, err)
		}
	}

	current := node.current.Load()

	if node.baseline != nil {
		if _, ok := node.baseline[key]; !ok {
			node.baseline[key] = current.Lookup(key)
		}
	}

	node.current.Store(current.Apply(key, value))
	node.registry.NotifyValueChange(node.name, key, value)

	return nil
}
