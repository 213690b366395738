package kv

import (
	"context"
	"errors"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/jrife/kvnode/utils/stream"
)

var (
	// ErrClosed indicates that the node or store was closed
	ErrClosed = errors.New("store was closed")
	// ErrBackendUnavailable indicates that a durable backend could not be opened
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrSerialization indicates that a value could not be encoded
	ErrSerialization = errors.New("serialization failure")
	// ErrInvalidValue indicates an attempt to store the zero Value
	ErrInvalidValue = errors.New("value has no kind")
)

// ObserveMode controls what an observation emits first
type ObserveMode int

const (
	// ChangesOnly emits only changes that happen after the
	// observation starts.
	ChangesOnly ObserveMode = iota
	// ReplayCurrent emits the value held at subscription time
	// (or its absence) before any subsequent change.
	ReplayCurrent
)

// Node is one named key-value namespace. Every backend
// implements Node with identical semantics; they differ only
// in what survives the process.
//
// Writes are applied and then announced to observers of the
// written key. Announcements for one key are delivered in the
// order the writes were applied, no matter how many goroutines
// write concurrently. Reads never block.
type Node interface {
	// Name returns the name this node was opened with
	Name() string
	// Put sets key to value. value must have a valid kind.
	Put(key string, value Value) error
	// Get returns the value stored under key
	Get(key string) (Value, bool)
	// Remove deletes key. It is equivalent to putting an absent value.
	Remove(key string) error
	// Observe returns a stream of the values written to key. The stream
	// ends when ctx is done, in which case Error returns ctx.Err(), or
	// when the node is closed, in which case Error returns nil.
	Observe(ctx context.Context, key string, mode ObserveMode) stream.Stream[Option[Value]]
	// Clear removes every key. Observers of every key see an
	// absent value.
	Clear() error
	// Contains returns true if key is set
	Contains(key string) bool
	// Keys returns the set of keys currently set
	Keys() *treeset.Set
	// KeyCount returns the number of keys currently set
	KeyCount() int64
	// DBFileSize returns the size in bytes of the backing file,
	// or 0 if there is none.
	DBFileSize() int64
	// Vacuum reclaims unused space in the backing file, if any
	Vacuum() error
	// Close releases background resources held for this node.
	// It does not delete data.
	Close() error
	// Transaction runs block with the node in transaction mode.
	// Only one transaction runs on a node at a time; Transaction
	// blocks until any other transaction on this node has finished.
	// If block returns a rollback outcome or panics every key it
	// touched is restored to the value it held before the
	// transaction. The returned Outcome reports what happened.
	Transaction(block func() Outcome) Outcome
}

// Store maps node names to nodes. Opening the same name
// twice returns the same Node, unless it was a persisted
// node that was closed in between; that one is replaced by
// a fresh Node over the same data.
type Store interface {
	// Open returns the node with this name, creating it
	// on first use.
	Open(name string) (Node, error)
	// Nodes returns the names of all nodes opened so far
	Nodes() []string
	// Close closes every node and the backend
	Close() error
}
