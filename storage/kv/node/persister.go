package node

import "github.com/jrife/kvnode/storage/kv"

// Persister writes a node's contents through to durable storage.
// A node calls its Persister before it makes a change visible, so
// a failed Put, Delete or Clear leaves the node unchanged. Calls
// on one Persister are never concurrent with each other, except
// Size, which may run at any time.
type Persister interface {
	// Load returns the persisted contents of the node
	Load() (*kv.NodeMap, error)
	// Put persists key = value
	Put(key string, value kv.Value) error
	// Delete removes key. It has no effect if key is absent.
	Delete(key string) error
	// Clear removes every key of the node
	Clear() error
	// Size returns the size in bytes of the backing file
	Size() (int64, error)
	// Vacuum reclaims unused space
	Vacuum() error
	// Close releases the node's handle on the backend. It
	// must not delete data.
	Close() error
}

// PersisterFactory creates the persister for a node. The
// in-memory backend has none.
type PersisterFactory func(name string) (Persister, error)
