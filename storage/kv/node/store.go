package node

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jrife/kvnode/observer"
	"github.com/jrife/kvnode/storage/kv"
	"github.com/jrife/kvnode/utils/log"
	"go.uber.org/zap"
)

var _ kv.Store = (*Store)(nil)

// StoreConfig configures a Store
type StoreConfig struct {
	// Registry delivers change notifications. Required.
	Registry *observer.Registry
	// Persister creates the persister of each node. Nil
	// makes every node in-memory.
	Persister PersisterFactory
	// Close is called once after every node was closed. It
	// releases whatever the persisters share, such as a
	// database handle.
	Close  func() error
	Logger *zap.Logger
}

// Store hands out one Node per name
type Store struct {
	config StoreConfig
	logger *zap.Logger

	mu     sync.Mutex
	nodes  map[string]*Node
	closed bool
}

// NewStore creates an empty Store
func NewStore(config StoreConfig) *Store {
	if config.Registry == nil {
		panic("node: StoreConfig.Registry is required")
	}

	return &Store{
		config: config,
		logger: log.OrNop(config.Logger),
		nodes:  make(map[string]*Node),
	}
}

// Open implements kv.Store.Open. A persisted node that was closed
// on its own is replaced by a fresh one over the same data. A
// closed in-memory node is still live and is returned as is.
func (store *Store) Open(name string) (kv.Node, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.closed {
		return nil, kv.ErrClosed
	}

	previous, ok := store.nodes[name]

	if ok && (previous.persister == nil || !previous.isClosed()) {
		return previous, nil
	}

	var persister Persister

	if store.config.Persister != nil {
		var err error

		persister, err = store.config.Persister(name)

		if err != nil {
			return nil, fmt.Errorf("could not open node %s: %w", name, err)
		}
	}

	node, err := New(name, store.config.Registry, persister, store.logger)

	if err != nil {
		if persister != nil {
			persister.Close()
		}

		return nil, err
	}

	store.nodes[name] = node
	store.logger.Debug("opened node", zap.String("node", name), zap.Bool("reopened", previous != nil))

	return node, nil
}

// Nodes implements kv.Store.Nodes
func (store *Store) Nodes() []string {
	store.mu.Lock()
	defer store.mu.Unlock()

	names := make([]string, 0, len(store.nodes))

	for name := range store.nodes {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Close implements kv.Store.Close
func (store *Store) Close() error {
	store.mu.Lock()

	if store.closed {
		store.mu.Unlock()

		return nil
	}

	store.closed = true
	nodes := store.nodes
	store.mu.Unlock()

	var firstErr error

	for name, node := range nodes {
		if err := node.Close(); err != nil {
			store.logger.Warn("could not close node", zap.String("node", name), zap.Error(err))

			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if store.config.Close != nil {
		if err := store.config.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
