// Package memory is the in-memory backend. Its nodes keep their
// contents for the life of the process only.
package memory

import (
	"github.com/jrife/kvnode/observer"
	"github.com/jrife/kvnode/storage/kv"
	"github.com/jrife/kvnode/storage/kv/node"
	"go.uber.org/zap"
)

const (
	DriverName = "memory"
)

// MemoryPlugin creates in-memory stores
type MemoryPlugin struct {
}

func (plugin *MemoryPlugin) Name() string {
	return DriverName
}

// NewStore creates an in-memory store. It accepts no options.
func (plugin *MemoryPlugin) NewStore(registry *observer.Registry, options map[string]interface{}, logger *zap.Logger) (kv.Store, error) {
	return New(registry, logger), nil
}

func (plugin *MemoryPlugin) NewTempStore(registry *observer.Registry, logger *zap.Logger) (kv.Store, error) {
	return New(registry, logger), nil
}

// New creates an in-memory store
func New(registry *observer.Registry, logger *zap.Logger) *node.Store {
	return node.NewStore(node.StoreConfig{
		Registry: registry,
		Logger:   logger,
	})
}
