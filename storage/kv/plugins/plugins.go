package plugins

import (
	"errors"
	"fmt"

	"github.com/jrife/kvnode/config"
	"github.com/jrife/kvnode/observer"
	"github.com/jrife/kvnode/storage/kv"
	"github.com/jrife/kvnode/storage/kv/plugins/bbolt"
	"github.com/jrife/kvnode/storage/kv/plugins/memory"
	"github.com/jrife/kvnode/storage/kv/plugins/sqlite"
	"go.uber.org/zap"
)

// PluginOptions carries backend specific settings, such as "path"
type PluginOptions = map[string]interface{}

// Plugin represents a kv storage plugin
type Plugin interface {
	// Name returns the name of the storage plugin
	Name() string
	// NewStore returns an instance of the plugin store whose nodes
	// announce their changes through registry
	NewStore(registry *observer.Registry, options PluginOptions, logger *zap.Logger) (kv.Store, error)
	// NewTempStore returns an instance of the plugin store
	// initialized with some sane defaults. It is meant for
	// tests that need an initialized instance of the plugin's
	// store without knowing how to initialize it. Closing
	// the store discards it.
	NewTempStore(registry *observer.Registry, logger *zap.Logger) (kv.Store, error)
}

var (
	_ Plugin = (*memory.MemoryPlugin)(nil)
	_ Plugin = (*bbolt.BBoltPlugin)(nil)
	_ Plugin = (*sqlite.SQLitePlugin)(nil)
)

var plugins []Plugin

func init() {
	plugins = append(plugins, &memory.MemoryPlugin{}, &bbolt.BBoltPlugin{}, &sqlite.SQLitePlugin{})
}

// ErrNoSuchPlugin indicates that no plugin has the requested name
var ErrNoSuchPlugin = errors.New("no such plugin")

// Get returns the plugin whose name matches the given name.
// It returns nil if no such plugin is found.
func Get(name string) Plugin {
	for _, plugin := range plugins {
		if plugin.Name() == name {
			return plugin
		}
	}

	return nil
}

// Plugins lists all the plugins that are available
func Plugins() []Plugin {
	return plugins
}

// Open creates the store described by cfg
func Open(cfg *config.Config, registry *observer.Registry, logger *zap.Logger) (kv.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plugin := Get(cfg.Plugin)

	if plugin == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchPlugin, cfg.Plugin)
	}

	store, err := plugin.NewStore(registry, cfg.Options, logger)

	if err != nil {
		return nil, fmt.Errorf("could not create %s store: %w", cfg.Plugin, err)
	}

	return store, nil
}
