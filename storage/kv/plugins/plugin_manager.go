package plugins

// KVPluginManager lets a consumer
// retrieve the KV storage plugin
// by name
type KVPluginManager struct {
	plugins []Plugin
}

// NewKVPluginManager returns a KVPluginManager
// that is loaded with all supported plugins
// plus any extra ones.
func NewKVPluginManager(extra ...Plugin) *KVPluginManager {
	all := []Plugin{}

	all = append(all, plugins...)
	all = append(all, extra...)

	return &KVPluginManager{
		plugins: all,
	}
}

// Plugin returns the plugin whose name matches the given name.
// Plugins registered later win over earlier ones with the
// same name. It returns nil if no such plugin is found.
func (pluginManager *KVPluginManager) Plugin(name string) Plugin {
	for i := len(pluginManager.plugins) - 1; i >= 0; i-- {
		if pluginManager.plugins[i].Name() == name {
			return pluginManager.plugins[i]
		}
	}

	return nil
}

func (pluginManager *KVPluginManager) Plugins() []Plugin {
	return pluginManager.plugins
}
