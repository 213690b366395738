package observer

import (
	"fmt"
	"sync"

	"github.com/jrife/kvnode/storage/kv"
	"github.com/jrife/kvnode/utils/log"
	"go.uber.org/zap"
)

// Listener is called with every value written to the key
// it was registered for. An absent value means the key was
// removed or its node was cleared. A Listener must not call
// back into the Registry for the same key.
type Listener func(value kv.Option[kv.Value])

// Registration identifies one registered listener
type Registration struct {
	group    groupKey
	listener Listener
	// retire is called once the group this registration
	// belongs to is retired and its lane has drained.
	retire func()
}

type groupKey struct {
	node string
	key  string
}

type listenerGroup struct {
	key       groupKey
	listeners []*Registration
	queue     []kv.Option[kv.Value]
	running   bool
	retired   bool
}

// Registry delivers value changes to listeners. One Registry
// is shared by every node of a process; it is created explicitly
// and handed to each store.
type Registry struct {
	mu     sync.Mutex
	idle   *sync.Cond
	groups map[groupKey]*listenerGroup
	active int
	logger *zap.Logger
}

// New creates an empty Registry
func New(logger *zap.Logger) *Registry {
	registry := &Registry{
		groups: make(map[groupKey]*listenerGroup),
		logger: log.OrNop(logger).Named("observer"),
	}

	registry.idle = sync.NewCond(&registry.mu)

	return registry
}

// AddListener registers listener for key of node
func (registry *Registry) AddListener(node, key string, listener Listener) *Registration {
	return registry.addListener(node, key, listener, nil)
}

func (registry *Registry) addListener(node, key string, listener Listener, retire func()) *Registration {
	registration := &Registration{
		group:    groupKey{node: node, key: key},
		listener: listener,
		retire:   retire,
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	group, ok := registry.groups[registration.group]

	if !ok {
		group = &listenerGroup{key: registration.group}
		registry.groups[registration.group] = group
		registry.logger.Debug("created listener group", zap.String("node", node), zap.String("key", key))
	}

	group.listeners = append(group.listeners, registration)
	listenersRegistered.Inc()

	return registration
}

// RemoveListener deregisters a listener. A notification that
// was already being delivered may still reach it. Removing a
// listener twice has no effect.
func (registry *Registry) RemoveListener(registration *Registration) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	group, ok := registry.groups[registration.group]

	if !ok {
		return
	}

	for i, r := range group.listeners {
		if r != registration {
			continue
		}

		group.listeners = append(group.listeners[:i], group.listeners[i+1:]...)
		listenersRegistered.Dec()

		break
	}

	if len(group.listeners) == 0 && !group.running {
		delete(registry.groups, group.key)
		registry.logger.Debug("retired listener group", zap.String("node", group.key.node), zap.String("key", group.key.key))
	}
}

// NotifyValueChange enqueues value onto the lane for key of node
// and returns without waiting for listeners.
func (registry *Registry) NotifyValueChange(node, key string, value kv.Option[kv.Value]) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	group, ok := registry.groups[groupKey{node: node, key: key}]

	if !ok {
		notificationsDroppedTotal.Inc()

		return
	}

	registry.enqueue(group, value)
}

// NotifyClear enqueues an absent value onto the lane of every
// observed key of node
func (registry *Registry) NotifyClear(node string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	for key, group := range registry.groups {
		if key.node != node {
			continue
		}

		registry.enqueue(group, kv.None[kv.Value]())
	}
}

// RetireNode detaches every listener group of node. Notifications
// already enqueued are still delivered, after which the affected
// listeners are told they were retired. Later listeners for the
// node start fresh groups.
func (registry *Registry) RetireNode(node string) {
	var retired []*Registration

	registry.mu.Lock()

	for key, group := range registry.groups {
		if key.node != node {
			continue
		}

		delete(registry.groups, key)
		group.retired = true

		if !group.running {
			retired = append(retired, group.listeners...)
			listenersRegistered.Sub(float64(len(group.listeners)))
			group.listeners = nil
		}
	}

	registry.mu.Unlock()

	for _, registration := range retired {
		registration.retired()
	}

	registry.logger.Debug("retired node", zap.String("node", node))
}

// Wait blocks until every lane has drained
func (registry *Registry) Wait() {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	for registry.active > 0 {
		registry.idle.Wait()
	}
}

// enqueue must be called with registry.mu held
func (registry *Registry) enqueue(group *listenerGroup, value kv.Option[kv.Value]) {
	group.queue = append(group.queue, value)
	notificationsEnqueuedTotal.Inc()

	if group.running {
		return
	}

	group.running = true
	registry.active++
	lanesActive.Inc()

	go registry.drain(group)
}

func (registry *Registry) drain(group *listenerGroup) {
	for {
		registry.mu.Lock()

		if len(group.queue) == 0 {
			retired := registry.stopLane(group)
			registry.mu.Unlock()

			for _, registration := range retired {
				registration.retired()
			}

			return
		}

		value := group.queue[0]
		group.queue[0] = kv.Option[kv.Value]{}
		group.queue = group.queue[1:]
		listeners := make([]*Registration, len(group.listeners))
		copy(listeners, group.listeners)

		registry.mu.Unlock()

		for _, registration := range listeners {
			registry.deliver(registration, value)
		}
	}
}

// stopLane must be called with registry.mu held. It returns the
// registrations to retire if the group was retired while draining.
func (registry *Registry) stopLane(group *listenerGroup) []*Registration {
	var retired []*Registration

	group.running = false
	group.queue = nil
	registry.active--
	lanesActive.Dec()

	if group.retired {
		retired = group.listeners
		listenersRegistered.Sub(float64(len(group.listeners)))
		group.listeners = nil
	} else if len(group.listeners) == 0 && registry.groups[group.key] == group {
		delete(registry.groups, group.key)
	}

	if registry.active == 0 {
		registry.idle.Broadcast()
	}

	return retired
}

func (registry *Registry) deliver(registration *Registration, value kv.Option[kv.Value]) {
	defer func() {
		if r := recover(); r != nil {
			listenerPanicsTotal.Inc()
			registry.logger.Warn(
				"listener panicked",
				zap.String("node", registration.group.node),
				zap.String("key", registration.group.key),
				zap.Error(fmt.Errorf("%v", r)),
			)
		}
	}()

	registration.listener(value)
	notificationsDeliveredTotal.Inc()
}

func (registration *Registration) retired() {
	if registration.retire != nil {
		registration.retire()
	}
}
