// Package observer routes value changes to listeners keyed by
// (node name, key).
//
// Each (node, key) pair owns a lane: a FIFO queue of pending
// notifications that is drained by at most one goroutine at a
// time. Writers only append to the lane and return, so a slow
// listener never slows down a writer, and listeners of one key
// always see notifications in the order they were enqueued.
// Lanes for different keys run independently of each other.
//
// A lane goroutine exists only while its queue is non-empty.
// Groups with no listeners are retired, and notifications for
// keys nobody listens to are dropped.
package observer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsEnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvnode_observer_notifications_enqueued_total",
		Help: "Cumulative number of notifications enqueued onto a lane.",
	})
	notificationsDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvnode_observer_notifications_delivered_total",
		Help: "Cumulative number of notifications handed to a listener.",
	})
	notificationsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvnode_observer_notifications_dropped_total",
		Help: "Cumulative number of notifications for keys without listeners.",
	})
	listenerPanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvnode_observer_listener_panics_total",
		Help: "Cumulative number of listener invocations that panicked.",
	})
	lanesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kvnode_observer_lanes_active",
		Help: "Number of lanes currently draining notifications.",
	})
	listenersRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kvnode_observer_listeners",
		Help: "Number of listeners currently registered.",
	})
)
