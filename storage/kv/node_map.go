package kv

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// NodeMap is an immutable mapping from key to Value.
// Every mutation returns a new NodeMap and leaves the
// receiver untouched, so a reader holding a NodeMap
// always sees one consistent version of a node.
type NodeMap struct {
	m *treemap.Map
}

var emptyNodeMap = &NodeMap{m: treemap.NewWith(utils.StringComparator)}

// EmptyNodeMap returns a NodeMap with no keys
func EmptyNodeMap() *NodeMap {
	return emptyNodeMap
}

// NodeMapOf builds a NodeMap from a plain map
func NodeMapOf(entries map[string]Value) *NodeMap {
	m := treemap.NewWith(utils.StringComparator)

	for key, value := range entries {
		m.Put(key, value)
	}

	return &NodeMap{m: m}
}

// Get returns the value stored under key
func (nodeMap *NodeMap) Get(key string) (Value, bool) {
	v, ok := nodeMap.m.Get(key)

	if !ok {
		return Value{}, false
	}

	return v.(Value), true
}

// Lookup is like Get but returns an Option
func (nodeMap *NodeMap) Lookup(key string) Option[Value] {
	if v, ok := nodeMap.Get(key); ok {
		return Some(v)
	}

	return None[Value]()
}

// With returns a copy of nodeMap with key set to value
func (nodeMap *NodeMap) With(key string, value Value) *NodeMap {
	next := nodeMap.clone()
	next.m.Put(key, value)

	return next
}

// Without returns a copy of nodeMap with key removed.
// It returns nodeMap itself if key is not present.
func (nodeMap *NodeMap) Without(key string) *NodeMap {
	if _, ok := nodeMap.m.Get(key); !ok {
		return nodeMap
	}

	next := nodeMap.clone()
	next.m.Remove(key)

	return next
}

// Apply sets or removes key depending on whether
// value is present
func (nodeMap *NodeMap) Apply(key string, value Option[Value]) *NodeMap {
	if value.Present {
		return nodeMap.With(key, value.Value)
	}

	return nodeMap.Without(key)
}

// Len returns the number of keys
func (nodeMap *NodeMap) Len() int {
	return nodeMap.m.Size()
}

// Keys returns the set of keys in ascending order
func (nodeMap *NodeMap) Keys() *treeset.Set {
	keys := treeset.NewWith(utils.StringComparator)

	for _, key := range nodeMap.m.Keys() {
		keys.Add(key)
	}

	return keys
}

// Each calls fn for every entry in ascending key order
func (nodeMap *NodeMap) Each(fn func(key string, value Value)) {
	nodeMap.m.Each(func(key interface{}, value interface{}) {
		fn(key.(string), value.(Value))
	})
}

func (nodeMap *NodeMap) clone() *NodeMap {
	m := treemap.NewWith(utils.StringComparator)

	nodeMap.m.Each(func(key interface{}, value interface{}) {
		m.Put(key, value)
	})

	return &NodeMap{m: m}
}
