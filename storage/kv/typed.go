package kv

import (
	"bytes"
	"context"

	"github.com/jrife/kvnode/utils/stream"
)

// TypedNode adds per-kind accessors to a Node. Getters return
// false when the key is absent or holds a different kind, and
// observations emit an absent value in both cases.
type TypedNode struct {
	Node
}

// Typed wraps node with typed accessors
func Typed(node Node) *TypedNode {
	return &TypedNode{Node: node}
}

// Open opens the node with this name from store and wraps
// it with typed accessors
func Open(store Store, name string) (*TypedNode, error) {
	node, err := store.Open(name)

	if err != nil {
		return nil, err
	}

	return Typed(node), nil
}

func (node *TypedNode) PutBool(key string, value bool) error {
	return node.Put(key, BoolValue(value))
}

func (node *TypedNode) GetBool(key string) (bool, bool) {
	return get(node, key, Value.AsBool)
}

func (node *TypedNode) ObserveBool(ctx context.Context, key string, mode ObserveMode) stream.Stream[Option[bool]] {
	return observe(ctx, node, key, mode, Value.AsBool, equal[bool])
}

func (node *TypedNode) PutBytes(key string, value []byte) error {
	return node.Put(key, BytesValue(value))
}

func (node *TypedNode) GetBytes(key string) ([]byte, bool) {
	return get(node, key, Value.AsBytes)
}

func (node *TypedNode) ObserveBytes(ctx context.Context, key string, mode ObserveMode) stream.Stream[Option[[]byte]] {
	return observe(ctx, node, key, mode, Value.AsBytes, bytes.Equal)
}

func (node *TypedNode) PutInt32(key string, value int32) error {
	return node.Put(key, Int32Value(value))
}

func (node *TypedNode) GetInt32(key string) (int32, bool) {
	return get(node, key, Value.AsInt32)
}

func (node *TypedNode) ObserveInt32(ctx context.Context, key string, mode ObserveMode) stream.Stream[Option[int32]] {
	return observe(ctx, node, key, mode, Value.AsInt32, equal[int32])
}

func (node *TypedNode) PutInt64(key string, value int64) error {
	return node.Put(key, Int64Value(value))
}

func (node *TypedNode) GetInt64(key string) (int64, bool) {
	return get(node, key, Value.AsInt64)
}

func (node *TypedNode) ObserveInt64(ctx context.Context, key string, mode ObserveMode) stream.Stream[Option[int64]] {
	return observe(ctx, node, key, mode, Value.AsInt64, equal[int64])
}

func (node *TypedNode) PutFloat32(key string, value float32) error {
	return node.Put(key, Float32Value(value))
}

func (node *TypedNode) GetFloat32(key string) (float32, bool) {
	return get(node, key, Value.AsFloat32)
}

func (node *TypedNode) ObserveFloat32(ctx context.Context, key string, mode ObserveMode) stream.Stream[Option[float32]] {
	return observe(ctx, node, key, mode, Value.AsFloat32, equal[float32])
}

func (node *TypedNode) PutFloat64(key string, value float64) error {
	return node.Put(key, Float64Value(value))
}

func (node *TypedNode) GetFloat64(key string) (float64, bool) {
	return get(node, key, Value.AsFloat64)
}

func (node *TypedNode) ObserveFloat64(ctx context.Context, key string, mode ObserveMode) stream.Stream[Option[float64]] {
	return observe(ctx, node, key, mode, Value.AsFloat64, equal[float64])
}

func (node *TypedNode) PutString(key string, value string) error {
	return node.Put(key, StringValue(value))
}

func (node *TypedNode) GetString(key string) (string, bool) {
	return get(node, key, Value.AsString)
}

func (node *TypedNode) ObserveString(ctx context.Context, key string, mode ObserveMode) stream.Stream[Option[string]] {
	return observe(ctx, node, key, mode, Value.AsString, equal[string])
}

func get[T any](node Node, key string, extract func(Value) (T, bool)) (T, bool) {
	value, ok := node.Get(key)

	if !ok {
		var zero T

		return zero, false
	}

	return extract(value)
}

// observe maps the raw observation of key to kind T and
// collapses consecutive duplicates, including consecutive
// absent values.
func observe[T any](ctx context.Context, node Node, key string, mode ObserveMode, extract func(Value) (T, bool), eq func(a, b T) bool) stream.Stream[Option[T]] {
	typed := stream.Map(node.Observe(ctx, key, mode), func(raw Option[Value]) Option[T] {
		if !raw.Present {
			return None[T]()
		}

		if v, ok := extract(raw.Value); ok {
			return Some(v)
		}

		return None[T]()
	})

	return stream.Pipeline(typed, stream.Distinct(func(a, b Option[T]) bool {
		if a.Present != b.Present {
			return false
		}

		return !a.Present || eq(a.Value, b.Value)
	}))
}

func equal[T comparable](a, b T) bool {
	return a == b
}
