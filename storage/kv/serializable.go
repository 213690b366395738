package kv

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jrife/kvnode/utils/stream"
)

// Encoder turns a T into bytes
type Encoder[T any] interface {
	Encode(value T) ([]byte, error)
}

// Decoder turns bytes produced by the matching Encoder back into a T
type Decoder[T any] interface {
	Decode(data []byte) (T, error)
}

// Codec is an Encoder and Decoder for the same type
type Codec[T any] interface {
	Encoder[T]
	Decoder[T]
}

// PutSerializable encodes value with encoder and stores the
// result as a blob. An encoding failure is returned wrapped in
// ErrSerialization and leaves the node unchanged.
func PutSerializable[T any](node Node, key string, value T, encoder Encoder[T]) error {
	data, err := encoder.Encode(value)

	if err != nil {
		return fmt.Errorf("could not encode value for key %s: %w: %w", key, ErrSerialization, err)
	}

	return node.Put(key, BlobValue(data))
}

// GetSerializable decodes the blob stored under key. A missing
// key, a value of another kind and a value that fails to decode
// all look the same to the caller: false.
func GetSerializable[T any](node Node, key string, decoder Decoder[T]) (T, bool) {
	var zero T

	data, ok := get(node, key, Value.AsBlob)

	if !ok {
		return zero, false
	}

	value, err := decoder.Decode(data)

	if err != nil {
		return zero, false
	}

	return value, true
}

// ObserveSerializable is the observation counterpart of
// GetSerializable. Consecutive identical blobs are collapsed
// before decoding; blobs that fail to decode are emitted as
// absent values.
func ObserveSerializable[T any](ctx context.Context, node Node, key string, mode ObserveMode, decoder Decoder[T]) stream.Stream[Option[T]] {
	blobs := observe(ctx, node, key, mode, Value.AsBlob, bytes.Equal)

	decoded := stream.Map(blobs, func(blob Option[[]byte]) Option[T] {
		if !blob.Present {
			return None[T]()
		}

		value, err := decoder.Decode(blob.Value)

		if err != nil {
			return None[T]()
		}

		return Some(value)
	})

	// Two different blobs can both fail to decode
	return stream.Pipeline(decoded, stream.Distinct(func(a, b Option[T]) bool {
		return !a.Present && !b.Present
	}))
}
