// Package codec provides serialization codecs for
// kv.PutSerializable and friends.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/jrife/kvnode/storage/kv"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

var (
	_ kv.Codec[any]           = JSON[any]{}
	_ kv.Codec[any]           = YAML[any]{}
	_ kv.Codec[proto.Message] = Proto[proto.Message]{}
)

// JSON encodes values with encoding/json
type JSON[T any] struct{}

func (JSON[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (JSON[T]) Decode(data []byte) (T, error) {
	var value T

	if err := json.Unmarshal(data, &value); err != nil {
		return value, err
	}

	return value, nil
}

// YAML encodes values as YAML documents
type YAML[T any] struct{}

func (YAML[T]) Encode(value T) ([]byte, error) {
	return yaml.Marshal(value)
}

func (YAML[T]) Decode(data []byte) (T, error) {
	var value T

	if err := yaml.Unmarshal(data, &value); err != nil {
		return value, err
	}

	return value, nil
}

// Proto encodes protobuf messages. New must return an empty
// message to decode into.
type Proto[T proto.Message] struct {
	New func() T
}

func (codec Proto[T]) Encode(value T) ([]byte, error) {
	return proto.Marshal(value)
}

func (codec Proto[T]) Decode(data []byte) (T, error) {
	var zero T

	if codec.New == nil {
		return zero, fmt.Errorf("proto codec has no message constructor")
	}

	message := codec.New()

	if err := proto.Unmarshal(data, message); err != nil {
		return zero, err
	}

	return message, nil
}

// Zstd compresses the output of another codec
type Zstd[T any] struct {
	Codec kv.Codec[T]
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	if zstdEncoder, err = zstd.NewWriter(nil); err != nil {
		panic(fmt.Sprintf("codec: could not create zstd encoder: %s", err))
	}

	if zstdDecoder, err = zstd.NewReader(nil); err != nil {
		panic(fmt.Sprintf("codec: could not create zstd decoder: %s", err))
	}
}

func (codec Zstd[T]) Encode(value T) ([]byte, error) {
	data, err := codec.Codec.Encode(value)

	if err != nil {
		return nil, err
	}

	return zstdEncoder.EncodeAll(data, nil), nil
}

func (codec Zstd[T]) Decode(data []byte) (T, error) {
	decompressed, err := zstdDecoder.DecodeAll(data, nil)

	if err != nil {
		var zero T

		return zero, fmt.Errorf("could not decompress value: %w", err)
	}

	return codec.Codec.Decode(decompressed)
}
