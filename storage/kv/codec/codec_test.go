package codec_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gogo/protobuf/types"
	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kvnode/observer"
	"github.com/jrife/kvnode/storage/kv"
	"github.com/jrife/kvnode/storage/kv/codec"
	"github.com/jrife/kvnode/storage/kv/plugins/memory"
	"go.uber.org/zap/zaptest"
)

type profile struct {
	Name  string   `json:"name" yaml:"name"`
	Age   int      `json:"age" yaml:"age"`
	Roles []string `json:"roles" yaml:"roles"`
}

type failingCodec struct{}

var errUnencodable = errors.New("unencodable")

func (failingCodec) Encode(value profile) ([]byte, error) {
	return nil, errUnencodable
}

func (failingCodec) Decode(data []byte) (profile, error) {
	return profile{}, errUnencodable
}

func newNode(t *testing.T) kv.Node {
	store := memory.New(observer.New(zaptest.NewLogger(t)), zaptest.NewLogger(t))

	t.Cleanup(func() {
		store.Close()
	})

	node, err := store.Open("codec")

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	return node
}

func TestCodecs(t *testing.T) {
	value := profile{Name: "ada", Age: 36, Roles: []string{"admin", "dev"}}
	codecs := map[string]kv.Codec[profile]{
		"json":      codec.JSON[profile]{},
		"yaml":      codec.YAML[profile]{},
		"zstd+json": codec.Zstd[profile]{Codec: codec.JSON[profile]{}},
	}

	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			node := newNode(t)

			if err := kv.PutSerializable[profile](node, "profile", value, c); err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if stored, _ := node.Get("profile"); stored.Kind() != kv.KindBlob {
				t.Fatalf("expected a blob, got %s", stored.Kind())
			}

			decoded, ok := kv.GetSerializable[profile](node, "profile", c)

			if !ok {
				t.Fatalf("expected profile to decode")
			}

			if diff := cmp.Diff(value, decoded); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestProto(t *testing.T) {
	node := newNode(t)
	c := codec.Proto[*types.StringValue]{New: func() *types.StringValue { return &types.StringValue{} }}

	if err := kv.PutSerializable[*types.StringValue](node, "message", &types.StringValue{Value: "hello"}, c); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	decoded, ok := kv.GetSerializable[*types.StringValue](node, "message", c)

	if !ok || decoded.Value != "hello" {
		t.Fatalf("expected hello, got %#v", decoded)
	}

	if _, err := (codec.Proto[*types.StringValue]{}).Decode(nil); err == nil {
		t.Fatalf("expected a proto codec without a constructor to fail")
	}
}

func TestZstdCompresses(t *testing.T) {
	c := codec.Zstd[string]{Codec: codec.JSON[string]{}}
	value := strings.Repeat("compressible ", 1000)

	data, err := c.Encode(value)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if len(data) >= len(value) {
		t.Fatalf("expected compressed output to be smaller than %d bytes, got %d", len(value), len(data))
	}

	if _, err := c.Decode([]byte("not zstd")); err == nil {
		t.Fatalf("expected garbage to fail to decompress")
	}
}

func TestEncodeFailure(t *testing.T) {
	node := newNode(t)

	node.Put("profile", kv.StringValue("untouched"))

	err := kv.PutSerializable[profile](node, "profile", profile{}, failingCodec{})

	if !errors.Is(err, kv.ErrSerialization) || !errors.Is(err, errUnencodable) {
		t.Fatalf("expected ErrSerialization wrapping the codec error, got %#v", err)
	}

	if diff := cmp.Diff(kv.StringValue("untouched"), mustGet(t, node, "profile")); diff != "" {
		t.Fatal(diff)
	}
}

func TestDecodeFailure(t *testing.T) {
	node := newNode(t)

	node.Put("profile", kv.BlobValue([]byte("{not json")))

	if _, ok := kv.GetSerializable[profile](node, "profile", codec.JSON[profile]{}); ok {
		t.Fatalf("expected a blob that fails to decode to read as absent")
	}

	node.Put("profile", kv.StringValue(`{"name":"ada"}`))

	if _, ok := kv.GetSerializable[profile](node, "profile", codec.JSON[profile]{}); ok {
		t.Fatalf("expected a string not to read as a serialized value")
	}
}

func TestObserveSerializable(t *testing.T) {
	node := newNode(t)
	c := codec.JSON[profile]{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := kv.ObserveSerializable[profile](ctx, node, "profile", kv.ReplayCurrent, c)

	kv.PutSerializable[profile](node, "profile", profile{Name: "a"}, c)
	kv.PutSerializable[profile](node, "profile", profile{Name: "a"}, c)
	node.Put("profile", kv.BlobValue([]byte("garbage")))
	node.Put("profile", kv.BlobValue([]byte("more garbage")))
	node.Remove("profile")
	kv.PutSerializable[profile](node, "profile", profile{Name: "b"}, c)

	expected := []kv.Option[profile]{
		kv.None[profile](),
		kv.Some(profile{Name: "a"}),
		kv.None[profile](),
		kv.Some(profile{Name: "b"}),
	}
	actual := []kv.Option[profile]{}

	for len(actual) < len(expected) && changes.Next() {
		actual = append(actual, changes.Value())
	}

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatal(diff)
	}
}

func mustGet(t *testing.T, node kv.Node, key string) kv.Value {
	t.Helper()

	value, ok := node.Get(key)

	if !ok {
		t.Fatalf("expected key %s to be set", key)
	}

	return value
}
