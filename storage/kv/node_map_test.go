package kv_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kvnode/storage/kv"
)

func contents(nodeMap *kv.NodeMap) map[string]kv.Value {
	m := map[string]kv.Value{}

	nodeMap.Each(func(key string, value kv.Value) {
		m[key] = value
	})

	return m
}

func TestNodeMapCopyOnWrite(t *testing.T) {
	v0 := kv.NodeMapOf(map[string]kv.Value{"a": kv.Int32Value(1)})
	v1 := v0.With("b", kv.Int32Value(2))
	v2 := v1.Without("a")
	v3 := v2.Apply("c", kv.None[kv.Value]())

	if diff := cmp.Diff(map[string]kv.Value{"a": kv.Int32Value(1)}, contents(v0)); diff != "" {
		t.Fatal(diff)
	}

	if diff := cmp.Diff(map[string]kv.Value{"a": kv.Int32Value(1), "b": kv.Int32Value(2)}, contents(v1)); diff != "" {
		t.Fatal(diff)
	}

	if diff := cmp.Diff(map[string]kv.Value{"b": kv.Int32Value(2)}, contents(v2)); diff != "" {
		t.Fatal(diff)
	}

	if v3 != v2 {
		t.Fatalf("expected removing an absent key to return the same map")
	}
}

func TestNodeMapKeys(t *testing.T) {
	nodeMap := kv.EmptyNodeMap().With("b", kv.BoolValue(true)).With("a", kv.BoolValue(false)).With("c", kv.StringValue(""))

	if nodeMap.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", nodeMap.Len())
	}

	if diff := cmp.Diff([]interface{}{"a", "b", "c"}, nodeMap.Keys().Values()); diff != "" {
		t.Fatal(diff)
	}

	if kv.EmptyNodeMap().Len() != 0 {
		t.Fatalf("expected the empty map to stay empty")
	}

	if option := nodeMap.Lookup("z"); option.Present {
		t.Fatalf("expected z to be absent")
	}
}
