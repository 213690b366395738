// Package kv defines an observable, transactional key-value
// namespace and the values it stores.
//
// A Store hands out Nodes by name. A Node is a flat namespace
// of string keys mapping to tagged Values: booleans, byte
// sequences, 32 and 64 bit integers and floats, strings and
// serialized blobs. There is no coercion between kinds. Reading
// a key through the accessor of another kind behaves as if the
// key were not set.
//
//  - Store
//    - Node "settings"
//      - theme: string("dark")
//      - launches: int32(12)
//    - Node "session"
//      - token: bytes(...)
//      - profile: blob(...)
//
// Every write to a node is announced to the observers of the
// written key, in the order the writes were applied. Observers
// of different keys, or of different nodes, are independent and
// have no ordering relative to each other.
//
// Transactions group writes on one node. A transaction records
// the value each key held before the transaction first touched
// it; rolling back restores exactly those values, once per key,
// through ordinary writes that observers see like any other.
//
// Backends differ only in durability. The in-memory backend
// keeps data for the life of the process; the bbolt and sqlite
// backends write through to a file. All of them share the node
// engine in package node.
package kv
