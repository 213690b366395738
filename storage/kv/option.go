package kv

// Option is a value that may be absent. Observations
// emit Options so that removals and type mismatches are
// visible to subscribers as an absent value.
type Option[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Option holding v
func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Present: true}
}

// None returns an absent Option
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the held value and whether it is present
func (option Option[T]) Get() (T, bool) {
	return option.Value, option.Present
}
