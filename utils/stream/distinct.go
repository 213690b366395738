package stream

// Distinct drops values that are equal to the value
// emitted immediately before them. Only consecutive
// duplicates are dropped; a value may repeat after
// something different was emitted in between.
func Distinct[T any](equal func(a, b T) bool) Processor[T] {
	return func(stream Stream[T]) Stream[T] {
		return &distinctStream[T]{Stream: stream, equal: equal}
	}
}

type distinctStream[T any] struct {
	Stream[T]
	equal   func(a, b T) bool
	last    T
	started bool
}

func (stream *distinctStream[T]) Next() bool {
	for stream.Stream.Next() {
		value := stream.Stream.Value()

		if stream.started && stream.equal(stream.last, value) {
			continue
		}

		stream.started = true
		stream.last = value

		return true
	}

	return false
}
