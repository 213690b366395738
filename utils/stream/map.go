package stream

// Map returns a stream that yields fn applied to
// each value of source
func Map[T any, U any](source Stream[T], fn func(T) U) Stream[U] {
	return &mappedStream[T, U]{source: source, fn: fn}
}

type mappedStream[T any, U any] struct {
	source Stream[T]
	fn     func(T) U
	value  U
}

func (stream *mappedStream[T, U]) Next() bool {
	if !stream.source.Next() {
		var zero U

		stream.value = zero

		return false
	}

	stream.value = stream.fn(stream.source.Value())

	return true
}

func (stream *mappedStream[T, U]) Value() U {
	return stream.value
}

func (stream *mappedStream[T, U]) Error() error {
	return stream.source.Error()
}
