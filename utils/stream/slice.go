package stream

// Slice returns a stream over values
func Slice[T any](values []T) Stream[T] {
	return &sliceStream[T]{values: values, position: -1}
}

type sliceStream[T any] struct {
	values   []T
	position int
}

func (stream *sliceStream[T]) Next() bool {
	if stream.position+1 >= len(stream.values) {
		stream.position = len(stream.values)

		return false
	}

	stream.position++

	return true
}

func (stream *sliceStream[T]) Value() T {
	if stream.position < 0 || stream.position >= len(stream.values) {
		var zero T

		return zero
	}

	return stream.values[stream.position]
}

func (stream *sliceStream[T]) Error() error {
	return nil
}
