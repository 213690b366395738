package stream_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kvnode/utils/stream"
	"go.uber.org/zap"
)

func ints(n int) stream.Stream[int] {
	return &randomIntStream{n, 0}
}

type randomIntStream struct {
	n int
	v int
}

func (stream *randomIntStream) Next() bool {
	if stream.n > 0 {
		stream.n--
		stream.v = rand.Intn(21) - 10

		return true
	}

	return false
}

func (stream *randomIntStream) Value() int {
	return stream.v
}

func (stream *randomIntStream) Error() error {
	return nil
}

func record(record *[]int) stream.Processor[int] {
	*record = []int{}

	return func(s stream.Stream[int]) stream.Stream[int] {
		return &streamRecorder{s, record}
	}
}

type streamRecorder struct {
	stream.Stream[int]
	record *[]int
}

func (stream *streamRecorder) Next() bool {
	if !stream.Stream.Next() {
		return false
	}

	*stream.record = append(*stream.record, stream.Value())

	return true
}

func Drain[T any](s stream.Stream[T]) {
	for s.Next() {
	}
}

func Filter(ints []int, filter func(a int) bool) []int {
	filteredInts := []int{}

	for _, i := range ints {
		if filter(i) {
			filteredInts = append(filteredInts, i)
		}
	}

	return filteredInts
}

func Limit(ints []int, limit int) []int {
	if limit <= 0 || limit > len(ints) {
		return ints
	}

	return ints[:limit]
}

func Dedupe(ints []int) []int {
	deduped := []int{}

	for i, v := range ints {
		if i > 0 && ints[i-1] == v {
			continue
		}

		deduped = append(deduped, v)
	}

	return deduped
}

func equal(a, b int) bool {
	return a == b
}

func TestStream(t *testing.T) {
	positive := func(a int) bool { return a > 0 }
	limit := 10

	input := []int{}
	output := []int{}

	Drain(stream.Pipeline(ints(1000), record(&input), stream.Filter(positive), stream.Limit[int](limit), record(&output)))
	diff := cmp.Diff(Limit(Filter(input, positive), limit), output)

	if diff != "" {
		t.Fatal(diff)
	}

	Drain(stream.Pipeline(ints(1000), record(&input), stream.Filter(positive), record(&output)))
	diff = cmp.Diff(Filter(input, positive), output)

	if diff != "" {
		t.Fatal(diff)
	}

	Drain(stream.Pipeline(ints(1000), record(&input), stream.Distinct(equal), record(&output)))
	diff = cmp.Diff(Dedupe(input), output)

	if diff != "" {
		t.Fatal(diff)
	}

	Drain(stream.Pipeline(ints(1000), record(&input), stream.Limit[int](0), stream.Log[int](zap.NewNop()), record(&output)))
	diff = cmp.Diff(input, output)

	if diff != "" {
		t.Fatal(diff)
	}
}

func TestDistinct(t *testing.T) {
	values, err := stream.Collect(stream.Pipeline(stream.Slice([]int{1, 2, 2, 3, 3, 3, 2, 1, 1}), stream.Distinct(equal)))

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff([]int{1, 2, 3, 2, 1}, values); diff != "" {
		t.Fatal(diff)
	}
}

func TestMap(t *testing.T) {
	doubled := stream.Map(stream.Slice([]int{1, 2, 3}), func(v int) string {
		return string(rune('a' + v))
	})
	values, err := stream.Collect(doubled)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff([]string{"b", "c", "d"}, values); diff != "" {
		t.Fatal(diff)
	}
}

type failingStream struct {
	err error
}

func (stream *failingStream) Next() bool   { return false }
func (stream *failingStream) Value() int   { return 0 }
func (stream *failingStream) Error() error { return stream.err }

func TestErrorsPropagate(t *testing.T) {
	cause := errors.New("boom")
	mapped := stream.Map[int, int](stream.Pipeline[int](&failingStream{cause}, stream.Filter(func(int) bool { return true })), func(v int) int { return v })

	if _, err := stream.Collect(mapped); !errors.Is(err, cause) {
		t.Fatalf("expected %#v, got %#v", cause, err)
	}
}

func TestSliceValueOutOfRange(t *testing.T) {
	s := stream.Slice([]int{7})

	if v := s.Value(); v != 0 {
		t.Fatalf("expected zero value before Next, got %d", v)
	}

	if !s.Next() || s.Value() != 7 {
		t.Fatalf("expected 7")
	}

	if s.Next() {
		t.Fatalf("expected stream to end")
	}

	if v := s.Value(); v != 0 {
		t.Fatalf("expected zero value after end, got %d", v)
	}
}
