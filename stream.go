package unit

import "github.com/AnatoleLucet/unit/internal"

type StreamMode = internal.StreamMode

const (
	ModeReplay = internal.ModeReplay
	ModeFuture = internal.ModeFuture
)

// Stream is a synchronous multicast of T values.
type Stream[T any] struct {
	stream *internal.Stream
}

// NewStream creates a stream. Replay streams hand the last pushed value to
// new subscribers, future streams never remember.
func NewStream[T any](mode StreamMode) *Stream[T] {
	return &Stream[T]{internal.NewStream(mode)}
}

func (s *Stream[T]) Mode() StreamMode { return s.stream.Mode() }

// Push delivers v to every current subscriber before returning.
func (s *Stream[T]) Push(v T) { s.stream.Push(v) }

func (s *Stream[T]) Subscribe(fn func(T)) *Subscription {
	return s.stream.Subscribe(func(v any) { fn(as[T](v)) })
}

func (s *Stream[T]) SubscribeFuture(fn func(T)) *Subscription {
	return s.stream.SubscribeFuture(func(v any) { fn(as[T](v)) })
}

// Value returns the last pushed value of a replay stream.
func (s *Stream[T]) Value() (T, bool) {
	v, ok := s.stream.Value()
	return as[T](v), ok
}

// Len is the number of live subscriptions.
func (s *Stream[T]) Len() int { return s.stream.Len() }
