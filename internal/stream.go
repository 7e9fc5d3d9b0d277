package internal

import (
	"slices"

	"github.com/google/uuid"
)

type StreamMode uint8

const (
	// ModeReplay remembers the last pushed value and hands it to new subscribers.
	ModeReplay StreamMode = iota
	// ModeFuture only delivers values pushed after subscribing.
	ModeFuture
)

type Subscription struct {
	ID string

	fn     func(any)
	stream *Stream
	closed bool
}

// Unsubscribe stops delivery. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}

	s.stream.rt.Run(func() {
		if s.closed {
			return
		}
		s.closed = true
		s.stream.subs = slices.DeleteFunc(s.stream.subs, func(sub *Subscription) bool {
			return sub == s
		})
	})
}

// Closed reports whether the subscription was cancelled.
func (s *Subscription) Closed() bool {
	return s.closed
}

type Stream struct {
	rt   *Runtime
	mode StreamMode

	value    any
	hasValue bool

	subs []*Subscription

	// applied once per delivery, nil means subscribers share the pushed value
	copier func(any) any
}

func NewStream(mode StreamMode) *Stream {
	return &Stream{
		rt:   GetRuntime(),
		mode: mode,
	}
}

// SetCopier makes every delivery (including replays) receive copier(v).
func (s *Stream) SetCopier(copier func(any) any) {
	s.copier = copier
}

func (s *Stream) Mode() StreamMode {
	return s.mode
}

// Push delivers v synchronously to every subscriber registered at call time.
func (s *Stream) Push(v any) {
	s.rt.Lock()
	defer s.rt.Unlock()

	if s.mode == ModeReplay {
		s.value = v
		s.hasValue = true
	}

	for _, sub := range slices.Clone(s.subs) {
		if !sub.closed {
			sub.fn(s.deliverable(v))
		}
	}
}

// Subscribe registers fn. In replay mode fn immediately receives the last
// pushed value, if any.
func (s *Stream) Subscribe(fn func(any)) *Subscription {
	s.rt.Lock()
	defer s.rt.Unlock()

	sub := s.SubscribeFuture(fn)
	if s.mode == ModeReplay && s.hasValue {
		fn(s.deliverable(s.value))
	}

	return sub
}

// SubscribeFuture registers fn without replaying, whatever the mode.
func (s *Stream) SubscribeFuture(fn func(any)) *Subscription {
	s.rt.Lock()
	defer s.rt.Unlock()

	sub := &Subscription{
		ID:     uuid.NewString(),
		fn:     fn,
		stream: s,
	}
	s.subs = append(s.subs, sub)

	return sub
}

// Value returns the remembered value. Future-only streams never remember.
func (s *Stream) Value() (any, bool) {
	s.rt.Lock()
	defer s.rt.Unlock()

	if !s.hasValue {
		return nil, false
	}

	return s.deliverable(s.value), true
}

func (s *Stream) Len() int {
	s.rt.Lock()
	defer s.rt.Unlock()

	return len(s.subs)
}

func (s *Stream) deliverable(v any) any {
	if s.copier == nil {
		return v
	}

	return s.copier(v)
}
