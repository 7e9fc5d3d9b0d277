package unit

import "github.com/AnatoleLucet/unit/internal"

// Selection observes the value at a fixed path inside a unit.
type Selection[V any] struct {
	selection *internal.Selection
	replay    bool
}

// Select creates a selection of u at path. Segments are map keys or struct
// field names (string) and indices (non-negative int).
//
//	city := unit.Must(unit.Select[string](user, "address", "city"))
func Select[V, T any](u *Unit[T], path ...any) (*Selection[V], error) {
	s, err := internal.NewSelection(u.unit, path)
	if err != nil {
		return nil, err
	}

	return &Selection[V]{
		selection: s,
		replay:    u.unit.Config().Replay,
	}, nil
}

func (s *Selection[V]) Path() []any { return s.selection.Path() }

// Value returns the path value, or false if the path does not resolve.
func (s *Selection[V]) Value() (V, bool) {
	v, ok := s.selection.Value()
	if !ok {
		var zero V
		return zero, false
	}

	typed, ok := v.(V)
	return typed, ok
}

// Subscribe calls fn whenever the path value changes, starting with the
// current one when the unit replays.
func (s *Selection[V]) Subscribe(fn func(V)) *Subscription {
	return s.selection.Subscribe(func(v any) { fn(asOrZero[V](v)) }, s.replay)
}

func (s *Selection[V]) SubscribeFuture(fn func(V)) *Subscription {
	return s.selection.Subscribe(func(v any) { fn(asOrZero[V](v)) }, false)
}

func asOrZero[V any](v any) V {
	typed, _ := v.(V)
	return typed
}
