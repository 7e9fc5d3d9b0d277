package unit

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/unit/store"
)

func TestUnit(t *testing.T) {
	t.Run("defaults per kind", func(t *testing.T) {
		assert.Equal(t, false, Must(NewBoolUnit()).Value())
		assert.Equal(t, 0.0, Must(NewNumUnit()).Value())
		assert.Equal(t, "", Must(NewStringUnit()).Value())
		assert.Equal(t, map[string]any{}, Must(NewDictUnit()).Value())
		assert.Equal(t, []any{}, Must(NewListUnit()).Value())
		assert.Nil(t, Must(NewGenericUnit[error]()).Value())
	})

	t.Run("initial value", func(t *testing.T) {
		count := Must(NewNumUnit(WithInitialValue(3)))
		assert.Equal(t, 3.0, count.Value())
		assert.Equal(t, 3.0, count.InitialValue())
		assert.Equal(t, 0.0, count.DefaultValue())
		assert.Equal(t, 1, count.EmitCount())
	})

	t.Run("initial value of the wrong type", func(t *testing.T) {
		_, err := NewStringUnit(WithInitialValue(3))
		assert.ErrorIs(t, err, ErrInvalidInitialValue)
	})

	t.Run("invalid initial value falls back to the default", func(t *testing.T) {
		count := Must(NewNumUnit(WithInitialValue(math.NaN())))
		assert.Equal(t, 0.0, count.Value())
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := NewBoolUnit(WithID("no spaces"))
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("persistence without id", func(t *testing.T) {
		_, err := NewBoolUnit(WithPersistence(store.NewMemory()))
		assert.ErrorIs(t, err, ErrPersistenceWithoutID)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		_, err := NewBoolUnit(WithCapacity(0))
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("dispatch", func(t *testing.T) {
		name := Must(NewStringUnit())

		assert.Equal(t, Accepted, name.Dispatch("ada"))
		assert.Equal(t, "ada", name.Value())
		assert.Equal(t, 2, name.EmitCount())
	})

	t.Run("dispatch func", func(t *testing.T) {
		count := Must(NewNumUnit(WithInitialValue(1)))

		count.DispatchFunc(func(n float64) float64 { return n + 1 })
		assert.Equal(t, 2.0, count.Value())
	})

	t.Run("rejects non finite numbers even when forced", func(t *testing.T) {
		count := Must(NewNumUnit())

		assert.Equal(t, Rejected, count.Dispatch(math.Inf(1)))
		assert.Equal(t, Rejected, count.Dispatch(math.NaN(), DispatchOptions{Force: true}))
		assert.Equal(t, 0.0, count.Value())
		assert.Equal(t, 1, count.EmitCount())
	})

	t.Run("rejects nil dict and list", func(t *testing.T) {
		dict := Must(NewDictUnit())
		list := Must(NewListUnit())

		assert.Equal(t, Rejected, dict.Dispatch(nil))
		assert.Equal(t, Rejected, list.Dispatch(nil))
	})

	t.Run("distinct check", func(t *testing.T) {
		name := Must(NewStringUnit(WithInitialValue("x"), WithDistinctCheck(true)))

		var reasons []Reason
		name.Events().Subscribe(func(e Event) {
			if e.Type == EventDispatchFail {
				reasons = append(reasons, e.Reason)
			}
		})

		assert.Equal(t, Rejected, name.Dispatch("x"))
		assert.Equal(t, []Reason{ReasonDistinctCheck}, reasons)

		assert.Equal(t, Accepted, name.Dispatch("x", DispatchOptions{Force: true}))
		assert.Equal(t, 2, name.EmitCount())
	})

	t.Run("distinct check compares references", func(t *testing.T) {
		dict := Must(NewDictUnit(WithDistinctCheck(true)))
		v := map[string]any{"a": 1}

		assert.Equal(t, Accepted, dict.Dispatch(v))
		assert.Equal(t, Rejected, dict.Dispatch(v))
		assert.Equal(t, Accepted, dict.Dispatch(map[string]any{"a": 1}))
	})

	t.Run("custom check", func(t *testing.T) {
		count := Must(NewNumUnit(WithCustomCheck(func(current, next float64) bool {
			return next > current
		})))

		assert.Equal(t, Accepted, count.Dispatch(2))
		assert.Equal(t, Rejected, count.Dispatch(1))
		assert.Equal(t, Accepted, count.Dispatch(1, DispatchOptions{Force: true}))
		assert.Equal(t, 1.0, count.Value())
	})

	t.Run("rejection reasons follow evaluation order", func(t *testing.T) {
		count := Must(NewNumUnit(
			WithDistinctCheck(true),
			WithCustomCheck(func(_, next float64) bool { return next != 5 }),
		))

		var reasons []Reason
		count.Events().Subscribe(func(e Event) { reasons = append(reasons, e.Reason) })

		count.Dispatch(math.NaN())
		count.Dispatch(5)
		count.Dispatch(0)
		count.Freeze()
		count.Dispatch(math.NaN())

		assert.Equal(t, []Reason{
			ReasonInvalidValue,
			ReasonCustomCheck,
			ReasonDistinctCheck,
			"",
			ReasonFrozen,
		}, reasons)
	})

	t.Run("would dispatch has no side effects", func(t *testing.T) {
		name := Must(NewStringUnit(WithDistinctCheck(true)))

		assert.False(t, name.WouldDispatch("", false))
		assert.True(t, name.WouldDispatch("", true))
		assert.True(t, name.WouldDispatch("a", false))
		assert.Equal(t, "", name.Value())
		assert.Equal(t, 1, name.EmitCount())
	})

	t.Run("subscribe replays", func(t *testing.T) {
		name := Must(NewStringUnit(WithInitialValue("a")))

		var got []string
		name.Subscribe(func(s string) { got = append(got, s) })
		name.Dispatch("b")

		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("subscribe without replay", func(t *testing.T) {
		name := Must(NewStringUnit(WithInitialValue("a"), WithReplay(false)))

		var got []string
		name.Subscribe(func(s string) { got = append(got, s) })
		name.Dispatch("b")

		assert.Equal(t, []string{"b"}, got)
	})

	t.Run("subscribe future", func(t *testing.T) {
		name := Must(NewStringUnit(WithInitialValue("a")))

		var got []string
		sub := name.SubscribeFuture(func(s string) { got = append(got, s) })
		name.Dispatch("b")
		sub.Unsubscribe()
		sub.Unsubscribe()
		name.Dispatch("c")

		assert.Equal(t, []string{"b"}, got)
		assert.True(t, sub.Closed())
	})

	t.Run("re-entrant dispatch runs to completion", func(t *testing.T) {
		count := Must(NewNumUnit())

		var got []float64
		count.SubscribeFuture(func(n float64) {
			if n < 3 {
				count.Dispatch(n + 1)
			}
		})
		count.SubscribeFuture(func(n float64) { got = append(got, n) })

		count.Dispatch(1)

		assert.Equal(t, 3.0, count.Value())
		assert.Equal(t, []float64{3, 2, 1}, got)
	})

	t.Run("is empty", func(t *testing.T) {
		list := Must(NewListUnit())
		assert.True(t, list.IsEmpty())

		list.Dispatch([]any{1})
		assert.False(t, list.IsEmpty())
	})
}

func TestUnitFreeze(t *testing.T) {
	t.Run("frozen unit ignores mutations", func(t *testing.T) {
		count := Must(NewNumUnit(WithInitialValue(1), WithCapacity(5)))
		count.Dispatch(2)
		count.Dispatch(3)
		count.Freeze()

		emits := count.EmitCount()

		assert.Equal(t, Rejected, count.Dispatch(4))
		assert.Equal(t, Rejected, count.Dispatch(4, DispatchOptions{Force: true}))
		assert.False(t, count.GoBack())
		assert.False(t, count.JumpToStart())
		assert.False(t, count.ClearValue())
		assert.False(t, count.ResetValue())
		assert.False(t, count.ClearHistory())
		assert.False(t, count.Replay())

		assert.Equal(t, emits, count.EmitCount())
		assert.Equal(t, 3.0, count.Value())
		assert.Equal(t, 3, count.HistoryLen())
	})

	t.Run("events only fire on state changes", func(t *testing.T) {
		flag := Must(NewBoolUnit())

		var got []EventType
		flag.Events().Subscribe(func(e Event) { got = append(got, e.Type) })

		flag.Freeze()
		flag.Freeze()
		flag.Unfreeze()
		flag.Unfreeze()

		assert.Equal(t, []EventType{EventFreeze, EventUnfreeze}, got)
	})

	t.Run("clear and reset unfreeze", func(t *testing.T) {
		count := Must(NewNumUnit(WithInitialValue(1)))
		count.Dispatch(2)
		count.Freeze()

		count.Reset()
		assert.False(t, count.IsFrozen())
		assert.Equal(t, 1.0, count.Value())

		count.Freeze()
		count.Clear()
		assert.False(t, count.IsFrozen())
		assert.Equal(t, 0.0, count.Value())
	})
}

func TestUnitMute(t *testing.T) {
	t.Run("muted dispatches update the value silently", func(t *testing.T) {
		name := Must(NewStringUnit())

		var got []string
		name.SubscribeFuture(func(s string) { got = append(got, s) })

		var events []EventType
		name.Events().Subscribe(func(e Event) { events = append(events, e.Type) })

		name.Mute()
		assert.Equal(t, Accepted, name.Dispatch("a"))
		assert.Equal(t, Accepted, name.Dispatch("b"))
		assert.Equal(t, "b", name.Value())
		assert.Empty(t, got)
		assert.False(t, name.Replay())

		name.Unmute()
		assert.Equal(t, []string{"b"}, got)
		assert.Empty(t, events)
		assert.Equal(t, []string{"a", "b"}, name.History())
	})

	t.Run("unmute without changes pushes nothing", func(t *testing.T) {
		name := Must(NewStringUnit())

		var got []string
		name.SubscribeFuture(func(s string) { got = append(got, s) })

		name.Mute()
		name.Unmute()
		name.Unmute()

		assert.Empty(t, got)
		assert.False(t, name.IsMuted())
	})

	t.Run("emit count only counts pushes", func(t *testing.T) {
		count := Must(NewNumUnit())

		count.Mute()
		count.Dispatch(1)
		count.Dispatch(2)
		assert.Equal(t, 1, count.EmitCount())

		count.Unmute()
		assert.Equal(t, 2, count.EmitCount())
	})
}

func TestUnitReplay(t *testing.T) {
	t.Run("pushes the current value again", func(t *testing.T) {
		name := Must(NewStringUnit(WithInitialValue("a")))

		var got []string
		name.SubscribeFuture(func(s string) { got = append(got, s) })

		assert.True(t, name.Replay())
		assert.Equal(t, []string{"a"}, got)
		assert.Equal(t, 1, name.HistoryLen())
		assert.Equal(t, 2, name.EmitCount())
	})

	t.Run("frozen", func(t *testing.T) {
		name := Must(NewStringUnit(WithInitialValue("a")))
		name.Freeze()

		assert.False(t, name.Replay())
		assert.Equal(t, 1, name.EmitCount())
	})

	t.Run("muted", func(t *testing.T) {
		name := Must(NewStringUnit(WithInitialValue("a")))

		var got []string
		name.SubscribeFuture(func(s string) { got = append(got, s) })

		name.Mute()
		assert.False(t, name.Replay())
		name.Unmute()

		assert.Empty(t, got)
		assert.Equal(t, 1, name.EmitCount())
	})
}

func TestUnitClearAndReset(t *testing.T) {
	t.Run("clear value", func(t *testing.T) {
		name := Must(NewStringUnit(WithInitialValue("a")))

		assert.True(t, name.ClearValue())
		assert.Equal(t, "", name.Value())
		assert.False(t, name.ClearValue())
	})

	t.Run("reset value", func(t *testing.T) {
		name := Must(NewStringUnit(WithInitialValue("a")))

		assert.False(t, name.ResetValue())
		name.Dispatch("b")
		assert.True(t, name.ResetValue())
		assert.Equal(t, "a", name.Value())
	})

	t.Run("clear drops history", func(t *testing.T) {
		count := Must(NewNumUnit(WithCapacity(5)))
		count.Dispatch(1)
		count.Dispatch(2)

		count.Clear()
		assert.Equal(t, 0.0, count.Value())
		assert.Equal(t, 0, count.HistoryLen())
		assert.Equal(t, -1, count.HistoryIndex())

		count.Dispatch(3)
		assert.Equal(t, []float64{3}, count.History())
	})

	t.Run("reset keeps the last entry", func(t *testing.T) {
		count := Must(NewNumUnit(WithInitialValue(1), WithCapacity(5)))
		count.Dispatch(2)
		count.Dispatch(3)

		count.Reset()
		assert.Equal(t, 1.0, count.Value())
		assert.Equal(t, []float64{1}, count.History())
		assert.Equal(t, 0, count.HistoryIndex())
	})

	t.Run("events", func(t *testing.T) {
		count := Must(NewNumUnit(WithInitialValue(1)))
		count.Dispatch(2)

		var got []EventType
		count.Events().Subscribe(func(e Event) { got = append(got, e.Type) })

		count.Reset()

		assert.Equal(t, []EventType{EventResetValue, EventClearHistory, EventReset}, got)
	})

	t.Run("no events without changes", func(t *testing.T) {
		count := Must(NewNumUnit(WithInitialValue(1)))
		count.Clear()

		var got []EventType
		count.Events().Subscribe(func(e Event) { got = append(got, e.Type) })

		count.Clear()
		assert.Empty(t, got)

		count.Dispatch(1)
		count.Reset()
		count.Reset()
		assert.Equal(t, []EventType{EventDispatch}, got)
	})
}

func TestUnitEvents(t *testing.T) {
	t.Run("events before first access are dropped", func(t *testing.T) {
		name := Must(NewStringUnit(WithID("events")))
		name.Dispatch("a")

		var got []Event
		name.Events().Subscribe(func(e Event) { got = append(got, e) })
		name.Dispatch("b")

		require.Len(t, got, 1)
		assert.Equal(t, EventDispatch, got[0].Type)
		assert.Equal(t, "events", got[0].UnitID)
		assert.Equal(t, "b", got[0].Value)
	})

	t.Run("events stream is shared", func(t *testing.T) {
		name := Must(NewStringUnit())
		assert.Same(t, name.Events().stream, name.Events().stream)
	})
}

func TestUnitImmutable(t *testing.T) {
	t.Run("copies on the way in", func(t *testing.T) {
		dict := Must(NewDictUnit(WithImmutable(true)))

		v := map[string]any{"a": 1}
		dict.Dispatch(v)
		v["a"] = 2

		assert.Equal(t, map[string]any{"a": 1}, dict.Value())
	})

	t.Run("copies on the way out", func(t *testing.T) {
		dict := Must(NewDictUnit(WithImmutable(true), WithInitialValue(map[string]any{"a": 1})))

		var pushed map[string]any
		dict.Subscribe(func(m map[string]any) { pushed = m })
		pushed["a"] = 3

		got := dict.Value()
		got["a"] = 2

		assert.Equal(t, map[string]any{"a": 1}, dict.Value())
		assert.Equal(t, map[string]any{"a": 1}, dict.History()[0])
	})

	t.Run("errors keep identity", func(t *testing.T) {
		errTimeout := errors.New("timeout")
		last := Must(NewGenericUnit[error](WithImmutable(true)))

		last.Dispatch(errTimeout)

		assert.ErrorIs(t, last.Value(), errTimeout)
		assert.ErrorIs(t, last.History()[1], errTimeout)
	})

	t.Run("mutable units share values", func(t *testing.T) {
		dict := Must(NewDictUnit())

		v := map[string]any{"a": 1}
		dict.Dispatch(v)
		v["a"] = 2

		assert.Equal(t, 2, dict.RawValue()["a"])
	})
}

func TestUnitSerializability(t *testing.T) {
	type payload struct {
		Name string
		Tags []string
		Fn   func() `json:"-"`
	}

	t.Run("panics on functions", func(t *testing.T) {
		u := Must(NewGenericUnit[any](WithCheckSerializability(true)))

		assert.PanicsWithError(t, "value at $.fn of type func() is not serializable", func() {
			u.Dispatch(map[string]any{"fn": func() {}})
		})

		var serr *SerializationError
		func() {
			defer func() {
				err, _ := recover().(error)
				assert.True(t, errors.As(err, &serr))
			}()
			u.Dispatch([]any{1, make(chan int)})
		}()
		require.NotNil(t, serr)
		assert.Equal(t, "$[1]", serr.Path)
	})

	t.Run("accepts plain data", func(t *testing.T) {
		u := Must(NewGenericUnit[payload](WithCheckSerializability(true)))
		assert.Equal(t, Accepted, u.Dispatch(payload{Name: "a", Tags: []string{"x"}, Fn: func() {}}))
	})

	t.Run("checked before the frozen state", func(t *testing.T) {
		u := Must(NewGenericUnit[any](WithCheckSerializability(true)))
		u.Freeze()

		assert.Panics(t, func() { u.Dispatch(make(chan int)) })
	})

	t.Run("disabled by default", func(t *testing.T) {
		u := Must(NewGenericUnit[any]())
		assert.Equal(t, Accepted, u.Dispatch(func() {}))
	})
}
