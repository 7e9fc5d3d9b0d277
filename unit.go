// Package unit provides typed reactive value containers.
//
// A Unit holds exactly one current value, pushes every accepted change to its
// subscribers and keeps a bounded history that can be navigated like an
// undo/redo timeline. An AsyncSystem composes four units (query, data, error
// and pending) and keeps them consistent with each other. A Selection observes
// a nested path inside a unit's value.
//
// All operations run under a single process-wide re-entrant lock: a proposal
// (including the pushes it causes) completes before the next one starts, and
// subscribers may dispatch from inside their callbacks.
package unit

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/AnatoleLucet/unit/internal"
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

type (
	Kind                = internal.Kind
	Outcome             = internal.Outcome
	Reason              = internal.Reason
	DispatchOptions     = internal.DispatchOptions
	ClearHistoryOptions = internal.ClearHistoryOptions
	Event               = internal.Event
	EventType           = internal.EventType
	Subscription        = internal.Subscription
	SerializationError  = internal.SerializationError
)

const (
	KindGeneric = internal.KindGeneric
	KindBool    = internal.KindBool
	KindNumber  = internal.KindNumber
	KindString  = internal.KindString
	KindDict    = internal.KindDict
	KindList    = internal.KindList

	Rejected = internal.Rejected
	Accepted = internal.Accepted
	Deferred = internal.Deferred

	ReasonFrozen        = internal.ReasonFrozen
	ReasonInvalidValue  = internal.ReasonInvalidValue
	ReasonCustomCheck   = internal.ReasonCustomCheck
	ReasonDistinctCheck = internal.ReasonDistinctCheck

	EventDispatch            = internal.EventDispatch
	EventDispatchFail        = internal.EventDispatchFail
	EventNavigate            = internal.EventNavigate
	EventClearHistory        = internal.EventClearHistory
	EventClearValue          = internal.EventClearValue
	EventResetValue          = internal.EventResetValue
	EventClear               = internal.EventClear
	EventReset               = internal.EventReset
	EventFreeze              = internal.EventFreeze
	EventUnfreeze            = internal.EventUnfreeze
	EventReplay              = internal.EventReplay
	EventClearPersistedValue = internal.EventClearPersistedValue
)

var (
	ErrInvalidID            = internal.ErrInvalidID
	ErrPersistenceWithoutID = internal.ErrPersistenceWithoutID
	ErrInvalidCapacity      = internal.ErrInvalidCapacity
	ErrInvalidInitialValue  = internal.ErrInvalidInitialValue
	ErrInvalidPath          = internal.ErrInvalidPath
)

type Unit[T any] struct {
	unit *internal.Unit
}

// NewBoolUnit creates a unit holding a bool, false by default.
func NewBoolUnit(opts ...Option) (*Unit[bool], error) {
	return newUnit[bool](internal.KindBool, opts)
}

// NewNumUnit creates a unit holding a finite float64, 0 by default.
// NaN and infinities are rejected.
func NewNumUnit(opts ...Option) (*Unit[float64], error) {
	return newUnit[float64](internal.KindNumber, opts)
}

// NewStringUnit creates a unit holding a string, "" by default.
func NewStringUnit(opts ...Option) (*Unit[string], error) {
	return newUnit[string](internal.KindString, opts)
}

// NewDictUnit creates a unit holding a non-nil map, empty by default.
func NewDictUnit(opts ...Option) (*Unit[map[string]any], error) {
	return newUnit[map[string]any](internal.KindDict, opts)
}

// NewListUnit creates a unit holding a non-nil slice, empty by default.
func NewListUnit(opts ...Option) (*Unit[[]any], error) {
	return newUnit[[]any](internal.KindList, opts)
}

// NewGenericUnit creates a unit accepting any value of T, zero by default.
func NewGenericUnit[T any](opts ...Option) (*Unit[T], error) {
	return newUnit[T](internal.KindGeneric, opts)
}

// Must panics if err is non-nil.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func newUnit[T any](kind internal.Kind, opts []Option) (*Unit[T], error) {
	var o internal.Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.HasInitial && o.Initial != nil {
		v, ok := coerce[T](o.Initial)
		if !ok {
			var zero T
			return nil, fmt.Errorf("%w: got %T, want %T", ErrInvalidInitialValue, o.Initial, zero)
		}
		o.Initial = v
	}

	def := kind.Default()
	if kind == internal.KindGeneric {
		var zero T
		def = zero
	}

	cfg, err := internal.NewConfig(kind, def, decode[T], o)
	if err != nil {
		return nil, err
	}

	return &Unit[T]{internal.NewUnit(cfg)}, nil
}

// coerce converts numeric initial values so WithInitialValue(3) works for
// number units.
func coerce[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}

	var zero T
	target := reflect.TypeOf(&zero).Elem()
	rv := reflect.ValueOf(v)
	if isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		return rv.Convert(target).Interface().(T), true
	}

	return zero, false
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

func decode[T any](data []byte) (any, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (u *Unit[T]) ID() string { return u.unit.ID() }

// Value returns the current value. Immutable units return a deep copy.
func (u *Unit[T]) Value() T { return as[T](u.unit.Value()) }

// RawValue returns the stored value without copying. Mutating it bypasses
// every admission check.
func (u *Unit[T]) RawValue() T { return as[T](u.unit.RawValue()) }

func (u *Unit[T]) InitialValue() T { return as[T](u.unit.InitialValue()) }

func (u *Unit[T]) DefaultValue() T { return as[T](u.unit.DefaultValue()) }

func (u *Unit[T]) IsEmpty() bool { return u.unit.IsEmpty() }

// EmitCount is the number of pushes made so far.
func (u *Unit[T]) EmitCount() int { return u.unit.EmitCount() }

func (u *Unit[T]) IsFrozen() bool { return u.unit.IsFrozen() }

func (u *Unit[T]) IsMuted() bool { return u.unit.IsMuted() }

// Dispatch proposes v as the new value.
func (u *Unit[T]) Dispatch(v T, opts ...DispatchOptions) Outcome {
	return u.unit.Dispatch(v, dispatchOptions(opts))
}

// DispatchFunc proposes fn(current) as the new value.
func (u *Unit[T]) DispatchFunc(fn func(T) T, opts ...DispatchOptions) Outcome {
	return u.unit.DispatchFunc(func(cur any) any { return fn(as[T](cur)) }, dispatchOptions(opts))
}

// WouldDispatch reports whether v would currently be accepted.
func (u *Unit[T]) WouldDispatch(v T, force bool) bool {
	return u.unit.WouldDispatch(v, force)
}

func dispatchOptions(opts []DispatchOptions) DispatchOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return DispatchOptions{}
}

// Subscribe calls fn on every push. Units configured with replay (the
// default) also call fn immediately with the current value.
func (u *Unit[T]) Subscribe(fn func(T)) *Subscription {
	return u.unit.Subscribe(func(v any) { fn(as[T](v)) })
}

// SubscribeFuture calls fn on pushes made after subscribing.
func (u *Unit[T]) SubscribeFuture(fn func(T)) *Subscription {
	return u.unit.SubscribeFuture(func(v any) { fn(as[T](v)) })
}

// Events returns the side channel of structural events.
func (u *Unit[T]) Events() *Stream[Event] {
	return &Stream[Event]{u.unit.Events()}
}

func (u *Unit[T]) History() []T {
	entries := u.unit.History()

	out := make([]T, len(entries))
	for i, v := range entries {
		out[i] = as[T](v)
	}
	return out
}

func (u *Unit[T]) HistoryIndex() int { return u.unit.HistoryIndex() }

func (u *Unit[T]) HistoryLen() int { return u.unit.HistoryLen() }

// Navigate moves the current value steps entries through history.
func (u *Unit[T]) Navigate(steps int) bool { return u.unit.Navigate(steps) }

func (u *Unit[T]) GoBack() bool { return u.unit.GoBack() }

func (u *Unit[T]) GoForward() bool { return u.unit.GoForward() }

func (u *Unit[T]) JumpToStart() bool { return u.unit.JumpToStart() }

func (u *Unit[T]) JumpToEnd() bool { return u.unit.JumpToEnd() }

func (u *Unit[T]) ClearHistory(opts ...ClearHistoryOptions) bool {
	return u.unit.ClearHistory(clearOptions(opts))
}

func clearOptions(opts []ClearHistoryOptions) ClearHistoryOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return ClearHistoryOptions{}
}

// ClearValue sets the unit to its default value.
func (u *Unit[T]) ClearValue() bool { return u.unit.ClearValue() }

// ResetValue sets the unit back to its initial value.
func (u *Unit[T]) ResetValue() bool { return u.unit.ResetValue() }

// Clear unfreezes the unit, clears its value and clears its history.
func (u *Unit[T]) Clear(opts ...ClearHistoryOptions) { u.unit.Clear(clearOptions(opts)) }

// Reset unfreezes the unit, resets its value and clears its history, keeping
// the last entry by default.
func (u *Unit[T]) Reset(opts ...ClearHistoryOptions) { u.unit.Reset(clearOptions(opts)) }

func (u *Unit[T]) Freeze() { u.unit.Freeze() }

func (u *Unit[T]) Unfreeze() { u.unit.Unfreeze() }

// Mute keeps accepting values but holds back pushes and events.
func (u *Unit[T]) Mute() { u.unit.Mute() }

// Unmute pushes the latest value once if it changed while muted.
func (u *Unit[T]) Unmute() { u.unit.Unmute() }

// Replay pushes the current value again.
func (u *Unit[T]) Replay() bool { return u.unit.Replay() }

// ClearPersistedValue removes the unit's entry from its store.
func (u *Unit[T]) ClearPersistedValue() bool { return u.unit.ClearPersistedValue() }
