package unit

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/AnatoleLucet/unit/internal"
)

// Option configures a unit at construction.
type Option func(*internal.Options)

type (
	DebounceMode = internal.DebounceMode
	Settings     = internal.Settings
	Store        = internal.Store
)

const (
	DebounceEnd   = internal.DebounceEnd
	DebounceStart = internal.DebounceStart
	DebounceBoth  = internal.DebounceBoth

	DefaultCapacity     = internal.DefaultCapacity
	DefaultDebounceWait = internal.DefaultDebounceWait
)

// WithID names the unit. Ids may contain letters, digits and _.:-
func WithID(id string) Option {
	return func(o *internal.Options) {
		o.ID = id
	}
}

// WithInitialValue sets the value installed at construction. It goes through
// the kind validator and the custom check like any dispatch.
func WithInitialValue[T any](v T) Option {
	return func(o *internal.Options) {
		o.Initial = v
		o.HasInitial = true
	}
}

// WithReplay controls whether Subscribe hands new subscribers the current
// value. Enabled by default.
func WithReplay(replay bool) Option {
	return func(o *internal.Options) {
		o.Settings.Replay = &replay
	}
}

// WithCapacity bounds the history. Must be at least 1.
func WithCapacity(n int) Option {
	return func(o *internal.Options) {
		o.Settings.Capacity = &n
	}
}

// WithImmutable makes the unit deep-copy values on the way in and on every
// read and push.
func WithImmutable(immutable bool) Option {
	return func(o *internal.Options) {
		o.Settings.Immutable = &immutable
	}
}

// WithDistinctCheck rejects values equal to the current one.
func WithDistinctCheck(check bool) Option {
	return func(o *internal.Options) {
		o.Settings.DistinctCheck = &check
	}
}

// WithCheckSerializability panics with a *SerializationError when a
// dispatched value cannot round-trip through JSON.
func WithCheckSerializability(check bool) Option {
	return func(o *internal.Options) {
		o.Settings.CheckSerializability = &check
	}
}

// WithCustomCheck rejects values for which check(current, next) is false.
func WithCustomCheck[T any](check func(current, next T) bool) Option {
	return func(o *internal.Options) {
		o.CustomCheck = func(current, next any) bool {
			return check(as[T](current), as[T](next))
		}
	}
}

// WithDebounce routes dispatches through a debounce window of d.
// 0 uses DefaultDebounceWait, a negative duration disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(o *internal.Options) {
		o.Settings.Debounce = &d
	}
}

func WithDebounceMode(mode DebounceMode) Option {
	return func(o *internal.Options) {
		o.Settings.DebounceMode = &mode
	}
}

// WithPersistence writes every accepted value to store and restores it at
// construction. The unit needs an id.
func WithPersistence(store Store) Option {
	return func(o *internal.Options) {
		o.Store = store
	}
}

// WithCoalescedWrites defers store writes until the outermost operation
// completes, so a chain of re-entrant dispatches writes only its final value.
// Reads of the store made inside that operation see the previous entry.
func WithCoalescedWrites(coalesce bool) Option {
	return func(o *internal.Options) {
		o.CoalesceWrites = coalesce
	}
}

// WithDefaults layers global and per-kind defaults below the other options.
func WithDefaults(d *Defaults) Option {
	return func(o *internal.Options) {
		o.Defaults = d
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *internal.Options) {
		o.Logger = &logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *internal.Options) {
		if m != nil {
			o.Observer = m
		}
	}
}
