package unit

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/AnatoleLucet/unit/internal"
)

// SystemValue is the combined value of an AsyncSystem.
type SystemValue[Q, D, E any] struct {
	Query   Q
	Data    D
	Error   E
	Pending bool
}

// AsyncSystem ties a query, data, error and pending unit together:
//
//   - a new query sets pending to true
//   - new data sets pending to false and clears the error
//   - a new error sets pending to false
//
// Rule writes made by the system never trigger further rules, and each
// member change produces exactly one combined emission.
type AsyncSystem[Q, D, E any] struct {
	system *internal.System

	query   *Unit[Q]
	data    *Unit[D]
	error   *Unit[E]
	pending *Unit[bool]
}

type SystemOption func(*systemOptions)

type systemOptions struct {
	cfg internal.SystemConfig

	// query, data, error and pending initial values, in that order
	initial []Option

	query   []Option
	data    []Option
	error   []Option
	pending []Option
}

// WithSystemID names the system. Members are named <id>_QUERY, <id>_DATA,
// <id>_ERROR and <id>_PENDING.
func WithSystemID(id string) SystemOption {
	return func(o *systemOptions) { o.cfg.ID = id }
}

// WithSystemInitialValue seeds every member. It is applied before the per
// member options, so WithQueryOptions(WithInitialValue(q)) still wins.
func WithSystemInitialValue[Q, D, E any](v SystemValue[Q, D, E]) SystemOption {
	return func(o *systemOptions) {
		o.initial = []Option{
			WithInitialValue(v.Query),
			WithInitialValue(v.Data),
			WithInitialValue(v.Error),
			WithInitialValue(v.Pending),
		}
	}
}

func WithQueryOptions(opts ...Option) SystemOption {
	return func(o *systemOptions) { o.query = append(o.query, opts...) }
}

func WithDataOptions(opts ...Option) SystemOption {
	return func(o *systemOptions) { o.data = append(o.data, opts...) }
}

func WithErrorOptions(opts ...Option) SystemOption {
	return func(o *systemOptions) { o.error = append(o.error, opts...) }
}

func WithPendingOptions(opts ...Option) SystemOption {
	return func(o *systemOptions) { o.pending = append(o.pending, opts...) }
}

// WithClearErrorOnData clears the error when data arrives. Enabled by default,
// ignored when WithClearErrorOnQuery is set.
func WithClearErrorOnData(clear bool) SystemOption {
	return func(o *systemOptions) { o.cfg.ClearErrorOnData = clear }
}

func WithClearErrorOnQuery(clear bool) SystemOption {
	return func(o *systemOptions) { o.cfg.ClearErrorOnQuery = clear }
}

func WithClearDataOnQuery(clear bool) SystemOption {
	return func(o *systemOptions) { o.cfg.ClearDataOnQuery = clear }
}

// WithClearDataOnError is ignored when WithClearDataOnQuery is set.
func WithClearDataOnError(clear bool) SystemOption {
	return func(o *systemOptions) { o.cfg.ClearDataOnError = clear }
}

func WithClearQueryOnData(clear bool) SystemOption {
	return func(o *systemOptions) { o.cfg.ClearQueryOnData = clear }
}

func WithClearQueryOnError(clear bool) SystemOption {
	return func(o *systemOptions) { o.cfg.ClearQueryOnError = clear }
}

// WithAutoUpdatePendingValue lets queries, data and errors drive pending.
// Enabled by default.
func WithAutoUpdatePendingValue(update bool) SystemOption {
	return func(o *systemOptions) { o.cfg.AutoUpdatePending = update }
}

// WithFreezeQueryWhilePending freezes the query unit while pending is true.
func WithFreezeQueryWhilePending(freeze bool) SystemOption {
	return func(o *systemOptions) { o.cfg.FreezeQueryWhilePending = freeze }
}

func WithSystemLogger(logger zerolog.Logger) SystemOption {
	return func(o *systemOptions) { o.cfg.Logger = logger }
}

func NewAsyncSystem[Q, D, E any](opts ...SystemOption) (*AsyncSystem[Q, D, E], error) {
	o := systemOptions{
		cfg: internal.SystemConfig{
			ClearErrorOnData:  true,
			AutoUpdatePending: true,
			Logger:            zerolog.Nop(),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.cfg.ID != "" {
		if err := internal.ValidateID(o.cfg.ID); err != nil {
			return nil, err
		}
	}

	member := func(i int, role string, extra []Option) []Option {
		var base []Option
		if o.cfg.ID != "" {
			base = append(base, WithID(o.cfg.ID+"_"+role))
		}
		if o.initial != nil {
			base = append(base, o.initial[i])
		}
		return append(base, extra...)
	}

	query, err := NewGenericUnit[Q](member(0, "QUERY", o.query)...)
	if err != nil {
		return nil, fmt.Errorf("query unit: %w", err)
	}
	data, err := NewGenericUnit[D](member(1, "DATA", o.data)...)
	if err != nil {
		return nil, fmt.Errorf("data unit: %w", err)
	}
	errUnit, err := NewGenericUnit[E](member(2, "ERROR", o.error)...)
	if err != nil {
		return nil, fmt.Errorf("error unit: %w", err)
	}
	pending, err := NewBoolUnit(member(3, "PENDING", o.pending)...)
	if err != nil {
		return nil, fmt.Errorf("pending unit: %w", err)
	}

	return &AsyncSystem[Q, D, E]{
		system:  internal.NewSystem(o.cfg, query.unit, data.unit, errUnit.unit, pending.unit),
		query:   query,
		data:    data,
		error:   errUnit,
		pending: pending,
	}, nil
}

func (s *AsyncSystem[Q, D, E]) Query() *Unit[Q] { return s.query }

func (s *AsyncSystem[Q, D, E]) Data() *Unit[D] { return s.data }

func (s *AsyncSystem[Q, D, E]) Error() *Unit[E] { return s.error }

func (s *AsyncSystem[Q, D, E]) Pending() *Unit[bool] { return s.pending }

func (s *AsyncSystem[Q, D, E]) Value() SystemValue[Q, D, E] {
	return typedSystemValue[Q, D, E](s.system.Value())
}

// Subscribe calls fn with the combined value, starting with the current one.
func (s *AsyncSystem[Q, D, E]) Subscribe(fn func(SystemValue[Q, D, E])) *Subscription {
	return s.system.Subscribe(func(v any) {
		fn(typedSystemValue[Q, D, E](v.(internal.SystemValue)))
	})
}

func (s *AsyncSystem[Q, D, E]) SubscribeFuture(fn func(SystemValue[Q, D, E])) *Subscription {
	return s.system.SubscribeFuture(func(v any) {
		fn(typedSystemValue[Q, D, E](v.(internal.SystemValue)))
	})
}

// PauseRelationships suspends the rules and combined emissions until
// ResumeRelationships.
func (s *AsyncSystem[Q, D, E]) PauseRelationships() { s.system.PauseRelationships() }

// ResumeRelationships emits the combined value once if any member changed
// while paused.
func (s *AsyncSystem[Q, D, E]) ResumeRelationships() { s.system.ResumeRelationships() }

func (s *AsyncSystem[Q, D, E]) RelationshipsPaused() bool { return s.system.RelationshipsPaused() }

// Dispose detaches the system from its members.
func (s *AsyncSystem[Q, D, E]) Dispose() { s.system.Dispose() }

func typedSystemValue[Q, D, E any](v internal.SystemValue) SystemValue[Q, D, E] {
	return SystemValue[Q, D, E]{
		Query:   as[Q](v.Query),
		Data:    as[D](v.Data),
		Error:   as[E](v.Error),
		Pending: v.Pending,
	}
}
