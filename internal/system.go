package internal

import "github.com/rs/zerolog"

type SystemConfig struct {
	ID string

	ClearErrorOnData  bool
	ClearErrorOnQuery bool
	ClearDataOnQuery  bool
	ClearDataOnError  bool
	ClearQueryOnData  bool
	ClearQueryOnError bool

	AutoUpdatePending       bool
	FreezeQueryWhilePending bool

	Logger zerolog.Logger
}

// normalize applies the mutual exclusions between error and data clearing.
func (c SystemConfig) normalize() SystemConfig {
	if c.ClearErrorOnQuery {
		c.ClearErrorOnData = false
	}
	if c.ClearDataOnQuery {
		c.ClearDataOnError = false
	}
	return c
}

type SystemValue struct {
	Query   any
	Data    any
	Error   any
	Pending bool
}

// System wires a query, data, error and pending unit together and keeps
// their combined value in sync.
type System struct {
	rt  *Runtime
	cfg SystemConfig
	log zerolog.Logger

	query   *Unit
	data    *Unit
	error   *Unit
	pending *Unit

	// open while the system applies its own rules (auto pause)
	batcher *Batcher

	// manual pause and the member emit counts recorded when it started
	paused   bool
	snapshot [4]int

	stream *Stream
	owner  *Owner
}

func NewSystem(cfg SystemConfig, query, data, err, pending *Unit) *System {
	s := &System{
		rt:      GetRuntime(),
		cfg:     cfg.normalize(),
		query:   query,
		data:    data,
		error:   err,
		pending: pending,
		batcher: NewBatcher(),
		stream:  NewStream(ModeReplay),
		owner:   NewOwner(),
	}
	s.log = cfg.Logger.With().Str("system", cfg.ID).Logger()

	// each member copies its own part, mutable members pass through
	s.stream.SetCopier(func(v any) any { return s.read(v.(SystemValue)) })

	s.rt.Lock()
	defer s.rt.Unlock()

	s.owner.Track(query.SubscribeFuture(func(any) { s.handle(s.onQuery) }))
	s.owner.Track(data.SubscribeFuture(func(any) { s.handle(s.onData) }))
	s.owner.Track(err.SubscribeFuture(func(any) { s.handle(s.onError) }))
	s.owner.Track(pending.SubscribeFuture(func(any) { s.handle(nil) }))

	// runs even while the system applies its own rules, so pending changes
	// made by the query/data/error rules still freeze or unfreeze the query
	if s.cfg.FreezeQueryWhilePending {
		s.owner.Track(pending.SubscribeFuture(s.freezeQuery))
	}

	s.stream.Push(s.value())

	return s
}

func (s *System) Query() *Unit   { return s.query }
func (s *System) Data() *Unit    { return s.data }
func (s *System) Error() *Unit   { return s.error }
func (s *System) Pending() *Unit { return s.pending }

func (s *System) Value() SystemValue {
	s.rt.Lock()
	defer s.rt.Unlock()

	return s.read(s.value())
}

// value is the combined raw value. Deliveries go through read.
func (s *System) value() SystemValue {
	pending, _ := s.pending.value.(bool)

	return SystemValue{
		Query:   s.query.value,
		Data:    s.data.value,
		Error:   s.error.value,
		Pending: pending,
	}
}

func (s *System) read(v SystemValue) SystemValue {
	v.Query = s.query.read(v.Query)
	v.Data = s.data.read(v.Data)
	v.Error = s.error.read(v.Error)
	return v
}

func (s *System) Subscribe(fn func(any)) *Subscription {
	return s.stream.Subscribe(fn)
}

func (s *System) SubscribeFuture(fn func(any)) *Subscription {
	return s.stream.SubscribeFuture(fn)
}

// handle runs a member's rules with the auto pause held and emits the
// combined value once. Member pushes caused by the rules land here while the
// batch is open and are ignored.
func (s *System) handle(rules func()) {
	if s.batcher.IsBatching() {
		return
	}

	s.batcher.Batch(func() {
		if !s.paused && rules != nil {
			rules()
		}
	}, s.emit)
}

func (s *System) emit() {
	if s.paused {
		return
	}
	s.stream.Push(s.value())
}

func (s *System) onQuery() {
	if s.cfg.AutoUpdatePending {
		s.pending.Dispatch(true, DispatchOptions{})
	}
	if s.cfg.ClearDataOnQuery {
		s.data.ClearValue()
	}
	if s.cfg.ClearErrorOnQuery {
		s.error.ClearValue()
	}
}

func (s *System) onData() {
	if s.cfg.AutoUpdatePending {
		s.pending.Dispatch(false, DispatchOptions{})
	}
	if s.cfg.ClearErrorOnData {
		s.error.ClearValue()
	}
	if s.cfg.ClearQueryOnData {
		s.query.ClearValue()
	}
}

func (s *System) onError() {
	if s.cfg.AutoUpdatePending {
		s.pending.Dispatch(false, DispatchOptions{})
	}
	if s.cfg.ClearDataOnError {
		s.data.ClearValue()
	}
	if s.cfg.ClearQueryOnError {
		s.query.ClearValue()
	}
}

func (s *System) freezeQuery(v any) {
	if s.paused {
		return
	}

	if pending, _ := v.(bool); pending {
		s.query.Freeze()
	} else {
		s.query.Unfreeze()
	}
}

func (s *System) members() [4]*Unit {
	return [4]*Unit{s.query, s.data, s.error, s.pending}
}

// PauseRelationships stops the rules and the combined emissions.
func (s *System) PauseRelationships() {
	s.rt.Lock()
	defer s.rt.Unlock()

	if s.paused {
		return
	}
	s.paused = true

	for i, m := range s.members() {
		s.snapshot[i] = m.emitCount
	}
	s.log.Debug().Msg("relationships paused")
}

// ResumeRelationships restarts the rules. If any member emitted while
// paused, the combined value is emitted once to resynchronize subscribers.
func (s *System) ResumeRelationships() {
	s.rt.Lock()
	defer s.rt.Unlock()

	if !s.paused {
		return
	}
	s.paused = false

	changed := false
	for i, m := range s.members() {
		if m.emitCount != s.snapshot[i] {
			changed = true
		}
	}

	s.log.Debug().Bool("resync", changed).Msg("relationships resumed")
	if changed {
		s.emit()
	}
}

func (s *System) RelationshipsPaused() bool {
	s.rt.Lock()
	defer s.rt.Unlock()

	return s.paused
}

// Dispose drops the member subscriptions. Members keep working on their own.
func (s *System) Dispose() {
	s.rt.Lock()
	defer s.rt.Unlock()

	s.owner.Dispose()
}
