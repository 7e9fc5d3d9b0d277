package internal

import (
	"github.com/rs/zerolog"
)

// Unit holds one current value, its history and its admission state. Every
// exported method takes the runtime lock.
type Unit struct {
	rt  *Runtime
	cfg Config
	log zerolog.Logger

	value   any
	initial any
	history *History

	frozen      bool
	muted       bool
	pendingEmit bool
	emitCount   int

	// a coalesced store write is queued for when the current operation settles
	dirty bool

	stream *Stream

	// side channel, nil until Events is first called
	events *Stream

	debouncer *Debouncer
	bridge    *Bridge
}

func NewUnit(cfg Config) *Unit {
	u := &Unit{
		rt:      GetRuntime(),
		cfg:     cfg,
		history: NewHistory(cfg.Capacity),
	}
	u.log = cfg.Logger.With().Str("unit", cfg.ID).Str("kind", cfg.Kind.String()).Logger()

	mode := ModeFuture
	if cfg.Replay {
		mode = ModeReplay
	}
	u.stream = NewStream(mode)
	if cfg.Immutable {
		u.stream.SetCopier(Clone)
	}

	if cfg.Debounce > 0 {
		u.debouncer = NewDebouncer(u.rt, cfg.Debounce, cfg.DebounceMode)
	}
	if cfg.Store != nil {
		u.bridge = NewBridge(cfg.Store)
	}

	u.rt.Lock()
	defer u.rt.Unlock()

	initial, restored := u.restore()
	if !restored {
		initial = Clone(cfg.Default)
		if cfg.HasInitial && u.acceptsInitial(cfg.Initial, initial) {
			initial = Clone(cfg.Initial)
		}
	}

	u.initial = initial
	u.value = initial
	u.history.Push(initial)
	u.emit()
	if !restored {
		u.persist()
	}

	u.log.Debug().
		Bool("restored", restored).
		Int("capacity", cfg.Capacity).
		Bool("immutable", cfg.Immutable).
		Dur("debounce", cfg.Debounce).
		Msg("unit created")

	return u
}

// restore loads a persisted value that passes the kind validator.
func (u *Unit) restore() (any, bool) {
	if u.bridge == nil {
		return nil, false
	}

	raw, ok := u.bridge.Read(u.cfg.ID)
	if !ok {
		return nil, false
	}

	v, err := u.cfg.Decode(raw)
	if err != nil || !u.cfg.Kind.Validate(v) {
		u.log.Warn().Err(err).Msg("ignoring persisted value")
		return nil, false
	}

	return v, true
}

func (u *Unit) acceptsInitial(v, def any) bool {
	if !u.cfg.Kind.Validate(v) {
		return false
	}
	if u.cfg.CustomCheck != nil && !u.cfg.CustomCheck(def, v) {
		return false
	}
	return true
}

func (u *Unit) Config() Config {
	return u.cfg
}

func (u *Unit) ID() string {
	return u.cfg.ID
}

// Value returns the current value, copied when the unit is immutable.
func (u *Unit) Value() any {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.read(u.value)
}

// RawValue returns the stored value without copying.
func (u *Unit) RawValue() any {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.value
}

func (u *Unit) InitialValue() any {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.read(u.initial)
}

func (u *Unit) DefaultValue() any {
	return Clone(u.cfg.Default)
}

func (u *Unit) IsEmpty() bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.cfg.Kind.IsEmpty(u.value)
}

func (u *Unit) EmitCount() int {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.emitCount
}

func (u *Unit) IsFrozen() bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.frozen
}

func (u *Unit) IsMuted() bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.muted
}

func (u *Unit) History() []any {
	u.rt.Lock()
	defer u.rt.Unlock()

	entries := u.history.Entries()
	for i, v := range entries {
		entries[i] = u.read(v)
	}
	return entries
}

func (u *Unit) HistoryIndex() int {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.history.Index()
}

func (u *Unit) HistoryLen() int {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.history.Len()
}

func (u *Unit) Subscribe(fn func(any)) *Subscription {
	return u.stream.Subscribe(fn)
}

func (u *Unit) SubscribeFuture(fn func(any)) *Subscription {
	return u.stream.SubscribeFuture(fn)
}

// Events returns the side channel, allocating it on first use.
func (u *Unit) Events() *Stream {
	u.rt.Lock()
	defer u.rt.Unlock()

	if u.events == nil {
		u.events = NewStream(ModeFuture)
	}
	return u.events
}

func (u *Unit) Dispatch(v any, opts DispatchOptions) Outcome {
	return u.propose(func() any { return v }, opts)
}

// DispatchFunc proposes fn(current). fn runs at admission time, so a
// debounced proposal sees the value current when the window closes.
func (u *Unit) DispatchFunc(fn func(any) any, opts DispatchOptions) Outcome {
	return u.propose(func() any { return fn(u.read(u.value)) }, opts)
}

func (u *Unit) propose(resolve func() any, opts DispatchOptions) Outcome {
	u.rt.Lock()
	defer u.rt.Unlock()

	if u.debouncer != nil && !opts.BypassDebounce {
		u.debouncer.Call(func() { u.admit(resolve, opts) })
		u.observe(Deferred, "")
		return Deferred
	}

	return u.admit(resolve, opts)
}

func (u *Unit) admit(resolve func() any, opts DispatchOptions) Outcome {
	v := resolve()

	if u.cfg.CheckSerializability {
		if err := CheckSerializable(v); err != nil {
			panic(err)
		}
	}

	if reason, ok := u.evaluate(v, opts.Force); !ok {
		u.log.Debug().Str("reason", string(reason)).Msg("dispatch rejected")
		u.observe(Rejected, reason)
		u.event(Event{Type: EventDispatchFail, Value: u.read(v), Reason: reason, Options: opts})
		return Rejected
	}

	u.accept(v, opts.CacheReplace, false)
	u.observe(Accepted, "")
	u.event(Event{Type: EventDispatch, Value: u.read(u.value), Options: opts})
	return Accepted
}

// WouldDispatch runs the admission checks without side effects.
func (u *Unit) WouldDispatch(v any, force bool) bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	_, ok := u.evaluate(v, force)
	return ok
}

func (u *Unit) evaluate(v any, force bool) (Reason, bool) {
	switch {
	case u.frozen:
		return ReasonFrozen, false
	case !u.cfg.Kind.Validate(v):
		return ReasonInvalidValue, false
	case force:
		return "", true
	case u.cfg.CustomCheck != nil && !u.cfg.CustomCheck(u.read(u.value), u.read(v)):
		return ReasonCustomCheck, false
	case u.cfg.DistinctCheck && Equal(u.value, v):
		return ReasonDistinctCheck, false
	}

	return "", true
}

// accept installs v as the current value. owned values (initial, defaults,
// history entries) are never visible to callers and skip the copy-in.
func (u *Unit) accept(v any, cacheReplace, owned bool) {
	if u.cfg.Immutable && !owned {
		v = Adopt(v, u.value)
	}

	if cacheReplace {
		u.history.Replace(v)
	} else {
		u.history.Push(v)
	}

	u.value = v
	u.emit()
	u.persist()
}

func (u *Unit) emit() {
	if u.muted {
		u.pendingEmit = true
		return
	}

	u.emitCount++
	if u.cfg.Observer != nil {
		u.cfg.Observer.ObserveEmit(u.cfg.ID)
	}
	u.stream.Push(u.value)
}

// persist writes the current value through to the store. With coalesced
// writes, several changes within one operation (re-entrant dispatches, system
// rules) produce a single write of the final value once it settles.
func (u *Unit) persist() {
	if u.bridge == nil {
		return
	}

	if !u.cfg.CoalesceWrites {
		u.write()
		return
	}

	if !u.dirty {
		u.dirty = true
		u.rt.OnSettled(u.flush)
	}
}

func (u *Unit) flush() {
	if !u.dirty {
		return
	}
	u.dirty = false

	u.write()
}

func (u *Unit) write() {
	if err := u.bridge.Write(u.cfg.ID, u.value); err != nil {
		u.log.Warn().Err(err).Msg("persist failed")
	}
}

func (u *Unit) event(e Event) {
	if u.muted || u.events == nil {
		return
	}

	e.UnitID = u.cfg.ID
	u.events.Push(e)
}

func (u *Unit) observe(outcome Outcome, reason Reason) {
	if u.cfg.Observer != nil {
		u.cfg.Observer.ObserveDispatch(u.cfg.ID, outcome, reason)
	}
}

func (u *Unit) read(v any) any {
	if u.cfg.Immutable {
		return Clone(v)
	}
	return v
}

// Navigate moves through history by steps without rewriting it.
func (u *Unit) Navigate(steps int) bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	if u.frozen || !u.history.CanMove(steps) {
		return false
	}

	u.value = u.history.Move(steps)
	u.emit()
	u.persist()
	u.event(Event{Type: EventNavigate, Value: u.read(u.value), Steps: steps, Index: u.history.Index()})
	return true
}

func (u *Unit) GoBack() bool {
	return u.Navigate(-1)
}

func (u *Unit) GoForward() bool {
	return u.Navigate(1)
}

func (u *Unit) JumpToStart() bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.Navigate(-u.history.Index())
}

func (u *Unit) JumpToEnd() bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	return u.Navigate(u.history.Len() - 1 - u.history.Index())
}

func (u *Unit) ClearHistory(opts ClearHistoryOptions) bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	if u.frozen || !u.history.Clear(opts) {
		return false
	}

	u.event(Event{Type: EventClearHistory, ClearOptions: opts})
	return true
}

// ClearValue installs the kind's empty value.
func (u *Unit) ClearValue() bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	if u.frozen || u.emitCount == 0 || u.cfg.Kind.IsEmpty(u.value) {
		return false
	}

	u.accept(Clone(u.cfg.Default), false, true)
	u.event(Event{Type: EventClearValue, Value: u.read(u.value)})
	return true
}

// ResetValue installs the initial value.
func (u *Unit) ResetValue() bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	if u.frozen || Equal(u.value, u.initial) {
		return false
	}

	u.accept(u.initial, false, true)
	u.event(Event{Type: EventResetValue, Value: u.read(u.value)})
	return true
}

// Clear unfreezes, clears the value and clears history. EventClear fires only
// if one of those steps changed something.
func (u *Unit) Clear(opts ClearHistoryOptions) {
	u.rt.Lock()
	defer u.rt.Unlock()

	changed := u.frozen
	u.Unfreeze()
	if u.ClearValue() {
		changed = true
	}
	if u.ClearHistory(opts) {
		changed = true
	}

	if changed {
		u.event(Event{Type: EventClear, ClearOptions: opts})
	}
}

// Reset unfreezes, resets the value and clears history, keeping the last
// entry unless opts says otherwise.
func (u *Unit) Reset(opts ClearHistoryOptions) {
	u.rt.Lock()
	defer u.rt.Unlock()

	if opts == (ClearHistoryOptions{}) {
		opts.LeaveLast = true
	}

	changed := u.frozen
	u.Unfreeze()
	if u.ResetValue() {
		changed = true
	}
	if u.ClearHistory(opts) {
		changed = true
	}

	if changed {
		u.event(Event{Type: EventReset, ClearOptions: opts})
	}
}

func (u *Unit) Freeze() {
	u.rt.Lock()
	defer u.rt.Unlock()

	if u.frozen {
		return
	}
	u.frozen = true
	u.event(Event{Type: EventFreeze})
}

func (u *Unit) Unfreeze() {
	u.rt.Lock()
	defer u.rt.Unlock()

	if !u.frozen {
		return
	}
	u.frozen = false
	u.event(Event{Type: EventUnfreeze})
}

func (u *Unit) Mute() {
	u.rt.Lock()
	defer u.rt.Unlock()

	u.muted = true
}

// Unmute pushes the latest value once if anything changed while muted.
func (u *Unit) Unmute() {
	u.rt.Lock()
	defer u.rt.Unlock()

	if !u.muted {
		return
	}
	u.muted = false

	if u.pendingEmit {
		u.pendingEmit = false
		u.emit()
	}
}

// Replay pushes the current value again without touching history.
func (u *Unit) Replay() bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	if u.frozen || u.muted {
		return false
	}

	u.emit()
	u.event(Event{Type: EventReplay, Value: u.read(u.value)})
	return true
}

// ClearPersistedValue removes the unit's entry from its store.
func (u *Unit) ClearPersistedValue() bool {
	u.rt.Lock()
	defer u.rt.Unlock()

	if u.bridge == nil {
		return false
	}

	u.dirty = false
	if err := u.bridge.Remove(u.cfg.ID); err != nil {
		u.log.Warn().Err(err).Msg("clear persisted value failed")
		return false
	}

	u.event(Event{Type: EventClearPersistedValue})
	return true
}
