package internal

// Outcome is the synchronous result of a dispatch.
type Outcome uint8

const (
	Rejected Outcome = iota
	Accepted
	// Deferred means the debounce policy queued the proposal.
	Deferred
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Deferred:
		return "deferred"
	default:
		return "rejected"
	}
}

// Reason explains a rejected dispatch. Reasons are listed in evaluation order.
type Reason string

const (
	ReasonFrozen        Reason = "FROZEN"
	ReasonInvalidValue  Reason = "INVALID_VALUE"
	ReasonCustomCheck   Reason = "CUSTOM_CHECK"
	ReasonDistinctCheck Reason = "DISTINCT_CHECK"
)

type DispatchOptions struct {
	// Force skips the custom and distinct checks. It never skips the frozen
	// state or the kind validator.
	Force bool

	// CacheReplace overwrites the current history entry instead of adding one.
	CacheReplace bool

	// BypassDebounce admits the value immediately even when debounce is configured.
	BypassDebounce bool
}

type ClearHistoryOptions struct {
	LeaveFirst bool
	LeaveLast  bool
}

type EventType uint8

const (
	EventDispatch EventType = iota
	EventDispatchFail
	EventNavigate
	EventClearHistory
	EventClearValue
	EventResetValue
	EventClear
	EventReset
	EventFreeze
	EventUnfreeze
	EventReplay
	EventClearPersistedValue
)

func (t EventType) String() string {
	switch t {
	case EventDispatch:
		return "dispatch"
	case EventDispatchFail:
		return "dispatch_fail"
	case EventNavigate:
		return "navigate"
	case EventClearHistory:
		return "clear_history"
	case EventClearValue:
		return "clear_value"
	case EventResetValue:
		return "reset_value"
	case EventClear:
		return "clear"
	case EventReset:
		return "reset"
	case EventFreeze:
		return "freeze"
	case EventUnfreeze:
		return "unfreeze"
	case EventReplay:
		return "replay"
	case EventClearPersistedValue:
		return "clear_persisted_value"
	default:
		return "unknown"
	}
}

// Event is pushed on a unit's side channel for structural changes.
type Event struct {
	Type   EventType
	UnitID string

	// the dispatched or resulting value, copied for immutable units
	Value any

	// set for EventDispatchFail
	Reason Reason

	// set for EventNavigate
	Steps int
	Index int

	// set for EventDispatch and EventDispatchFail
	Options DispatchOptions

	// set for EventClearHistory, EventClear and EventReset
	ClearOptions ClearHistoryOptions
}

// Observer receives admission outcomes, typically to export metrics.
type Observer interface {
	ObserveDispatch(unitID string, outcome Outcome, reason Reason)
	ObserveEmit(unitID string)
}
