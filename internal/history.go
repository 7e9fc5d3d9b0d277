package internal

import "slices"

// History is a bounded linear timeline of accepted values. Adding a value
// after moving backward discards the forward entries.
type History struct {
	entries  []any
	index    int
	capacity int
}

func NewHistory(capacity int) *History {
	return &History{
		index:    -1,
		capacity: max(capacity, 1),
	}
}

func (h *History) Len() int {
	return len(h.entries)
}

// Index is the position of the current entry, -1 when empty.
func (h *History) Index() int {
	return h.index
}

func (h *History) Entries() []any {
	return slices.Clone(h.entries)
}

func (h *History) IsLast() bool {
	return h.index == len(h.entries)-1
}

// Push records v after the current entry.
func (h *History) Push(v any) {
	if !h.IsLast() {
		clear(h.entries[h.index+1:])
		h.entries = h.entries[:h.index+1]
	}

	h.entries = append(h.entries, v)
	if overflow := len(h.entries) - h.capacity; overflow > 0 {
		clear(h.entries[:overflow])
		h.entries = slices.Clone(h.entries[overflow:])
	}

	h.index = len(h.entries) - 1
}

// Replace overwrites the current entry in place.
func (h *History) Replace(v any) {
	if h.index < 0 {
		h.Push(v)
		return
	}

	h.entries[h.index] = v
}

func (h *History) CanMove(steps int) bool {
	target := h.index + steps
	return steps != 0 && target >= 0 && target < len(h.entries)
}

// Move shifts the index by steps and returns the entry there. CanMove must
// hold.
func (h *History) Move(steps int) any {
	h.index += steps
	return h.entries[h.index]
}

// Clear drops every entry except the optionally preserved ends. It reports
// false when nothing would be removed.
func (h *History) Clear(opts ClearHistoryOptions) bool {
	n := len(h.entries)

	keep := 0
	if opts.LeaveFirst {
		keep++
	}
	if opts.LeaveLast {
		keep++
	}
	if n == 0 || keep >= n {
		return false
	}

	kept := make([]any, 0, keep)
	if opts.LeaveFirst {
		kept = append(kept, h.entries[0])
	}
	if opts.LeaveLast {
		kept = append(kept, h.entries[n-1])
	}

	h.entries = kept
	h.index = len(kept) - 1
	return true
}
