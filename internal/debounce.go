package internal

import "time"

// Debouncer gates calls through a quiet window. Each call restarts the
// window. Trailing calls run on a timer goroutine under the runtime lock.
type Debouncer struct {
	rt   *Runtime
	wait time.Duration
	mode DebounceMode

	timer *time.Timer
	gen   uint64

	trailing func()
}

func NewDebouncer(rt *Runtime, wait time.Duration, mode DebounceMode) *Debouncer {
	return &Debouncer{
		rt:   rt,
		wait: wait,
		mode: mode,
	}
}

// Call must be made while holding the runtime lock.
func (d *Debouncer) Call(fn func()) {
	leading := d.timer == nil
	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })

	switch d.mode {
	case DebounceStart:
		if leading {
			fn()
		}
	case DebounceBoth:
		if leading {
			fn()
		} else {
			d.trailing = fn
		}
	default:
		d.trailing = fn
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.rt.Lock()
	defer d.rt.Unlock()

	// a newer call restarted the window after this timer was already due
	if gen != d.gen {
		return
	}

	d.timer = nil
	fn := d.trailing
	d.trailing = nil

	if fn != nil {
		fn()
	}
}
