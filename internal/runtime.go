package internal

import (
	"sync"
	"sync/atomic"
)

// Runtime serializes every unit, stream and system operation in the process.
// The lock is re-entrant for the goroutine holding it, so a subscriber may
// dispatch from inside a push and run to completion before the push resumes.
type Runtime struct {
	mu sync.Mutex

	// goroutine id of the current holder, 0 when free
	owner atomic.Int64

	// nested Lock calls made by the holder
	depth int

	settled *SettledQueue
}

var (
	once          sync.Once
	globalRuntime *Runtime
)

func GetRuntime() *Runtime {
	once.Do(func() {
		globalRuntime = NewRuntime()
	})

	return globalRuntime
}

func NewRuntime() *Runtime {
	return &Runtime{settled: NewSettledQueue()}
}

func (r *Runtime) Lock() {
	gid := getGID()
	if r.owner.Load() == gid {
		r.depth++
		return
	}

	r.mu.Lock()
	r.owner.Store(gid)
	r.depth = 1
}

// Unlock releases one level. The outermost release first drains the
// settled queue while the lock is still held.
func (r *Runtime) Unlock() {
	if r.depth == 1 {
		r.settled.Run()
	}

	r.depth--
	if r.depth == 0 {
		r.owner.Store(0)
		r.mu.Unlock()
	}
}

// OnSettled runs fn when the current outermost operation completes. Must be
// called while holding the lock.
func (r *Runtime) OnSettled(fn func()) {
	r.settled.Enqueue(fn)
}

// Run executes fn while holding the runtime lock.
func (r *Runtime) Run(fn func()) {
	r.Lock()
	defer r.Unlock()

	fn()
}
