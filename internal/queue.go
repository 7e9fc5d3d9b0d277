package internal

// SettledQueue holds callbacks that run once the outermost runtime lock is
// about to be released.
type SettledQueue struct {
	callbacks []func()
}

func NewSettledQueue() *SettledQueue {
	return &SettledQueue{
		callbacks: make([]func(), 0),
	}
}

func (q *SettledQueue) Enqueue(fn func()) {
	q.callbacks = append(q.callbacks, fn)
}

// Run drains the queue, including callbacks enqueued while it runs.
func (q *SettledQueue) Run() {
	for len(q.callbacks) > 0 {
		callbacks := q.callbacks
		q.callbacks = make([]func(), 0)

		for _, cb := range callbacks {
			cb()
		}
	}
}
