package internal

type Owner struct {
	// cleanup functions to be called when the owner is disposed
	cleanups []func()

	disposed bool
}

func NewOwner() *Owner {
	return &Owner{
		cleanups: make([]func(), 0),
	}
}

// Track ties a subscription's lifetime to the owner.
func (o *Owner) Track(sub *Subscription) *Subscription {
	o.OnCleanup(sub.Unsubscribe)
	return sub
}

func (o *Owner) OnCleanup(fn func()) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	for i := 0; i < len(o.cleanups); i++ {
		o.cleanups[i]()
	}
	o.cleanups = nil
}

func (o *Owner) Disposed() bool {
	return o.disposed
}
