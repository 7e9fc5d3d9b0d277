package internal

type Batcher struct {
	// each nested batch increases the depth by 1
	// while depth > 0, work that would start a new batch is suppressed
	depth int
}

func NewBatcher() *Batcher {
	return &Batcher{
		depth: 0,
	}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

// Batch runs fn, then onComplete for the outermost batch. The batch is still
// open while onComplete runs.
func (b *Batcher) Batch(fn, onComplete func()) {
	b.depth++
	defer func() { b.depth-- }()

	fn()

	if b.depth == 1 && onComplete != nil {
		onComplete()
	}
}
