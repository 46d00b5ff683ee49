package service

import "sync/atomic"

// Batch is the fan-in tracker for one dispatch invocation. RecordOne is
// called once per successfully enqueued branch; onComplete fires exactly
// once, on the transition to completed == total, under any completion
// order. If fewer than total branches ever complete, onComplete never runs.
type Batch struct {
	total      int64
	completed  atomic.Int64
	onComplete func()
}

func NewBatch(total int, onComplete func()) *Batch {
	return &Batch{total: int64(total), onComplete: onComplete}
}

// RecordOne atomically advances the counter and fires the terminal callback
// when the post-increment value reaches the fixed total.
func (b *Batch) RecordOne() {
	if b.completed.Add(1) == b.total && b.onComplete != nil {
		b.onComplete()
	}
}

// Progress returns the completed and total counts for the status line.
func (b *Batch) Progress() (completed, total int) {
	return int(b.completed.Load()), int(b.total)
}
