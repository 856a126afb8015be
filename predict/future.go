// Package predict implements the batching prediction queue at the heart of
// the generator. Sessions enqueue inference requests and suspend on the
// returned future; between executor poll rounds the worker flushes the
// whole queue, one batched network call per model identifier, and resolves
// every future positionally.
package predict

import (
	"craft/network"
	"craft/sched"
)

// Future is a single-slot result container for one prediction: created
// pending by the requester, resolved exactly once by a flush, read by the
// awaiting session on every poll. It is shared within one worker goroutine
// and its coroutines only, so it carries no synchronization.
type Future struct {
	ready bool
	value network.Output
}

func NewFuture() *Future {
	return &Future{}
}

// Poll returns the current value and whether it is ready. Polling after
// resolution is idempotent.
func (f *Future) Poll() (network.Output, bool) {
	return f.value, f.ready
}

func (f *Future) resolve(v network.Output) {
	f.value = v
	f.ready = true
}

// Await suspends the calling session until the future resolves. The busy
// poll contract: the flush that resolves it runs on the worker between
// poll rounds, so re-checking once per resume is sufficient. Returns
// sched.ErrStopped when the executor shuts down first.
func (f *Future) Await(y *sched.Yield) (network.Output, error) {
	for {
		if v, ok := f.Poll(); ok {
			return v, nil
		}
		if !y.Suspend() {
			return network.Output{}, sched.ErrStopped
		}
	}
}
