package predict

// request pairs one input with the future its prediction resolves.
type request struct {
	input []float32
	fut   *Future
}

// Queue is a lightweight handle onto a Predictor's pending-request table.
// Handles are cheap to copy; every copy enqueues into the same table. A
// queue belongs to one worker goroutine and its coroutines; the owning
// executor serializes all enqueues between poll rounds.
type Queue struct {
	pending map[string][]request
}

// Enqueue appends an inference request under the given model identifier
// and returns the future the next flush will resolve. Never blocks.
func (q Queue) Enqueue(networkID string, input []float32) *Future {
	f := NewFuture()
	q.pending[networkID] = append(q.pending[networkID], request{input: input, fut: f})
	return f
}
