// Package sched implements the cooperative scheduler that drives a fixed
// pool of self-play sessions on a single worker goroutine. Sessions are
// coroutines: each runs on its own goroutine but only ever executes while
// the executor is blocked handing it control, so at most one session body
// runs at a time and state shared between sessions needs no locking.
//
// The scheduling contract is pure busy-polling. PollAll resumes every
// session exactly once per round regardless of whether it can make
// progress; the readiness-producing event (a prediction batch flush)
// happens on the worker between rounds, never asynchronously.
package sched

import "errors"

// ErrStopped is returned from an await point when the executor is shutting
// down. Sessions must unwind without suspending again.
var ErrStopped = errors.New("sched: executor stopped")

type status int

const (
	suspended status = iota
	exited
)

type coroutine struct {
	resume chan bool // false requests the coroutine to unwind
	yield  chan status
	done   bool
}

// Yield is the suspension handle passed into a coroutine body. It is valid
// only on the goroutine the body runs on.
type Yield struct {
	c *coroutine
}

// Suspend hands control back to the executor until the next poll round.
// It returns false when the executor is shutting down; the body must then
// return without calling Suspend again.
func (y *Yield) Suspend() bool {
	y.c.yield <- suspended
	return <-y.c.resume
}

// Executor drives its coroutines round-robin. It is not safe for
// concurrent use; one executor belongs to exactly one worker goroutine.
type Executor struct {
	slots []*coroutine
}

func New() *Executor {
	return &Executor{}
}

// Spawn registers a coroutine in the next free slot. The body does not run
// until the first poll round reaches it.
func (e *Executor) Spawn(body func(y *Yield)) {
	c := &coroutine{
		resume: make(chan bool),
		yield:  make(chan status),
	}
	e.slots = append(e.slots, c)
	go func() {
		if !<-c.resume {
			c.yield <- exited
			return
		}
		body(&Yield{c: c})
		c.yield <- exited
	}()
}

// PollAll advances every live coroutine to its next suspension point, in
// slot order. It never blocks beyond the rendezvous with each coroutine
// and never sleeps.
func (e *Executor) PollAll() {
	for _, c := range e.slots {
		if c.done {
			continue
		}
		c.resume <- true
		if <-c.yield == exited {
			c.done = true
		}
	}
}

// Live returns the number of coroutines that have not exited.
func (e *Executor) Live() int {
	n := 0
	for _, c := range e.slots {
		if !c.done {
			n++
		}
	}
	return n
}

// Shutdown resumes every suspended coroutine with a stop signal and waits
// for each to unwind. Work in progress is abandoned, not drained.
func (e *Executor) Shutdown() {
	for _, c := range e.slots {
		for !c.done {
			c.resume <- false
			if <-c.yield == exited {
				c.done = true
			}
		}
	}
}
