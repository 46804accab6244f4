// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

// A Queue decides where, and on which goroutine, a completion callback
// is delivered.
type Queue interface {
	// Dispatch schedules fn for execution. Implementations decide
	// whether fn runs inline, on a fresh goroutine, or on a dedicated
	// worker, but must run it exactly once.
	Dispatch(fn func())
}

type syncQueue struct{}

func (syncQueue) Dispatch(fn func()) {
	fn()
}

// Sync returns a Queue that runs callbacks inline on the dispatching
// goroutine.
func Sync() Queue {
	return syncQueue{}
}

type asyncQueue struct{}

func (asyncQueue) Dispatch(fn func()) {
	go fn()
}

// Async returns a Queue that runs each callback on a fresh goroutine.
// It is the default delivery queue for non-stubbed sends.
func Async() Queue {
	return asyncQueue{}
}

// A Serial queue delivers callbacks one at a time, in dispatch order,
// on a single worker goroutine. Use it when completion handlers touch
// shared state without their own locking.
//
// A Serial queue must be created with NewSerial and closed with Close
// when no further callbacks will be dispatched.
type Serial struct {
	jobs chan func()
	done chan struct{}
}

// NewSerial creates a Serial queue and starts its worker goroutine.
func NewSerial() *Serial {
	q := &Serial{
		jobs: make(chan func(), 16),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *Serial) loop() {
	defer close(q.done)
	for fn := range q.jobs {
		fn()
	}
}

// Dispatch schedules fn on the worker goroutine. Dispatching on a
// closed Serial queue panics.
func (q *Serial) Dispatch(fn func()) {
	q.jobs <- fn
}

// Close stops the worker after all previously dispatched callbacks have
// run, and blocks until it has exited.
func (q *Serial) Close() {
	close(q.jobs)
	<-q.done
}
