// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// A Validator inspects a received response and its buffered body and
// reports an error if the response is unacceptable. Validators run
// once, just before the completion callback is dispatched, and only if
// the attempt itself did not end in an error.
type Validator func(resp *http.Response, body []byte) error

// A StatusError is the error produced by AcceptStatus when the response
// status code falls outside the accepted range. It carries the status
// code and the buffered body so callers can parse a service error model
// out of the rejected response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: response status %d not acceptable", e.StatusCode)
}

// AcceptStatus returns a Validator accepting status codes in the
// inclusive range [lo, hi] and rejecting everything else with a
// *StatusError.
func AcceptStatus(lo, hi int) Validator {
	return func(resp *http.Response, body []byte) error {
		if resp.StatusCode < lo || resp.StatusCode > hi {
			return &StatusError{StatusCode: resp.StatusCode, Body: body}
		}
		return nil
	}
}

// A Task is a handle to one live upload attempt created by a Session.
//
// A task executes at most once. Sessions that start tasks immediately
// resume them on creation; otherwise the task stays suspended until
// Resume is called. Validators and the completion callback may be
// attached before or after the attempt finishes: the completion is
// dispatched exactly once, as soon as both the result exists and a
// callback is attached.
type Task struct {
	id     string
	doer   Doer
	req    *http.Request
	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	validators []Validator
	queue      Queue
	completion func(*Result)
	result     *Result
	started    bool
}

func newTask(doer Doer, req *http.Request, cancel context.CancelFunc) *Task {
	return &Task{
		id:     uuid.NewString(),
		doer:   doer,
		req:    req,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the unique identifier assigned to the task at creation.
func (t *Task) ID() string {
	return t.id
}

// Request returns the underlying HTTP request the task sends. Observers
// must not modify it.
func (t *Task) Request() *http.Request {
	return t.req
}

// Validate appends a validator to the task. Validate must be called
// before the completion callback is attached with Response.
func (t *Task) Validate(v Validator) *Task {
	if v == nil {
		panic("transport: nil validator")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.completion != nil {
		panic("transport: validator attached after completion")
	}
	t.validators = append(t.validators, v)
	return t
}

// Response attaches the completion callback and the queue it is
// delivered on. A nil queue means Sync. Response may be called at most
// once per task; if the attempt has already finished, the callback is
// dispatched immediately.
func (t *Task) Response(q Queue, fn func(*Result)) *Task {
	if fn == nil {
		panic("transport: nil completion")
	}
	if q == nil {
		q = Sync()
	}

	t.mu.Lock()
	if t.completion != nil {
		t.mu.Unlock()
		panic("transport: completion already attached")
	}
	t.completion = fn
	t.queue = q
	res := t.result
	vs := t.validators
	t.mu.Unlock()

	if res != nil {
		deliver(vs, q, fn, res)
	}
	return t
}

// Resume starts the attempt. Resume is idempotent; calls after the
// first do nothing.
func (t *Task) Resume() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	go t.run()
}

// Cancel cancels the task's context. An in-flight attempt is
// interrupted and finishes with the context error; a suspended task
// fails as soon as it is resumed.
func (t *Task) Cancel() {
	t.cancel()
}

// Done returns a channel that is closed when the attempt has finished,
// before the completion callback is dispatched.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) run() {
	defer t.cancel()

	res := &Result{Request: t.req, Start: time.Now()}
	resp, err := t.doer.Do(t.req)
	if err != nil {
		res.Err = errors.Wrap(err, "transport: send request")
	} else {
		res.Response = resp
		res.Body, res.Err = readBody(resp)
	}
	res.End = time.Now()

	t.mu.Lock()
	t.result = res
	fn := t.completion
	q := t.queue
	vs := t.validators
	t.mu.Unlock()

	close(t.done)
	if fn != nil {
		deliver(vs, q, fn, res)
	}
}

func readBody(resp *http.Response) ([]byte, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "transport: read response body")
	}
	return b, nil
}

// deliver runs the validators and dispatches the completion callback.
// It is reached exactly once per task, from whichever of run and
// Response observes the other side's state already in place.
func deliver(vs []Validator, q Queue, fn func(*Result), res *Result) {
	if res.Err == nil && res.Response != nil {
		for _, v := range vs {
			if err := v(res.Response, res.Body); err != nil {
				res.Err = err
				break
			}
		}
	}
	q.Dispatch(func() {
		fn(res)
	})
}
