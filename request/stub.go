// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// A Stub is a canned outcome installed on a request for testing. When a
// request carries a stub, its perform entry points resolve
// synchronously with the canned value or error, contact no transport,
// and return no live task.
type Stub[T any] struct {
	value  T
	err    error
	failed bool
}

// StubSuccess returns a stub resolving to the given success model.
func StubSuccess[T any](value T) *Stub[T] {
	return &Stub[T]{value: value}
}

// StubFailure returns a stub resolving to the given error.
func StubFailure[T any](err error) *Stub[T] {
	if err == nil {
		panic("request: nil stub error")
	}
	return &Stub[T]{err: err, failed: true}
}

// Failed reports whether the stub resolves to the failure outcome.
func (s *Stub[T]) Failed() bool {
	return s.failed
}

// Outcome returns the canned value or error. Exactly one of the two is
// meaningful, per Failed.
func (s *Stub[T]) Outcome() (T, error) {
	return s.value, s.err
}
