// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"net/http"
	"time"
)

// A Result represents the terminal state of a Task: the request that
// was sent, the response and fully-buffered body if one was received,
// the error if the attempt failed, and the attempt timeline.
//
// A Result is created by the task execution logic and handed to the
// completion callback attached with Task.Response. Callbacks should
// treat the exported fields as immutable.
type Result struct {
	// Request is the HTTP request that was sent (or was about to be
	// sent, if the attempt failed before reaching the network). It is
	// never nil.
	Request *http.Request

	// Response is the HTTP response received, or nil if the attempt
	// ended in an error before a response was available.
	Response *http.Response

	// Body is the complete response body. It is nil if the attempt
	// ended in an error, and may have zero length on a successful
	// attempt with an empty body.
	Body []byte

	// Err is the error that ended the attempt: a transport error, a
	// body read error, or a *StatusError produced by a validator
	// attached to the task. Err is nil on a successful, valid attempt.
	Err error

	// Start is the time the attempt started.
	Start time.Time

	// End is the time the attempt ended, after the body was read (or
	// the error occurred).
	End time.Time
}

// StatusCode returns the HTTP status code of the response, or 0 if no
// response was received.
func (r *Result) StatusCode() int {
	if r.Response == nil {
		return 0
	}

	return r.Response.StatusCode
}

// Header returns the HTTP response headers, or the nil header if no
// response was received. The nil header is safe for read-only use.
func (r *Result) Header() http.Header {
	if r.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return r.Response.Header
}

// Duration returns the elapsed time of the attempt, End minus Start.
func (r *Result) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Started indicates whether the attempt started.
func (r *Result) Started() bool {
	return r.Start != (time.Time{})
}

// Ended indicates whether the attempt ended.
func (r *Result) Ended() bool {
	return r.End != (time.Time{})
}
