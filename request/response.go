// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"time"
)

// A Timeline records when a send started and ended. A stubbed send
// never reaches the network and carries a zero timeline.
type Timeline struct {
	Start time.Time
	End   time.Time
}

// Duration returns the elapsed time of the send, End minus Start.
func (t Timeline) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// Started indicates whether the send started.
func (t Timeline) Started() bool {
	return t.Start != (time.Time{})
}

// Ended indicates whether the send ended.
func (t Timeline) Ended() bool {
	return t.End != (time.Time{})
}

// A Response is the combined outcome of a timeline-collecting send:
// either the parsed success model or the failure error, together with
// the raw response metadata and the send timeline.
type Response[T any] struct {
	// Value is the parsed success model. It is meaningful only when
	// Err is nil.
	Value T

	// Err is the typed failure, mapped exactly as the two-callback
	// perform path maps it. Nil on success.
	Err error

	// StatusCode is the HTTP status code, or 0 if no response was
	// received.
	StatusCode int

	// Header contains the response headers, or nil if no response was
	// received.
	Header http.Header

	// Body is the raw, fully-buffered response body.
	Body []byte

	// Timeline records the send timing.
	Timeline Timeline
}

// Succeeded reports whether the send produced the success model.
func (r *Response[T]) Succeeded() bool {
	return r.Err == nil
}
