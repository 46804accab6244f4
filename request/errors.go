// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"fmt"
)

// A Kind is the failure category of an Error, as reported by function
// Classify().
//
// The category tells callers which stage of a send failed: building the
// payload (Encoding), sending it (Underlying), judging the response
// acceptable (Validation), converting it to the typed model (Parsing),
// or a misconfigured request that could never have been sent
// (Configuration).
type Kind int

const (
	// KindUnknown indicates an error that did not originate in this
	// library, or a nil error.
	KindUnknown Kind = iota
	// KindEncoding indicates the request payload could not be
	// constructed: a multipart body failed to encode, or a file or
	// buffer source could not be read.
	KindEncoding
	// KindValidation indicates a response was received but rejected by
	// validation, and no service error model could be parsed from it.
	KindValidation
	// KindParsing indicates an acceptable response whose body the
	// configured parser could not convert into the success model.
	KindParsing
	// KindUnderlying indicates an opaque transport failure surfaced by
	// the session: connection errors, context cancellation, body read
	// failures.
	KindUnderlying
	// KindConfiguration indicates the request could not be sent as
	// configured, for example a required authorization with no
	// authorizer installed.
	KindConfiguration
	// kindSentinel provides the total number of kinds typed as a Kind.
	kindSentinel
)

var kindNames = []string{
	"Unknown",
	"Encoding",
	"Validation",
	"Parsing",
	"Underlying",
	"Configuration",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindSentinel {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// An Error is the typed failure value delivered to failure callbacks
// when no caller-supplied error model applies. It carries the failure
// Kind, the wrapped cause, and the rejected status code and body when a
// response was received.
type Error struct {
	Kind       Kind
	Cause      error
	StatusCode int
	Body       []byte
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("request: %s failure", e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the wrapped cause, allowing errors.Is and errors.As to
// see through the typed error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Classify returns the failure category of the given error. A nil
// error, and any error that is not (and does not wrap) an *Error,
// produce KindUnknown.
func Classify(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindUnknown
}
