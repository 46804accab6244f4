// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// A ParseFunc converts raw response bytes into the success model. It
// must be a pure function: same bytes in, same model (or error) out.
type ParseFunc[T any] func(data []byte) (T, error)

// An ErrorParseFunc converts raw response bytes from a rejected
// response into the service's typed error model. Returning nil means
// the bytes did not contain a recognizable error model, and the send
// falls back to a generic validation error.
type ErrorParseFunc func(data []byte) error

// JSON returns a ParseFunc decoding the response body as JSON into T.
func JSON[T any]() ParseFunc[T] {
	return func(data []byte) (T, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return v, errors.Wrap(err, "request: decode json body")
		}
		return v, nil
	}
}

// Raw returns a ParseFunc handing back the response bytes unchanged.
func Raw() ParseFunc[[]byte] {
	return func(data []byte) ([]byte, error) {
		return data, nil
	}
}

// Text returns a ParseFunc converting the response body to a string.
func Text() ParseFunc[string] {
	return func(data []byte) (string, error) {
		return string(data), nil
	}
}
