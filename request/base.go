// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/base64"
	"fmt"
	"net/http"
	urlpkg "net/url"
	"strings"

	"github.com/reqkit/reqkit/transport"
)

// A Base contains the shared state of a typed request: where it goes,
// what it carries, who observes it, how its response is converted, and
// where the outcome is delivered.
//
// A Base is created by a perform layer (see package upload), configured
// by mutating its fields before the first send, and then read on every
// send. Each perform call issues an independent transport task; the
// Base itself is never pooled or reused internally.
type Base[T any] struct {
	// Method is the HTTP method, validated at construction. An empty
	// string passed to New means POST.
	Method string

	// BaseURL optionally holds the URL the Path is resolved against.
	// When empty, Path must be an absolute URL.
	BaseURL string

	// Path is the target path of the request, joined to BaseURL.
	Path string

	// Header contains the request header fields to send.
	Header http.Header

	// Params is the flat parameter mapping. Values are stringified via
	// their natural text representation. For multipart sends the
	// parameters become named form parts; for every other payload
	// source they are query-encoded into the URL.
	Params map[string]interface{}

	// RequiresAuth marks the request as needing authorization. The
	// client's authorizer is applied to the outgoing headers when set.
	RequiresAuth bool

	// Plugins is the ordered chain notified before each send.
	Plugins PluginList

	// Parse converts an acceptable response body into the success
	// model. A send with no parser fails with a configuration error.
	Parse ParseFunc[T]

	// ParseError converts a rejected response body into the service's
	// typed error model. Optional.
	ParseError ErrorParseFunc

	// Stub, when non-nil, short-circuits every send with its canned
	// outcome.
	Stub *Stub[T]

	// Queue is the delivery queue for completion callbacks. When nil,
	// callbacks are delivered on a fresh goroutine.
	Queue transport.Queue
}

// New returns a new Base with the given method and target path. The
// method must be a valid HTTP token; an empty method means POST.
func New[T any](method, path string) (*Base[T], error) {
	if method == "" {
		method = "POST"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("request: invalid method %q", method)
	}
	return &Base[T]{
		Method: method,
		Path:   path,
		Header: make(http.Header),
		Params: make(map[string]interface{}),
	}, nil
}

// URL resolves the target URL from BaseURL and Path, without query
// parameters.
func (b *Base[T]) URL() (string, error) {
	if b.BaseURL == "" {
		u, err := urlpkg.Parse(b.Path)
		if err != nil {
			return "", fmt.Errorf("request: parse path %q: %w", b.Path, err)
		}
		return u.String(), nil
	}

	u, err := urlpkg.Parse(b.BaseURL)
	if err != nil {
		return "", fmt.Errorf("request: parse base url %q: %w", b.BaseURL, err)
	}
	return u.JoinPath(b.Path).String(), nil
}

// QueryValues returns the flat parameters stringified into URL query
// values.
func (b *Base[T]) QueryValues() urlpkg.Values {
	values := make(urlpkg.Values, len(b.Params))
	for k, v := range b.Params {
		values.Set(k, fmt.Sprint(v))
	}
	return values
}

// SetBasicAuth sets the request's Authorization header to use HTTP
// Basic Authentication with the provided username and password. The
// username and password are not encrypted.
func (b *Base[T]) SetBasicAuth(username, password string) {
	auth := username + ":" + password
	b.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
}

// validMethod reports whether every rune of method is a valid HTTP
// token character per RFC 7230 section 3.2.6.
func validMethod(method string) bool {
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return false
	case strings.ContainsRune("!#$%&'*+-.^_`|~", r):
		return false
	}
	return true
}
