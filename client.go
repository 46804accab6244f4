// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqkit

import (
	"net/http"

	"github.com/reqkit/reqkit/request"
	"github.com/reqkit/reqkit/transport"
	"github.com/reqkit/reqkit/upload"
)

// A Plugin observes outgoing requests. See package request for the
// contract.
type Plugin = request.Plugin

// An Authorizer applies credentials to the outgoing headers of
// requests marked as requiring authorization.
type Authorizer interface {
	Authorize(h http.Header) error
}

// The AuthorizerFunc type is an adapter to allow the use of ordinary
// functions as authorizers.
type AuthorizerFunc func(h http.Header) error

// Authorize calls f(h).
func (f AuthorizerFunc) Authorize(h http.Header) error {
	return f(h)
}

// A Client wires new typed requests to a shared transport session and
// stamps them with its defaults: base URL, plugin chain, delivery
// queue, and authorizer.
//
// A Client holds no per-request state and is safe for concurrent use
// by multiple goroutines. The session is required at construction;
// a client can therefore never find itself without a transport at
// send time.
type Client struct {
	session transport.Session
	baseURL string
	plugins []request.Plugin
	queue   transport.Queue
	auth    Authorizer
}

// An Option configures a Client during New.
type Option func(*Client)

// WithBaseURL sets the URL request paths are resolved against.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithPlugins appends plugins to the default chain installed on every
// request created through the client, preserving order.
func WithPlugins(plugins ...request.Plugin) Option {
	for _, p := range plugins {
		if p == nil {
			panic("reqkit: nil plugin")
		}
	}
	return func(c *Client) {
		c.plugins = append(c.plugins, plugins...)
	}
}

// WithQueue sets the default delivery queue for completion callbacks.
func WithQueue(q transport.Queue) Option {
	if q == nil {
		panic("reqkit: nil queue")
	}
	return func(c *Client) {
		c.queue = q
	}
}

// WithAuthorizer installs the authorizer applied to requests marked as
// requiring authorization.
func WithAuthorizer(a Authorizer) Option {
	if a == nil {
		panic("reqkit: nil authorizer")
	}
	return func(c *Client) {
		c.auth = a
	}
}

// New creates a Client around the given transport session. The session
// must be non-nil.
func New(session transport.Session, opts ...Option) *Client {
	if session == nil {
		panic("reqkit: nil session")
	}
	c := &Client{session: session}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the shared transport session.
func (c *Client) Session() transport.Session {
	return c.session
}

// Upload creates a typed upload request through the client, stamped
// with the client's base URL, plugins, delivery queue and authorizer.
func Upload[T any](c *Client, method, path string, src upload.Source) (*upload.Request[T], error) {
	r, err := upload.New[T](c.session, method, path, src)
	if err != nil {
		return nil, err
	}
	r.BaseURL = c.baseURL
	for _, p := range c.plugins {
		r.Plugins.PushBack(p)
	}
	r.Queue = c.queue
	if c.auth != nil {
		r.Authorize = c.auth.Authorize
	}
	return r, nil
}
