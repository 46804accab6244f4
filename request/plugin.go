// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
)

// A Plugin observes outgoing HTTP requests just before they are sent.
//
// Plugins are notification-only: they are invoked synchronously, in the
// order they were installed, and cannot block or alter the send. A
// plugin that needs to mutate requests does not belong here; use the
// client's authorizer for credentials.
type Plugin interface {
	WillSend(r *http.Request)
}

// The PluginFunc type is an adapter to allow the use of ordinary
// functions as plugins. If f is a function with appropriate signature,
// PluginFunc(f) is a Plugin that calls f.
type PluginFunc func(r *http.Request)

// WillSend calls f(r).
func (f PluginFunc) WillSend(r *http.Request) {
	f(r)
}

// A PluginList is an ordered chain of plugins notified before each
// send. Its zero value is an empty, usable list.
type PluginList struct {
	plugins []Plugin
}

// PushBack appends a plugin to the back of the chain.
func (l *PluginList) PushBack(p Plugin) {
	if p == nil {
		panic("request: nil plugin")
	}
	l.plugins = append(l.plugins, p)
}

// Len returns the number of installed plugins.
func (l *PluginList) Len() int {
	return len(l.plugins)
}

// Notify invokes every plugin in order with the request about to be
// sent.
func (l *PluginList) Notify(r *http.Request) {
	for _, p := range l.plugins {
		p.WillSend(r)
	}
}
