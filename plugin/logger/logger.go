// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logger provides a plugin logging outgoing requests through a
// zap logger. Like every plugin it observes only; the send is not
// affected.
package logger

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/reqkit/reqkit/request"
)

// New returns a plugin logging the method, URL and content length of
// each outgoing request at debug level.
func New(l *zap.Logger) request.Plugin {
	if l == nil {
		panic("logger: nil logger")
	}
	return request.PluginFunc(func(r *http.Request) {
		l.Debug("sending request",
			zap.String("method", r.Method),
			zap.Stringer("url", r.URL),
			zap.Int64("content_length", r.ContentLength),
		)
	})
}
