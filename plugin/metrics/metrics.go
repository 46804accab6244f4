// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics provides a plugin counting outgoing requests in a
// Prometheus counter, labeled by method and target host.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// A Plugin counts outgoing requests by method and host.
type Plugin struct {
	requests *prometheus.CounterVec
}

// New creates the plugin and registers its collector with reg. A nil
// registerer leaves the collector unregistered, which is useful in
// tests.
func New(reg prometheus.Registerer) *Plugin {
	p := &Plugin{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reqkit",
			Name:      "requests_total",
			Help:      "Outgoing requests observed before send.",
		}, []string{"method", "host"}),
	}
	if reg != nil {
		reg.MustRegister(p.requests)
	}
	return p
}

// WillSend increments the counter for the request's method and host.
func (p *Plugin) WillSend(r *http.Request) {
	p.requests.WithLabelValues(r.Method, r.URL.Host).Inc()
}
