// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package reqkit is a thin convenience layer over an injected HTTP
transport, providing typed request/response wrapping, stubbing for
tests, and plugin observation hooks.

Create a Client around a transport session to begin issuing requests:

	session := transport.NewSession()
	client := reqkit.New(session,
		reqkit.WithBaseURL("https://api.example.com"),
	)

	r, err := reqkit.Upload[Receipt](client, "POST", "/v1/reports",
		upload.FromFile("/tmp/report.pdf"))
	...
	r.Parse = request.JSON[Receipt]()
	r.Perform(
		func(receipt Receipt) { ... },
		func(err error) { ... },
	)

The client owns nothing but wiring: the shared session, a base URL, the
default plugin chain, the default delivery queue, and an optional
authorizer applied to requests that require authorization. All
transport concerns (connections, TLS, retries, timeouts) belong to the
session's Doer.

Plugins observe outgoing requests without being able to alter them.
Two ship with the module: plugin/logger (zap) and plugin/metrics
(Prometheus).

For hermetic tests, install a stub on any request and no network is
contacted:

	r.Stub = request.StubSuccess(Receipt{ID: "r-1"})
*/
package reqkit
