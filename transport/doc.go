// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport contains the networking collaborators consumed by the
typed request layer: the Session, which creates upload tasks keyed by
payload source, and the Task, a handle to one in-flight HTTP request
attempt.

A Session is usually created once per client and shared by every request
issued through it:

	session := transport.NewSession()
	task, err := session.UploadData(ctx, transport.Request{
		Method: "POST",
		URL:    "https://example.com/upload",
	}, payload)
	...
	task.Response(transport.Sync(), func(res *transport.Result) {
		...
	})

By default a session starts its tasks immediately. A session built with
WithManualStart leaves tasks suspended until Resume is called:

	session := transport.NewSession(transport.WithManualStart())
	task, err := session.UploadFile(ctx, r, "/tmp/report.pdf")
	...
	task.Resume()

The default Doer is a retrying HTTP client; inject any net/http
compatible client with WithDoer. Retries, timeouts, connection pooling
and TLS all belong to the Doer, not to this package.
*/
package transport
