// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package upload adapts one of four upload intents into a transport-layer
task and routes the eventual response through typed callbacks.

A Source describes where the upload payload comes from: a file on disk,
an in-memory buffer, a readable stream, or a multipart form builder.
Exactly one variant is active per request:

	src := upload.FromFile("/tmp/report.pdf")
	src := upload.FromData(payload)
	src := upload.FromStream(pipe)
	src := upload.MultipartForm(func(f *transport.Form) {
		f.AppendFile("report", "/tmp/report.pdf")
	})

A Request owns a Source and the shared typed-request state, and exposes
three entry points. Perform delivers the outcome through separate
success and failure callbacks; PerformCollectingTimeline delivers one
combined response carrying the send timeline; PerformMultipart is the
multipart-specific path with an explicit memory threshold and an
encoding-completion hook.

	r, err := upload.New[Receipt](session, "POST", url, src)
	...
	r.Parse = request.JSON[Receipt]()
	task := r.Perform(
		func(receipt Receipt) { ... },
		func(err error) { ... },
	)

Every perform call issues one independent task; there is no queue, pool
or retry at this layer. Exactly one terminal callback fires per
non-stubbed send, on the request's delivery queue.
*/
package upload
