// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the shared state and small collaborators of a
typed request: the Base carrying the target, headers, parameters,
parsers, plugins, stub and delivery queue; the typed Error taxonomy;
and the combined Response returned by timeline-collecting sends.

A Base describes how to reach an endpoint and how to convert its raw
response bytes into a typed model (or a typed error model). It is
created by one of the perform layers, configured before the first send,
and read on every send:

	b, err := request.New[Receipt]("POST", "/v1/reports")
	...
	b.Header.Set("Accept", "application/json")
	b.Params["team"] = 42
	b.Parse = request.JSON[Receipt]()

Parsers are pure []byte conversions. JSON, Raw and Text cover the
common cases; anything else is a one-line function literal.

A Stub short-circuits a send with a canned outcome and no network
contact, which keeps tests fast and hermetic:

	b.Stub = request.StubSuccess(Receipt{ID: "r-1"})

Plugins observe outgoing requests just before they are sent. They are
notified in order, synchronously, and their return values (there are
none) cannot affect the send.
*/
package request
