// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the per-call state types of an apix call: Plan
(the HTTP request being built), Call (the request-build context) and
Execution (the response-handle context).

A Plan describes the logical HTTP request that directives assemble
during the request-build phase. It looks like a stripped-down
http.Request, except that the destination is kept in three parts (a
base URL, a path template and extra query values) so that independent
directives can each contribute one part without knowing the others:

	p := request.NewPlan()
	p.Base, _ = url.Parse("https://api.example.com/v1/")
	p.Method = "GET"
	p.Path = "users/{id}"
	p.SetPathValue("id", "42")
	u, err := p.URL() // https://api.example.com/v1/users/42

A Call is created fresh for every invocation of an operation. It owns the
Plan, the argument values, any cancellation sources registered by
directives, and a key/value side channel that directives may use to
communicate with each other.

An Execution wraps a Call once the request is handed to the transport.
It records the HTTP request and response, and holds the result slot that
response-handle hooks fill in. You will typically not allocate Call or
Execution instances yourself, but will work with the ones handed to
directive hooks and event handlers by the engine.

Neither a Call nor an Execution is ever shared between two calls, so
none of their fields are synchronized.
*/
package request
