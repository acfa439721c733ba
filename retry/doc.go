// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides policies that decide whether a failed HTTP
// request attempt of an apix call is repeated, and how long the engine
// waits before repeating it.
//
// A Policy is a Decider plus a Waiter. Both have constructors for the
// common cases, so a useful policy is quick to assemble:
//
//	decider := retry.Times(3).
//		And(retry.Idempotent).
//		And(retry.StatusCode(503).Or(retry.TransientErr))
//	waiter := retry.RetryAfter(retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now()), 10*time.Second, nil)
//	policy := retry.NewPolicy(decider, waiter)
//
// The engine uses Never unless it is configured otherwise, so a call
// makes exactly one attempt by default. Responses served from the
// response cache are never subject to the retry policy.
package retry
