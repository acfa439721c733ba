// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/apix/request"
)

// A Policy controls if and how the engine retries a failed attempt.
// After every attempt that is not served from the response cache, the
// engine asks the policy whether to retry and, if so, how long to wait
// first. Wait is only consulted after Decide returned true.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy combines DefaultDecider with DefaultWaiter.
var DefaultPolicy Policy = policy{DefaultDecider, DefaultWaiter}

// Never is a policy that never retries. It is the engine's default.
var Never Policy = policy{DeciderFunc(never), NewFixedWaiter(0)}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a Policy. It panics if
// either is nil.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("apix/retry: nil decider")
	}
	if w == nil {
		panic("apix/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(e *request.Execution) bool {
	return p.decider.Decide(e)
}

func (p policy) Wait(e *request.Execution) time.Duration {
	return p.waiter.Wait(e)
}

func never(_ *request.Execution) bool {
	return false
}
