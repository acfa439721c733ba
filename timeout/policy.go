// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/apix/request"
)

// A Policy decides the timeout of the next HTTP request attempt of an
// execution, including the first. A return value of zero or less means
// the attempt has no timeout of its own.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Timeout(e *request.Execution) time.Duration
}

// DefaultPolicy sets a fixed timeout of 5 seconds on every attempt.
var DefaultPolicy Policy = Fixed(5 * time.Second)

// Infinite never times out an attempt. It is the engine's default.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed returns a policy that gives every attempt the timeout d.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive returns a policy that lengthens the timeout after an attempt
// times out.
//
// The first attempt, and every attempt whose predecessor did not time
// out, gets the timeout usual. An attempt following the n-th timeout of
// the execution gets after[n-1], or the last element of after once the
// timeouts outnumber it. For example
//
//	Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// uses 200ms normally, 1s after the first timeout and 10s after any
// later one.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(e *request.Execution) time.Duration {
	if !e.Timeout() {
		return p[0]
	}

	i := e.AttemptTimeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}

// Capped returns a policy that never exceeds max, whatever p returns.
// A non-positive value from p is returned unchanged.
func Capped(p Policy, max time.Duration) Policy {
	if p == nil {
		panic("apix/timeout: nil policy")
	}
	if max <= 0 {
		panic("apix/timeout: max must be positive")
	}
	return capped{p, max}
}

type capped struct {
	p   Policy
	max time.Duration
}

func (c capped) Timeout(e *request.Execution) time.Duration {
	d := c.p.Timeout(e)
	if d > c.max {
		return c.max
	}
	return d
}
