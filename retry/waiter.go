// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/apix/request"
)

// A Waiter computes how long to wait before retrying a failed attempt.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// DefaultWaiter uses jittered exponential backoff with a base wait of
// 50 milliseconds and a maximum wait of 1 second.
var DefaultWaiter = NewExpWaiter(50*time.Millisecond, 1*time.Second, time.Now())

// NewFixedWaiter returns a Waiter that always waits d.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Execution) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter returns a Waiter implementing the "Full Jitter"
// exponential backoff described at
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter.
//
// The ceiling for attempt n is min(base * 2**n, max). Base must be
// positive and max must be at least base.
//
// If jitter is nil, the waiter returns the ceiling. Otherwise the wait
// is a random duration in [0, ceiling), drawn from jitter if it is a
// *rand.Rand or rand.Source, or from a generator seeded with jitter if
// it is a time.Time, int or int64.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base < 1 {
		panic("apix/retry: base must be positive")
	}
	if max < base {
		panic("apix/retry: max must be at least base")
	}
	return &expWaiter{
		base: base,
		max:  max,
		rand: jitterToRand(jitter),
	}
}

type expWaiter struct {
	base time.Duration
	max  time.Duration
	rand *rand.Rand
	lock sync.Mutex
}

func (w *expWaiter) Wait(e *request.Execution) time.Duration {
	ceil := w.max
	if e.Attempt < 63 && w.base <= w.max>>uint(e.Attempt) {
		ceil = w.base << uint(e.Attempt)
	}

	if w.rand == nil {
		return ceil
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	return time.Duration(w.rand.Int63n(int64(ceil)))
}

func jitterToRand(jitter interface{}) *rand.Rand {
	var s rand.Source
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		s = rand.NewSource(j.UnixNano())
	case int:
		s = rand.NewSource(int64(j))
	case int64:
		s = rand.NewSource(j)
	case *rand.Rand:
		if j == nil {
			panic("apix/retry: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		s = j
	default:
		panic("apix/retry: invalid jitter type")
	}
	return rand.New(s)
}

// RetryAfter returns a Waiter that honors the Retry-After header of a
// 429 or 503 response, in either its delay-seconds or HTTP-date form,
// capped at max. When the header is absent or unparseable, the wait is
// delegated to fallback. A nil clk means the wall clock.
func RetryAfter(fallback Waiter, max time.Duration, clk clock.Clock) Waiter {
	if fallback == nil {
		panic("apix/retry: nil fallback waiter")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &retryAfterWaiter{fallback: fallback, max: max, clock: clk}
}

type retryAfterWaiter struct {
	fallback Waiter
	max      time.Duration
	clock    clock.Clock
}

func (w *retryAfterWaiter) Wait(e *request.Execution) time.Duration {
	code := e.StatusCode()
	if code != http.StatusTooManyRequests && code != http.StatusServiceUnavailable {
		return w.fallback.Wait(e)
	}
	d, ok := parseRetryAfter(e.Header().Get("Retry-After"), w.clock.Now())
	if !ok {
		return w.fallback.Wait(e)
	}
	if w.max > 0 && d > w.max {
		d = w.max
	}
	return d
}

func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	d := t.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}
