// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"net/http"
	"time"

	"github.com/gogama/apix/request"
	"github.com/gogama/apix/transient"
)

// A Decider decides whether another attempt should be made after the
// attempt recorded in an execution.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It also provides the composition
// methods And and Or, so it is usually more convenient to work with
// than Decider.
type DeciderFunc func(e *request.Execution) bool

// DefaultTimes is the number of retries DefaultDecider allows.
const DefaultTimes = 3

// DefaultDecider allows up to DefaultTimes retries of an idempotent
// call when the attempt failed with a transient error or received one
// of the status codes 429, 502, 503 or 504.
var DefaultDecider = Times(DefaultTimes).
	And(Idempotent).
	And(StatusCode(429, 502, 503, 504).Or(TransientErr))

// TransientErr retries when the attempt's transport error is
// transient according to transient.Categorize. It always returns false
// when an HTTP response was received.
var TransientErr DeciderFunc = transientErr

// Idempotent retries only calls whose HTTP method is idempotent as
// defined by RFC 7231 section 4.2.2.
var Idempotent DeciderFunc = idempotent

// Decide calls f(e).
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And returns a decider that is true when both f and g are true. g is
// not evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or returns a decider that is true when either f or g is true. g is
// not evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times returns a decider allowing up to n retries, that is, it is
// true while e.Attempt is less than n.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Before returns a decider allowing retries while the execution has
// been running for less than d.
func Before(d time.Duration) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Duration() < d
	}
}

// StatusCode returns a decider that is true when the attempt received
// an HTTP response whose status code is one of codes.
func StatusCode(codes ...int) DeciderFunc {
	set := make(map[int]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return func(e *request.Execution) bool {
		if e.Response == nil {
			return false
		}
		_, ok := set[e.StatusCode()]
		return ok
	}
}

func transientErr(e *request.Execution) bool {
	return transient.Categorize(e.Err).Transient()
}

func idempotent(e *request.Execution) bool {
	method := http.MethodGet
	if e.Request != nil && e.Request.Method != "" {
		method = e.Request.Method
	} else if e.Call != nil && e.Call.Plan != nil && e.Call.Plan.Method != "" {
		method = e.Call.Plan.Method
	}
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions,
		http.MethodTrace, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}
