// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/apix/transient"
)

// A ResultState is the state of an Execution's result slot.
type ResultState int

const (
	// ResultNone means no hook has produced a result yet.
	ResultNone ResultState = iota
	// ResultValue means a hook produced a value.
	ResultValue
	// ResultError means a hook produced an error.
	ResultError
)

// An Execution represents the state of a call once its request has
// been handed to the transport.
//
// An Execution wraps the Call that built the request, and records the
// HTTP request, the HTTP response (real or synthesized from the
// response cache) and the result slot.
//
// The result slot starts in state ResultNone. The first of SetResult
// or SetError to be invoked claims the slot; later calls are ignored
// and report false. Reject is the only transition out of ResultValue,
// and no transition ever leads back to ResultNone.
//
// Hooks and event handlers should treat the exported fields as
// read-only, with the limited exception of making reasonable changes to
// the http.Request from a BeforeSend handler.
type Execution struct {
	// Call is the call being executed. It is never nil.
	Call *Call

	// Start is the time the execution started.
	Start time.Time

	// End is the time the execution ended. It contains the zero value
	// until the execution ends.
	End time.Time

	// Clock is the clock Start and End were read from. If nil, the
	// wall clock is used.
	Clock clock.Clock

	// Attempt is the zero-based number of the current HTTP request
	// attempt. It is only ever non-zero when a retry policy is in
	// effect.
	Attempt int

	// AttemptTimeouts is the count of the number of times an HTTP
	// request attempt timed out during the execution.
	AttemptTimeouts int

	// Request is the HTTP request to be made in the current attempt,
	// or already made in the last attempt.
	Request *http.Request

	// Response is the HTTP response received in the most recent
	// attempt, or the response synthesized from the response cache.
	Response *http.Response

	// Body is the complete response body. It is nil if the response
	// body is streamed to the caller instead of being buffered.
	Body []byte

	// Cached indicates that Response was synthesized from the response
	// cache and no HTTP request was sent.
	Cached bool

	// CacheKey is the response cache key of the call, or the empty
	// string if the call does not use the response cache or the key
	// has not been computed yet.
	CacheKey string

	// Err is the transport error of the most recent attempt, if any.
	// Whenever Err is non-nil, it has the type *url.Error.
	Err error

	state ResultState
	value interface{}
	err   error
}

// NewExecution returns a new execution of call c.
func NewExecution(c *Call) *Execution {
	return &Execution{Call: c}
}

// StatusCode returns the status code of the HTTP response, or 0 if
// there is no HTTP response.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the HTTP response headers, or the nil header if there
// is no HTTP response.
//
// Note that a nil return value is always safe for read-only operations,
// since http.Header is a map type.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return e.Response.Header
}

// ContentType returns the Content-Type header of the HTTP response, or
// the empty string if there is none.
func (e *Execution) ContentType() string {
	return e.Header().Get("Content-Type")
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has Ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time on Clock minus
// Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return e.clock().Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

func (e *Execution) clock() clock.Clock {
	if e.Clock == nil {
		return clock.New()
	}
	return e.Clock
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// ResultState returns the state of the result slot.
func (e *Execution) ResultState() ResultState {
	return e.state
}

// HasResult reports whether the result slot has been claimed.
func (e *Execution) HasResult() bool {
	return e.state != ResultNone
}

// Result returns the contents of the result slot.
func (e *Execution) Result() (interface{}, error) {
	return e.value, e.err
}

// SetResult claims the result slot with value v. It reports false,
// leaving the slot unchanged, if the slot was already claimed.
func (e *Execution) SetResult(v interface{}) bool {
	if e.state != ResultNone {
		return false
	}
	e.state = ResultValue
	e.value = v
	return true
}

// SetError claims the result slot with error err, which must not be
// nil. It reports false, leaving the slot unchanged, if the slot was
// already claimed.
func (e *Execution) SetError(err error) bool {
	if err == nil {
		panic("apix/request: nil result error")
	}
	if e.state != ResultNone {
		return false
	}
	e.state = ResultError
	e.err = err
	return true
}

// Reject replaces a claimed value with error err, for example because
// the value failed validation. It reports false, leaving the slot
// unchanged, unless the slot is in state ResultValue.
func (e *Execution) Reject(err error) bool {
	if err == nil {
		panic("apix/request: nil result error")
	}
	if e.state != ResultValue {
		return false
	}
	e.state = ResultError
	e.value = nil
	e.err = err
	return true
}

// Value returns the call data value associated with key. It is
// shorthand for e.Call.Value(key).
func (e *Execution) Value(key interface{}) interface{} {
	return e.Call.Value(key)
}

// SetValue stores a call data value. It is shorthand for
// e.Call.SetValue(key, value).
func (e *Execution) SetValue(key, value interface{}) {
	e.Call.SetValue(key, value)
}
