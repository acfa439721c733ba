// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in an Engine to add cross-cutting
// behavior, such as logging or tracing, to every call.
type Event int

const (
	// BeforeRequest identifies the event that occurs once the request
	// plan has been built by the operation's directives, and before
	// the destination is resolved.
	//
	// When Engine fires BeforeRequest, the call's plan is complete but
	// the execution's request field is nil. BeforeRequest handlers may
	// modify the plan. An error returned by a BeforeRequest handler
	// aborts the call with an error of kind apierr.Request.
	BeforeRequest Event = iota
	// BeforeSend identifies the event that occurs before each
	// individual HTTP request attempt.
	//
	// When Engine fires BeforeSend, the execution's request field is
	// set to the HTTP request that WILL BE sent after all BeforeSend
	// handlers have finished. Handlers may make reasonable changes to
	// the request, but should clone the URL and Header before changing
	// them. An error returned by a BeforeSend handler aborts the call
	// with an error of kind apierr.Request.
	BeforeSend
	// AfterAttemptTimeout identifies the event that occurs after an
	// HTTP request attempt failed because of a timeout error.
	//
	// When Engine fires AfterAttemptTimeout, the execution's error
	// field is set to the timeout error, and its attempt timeout
	// counter has been incremented.
	AfterAttemptTimeout
	// AfterAttempt identifies the event that occurs after an HTTP
	// request attempt is concluded, regardless of whether it concluded
	// successfully or not. It runs before the retry policy is
	// consulted.
	AfterAttempt
	// AfterCacheHit identifies the event that occurs when the response
	// is served from the response cache instead of being sent.
	//
	// When Engine fires AfterCacheHit, the execution's response field
	// holds the synthesized response and its cached field is true.
	AfterCacheHit
	// AfterResponse identifies the event that occurs after the
	// operation's response hooks and result validation have run.
	//
	// AfterResponse fires for every call that obtained a response,
	// whether or not a hook already produced a result. An error
	// returned by an AfterResponse handler is stored in the result
	// slot if the slot is still empty.
	AfterResponse
	// AfterCallEnd identifies the event that occurs after the call
	// ends, however it ended.
	//
	// When Engine fires AfterCallEnd, the execution's end time is set,
	// and the result slot holds the outcome of the call: a value, or
	// the error the call will return. Errors returned by AfterCallEnd
	// handlers are logged and otherwise ignored.
	AfterCallEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeRequest",
	"BeforeSend",
	"AfterAttemptTimeout",
	"AfterAttempt",
	"AfterCacheHit",
	"AfterResponse",
	"AfterCallEnd",
}

// Events returns a slice containing all events which can occur in a
// call, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeRequest,
		BeforeSend,
		AfterAttemptTimeout,
		AfterAttempt,
		AfterCacheHit,
		AfterResponse,
		AfterCallEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
