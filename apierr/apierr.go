// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package apierr defines the single structured error type returned by
// every stage of an apix call, and the kinds that classify it.
//
// Callers distinguish failures by kind rather than by message:
//
//	v, err := engine.Invoke(ctx, op, args)
//	if apierr.IsKind(err, apierr.Validation) {
//		...
//	}
package apierr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// A Kind classifies an Error.
type Kind int

const (
	// Config indicates a configuration error: an unresolved
	// destination, a timeout exceeding the configured maximum, a
	// disallowed parameter or return shape, a misplaced or duplicate
	// directive, or a call with the wrong number of arguments. Config
	// errors are always raised before any network I/O.
	Config Kind = iota + 1
	// Validation indicates that an argument or a result violated a
	// declared constraint.
	Validation
	// Request indicates that a request-build hook failed for a reason
	// other than configuration or validation, for example a body
	// that could not be serialized.
	Request
	// Transport indicates a failure to obtain an HTTP response, such
	// as a connection failure, protocol error, timeout or
	// cancellation. The cause is always a *url.Error.
	Transport
	// UnsupportedResponse indicates that no response-handle hook could
	// produce a value of the declared return type.
	UnsupportedResponse
	// Response indicates that a response-handle hook stored an error
	// in the result slot. The stored error is the cause.
	Response
)

var kindNames = map[Kind]string{
	Config:              "config",
	Validation:          "validation",
	Request:             "request",
	Transport:           "transport",
	UnsupportedResponse: "unsupported_response",
	Response:            "response",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the structured error returned from an apix call.
//
// Only Kind and Msg are always set. The remaining fields are set when
// they help to locate the failure.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Op is the name of the operation being called, if known.
	Op string
	// Param is the name of the offending parameter, for parameter
	// related errors.
	Param string
	// Constraint is the violated constraint for Validation errors,
	// for example "required" or "min=3".
	Constraint string
	// Type is the declared return type for UnsupportedResponse
	// errors.
	Type reflect.Type
	// Media is the media type of the response for UnsupportedResponse
	// errors, or "unknown" if the response carried none.
	Media string
	// Msg is a human readable description.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("apix: ")
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(" [")
		b.WriteString(e.Op)
		b.WriteString("]")
	}
	if e.Param != "" {
		b.WriteString(" param ")
		b.WriteString(e.Param)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap returns an error of the given kind with cause err. If err is
// nil, Wrap returns nil.
func Wrap(kind Kind, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind: kind,
		Msg:  msg,
		Err:  err,
	}
}

// WithOp returns a copy of e with Op set, unless Op is already set.
func (e *Error) WithOp(op string) *Error {
	if e.Op != "" {
		return e
	}
	e2 := *e
	e2.Op = op
	return &e2
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// zero if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether the outermost *Error in err's chain has the
// given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// As coerces err into an *Error. Errors that already are (or wrap) an
// *Error are returned as is; any other non-nil error is wrapped using
// the fallback kind.
func As(err error, fallback Kind) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: fallback, Err: err}
}
