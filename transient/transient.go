// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"strconv"
	"syscall"
)

// A Category is the transience category of an error, as reported by
// Categorize.
//
// The categories Not and Canceled mean that repeating the attempt is
// pointless. Every other category means that a later attempt has some
// prospect of success.
type Category int

const (
	// Not indicates any non-transient error, including nil.
	Not Category = iota
	// Timeout indicates a client-side timeout. Categorize returns
	// Timeout if the error or any of its causes has a Timeout method
	// that reports true. A context deadline is a Timeout.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (ECONNREFUSED). A service that is still starting up refuses
	// connections for a short while, so this is treated as transient.
	ConnRefused
	// ConnReset indicates the remote host reset an active connection
	// (ECONNRESET), typically because a load balancer or a service
	// being redeployed dropped it.
	ConnReset
	// Canceled indicates the attempt was abandoned because one of the
	// call's cancellation sources fired without a deadline. A canceled
	// attempt is never retried.
	Canceled
)

var categoryNames = [...]string{
	Not:         "not",
	Timeout:     "timeout",
	ConnRefused: "conn_refused",
	ConnReset:   "conn_reset",
	Canceled:    "canceled",
}

// String returns a short lower-case name for the category, suitable
// for use as a log attribute or metric label.
func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "category(" + strconv.Itoa(int(c)) + ")"
}

// Transient reports whether the category indicates a retry may
// succeed.
func (c Category) Transient() bool {
	return c == Timeout || c == ConnRefused || c == ConnReset
}

// Categorize returns the transience category of err.
//
// Categorize looks through the whole chain of wrapped causes. A
// timeout anywhere in the chain wins over every other category. It
// never consults a Temporary method, as the meaning of Temporary is
// not well defined.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
