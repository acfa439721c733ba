// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"context"
	"net/http"
	"reflect"

	"github.com/gogama/apix/apierr"
	"github.com/gogama/apix/descriptor"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package. In
	// particular, the context of the request is the cancellation
	// token of the attempt.
	Do(r *http.Request) (*http.Response, error)
}

// Invoker is the interface that wraps the basic Invoke method.
//
// Invoke calls operation op with argument values args, indexed by
// parameter position, and returns the materialized result. Engine
// implements the Invoker interface, and any other Invoker
// implementation must behave substantially the same as Engine.Invoke.
//
// Invoker is the boundary with the dispatcher: whatever maps a method
// call onto an operation and an argument slice forwards it to an
// Invoker and hands the result back to its caller.
type Invoker interface {
	Invoke(ctx context.Context, op *descriptor.Operation, args []interface{}) (interface{}, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any connections which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use.
//
// If the underlying implementation does not support this ability,
// CloseIdleConnections does nothing.
type IdleCloser interface {
	CloseIdleConnections()
}

// Call uses the specified Invoker to call operation op, and returns the
// result as a T.
//
// A nil result is returned as the zero value of T. A result that is not
// a T is an error of kind apierr.UnsupportedResponse.
func Call[T any](ctx context.Context, inv Invoker, op *descriptor.Operation, args ...interface{}) (T, error) {
	var zero T
	v, err := inv.Invoke(ctx, op, args)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		want := reflect.TypeOf((*T)(nil)).Elem()
		e := apierr.New(apierr.UnsupportedResponse, "result has type %T, want %s", v, want)
		e.Type = want
		if op != nil {
			e = e.WithOp(op.Name())
		}
		return zero, e
	}
	return t, nil
}
