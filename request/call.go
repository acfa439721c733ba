// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"reflect"
	"time"
)

const nilCtxMsg = "apix/request: nil context"

// An Operation identifies the operation a Call belongs to. It is
// implemented by *descriptor.Operation.
type Operation interface {
	// Name returns the stable identity of the operation.
	Name() string
	// ResultType returns the declared return type of the operation.
	ResultType() reflect.Type
}

// An Arg is one argument value passed to a parameter hook, together
// with the identity of its parameter.
type Arg struct {
	// Index is the zero-based position of the parameter.
	Index int
	// Name is the declared name of the parameter.
	Name string
	// Value is the argument value passed by the caller.
	Value interface{}
}

// A Source is a cancellation source registered with a Call. The Call
// aborts as soon as any of its sources is done.
type Source struct {
	// Ctx signals cancellation when done.
	Ctx context.Context
	// Release frees the resources held by the source. It may be nil.
	Release func()
}

// A Call represents the request-build state of a single call.
//
// A Call is created fresh for every call and discarded when the call
// completes. Directive hooks may modify the Plan, register cancellation
// sources, and exchange values using SetValue and Value. They should
// treat the remaining fields as read-only.
type Call struct {
	// Operation is the operation being called. It is never nil.
	Operation Operation

	// Plan is the HTTP request being assembled. It is never nil.
	Plan *Plan

	// Args contains the argument values, indexed by parameter
	// position.
	Args []interface{}

	// MaxTimeout is the largest timeout a directive may set on the
	// call. Zero means no maximum.
	MaxTimeout time.Duration

	ctx     context.Context
	sources []Source
	data    context.Context
}

// NewCall returns a new call of operation op with argument values args.
// The context ctx is the ambient cancellation source of the call and
// must not be nil.
func NewCall(ctx context.Context, op Operation, args []interface{}) *Call {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	return &Call{
		Operation: op,
		Plan:      NewPlan(),
		Args:      args,
		ctx:       ctx,
	}
}

// Context returns the ambient context of the call. It is always
// non-nil.
func (c *Call) Context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

// AddCancellation registers an additional cancellation source. The
// call is aborted as soon as ctx is done. If release is not nil, it is
// invoked exactly once when the call no longer needs the source.
func (c *Call) AddCancellation(ctx context.Context, release func()) {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	c.sources = append(c.sources, Source{Ctx: ctx, Release: release})
}

// Sources returns the cancellation sources registered with
// AddCancellation. The ambient context is not included.
func (c *Call) Sources() []Source {
	return c.sources
}

// Release releases every registered cancellation source. It is safe
// to call Release more than once.
func (c *Call) Release() {
	for i := range c.sources {
		if r := c.sources[i].Release; r != nil {
			c.sources[i].Release = nil
			r()
		}
	}
}

// SetValue allows directives and event handlers to store arbitrary
// data in the call.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different directives putting data into the same
// call.
func (c *Call) SetValue(key, value interface{}) {
	ctx := c.data
	if ctx == nil {
		ctx = context.Background()
	}

	c.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this call for key, or
// nil if there is no value associated with key.
func (c *Call) Value(key interface{}) interface{} {
	ctx := c.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
