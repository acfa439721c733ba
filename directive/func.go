// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import "github.com/gogama/apix/request"

// OnRequest returns a directive named name, with ordering key order,
// whose request hook is f. The directive does not allow multiple
// instances.
func OnRequest(name string, order int, f func(c *request.Call) error) Directive {
	return requestFunc{funcBase{name, order}, f}
}

// OnParameter returns a parameter directive whose hook is f.
func OnParameter(name string, order int, f func(c *request.Call, a request.Arg) error) Directive {
	return paramFunc{funcBase{name, order}, f}
}

// OnResponse returns a directive whose response hook is f.
func OnResponse(name string, order int, f func(e *request.Execution) error) Directive {
	return responseFunc{funcBase{name, order}, f}
}

type funcBase struct {
	name  string
	order int
}

func (f funcBase) Name() string        { return f.name }
func (f funcBase) Order() int          { return f.order }
func (f funcBase) AllowMultiple() bool { return false }

type requestFunc struct {
	funcBase
	f func(c *request.Call) error
}

func (f requestFunc) OnRequest(c *request.Call) error { return f.f(c) }

func (requestFunc) Scopes() Scope { return Interface | Method | Return }

type paramFunc struct {
	funcBase
	f func(c *request.Call, a request.Arg) error
}

func (f paramFunc) OnParameter(c *request.Call, a request.Arg) error { return f.f(c, a) }

func (paramFunc) Scopes() Scope { return Parameter }

type responseFunc struct {
	funcBase
	f func(e *request.Execution) error
}

func (f responseFunc) OnResponse(e *request.Execution) error { return f.f(e) }

func (responseFunc) Scopes() Scope { return Interface | Method | Return }
