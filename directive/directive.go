// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import (
	"math"
	"strings"

	"github.com/gogama/apix/request"
)

// Reserved and conventional ordering keys. Lower keys run earlier.
const (
	// OrderBase is reserved for the directive that establishes the base
	// destination. It runs before every other request hook. Resolve
	// rejects any other directive ordered at or below OrderRoute.
	OrderBase = math.MinInt
	// OrderRoute is reserved for the directive that establishes the
	// method and relative path. It runs right after OrderBase.
	OrderRoute = math.MinInt + 1
	// OrderCheck is used by response directives that must claim the
	// result slot before any decoding directive, such as EnsureSuccess.
	OrderCheck = -1000
	// OrderDefault is the ordering key of most built-in directives.
	OrderDefault = 0
	// OrderAuth is used by the authentication directives so that they
	// observe the final method and destination.
	OrderAuth = 1000
	// OrderLast is used by the built-in raw return hook.
	OrderLast = math.MaxInt32
)

// A Directive is a self-contained unit of configuration attached to an
// operation, a parameter or a return type.
//
// Name identifies the directive type. Two directives with the same Name
// are duplicates: if AllowMultiple is false, a method-level instance
// replaces an interface-level one, and two instances at the same level
// are a configuration error.
//
// A Directive contributes behavior by implementing one or more of
// RequestHook, ParamHook and ResponseHook. Implementations must be
// immutable and safe for concurrent use.
type Directive interface {
	Name() string
	Order() int
	AllowMultiple() bool
}

// A RequestHook runs during the request-build phase. Returning an error
// aborts the call before anything is sent.
type RequestHook interface {
	OnRequest(c *request.Call) error
}

// A ParamHook runs once per call for the parameter it is attached to,
// with that parameter's argument.
type ParamHook interface {
	OnParameter(c *request.Call, a request.Arg) error
}

// A ResponseHook runs during the response-handle phase. An error
// returned by OnResponse is stored in the result slot if the slot is
// still empty. Later hooks run regardless.
type ResponseHook interface {
	OnResponse(e *request.Execution) error
}

// A Checker is implemented by directives whose configuration can be
// checked when the operation is built.
type Checker interface {
	Check() error
}

// A Scope is a set of places a directive may be attached.
type Scope uint8

const (
	Interface Scope = 1 << iota
	Method
	Parameter
	Return

	// AnyScope is the scope of directives that do not implement Scoped.
	AnyScope = Interface | Method | Parameter | Return
)

var scopeNames = []string{"interface", "method", "parameter", "return"}

func (s Scope) String() string {
	var parts []string
	for i, name := range scopeNames {
		if s&(1<<uint(i)) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// A Scoped directive restricts where it may be attached.
type Scoped interface {
	Scopes() Scope
}

// ScopesOf returns the scopes directive d may be attached in.
func ScopesOf(d Directive) Scope {
	if s, ok := d.(Scoped); ok {
		return s.Scopes()
	}
	return AnyScope
}
