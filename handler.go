// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"fmt"

	"github.com/gogama/apix/request"
)

// A HandlerGroup is a group of event handler chains which can be
// installed in an Engine.
//
// A HandlerGroup must not be modified while an Engine using it is
// serving calls.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("apix: nil handler")
	}
	if evt < 0 || int(evt) >= numEvents {
		panic(fmt.Sprintf("apix: invalid event %d", int(evt)))
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

// run runs the chain for evt, stopping at the first handler error.
func (g *HandlerGroup) run(evt Event, e *request.Execution) error {
	i := int(evt)
	if i >= len(g.handlers) {
		return nil
	}
	for _, h := range g.handlers[i] {
		if err := h.Handle(evt, e); err != nil {
			return err
		}
	}
	return nil
}

// runAll runs every handler in the chain for evt and returns the first
// error. A panicking handler counts as an error.
func (g *HandlerGroup) runAll(evt Event, e *request.Execution) error {
	i := int(evt)
	if i >= len(g.handlers) {
		return nil
	}
	var first error
	for _, h := range g.handlers[i] {
		if err := isolate(func() error { return h.Handle(evt, e) }); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// A Handler handles the occurrence of an event during a call.
type Handler interface {
	Handle(Event, *request.Execution) error
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(Event, *request.Execution) error

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) error {
	return f(evt, e)
}
