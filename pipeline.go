// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"context"
	"sort"

	"github.com/gogama/apix/apierr"
	"github.com/gogama/apix/descriptor"
	"github.com/gogama/apix/directive"
	"github.com/gogama/apix/request"
	"github.com/pkg/errors"
)

// A step is one stage of a compiled pipeline. Steps hold no per-call
// state; everything mutable lives in the Execution.
type step func(eng *Engine, x *request.Execution) error

// A pipeline is the compiled form of an operation: the ordered request
// steps and response steps run by execute.
type pipeline struct {
	op       *descriptor.Operation
	request  []step
	response []step
}

func (eng *Engine) pipeline(op *descriptor.Operation) *pipeline {
	if p, ok := eng.pipelines.Load(op); ok {
		return p.(*pipeline)
	}
	p, _ := eng.pipelines.LoadOrStore(op, compile(op))
	return p.(*pipeline)
}

// compile lays out the steps of op.
//
// Request steps: argument validation, operation directives, parameter
// directives in parameter order, return directives, then BeforeRequest
// handlers. Response steps: response hooks of the operation and return
// directives in directive order, result validation, then AfterResponse
// handlers.
func compile(op *descriptor.Operation) *pipeline {
	p := &pipeline{op: op}
	ret := op.Return()

	params := op.Params()
	p.request = append(p.request, func(eng *Engine, x *request.Execution) error {
		return eng.validator().ValidateArgs(params, x.Call.Args)
	})
	for _, d := range op.Directives() {
		if h, ok := d.(directive.RequestHook); ok {
			p.request = append(p.request, requestStep(h))
		}
	}
	for _, param := range params {
		for _, d := range param.Directives {
			if h, ok := d.(directive.ParamHook); ok {
				p.request = append(p.request, paramStep(h, param))
			}
		}
	}
	for _, d := range ret.Directives {
		if h, ok := d.(directive.RequestHook); ok {
			p.request = append(p.request, requestStep(h))
		}
	}
	p.request = append(p.request, func(eng *Engine, x *request.Execution) error {
		return eng.handlers().run(BeforeRequest, x)
	})

	var hooks []directive.Directive
	for _, d := range op.Directives() {
		if _, ok := d.(directive.ResponseHook); ok {
			hooks = append(hooks, d)
		}
	}
	for _, d := range ret.Directives {
		if _, ok := d.(directive.ResponseHook); ok {
			hooks = append(hooks, d)
		}
	}
	sort.SliceStable(hooks, func(i, j int) bool {
		return hooks[i].Order() < hooks[j].Order()
	})
	for _, d := range hooks {
		p.response = append(p.response, responseStep(d.(directive.ResponseHook)))
	}
	if !ret.Kind.Raw() {
		p.response = append(p.response, validateResult)
	}
	p.response = append(p.response, func(eng *Engine, x *request.Execution) error {
		return eng.handlers().runAll(AfterResponse, x)
	})
	return p
}

func requestStep(h directive.RequestHook) step {
	return func(_ *Engine, x *request.Execution) error {
		return h.OnRequest(x.Call)
	}
}

func paramStep(h directive.ParamHook, param *descriptor.Parameter) step {
	return func(_ *Engine, x *request.Execution) error {
		return h.OnParameter(x.Call, request.Arg{
			Index: param.Index,
			Name:  param.Name,
			Value: x.Call.Args[param.Index],
		})
	}
}

func responseStep(h directive.ResponseHook) step {
	return func(_ *Engine, x *request.Execution) error {
		return h.OnResponse(x)
	}
}

func validateResult(eng *Engine, x *request.Execution) error {
	if !eng.Config.ValidateResult || x.ResultState() != request.ResultValue {
		return nil
	}
	v, _ := x.Result()
	if err := eng.validator().ValidateResult(v); err != nil {
		x.Reject(err)
	}
	return nil
}

// execute runs one call through the pipeline.
func (p *pipeline) execute(ctx context.Context, eng *Engine, args []interface{}) (result interface{}, err error) {
	name := p.op.Name()
	ret := p.op.Return()
	clk := eng.clock()
	handlers := eng.handlers()

	c := request.NewCall(ctx, p.op, args)
	c.MaxTimeout = eng.Config.MaxTimeout
	x := request.NewExecution(c)
	x.Clock = clk
	x.Start = clk.Now()

	release := c.Release
	defer func() {
		if err != nil {
			x.SetError(err)
		}
		x.End = clk.Now()
		if herr := handlers.runAll(AfterCallEnd, x); herr != nil {
			eng.logger().Warn("apix: AfterCallEnd handler failed", "op", name, "error", herr)
		}
		release()
	}()

	if len(args) != len(p.op.Params()) {
		return nil, apierr.New(apierr.Config, "operation takes %d arguments, got %d", len(p.op.Params()), len(args)).WithOp(name)
	}

	for _, s := range p.request {
		if err = isolate(func() error { return s(eng, x) }); err != nil {
			return nil, apierr.As(err, apierr.Request).WithOp(name)
		}
	}

	linked, releaseLink := link(c)
	release = releaseLink
	if err = eng.transport(linked, x, ret, handlers); err != nil {
		return nil, apierr.As(err, apierr.Transport).WithOp(name)
	}

	stream := ret.Kind == descriptor.RawStream && x.Response != nil
	if stream {
		x.Response.Body = &releaseCloser{ReadCloser: x.Response.Body, release: releaseLink}
		release = func() {}
	}

	for _, s := range p.response {
		if herr := isolate(func() error { return s(eng, x) }); herr != nil {
			x.SetError(herr)
		}
	}

	result, err = materialize(x, ret)
	if err != nil {
		if stream {
			_ = x.Response.Body.Close()
		}
		return nil, apierr.As(err, apierr.Response).WithOp(name)
	}
	return result, nil
}

// isolate runs f, converting a panic into an error.
func isolate(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = errors.Wrap(rerr, "panic")
			} else {
				err = errors.Errorf("panic: %v", r)
			}
		}
	}()
	return f()
}
