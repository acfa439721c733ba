// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/gogama/apix/cache"
	"github.com/gogama/apix/descriptor"
	"github.com/gogama/apix/retry"
	"github.com/gogama/apix/timeout"
	"github.com/gogama/apix/validation"
)

var emptyHandlers = HandlerGroup{}

// An Engine executes calls of declaratively described HTTP operations.
// Its zero value is a valid configuration.
//
// The zero value engine uses http.DefaultClient (from net/http) as the
// HTTPDoer, sends every request exactly once (retry.Never) with no
// attempt timeout (timeout.Infinite), has no response cache, no event
// handlers, and logs to slog.Default().
//
// For each call, Engine:
//
// • validates the arguments against the parameter constraints;
//
// • runs the request hooks of the operation's directives to build the
// request plan;
//
// • serves the response from the response cache, or sends the request
// through the HTTPDoer, following the retry and timeout policies;
//
// • runs the response hooks of the operation's directives, which fill
// the result slot; and
//
// • materializes the result slot into the value or error returned to
// the caller.
//
// Engine compiles each operation into a pipeline on first use and
// reuses it for later calls. Engine is safe for concurrent use by
// multiple goroutines, and must not be copied after first use.
type Engine struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient from the standard net/http
	// package is used.
	HTTPDoer HTTPDoer
	// RetryPolicy decides when to retry failed attempts and how long
	// to sleep after a failed attempt before retrying.
	//
	// If RetryPolicy is nil, retry.Never is used.
	RetryPolicy retry.Policy
	// TimeoutPolicy specifies how to set timeouts on individual request
	// attempts. Call-level timeouts are set by directives.
	//
	// If TimeoutPolicy is nil, timeout.Infinite is used.
	TimeoutPolicy timeout.Policy
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during a call.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Cache stores responses for operations carrying a cache
	// directive.
	//
	// If Cache is nil, cache directives have no effect.
	Cache cache.Provider
	// Validator validates arguments and results. Its Nested field,
	// rather than Config.ValidateNested, controls nested argument
	// validation.
	//
	// If Validator is nil, a validator honoring Config.ValidateNested
	// is used.
	Validator *validation.Validator
	// Registry holds the operations loaded by Load.
	//
	// If Registry is nil, the engine uses a private registry.
	Registry *descriptor.Registry
	// Config holds the process-wide switches.
	Config Config
	// Logger receives diagnostics, such as response cache failures.
	//
	// If Logger is nil, slog.Default() is used.
	Logger *slog.Logger
	// Clock is the time source for call timing, retry waits and cache
	// expiration.
	//
	// If Clock is nil, the wall clock is used.
	Clock clock.Clock

	pipelines sync.Map

	validatorOnce    sync.Once
	defaultValidator *validation.Validator

	registry descriptor.Registry
}

// Invoke calls operation op with argument values args, and returns the
// materialized result.
//
// Every error returned is an *apierr.Error. Its Kind tells the stage
// that failed: apierr.Config or apierr.Validation before anything is
// sent, apierr.Request if a request hook failed, apierr.Transport if no
// response could be obtained, apierr.Response if a response hook
// produced an error, and apierr.UnsupportedResponse if no response hook
// produced a value of the declared return type.
//
// If op returns an io.ReadCloser or io.Reader, the returned stream
// must be closed by the caller, which also releases the cancellation
// resources of the call.
func (eng *Engine) Invoke(ctx context.Context, op *descriptor.Operation, args []interface{}) (interface{}, error) {
	if ctx == nil {
		panic("apix: nil context")
	}
	if op == nil {
		panic("apix: nil operation")
	}
	return eng.pipeline(op).execute(ctx, eng, args)
}

// Load returns the operation built from md, building it only on the
// first load of md.Name. See descriptor.Registry.
//
// Unless md.Constraints is set, parameter constraints are checked
// against the engine's validator, so custom tags registered on it are
// accepted.
func (eng *Engine) Load(md descriptor.Metadata) (*descriptor.Operation, error) {
	if md.Constraints == nil {
		md.Constraints = eng.validator()
	}
	return eng.operations().Load(md)
}

// CloseIdleConnections invokes the same method on the engine's
// underlying HTTPDoer.
//
// If the HTTPDoer has no CloseIdleConnections method, this method does
// nothing.
func (eng *Engine) CloseIdleConnections() {
	if ic, ok := eng.doer().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (eng *Engine) doer() HTTPDoer {
	if eng.HTTPDoer == nil {
		return http.DefaultClient
	}

	return eng.HTTPDoer
}

func (eng *Engine) retryPolicy() retry.Policy {
	if eng.RetryPolicy == nil {
		return retry.Never
	}

	return eng.RetryPolicy
}

func (eng *Engine) timeoutPolicy() timeout.Policy {
	if eng.TimeoutPolicy == nil {
		return timeout.Infinite
	}

	return eng.TimeoutPolicy
}

func (eng *Engine) handlers() *HandlerGroup {
	if eng.Handlers == nil {
		return &emptyHandlers
	}

	return eng.Handlers
}

func (eng *Engine) logger() *slog.Logger {
	if eng.Logger == nil {
		return slog.Default()
	}

	return eng.Logger
}

func (eng *Engine) clock() clock.Clock {
	if eng.Clock == nil {
		return wallClock
	}

	return eng.Clock
}

var wallClock = clock.New()

func (eng *Engine) validator() *validation.Validator {
	if eng.Validator != nil {
		return eng.Validator
	}

	eng.validatorOnce.Do(func() {
		eng.defaultValidator = validation.New(eng.Config.ValidateNested)
	})
	return eng.defaultValidator
}

func (eng *Engine) operations() *descriptor.Registry {
	if eng.Registry == nil {
		return &eng.registry
	}

	return eng.Registry
}
