// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/gogama/apix/apierr"
	"github.com/gogama/apix/cache"
	"github.com/gogama/apix/descriptor"
	"github.com/gogama/apix/directive"
	"github.com/gogama/apix/request"
	"github.com/gogama/apix/timeout"
)

// transport obtains the response of x, from the response cache when
// the operation allows it, or otherwise by sending the request. ctx is
// the linked cancellation context of the call.
//
// On success, x.Response is set. Unless the operation returns a raw
// stream, x.Body holds the complete response body and x.Response.Body
// reads it again from the start.
func (eng *Engine) transport(ctx context.Context, x *request.Execution, ret *descriptor.Return, handlers *HandlerGroup) error {
	c := x.Call
	if _, err := c.Plan.URL(); errors.Is(err, request.ErrNoBase) {
		return apierr.New(apierr.Config, "no base destination configured")
	} else if err != nil {
		return apierr.Wrap(apierr.Request, err, "resolve destination")
	}

	// A raw stream hands the live body to the caller, so it bypasses the
	// cache in both directions.
	stream := ret.Kind == descriptor.RawStream
	provider, cc := eng.Cache, ret.Cache
	if provider != nil && cc != nil && !stream {
		x.CacheKey = eng.cacheKey(c, cc)
	}
	if x.CacheKey != "" && cc.Read == directive.Include {
		if hit, err := eng.cacheRead(ctx, x, provider, handlers); hit || err != nil {
			return err
		}
	}

	if err := eng.send(ctx, x, stream, handlers); err != nil {
		return err
	}

	if x.CacheKey != "" && cc.Write == directive.Include {
		eng.cacheWrite(ctx, x, provider, cc)
	}
	return nil
}

// send runs the attempt loop, following the retry and timeout
// policies.
func (eng *Engine) send(ctx context.Context, x *request.Execution, stream bool, handlers *HandlerGroup) error {
	doer := eng.doer()
	retryPolicy := eng.retryPolicy()
	timeoutPolicy := eng.timeoutPolicy()

RetryLoop:
	for {
		if err := sendAndReceive(ctx, x, doer, timeoutPolicy, stream, handlers); err != nil {
			return err
		}
		if x.Timeout() {
			x.AttemptTimeouts++
			if err := handlers.run(AfterAttemptTimeout, x); err != nil {
				discard(x)
				return apierr.As(err, apierr.Request)
			}
		}
		if err := handlers.run(AfterAttempt, x); err != nil {
			discard(x)
			return apierr.As(err, apierr.Request)
		}
		if ctx.Err() != nil || !retryPolicy.Decide(x) {
			break
		}
		wait := retryPolicy.Wait(x)
		timer := eng.clock().Timer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			discard(x)
			x.Err = urlErrorWrap(x, cause(ctx))
			break RetryLoop
		}
		discard(x)
		x.Response = nil
		x.Err = nil
		x.Body = nil
		x.Attempt++
	}

	if x.Err != nil {
		discard(x)
		return apierr.Wrap(apierr.Transport, x.Err, "")
	}
	return nil
}

func sendAndReceive(ctx context.Context, x *request.Execution, doer HTTPDoer, timeoutPolicy timeout.Policy, stream bool, handlers *HandlerGroup) error {
	attemptCtx, cancel := ctx, context.CancelFunc(func() {})
	if d := timeoutPolicy.Timeout(x); d > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, d)
	}
	req, err := x.Call.Plan.ToRequest(attemptCtx)
	if err != nil {
		cancel()
		return apierr.Wrap(apierr.Request, err, "build request")
	}
	x.Request = req
	if err = handlers.run(BeforeSend, x); err != nil {
		cancel()
		return apierr.As(err, apierr.Request)
	}
	resp, err := doer.Do(x.Request)
	if err != nil {
		cancel()
		x.Err = urlErrorWrap(x, withCause(ctx, err))
		return nil
	}
	x.Response = resp
	if stream {
		resp.Body = &releaseCloser{ReadCloser: resp.Body, release: cancel}
		return nil
	}
	defer cancel()
	readBody(ctx, x)
	return nil
}

func readBody(ctx context.Context, x *request.Execution) {
	body := x.Response.Body
	defer func() {
		_ = body.Close()
	}()
	var err error
	x.Body, err = io.ReadAll(body)
	if err != nil {
		x.Err = urlErrorWrap(x, withCause(ctx, err))
		x.Body = nil
	}
	x.Response.Body = io.NopCloser(bytes.NewReader(x.Body))
}

// discard closes the response body of x, if any, so the connection and
// the attempt resources are released.
func discard(x *request.Execution) {
	if x.Response != nil && x.Response.Body != nil {
		_ = x.Response.Body.Close()
	}
}

func (eng *Engine) cacheKey(c *request.Call, cc *directive.Cache) string {
	name := c.Operation.Name()
	var key string
	var err error
	if cc.Key != nil {
		key, err = cc.Key(c)
		key = name + "#" + key
	} else {
		key, err = cache.DefaultKey(name, c.Args)
	}
	if err != nil {
		eng.logger().Warn("apix: cache key failed, response cache skipped", "op", name, "error", err)
		return ""
	}
	return key
}

func (eng *Engine) cacheRead(ctx context.Context, x *request.Execution, provider cache.Provider, handlers *HandlerGroup) (bool, error) {
	entry, err := provider.Get(ctx, x.CacheKey)
	if err != nil {
		eng.logger().Warn("apix: cache read failed", "provider", provider.Name(), "key", x.CacheKey, "error", err)
		return false, nil
	}
	if entry == nil || entry.Expired(eng.clock().Now()) {
		return false, nil
	}
	req, err := x.Call.Plan.ToRequest(ctx)
	if err != nil {
		return true, apierr.Wrap(apierr.Request, err, "build request")
	}
	x.Request = req
	x.Response = entry.Response(req)
	x.Body = append([]byte(nil), entry.Body...)
	x.Response.Body = io.NopCloser(bytes.NewReader(x.Body))
	x.Cached = true
	if err = handlers.runAll(AfterCacheHit, x); err != nil {
		x.SetError(err)
	}
	return true, nil
}

func (eng *Engine) cacheWrite(ctx context.Context, x *request.Execution, provider cache.Provider, cc *directive.Cache) {
	code := x.StatusCode()
	if code < 200 || code > 299 {
		return
	}
	entry, ok := cache.Snapshot(x.Response, x.Body, eng.Config.cacheBodyLimit(), eng.clock().Now(), cc.TTL)
	if !ok {
		eng.logger().Debug("apix: response too large to cache", "key", x.CacheKey, "size", len(x.Body))
		return
	}
	if err := provider.Set(ctx, x.CacheKey, entry, cc.TTL); err != nil {
		eng.logger().Warn("apix: cache write failed", "provider", provider.Name(), "key", x.CacheKey, "error", err)
	}
}

// A releaseCloser calls release once the body it wraps is closed.
type releaseCloser struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (rc *releaseCloser) Close() error {
	err := rc.ReadCloser.Close()
	rc.once.Do(rc.release)
	return err
}

// withCause replaces a bare cancellation error with the cause recorded
// on ctx, so that a call cancelled because one of its sources timed out
// reports a timeout.
func withCause(ctx context.Context, err error) error {
	if !errors.Is(err, context.Canceled) {
		return err
	}
	c := cause(ctx)
	if c == nil || c == context.Canceled {
		return err
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: ue.URL, Err: c}
	}
	return c
}

func urlErrorWrap(x *request.Execution, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	u := ""
	method := ""
	if x.Request != nil {
		u = x.Request.URL.String()
		method = x.Request.Method
	}
	return &url.Error{
		Op:  urlErrorOp(method),
		URL: u,
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
