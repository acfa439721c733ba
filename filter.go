// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"log/slog"

	"github.com/gogama/apix/request"
	"github.com/google/uuid"
)

// RequestIDHeader is the request header carrying the request ID set by
// RequestIDHandler.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestIDHandler returns a handler, for the BeforeRequest event, that
// tags every call with a request ID. If the plan already carries a
// RequestIDHeader, its value is kept; otherwise a random UUID is sent.
//
//	handlers.PushBack(apix.BeforeRequest, apix.RequestIDHandler())
func RequestIDHandler() Handler {
	return HandlerFunc(func(_ Event, e *request.Execution) error {
		h := e.Call.Plan.Header
		id := h.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			h.Set(RequestIDHeader, id)
		}
		e.SetValue(requestIDKey{}, id)
		return nil
	})
}

// RequestID returns the request ID set on the call by RequestIDHandler,
// or the empty string if there is none.
func RequestID(e *request.Execution) string {
	id, _ := e.Value(requestIDKey{}).(string)
	return id
}

// LogHandler returns a handler, for the AfterCallEnd event, that logs
// one record per call to logger: at Info level if the call produced a
// value, and at Error level if it failed. If logger is nil,
// slog.Default() is used.
//
//	handlers.PushBack(apix.AfterCallEnd, apix.LogHandler(logger))
func LogHandler(logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return HandlerFunc(func(_ Event, e *request.Execution) error {
		attrs := make([]slog.Attr, 0, 9)
		if op := e.Call.Operation; op != nil {
			attrs = append(attrs, slog.String("op", op.Name()))
		}
		if e.Request != nil {
			attrs = append(attrs,
				slog.String("method", e.Request.Method),
				slog.String("url", e.Request.URL.String()))
		}
		if e.Response != nil {
			attrs = append(attrs, slog.Int("status", e.StatusCode()))
		}
		attrs = append(attrs,
			slog.Bool("cached", e.Cached),
			slog.Int("attempts", e.Attempt+1),
			slog.Duration("duration", e.Duration()))
		if id := RequestID(e); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}

		ctx := e.Call.Context()
		if _, err := e.Result(); e.ResultState() == request.ResultError {
			attrs = append(attrs, slog.Any("error", err))
			logger.LogAttrs(ctx, slog.LevelError, "apix call failed", attrs...)
		} else {
			logger.LogAttrs(ctx, slog.LevelInfo, "apix call", attrs...)
		}
		return nil
	})
}
