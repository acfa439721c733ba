// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"context"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gogama/apix/cache"
	"github.com/gogama/apix/descriptor"
	"github.com/gogama/apix/directive"
	"github.com/gogama/apix/request"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

const testBase = "https://api.example.com/v1"

// getUser describes GET users/{id} returning a JSON user.
func getUser(t *testing.T, method ...directive.Directive) *descriptor.Operation {
	return build(t, descriptor.Metadata{
		Name:      "users.get",
		Interface: []directive.Directive{directive.Base(testBase)},
		Method:    append([]directive.Directive{directive.Get("users/{id}")}, method...),
		Params: []descriptor.ParamMetadata{
			{
				Name:       "id",
				Type:       reflect.TypeOf(""),
				Constraint: "required",
				Directives: []directive.Directive{directive.PathParam{Placeholder: "id"}},
			},
		},
		Return: descriptor.ReturnMetadata{
			Type:       reflect.TypeOf(user{}),
			Directives: []directive.Directive{directive.EnsureSuccess{}, directive.JSONReturn},
		},
	})
}

// rawOp describes GET raw returning type t.
func rawOp(t *testing.T, rt reflect.Type, ret ...directive.Directive) *descriptor.Operation {
	return build(t, descriptor.Metadata{
		Name:      "raw",
		Interface: []directive.Directive{directive.Base(testBase)},
		Method:    []directive.Directive{directive.Get("raw")},
		Return:    descriptor.ReturnMetadata{Type: rt, Directives: ret},
	})
}

func build(t *testing.T, md descriptor.Metadata) *descriptor.Operation {
	op, err := descriptor.Build(md)
	require.NoError(t, err)
	return op
}

func response(status int, contentType, body string) *http.Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func anyRequest() interface{} {
	return mock.AnythingOfType("*http.Request")
}

type mockHTTPDoer struct {
	mock.Mock
}

func newMockHTTPDoer(t *testing.T) *mockHTTPDoer {
	m := &mockHTTPDoer{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	err := args.Error(1)
	if resp, ok := args.Get(0).(*http.Response); ok {
		return resp, err
	}
	return nil, err
}

type mockHTTPDoerWithCloseIdleConnections struct {
	mockHTTPDoer
}

func newMockHTTPDoerWithCloseIdleConnections(t *testing.T) *mockHTTPDoerWithCloseIdleConnections {
	m := &mockHTTPDoerWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoerWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}

// doerFunc adapts a function to HTTPDoer.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

type mockRetryPolicy struct {
	mock.Mock
}

func newMockRetryPolicy(t *testing.T) *mockRetryPolicy {
	m := &mockRetryPolicy{}
	m.Test(t)
	return m
}

func (m *mockRetryPolicy) Decide(e *request.Execution) bool {
	args := m.Called(e)
	return args.Bool(0)
}

func (m *mockRetryPolicy) Wait(e *request.Execution) time.Duration {
	args := m.Called(e)
	return args.Get(0).(time.Duration)
}

type mockProvider struct {
	mock.Mock
}

func newMockProvider(t *testing.T) *mockProvider {
	m := &mockProvider{}
	m.Test(t)
	return m
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) Get(ctx context.Context, key string) (*cache.Entry, error) {
	args := m.Called(ctx, key)
	e, _ := args.Get(0).(*cache.Entry)
	return e, args.Error(1)
}

func (m *mockProvider) Set(ctx context.Context, key string, e *cache.Entry, ttl time.Duration) error {
	args := m.Called(ctx, key, e, ttl)
	return args.Error(0)
}

func (g *HandlerGroup) mock(evt Event) *mockHandler {
	var m *mockHandler
	if len(g.handlers) <= int(evt) || len(g.handlers[evt]) < 1 {
		m = &mockHandler{}
		g.PushBack(evt, m)
		return m
	}

	for _, h := range g.handlers[evt] {
		if m, ok := h.(*mockHandler); ok {
			return m
		}
	}

	m = &mockHandler{}
	g.PushBack(evt, m)
	return m
}

func (g *HandlerGroup) assertExpectations(t *testing.T) {
	if g.handlers == nil {
		return
	}

	for _, evt := range Events() {
		for _, h := range g.handlers[evt] {
			if m, ok := h.(*mockHandler); ok {
				m.AssertExpectations(t)
			}
		}
	}
}

type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Handle(evt Event, e *request.Execution) error {
	args := m.Called(evt, e)
	return args.Error(0)
}

type trace struct {
	calls []string
}

func (eng *Engine) addTraceHandlers() *trace {
	if eng.Handlers == nil {
		eng.Handlers = &HandlerGroup{}
	}
	tr := &trace{}
	h := HandlerFunc(func(evt Event, _ *request.Execution) error {
		tr.calls = append(tr.calls, evt.Name())
		return nil
	})
	for _, evt := range Events() {
		eng.Handlers.PushBack(evt, h)
	}
	return tr
}

func userOp(t *testing.T) *descriptor.Operation {
	return getUser(t)
}
