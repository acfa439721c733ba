// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/apix/request"
	"github.com/stretchr/testify/assert"
)

func TestDefaultDecider(t *testing.T) {
	t.Run("retryable status codes", func(t *testing.T) {
		for _, code := range []int{429, 502, 503, 504} {
			t.Run(fmt.Sprintf("code=%d", code), func(t *testing.T) {
				e := execution(http.MethodGet)
				e.Response = &http.Response{StatusCode: code}
				for j := 0; j < DefaultTimes; j++ {
					e.Attempt = j
					assert.True(t, DefaultDecider(e), "attempt %d", j)
				}
				e.Attempt = DefaultTimes
				assert.False(t, DefaultDecider(e), "attempt %d", e.Attempt)
			})
		}
	})
	t.Run("non-retryable status codes", func(t *testing.T) {
		for _, code := range []int{200, 201, 204, 400, 401, 403, 404, 500} {
			t.Run(fmt.Sprintf("code=%d", code), func(t *testing.T) {
				e := execution(http.MethodGet)
				e.Response = &http.Response{StatusCode: code}
				assert.False(t, DefaultDecider(e))
			})
		}
	})
	t.Run("transient errors", func(t *testing.T) {
		for i, te := range transientErrs {
			t.Run(fmt.Sprintf("transientErrs[%d]=%v", i, te), func(t *testing.T) {
				e := execution(http.MethodPut)
				e.Err = te
				assert.True(t, DefaultDecider(e))
				e.Attempt = DefaultTimes
				assert.False(t, DefaultDecider(e))
			})
		}
	})
	t.Run("non-transient errors", func(t *testing.T) {
		for i, nte := range nonTransientErrs {
			t.Run(fmt.Sprintf("nonTransientErrs[%d]=%v", i, nte), func(t *testing.T) {
				e := execution(http.MethodGet)
				e.Err = nte
				assert.False(t, DefaultDecider(e))
			})
		}
	})
	t.Run("non-idempotent method", func(t *testing.T) {
		e := execution(http.MethodPost)
		e.Response = &http.Response{StatusCode: 503}
		assert.False(t, DefaultDecider(e))
	})
}

func TestTransientErr(t *testing.T) {
	e := &request.Execution{}
	for i, te := range transientErrs {
		t.Run(fmt.Sprintf("transientErrs[%d]=%v", i, te), func(t *testing.T) {
			e.Err = te
			assert.True(t, TransientErr(e))
			e.Err = &url.Error{Err: te}
			assert.True(t, TransientErr(e))
		})
	}
	for j, nte := range nonTransientErrs {
		t.Run(fmt.Sprintf("nonTransientErrs[%d]=%v", j, nte), func(t *testing.T) {
			e.Err = nte
			assert.False(t, TransientErr(e))
			e.Err = &url.Error{Err: nte}
			assert.False(t, TransientErr(e))
		})
	}
}

func TestIdempotent(t *testing.T) {
	testCases := []struct {
		method string
		want   bool
	}{
		{"", true},
		{http.MethodGet, true},
		{http.MethodHead, true},
		{http.MethodOptions, true},
		{http.MethodTrace, true},
		{http.MethodPut, true},
		{http.MethodDelete, true},
		{http.MethodPost, false},
		{http.MethodPatch, false},
		{"PURGE", false},
	}
	for _, testCase := range testCases {
		t.Run("plan "+testCase.method, func(t *testing.T) {
			assert.Equal(t, testCase.want, Idempotent(execution(testCase.method)))
		})
	}
	t.Run("request wins over plan", func(t *testing.T) {
		e := execution(http.MethodGet)
		e.Request = &http.Request{Method: http.MethodPost}
		assert.False(t, Idempotent(e))
	})
	t.Run("no call", func(t *testing.T) {
		assert.True(t, Idempotent(&request.Execution{}))
	})
}

func TestDeciderAnd(t *testing.T) {
	yes := DeciderFunc(func(_ *request.Execution) bool { return true })
	no := DeciderFunc(func(_ *request.Execution) bool { return false })
	panicky := DeciderFunc(func(_ *request.Execution) bool { panic("evaluated") })
	e := &request.Execution{}
	assert.True(t, yes.And(yes)(e))
	assert.False(t, yes.And(no)(e))
	assert.False(t, no.And(yes)(e))
	assert.False(t, no.And(no)(e))
	assert.NotPanics(t, func() { no.And(panicky)(e) })
	assert.True(t, yes.Decide(e))
}

func TestDeciderOr(t *testing.T) {
	yes := DeciderFunc(func(_ *request.Execution) bool { return true })
	no := DeciderFunc(func(_ *request.Execution) bool { return false })
	panicky := DeciderFunc(func(_ *request.Execution) bool { panic("evaluated") })
	e := &request.Execution{}
	assert.True(t, yes.Or(yes)(e))
	assert.True(t, yes.Or(no)(e))
	assert.True(t, no.Or(yes)(e))
	assert.False(t, no.Or(no)(e))
	assert.NotPanics(t, func() { yes.Or(panicky)(e) })
}

func TestTimes(t *testing.T) {
	zero := Times(0)
	assert.False(t, zero(&request.Execution{}))
	one := Times(1)
	assert.True(t, one(&request.Execution{}))
	assert.False(t, one(&request.Execution{Attempt: 1}))
	two := Times(2)
	assert.True(t, two(&request.Execution{Attempt: 1}))
	assert.False(t, two(&request.Execution{Attempt: 2}))
}

func TestBefore(t *testing.T) {
	e := request.Execution{Start: time.Now(), Attempt: 20}
	before := Before(time.Minute)
	assert.True(t, before(&e))
	e.End = e.Start.Add(2 * time.Minute)
	assert.False(t, before(&e))
}

func TestStatusCode(t *testing.T) {
	empty := StatusCode()
	assert.False(t, empty(&request.Execution{}))
	one := StatusCode(602)
	assert.False(t, one(&request.Execution{}))
	r := http.Response{}
	e := request.Execution{Response: &r}
	assert.False(t, empty(&e))
	assert.False(t, one(&e))
	r.StatusCode = 602
	assert.True(t, one(&e))
	two := StatusCode(509, 602)
	assert.True(t, two(&e))
	r.StatusCode = 509
	assert.True(t, two(&e))
	r.StatusCode = 508
	assert.False(t, two(&e))
	zero := StatusCode(0)
	assert.False(t, zero(&request.Execution{}), "no response never matches")
}

func execution(method string) *request.Execution {
	c := request.NewCall(context.Background(), nil, nil)
	c.Plan.Method = method
	return request.NewExecution(c)
}

var (
	transientErrs = []error{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ETIMEDOUT,
		context.DeadlineExceeded,
	}
	nonTransientErrs = []error{
		nil,
		errors.New("ain't transient"),
		syscall.EHOSTUNREACH,
		syscall.ENETDOWN,
		context.Canceled,
	}
)
