// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/apix/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDefaultPolicy(t *testing.T) {
	t.Run("Decider", func(t *testing.T) {
		s := []int{429, 502, 503, 504}
		for i := 0; i < DefaultTimes; i++ {
			e := execution(http.MethodGet)
			e.Attempt = i
			e.Response = &http.Response{StatusCode: s[i%len(s)]}
			assert.True(t, DefaultPolicy.Decide(e))
			e = execution(http.MethodGet)
			e.Attempt = i
			e.Err = syscall.ECONNRESET
			assert.True(t, DefaultPolicy.Decide(e))
		}
		e := execution(http.MethodGet)
		e.Attempt = DefaultTimes
		e.Err = syscall.ETIMEDOUT
		assert.False(t, DefaultPolicy.Decide(e))
	})
	t.Run("Waiter", func(t *testing.T) {
		m := []int{50, 100, 200, 400, 800, 1000}
		total := time.Duration(0)
		for i, max := range m {
			w := DefaultPolicy.Wait(&request.Execution{Attempt: i})
			total += w
			assert.GreaterOrEqual(t, w, time.Duration(0))
			assert.LessOrEqual(t, w, time.Duration(max)*time.Millisecond)
		}
		assert.Greater(t, total, time.Duration(0))
	})
}

func TestNever(t *testing.T) {
	assert.False(t, Never.Decide(&request.Execution{}))
	assert.False(t, Never.Decide(&request.Execution{Err: syscall.ECONNRESET}))
	assert.Equal(t, time.Duration(0), Never.Wait(&request.Execution{}))
}

func TestNewPolicy(t *testing.T) {
	t.Run("bad args", func(t *testing.T) {
		m := &mockPolicy{}
		assert.PanicsWithValue(t, "apix/retry: nil decider", func() { NewPolicy(nil, m) })
		assert.PanicsWithValue(t, "apix/retry: nil waiter", func() { NewPolicy(m, nil) })
	})
	t.Run("normal", func(t *testing.T) {
		m := &mockPolicy{}
		e := &request.Execution{Attempt: 2}
		m.On("Decide", e).Return(true).Once()
		m.On("Wait", e).Return(time.Second).Once()
		p := NewPolicy(m, m)
		assert.True(t, p.Decide(e))
		assert.Equal(t, time.Second, p.Wait(e))
		m.AssertExpectations(t)
	})
}

type mockPolicy struct {
	mock.Mock
}

func (m *mockPolicy) Decide(e *request.Execution) bool {
	args := m.Called(e)
	return args.Bool(0)
}

func (m *mockPolicy) Wait(e *request.Execution) time.Duration {
	args := m.Called(e)
	return args.Get(0).(time.Duration)
}
