// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package descriptor

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogama/apix/apierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LoadFunc(t *testing.T) {
	t.Run("concurrent first use builds once", func(t *testing.T) {
		var r Registry
		var calls int32
		start := make(chan struct{})
		discover := func() (Metadata, error) {
			atomic.AddInt32(&calls, 1)
			return userMetadata(), nil
		}
		const n = 50
		ops := make([]*Operation, n)
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(i int) {
				defer wg.Done()
				<-start
				op, err := r.LoadFunc("users.get", discover)
				assert.NoError(t, err)
				ops[i] = op
			}(i)
		}
		close(start)
		wg.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		require.NotNil(t, ops[0])
		for i := 1; i < n; i++ {
			assert.Same(t, ops[0], ops[i])
		}
		assert.Equal(t, 1, r.Len())
	})
	t.Run("discover error is cached", func(t *testing.T) {
		var r Registry
		var calls int
		cause := errors.New("no such method")
		discover := func() (Metadata, error) {
			calls++
			return Metadata{}, cause
		}
		_, err1 := r.LoadFunc("x", discover)
		_, err2 := r.LoadFunc("x", discover)
		assert.Equal(t, 1, calls)
		assert.Same(t, err1, err2)
		assert.True(t, apierr.IsKind(err1, apierr.Config))
		assert.ErrorIs(t, err1, cause)
		assert.EqualError(t, err1, "apix: config [x]: discover operation: no such method")
	})
	t.Run("build error is cached", func(t *testing.T) {
		var r Registry
		md := Metadata{Name: "bad", Return: ReturnMetadata{Type: reflect.TypeOf(func() {})}}
		op1, err1 := r.Load(md)
		op2, err2 := r.Load(md)
		assert.Nil(t, op1)
		assert.Nil(t, op2)
		require.Error(t, err1)
		assert.Same(t, err1, err2)
	})
	t.Run("name mismatch", func(t *testing.T) {
		var r Registry
		_, err := r.LoadFunc("a", func() (Metadata, error) {
			return Metadata{Name: "b", Return: ReturnMetadata{Type: reflect.TypeOf("")}}, nil
		})
		assert.EqualError(t, err, `apix: config [a]: discovered operation is named "b"`)
	})
	t.Run("later metadata ignored", func(t *testing.T) {
		var r Registry
		op1, err := r.Load(userMetadata())
		require.NoError(t, err)
		md := userMetadata()
		md.Return.Type = reflect.TypeOf("")
		op2, err := r.Load(md)
		require.NoError(t, err)
		assert.Same(t, op1, op2)
		assert.Equal(t, Deserialize, op2.Return().Kind)
	})
	t.Run("len counts failures", func(t *testing.T) {
		var r Registry
		_, _ = r.Load(userMetadata())
		_, _ = r.Load(Metadata{Name: "bad"})
		assert.Equal(t, 2, r.Len())
	})
	t.Run("nil discover", func(t *testing.T) {
		var r Registry
		assert.PanicsWithValue(t, "apix/descriptor: nil discover func", func() {
			_, _ = r.LoadFunc("x", nil)
		})
	})
}
