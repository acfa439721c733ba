// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOperation string

func (op testOperation) Name() string { return string(op) }

func (op testOperation) ResultType() reflect.Type { return reflect.TypeOf("") }

func TestNewCall(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		assert.PanicsWithValue(t, nilCtxMsg, func() {
			//lint:ignore SA1012 testing nil context
			NewCall(nil, testOperation("op"), nil) //nolint:staticcheck
		})
	})
	t.Run("normal", func(t *testing.T) {
		ctx := context.Background()
		args := []interface{}{1, "two"}
		c := NewCall(ctx, testOperation("op"), args)
		require.NotNil(t, c.Plan)
		assert.Equal(t, "op", c.Operation.Name())
		assert.Equal(t, args, c.Args)
		assert.Same(t, ctx, c.Context())
		assert.Empty(t, c.Sources())
	})
	t.Run("zero value context", func(t *testing.T) {
		c := &Call{}
		assert.Equal(t, context.Background(), c.Context())
	})
}

func TestCall_Cancellation(t *testing.T) {
	c := NewCall(context.Background(), testOperation("op"), nil)
	assert.Panics(t, func() {
		//lint:ignore SA1012 testing nil context
		c.AddCancellation(nil, nil) //nolint:staticcheck
	})
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2 := context.Background()
	released := 0
	c.AddCancellation(ctx1, func() {
		released++
		cancel1()
	})
	c.AddCancellation(ctx2, nil)
	require.Len(t, c.Sources(), 2)
	assert.Same(t, ctx1, c.Sources()[0].Ctx)
	assert.Same(t, ctx2, c.Sources()[1].Ctx)
	c.Release()
	c.Release()
	assert.Equal(t, 1, released)
	assert.Error(t, ctx1.Err())
}

func TestCall_Value(t *testing.T) {
	t.Run("different keys", func(t *testing.T) {
		c := &Call{}
		assert.Nil(t, c.Value("funky"))
		assert.Nil(t, c.Value(funKey{}))
		assert.Nil(t, c.Value(funkyKey{}))
		c.SetValue(funKey{}, "bar")
		c.SetValue(funkyKey{}, "baz")
		assert.Equal(t, "bar", c.Value(funKey{}))
		assert.Equal(t, "baz", c.Value(funkyKey{}))
	})
	t.Run("same key multiple times", func(t *testing.T) {
		c := &Call{}
		c.SetValue(funKey{}, "ham")
		c.SetValue(funkyKey{}, "eggs")
		c.SetValue(funKey{}, "spam")
		assert.Equal(t, "spam", c.Value(funKey{}))
		assert.Equal(t, "eggs", c.Value(funkyKey{}))
	})
}
