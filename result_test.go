// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gogama/apix/apierr"
	"github.com/gogama/apix/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	op := rawOp(t, reflect.TypeOf(user{}))
	ret := op.Return()
	newExecution := func() *request.Execution {
		x := request.NewExecution(request.NewCall(context.Background(), op, nil))
		x.Response = response(200, "application/vnd.custom+json; v=2", "")
		return x
	}

	t.Run("value", func(t *testing.T) {
		x := newExecution()
		x.SetResult(user{ID: "1"})
		v, err := materialize(x, ret)
		require.NoError(t, err)
		assert.Equal(t, user{ID: "1"}, v)
	})
	t.Run("error", func(t *testing.T) {
		x := newExecution()
		cause := errors.New("hook failed")
		x.SetError(cause)
		v, err := materialize(x, ret)
		assert.Nil(t, v)
		var e *apierr.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, apierr.Response, e.Kind)
		assert.Same(t, cause, e.Err)
	})
	t.Run("rejected value", func(t *testing.T) {
		x := newExecution()
		x.SetResult(user{})
		x.Reject(apierr.New(apierr.Validation, "bad"))
		_, err := materialize(x, ret)
		var e *apierr.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, apierr.Response, e.Kind)
		assert.True(t, apierr.IsKind(e.Err, apierr.Validation))
	})
	t.Run("empty", func(t *testing.T) {
		x := newExecution()
		_, err := materialize(x, ret)
		var e *apierr.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, apierr.UnsupportedResponse, e.Kind)
		assert.Equal(t, reflect.TypeOf(user{}), e.Type)
		assert.Equal(t, "application/vnd.custom+json", e.Media)
	})
	t.Run("empty without content type", func(t *testing.T) {
		x := newExecution()
		x.Response.Header.Del("Content-Type")
		_, err := materialize(x, ret)
		assert.EqualError(t, err, "apix: unsupported_response: cannot produce apix.user from unknown response")
	})
}
