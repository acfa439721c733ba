// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

func response() *http.Response {
	return &http.Response{
		StatusCode: 200,
		Status:     "200 OK",
		Header:     http.Header{"Content-Type": {"application/json"}, "Etag": {`"v1"`}},
	}
}

func TestSnapshot(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		body := []byte(`{"id":"42"}`)
		orig := response()
		e, ok := Snapshot(orig, body, 0, epoch, time.Minute)
		require.True(t, ok)
		assert.Equal(t, epoch, e.Captured)
		assert.Equal(t, epoch.Add(time.Minute), e.Expires)

		body[0] = 'X'
		orig.Header.Set("Etag", "changed")

		req, _ := http.NewRequest("GET", "https://example.com/", nil)
		resp := e.Response(req)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "200 OK", resp.Status)
		assert.Equal(t, `"v1"`, resp.Header.Get("Etag"))
		assert.Same(t, req, resp.Request)
		got, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"id":"42"}`, string(got))
		assert.Equal(t, int64(len(got)), resp.ContentLength)

		resp.Header.Set("Etag", "mutated")
		again := e.Response(req)
		assert.Equal(t, `"v1"`, again.Header.Get("Etag"))
		got, _ = io.ReadAll(again.Body)
		assert.Equal(t, `{"id":"42"}`, string(got))
	})
	t.Run("limit", func(t *testing.T) {
		_, ok := Snapshot(response(), []byte(strings.Repeat("x", 11)), 10, epoch, time.Minute)
		assert.False(t, ok)
		_, ok = Snapshot(response(), []byte(strings.Repeat("x", 10)), 10, epoch, time.Minute)
		assert.True(t, ok)
	})
	t.Run("no ttl", func(t *testing.T) {
		e, ok := Snapshot(response(), nil, 0, epoch, 0)
		require.True(t, ok)
		assert.True(t, e.Expires.IsZero())
		assert.False(t, e.Expired(epoch.Add(24*365*time.Hour)))
	})
	t.Run("nil response", func(t *testing.T) {
		_, ok := Snapshot(nil, nil, 0, epoch, time.Minute)
		assert.False(t, ok)
	})
}

func TestEntry_Expired(t *testing.T) {
	e := &Entry{Expires: epoch}
	assert.False(t, e.Expired(epoch.Add(-time.Nanosecond)))
	assert.True(t, e.Expired(epoch))
	assert.True(t, e.Expired(epoch.Add(time.Second)))
}

func TestEntry_Response(t *testing.T) {
	e := &Entry{StatusCode: 404}
	resp := e.Response(nil)
	assert.Equal(t, "404 Not Found", resp.Status)
	assert.NotNil(t, resp.Header)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefaultKey(t *testing.T) {
	k1, err := DefaultKey("users.get", []interface{}{"42", true})
	require.NoError(t, err)
	k2, err := DefaultKey("users.get", []interface{}{"42", true})
	require.NoError(t, err)
	k3, err := DefaultKey("users.get", []interface{}{"43", true})
	require.NoError(t, err)
	k4, err := DefaultKey("users.list", []interface{}{"42", true})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.True(t, strings.HasPrefix(k1, "users.get#"))

	_, err = DefaultKey("op", []interface{}{make(chan int)})
	assert.Error(t, err)
}
