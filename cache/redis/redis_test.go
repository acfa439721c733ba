// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package redis

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/apix/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.EqualError(t, err, "apix/cache/redis: redis client is required")

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	defer client.Close()
	p, err := New(Config{Client: client})
	require.NoError(t, err)
	assert.Equal(t, "redis", p.Name())
	assert.Equal(t, DefaultKeyPrefix, p.keyPrefix)
}

func TestProvider_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	p, err := New(Config{Client: client})
	require.NoError(t, err)

	ctx := context.Background()
	e, err := p.Get(ctx, "k")
	assert.Nil(t, e)
	assert.Error(t, err)
	assert.Error(t, p.Set(ctx, "k", &cache.Entry{StatusCode: 200}, time.Minute))
	assert.EqualError(t, p.Set(ctx, "k", nil, time.Minute), "apix/cache/redis: nil entry")
}

func TestProvider(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   3,
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.FlushDB(ctx)

	mock := clock.NewMock()
	mock.Set(time.Now())
	p, err := New(Config{Client: client, KeyPrefix: "apix:test:", Clock: mock})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		resp := &http.Response{StatusCode: 201, Status: "201 Created", Header: http.Header{"Location": {"/users/42"}}}
		e, ok := cache.Snapshot(resp, []byte("created"), 0, mock.Now(), time.Hour)
		require.True(t, ok)
		require.NoError(t, p.Set(ctx, "users.create#1", e, time.Hour))

		got, err := p.Get(ctx, "users.create#1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 201, got.StatusCode)
		assert.Equal(t, "201 Created", got.Status)
		assert.Equal(t, "/users/42", got.Header.Get("Location"))
		assert.Equal(t, []byte("created"), got.Body)
		assert.True(t, e.Expires.Equal(got.Expires))

		ttl, err := client.TTL(ctx, "apix:test:users.create#1").Result()
		require.NoError(t, err)
		assert.True(t, ttl > 0 && ttl <= time.Hour)
	})
	t.Run("miss", func(t *testing.T) {
		got, err := p.Get(ctx, "absent")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
	t.Run("lazy expiry", func(t *testing.T) {
		e := &cache.Entry{StatusCode: 200, Captured: mock.Now()}
		require.NoError(t, p.Set(ctx, "short", e, time.Hour))
		mock.Add(2 * time.Hour)
		got, err := p.Get(ctx, "short")
		assert.NoError(t, err)
		assert.Nil(t, got)
		n, err := client.Exists(ctx, "apix:test:short").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
	t.Run("corrupt entry", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "apix:test:bad", "{", 0).Err())
		got, err := p.Get(ctx, "bad")
		assert.Nil(t, got)
		assert.Error(t, err)
	})
}
