// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package redis provides a cache.Provider backed by Redis, for sharing
// cached responses between processes.
//
// Entries are stored as JSON under a configurable key prefix, with the
// cache TTL as the Redis key expiry.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/apix/cache"
	"github.com/joeshaw/envdecode"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix is the key prefix used when Config.KeyPrefix is
// empty.
const DefaultKeyPrefix = "apix:cache:"

// Config configures a Provider.
type Config struct {
	// Client is the Redis client. It is required.
	Client redis.Cmdable
	// KeyPrefix is prepended to every cache key. Empty means
	// DefaultKeyPrefix.
	KeyPrefix string
	// Clock is the time source for expiration. Nil means the wall
	// clock.
	Clock clock.Clock
}

// EnvConfig holds the settings NewFromEnv reads from the environment.
type EnvConfig struct {
	// Addr is the Redis address. ENV: APIX_REDIS_ADDR
	Addr string `env:"APIX_REDIS_ADDR,default=localhost:6379"`
	// DB is the Redis database number. ENV: APIX_REDIS_DB
	DB int `env:"APIX_REDIS_DB,default=0"`
	// KeyPrefix is the key prefix. ENV: APIX_REDIS_KEY_PREFIX
	KeyPrefix string `env:"APIX_REDIS_KEY_PREFIX,default=apix:cache:"`
}

// Provider is a Redis cache.Provider. It is safe for concurrent use.
type Provider struct {
	client    redis.Cmdable
	keyPrefix string
	clock     clock.Clock
}

// New returns a new Provider.
func New(cfg Config) (*Provider, error) {
	if cfg.Client == nil {
		return nil, errors.New("apix/cache/redis: redis client is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Provider{
		client:    cfg.Client,
		keyPrefix: cfg.KeyPrefix,
		clock:     cfg.Clock,
	}, nil
}

// NewFromEnv returns a Provider using a new Redis client configured
// from the environment (see EnvConfig). It fails if Redis cannot be
// reached.
func NewFromEnv(ctx context.Context) (*Provider, *redis.Client, error) {
	var env EnvConfig
	// Defaults come from the struct tags, so a bare environment is fine.
	_ = envdecode.Decode(&env)
	client := redis.NewClient(&redis.Options{Addr: env.Addr, DB: env.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Wrap(err, "apix/cache/redis: ping")
	}
	p, err := New(Config{Client: client, KeyPrefix: env.KeyPrefix})
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return p, client, nil
}

// Name returns "redis".
func (p *Provider) Name() string { return "redis" }

// Get returns the entry stored under key, or nil if there is none or
// it has expired.
func (p *Provider) Get(ctx context.Context, key string) (*cache.Entry, error) {
	redisKey := p.keyPrefix + key
	data, err := p.client.Get(ctx, redisKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "get key %s", redisKey)
	}
	var e cache.Entry
	if err = json.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrapf(err, "decode entry %s", redisKey)
	}
	if e.Expired(p.clock.Now()) {
		p.client.Del(ctx, redisKey)
		return nil, nil
	}
	return &e, nil
}

// Set stores e under key, with ttl as the Redis expiry. A non-positive
// ttl stores the entry without expiry.
func (p *Provider) Set(ctx context.Context, key string, e *cache.Entry, ttl time.Duration) error {
	if e == nil {
		return errors.New("apix/cache/redis: nil entry")
	}
	if e.Expires.IsZero() && ttl > 0 {
		e2 := *e
		e2.Expires = p.clock.Now().Add(ttl)
		e = &e2
	}
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encode entry")
	}
	if ttl < 0 {
		ttl = 0
	}
	redisKey := p.keyPrefix + key
	if err = p.client.Set(ctx, redisKey, data, ttl).Err(); err != nil {
		return errors.Wrapf(err, "set key %s", redisKey)
	}
	return nil
}
