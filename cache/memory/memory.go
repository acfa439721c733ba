// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package memory provides a bounded in-process cache.Provider backed by
// an LRU cache.
//
// Expired entries are dropped lazily when read. An optional sweeper
// goroutine also drops them periodically, which bounds memory held by
// entries that are never read again.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/apix/cache"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// DefaultMaxEntries is the capacity used when Config.MaxEntries is
// zero.
const DefaultMaxEntries = 1024

// Config configures a Provider.
type Config struct {
	// MaxEntries is the most entries kept before the least recently
	// used one is evicted. Zero means DefaultMaxEntries.
	MaxEntries int
	// Clock is the time source for expiration. Nil means the wall
	// clock.
	Clock clock.Clock
	// SweepInterval is the interval at which expired entries are
	// swept. Zero means no sweeper runs.
	SweepInterval time.Duration
}

// Provider is an in-memory cache.Provider. It is safe for concurrent
// use.
type Provider struct {
	mu    sync.Mutex
	lru   *lru.Cache[string, *cache.Entry]
	clock clock.Clock

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New returns a new Provider. If cfg.SweepInterval is positive, the
// provider starts a sweeper goroutine that runs until Close is called.
func New(cfg Config) (*Provider, error) {
	n := cfg.MaxEntries
	if n == 0 {
		n = DefaultMaxEntries
	}
	c, err := lru.New[string, *cache.Entry](n)
	if err != nil {
		return nil, errors.Wrap(err, "apix/cache/memory: create LRU cache")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	p := &Provider{
		lru:   c,
		clock: clk,
	}
	if cfg.SweepInterval > 0 {
		p.stop = make(chan struct{})
		p.done = make(chan struct{})
		go p.sweeper(cfg.SweepInterval)
	}
	return p, nil
}

// Name returns "memory".
func (p *Provider) Name() string { return "memory" }

// Get returns the entry stored under key, or nil if there is none or
// it has expired. It never returns an error.
func (p *Provider) Get(_ context.Context, key string) (*cache.Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.lru.Get(key)
	if !ok {
		return nil, nil
	}
	if e.Expired(p.clock.Now()) {
		p.lru.Remove(key)
		return nil, nil
	}
	return e, nil
}

// Set stores e under key. If e has no expiration and ttl is positive,
// a copy of e expiring ttl from now is stored instead.
func (p *Provider) Set(_ context.Context, key string, e *cache.Entry, ttl time.Duration) error {
	if e == nil {
		return errors.New("apix/cache/memory: nil entry")
	}
	if e.Expires.IsZero() && ttl > 0 {
		e2 := *e
		e2.Expires = p.clock.Now().Add(ttl)
		e = &e2
	}
	p.mu.Lock()
	p.lru.Add(key, e)
	p.mu.Unlock()
	return nil
}

// Len returns the number of entries held, including expired entries
// that have not been dropped yet.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lru.Len()
}

// Sweep drops every expired entry and returns how many were dropped.
func (p *Provider) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock.Now()
	n := 0
	for _, key := range p.lru.Keys() {
		if e, ok := p.lru.Peek(key); ok && e.Expired(now) {
			p.lru.Remove(key)
			n++
		}
	}
	return n
}

// Close stops the sweeper, if any, and drops every entry. It is safe to
// call Close more than once.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		if p.stop != nil {
			close(p.stop)
			<-p.done
		}
		p.mu.Lock()
		p.lru.Purge()
		p.mu.Unlock()
	})
	return nil
}

func (p *Provider) sweeper(interval time.Duration) {
	defer close(p.done)
	ticker := p.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.Sweep()
		case <-p.stop:
			return
		}
	}
}
