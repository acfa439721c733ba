// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import (
	"fmt"
	"time"

	"github.com/gogama/apix/request"
)

// A CachePolicy says whether the response cache takes part in one side
// of a call. The zero value is Include.
type CachePolicy int

const (
	// Include consults (for reads) or updates (for writes) the cache.
	Include CachePolicy = iota
	// Exclude skips the cache.
	Exclude
)

func (p CachePolicy) String() string {
	switch p {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return fmt.Sprintf("CachePolicy(%d)", int(p))
	}
}

// Cache enables the response cache for an operation. It has no hooks
// of its own: the engine reads it from the operation's return
// descriptor. A return-level Cache wins over an operation-level one.
type Cache struct {
	// TTL is how long a stored response stays fresh.
	TTL time.Duration
	// Read controls whether a fresh stored response is served instead
	// of sending the request.
	Read CachePolicy
	// Write controls whether a network response is stored.
	Write CachePolicy
	// Key optionally computes the argument part of the cache key. The
	// engine prefixes it with the operation name. If Key is nil, a
	// hash of the arguments is used.
	Key func(c *request.Call) (string, error)
}

func (Cache) Name() string        { return "apix.Cache" }
func (Cache) Order() int          { return OrderDefault }
func (Cache) AllowMultiple() bool { return false }
func (Cache) Scopes() Scope       { return Interface | Method | Return }

func (c Cache) Check() error {
	if c.TTL <= 0 {
		return fmt.Errorf("cache TTL %s is not positive", c.TTL)
	}
	if c.Read != Include && c.Read != Exclude {
		return fmt.Errorf("invalid read policy %s", c.Read)
	}
	if c.Write != Include && c.Write != Exclude {
		return fmt.Errorf("invalid write policy %s", c.Write)
	}
	return nil
}
