// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"context"
	"sync"

	"github.com/gogama/apix/request"
)

// link combines the ambient context of c with the cancellation sources
// registered on c into one context, which is done as soon as any of
// them is done. The returned release function frees the linkage and
// every source. It is safe to call more than once.
//
// Sources that can never be cancelled are ignored. When no source
// besides the ambient context can be cancelled, the ambient context is
// returned as is.
func link(c *request.Call) (context.Context, func()) {
	base := c.Context()
	var live []context.Context
	for _, src := range c.Sources() {
		if src.Ctx.Done() != nil {
			live = append(live, src.Ctx)
		}
	}
	if len(live) == 0 {
		return base, c.Release
	}

	ctx, cancel := context.WithCancelCause(base)
	stops := make([]func() bool, len(live))
	for i, src := range live {
		stops[i] = context.AfterFunc(src, func() {
			cancel(context.Cause(src))
		})
	}
	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			for _, stop := range stops {
				stop()
			}
			cancel(context.Canceled)
			c.Release()
		})
	}
}

// cause returns the reason ctx is done, preferring the cancellation
// cause so a source that timed out is reported as a timeout.
func cause(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return ctx.Err()
}
