// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/apix/apierr"
	"github.com/gogama/apix/request"
)

// Timeout bounds the whole call, including retries, to Duration. It is
// registered as a cancellation source of the call. A Duration above the
// engine's maximum timeout fails the call with a configuration error
// before anything is sent.
type Timeout struct {
	Duration time.Duration
	// Clock is the time source of the deadline. Nil means the wall
	// clock.
	Clock clock.Clock
}

func (Timeout) Name() string        { return "apix.Timeout" }
func (Timeout) Order() int          { return OrderDefault }
func (Timeout) AllowMultiple() bool { return false }
func (Timeout) Scopes() Scope       { return Interface | Method }

func (t Timeout) Check() error {
	if t.Duration <= 0 {
		return fmt.Errorf("timeout %s is not positive", t.Duration)
	}
	return nil
}

func (t Timeout) OnRequest(c *request.Call) error {
	return applyTimeout(c, t.Duration, t.Clock)
}

// TimeoutParam bounds the call to the time.Duration or *time.Duration
// argument. A nil or zero argument sets no timeout.
type TimeoutParam struct {
	Clock clock.Clock
}

func (TimeoutParam) Name() string        { return "apix.TimeoutParam" }
func (TimeoutParam) Order() int          { return OrderDefault }
func (TimeoutParam) AllowMultiple() bool { return false }
func (TimeoutParam) Scopes() Scope       { return Parameter }

func (t TimeoutParam) OnParameter(c *request.Call, a request.Arg) error {
	var d time.Duration
	switch x := a.Value.(type) {
	case nil:
		return nil
	case time.Duration:
		d = x
	case *time.Duration:
		if x == nil {
			return nil
		}
		d = *x
	default:
		return fmt.Errorf("timeout argument has type %T, want time.Duration", a.Value)
	}
	if d == 0 {
		return nil
	}
	if d < 0 {
		return apierr.New(apierr.Config, "timeout %s is not positive", d)
	}
	return applyTimeout(c, d, t.Clock)
}

// CancelParam registers a context.Context argument as an additional
// cancellation source of the call. A nil argument is ignored.
type CancelParam struct{}

func (CancelParam) Name() string        { return "apix.CancelParam" }
func (CancelParam) Order() int          { return OrderDefault }
func (CancelParam) AllowMultiple() bool { return false }
func (CancelParam) Scopes() Scope       { return Parameter }

func (CancelParam) OnParameter(c *request.Call, a request.Arg) error {
	switch x := a.Value.(type) {
	case nil:
		return nil
	case context.Context:
		c.AddCancellation(x, nil)
		return nil
	default:
		return fmt.Errorf("cancellation argument has type %T, want context.Context", a.Value)
	}
}

func applyTimeout(c *request.Call, d time.Duration, clk clock.Clock) error {
	if c.MaxTimeout > 0 && d > c.MaxTimeout {
		return apierr.New(apierr.Config, "timeout %s exceeds maximum %s", d, c.MaxTimeout)
	}
	if clk == nil {
		clk = clock.New()
	}
	ctx, cancel := clk.WithTimeout(context.Background(), d)
	c.AddCancellation(ctx, cancel)
	return nil
}
