// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package descriptor

import (
	"github.com/gogama/apix/directive"
	"github.com/gogama/apix/request"
)

// rawReturn hands the response back in the shape of a raw return kind.
// Build appends it after the resolved return directives.
type rawReturn struct {
	kind Kind
}

func (rawReturn) Name() string            { return "apix.rawReturn" }
func (rawReturn) Order() int              { return directive.OrderLast }
func (rawReturn) AllowMultiple() bool     { return false }
func (rawReturn) Scopes() directive.Scope { return directive.Return }

func (r rawReturn) OnResponse(e *request.Execution) error {
	if e.Response == nil {
		return nil
	}
	switch r.kind {
	case RawText:
		e.SetResult(string(e.Body))
	case RawBytes:
		body := e.Body
		if body == nil {
			body = []byte{}
		}
		e.SetResult(body)
	case RawStream:
		e.SetResult(e.Response.Body)
	case RawResponse:
		e.SetResult(e.Response)
	}
	return nil
}
