// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gogama/apix/codec"
	"github.com/gogama/apix/request"
	pkgerrors "github.com/pkg/errors"
)

// Decode decodes the response body into the declared return type with
// the first of Codecs that accepts the response media type. It also
// sets the Accept header of the request, unless another directive set
// it already.
//
// Decode leaves the result slot empty if no codec accepts the response,
// which the engine reports as an unsupported response. A 204 No Content
// response produces the zero value of the return type.
type Decode struct {
	Codecs []codec.Codec
}

var (
	// JSONReturn decodes JSON responses.
	JSONReturn = Decode{Codecs: []codec.Codec{codec.JSON}}
	// XMLReturn decodes XML responses.
	XMLReturn = Decode{Codecs: []codec.Codec{codec.XML}}
)

func (Decode) Name() string        { return "apix.Decode" }
func (Decode) Order() int          { return OrderDefault }
func (Decode) AllowMultiple() bool { return false }
func (Decode) Scopes() Scope       { return Return }

func (d Decode) Check() error {
	if len(d.Codecs) == 0 {
		return errors.New("no codecs")
	}
	for _, c := range d.Codecs {
		if c == nil {
			return errors.New("nil codec")
		}
	}
	return nil
}

func (d Decode) OnRequest(c *request.Call) error {
	if c.Plan.Header.Get("Accept") != "" {
		return nil
	}
	types := make([]string, len(d.Codecs))
	for i, cd := range d.Codecs {
		types[i] = cd.MediaType()
	}
	c.Plan.Header.Set("Accept", strings.Join(types, ", "))
	return nil
}

func (d Decode) OnResponse(e *request.Execution) error {
	if e.Response == nil || e.HasResult() || e.Call == nil || e.Call.Operation == nil {
		return nil
	}
	t := e.Call.Operation.ResultType()
	if t == nil {
		return nil
	}
	if e.StatusCode() == http.StatusNoContent {
		e.SetResult(reflect.Zero(t).Interface())
		return nil
	}
	cd := codec.Select(e.ContentType(), d.Codecs...)
	if cd == nil {
		return nil
	}
	ptr := reflect.New(t)
	if err := cd.Unmarshal(e.Body, ptr.Interface()); err != nil {
		return pkgerrors.Wrapf(err, "decode %s response into %s", codec.Describe(e.ContentType()), t)
	}
	e.SetResult(ptr.Elem().Interface())
	return nil
}

// EnsureSuccess stores a *StatusError in the result slot when the
// response status is not 2xx. It runs before decoding directives, so
// the error wins over any decoded value.
type EnsureSuccess struct{}

func (EnsureSuccess) Name() string        { return "apix.EnsureSuccess" }
func (EnsureSuccess) Order() int          { return OrderCheck }
func (EnsureSuccess) AllowMultiple() bool { return false }
func (EnsureSuccess) Scopes() Scope       { return Interface | Method | Return }

func (EnsureSuccess) OnResponse(e *request.Execution) error {
	if e.Response == nil {
		return nil
	}
	code := e.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}
	body := e.Body
	if len(body) > maxStatusErrorBody {
		body = body[:maxStatusErrorBody]
	}
	return &StatusError{
		StatusCode: code,
		Status:     e.Response.Status,
		Body:       append([]byte(nil), body...),
	}
}

const maxStatusErrorBody = 512

// A StatusError reports a response with an unexpected status code.
type StatusError struct {
	StatusCode int
	// Status is the status line text, for example "404 Not Found".
	Status string
	// Body holds up to the first 512 bytes of the response body.
	Body []byte
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "unexpected status " + status
}
