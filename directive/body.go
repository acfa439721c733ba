// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import (
	"errors"

	"github.com/gogama/apix/codec"
	"github.com/gogama/apix/request"
)

// Body encodes the argument with Codec and uses it as the request body,
// setting the Content-Type header to the codec's media type. A nil
// argument sends no body.
type Body struct {
	Codec codec.Codec
}

var (
	// JSONBody encodes the argument as JSON.
	JSONBody = Body{Codec: codec.JSON}
	// FormBody encodes the argument as an URL-encoded form.
	FormBody = Body{Codec: codec.Form}
)

func (Body) Name() string        { return "apix.Body" }
func (Body) Order() int          { return OrderDefault }
func (Body) AllowMultiple() bool { return false }
func (Body) Scopes() Scope       { return Parameter }

func (b Body) Check() error {
	if b.Codec == nil {
		return errors.New("nil codec")
	}
	return nil
}

func (b Body) OnParameter(c *request.Call, a request.Arg) error {
	if a.Value == nil {
		return nil
	}
	data, err := b.Codec.Marshal(a.Value)
	if err != nil {
		return err
	}
	c.Plan.Body = data
	c.Plan.Header.Set("Content-Type", b.Codec.MediaType())
	return nil
}

// RawBody sends the argument as the request body without encoding it.
// The argument may be nil, a string, a []byte, an io.Reader or an
// io.ReadCloser. If ContentType is not empty, it is sent as the
// Content-Type header.
type RawBody struct {
	ContentType string
}

func (RawBody) Name() string        { return "apix.Body" }
func (RawBody) Order() int          { return OrderDefault }
func (RawBody) AllowMultiple() bool { return false }
func (RawBody) Scopes() Scope       { return Parameter }

func (b RawBody) OnParameter(c *request.Call, a request.Arg) error {
	data, err := request.BodyBytes(a.Value)
	if err != nil {
		return err
	}
	c.Plan.Body = data
	if b.ContentType != "" && data != nil {
		c.Plan.Header.Set("Content-Type", b.ContentType)
	}
	return nil
}
