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
	"time"

	"github.com/gogama/apix/codec"
	"github.com/gogama/apix/request"
)

// Header sets a fixed request header. Any values previously set for the
// same key are replaced, so a method-level Header overrides an
// interface-level Header for the same key.
type Header struct {
	Key    string
	Values []string
}

// SetHeader returns a Header directive.
func SetHeader(key string, values ...string) Header {
	return Header{Key: key, Values: values}
}

func (Header) Name() string        { return "apix.Header" }
func (Header) Order() int          { return OrderDefault }
func (Header) AllowMultiple() bool { return true }
func (Header) Scopes() Scope       { return Interface | Method }

func (h Header) Check() error {
	return checkName("header key", h.Key)
}

func (h Header) OnRequest(c *request.Call) error {
	setHeader(c.Plan.Header, h.Key, h.Values)
	return nil
}

// HeaderParam sets request header Key from the argument. A nil argument
// leaves the header untouched. Slices produce one header value per
// element.
type HeaderParam struct {
	Key string
}

func (HeaderParam) Name() string        { return "apix.HeaderParam" }
func (HeaderParam) Order() int          { return OrderDefault }
func (HeaderParam) AllowMultiple() bool { return true }
func (HeaderParam) Scopes() Scope       { return Parameter }

func (h HeaderParam) Check() error {
	return checkName("header key", h.Key)
}

func (h HeaderParam) OnParameter(c *request.Call, a request.Arg) error {
	values := formatValues(a.Value)
	if values == nil {
		return nil
	}
	setHeader(c.Plan.Header, h.Key, values)
	return nil
}

// Cookie adds a fixed cookie to the request. All cookies share one
// Cookie header.
type Cookie struct {
	Key   string
	Value string
}

func (Cookie) Name() string        { return "apix.Cookie" }
func (Cookie) Order() int          { return OrderDefault }
func (Cookie) AllowMultiple() bool { return true }
func (Cookie) Scopes() Scope       { return Interface | Method }

func (k Cookie) Check() error {
	return checkName("cookie name", k.Key)
}

func (k Cookie) OnRequest(c *request.Call) error {
	c.Plan.AddCookie(&http.Cookie{Name: k.Key, Value: k.Value})
	return nil
}

// CookieParam adds a cookie named Key whose value is the argument. A
// nil argument adds nothing. Slice elements are joined with commas.
type CookieParam struct {
	Key string
}

func (CookieParam) Name() string        { return "apix.CookieParam" }
func (CookieParam) Order() int          { return OrderDefault }
func (CookieParam) AllowMultiple() bool { return true }
func (CookieParam) Scopes() Scope       { return Parameter }

func (k CookieParam) Check() error {
	return checkName("cookie name", k.Key)
}

func (k CookieParam) OnParameter(c *request.Call, a request.Arg) error {
	values := formatValues(a.Value)
	if values == nil {
		return nil
	}
	c.Plan.AddCookie(&http.Cookie{Name: k.Key, Value: strings.Join(values, ",")})
	return nil
}

// PathParam substitutes the argument for the "{Placeholder}" part of
// the route path. The argument is path-escaped. A nil argument, or a
// route without the placeholder, fails the call.
type PathParam struct {
	Placeholder string
}

func (PathParam) Name() string        { return "apix.PathParam" }
func (PathParam) Order() int          { return OrderDefault }
func (PathParam) AllowMultiple() bool { return true }
func (PathParam) Scopes() Scope       { return Parameter }

func (p PathParam) Check() error {
	return checkName("path placeholder", p.Placeholder)
}

func (p PathParam) OnParameter(c *request.Call, a request.Arg) error {
	values := formatValues(a.Value)
	if values == nil {
		return fmt.Errorf("path parameter {%s} has no value", p.Placeholder)
	}
	if !c.Plan.SetPathValue(p.Placeholder, strings.Join(values, ",")) {
		return fmt.Errorf("path %q has no placeholder {%s}", c.Plan.Path, p.Placeholder)
	}
	return nil
}

// QueryParam adds the argument to the query string under Key. A nil
// argument adds nothing. Slices produce one query value per element.
type QueryParam struct {
	Key string
}

func (QueryParam) Name() string        { return "apix.QueryParam" }
func (QueryParam) Order() int          { return OrderDefault }
func (QueryParam) AllowMultiple() bool { return true }
func (QueryParam) Scopes() Scope       { return Parameter }

func (q QueryParam) Check() error {
	return checkName("query key", q.Key)
}

func (q QueryParam) OnParameter(c *request.Call, a request.Arg) error {
	for _, v := range formatValues(a.Value) {
		c.Plan.Query.Add(q.Key, v)
	}
	return nil
}

// QueryStruct adds every field of a struct argument to the query
// string, using "schema" struct tags to name the fields. Encoder
// overrides the default codec.Form encoder.
type QueryStruct struct {
	Encoder codec.ValuesEncoder
}

func (QueryStruct) Name() string        { return "apix.QueryStruct" }
func (QueryStruct) Order() int          { return OrderDefault }
func (QueryStruct) AllowMultiple() bool { return true }
func (QueryStruct) Scopes() Scope       { return Parameter }

func (q QueryStruct) OnParameter(c *request.Call, a request.Arg) error {
	enc := q.Encoder
	if enc == nil {
		enc = codec.Form.(codec.ValuesEncoder)
	}
	values, err := enc.Values(a.Value)
	if err != nil {
		return err
	}
	for k, vs := range values {
		for _, v := range vs {
			c.Plan.Query.Add(k, v)
		}
	}
	return nil
}

func setHeader(h http.Header, key string, values []string) {
	h.Del(key)
	for _, v := range values {
		h.Add(key, v)
	}
}

func checkName(what, name string) error {
	if name == "" {
		return errors.New("empty " + what)
	}
	return nil
}

// formatValues renders an argument as strings. It returns nil for nil
// values and nil pointers.
func formatValues(v interface{}) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return []string{x}
	case []string:
		return x
	case []byte:
		return []string{string(x)}
	case time.Time:
		return []string{x.Format(time.RFC3339)}
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nil
		}
		return []string{x.String()}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return formatValues(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, formatValues(rv.Index(i).Interface())...)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}
