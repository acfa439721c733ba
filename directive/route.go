// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gogama/apix/request"
)

// BaseURL establishes the base destination of the call. Relative paths
// set by Route are resolved against it. Create one with Base.
type BaseURL struct {
	u   *url.URL
	err error
}

// Base returns a directive setting the base destination to raw, which
// must be an absolute URL. A missing trailing slash is added to the
// path, so that Base("https://h/v1") and Get("users") resolve to
// https://h/v1/users.
func Base(raw string) BaseURL {
	u, err := url.Parse(raw)
	if err != nil {
		return BaseURL{err: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return BaseURL{err: fmt.Errorf("base URL %q is not absolute", raw)}
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return BaseURL{u: u}
}

func (BaseURL) Name() string        { return "apix.Base" }
func (BaseURL) Order() int          { return OrderBase }
func (BaseURL) AllowMultiple() bool { return false }
func (BaseURL) Scopes() Scope       { return Interface | Method }

func (b BaseURL) Check() error {
	if b.err != nil {
		return b.err
	}
	if b.u == nil {
		return errors.New("zero BaseURL, use Base")
	}
	return nil
}

func (b BaseURL) OnRequest(c *request.Call) error {
	u := *b.u
	c.Plan.Base = &u
	return nil
}

// String returns the base URL.
func (b BaseURL) String() string {
	if b.u == nil {
		return ""
	}
	return b.u.String()
}

// Route establishes the HTTP method and the relative path of the call.
// The path may contain "{name}" placeholders filled in by PathParam.
type Route struct {
	Method string
	Path   string
}

// Get returns a Route for method GET.
func Get(path string) Route { return Route{http.MethodGet, path} }

// Post returns a Route for method POST.
func Post(path string) Route { return Route{http.MethodPost, path} }

// Put returns a Route for method PUT.
func Put(path string) Route { return Route{http.MethodPut, path} }

// Patch returns a Route for method PATCH.
func Patch(path string) Route { return Route{http.MethodPatch, path} }

// Delete returns a Route for method DELETE.
func Delete(path string) Route { return Route{http.MethodDelete, path} }

func (Route) Name() string        { return "apix.Route" }
func (Route) Order() int          { return OrderRoute }
func (Route) AllowMultiple() bool { return false }
func (Route) Scopes() Scope       { return Interface | Method }

func (r Route) Check() error {
	if r.Method == "" || strings.ContainsAny(r.Method, " \t\r\n") {
		return fmt.Errorf("invalid method %q", r.Method)
	}
	if _, err := url.Parse(strings.NewReplacer("{", "", "}", "").Replace(r.Path)); err != nil {
		return err
	}
	return nil
}

func (r Route) OnRequest(c *request.Call) error {
	c.Plan.Method = r.Method
	c.Plan.Path = r.Path
	return nil
}
