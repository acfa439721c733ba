// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

// ErrNoBase is returned by Plan.URL when the plan's path is relative
// and no base destination has been configured.
var ErrNoBase = errors.New("apix/request: no base destination configured")

// A Plan contains the HTTP request being assembled for one call.
//
// Directives fill in a Plan during the request-build phase. The
// reserved directive orderings guarantee that the base destination and
// the method and relative path are set before any other directive
// runs, so later directives may rely on Method and Path being final.
//
// The field structure of Plan follows http.Request wherever possible,
// except that the destination is split into Base, Path and Query, and
// the body is a pre-buffered byte slice.
type Plan struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// Base is the base destination against which a relative Path is
	// resolved, following the rules of url.URL.ResolveReference. It
	// may be nil if Path is absolute.
	Base *urlpkg.URL

	// Path is the path, relative or absolute, of the request. It may
	// contain placeholders of the form "{name}" which are substituted
	// by SetPathValue. Path may also carry a query string.
	Path string

	// Query contains query values added to the resolved URL in
	// addition to any query string in Base or Path.
	Query urlpkg.Values

	// Header contains the request header fields to be sent.
	Header http.Header

	// Body is the pre-buffered request body to be sent. A nil or empty
	// body indicates no request body should be sent.
	Body []byte

	// Close stipulates whether to close the connection after sending
	// the request and reading the response.
	Close bool

	// Host optionally overrides the Host header to send. If empty, the
	// host of the resolved URL is sent.
	Host string
}

// NewPlan returns an empty plan with non-nil Header and Query.
func NewPlan() *Plan {
	return &Plan{
		Query:  make(urlpkg.Values),
		Header: make(http.Header),
	}
}

// SetPathValue replaces every "{name}" placeholder in the plan's path
// with the path-escaped value. The return value reports whether at
// least one placeholder was replaced.
func (p *Plan) SetPathValue(name, value string) bool {
	placeholder := "{" + name + "}"
	if !strings.Contains(p.Path, placeholder) {
		return false
	}
	p.Path = strings.ReplaceAll(p.Path, placeholder, urlpkg.PathEscape(value))
	return true
}

// URL resolves the plan's destination. If Path is absolute it is used
// as is; otherwise it is resolved against Base. Query values are merged
// into the query string of the result.
//
// URL returns ErrNoBase if Path is relative and Base is nil.
func (p *Plan) URL() (*urlpkg.URL, error) {
	rel, err := urlpkg.Parse(p.Path)
	if err != nil {
		return nil, err
	}
	var u *urlpkg.URL
	switch {
	case rel.IsAbs():
		u = rel
	case p.Base == nil:
		return nil, ErrNoBase
	case p.Path == "":
		u2 := *p.Base
		u = &u2
	default:
		u = p.Base.ResolveReference(rel)
	}
	if u.Host == "" {
		return nil, ErrNoBase
	}
	u.Host = removeEmptyPort(u.Host)
	if len(p.Query) > 0 {
		q := u.Query()
		for k, vs := range p.Query {
			q[k] = append(q[k], vs...)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// AddCookie adds a cookie to the request. Per RFC 6265 section 5.4,
// AddCookie does not attach more than one Cookie header field. That
// means all cookies, if any, are written into the same line,
// separated by semicolons.
func (p *Plan) AddCookie(c *http.Cookie) {
	c2 := &http.Cookie{Name: c.Name, Value: c.Value}
	s := c2.String()
	if h := p.Header.Get("Cookie"); h != "" {
		p.Header.Set("Cookie", h+"; "+s)
	} else {
		p.Header.Set("Cookie", s)
	}
}

// SetBasicAuth sets the plan's Authorization header to use HTTP Basic
// Authentication with the provided username and password.
//
// With HTTP Basic Authentication the provided username and password
// are not encrypted.
func (p *Plan) SetBasicAuth(username, password string) {
	p.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// ToRequest creates an HTTP request corresponding to the plan. The
// context of the new request is set to ctx, which may not be nil.
//
// ToRequest fails if the destination cannot be resolved (see URL) or
// if Method is not a valid HTTP token.
func (p *Plan) ToRequest(ctx context.Context) (*http.Request, error) {
	method := p.Method
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("apix/request: invalid method %q", method)
	}
	u, err := p.URL()
	if err != nil {
		return nil, err
	}
	r := template.WithContext(ctx)
	r.Method = method
	r.URL = u
	r.Header = p.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if len(p.Body) > 0 {
		body := p.Body
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(len(body))
	}
	r.Close = p.Close
	r.Host = p.Host
	if r.Host == "" {
		r.Host = u.Host
	}
	return r, nil
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

// validMethod reports whether method is an RFC 7230 token.
func validMethod(method string) bool {
	return len(method) > 0 && strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !isTokenRune(r)
}

// isTokenRune classifies a rune as being valid for a token as defined
// in https://tools.ietf.org/html/rfc7230#section-3.2.6
func isTokenRune(r rune) bool {
	if r >= 0x7f || r <= ' ' {
		return false
	}
	return !strings.ContainsRune(`"(),/:;<=>?@[\]{}`, r)
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
