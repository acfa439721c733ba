// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"crypto/tls"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// NewHTTPDoer returns an HTTPDoer suitable for Engine: an http.Client
// whose transport speaks HTTP/2 to servers that negotiate it over TLS,
// and HTTP/1.1 otherwise.
//
// The tlsConfig parameter may be nil for the default TLS settings. The
// timeout parameter is the client's overall timeout, zero meaning
// none; per-call timeouts are usually set by directives instead.
func NewHTTPDoer(tlsConfig *tls.Config, timeout time.Duration) (*http.Client, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		t.TLSClientConfig = tlsConfig.Clone()
	}
	if err := http2.ConfigureTransport(t); err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: t,
		Timeout:   timeout,
	}, nil
}
