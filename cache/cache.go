// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cache defines the response cache contract used by the apix
// engine, and the immutable snapshot entries it stores.
//
// Storage is delegated to a Provider. Sub-package memory provides a
// bounded in-process provider and sub-package redis a distributed one.
//
// Entries are replaced, never mutated, so a reader can never observe a
// half-written entry. Expiration is evaluated lazily when an entry is
// read.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// A Provider stores response snapshots keyed by cache key.
//
// Implementations must be safe for concurrent use. Get returns a nil
// entry and a nil error on a miss, including when the stored entry has
// expired. The engine treats every provider error as a miss or a
// skipped write, so a failing provider never fails a call.
type Provider interface {
	// Name identifies the provider in diagnostics.
	Name() string
	// Get returns the unexpired entry stored under key, if any.
	Get(ctx context.Context, key string) (*Entry, error)
	// Set stores e under key, replacing any existing entry. The
	// provider may evict the entry once ttl has elapsed.
	Set(ctx context.Context, key string, e *Entry, ttl time.Duration) error
}

// An Entry is the snapshot of a prior HTTP response. An Entry must not
// be modified once it has been handed to a Provider.
type Entry struct {
	StatusCode int         `json:"status_code"`
	Status     string      `json:"status,omitempty"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body,omitempty"`
	// Captured is the time the response was received.
	Captured time.Time `json:"captured"`
	// Expires is the instant from which the entry is no longer served.
	// The zero value means the entry never expires.
	Expires time.Time `json:"expires,omitempty"`
}

// Expired reports whether the entry has expired at instant now.
func (e *Entry) Expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

// Response synthesizes an HTTP response equivalent to the one the entry
// was captured from. The response gets its own copy of the header and
// its own body reader, so callers may consume and modify it freely.
func (e *Entry) Response(req *http.Request) *http.Response {
	status := e.Status
	if status == "" {
		status = strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
	}
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:        status,
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Snapshot captures resp, whose complete body is body, into a new entry
// that expires ttl after now. A non-positive ttl yields an entry that
// never expires.
//
// Bodies longer than limit are not snapshotted and Snapshot returns
// false. A non-positive limit means no limit.
func Snapshot(resp *http.Response, body []byte, limit int, now time.Time, ttl time.Duration) (*Entry, bool) {
	if resp == nil || (limit > 0 && len(body) > limit) {
		return nil, false
	}
	e := &Entry{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header.Clone(),
		Body:       append([]byte(nil), body...),
		Captured:   now,
	}
	if ttl > 0 {
		e.Expires = now.Add(ttl)
	}
	return e, true
}

// DefaultKey derives a cache key from an operation name and argument
// values. The arguments are encoded as JSON and hashed, so two calls
// whose arguments encode identically share a key.
func DefaultKey(op string, args []interface{}) (string, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return op + "#" + strconv.FormatUint(xxhash.Sum64(b), 16), nil
}
