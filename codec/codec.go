// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package codec defines the serialization contract used by apix body
// and return directives, and provides JSON, XML and form codecs.
//
// The engine itself never encodes or decodes anything. A codec is
// selected by a directive: Body encodes a parameter into the request
// body with a codec, and Decode decodes the response body with a codec
// when the response media type matches the codec's.
package codec

import (
	"strings"

	"github.com/elnormous/contenttype"
)

// A Codec converts between Go values and one media type.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Codec interface {
	// MediaType returns the media type the codec produces, for example
	// "application/json". It is used as the Content-Type of encoded
	// request bodies and the Accept header of decoded responses.
	MediaType() string
	// Marshal encodes v.
	Marshal(v interface{}) ([]byte, error)
	// Unmarshal decodes data into the value pointed to by v.
	Unmarshal(data []byte, v interface{}) error
}

// A Matcher is implemented by codecs that accept more than their own
// media type when decoding.
type Matcher interface {
	Match(mt contenttype.MediaType) bool
}

// Parse parses a Content-Type header value. It returns the zero
// MediaType if s is empty or malformed.
func Parse(s string) contenttype.MediaType {
	if strings.TrimSpace(s) == "" {
		return contenttype.MediaType{}
	}
	return contenttype.NewMediaType(s)
}

// Describe returns a short human-readable classification of a
// Content-Type header value for diagnostics: the bare media type, or
// "unknown" when there is none.
func Describe(s string) string {
	mt := Parse(s)
	if mt.Type == "" || mt.Subtype == "" {
		return "unknown"
	}
	return mt.Type + "/" + mt.Subtype
}

// Accepts reports whether codec c can decode a body whose Content-Type
// header is contentType. A codec accepts its own media type, ignoring
// parameters, and anything its Match method accepts. An empty or
// malformed content type is never accepted.
func Accepts(c Codec, contentType string) bool {
	mt := Parse(contentType)
	if mt.Type == "" || mt.Subtype == "" {
		return false
	}
	if m, ok := c.(Matcher); ok && m.Match(mt) {
		return true
	}
	own := contenttype.NewMediaType(c.MediaType())
	return strings.EqualFold(own.Type, mt.Type) && strings.EqualFold(own.Subtype, mt.Subtype)
}

// Select returns the first of codecs that accepts contentType, or nil.
func Select(contentType string, codecs ...Codec) Codec {
	for _, c := range codecs {
		if Accepts(c, contentType) {
			return c
		}
	}
	return nil
}
