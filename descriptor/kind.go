// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package descriptor

import (
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/pkg/errors"
)

// A Kind classifies the declared return type of an operation. Exactly
// one Kind applies to any return type.
type Kind int

const (
	// Deserialize means the response is decoded into the declared type
	// by a return directive.
	Deserialize Kind = iota
	// RawText means the declared type is string and the result is the
	// response body as text.
	RawText
	// RawBytes means the declared type is []byte and the result is the
	// exact response body.
	RawBytes
	// RawStream means the declared type is io.Reader or io.ReadCloser
	// and the result is the unbuffered response body. The caller must
	// close it.
	RawStream
	// RawResponse means the declared type is *http.Response and the
	// result is the response itself.
	RawResponse
)

var kindNames = [...]string{
	Deserialize: "deserialize",
	RawText:     "raw-text",
	RawBytes:    "raw-bytes",
	RawStream:   "raw-stream",
	RawResponse: "raw-response",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Raw reports whether k is one of the raw kinds.
func (k Kind) Raw() bool {
	return k != Deserialize
}

var (
	stringType     = reflect.TypeOf("")
	bytesType      = reflect.TypeOf([]byte(nil))
	readerType     = reflect.TypeOf((*io.Reader)(nil)).Elem()
	readCloserType = reflect.TypeOf((*io.ReadCloser)(nil)).Elem()
	responseType   = reflect.TypeOf((*http.Response)(nil))
)

// Classify returns the Kind of return type t. Types that can neither be
// handed back raw nor decoded into (nil, channels, functions and unsafe
// pointers) are an error.
func Classify(t reflect.Type) (Kind, error) {
	switch t {
	case nil:
		return 0, errors.New("nil return type")
	case stringType:
		return RawText, nil
	case bytesType:
		return RawBytes, nil
	case readerType, readCloserType:
		return RawStream, nil
	case responseType:
		return RawResponse, nil
	}
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return 0, errors.Errorf("unsupported return type %s", t)
	}
	return Deserialize, nil
}
