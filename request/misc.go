// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"
)

// ErrBadBodyType is returned by BodyBytes for an unsupported value.
var ErrBadBodyType = errors.New("apix/request: invalid type (for raw body use nil, " +
	"string, []byte, io.Reader or io.ReadCloser)")

// BodyBytes converts a raw body argument to a byte slice for use as a
// plan body.
//
// The body parameter may be nil, a string, a []byte, an io.Reader, or
// an io.ReadCloser. Readers are read to the end, and closed if they
// implement io.Closer. Any other type produces ErrBadBodyType.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			_ = x.Close()
			return nil, err
		}
		if err = x.Close(); err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return io.ReadAll(x)
	default:
		return nil, ErrBadBodyType
	}
}
