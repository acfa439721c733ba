// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"github.com/gogama/apix/apierr"
	"github.com/gogama/apix/codec"
	"github.com/gogama/apix/descriptor"
	"github.com/gogama/apix/request"
)

// materialize converts the result slot of x into the value or error
// returned to the caller.
//
// A value is returned as is. A stored error is wrapped once, in an
// error of kind apierr.Response. An empty slot means no hook could
// handle the response, which is an error of kind
// apierr.UnsupportedResponse naming the declared type and the media
// type of the response.
func materialize(x *request.Execution, ret *descriptor.Return) (interface{}, error) {
	v, err := x.Result()
	switch x.ResultState() {
	case request.ResultValue:
		return v, nil
	case request.ResultError:
		return nil, &apierr.Error{Kind: apierr.Response, Err: err}
	}

	media := codec.Describe(x.ContentType())
	e := apierr.New(apierr.UnsupportedResponse, "cannot produce %s from %s response", ret.Type, media)
	e.Type = ret.Type
	e.Media = media
	return nil, e
}
