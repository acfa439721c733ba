// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/json"
	"strings"

	"github.com/elnormous/contenttype"
)

// JSON encodes and decodes application/json. When decoding it also
// accepts structured syntax suffix types such as
// application/problem+json.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) MediaType() string {
	return "application/json"
}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Match(mt contenttype.MediaType) bool {
	return strings.EqualFold(mt.Type, "application") &&
		strings.HasSuffix(strings.ToLower(mt.Subtype), "+json")
}
