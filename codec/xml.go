// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/xml"
	"strings"

	"github.com/elnormous/contenttype"
)

// XML encodes application/xml and decodes both application/xml and
// text/xml, as well as +xml suffix types.
var XML Codec = xmlCodec{}

type xmlCodec struct{}

func (xmlCodec) MediaType() string {
	return "application/xml"
}

func (xmlCodec) Marshal(v interface{}) ([]byte, error) {
	return xml.Marshal(v)
}

func (xmlCodec) Unmarshal(data []byte, v interface{}) error {
	return xml.Unmarshal(data, v)
}

func (xmlCodec) Match(mt contenttype.MediaType) bool {
	subtype := strings.ToLower(mt.Subtype)
	if strings.EqualFold(mt.Type, "text") {
		return subtype == "xml"
	}
	return strings.EqualFold(mt.Type, "application") && strings.HasSuffix(subtype, "+xml")
}
