// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/gorilla/schema"
)

// Form encodes and decodes application/x-www-form-urlencoded using
// "schema" struct tags. It handles structs, pointers to structs,
// url.Values and map[string][]string.
var Form Codec = NewForm("schema")

// NewForm returns a form codec reading field names from the given
// struct tag.
func NewForm(tag string) Codec {
	enc := schema.NewEncoder()
	enc.SetAliasTag(tag)
	dec := schema.NewDecoder()
	dec.SetAliasTag(tag)
	dec.IgnoreUnknownKeys(true)
	return &formCodec{enc: enc, dec: dec}
}

type formCodec struct {
	enc *schema.Encoder
	dec *schema.Decoder
}

func (*formCodec) MediaType() string {
	return "application/x-www-form-urlencoded"
}

func (c *formCodec) Marshal(v interface{}) ([]byte, error) {
	values, err := c.Values(v)
	if err != nil {
		return nil, err
	}
	return []byte(values.Encode()), nil
}

// Values encodes v into url.Values. It is used both for form bodies and
// for query strings.
func (c *formCodec) Values(v interface{}) (url.Values, error) {
	switch x := v.(type) {
	case nil:
		return url.Values{}, nil
	case url.Values:
		return x, nil
	case map[string][]string:
		return url.Values(x), nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return url.Values{}, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("apix/codec: cannot form-encode %T", v)
	}
	values := url.Values{}
	if err := c.enc.Encode(rv.Interface(), values); err != nil {
		return nil, err
	}
	return values, nil
}

func (c *formCodec) Unmarshal(data []byte, v interface{}) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case *url.Values:
		*x = values
		return nil
	case *map[string][]string:
		*x = values
		return nil
	}
	return c.dec.Decode(v, values)
}

// A ValuesEncoder encodes a value into url.Values. The codec returned by
// NewForm implements ValuesEncoder.
type ValuesEncoder interface {
	Values(v interface{}) (url.Values, error)
}
