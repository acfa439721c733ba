// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/gogama/apix/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tag struct {
	name     string
	id       string
	order    int
	multiple bool
	scopes   Scope
	err      error
}

func (t tag) Name() string        { return t.name }
func (t tag) Order() int          { return t.order }
func (t tag) AllowMultiple() bool { return t.multiple }
func (t tag) Check() error        { return t.err }

func (t tag) Scopes() Scope {
	if t.scopes == 0 {
		return AnyScope
	}
	return t.scopes
}

func ids(ds []Directive) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		if t, ok := d.(tag); ok {
			out[i] = t.id
		} else {
			out[i] = d.Name()
		}
	}
	return out
}

func TestResolve(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		ds, err := Resolve()
		require.NoError(t, err)
		assert.Empty(t, ds)
		ds, err = Resolve(Level{Scope: Interface}, Level{Scope: Method})
		require.NoError(t, err)
		assert.Empty(t, ds)
	})
	t.Run("sorted by order, stable", func(t *testing.T) {
		ds, err := Resolve(
			Level{Interface, []Directive{
				tag{name: "a", id: "i.a", order: 5},
				tag{name: "b", id: "i.b", order: 0},
			}},
			Level{Method, []Directive{
				tag{name: "c", id: "m.c", order: 0},
				Get("x"),
				Base("https://h"),
			}},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"apix.Base", "apix.Route", "i.b", "m.c", "i.a"}, ids(ds))
	})
	t.Run("method replaces interface", func(t *testing.T) {
		ds, err := Resolve(
			Level{Interface, []Directive{
				tag{name: "x", id: "i.x"},
				tag{name: "y", id: "i.y"},
			}},
			Level{Method, []Directive{
				tag{name: "z", id: "m.z"},
				tag{name: "x", id: "m.x"},
			}},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"i.y", "m.z", "m.x"}, ids(ds))
	})
	t.Run("multiple instances kept", func(t *testing.T) {
		ds, err := Resolve(
			Level{Interface, []Directive{tag{name: "h", id: "i.h1", multiple: true}}},
			Level{Method, []Directive{
				tag{name: "h", id: "m.h1", multiple: true},
				tag{name: "h", id: "m.h2", multiple: true},
			}},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"i.h1", "m.h1", "m.h2"}, ids(ds))
	})
	t.Run("duplicate at same level", func(t *testing.T) {
		_, err := Resolve(
			Level{Method, []Directive{tag{name: "x", id: "1"}, tag{name: "x", id: "2"}}},
		)
		assert.EqualError(t, err, "directive x declared more than once at method level")
	})
	t.Run("duplicate across interface level only", func(t *testing.T) {
		_, err := Resolve(
			Level{Interface, []Directive{tag{name: "x"}, tag{name: "x"}}},
			Level{Method, []Directive{tag{name: "x"}}},
		)
		assert.EqualError(t, err, "directive x declared more than once at interface level")
	})
	t.Run("scope violation", func(t *testing.T) {
		_, err := Resolve(
			Level{Interface, []Directive{tag{name: "p", scopes: Parameter}}},
		)
		assert.EqualError(t, err, "directive p not allowed at interface level (allowed: parameter)")
	})
	t.Run("nil directive", func(t *testing.T) {
		_, err := Resolve(Level{Return, []Directive{nil}})
		assert.EqualError(t, err, "nil directive at return level, position 0")
	})
	t.Run("check failure", func(t *testing.T) {
		_, err := Resolve(Level{Method, []Directive{tag{name: "bad", err: errors.New("broken")}}})
		assert.EqualError(t, err, "directive bad at method level: broken")
	})
	t.Run("reserved order", func(t *testing.T) {
		testCases := []struct {
			name  string
			order int
		}{
			{"base", OrderBase},
			{"route", OrderRoute},
		}
		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				_, err := Resolve(
					Level{Method, []Directive{
						tag{name: "early", order: testCase.order},
						Base("https://h"),
						Get("x"),
					}},
				)
				assert.EqualError(t, err, fmt.Sprintf("directive early at method level uses reserved order %d", testCase.order))
			})
		}
	})
	t.Run("reserved order for function directive", func(t *testing.T) {
		_, err := Resolve(
			Level{Interface, []Directive{OnRequest("early", math.MinInt, func(*request.Call) error { return nil })}},
		)
		assert.Error(t, err)
	})
	t.Run("base and route always first", func(t *testing.T) {
		ds, err := Resolve(
			Level{Method, []Directive{
				tag{name: "lowest allowed", id: "low", order: OrderRoute + 1},
				Get("x"),
				Base("https://h"),
			}},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"apix.Base", "apix.Route", "low"}, ids(ds))
	})
	t.Run("deterministic", func(t *testing.T) {
		levels := []Level{
			{Interface, []Directive{tag{name: "a", id: "a", order: 3}, tag{name: "b", id: "b", order: 3}}},
			{Method, []Directive{tag{name: "c", id: "c", order: math.MinInt32 + 5}, tag{name: "a", id: "a2", order: 3}}},
		}
		first, err := Resolve(levels...)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := Resolve(levels...)
			require.NoError(t, err)
			assert.Equal(t, ids(first), ids(again))
		}
	})
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "none", Scope(0).String())
	assert.Equal(t, "interface", Interface.String())
	assert.Equal(t, "method|return", (Method | Return).String())
	assert.Equal(t, "interface|method|parameter|return", AnyScope.String())
}

func TestScopesOf(t *testing.T) {
	assert.Equal(t, Parameter, ScopesOf(PathParam{}))
	assert.Equal(t, Return, ScopesOf(Decode{}))
	assert.Equal(t, AnyScope, ScopesOf(plain{}))
}

type plain struct{}

func (plain) Name() string        { return "plain" }
func (plain) Order() int          { return 0 }
func (plain) AllowMultiple() bool { return false }
