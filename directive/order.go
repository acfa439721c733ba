// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package directive

import (
	"sort"

	"github.com/pkg/errors"
)

// A Level is the group of directives declared at one scope.
type Level struct {
	Scope      Scope
	Directives []Directive
}

// Resolve merges the directives of levels, given from the farthest to
// the nearest, into one ordered list.
//
// Within a level, a directive that does not allow multiple instances
// may appear at most once. Across levels, a nearer instance replaces a
// farther instance with the same Name, taking the nearer instance's
// declaration position. The surviving directives are then stably
// sorted by Order, so equal keys keep declaration order.
//
// Resolve also checks every directive against the scope of its level,
// rejects directives other than BaseURL and Route that claim a reserved
// ordering key, and runs Check on directives that implement Checker.
func Resolve(levels ...Level) ([]Directive, error) {
	var out []Directive
	for _, level := range levels {
		seen := make(map[string]bool, len(level.Directives))
		for i, d := range level.Directives {
			if d == nil {
				return nil, errors.Errorf("nil directive at %s level, position %d", level.Scope, i)
			}
			name := d.Name()
			if ScopesOf(d)&level.Scope == 0 {
				return nil, errors.Errorf("directive %s not allowed at %s level (allowed: %s)", name, level.Scope, ScopesOf(d))
			}
			if d.Order() <= OrderRoute && !ownsReservedOrder(d) {
				return nil, errors.Errorf("directive %s at %s level uses reserved order %d", name, level.Scope, d.Order())
			}
			if c, ok := d.(Checker); ok {
				if err := c.Check(); err != nil {
					return nil, errors.Wrapf(err, "directive %s at %s level", name, level.Scope)
				}
			}
			if d.AllowMultiple() {
				out = append(out, d)
				continue
			}
			if seen[name] {
				return nil, errors.Errorf("directive %s declared more than once at %s level", name, level.Scope)
			}
			seen[name] = true
			out = removeNamed(out, name)
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order() < out[j].Order()
	})
	return out, nil
}

// ownsReservedOrder reports whether d is one of the built-in directives
// entitled to OrderBase or OrderRoute.
func ownsReservedOrder(d Directive) bool {
	switch d.(type) {
	case BaseURL:
		return d.Order() == OrderBase
	case Route:
		return d.Order() == OrderRoute
	}
	return false
}

func removeNamed(ds []Directive, name string) []Directive {
	out := ds[:0]
	for _, d := range ds {
		if d.AllowMultiple() || d.Name() != name {
			out = append(out, d)
		}
	}
	return out
}
