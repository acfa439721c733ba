// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package descriptor

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// A ConstraintChecker decides at build time whether a parameter
// constraint can be evaluated against values of type t. It is
// implemented by *validation.Validator, which knows any custom tags
// registered on it.
type ConstraintChecker interface {
	CheckConstraint(t reflect.Type, constraint string) error
}

// CheckConstraint evaluates constraint against the zero value of t with
// v, and reports a panic, such as an undefined tag or a tag that does
// not apply to the type, as an error. Validation failures of the zero
// value itself are not errors.
func CheckConstraint(v *validator.Validate, t reflect.Type, constraint string) (err error) {
	if constraint == "" {
		return nil
	}
	var zero interface{}
	if t != nil {
		zero = reflect.Zero(t).Interface()
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("invalid constraint %q: %v", constraint, r)
		}
	}()
	_ = v.Var(zero, constraint)
	return nil
}

var builtinTags = sync.OnceValue(func() *validator.Validate {
	return validator.New()
})

type builtinChecker struct{}

func (builtinChecker) CheckConstraint(t reflect.Type, constraint string) error {
	return CheckConstraint(builtinTags(), t, constraint)
}
