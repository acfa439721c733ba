// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package validation checks call arguments and materialized results
// against declared constraints, using validator tags.
//
// A parameter's constraint is a validator tag such as "required" or
// "required,min=1,max=100". With Nested set, struct arguments (and
// pointers to structs) are additionally validated field by field using
// the `validate` struct tags of their type.
package validation

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gogama/apix/apierr"
	"github.com/gogama/apix/descriptor"
)

// A Validator validates arguments before the request is built, and
// results after the response is handled.
//
// The zero value is ready to use. A Validator is safe for concurrent
// use once its fields are set.
type Validator struct {
	// Nested enables recursive validation of struct arguments.
	Nested bool

	once     sync.Once
	validate *validator.Validate
}

// New returns a Validator with nested validation switched on or off.
func New(nested bool) *Validator {
	return &Validator{Nested: nested}
}

func (v *Validator) engine() *validator.Validate {
	v.once.Do(func() {
		if v.validate == nil {
			v.validate = validator.New()
		}
	})
	return v.validate
}

// RegisterValidation adds a custom validation tag, making it usable in
// parameter constraints and in `validate` struct tags.
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return v.engine().RegisterValidation(tag, fn)
}

// CheckConstraint reports whether constraint is a usable constraint for
// parameters of type t, knowing the custom tags registered on v. It
// implements descriptor.ConstraintChecker.
func (v *Validator) CheckConstraint(t reflect.Type, constraint string) error {
	return descriptor.CheckConstraint(v.engine(), t, constraint)
}

// ValidateArgs validates args against params, in index order. It
// returns the first violation as an *apierr.Error of kind
// apierr.Validation naming the parameter and the violated constraint.
//
// A length mismatch between params and args is an error of kind
// apierr.Config.
func (v *Validator) ValidateArgs(params []*descriptor.Parameter, args []interface{}) error {
	if len(params) != len(args) {
		return apierr.New(apierr.Config, "operation takes %d arguments, got %d", len(params), len(args))
	}
	validate := v.engine()
	for _, p := range params {
		arg := args[p.Index]
		if p.Constraint != "" {
			if err := validate.Var(arg, p.Constraint); err != nil {
				return argError(p, err)
			}
		}
		if v.Nested && isStruct(arg) {
			if err := validate.Struct(arg); err != nil {
				return argError(p, err)
			}
		}
	}
	return nil
}

// ValidateResult validates the fields of a struct result, or of the
// struct a pointer result points to. Results of any other type pass.
func (v *Validator) ValidateResult(result interface{}) error {
	if !isStruct(result) {
		return nil
	}
	if err := v.engine().Struct(result); err != nil {
		e := toError(err)
		e.Msg = "result " + e.Msg
		return e
	}
	return nil
}

func isStruct(x interface{}) bool {
	val := reflect.ValueOf(x)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return false
		}
		val = val.Elem()
	}
	return val.Kind() == reflect.Struct
}

func argError(p *descriptor.Parameter, err error) error {
	e := toError(err)
	e.Param = p.Name
	return e
}

func toError(err error) *apierr.Error {
	e := &apierr.Error{Kind: apierr.Validation, Err: err}
	fes, ok := err.(validator.ValidationErrors)
	if !ok || len(fes) == 0 {
		e.Msg = "invalid value"
		return e
	}
	fe := fes[0]
	e.Constraint = fe.Tag()
	if fe.Param() != "" {
		e.Constraint += "=" + fe.Param()
	}
	if ns := fe.StructNamespace(); ns != "" {
		e.Msg = ns + " " + describe(fe)
	} else {
		e.Msg = describe(fe)
	}
	return e
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
