// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package descriptor

import (
	"reflect"
	"strconv"

	"github.com/gogama/apix/apierr"
	"github.com/gogama/apix/directive"
	"github.com/pkg/errors"
)

// Metadata is the raw description of an operation, as supplied by the
// dispatcher or whatever discovers operations.
type Metadata struct {
	// Name is the stable identity of the operation, for example
	// "users.get". It keys the Registry and the response cache.
	Name string
	// Interface holds the directives shared by every operation of the
	// interface the operation belongs to.
	Interface []directive.Directive
	// Method holds the directives of the operation itself.
	Method []directive.Directive
	// Params describes the parameters, in argument order.
	Params []ParamMetadata
	// Return describes the return value.
	Return ReturnMetadata
	// Constraints checks the parameter constraints. If Constraints is
	// nil, only the validator's built-in tags are accepted.
	Constraints ConstraintChecker
}

// ParamMetadata describes one parameter.
type ParamMetadata struct {
	Name string
	Type reflect.Type
	// ByRef marks an output or by-reference parameter, which an HTTP
	// call cannot support.
	ByRef bool
	// Constraint is a validator tag, for example "required,min=1".
	Constraint string
	Directives []directive.Directive
}

// ReturnMetadata describes the return value.
type ReturnMetadata struct {
	Type       reflect.Type
	Directives []directive.Directive
}

// An Operation is the built, immutable description of an operation.
// It is safe for concurrent use.
type Operation struct {
	name       string
	directives []directive.Directive
	params     []*Parameter
	ret        *Return
}

// A Parameter is the built description of one parameter. Index equals
// the position of the parameter's argument.
type Parameter struct {
	Index      int
	Name       string
	Type       reflect.Type
	Constraint string
	Directives []directive.Directive
}

// A Return is the built description of the return value.
type Return struct {
	Type       reflect.Type
	Kind       Kind
	Directives []directive.Directive
	// Cache is the effective cache directive, or nil if the response
	// cache is not used.
	Cache *directive.Cache
}

// Name returns the name of the operation.
func (op *Operation) Name() string { return op.name }

// ResultType returns the declared return type.
func (op *Operation) ResultType() reflect.Type { return op.ret.Type }

// Directives returns the resolved interface and method directives in
// execution order. The slice must not be modified.
func (op *Operation) Directives() []directive.Directive { return op.directives }

// Params returns the parameters in index order. The slice must not be
// modified.
func (op *Operation) Params() []*Parameter { return op.params }

// Return returns the return descriptor.
func (op *Operation) Return() *Return { return op.ret }

func (op *Operation) String() string { return op.name }

// Build builds an Operation from md. Build is deterministic and has no
// side effects. Every problem it finds is returned as an *apierr.Error
// of kind apierr.Config.
func Build(md Metadata) (*Operation, error) {
	op, err := build(md)
	if err != nil {
		e := apierr.As(err, apierr.Config)
		if e.Kind != apierr.Config {
			e = apierr.Wrap(apierr.Config, err, "")
		}
		return nil, e.WithOp(md.Name)
	}
	return op, nil
}

func build(md Metadata) (*Operation, error) {
	if md.Name == "" {
		return nil, errors.New("empty operation name")
	}

	ds, err := directive.Resolve(
		directive.Level{Scope: directive.Interface, Directives: md.Interface},
		directive.Level{Scope: directive.Method, Directives: md.Method},
	)
	if err != nil {
		return nil, err
	}

	checker := md.Constraints
	if checker == nil {
		checker = builtinChecker{}
	}
	params := make([]*Parameter, len(md.Params))
	bodies := 0
	for i, pm := range md.Params {
		p, err := buildParam(i, pm, checker)
		if err != nil {
			return nil, &apierr.Error{Kind: apierr.Config, Param: pm.Name, Err: err}
		}
		for _, d := range p.Directives {
			if d.Name() == (directive.Body{}).Name() {
				bodies++
			}
		}
		params[i] = p
	}
	if bodies > 1 {
		return nil, errors.Errorf("%d parameters set the request body", bodies)
	}

	ret, err := buildReturn(md.Return, ds)
	if err != nil {
		return nil, errors.Wrap(err, "return")
	}

	return &Operation{
		name:       md.Name,
		directives: ds,
		params:     params,
		ret:        ret,
	}, nil
}

func buildParam(i int, pm ParamMetadata, checker ConstraintChecker) (*Parameter, error) {
	if pm.ByRef {
		return nil, errors.New("by-reference parameters are not supported")
	}
	if pm.Type != nil {
		switch pm.Type.Kind() {
		case reflect.Chan, reflect.Func, reflect.UnsafePointer:
			return nil, errors.Errorf("unsupported parameter type %s", pm.Type)
		}
	}
	if err := checker.CheckConstraint(pm.Type, pm.Constraint); err != nil {
		return nil, err
	}
	ds, err := directive.Resolve(directive.Level{Scope: directive.Parameter, Directives: pm.Directives})
	if err != nil {
		return nil, err
	}
	name := pm.Name
	if name == "" {
		name = "#" + strconv.Itoa(i)
	}
	return &Parameter{
		Index:      i,
		Name:       name,
		Type:       pm.Type,
		Constraint: pm.Constraint,
		Directives: ds,
	}, nil
}

func buildReturn(rm ReturnMetadata, opDirectives []directive.Directive) (*Return, error) {
	kind, err := Classify(rm.Type)
	if err != nil {
		return nil, err
	}
	ds, err := directive.Resolve(directive.Level{Scope: directive.Return, Directives: rm.Directives})
	if err != nil {
		return nil, err
	}
	cache := findCache(ds)
	if cache == nil {
		cache = findCache(opDirectives)
	}
	if kind.Raw() {
		ds = append(ds, rawReturn{kind})
	}
	return &Return{
		Type:       rm.Type,
		Kind:       kind,
		Directives: ds,
		Cache:      cache,
	}, nil
}

func findCache(ds []directive.Directive) *directive.Cache {
	for _, d := range ds {
		if c, ok := d.(directive.Cache); ok {
			return &c
		}
	}
	return nil
}
