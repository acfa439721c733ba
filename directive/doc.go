// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package directive defines the Directive contract, the rules for ordering
and merging directives, and the built-in directives.

A directive is a small, immutable configuration value attached to an
operation at interface level, method level, parameter level or return
level. It contributes behavior through one or more of the optional hook
interfaces RequestHook, ParamHook and ResponseHook:

	md := descriptor.Metadata{
		Name:      "users.get",
		Interface: []directive.Directive{directive.Base("https://api.example.com/v1/")},
		Method: []directive.Directive{
			directive.Get("users/{id}"),
			directive.SetHeader("X-Api-Version", "2"),
		},
		Params: []descriptor.ParamMetadata{
			{Name: "id", Type: reflect.TypeOf(""), Constraint: "required",
				Directives: []directive.Directive{directive.PathParam{Placeholder: "id"}}},
		},
		Return: descriptor.ReturnMetadata{
			Type:       reflect.TypeOf(User{}),
			Directives: []directive.Directive{directive.EnsureSuccess{}, directive.JSONReturn},
		},
	}

Directives never hold per-call state. Everything a hook needs to
remember about a call goes into the request.Call, using its Plan or
SetValue.
*/
package directive
