// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package apix is a declarative HTTP-API client engine. Describe an HTTP
operation with directives, and the engine turns each call of the
operation into an HTTP request, sends it, and materializes a typed
result.

Describe an operation with descriptor.Metadata, and build it once:

	op, err := engine.Load(descriptor.Metadata{
		Name:      "users.get",
		Interface: []directive.Directive{directive.Base("https://api.example.com/v1")},
		Method:    []directive.Directive{directive.Get("users/{id}"), directive.Timeout{Duration: 5 * time.Second}},
		Params: []descriptor.ParamMetadata{
			{Name: "id", Type: reflect.TypeOf(""), Constraint: "required",
				Directives: []directive.Directive{directive.PathParam{Placeholder: "id"}}},
		},
		Return: descriptor.ReturnMetadata{
			Type:       reflect.TypeOf(User{}),
			Directives: []directive.Directive{directive.EnsureSuccess{}, directive.JSONReturn},
		},
	})

Then call it, either untyped through Engine.Invoke, or typed:

	engine := &apix.Engine{}
	user, err := apix.Call[User](ctx, engine, op, "42")

Every error is an *apierr.Error whose Kind tells which stage of the call
failed.

For control over how the engine sends HTTP requests and receives HTTP
responses, use a custom HTTPDoer, for example one made by NewHTTPDoer.
For retries, set a retry policy from package retry:

	engine := &apix.Engine{
		RetryPolicy: retry.DefaultPolicy,
	}

To cache responses, set a cache provider from cache/memory or
cache/redis, and attach a directive.Cache to the operations whose
responses may be reused:

	provider, err := memory.New(memory.Config{SweepInterval: time.Minute})
	engine := &apix.Engine{
		Cache: provider,
	}

To hook into every call, install a handler into the appropriate handler
chain:

	handlers := &apix.HandlerGroup{}
	handlers.PushBack(apix.BeforeRequest, apix.RequestIDHandler())
	handlers.PushBack(apix.AfterCallEnd, apix.LogHandler(logger))
	engine := &apix.Engine{
		Handlers: handlers,
	}
*/
package apix
