// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package descriptor

import (
	"sync"

	"github.com/gogama/apix/apierr"
)

// A Registry builds each operation once and publishes the result,
// keyed by operation name. Concurrent first loads of the same name
// build it exactly once; every caller gets the same *Operation, or the
// same error.
//
// The zero value is an empty Registry ready to use. A Registry must not
// be copied after first use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	once sync.Once
	op   *Operation
	err  error
}

// Load returns the operation named md.Name, building it from md on
// first use. Later loads return the first result and ignore md.
func (r *Registry) Load(md Metadata) (*Operation, error) {
	return r.LoadFunc(md.Name, func() (Metadata, error) { return md, nil })
}

// LoadFunc returns the operation named name. On first use it calls
// discover to obtain the metadata and builds the operation. discover is
// called at most once per name, even when it fails.
func (r *Registry) LoadFunc(name string, discover func() (Metadata, error)) (*Operation, error) {
	if discover == nil {
		panic("apix/descriptor: nil discover func")
	}
	e := r.entry(name)
	e.once.Do(func() {
		md, err := discover()
		if err != nil {
			e.err = apierr.Wrap(apierr.Config, err, "discover operation").WithOp(name)
			return
		}
		if md.Name != name {
			e.err = apierr.New(apierr.Config, "discovered operation is named %q", md.Name).WithOp(name)
			return
		}
		e.op, e.err = Build(md)
	})
	return e.op, e.err
}

// Len returns the number of names loaded so far, including failed
// loads.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) entry(name string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[string]*entry)
	}
	e, ok := r.entries[name]
	if !ok {
		e = &entry{}
		r.entries[name] = e
	}
	return e
}
