// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for the per-attempt HTTP timeout of
// an apix call.
//
// A per-attempt timeout bounds a single HTTP request attempt, so that a
// slow attempt can be abandoned and retried. It is independent of the
// call-level timeout set by the Timeout directive, which bounds the
// whole call including every retry and wait. The engine uses Infinite
// unless it is configured otherwise.
package timeout
