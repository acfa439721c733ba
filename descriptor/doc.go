// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package descriptor builds the immutable description of an apix
// operation from the metadata supplied by a dispatcher.
//
// Build resolves the directives of every scope into their execution
// order, classifies the return type and reports every configuration
// problem it can find, so that a malformed operation fails when it is
// registered instead of in the middle of traffic. A Registry builds each
// operation once and publishes the result to every later caller.
package descriptor
