// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient sorts errors from HTTP request attempts into
// transience categories. The retry policies use it to decide whether a
// failed attempt is worth repeating, and the engine uses it to report
// whether an attempt was abandoned because of a timeout or because the
// caller gave up.
//
// Package transient depends only on the standard library, so it can be
// imported on its own without pulling in the rest of apix.
package transient
