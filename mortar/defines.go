// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mortar implements the interface geometry and integration kernel
// for non-matching mesh coupling. Slave and master surface discretizations
// are intersected on an auxiliary plane, yielding integration cells over
// which the mortar matrices D and M and their directional derivatives with
// respect to all contributing dofs are accumulated.
package mortar

// geometric tolerances of the clipping and projection machinery
const (
	IntTol  = 0.0   // integration cutoff on cell area fraction
	MaxIter = 10    // cap for local Newton projections
	ConvTol = 1e-12 // convergence tolerance for local Newton projections
	ProjTol = 0.05  // parameter-space tolerance for projection inclusion
	ProjLim = 1e-8  // lower bound on projection denominators
	ClipTol = 1e-8  // relative clipping tolerance (scaled by min edge)
	IntLim  = 1e-12 // absolute lower bound on cell area / overlap
)

// AlphaDiverged is the sentinel returned by projections whose local Newton
// iteration failed. Callers must check against it and skip the pair
const AlphaDiverged = 1e12
