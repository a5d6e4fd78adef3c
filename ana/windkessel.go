// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements analytical solutions for verification
package ana

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// WindkesselDecay computes the free pressure relaxation of a windkessel
// compartment with zero in-flux:
//
//	C dp/dt + (p - p_ref)/R = 0
//
// whose solution is the exponential decay towards the reference pressure
//
//	p(t) = p_ref + (p0 - p_ref)・exp(-t/(R・C))
type WindkesselDecay struct {
	C    float64 // compliance
	R    float64 // peripheral resistance
	Pref float64 // reference (venous) pressure
	P0   float64 // initial pressure
}

// Init initialises this structure
func (o *WindkesselDecay) Init(C, R, pref, p0 float64) {
	o.C = C
	o.R = R
	o.Pref = pref
	o.P0 = p0
}

// P returns the pressure at time t
func (o WindkesselDecay) P(t float64) float64 {
	return o.Pref + (o.P0-o.Pref)*math.Exp(-t/(o.R*o.C))
}

// CheckP compares a computed pressure history against the analytical
// solution
func (o WindkesselDecay) CheckP(tst *testing.T, tvals, pvals []float64, tol float64) {
	chk.IntAssert(len(pvals), len(tvals))
	for i, t := range tvals {
		chk.Scalar(tst, io.Sf("p(%g)", t), tol, pvals[i], o.P(t))
	}
}
