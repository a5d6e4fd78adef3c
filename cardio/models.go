// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cardio implements lumped-parameter (0D) cardiovascular flow
// models and their one-step generalized midpoint time integration. The
// unknowns of a model are pressures and fluxes of a compartment
// network; residual contributions split into a part under the time
// derivative (df) and a stiffness part (f), so that the discrete
// residual at the midpoint reads
//
//	r_m = (df_np - df_n)/dt + theta*f_np + (1-theta)*f_n
package cardio

import (
	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"

	"github.com/reginabuehler/4C-sub006/inp"
)

// Model defines lumped-parameter compartment models
type Model interface {
	Init(conf *inp.CardioData) error // Init initialises the model parameters
	NumDof() int                     // NumDof returns the number of unknowns
	InitState(y, v []float64)        // InitState fills initial unknowns and compartment volumes
	Respiratory() string             // Respiratory returns the respiratory sub-model kind

	// Evaluate computes the end-point residual parts df and f and the
	// compartment volumes v at time t, all as functions of the
	// end-point unknowns y. If K is non-nil it receives the tangent
	// d(r_m)/dy_np including the 1/dt and theta scalings. Nil slices
	// skip the corresponding output
	Evaluate(t, dt, theta float64, K *mat.Dense, df, f, v, y []float64)
}

// New returns a 0D model
func New(kind string) (model Model, err error) {
	allocator, ok := allocators[kind]
	if !ok {
		return nil, chk.Err("0D model %q is not available in cardio database", kind)
	}
	return allocator(), nil
}

// allocators holds all available models
var allocators = map[string]func() Model{}
