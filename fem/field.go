// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"

	"github.com/reginabuehler/4C-sub006/dmap"
	"github.com/reginabuehler/4C-sub006/spm"
)

// Field is one single-physics block of the monolithic system. A field owns
// a contiguous set of global dof ids (its map), produces its tangent block
// and right-hand side, and consumes the increment extracted for it after
// each linear solve. The right-hand side carries the negative residual
type Field interface {
	Name() string
	Map() *dmap.Map    // row map of the field block
	DbcMap() *dmap.Map // essential (Dirichlet) rows; may be nil

	State() *dmap.Vector // current dof values over Map()

	PrepareTimeStep(t, dt float64) error
	Evaluate(t, dt float64, firstIt bool) error
	SystemMatrix() *spm.Matrix               // diagonal block, completed
	CouplingBlock(other string) *spm.Matrix  // off-diagonal block towards another field; may be nil
	RHS() *dmap.Vector                       // negative residual over Map()
	UpdateIter(inc *dmap.Vector) error       // apply one Newton increment
	Update(t, dt float64) error              // accept the time step

	// restart and divergence roll-back
	WriteState() []float64
	ReadState(vals []float64) error
}

// AlgebraicField is a linear field assembled from element evaluators: the
// tangent K and reference load are built once, the residual at state y is
// K·y − load·mult(t). It serves structural/fluid blocks whose element
// routines deliver constant local matrices
type AlgebraicField struct {
	name string
	m    *dmap.Map
	dbc  *dmap.Map
	evs  []Evaluator
	mult dbf.T // load multiplier; nil => 1

	K    *spm.Matrix
	load *dmap.Vector
	coup map[string]*spm.Matrix

	Y   *dmap.Vector // current state
	Yn  *dmap.Vector // state at the last accepted step
	rhs *dmap.Vector
}

// NewAlgebraicField creates a linear field over the given map
func NewAlgebraicField(name string, m, dbc *dmap.Map, evs []Evaluator, mult dbf.T) (o *AlgebraicField) {
	o = &AlgebraicField{name: name, m: m, dbc: dbc, evs: evs, mult: mult}
	o.coup = make(map[string]*spm.Matrix)
	o.Y = dmap.NewVector(m)
	o.Yn = dmap.NewVector(m)
	o.rhs = dmap.NewVector(m)
	return
}

// SetCouplingBlock attaches a completed off-diagonal block towards another
// field. The block's rows follow this field's map
func (o *AlgebraicField) SetCouplingBlock(other string, b *spm.Matrix) { o.coup[other] = b }

func (o *AlgebraicField) Name() string                          { return o.name }
func (o *AlgebraicField) Map() *dmap.Map                        { return o.m }
func (o *AlgebraicField) DbcMap() *dmap.Map                     { return o.dbc }
func (o *AlgebraicField) SystemMatrix() *spm.Matrix             { return o.K }
func (o *AlgebraicField) CouplingBlock(other string) *spm.Matrix { return o.coup[other] }
func (o *AlgebraicField) RHS() *dmap.Vector                     { return o.rhs }
func (o *AlgebraicField) State() *dmap.Vector                   { return o.Y }

func (o *AlgebraicField) PrepareTimeStep(t, dt float64) (err error) { return }

// Evaluate assembles the tangent on first use and refreshes the negative
// residual for the current state
func (o *AlgebraicField) Evaluate(t, dt float64, firstIt bool) (err error) {
	if o.K == nil {
		o.K = spm.NewMatrix(o.m, 16, false, false)
		o.load = dmap.NewVector(o.m)
		err = Assemble(o.evs, ActBoth, func(lm []int, ke [][]float64, fe []float64) (e error) {
			for i, rg := range lm {
				if !o.m.Has(rg) {
					continue
				}
				if e = o.load.SumIntoGlobalValues([]int{rg}, []float64{fe[i]}); e != nil {
					return
				}
				for j, cg := range lm {
					if ke[i][j] == 0 {
						continue
					}
					if e = o.K.AssembleValue(ke[i][j], rg, cg); e != nil {
						return
					}
				}
			}
			return
		})
		if err != nil {
			return
		}
		if err = o.K.Complete(o.m, o.m); err != nil {
			return
		}
	}

	// rhs = load*mult - K*y
	s := 1.0
	if o.mult != nil {
		s = o.mult.F(t, nil)
	}
	n := o.m.NumMyElements()
	ky := make([]float64, n)
	if err = o.K.MatVec(ky, o.Y.V); err != nil {
		return
	}
	for l := 0; l < n; l++ {
		o.rhs.V[l] = s*o.load.V[l] - ky[l]
	}
	return
}

func (o *AlgebraicField) UpdateIter(inc *dmap.Vector) (err error) {
	return o.Y.Update(1, inc, 1)
}

func (o *AlgebraicField) Update(t, dt float64) (err error) {
	copy(o.Yn.V, o.Y.V)
	return
}

func (o *AlgebraicField) WriteState() []float64 {
	n := len(o.Y.V)
	s := make([]float64, 2*n)
	copy(s[:n], o.Y.V)
	copy(s[n:], o.Yn.V)
	return s
}

func (o *AlgebraicField) ReadState(vals []float64) (err error) {
	n := len(o.Y.V)
	if len(vals) != 2*n {
		return chk.Err("field %q: state has %d values but %d are expected", o.name, len(vals), 2*n)
	}
	copy(o.Y.V, vals[:n])
	copy(o.Yn.V, vals[n:])
	return
}
