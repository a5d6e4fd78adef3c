// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/cardio"
	"github.com/reginabuehler/4C-sub006/dmap"
	"github.com/reginabuehler/4C-sub006/spm"
)

// CardioField adapts a 0D manager to the Field contract so lumped
// cardiovascular models enter the monolithic system as one more block
// row/column. The dense tangent of the manager is scattered into a sparse
// block after each evaluation
type CardioField struct {
	name string
	mgr  *cardio.Manager
	m    *dmap.Map
	kb   *spm.Matrix
	rhs  *dmap.Vector
}

// NewCardioField wraps a 0D manager; base is the first global dof id of
// the 0D block
func NewCardioField(name string, mgr *cardio.Manager, base int) (o *CardioField) {
	o = &CardioField{name: name, mgr: mgr}
	o.m = dmap.NewContiguousMap(mgr.Ndof, base)
	o.rhs = dmap.NewVector(o.m)
	return
}

// Manager gives access to the wrapped 0D integrator
func (o *CardioField) Manager() *cardio.Manager { return o.mgr }

func (o *CardioField) Name() string              { return o.name }
func (o *CardioField) Map() *dmap.Map            { return o.m }
func (o *CardioField) DbcMap() *dmap.Map         { return nil }
func (o *CardioField) SystemMatrix() *spm.Matrix { return o.kb }
func (o *CardioField) RHS() *dmap.Vector         { return o.rhs }

func (o *CardioField) State() *dmap.Vector {
	v, _ := dmap.NewVectorFromSlice(o.m, o.mgr.Ynp)
	return v
}

func (o *CardioField) CouplingBlock(other string) *spm.Matrix { return nil }

func (o *CardioField) PrepareTimeStep(t, dt float64) (err error) { return }

// Evaluate runs the 0D residual/tangent evaluation and refreshes the
// sparse copy of the tangent
func (o *CardioField) Evaluate(t, dt float64, firstIt bool) (err error) {
	o.mgr.EvaluateForceStiff(t, dt, true)
	n := o.mgr.Ndof
	base := o.m.Base()
	o.kb = spm.NewMatrix(o.m, n, false, false)
	for i := 0; i < n; i++ {
		o.rhs.V[i] = -o.mgr.ResM[i]
		for j := 0; j < n; j++ {
			v := o.mgr.K.At(i, j)
			if v == 0 {
				continue
			}
			if err = o.kb.AssembleValue(v, base+i, base+j); err != nil {
				return
			}
		}
	}
	return o.kb.Complete(o.m, o.m)
}

func (o *CardioField) UpdateIter(inc *dmap.Vector) (err error) {
	o.mgr.UpdateDof(inc.V)
	return
}

func (o *CardioField) Update(t, dt float64) (err error) {
	o.mgr.UpdateTimeStep()
	return
}

// WriteState flattens the manager restart data into one slice:
// [time cycleError isPeriodic yn vn dfn fn ytn]
func (o *CardioField) WriteState() []float64 {
	s := o.mgr.SaveState()
	n := len(s.Yn)
	out := make([]float64, 0, 3+5*n)
	per := 0.0
	if s.IsPeriodic {
		per = 1
	}
	out = append(out, s.Time, s.CycleError, per)
	out = append(out, s.Yn...)
	out = append(out, s.Vn...)
	out = append(out, s.DfN...)
	out = append(out, s.Fn...)
	out = append(out, s.YTn...)
	return out
}

func (o *CardioField) ReadState(vals []float64) (err error) {
	n := o.mgr.Ndof
	if len(vals) != 3+5*n {
		return chk.Err("field %q: state has %d values but %d are expected", o.name, len(vals), 3+5*n)
	}
	s := &cardio.State{
		Time:       vals[0],
		CycleError: vals[1],
		IsPeriodic: vals[2] != 0,
		Yn:         vals[3 : 3+n],
		Vn:         vals[3+n : 3+2*n],
		DfN:        vals[3+2*n : 3+3*n],
		Fn:         vals[3+3*n : 3+4*n],
		YTn:        vals[3+4*n : 3+5*n],
	}
	return o.mgr.LoadState(s)
}
