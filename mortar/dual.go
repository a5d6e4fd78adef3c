// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/pvec"
)

// DualCoeffs accumulates the biorthogonality system of one slave element:
//   de[j]   += w |J| N_j        me[j][k] += w |J| N_j N_k
// over all integration cells touching the element, and yields the dual
// coefficient matrix Ae = De Me^-1 plus its directional derivative
//   dAe = (dDe - Ae dMe) Me^-1
type DualCoeffs struct {
	Nv   int        // number of slave element nodes
	De   []float64  // diagonal entries
	Me   *mat.Dense // mass system
	Ae   *mat.Dense // dual coefficients, nil until Finalize
	Area float64    // accumulated overlap area

	// derivative accumulators keyed by dof (consistent duals only)
	DDe map[int][]float64
	DMe map[int]*mat.Dense

	meInv *mat.Dense
	dAe   map[int]*mat.Dense
}

// NewDualCoeffs returns an accumulator for a slave element with nv nodes
func NewDualCoeffs(nv int) *DualCoeffs {
	return &DualCoeffs{
		Nv:  nv,
		De:  make([]float64, nv),
		Me:  mat.NewDense(nv, nv, nil),
		DDe: make(map[int][]float64),
		DMe: make(map[int]*mat.Dense),
	}
}

// AddGaussPoint accumulates one integration point: slave shape values ns,
// weight times Jacobian wjac, and optionally the derivative d(w |J| N_j)
// assembled from the Jacobian derivative djac and the shape derivative
// chain dns[j] (nil to skip the consistent derivative)
func (o *DualCoeffs) AddGaussPoint(ns []float64, w, jac float64, djac *pvec.Vec, dns []*pvec.Vec) {
	for j := 0; j < o.Nv; j++ {
		o.De[j] += w * jac * ns[j]
		for k := 0; k < o.Nv; k++ {
			o.Me.Set(j, k, o.Me.At(j, k)+w*jac*ns[j]*ns[k])
		}
	}
	if djac == nil {
		return
	}
	addD := func(p int, v float64) {
		dde, ok := o.DDe[p]
		if !ok {
			dde = make([]float64, o.Nv)
			o.DDe[p] = dde
			o.DMe[p] = mat.NewDense(o.Nv, o.Nv, nil)
		}
		dme := o.DMe[p]
		for j := 0; j < o.Nv; j++ {
			dde[j] += w * v * ns[j]
			for k := 0; k < o.Nv; k++ {
				dme.Set(j, k, dme.At(j, k)+w*v*ns[j]*ns[k])
			}
		}
	}
	djac.Each(addD)
	if dns == nil {
		return
	}
	for j := 0; j < o.Nv; j++ {
		jj := j
		dns[jj].Each(func(p int, v float64) {
			dde, ok := o.DDe[p]
			if !ok {
				dde = make([]float64, o.Nv)
				o.DDe[p] = dde
				o.DMe[p] = mat.NewDense(o.Nv, o.Nv, nil)
			}
			dme := o.DMe[p]
			dde[jj] += w * jac * v
			for k := 0; k < o.Nv; k++ {
				// product rule on N_j N_k
				dme.Set(jj, k, dme.At(jj, k)+w*jac*v*ns[k])
				dme.Set(k, jj, dme.At(k, jj)+w*jac*ns[k]*v)
			}
		})
	}
}

// Finalize inverts the accumulated system. Elements whose total overlap
// area is below the cutoff keep Ae nil and are skipped by the integrator
func (o *DualCoeffs) Finalize() (err error) {
	if o.Area < IntLim {
		return
	}
	o.meInv = mat.NewDense(o.Nv, o.Nv, nil)
	if err = o.meInv.Inverse(o.Me); err != nil {
		return chk.Err("dual shape system is singular: %v", err)
	}
	o.Ae = mat.NewDense(o.Nv, o.Nv, nil)
	o.Ae.Mul(diagDense(o.De), o.meInv)
	o.dAe = make(map[int]*mat.Dense)
	return
}

// DerivAe returns dAe for one dof, or nil when the dof does not
// contribute. Results are cached
func (o *DualCoeffs) DerivAe(dof int) *mat.Dense {
	if o.Ae == nil {
		return nil
	}
	if d, ok := o.dAe[dof]; ok {
		return d
	}
	dde, ok := o.DDe[dof]
	if !ok {
		return nil
	}
	nv := o.Nv
	tmp := mat.NewDense(nv, nv, nil)
	tmp.Mul(o.Ae, o.DMe[dof])
	tmp.Sub(diagDense(dde), tmp)
	d := mat.NewDense(nv, nv, nil)
	d.Mul(tmp, o.meInv)
	o.dAe[dof] = d
	return d
}

func diagDense(d []float64) *mat.Dense {
	n := len(d)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, d[i])
	}
	return m
}
