// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/pvec"
)

// planeVertexLin returns the linearization of the projection of node x
// (with dof ids dofs) onto the auxiliary plane. Three parts contribute:
// the node coordinate itself, the plane center and the plane normal
func (o *Coupling) planeVertexLin(x [3]float64, dofs [3]int) (lin pvec.Vec3) {
	lin = pvec.New3(16)
	n := o.Auxn
	xc := sub(x, o.Auxc)
	xdotn := dot(xc, n)

	// node part: (I - n nT)
	for m := 0; m < 3; m++ {
		for k := 0; k < 3; k++ {
			d := -n[m] * n[k]
			if m == k {
				d += 1.0
			}
			lin[m].Add(dofs[k], d)
		}
	}

	// center part: n nT dc
	for dim := 0; dim < 3; dim++ {
		for k := 0; k < 3; k++ {
			lin[k].AddScaled(o.LinAuxc[dim], n[k]*n[dim])
		}
	}

	// normal part: -(xc.n) dn - (xc.dn) n
	for dim := 0; dim < 3; dim++ {
		lin[dim].AddScaled(o.LinAuxn[dim], -xdotn)
		for k := 0; k < 3; k++ {
			lin[k].AddScaled(o.LinAuxn[dim], -xc[dim]*n[k])
		}
	}
	return
}

// lineclipLin returns the linearization of a lineclip vertex created from
// the slave edge (s0,s1) and the master edge (m0,m1). The vertex position
// is s0 - (Z/N)(s1-s0) with
//   Z = ((s0-m0) x (m1-m0)) . n    N = ((s1-s0) x (m1-m0)) . n
// and the derivative chains through the four source vertex linearizations
// and the aux normal derivative with the Z/N and Z/N^2 weights
func (o *Coupling) lineclipLin(s0, s1, m0, m1 [3]float64, linS0, linS1, linM0, linM1 pvec.Vec3) (lin pvec.Vec3) {
	n := o.Auxn
	zfac := dot(cross(sub(s0, m0), sub(m1, m0)), n)
	nfac := dot(cross(sub(s1, s0), sub(m1, m0)), n)
	if nfac == 0 {
		chk.Panic("lineclip linearization with parallel edges")
	}
	sedge := sub(s1, s0)

	crossdZ1 := cross(sub(m1, m0), n)
	crossdZ2 := cross(n, sub(s0, m0))
	crossdZ3 := cross(sub(s0, m0), sub(m1, m0))
	crossdN1 := cross(sub(m1, m0), n)
	crossdN2 := cross(n, sub(s1, s0))
	crossdN3 := cross(sub(s1, s0), sub(m1, m0))

	znFac := zfac / nfac
	znnFac := zfac / (nfac * nfac)
	nInv := 1.0 / nfac

	lin = pvec.New3(64)
	for k := 0; k < 3; k++ {
		kk := k
		linS0[kk].Each(func(p int, v float64) {
			lin[kk].Add(p, v)
			lin[kk].Add(p, znFac*v)
			for dim := 0; dim < 3; dim++ {
				lin[dim].Add(p, -sedge[dim]*nInv*crossdZ1[kk]*v)
				lin[dim].Add(p, -sedge[dim]*znnFac*crossdN1[kk]*v)
			}
		})
		linS1[kk].Each(func(p int, v float64) {
			lin[kk].Add(p, -znFac*v)
			for dim := 0; dim < 3; dim++ {
				lin[dim].Add(p, sedge[dim]*znnFac*crossdN1[kk]*v)
			}
		})
		linM0[kk].Each(func(p int, v float64) {
			for dim := 0; dim < 3; dim++ {
				lin[dim].Add(p, sedge[dim]*nInv*crossdZ1[kk]*v)
				lin[dim].Add(p, sedge[dim]*nInv*crossdZ2[kk]*v)
				lin[dim].Add(p, -sedge[dim]*znnFac*crossdN2[kk]*v)
			}
		})
		linM1[kk].Each(func(p int, v float64) {
			for dim := 0; dim < 3; dim++ {
				lin[dim].Add(p, -sedge[dim]*nInv*crossdZ2[kk]*v)
				lin[dim].Add(p, sedge[dim]*znnFac*crossdN2[kk]*v)
			}
		})
		o.LinAuxn[kk].Each(func(p int, v float64) {
			for dim := 0; dim < 3; dim++ {
				lin[dim].Add(p, -sedge[dim]*nInv*crossdZ3[kk]*v)
				lin[dim].Add(p, sedge[dim]*znnFac*crossdN3[kk]*v)
			}
		})
	}
	return
}

// centerLin returns the linearization of the node averaged clip polygon
// center, the apex vertex of the fan triangulation
func centerLin(lins []pvec.Vec3) (lin pvec.Vec3) {
	lin = pvec.New3(64)
	inv := 1.0 / float64(len(lins))
	for _, lv := range lins {
		for k := 0; k < 3; k++ {
			lin[k].AddScaled(lv[k], inv)
		}
	}
	return
}
