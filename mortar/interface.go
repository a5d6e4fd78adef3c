// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"sort"

	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/dmap"
	"github.com/reginabuehler/4C-sub006/inp"
	"github.com/reginabuehler/4C-sub006/pvec"
	"github.com/reginabuehler/4C-sub006/spm"
)

// Interface is one mortar coupling surface: a slave and a master side of
// interface elements. Evaluate runs the geometric pipeline over all
// element pairs and accumulates the interface integrals
type Interface struct {
	Id   int
	Conf *inp.MortarData

	SlaveEles  []*Element
	MasterEles []*Element

	// per slave node state
	Normals    map[int][3]float64 // averaged outward unit normal
	LinNormals map[int]pvec.Vec3  // its derivative

	Res   *Integrals          // interface integrals after Evaluate
	Duals map[int]*DualCoeffs // dual coefficients per slave element id

	intg *Integrator
}

// NewInterface returns an empty interface
func NewInterface(id int, conf *inp.MortarData) *Interface {
	return &Interface{
		Id:         id,
		Conf:       conf,
		Normals:    make(map[int][3]float64),
		LinNormals: make(map[int]pvec.Vec3),
		intg:       NewIntegrator(conf),
	}
}

// AddSlave appends a slave side element
func (o *Interface) AddSlave(e *Element) { o.SlaveEles = append(o.SlaveEles, e) }

// AddMaster appends a master side element
func (o *Interface) AddMaster(e *Element) { o.MasterEles = append(o.MasterEles, e) }

// SlaveNodeIds returns the sorted ids of all slave side nodes
func (o *Interface) SlaveNodeIds() (ids []int) {
	seen := make(map[int]bool)
	for _, e := range o.SlaveEles {
		for _, n := range e.Verts {
			if !seen[n] {
				seen[n] = true
				ids = append(ids, n)
			}
		}
	}
	sort.Ints(ids)
	return
}

// ComputeNodalNormals averages the element unit normals at the element
// midpoints over all slave elements adjacent to each slave node, then
// normalizes. Derivatives chain through the per-element normal derivative
// and the normalization
func (o *Interface) ComputeNodalNormals() {
	sum := make(map[int][3]float64)
	linSum := make(map[int]pvec.Vec3)
	for _, e := range o.SlaveEles {
		if e.Shp.Gndim != 2 {
			continue // line elements take their normal from the surface side
		}
		n, dn := e.UnitNormalDeriv(e.CenterXi(), 8*e.Shp.Nverts)
		for _, node := range e.Verts {
			s := sum[node]
			for k := 0; k < 3; k++ {
				s[k] += n[k]
			}
			sum[node] = s
			ls, ok := linSum[node]
			if !ok {
				ls = pvec.New3(8 * e.Shp.Nverts)
				linSum[node] = ls
			}
			for k := 0; k < 3; k++ {
				ls[k].AddScaled(dn[k], 1)
			}
		}
	}
	for node, s := range sum {
		l := norm(s)
		if l < ProjLim {
			chk.Panic("interface %d: zero averaged normal at node %d", o.Id, node)
		}
		var n [3]float64
		for k := 0; k < 3; k++ {
			n[k] = s[k] / l
		}
		o.Normals[node] = n
		ls := linSum[node]
		ln := pvec.New3(32)
		for m := 0; m < 3; m++ {
			ln[m].AddScaled(ls[m], 1.0/l)
			for j := 0; j < 3; j++ {
				ln[m].AddScaled(ls[j], -n[m]*n[j]/l)
			}
		}
		o.LinNormals[node] = ln
	}
}

// Evaluate runs the geometry and integration over all slave/master pairs.
// Degenerate or non-overlapping pairs contribute nothing
func (o *Interface) Evaluate() (err error) {
	o.ComputeNodalNormals()
	o.Res = NewIntegrals()
	o.Duals = make(map[int]*DualCoeffs)

	// surface pairs: geometry first, dual accumulation second, then D/M
	type pair struct {
		cp   *Coupling
		lc   *LineCoupling
		llc  *LineLineCoupling
		sele *Element
	}
	var pairs []pair
	for _, se := range o.SlaveEles {
		for _, me := range o.MasterEles {
			if se.Shp.Gndim == 1 {
				if me.Shp.Gndim == 1 {
					llc := NewLineLineCoupling(se, me)
					if err = llc.EvalGeometry(); err != nil {
						return
					}
					if llc.IntLine != nil {
						pairs = append(pairs, pair{llc: llc, sele: se})
					}
					continue
				}
				lc := NewLineCoupling(se, me)
				if err = lc.EvalGeometry(); err != nil {
					return
				}
				if lc.IntLine != nil {
					pairs = append(pairs, pair{lc: lc, sele: se})
				}
				continue
			}
			cp := NewCoupling(se, me)
			if err = cp.EvalGeometry(); err != nil {
				return
			}
			if len(cp.Cells) > 0 {
				pairs = append(pairs, pair{cp: cp, sele: se})
			}
		}
	}

	if o.Conf.DualShape {
		for _, p := range pairs {
			if p.lc != nil {
				continue // line-to-surface pairs use standard shapes
			}
			dc, ok := o.Duals[p.sele.Id]
			if !ok {
				dc = NewDualCoeffs(p.sele.Shp.Nverts)
				o.Duals[p.sele.Id] = dc
			}
			if p.cp != nil {
				o.intg.AccumulateDual(p.cp, dc)
			} else {
				o.intg.AccumulateDualLine(p.llc, dc)
			}
		}
		for id, dc := range o.Duals {
			if err = dc.Finalize(); err != nil {
				return chk.Err("interface %d, slave element %d: %v", o.Id, id, err)
			}
		}
	}

	for _, p := range pairs {
		switch {
		case p.cp != nil:
			o.intg.IntegrateCoupling(p.cp, o.Duals[p.sele.Id], o.Res)
		case p.llc != nil:
			o.intg.IntegrateLineLine(p.llc, o.Duals[p.sele.Id], o.Res)
		default:
			o.intg.IntegrateLine(p.lc, o.Res)
		}
	}
	return
}

// AssembleDM assembles the interface integrals into sparse matrices. The
// row of each contribution is the multiplier dof of the slave node
// (rowDof); D columns are slave displacement dofs (scolDof), M columns
// master displacement dofs (mcolDof)
func (o *Interface) AssembleDM(D, M *spm.Matrix, rowDof, scolDof, mcolDof func(node int) int) (err error) {
	for sn, v := range o.Res.D {
		if err = D.AssembleValue(v, rowDof(sn), scolDof(sn)); err != nil {
			return
		}
	}
	for sn, row := range o.Res.M {
		for mn, v := range row {
			if err = M.AssembleValue(v, rowDof(sn), mcolDof(mn)); err != nil {
				return
			}
		}
	}
	return
}

// AssembleGap adds the weighted gap into a distributed vector, one entry
// per slave node multiplier dof
func (o *Interface) AssembleGap(g *dmap.Vector, rowDof func(node int) int) (err error) {
	for sn, v := range o.Res.Gap {
		if err = g.SumIntoGlobalValues([]int{rowDof(sn)}, []float64{v}); err != nil {
			return
		}
	}
	return
}
