// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"github.com/reginabuehler/4C-sub006/inp"
	"github.com/reginabuehler/4C-sub006/pvec"
)

// Integrals collects the mortar quantities of an interface: the lumped D
// entries per slave node, the M entries per slave/master node pair, the
// weighted gap per slave node and the linearization of each quantity
type Integrals struct {
	D      map[int]float64
	M      map[int]map[int]float64
	Gap    map[int]float64
	LinD   map[int]*pvec.Vec
	LinM   map[int]map[int]*pvec.Vec
	LinGap map[int]*pvec.Vec
}

// NewIntegrals returns an empty accumulator
func NewIntegrals() *Integrals {
	return &Integrals{
		D:      make(map[int]float64),
		M:      make(map[int]map[int]float64),
		Gap:    make(map[int]float64),
		LinD:   make(map[int]*pvec.Vec),
		LinM:   make(map[int]map[int]*pvec.Vec),
		LinGap: make(map[int]*pvec.Vec),
	}
}

func (o *Integrals) linD(snode int) *pvec.Vec {
	v, ok := o.LinD[snode]
	if !ok {
		v = pvec.New(64)
		o.LinD[snode] = v
	}
	return v
}

func (o *Integrals) linM(snode, mnode int) *pvec.Vec {
	row, ok := o.LinM[snode]
	if !ok {
		row = make(map[int]*pvec.Vec)
		o.LinM[snode] = row
	}
	v, ok := row[mnode]
	if !ok {
		v = pvec.New(64)
		row[mnode] = v
	}
	return v
}

func (o *Integrals) linGap(snode int) *pvec.Vec {
	v, ok := o.LinGap[snode]
	if !ok {
		v = pvec.New(64)
		o.LinGap[snode] = v
	}
	return v
}

func (o *Integrals) addM(snode, mnode int, v float64) {
	row, ok := o.M[snode]
	if !ok {
		row = make(map[int]float64)
		o.M[snode] = row
	}
	row[mnode] += v
}

// Integrator evaluates the cell quadratures of an interface
type Integrator struct {
	NumGP    int  // configured Gauss point count; 0 selects the default rule
	Dual     bool // dual shape functions for the multiplier space
	ConsDual bool // carry the full Ae linearization
}

// NewIntegrator returns an integrator configured from the mortar input block
func NewIntegrator(conf *inp.MortarData) *Integrator {
	return &Integrator{NumGP: conf.NumGP, Dual: conf.DualShape, ConsDual: conf.ConsDual}
}

// gpData is the per-Gauss-point evaluation shared by the accumulation
// passes: global point, parent projections, shape values and chains
type gpData struct {
	w      float64
	jac    float64
	djac   *pvec.Vec
	ns, nm []float64   // parent shape values
	dns    []*pvec.Vec // chained slave shape derivative per node
	dnm    []*pvec.Vec
	gap    float64
	dgap   *pvec.Vec
}

// evalGaussPoint projects one cell Gauss point onto both parent elements
// and assembles the derivative chains. ok is false when a projection
// diverged and the cell must be skipped
func evalGaussPoint(cp *Coupling, sele, mele *Element, cell *IntCell, xi []float64, w float64, djac *pvec.Vec) (g gpData, ok bool) {
	val := make([]float64, 3)
	cell.EvalShape(xi, val, nil)
	xgp := make([]float64, 3)
	cell.LocalToGlobal(xi, 0, xgp)
	var xg [3]float64
	copy(xg[:], xgp)

	// derivative of the Gauss point position from the vertex derivatives
	dxgp := pvec.New3(64)
	for v := 0; v < cell.Nverts; v++ {
		for k := 0; k < 3; k++ {
			dxgp[k].AddScaled(cell.LinVert[v][k], val[v])
		}
	}

	sxi, salpha := cp.ProjectPoint(sele, xg)
	if salpha == AlphaDiverged {
		return
	}
	mxi, malpha := cp.ProjectPoint(mele, xg)
	if malpha == AlphaDiverged {
		return
	}
	dsxi := cp.DerivXiGP(sele, sxi, salpha, dxgp)
	dmxi := cp.DerivXiGP(mele, mxi, malpha, dxgp)

	// parent shape values; scratchpads are copied because projections
	// above reuse them
	evalShape := func(ele *Element, xi []float64, dxi [2]*pvec.Vec) (n []float64, dn []*pvec.Vec) {
		ele.Shp.Func(ele.Shp.S, ele.Shp.DSdR, xi, true)
		n = make([]float64, ele.Shp.Nverts)
		dn = make([]*pvec.Vec, ele.Shp.Nverts)
		for j := 0; j < ele.Shp.Nverts; j++ {
			n[j] = ele.Shp.S[j]
			dn[j] = pvec.New(32)
			for a := 0; a < ele.Shp.Gndim; a++ {
				dn[j].AddScaled(dxi[a], ele.Shp.DSdR[j][a])
			}
		}
		return
	}
	ns, dns := evalShape(sele, sxi, dsxi)
	nm, dnm := evalShape(mele, mxi, dmxi)

	// gap along the plane normal and its derivative
	xs := sele.GlobalCoords(sxi)
	xm := mele.GlobalCoords(mxi)
	gap := dot(cp.Auxn, sub(xm, xs))
	dgap := pvec.New(64)
	ts1, ts2 := sele.Metrics(sxi)
	tm1, tm2 := mele.Metrics(mxi)
	for m := 0; m < 3; m++ {
		dgap.AddScaled(cp.LinAuxn[m], xm[m]-xs[m])
		for j := 0; j < sele.Shp.Nverts; j++ {
			dgap.Add(sele.Dofs[j][m], -cp.Auxn[m]*ns[j])
		}
		for j := 0; j < mele.Shp.Nverts; j++ {
			dgap.Add(mele.Dofs[j][m], cp.Auxn[m]*nm[j])
		}
		dgap.AddScaled(dsxi[0], -cp.Auxn[m]*ts1[m])
		dgap.AddScaled(dmxi[0], cp.Auxn[m]*tm1[m])
		if sele.Shp.Gndim > 1 {
			dgap.AddScaled(dsxi[1], -cp.Auxn[m]*ts2[m])
		}
		if mele.Shp.Gndim > 1 {
			dgap.AddScaled(dmxi[1], cp.Auxn[m]*tm2[m])
		}
	}

	g = gpData{w: w, jac: cell.Jacobian(), djac: djac, ns: ns, nm: nm, dns: dns, dnm: dnm, gap: gap, dgap: dgap}
	ok = true
	return
}

// AccumulateDual adds the cells of a surface pair to the slave element's
// dual coefficient accumulator. Must run over all pairs of the slave
// element before Finalize
func (ig *Integrator) AccumulateDual(cp *Coupling, dc *DualCoeffs) {
	for _, cell := range cp.Cells {
		dc.Area += cell.A
		ngp := defaultNumGP(cell.Kind, ig.NumGP)
		pts, ws := cellQuadrature(cell.Kind, ngp)
		djac := pvec.New(64)
		cell.DerivJacobian(djac)
		for i, xi := range pts {
			g, ok := evalGaussPoint(cp, cp.Sele, cp.Mele, cell, xi, ws[i], djac)
			if !ok {
				break
			}
			if ig.ConsDual {
				dc.AddGaussPoint(g.ns, g.w, g.jac, g.djac, g.dns)
			} else {
				dc.AddGaussPoint(g.ns, g.w, g.jac, nil, nil)
			}
		}
	}
}

// IntegrateCoupling accumulates D, M and the weighted gap of one surface
// pair into res. dc provides the dual coefficients of the slave element
// when dual shapes are active; a nil or unfinalized dc falls back to
// standard shapes
func (ig *Integrator) IntegrateCoupling(cp *Coupling, dc *DualCoeffs, res *Integrals) {
	sele, mele := cp.Sele, cp.Mele
	useDual := ig.Dual && dc != nil && dc.Ae != nil
	for _, cell := range cp.Cells {
		ngp := defaultNumGP(cell.Kind, ig.NumGP)
		pts, ws := cellQuadrature(cell.Kind, ngp)
		djac := pvec.New(64)
		cell.DerivJacobian(djac)
		for i, xi := range pts {
			g, ok := evalGaussPoint(cp, sele, mele, cell, xi, ws[i], djac)
			if !ok {
				break
			}
			ig.accumulate(sele, mele, g, useDual, dc, res)
		}
	}
}

// accumulate adds one Gauss point to the interface integrals
func (ig *Integrator) accumulate(sele, mele *Element, g gpData, useDual bool, dc *DualCoeffs, res *Integrals) {
	nsv := sele.Shp.Nverts
	nmv := mele.Shp.Nverts

	// multiplier test functions: dual or standard
	phi := make([]float64, nsv)
	dphi := make([]*pvec.Vec, nsv)
	for k := 0; k < nsv; k++ {
		dphi[k] = pvec.New(64)
	}
	if useDual {
		for k := 0; k < nsv; k++ {
			for j := 0; j < nsv; j++ {
				phi[k] += dc.Ae.At(k, j) * g.ns[j]
				dphi[k].AddScaled(g.dns[j], dc.Ae.At(k, j))
			}
		}
		if ig.ConsDual {
			for dof := range dc.DDe {
				dAe := dc.DerivAe(dof)
				if dAe == nil {
					continue
				}
				for k := 0; k < nsv; k++ {
					s := 0.0
					for j := 0; j < nsv; j++ {
						s += dAe.At(k, j) * g.ns[j]
					}
					dphi[k].Add(dof, s)
				}
			}
		}
	} else {
		for k := 0; k < nsv; k++ {
			phi[k] = g.ns[k]
			dphi[k].AddScaled(g.dns[k], 1)
		}
	}

	wj := g.w * g.jac
	for k := 0; k < nsv; k++ {
		sn := sele.Verts[k]
		res.D[sn] += wj * phi[k]

		ld := res.linD(sn)
		ld.AddScaled(g.djac, g.w*phi[k])
		ld.AddScaled(dphi[k], wj)

		lg := res.linGap(sn)
		res.Gap[sn] += wj * phi[k] * g.gap
		lg.AddScaled(g.djac, g.w*phi[k]*g.gap)
		lg.AddScaled(dphi[k], wj*g.gap)
		lg.AddScaled(g.dgap, wj*phi[k])

		for l := 0; l < nmv; l++ {
			mn := mele.Verts[l]
			res.addM(sn, mn, wj*phi[k]*g.nm[l])
			lm := res.linM(sn, mn)
			lm.AddScaled(g.djac, g.w*phi[k]*g.nm[l])
			lm.AddScaled(dphi[k], wj*g.nm[l])
			lm.AddScaled(g.dnm[l], wj*phi[k])
		}
	}
}

// IntegrateLine accumulates the D/M/gap contributions of one
// line-to-surface overlap into res. Dual shapes do not apply here;
// standard line shape functions weight the multiplier
func (ig *Integrator) IntegrateLine(lc *LineCoupling, res *Integrals) {
	if lc.IntLine == nil {
		return
	}
	cell := lc.IntLine
	ngp := defaultNumGP(cell.Kind, ig.NumGP)
	pts, ws := cellQuadrature(cell.Kind, ngp)
	djac := pvec.New(64)
	cell.DerivJacobian(djac)
	for i, xi := range pts {
		g, ok := evalGaussPoint(lc.co, lc.Lele, lc.Sele, cell, xi, ws[i], djac)
		if !ok {
			break
		}
		ig.accumulate(lc.Lele, lc.Sele, g, false, nil, res)
	}
}
