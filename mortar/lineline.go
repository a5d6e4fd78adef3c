// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"

	"github.com/reginabuehler/4C-sub006/pvec"
)

// LineLineCoupling evaluates the overlap of two (near-)parallel line
// elements, the meshtying setting of line interfaces. Vertices on the
// lines keep identity linearizations; the overlap is decided by the same
// endpoint-side enumeration as the line-on-line clipping
type LineLineCoupling struct {
	Lslave  *Element // slave line element
	Lmaster *Element // master line element

	co      *Coupling // integration context (synthetic plane normal)
	Inter   []*Vertex
	IntLine *IntCell // nil without overlap
}

// NewLineLineCoupling returns a line-line evaluator
func NewLineLineCoupling(lslave, lmaster *Element) *LineLineCoupling {
	if lslave.Shp.Gndim != 1 || lmaster.Shp.Gndim != 1 {
		chk.Panic("line-line coupling needs two line elements")
	}
	return &LineLineCoupling{Lslave: lslave, Lmaster: lmaster}
}

// EvalGeometry checks parallelity, clips the lines and creates the line2
// integration cell. Transversal or non-overlapping pairs leave IntLine nil
func (o *LineLineCoupling) EvalGeometry() (err error) {
	tol := ClipTol * utl.Min(o.Lslave.MinEdgeSize(), o.Lmaster.MinEdgeSize())
	o.IntLine = nil
	o.Inter = o.Inter[:0]

	// integration context: any unit vector orthogonal to the slave line
	// serves as plane normal; the lines carry identity linearizations
	tang := sub(o.Lslave.X[1], o.Lslave.X[0])
	tlen := norm(tang)
	if tlen < tol {
		return chk.Err("slave line element %d has zero length", o.Lslave.Id)
	}
	var trial [3]float64
	if math.Abs(tang[0]) <= math.Abs(tang[1]) && math.Abs(tang[0]) <= math.Abs(tang[2]) {
		trial = [3]float64{1, 0, 0}
	} else if math.Abs(tang[1]) <= math.Abs(tang[2]) {
		trial = [3]float64{0, 1, 0}
	} else {
		trial = [3]float64{0, 0, 1}
	}
	n := cross(tang, trial)
	nlen := norm(n)
	for k := 0; k < 3; k++ {
		n[k] /= nlen
	}
	o.co = &Coupling{Sele: o.Lslave, Mele: o.Lmaster, Auxn: n,
		LinAuxc: pvec.New3(0), LinAuxn: pvec.New3(0),
		linCache: make(map[*Vertex]pvec.Vec3)}

	mkVert := func(ele *Element, i int, vtype VType) *Vertex {
		v := NewVertex(ele.X[i], vtype, []int{ele.Verts[i]}, -1)
		lin := pvec.New3(4)
		for m := 0; m < 3; m++ {
			lin[m].Add(ele.Dofs[i][m], 1)
		}
		o.co.linCache[v] = lin
		return v
	}
	v0 := mkVert(o.Lslave, 0, ProjSlave)
	v1 := mkVert(o.Lslave, 1, ProjSlave)
	e0 := mkVert(o.Lmaster, 0, MasterV)
	e1 := mkVert(o.Lmaster, 1, MasterV)

	// master line must lie along the slave line
	for _, e := range []*Vertex{e0, e1} {
		d := sub(e.X, v0.X)
		l := norm(d)
		if l < tol {
			continue
		}
		sp := math.Abs(dot(tang, d)) / (tlen * l)
		if sp-tol >= 1.0 || sp+tol <= 1.0 {
			return // not collinear: no overlap
		}
	}

	line := sub(v1.X, v0.X)
	e0v0 := dot(sub(e0.X, v0.X), line) >= 0
	e1v0 := dot(sub(e1.X, v0.X), line) >= 0
	e0v1 := -dot(sub(e0.X, v1.X), line) >= 0
	e1v1 := -dot(sub(e1.X, v1.X), line) >= 0
	e0isV0 := norm(sub(e0.X, v0.X)) <= tol
	e0isV1 := norm(sub(e0.X, v1.X)) <= tol
	e1isV0 := norm(sub(e1.X, v0.X)) <= tol
	e1isV1 := norm(sub(e1.X, v1.X)) <= tol

	emitEdge := func(e *Vertex) { o.Inter = append(o.Inter, e) }
	emitLine := func(l *Vertex) { o.Inter = append(o.Inter, l) }
	if err = lineOnLineCases(e0, e1, v0, v1, e0v0, e1v0, e0v1, e1v1, e0isV0, e0isV1, e1isV0, e1isV1, emitEdge, emitLine); err != nil {
		return
	}
	if len(o.Inter) != 2 {
		return
	}
	if norm(sub(o.Inter[1].X, o.Inter[0].X)) < tol {
		return // zero overlap length
	}

	var x [3][3]float64
	for k := 0; k < 3; k++ {
		x[k][0] = o.Inter[0].X[k]
		x[k][1] = o.Inter[1].X[k]
		x[k][2] = -1 // unused
	}
	linv := [3]pvec.Vec3{o.co.linCache[o.Inter[0]], o.co.linCache[o.Inter[1]], pvec.New3(0)}
	o.IntLine = NewIntCell(0, o.Lslave.Id, o.Lmaster.Id, "line2", x, o.co.Auxn, linv, o.co.LinAuxn)
	return
}

// AccumulateDualLine adds the line-line overlap to the slave line
// element's dual coefficient accumulator
func (ig *Integrator) AccumulateDualLine(llc *LineLineCoupling, dc *DualCoeffs) {
	if llc.IntLine == nil {
		return
	}
	cell := llc.IntLine
	dc.Area += cell.A
	ngp := defaultNumGP(cell.Kind, ig.NumGP)
	pts, ws := cellQuadrature(cell.Kind, ngp)
	djac := pvec.New(64)
	cell.DerivJacobian(djac)
	for i, xi := range pts {
		g, ok := evalGaussPoint(llc.co, llc.Lslave, llc.Lmaster, cell, xi, ws[i], djac)
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

// IntegrateLineLine accumulates the D/M/gap contributions of one
// line-line overlap into res. dc provides the slave line's dual
// coefficients when dual shapes are active
func (ig *Integrator) IntegrateLineLine(llc *LineLineCoupling, dc *DualCoeffs, res *Integrals) {
	if llc.IntLine == nil {
		return
	}
	cell := llc.IntLine
	useDual := ig.Dual && dc != nil && dc.Ae != nil
	ngp := defaultNumGP(cell.Kind, ig.NumGP)
	pts, ws := cellQuadrature(cell.Kind, ngp)
	djac := pvec.New(64)
	cell.DerivJacobian(djac)
	for i, xi := range pts {
		g, ok := evalGaussPoint(llc.co, llc.Lslave, llc.Lmaster, cell, xi, ws[i], djac)
		if !ok {
			break
		}
		ig.accumulate(llc.Lslave, llc.Lmaster, g, useDual, dc, res)
	}
}
