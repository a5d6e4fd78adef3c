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

// LineCoupling evaluates the overlap of one slave line element against one
// surface element: both are brought onto the surface element's auxiliary
// plane, the line is clipped against the surface polygon and a line2
// integration cell with full vertex linearizations is produced
type LineCoupling struct {
	Lele *Element // slave line element (lin2)
	Sele *Element // surface element owning the auxiliary plane

	co          *Coupling // plane machinery bound to the surface element
	SlaveVerts  []*Vertex // projected line endpoints
	MasterVerts []*Vertex // projected surface polygon
	Inter       []*Vertex // intersection vertices (at most two)
	IntLine     *IntCell  // resulting integration line, nil without overlap

	doneBefore map[[2]int]bool // processed parallel master edges
}

// NewLineCoupling returns a line-to-surface evaluator
func NewLineCoupling(lele, sele *Element) *LineCoupling {
	if lele.Shp.Gndim != 1 {
		chk.Panic("line coupling needs a line element, got %q", lele.Shp.Type)
	}
	return &LineCoupling{Lele: lele, Sele: sele, doneBefore: make(map[[2]int]bool)}
}

// Auxn returns the auxiliary plane unit normal (surface element's)
func (o *LineCoupling) Auxn() [3]float64 { return o.co.Auxn }

// LinVertex returns the linearization of an emitted intersection vertex
func (o *LineCoupling) LinVertex(v *Vertex) pvec.Vec3 { return o.co.linCache[v] }

// EvalGeometry runs plane construction, projection, clipping and
// integration line creation. Degenerate overlaps leave IntLine nil
func (o *LineCoupling) EvalGeometry() (err error) {
	o.co = NewCoupling(o.Sele, o.Sele)
	o.co.BuildAuxPlane()

	// project line endpoints and surface nodes onto the plane
	o.SlaveVerts = o.SlaveVerts[:0]
	o.MasterVerts = o.MasterVerts[:0]
	for i := 0; i < 2; i++ {
		v := NewVertex(o.co.planeProject(o.Lele.X[i]), ProjSlave, []int{o.Lele.Verts[i]}, -1)
		o.SlaveVerts = append(o.SlaveVerts, v)
		o.co.linCache[v] = o.co.planeVertexLin(o.Lele.X[i], o.Lele.Dofs[i])
	}
	for i := 0; i < o.Sele.Shp.Nverts; i++ {
		v := NewVertex(o.co.planeProject(o.Sele.X[i]), MasterV, []int{o.Sele.Verts[i]}, -1)
		o.MasterVerts = append(o.MasterVerts, v)
		o.co.linCache[v] = o.co.planeVertexLin(o.Sele.X[i], o.Sele.Dofs[i])
	}
	o.co.orientCCW(o.MasterVerts)

	if err = o.lineClipping(); err != nil {
		return
	}
	o.createIntLine()
	return
}

// checkLineOnLine tells whether the master edge (e0,e1) lies along the
// slave line (v0,v1) within the relative clipping tolerance
func (o *LineCoupling) checkLineOnLine(e1, e0, v1, v0 *Vertex) bool {
	tol := ClipTol * utl.Min(o.Lele.MinEdgeSize(), o.Sele.MinEdgeSize())
	line := sub(v1.X, v0.X)
	edgeLine := sub(e1.X, v0.X)
	lengthLine := norm(line)
	lengthEdge := norm(edgeLine)
	if lengthLine < tol {
		chk.Panic("line element %d has zero length", o.Lele.Id)
	}
	if lengthEdge < tol {
		return true
	}
	scaprod := dot(line, edgeLine) / (lengthLine * lengthEdge)
	return math.Abs(scaprod)-tol < 1.0 && math.Abs(scaprod)+tol > 1.0
}

// lineToLineClipping resolves the overlap of the slave line (v0,v1) with a
// parallel master edge (e0,e1). The endpoint-side combinations are handled
// case by case in a fixed enumeration order; the non-overlapping
// combinations emit nothing
func (o *LineCoupling) lineToLineClipping(e1, e0, v1, v0 *Vertex) (err error) {
	tol := ClipTol * utl.Min(o.Lele.MinEdgeSize(), o.Sele.MinEdgeSize())
	if !o.checkLineOnLine(e1, e0, v1, v0) {
		return chk.Err("vertices not along a line, but already checked")
	}
	line := sub(v1.X, v0.X)

	// side of each edge endpoint w.r.t. each line endpoint
	prod0 := dot(sub(e0.X, v0.X), line)
	prod1 := dot(sub(e1.X, v0.X), line)
	prod2 := -dot(sub(e0.X, v1.X), line)
	prod3 := -dot(sub(e1.X, v1.X), line)
	e0v0 := prod0 >= 0
	e1v0 := prod1 >= 0
	e0v1 := prod2 >= 0
	e1v1 := prod3 >= 0

	// coincident endpoints
	e0isV0 := norm(sub(e0.X, v0.X)) <= tol
	e0isV1 := norm(sub(e0.X, v1.X)) <= tol
	e1isV0 := norm(sub(e1.X, v0.X)) <= tol
	e1isV1 := norm(sub(e1.X, v1.X)) <= tol

	emitEdge := func(e *Vertex) {
		v := NewVertex(e.X, MasterV, e.Nodeids, -1)
		o.co.linCache[v] = o.co.linCache[e]
		o.Inter = append(o.Inter, v)
	}
	emitLine := func(l *Vertex) {
		v := NewVertex(l.X, ProjSlave, l.Nodeids, -1)
		o.co.linCache[v] = o.co.linCache[l]
		o.Inter = append(o.Inter, v)
	}
	return lineOnLineCases(e0, e1, v0, v1, e0v0, e1v0, e0v1, e1v1, e0isV0, e0isV1, e1isV0, e1isV1, emitEdge, emitLine)
}

// lineOnLineCases resolves the overlap of a parallel edge/line pair from
// the endpoint-side flags, case by case in a fixed enumeration order.
// eXvY tells whether edge endpoint X lies inside the half-line at line
// endpoint Y, eXisVY whether the endpoints coincide within tolerance
func lineOnLineCases(e0, e1, v0, v1 *Vertex, e0v0, e1v0, e0v1, e1v1, e0isV0, e0isV1, e1isV0, e1isV1 bool, emitEdge, emitLine func(*Vertex)) (err error) {
	switch {
	case e0isV0 && e1isV1: // 1: nodes on each other
		emitEdge(e0)
		emitEdge(e1)
	case e0isV1 && e1isV0: // 2: nodes on each other, flipped
		emitEdge(e0)
		emitEdge(e1)
	case e0isV0 && e1v0 && e1v1: // 3
		emitEdge(e0)
		emitEdge(e1)
	case e1isV0 && e0v0 && e0v1: // 4
		emitEdge(e0)
		emitEdge(e1)
	case e0isV1 && e1v0 && e1v1: // 5
		emitEdge(e0)
		emitEdge(e1)
	case e1isV1 && e0v0 && e0v1: // 6
		emitEdge(e0)
		emitEdge(e1)
	case e0isV0 && e1v0 && !e1v1: // 7
		emitEdge(e0)
		emitLine(v1)
	case e1isV0 && e0v0 && !e0v1: // 8
		emitEdge(e1)
		emitLine(v1)
	case e1isV1 && !e0v0 && e0v1: // 9
		emitEdge(e1)
		emitLine(v0)
	case e0isV1 && !e1v0 && e1v1: // 10
		emitEdge(e0)
		emitLine(v0)
	case e0isV0 && !e1v0 && e1v1: // 11: no overlap
	case e1isV0 && !e0v0 && e0v1: // 12: no overlap
	case e0isV1 && !e1v1 && e1v0: // 13: no overlap
	case e1isV1 && !e0v1 && e0v0: // 14: no overlap
	case e0v1 && e1v1 && e0v0 && e1v0: // 15: edge fully inside line
		emitEdge(e0)
		emitEdge(e1)
	case !e0v0 && e1v0 && e0v1 && !e1v1: // 16: line fully inside edge
		emitLine(v0)
		emitLine(v1)
	case e0v0 && !e1v0 && !e0v1 && e1v1: // 17: line fully inside edge, flipped
		emitLine(v0)
		emitLine(v1)
	case e0v0 && e1v0 && e0v1 && !e1v1: // 18: mixed
		emitEdge(e0)
		emitLine(v1)
	case e0v0 && e1v0 && !e0v1 && e1v1: // 19: mixed
		emitEdge(e1)
		emitLine(v1)
	case !e0v0 && e1v0 && e0v1 && e1v1: // 20: mixed
		emitEdge(e1)
		emitLine(v0)
	case e0v0 && !e1v0 && e0v1 && e1v1: // 21: mixed
		emitEdge(e0)
		emitLine(v0)
	case e0v0 && e1v0 && !e0v1 && !e1v1: // 22: out
	case !e0v0 && !e1v0 && e0v1 && e1v1: // 23: out
	default:
		return chk.Err("line-on-line clipping: no matching endpoint-side combination")
	}
	return
}

// lineClipping clips the slave line against the master polygon. Parallel
// master edges lying on the line trigger line-to-line clipping; otherwise
// transversal intersections, interior endpoints, redundancy removal and
// node snapping decide the (at most two) intersection vertices
func (o *LineCoupling) lineClipping() (err error) {
	tol := ClipTol * utl.Min(o.Lele.MinEdgeSize(), o.Sele.MinEdgeSize())
	o.Inter = o.Inter[:0]
	if len(o.MasterVerts) < 3 {
		return chk.Err("invalid number of master vertices: %d", len(o.MasterVerts))
	}

	sv0, sv1 := o.SlaveVerts[0], o.SlaveVerts[1]
	slaveLine := sub(sv1.X, sv0.X)
	nl := cross(slaveLine, o.co.Auxn)

	// first pass: parallel edges on the line
	foundParallel := false
	for _, mv := range o.MasterVerts {
		edge := sub(mv.Next.X, mv.X)
		if math.Abs(dot(edge, nl)) >= tol {
			continue
		}
		key := [2]int{mv.Nodeids[0], mv.Next.Nodeids[0]}
		keyTw := [2]int{mv.Next.Nodeids[0], mv.Nodeids[0]}
		onLine := o.checkLineOnLine(mv.Next, mv, sv1, sv0)
		if o.doneBefore[key] || o.doneBefore[keyTw] {
			continue
		}
		o.doneBefore[key] = true
		o.doneBefore[keyTw] = true
		if onLine {
			foundParallel = true
			if err = o.lineToLineClipping(mv.Next, mv, sv1, sv0); err != nil {
				return
			}
			break
		}
	}

	if !foundParallel {
		var temp []*Vertex

		// transversal intersections
		for _, mv := range o.MasterVerts {
			edge := sub(mv.Next.X, mv.X)
			np := cross(edge, o.co.Auxn)
			if math.Abs(dot(edge, nl)) < tol {
				continue
			}
			wp1 := dot(sub(sv0.X, mv.X), np)
			wp2 := dot(sub(sv1.X, mv.X), np)
			if wp1*wp2 > 0 {
				continue
			}
			wq1 := dot(sub(mv.X, sv0.X), nl)
			wq2 := dot(sub(mv.Next.X, sv0.X), nl)
			if wq1*wq2 > 0 {
				continue
			}
			alpha := wp1 / (wp1 - wp2)
			alphaq := wq1 / (wq1 - wq2)
			if alpha < 0 || alpha > 1 || alphaq < 0 || alphaq > 1 {
				continue
			}
			var x [3]float64
			for k := 0; k < 3; k++ {
				x[k] = (1.0-alpha)*sv0.X[k] + alpha*sv1.X[k]
				if math.Abs(x[k]) < tol {
					x[k] = 0
				}
			}
			lcids := []int{sv0.Nodeids[0], sv1.Nodeids[0], mv.Nodeids[0], mv.Next.Nodeids[0]}
			v := NewVertex(x, LineClip, lcids, alpha)
			o.co.linCache[v] = o.co.lineclipLin(sv0.X, sv1.X, mv.X, mv.Next.X,
				o.co.linCache[sv0], o.co.linCache[sv1], o.co.linCache[mv], o.co.linCache[mv.Next])
			temp = append(temp, v)
		}

		// line endpoints inside the polygon
		for _, sv := range o.SlaveVerts {
			if o.co.insidePolygon(sv.X, o.MasterVerts, tol) {
				temp = append(temp, sv)
			}
		}

		// drop redundant intersections
		var clean []*Vertex
		for i, vi := range temp {
			red := false
			for j := 0; j < i; j++ {
				if norm(sub(vi.X, temp[j].X)) < tol {
					red = true
					break
				}
			}
			if !red {
				clean = append(clean, vi)
			}
		}

		// snap intersections close to slave or master nodes
		for _, v := range clean {
			snapped := false
			for _, sv := range o.SlaveVerts {
				if norm(sub(v.X, sv.X)) <= tol {
					o.Inter = append(o.Inter, sv)
					snapped = true
					break
				}
			}
			if snapped {
				continue
			}
			for _, mv := range o.MasterVerts {
				if norm(sub(v.X, mv.X)) <= tol {
					o.Inter = append(o.Inter, mv)
					snapped = true
					break
				}
			}
			if !snapped {
				o.Inter = append(o.Inter, v)
			}
		}
	}

	if len(o.Inter) > 2 {
		return chk.Err("line clipping of pair (%d,%d) produced %d intersections", o.Lele.Id, o.Sele.Id, len(o.Inter))
	}
	return
}

// createIntLine builds the line2 integration cell from the two
// intersection vertices, applying the tangent and length checks
func (o *LineCoupling) createIntLine() {
	o.IntLine = nil
	if len(o.Inter) != 2 {
		return
	}
	tol := ClipTol * utl.Min(o.Lele.MinEdgeSize(), o.Sele.MinEdgeSize())
	tang := sub(o.Inter[1].X, o.Inter[0].X)
	l := norm(tang)
	if l < tol {
		return // zero overlap length
	}

	// tangent must not align with the plane normal
	if math.Abs(dot(tang, o.co.Auxn))/l > 1.0-ProjTol {
		return
	}

	var x [3][3]float64
	for k := 0; k < 3; k++ {
		x[k][0] = o.Inter[0].X[k]
		x[k][1] = o.Inter[1].X[k]
		x[k][2] = -1 // unused
	}
	linv := [3]pvec.Vec3{o.co.linCache[o.Inter[0]], o.co.linCache[o.Inter[1]], pvec.New3(0)}
	o.IntLine = NewIntCell(0, o.Lele.Id, o.Sele.Id, "line2", x, o.co.Auxn, linv, o.co.LinAuxn)
}
