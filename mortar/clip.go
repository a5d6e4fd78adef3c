// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"

	"github.com/reginabuehler/4C-sub006/pvec"
)

// orientCCW orders a polygon ring counter-clockwise with respect to the
// aux normal so that edge x n points outward
func (o *Coupling) orientCCW(verts []*Vertex) {
	n := len(verts)
	var c [3]float64
	for _, v := range verts {
		for k := 0; k < 3; k++ {
			c[k] += v.X[k] / float64(n)
		}
	}
	area := 0.0
	for i := 0; i < n; i++ {
		area += dot(cross(sub(verts[i].X, c), sub(verts[(i+1)%n].X, c)), o.Auxn)
	}
	if area < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}
	CloseRing(verts)
}

// insidePolygon tells whether point x lies inside (or within tol of) the
// CCW polygon ring poly on the aux plane
func (o *Coupling) insidePolygon(x [3]float64, poly []*Vertex, tol float64) bool {
	for _, v := range poly {
		edge := sub(v.Next.X, v.X)
		en := cross(edge, o.Auxn)
		l := norm(en)
		if l < ProjLim {
			continue
		}
		dist := dot(sub(x, v.X), en) / l
		if dist-tol > 0 {
			return false
		}
	}
	return true
}

// PolygonClipping intersects the projected slave and master polygons on
// the auxiliary plane. The resulting clip polygon vertices carry full
// linearizations. An empty overlap leaves Clip nil and returns no error
func (o *Coupling) PolygonClipping() (err error) {
	tol := ClipTol * utl.Min(o.Sele.MinEdgeSize(), o.Mele.MinEdgeSize())
	o.orientCCW(o.SlaveVerts)
	o.orientCCW(o.MasterVerts)
	o.Clip = nil

	// edge pair intersections
	var temp []*Vertex
	for _, sv := range o.SlaveVerts {
		s0, s1 := sv, sv.Next
		sedge := sub(s1.X, s0.X)
		ns := cross(sedge, o.Auxn)
		nhits := 0
		for _, mv := range o.MasterVerts {
			m0, m1 := mv, mv.Next
			medge := sub(m1.X, m0.X)
			np := cross(medge, o.Auxn)
			if math.Abs(dot(sedge, np)) < tol {
				continue // parallel edges cannot intersect transversally
			}
			wp1 := dot(sub(s0.X, m0.X), np)
			wp2 := dot(sub(s1.X, m0.X), np)
			if wp1*wp2 > 0 {
				continue
			}
			wq1 := dot(sub(m0.X, s0.X), ns)
			wq2 := dot(sub(m1.X, s0.X), ns)
			if wq1*wq2 > 0 {
				continue
			}
			alpha := wp1 / (wp1 - wp2)
			if alpha < 0 || alpha > 1 {
				continue
			}
			var x [3]float64
			for k := 0; k < 3; k++ {
				x[k] = (1.0-alpha)*s0.X[k] + alpha*s1.X[k]
			}
			nhits++
			if nhits > 2 {
				return chk.Err("clipping of pair (%d,%d): slave edge %d->%d has more than two intersections", o.Sele.Id, o.Mele.Id, s0.Nodeids[0], s1.Nodeids[0])
			}
			v := NewVertex(x, LineClip, []int{s0.Nodeids[0], s1.Nodeids[0], m0.Nodeids[0], m1.Nodeids[0]}, alpha)
			o.linCache[v] = o.lineclipLin(s0.X, s1.X, m0.X, m1.X, o.linCache[s0], o.linCache[s1], o.linCache[m0], o.linCache[m1])
			temp = append(temp, v)
		}
	}

	// interior vertices of either polygon
	for _, sv := range o.SlaveVerts {
		if o.insidePolygon(sv.X, o.MasterVerts, tol) {
			temp = append(temp, sv)
		}
	}
	for _, mv := range o.MasterVerts {
		if o.insidePolygon(mv.X, o.SlaveVerts, tol) {
			temp = append(temp, mv)
		}
	}

	// snap intersections near existing nodes, then drop duplicates
	var clip []*Vertex
	for _, v := range temp {
		keep := v
		if v.Type == LineClip {
			for _, sv := range o.SlaveVerts {
				if norm(sub(v.X, sv.X)) <= tol {
					keep = sv
					break
				}
			}
			if keep == v {
				for _, mv := range o.MasterVerts {
					if norm(sub(v.X, mv.X)) <= tol {
						keep = mv
						break
					}
				}
			}
		}
		dup := false
		for _, c := range clip {
			if norm(sub(keep.X, c.X)) < tol {
				dup = true
				break
			}
		}
		if !dup {
			clip = append(clip, keep)
		}
	}

	if len(clip) < 3 {
		return // no overlap
	}

	// angular sort around the node averaged center
	var c [3]float64
	for _, v := range clip {
		for k := 0; k < 3; k++ {
			c[k] += v.X[k] / float64(len(clip))
		}
	}
	t1 := sub(clip[0].X, c)
	l1 := norm(t1)
	if l1 < ProjLim {
		return // degenerate polygon
	}
	for k := 0; k < 3; k++ {
		t1[k] /= l1
	}
	t2 := cross(o.Auxn, t1)
	sort.SliceStable(clip, func(i, j int) bool {
		di, dj := sub(clip[i].X, c), sub(clip[j].X, c)
		ai := math.Atan2(dot(di, t2), dot(di, t1))
		aj := math.Atan2(dot(dj, t2), dot(dj, t1))
		return ai < aj
	})
	o.Clip = clip
	return
}

// CreateCells triangulates the clip polygon into tri3 integration cells.
// Polygons beyond three vertices are fanned around the node averaged
// center whose linearization is the average of the vertex linearizations.
// Cells below the area cutoff are dropped
func (o *Coupling) CreateCells() {
	o.Cells = o.Cells[:0]
	nclip := len(o.Clip)
	if nclip < 3 {
		return
	}
	cutoff := IntLim * o.Sele.SurfArea()

	lins := make([]pvec.Vec3, nclip)
	for i, v := range o.Clip {
		lins[i] = o.linCache[v]
	}

	appendCell := func(x [3][3]float64, lv [3]pvec.Vec3) {
		cell := NewIntCell(len(o.Cells), o.Sele.Id, o.Mele.Id, "tri3", x, o.Auxn, lv, o.LinAuxn)
		if cell != nil && cell.A >= cutoff && cell.A >= IntLim {
			o.Cells = append(o.Cells, cell)
		}
	}

	if nclip == 3 {
		var x [3][3]float64
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				x[k][j] = o.Clip[j].X[k]
			}
		}
		appendCell(x, [3]pvec.Vec3{lins[0], lins[1], lins[2]})
		return
	}

	// fan triangulation
	var c [3]float64
	for _, v := range o.Clip {
		for k := 0; k < 3; k++ {
			c[k] += v.X[k] / float64(nclip)
		}
	}
	clin := centerLin(lins)
	for i := 0; i < nclip; i++ {
		j := (i + 1) % nclip
		var x [3][3]float64
		for k := 0; k < 3; k++ {
			x[k][0] = c[k]
			x[k][1] = o.Clip[i].X[k]
			x[k][2] = o.Clip[j].X[k]
		}
		appendCell(x, [3]pvec.Vec3{clin, lins[i], lins[j]})
	}
}
