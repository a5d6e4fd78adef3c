// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/pvec"
)

// Coupling evaluates the geometric interaction of one slave/master surface
// element pair: auxiliary plane, vertex projection, polygon clipping and
// the resulting integration cells with full vertex linearizations
type Coupling struct {
	Sele *Element // slave surface element
	Mele *Element // master surface element

	// auxiliary plane
	Auxc    [3]float64 // center
	Auxn    [3]float64 // unit normal
	LinAuxc pvec.Vec3  // center derivative per spatial component
	LinAuxn pvec.Vec3  // normal derivative per spatial component

	// clipping state
	SlaveVerts  []*Vertex // projected slave polygon
	MasterVerts []*Vertex // projected master polygon
	Clip        []*Vertex // clip polygon
	Cells       []*IntCell

	linCache map[*Vertex]pvec.Vec3 // vertex linearizations
}

// NewCoupling returns a coupling pair evaluator
func NewCoupling(sele, mele *Element) *Coupling {
	if sele.Shp.Gndim != 2 {
		chk.Panic("slave element %d must be a surface element", sele.Id)
	}
	return &Coupling{Sele: sele, Mele: mele, linCache: make(map[*Vertex]pvec.Vec3)}
}

// BuildAuxPlane computes the auxiliary plane center and unit normal at the
// slave element midpoint, together with their derivatives
func (o *Coupling) BuildAuxPlane() {
	s := o.Sele
	xi := s.CenterXi()
	o.Auxc = s.GlobalCoords(xi)
	o.Auxn, o.LinAuxn = s.UnitNormalDeriv(xi, 8*s.Shp.Nverts)

	// center derivative: dc_k = N_i d x_{i,k}
	o.LinAuxc = pvec.New3(8 * s.Shp.Nverts)
	s.Shp.Func(s.Shp.S, nil, xi, false)
	for i := 0; i < s.Shp.Nverts; i++ {
		for k := 0; k < 3; k++ {
			o.LinAuxc[k].Add(s.Dofs[i][k], s.Shp.S[i])
		}
	}
}

// planeProject returns x' = x - ((x-c) n) n, the foot of x on the
// auxiliary plane
func (o *Coupling) planeProject(x [3]float64) (xp [3]float64) {
	d := dot(sub(x, o.Auxc), o.Auxn)
	for k := 0; k < 3; k++ {
		xp[k] = x[k] - d*o.Auxn[k]
	}
	return
}

// ProjectVertices builds the slave and master clip polygons by projecting
// both element's nodes onto the auxiliary plane
func (o *Coupling) ProjectVertices() {
	o.SlaveVerts = o.SlaveVerts[:0]
	o.MasterVerts = o.MasterVerts[:0]
	for i := 0; i < o.Sele.Shp.Nverts; i++ {
		v := NewVertex(o.planeProject(o.Sele.X[i]), ProjSlave, []int{o.Sele.Verts[i]}, -1)
		o.SlaveVerts = append(o.SlaveVerts, v)
		o.linCache[v] = o.planeVertexLin(o.Sele.X[i], o.Sele.Dofs[i])
	}
	for i := 0; i < o.Mele.Shp.Nverts; i++ {
		v := NewVertex(o.planeProject(o.Mele.X[i]), MasterV, []int{o.Mele.Verts[i]}, -1)
		o.MasterVerts = append(o.MasterVerts, v)
		o.linCache[v] = o.planeVertexLin(o.Mele.X[i], o.Mele.Dofs[i])
	}
	CloseRing(o.SlaveVerts)
	CloseRing(o.MasterVerts)
}

// EvalGeometry runs the full geometric pipeline of the pair: plane,
// projection, clipping, linearization and cell generation. A degenerate
// overlap yields no cells and a nil error
func (o *Coupling) EvalGeometry() (err error) {
	o.BuildAuxPlane()
	o.ProjectVertices()
	if err = o.PolygonClipping(); err != nil {
		return
	}
	o.CreateCells()
	return
}
