// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/pvec"
	"github.com/reginabuehler/4C-sub006/shp"
)

// Element is one interface element of the slave or master side. It carries
// the current nodal coordinates and, per node, the global displacement dof
// ids that its geometry depends on
type Element struct {
	Id    int          // element id
	Shp   *shp.Shape   // shape structure; "lin2", "tri3" or "qua4"
	Verts []int        // global node ids
	X     [][3]float64 // [nverts] current nodal coordinates
	Dofs  [][3]int     // [nverts] global dof ids per node
}

// NewElement returns an interface element
//  Note: panics on unknown geoType or inconsistent input lengths
func NewElement(id int, geoType string, verts []int, x [][3]float64, dofs [][3]int) (o *Element) {
	s := shp.Get(geoType, 0)
	if s == nil {
		chk.Panic("cannot find shape type %q for interface element %d", geoType, id)
	}
	if len(verts) != s.Nverts || len(x) != s.Nverts || len(dofs) != s.Nverts {
		chk.Panic("element %d (%s): need %d vertices, got %d/%d/%d", id, geoType, s.Nverts, len(verts), len(x), len(dofs))
	}
	return &Element{Id: id, Shp: s.GetCopy(), Verts: verts, X: x, Dofs: dofs}
}

// CenterXi returns the natural coordinates of the element midpoint
func (o *Element) CenterXi() []float64 {
	switch o.Shp.Type {
	case "tri3":
		return []float64{1.0 / 3.0, 1.0 / 3.0}
	case "lin2":
		return []float64{0}
	}
	return []float64{0, 0}
}

// GlobalCoords interpolates the global coordinates at natural coordinates r
func (o *Element) GlobalCoords(r []float64) (x [3]float64) {
	o.Shp.Func(o.Shp.S, nil, r, false)
	for i := 0; i < o.Shp.Nverts; i++ {
		for k := 0; k < 3; k++ {
			x[k] += o.Shp.S[i] * o.X[i][k]
		}
	}
	return
}

// Metrics returns the covariant tangent vectors at natural coordinates r.
// For line elements t2 is zero
func (o *Element) Metrics(r []float64) (t1, t2 [3]float64) {
	o.Shp.Func(o.Shp.S, o.Shp.DSdR, r, true)
	for i := 0; i < o.Shp.Nverts; i++ {
		for k := 0; k < 3; k++ {
			t1[k] += o.Shp.DSdR[i][0] * o.X[i][k]
			if o.Shp.Gndim > 1 {
				t2[k] += o.Shp.DSdR[i][1] * o.X[i][k]
			}
		}
	}
	return
}

// UnitNormal returns the unit normal n = t1×t2/|t1×t2| of a surface element
// at natural coordinates r, together with the length |t1×t2|
func (o *Element) UnitNormal(r []float64) (n [3]float64, glen float64) {
	t1, t2 := o.Metrics(r)
	g := cross(t1, t2)
	glen = norm(g)
	if glen < ProjLim {
		chk.Panic("element %d: degenerate metrics, |t1 x t2| = %g", o.Id, glen)
	}
	for k := 0; k < 3; k++ {
		n[k] = g[k] / glen
	}
	return
}

// UnitNormalDeriv returns the unit normal of a surface element at r
// together with its derivative with respect to the element's dofs:
//   dn = (I - n nT)/|g| dg    g = t1 x t2
//   dg/dx_{i,k} = dN_i/dxi (e_k x t2) + dN_i/deta (t1 x e_k)
func (o *Element) UnitNormalDeriv(r []float64, caphint int) (n [3]float64, dn pvec.Vec3) {
	t1, t2 := o.Metrics(r)
	g := cross(t1, t2)
	glen := norm(g)
	if glen < ProjLim {
		chk.Panic("element %d: degenerate metrics, |t1 x t2| = %g", o.Id, glen)
	}
	for k := 0; k < 3; k++ {
		n[k] = g[k] / glen
	}
	dn = pvec.New3(caphint)
	var ek [3]float64
	for i := 0; i < o.Shp.Nverts; i++ {
		for k := 0; k < 3; k++ {
			ek = [3]float64{0, 0, 0}
			ek[k] = 1
			c1 := cross(ek, t2)
			c2 := cross(t1, ek)
			var dg [3]float64
			for m := 0; m < 3; m++ {
				dg[m] = o.Shp.DSdR[i][0]*c1[m] + o.Shp.DSdR[i][1]*c2[m]
			}
			ndg := dot(n, dg)
			for m := 0; m < 3; m++ {
				dn[m].Add(o.Dofs[i][k], (dg[m]-n[m]*ndg)/glen)
			}
		}
	}
	return
}

// MinEdgeSize returns the length of the shortest element edge
func (o *Element) MinEdgeSize() (min float64) {
	min = math.MaxFloat64
	nv := o.Shp.Nverts
	if o.Shp.Gndim == 1 {
		return norm(sub(o.X[1], o.X[0]))
	}
	for i := 0; i < nv; i++ {
		l := norm(sub(o.X[(i+1)%nv], o.X[i]))
		if l < min {
			min = l
		}
	}
	return
}

// SurfArea returns the element area (surface elements) or length (line
// elements). Used only for the integration cutoff
func (o *Element) SurfArea() float64 {
	switch o.Shp.Type {
	case "lin2":
		return norm(sub(o.X[1], o.X[0]))
	case "tri3":
		t1, t2 := o.Metrics([]float64{1.0 / 3.0, 1.0 / 3.0})
		return 0.5 * norm(cross(t1, t2))
	}
	// qua4: 2x2 Gauss rule
	gp := 1.0 / math.Sqrt(3.0)
	area := 0.0
	for _, xi := range []float64{-gp, gp} {
		for _, eta := range []float64{-gp, gp} {
			t1, t2 := o.Metrics([]float64{xi, eta})
			area += norm(cross(t1, t2))
		}
	}
	return area
}
