// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/pvec"
)

// IntCell is one integration cell on the auxiliary plane: a tri3 produced
// by polygon clipping or a line2 produced by line clipping. Vertex
// coordinate derivatives and the aux-normal derivative are carried along
// so the cell Jacobian can be linearized
type IntCell struct {
	Id       int           // cell id within its coupling pair
	SlaveId  int           // slave element id
	MasterId int           // master element id
	Kind     string        // "tri3" or "line2"
	Nverts   int           // 3 or 2
	X        [3][3]float64 // [dim][vertex] coordinates (third vertex unused for line2)
	Auxn     [3]float64    // auxiliary plane unit normal
	LinVert  [3]pvec.Vec3  // [vertex] coordinate derivatives
	LinAuxn  pvec.Vec3     // aux normal derivative
	A        float64       // area (tri3) or length (line2)
}

// NewIntCell returns an integration cell. linv carries the coordinate
// derivative for each vertex (the third entry is ignored for line2 cells).
// Returns nil for line cells of zero length
func NewIntCell(id, slaveId, masterId int, kind string, x [3][3]float64, auxn [3]float64, linv [3]pvec.Vec3, linauxn pvec.Vec3) (o *IntCell) {
	o = &IntCell{Id: id, SlaveId: slaveId, MasterId: masterId, Kind: kind, X: x, Auxn: auxn, LinVert: linv, LinAuxn: linauxn}
	switch kind {
	case "tri3":
		o.Nverts = 3
		var t1, t2 [3]float64
		for k := 0; k < 3; k++ {
			t1[k] = x[k][1] - x[k][0]
			t2[k] = x[k][2] - x[k][0]
		}
		o.A = 0.5 * norm(cross(t1, t2))
	case "line2":
		o.Nverts = 2
		var v [3]float64
		for k := 0; k < 3; k++ {
			v[k] = x[k][0] - x[k][1]
		}
		o.A = norm(v)
		if o.A < IntLim {
			return nil
		}
	default:
		chk.Panic("integration cell kind %q is invalid", kind)
	}
	return
}

// EvalShape evaluates the cell shape functions and their natural
// derivatives at xi. val must have length 3 and deriv shape [3][2]
func (o *IntCell) EvalShape(xi []float64, val []float64, deriv [][]float64) {
	switch o.Kind {
	case "tri3":
		val[0] = 1.0 - xi[0] - xi[1]
		val[1] = xi[0]
		val[2] = xi[1]
		if deriv != nil {
			deriv[0][0], deriv[0][1] = -1, -1
			deriv[1][0], deriv[1][1] = 1, 0
			deriv[2][0], deriv[2][1] = 0, 1
		}
	case "line2":
		val[0] = 0.5 * (1.0 - xi[0])
		val[1] = 0.5 * (1.0 + xi[0])
		val[2] = 0
		if deriv != nil {
			deriv[0][0] = -0.5
			deriv[1][0] = 0.5
		}
	}
}

// LocalToGlobal interpolates the global coordinates at cell coordinates xi.
// mode 0 interpolates with shape values, mode 1/2 with the xi/eta shape
// derivatives (used for cell tangents)
func (o *IntCell) LocalToGlobal(xi []float64, mode int, x []float64) {
	val := make([]float64, 3)
	deriv := [][]float64{{0, 0}, {0, 0}, {0, 0}}
	o.EvalShape(xi, val, deriv)
	for k := 0; k < 3; k++ {
		x[k] = 0
	}
	for i := 0; i < o.Nverts; i++ {
		c := val[i]
		switch mode {
		case 1:
			c = deriv[i][0]
		case 2:
			if o.Kind == "line2" {
				chk.Panic("line cells have a single natural coordinate")
			}
			c = deriv[i][1]
		}
		for k := 0; k < 3; k++ {
			x[k] += c * o.X[k][i]
		}
	}
}

// Jacobian returns the constant Jacobian determinant of the cell mapping
func (o *IntCell) Jacobian() float64 {
	if o.Kind == "tri3" {
		return 2.0 * o.A
	}
	return 0.5 * o.A
}

// DerivJacobian accumulates the directional derivative of the cell
// Jacobian into djac, chaining through the stored vertex derivatives
func (o *IntCell) DerivJacobian(djac *pvec.Vec) {
	if o.Kind == "line2" {
		var v [3]float64
		for k := 0; k < 3; k++ {
			v[k] = o.X[k][0] - o.X[k][1]
		}
		l := norm(v)
		fac := 0.25 / l

		// dv per component, then d(v.v) = 2 v.dv, finally fac*d(v.v)
		vg := pvec.New3(32)
		for k := 0; k < 3; k++ {
			vg[k].AddScaled(o.LinVert[0][k], 1)
			vg[k].AddScaled(o.LinVert[1][k], -1)
		}
		vv := pvec.New(32)
		for k := 0; k < 3; k++ {
			vv.AddScaled(vg[k], 2.0*v[k])
		}
		djac.AddScaled(vv, fac)
		return
	}

	// tri3: jac = |gxi x geta|
	var gxi, geta [3]float64
	for k := 0; k < 3; k++ {
		gxi[k] = o.X[k][1] - o.X[k][0]
		geta[k] = o.X[k][2] - o.X[k][0]
	}
	cr := cross(gxi, geta)
	jacinv := 1.0 / norm(cr)

	// vertex 0 contributes to gxi and geta with opposite sign
	o.LinVert[0][0].Each(func(p int, v float64) {
		djac.Add(p, jacinv*(-cr[1]*gxi[2]+cr[1]*geta[2]+cr[2]*gxi[1]-cr[2]*geta[1])*v)
	})
	o.LinVert[0][1].Each(func(p int, v float64) {
		djac.Add(p, jacinv*(cr[0]*gxi[2]-cr[0]*geta[2]-cr[2]*gxi[0]+cr[2]*geta[0])*v)
	})
	o.LinVert[0][2].Each(func(p int, v float64) {
		djac.Add(p, jacinv*(-cr[0]*gxi[1]+cr[0]*geta[1]+cr[1]*gxi[0]-cr[1]*geta[0])*v)
	})

	// vertex 1 contributes to gxi only
	o.LinVert[1][0].Each(func(p int, v float64) {
		djac.Add(p, jacinv*(-cr[1]*geta[2]+cr[2]*geta[1])*v)
	})
	o.LinVert[1][1].Each(func(p int, v float64) {
		djac.Add(p, jacinv*(cr[0]*geta[2]-cr[2]*geta[0])*v)
	})
	o.LinVert[1][2].Each(func(p int, v float64) {
		djac.Add(p, jacinv*(-cr[0]*geta[1]+cr[1]*geta[0])*v)
	})

	// vertex 2 contributes to geta only
	o.LinVert[2][0].Each(func(p int, v float64) {
		djac.Add(p, jacinv*(cr[1]*gxi[2]-cr[2]*gxi[1])*v)
	})
	o.LinVert[2][1].Each(func(p int, v float64) {
		djac.Add(p, jacinv*(-cr[0]*gxi[2]+cr[2]*gxi[0])*v)
	})
	o.LinVert[2][2].Each(func(p int, v float64) {
		djac.Add(p, jacinv*(cr[0]*gxi[1]-cr[1]*gxi[0])*v)
	})
}
