// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"math"

	"github.com/cpmech/gosl/io"

	"github.com/reginabuehler/4C-sub006/pvec"
)

// ProjectPoint maps the aux-plane point xgp back to the parent coordinates
// of element ele by solving
//   F(xi, alpha) = sum_i N_i(xi) x_i - xgp + alpha n = 0
// with a local Newton iteration. On divergence, alpha is the sentinel
// AlphaDiverged and a warning is printed; callers skip the pair
func (o *Coupling) ProjectPoint(ele *Element, xgp [3]float64) (xi []float64, alpha float64) {
	xi = make([]float64, ele.Shp.Gndim)
	if ele.Shp.Type == "tri3" {
		xi[0], xi[1] = 1.0/3.0, 1.0/3.0
	}
	n := o.Auxn
	for it := 0; it < MaxIter; it++ {
		x := ele.GlobalCoords(xi)
		var f [3]float64
		for k := 0; k < 3; k++ {
			f[k] = x[k] - xgp[k] + alpha*n[k]
		}
		if norm(f) < ConvTol {
			return
		}
		t1, t2 := ele.Metrics(xi)
		if ele.Shp.Gndim == 1 {
			// reduce to the (tangent, normal) system for line elements
			a00, a01 := dot(t1, t1), dot(t1, n)
			a10, a11 := dot(n, t1), dot(n, n)
			det := a00*a11 - a01*a10
			if math.Abs(det) < ProjLim {
				break
			}
			b0, b1 := -dot(t1, f), -dot(n, f)
			xi[0] += (a11*b0 - a01*b1) / det
			alpha += (a00*b1 - a10*b0) / det
			continue
		}
		var jac [3][3]float64
		for k := 0; k < 3; k++ {
			jac[k][0], jac[k][1], jac[k][2] = t1[k], t2[k], n[k]
		}
		inv, ok := inv3(jac)
		if !ok {
			break
		}
		for a := 0; a < 2; a++ {
			for k := 0; k < 3; k++ {
				xi[a] -= inv[a][k] * f[k]
			}
		}
		for k := 0; k < 3; k++ {
			alpha -= inv[2][k] * f[k]
		}
	}
	io.Pfred("mortar: projection onto element %d diverged\n", ele.Id)
	alpha = AlphaDiverged
	return
}

// DerivXiGP propagates the derivative of an integration point's global
// coordinates (dxgp, from the cell vertex linearizations) to the parent
// coordinates xi found by ProjectPoint:
//   [t1 t2 n] [dxi; dalpha] = dxgp - sum_i N_i dx_i - alpha dn
func (o *Coupling) DerivXiGP(ele *Element, xi []float64, alpha float64, dxgp pvec.Vec3) (dxi [2]*pvec.Vec) {
	n := o.Auxn
	t1, t2 := ele.Metrics(xi)
	ele.Shp.Func(ele.Shp.S, nil, xi, false)

	// right-hand side per spatial component
	rhs := pvec.New3(64)
	for m := 0; m < 3; m++ {
		rhs[m].AddScaled(dxgp[m], 1)
		for i := 0; i < ele.Shp.Nverts; i++ {
			rhs[m].Add(ele.Dofs[i][m], -ele.Shp.S[i])
		}
		rhs[m].AddScaled(o.LinAuxn[m], -alpha)
	}

	dxi[0] = pvec.New(64)
	dxi[1] = pvec.New(64)
	if ele.Shp.Gndim == 1 {
		// tangent-normal reduction as in ProjectPoint
		a00, a01 := dot(t1, t1), dot(t1, n)
		a10, a11 := dot(n, t1), dot(n, n)
		det := a00*a11 - a01*a10
		for m := 0; m < 3; m++ {
			dxi[0].AddScaled(rhs[m], a11/det*t1[m]-a01/det*n[m])
		}
		return
	}
	var jac [3][3]float64
	for k := 0; k < 3; k++ {
		jac[k][0], jac[k][1], jac[k][2] = t1[k], t2[k], n[k]
	}
	inv, _ := inv3(jac)
	for a := 0; a < 2; a++ {
		for m := 0; m < 3; m++ {
			dxi[a].AddScaled(rhs[m], inv[a][m])
		}
	}
	return
}

// inv3 inverts a 3x3 matrix; ok is false for near-singular input
func inv3(a [3][3]float64) (inv [3][3]float64, ok bool) {
	det := a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
	if math.Abs(det) < ProjLim {
		return inv, false
	}
	d := 1.0 / det
	inv[0][0] = (a[1][1]*a[2][2] - a[1][2]*a[2][1]) * d
	inv[0][1] = (a[0][2]*a[2][1] - a[0][1]*a[2][2]) * d
	inv[0][2] = (a[0][1]*a[1][2] - a[0][2]*a[1][1]) * d
	inv[1][0] = (a[1][2]*a[2][0] - a[1][0]*a[2][2]) * d
	inv[1][1] = (a[0][0]*a[2][2] - a[0][2]*a[2][0]) * d
	inv[1][2] = (a[0][2]*a[1][0] - a[0][0]*a[1][2]) * d
	inv[2][0] = (a[1][0]*a[2][1] - a[1][1]*a[2][0]) * d
	inv[2][1] = (a[0][1]*a[2][0] - a[0][0]*a[2][1]) * d
	inv[2][2] = (a[0][0]*a[1][1] - a[0][1]*a[1][0]) * d
	return inv, true
}
