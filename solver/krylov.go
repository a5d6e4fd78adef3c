// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"

	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/floats"
)

// target returns the absolute residual target for the configured convergence
// check, given the initial residual norm
func (o *Solver) target(rnorm0 float64) float64 {
	if o.Conf.AzConv == "AZ_noscaled" {
		return o.tolerance()
	}
	return o.tolerance() * rnorm0
}

// monitor prints the residual every AzOutput iterations
func (o *Solver) monitor(method string, it int, rnorm float64) {
	if o.Conf.AzOutput > 0 && it%o.Conf.AzOutput == 0 {
		io.Pf("solver: %s: it = %4d  |r| = %g\n", method, it, rnorm)
	}
}

// cg runs the preconditioned conjugate gradient method. The matrix must be
// symmetric positive definite
func (o *Solver) cg(op func(y, x []float64), x, b []float64) (nit int, res float64, conv bool, err error) {
	n := len(b)
	r := make([]float64, n)
	z := make([]float64, n)
	p := make([]float64, n)
	q := make([]float64, n)

	// r = b - A·x
	op(r, x)
	floats.AddScaledTo(r, b, -1, r)
	res = floats.Norm(r, 2)
	tgt := o.target(res)
	if res <= tgt {
		conv = true
		return
	}

	err = o.prec.Apply(z, r)
	if err != nil {
		return
	}
	copy(p, z)
	rz := floats.Dot(r, z)

	for nit = 1; nit <= o.Conf.AzIter; nit++ {
		op(q, p)
		den := floats.Dot(p, q)
		if den == 0 {
			break
		}
		alpha := rz / den
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, q)
		res = floats.Norm(r, 2)
		o.monitor("CG", nit, res)
		if res <= tgt {
			conv = true
			return
		}
		err = o.prec.Apply(z, r)
		if err != nil {
			return
		}
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		for i := 0; i < n; i++ {
			p[i] = z[i] + beta*p[i]
		}
	}
	return
}

// gmres runs right-preconditioned restarted GMRES(AzSub). Right
// preconditioning keeps the monitored residual equal to the true residual
func (o *Solver) gmres(op func(y, x []float64), x, b []float64) (nit int, res float64, conv bool, err error) {
	n := len(b)
	m := o.Conf.AzSub
	if m < 1 {
		m = 1
	}

	r := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, n)
	V := make([][]float64, m+1)
	for i := range V {
		V[i] = make([]float64, n)
	}
	H := make([][]float64, m+1)
	for i := range H {
		H[i] = make([]float64, m)
	}
	cs := make([]float64, m)
	sn := make([]float64, m)
	g := make([]float64, m+1)
	y := make([]float64, m)

	// r = b - A·x
	op(r, x)
	floats.AddScaledTo(r, b, -1, r)
	res = floats.Norm(r, 2)
	tgt := o.target(res)
	if res <= tgt {
		conv = true
		return
	}

	for nit < o.Conf.AzIter {

		// start cycle
		beta := floats.Norm(r, 2)
		if beta == 0 {
			conv = true
			return
		}
		floats.ScaleTo(V[0], 1.0/beta, r)
		for i := range g {
			g[i] = 0
		}
		g[0] = beta

		// Arnoldi with modified Gram-Schmidt and Givens rotations
		k := 0
		for ; k < m && nit < o.Conf.AzIter; k++ {
			nit++
			err = o.prec.Apply(z, V[k])
			if err != nil {
				return
			}
			op(w, z)
			for i := 0; i <= k; i++ {
				H[i][k] = floats.Dot(w, V[i])
				floats.AddScaled(w, -H[i][k], V[i])
			}
			H[k+1][k] = floats.Norm(w, 2)
			if H[k+1][k] != 0 {
				floats.ScaleTo(V[k+1], 1.0/H[k+1][k], w)
			}
			for i := 0; i < k; i++ {
				h0 := cs[i]*H[i][k] + sn[i]*H[i+1][k]
				H[i+1][k] = -sn[i]*H[i][k] + cs[i]*H[i+1][k]
				H[i][k] = h0
			}
			d := math.Hypot(H[k][k], H[k+1][k])
			if d == 0 {
				cs[k], sn[k] = 1, 0
			} else {
				cs[k], sn[k] = H[k][k]/d, H[k+1][k]/d
			}
			H[k][k] = cs[k]*H[k][k] + sn[k]*H[k+1][k]
			H[k+1][k] = 0
			g[k+1] = -sn[k] * g[k]
			g[k] = cs[k] * g[k]
			res = math.Abs(g[k+1])
			o.monitor("GMRES", nit, res)
			if res <= tgt {
				k++
				break
			}
		}

		// back substitution and update: x += M⁻¹·V·y
		for i := k - 1; i >= 0; i-- {
			y[i] = g[i]
			for j := i + 1; j < k; j++ {
				y[i] -= H[i][j] * y[j]
			}
			y[i] /= H[i][i]
		}
		for i := range w {
			w[i] = 0
		}
		for j := 0; j < k; j++ {
			floats.AddScaled(w, y[j], V[j])
		}
		err = o.prec.Apply(z, w)
		if err != nil {
			return
		}
		floats.Add(x, z)

		// true residual for the restart
		op(r, x)
		floats.AddScaledTo(r, b, -1, r)
		res = floats.Norm(r, 2)
		if res <= tgt {
			conv = true
			return
		}
	}
	return
}

// bicgstab runs the right-preconditioned BiCGSTAB method
func (o *Solver) bicgstab(op func(y, x []float64), x, b []float64) (nit int, res float64, conv bool, err error) {
	n := len(b)
	r := make([]float64, n)
	r0 := make([]float64, n)
	p := make([]float64, n)
	ph := make([]float64, n)
	s := make([]float64, n)
	sh := make([]float64, n)
	v := make([]float64, n)
	t := make([]float64, n)

	// r = b - A·x
	op(r, x)
	floats.AddScaledTo(r, b, -1, r)
	res = floats.Norm(r, 2)
	tgt := o.target(res)
	if res <= tgt {
		conv = true
		return
	}
	copy(r0, r)
	copy(p, r)
	rho := floats.Dot(r0, r)

	for nit = 1; nit <= o.Conf.AzIter; nit++ {
		err = o.prec.Apply(ph, p)
		if err != nil {
			return
		}
		op(v, ph)
		den := floats.Dot(r0, v)
		if den == 0 {
			break
		}
		alpha := rho / den
		floats.AddScaledTo(s, r, -alpha, v)
		res = floats.Norm(s, 2)
		if res <= tgt {
			floats.AddScaled(x, alpha, ph)
			o.monitor("BiCGSTAB", nit, res)
			conv = true
			return
		}
		err = o.prec.Apply(sh, s)
		if err != nil {
			return
		}
		op(t, sh)
		tt := floats.Dot(t, t)
		if tt == 0 {
			break
		}
		omega := floats.Dot(t, s) / tt
		floats.AddScaled(x, alpha, ph)
		floats.AddScaled(x, omega, sh)
		floats.AddScaledTo(r, s, -omega, t)
		res = floats.Norm(r, 2)
		o.monitor("BiCGSTAB", nit, res)
		if res <= tgt {
			conv = true
			return
		}
		rhoNew := floats.Dot(r0, r)
		if rhoNew == 0 || omega == 0 {
			break
		}
		beta := (rhoNew / rho) * (alpha / omega)
		rho = rhoNew
		for i := 0; i < n; i++ {
			p[i] = r[i] + beta*(p[i]-omega*v[i])
		}
	}
	return
}
