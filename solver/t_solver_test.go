// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/reginabuehler/4C-sub006/dmap"
	"github.com/reginabuehler/4C-sub006/inp"
	"github.com/reginabuehler/4C-sub006/spm"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// laplacian assembles the 1D Laplacian (SPD, tridiagonal) of size n
func laplacian(tst *testing.T, n int) *spm.Matrix {
	rmap := dmap.NewContiguousMap(n, 0)
	A := spm.NewMatrix(rmap, 3, false, false)
	for i := 0; i < n; i++ {
		A.AssembleValue(2, i, i)
		if i > 0 {
			A.AssembleValue(-1, i, i-1)
		}
		if i < n-1 {
			A.AssembleValue(-1, i, i+1)
		}
	}
	if err := A.Complete(rmap, rmap); err != nil {
		tst.Fatalf("complete failed:\n%v", err)
	}
	return A
}

// convdiff assembles a nonsymmetric convection-diffusion operator of size n
func convdiff(tst *testing.T, n int) *spm.Matrix {
	rmap := dmap.NewContiguousMap(n, 0)
	A := spm.NewMatrix(rmap, 3, false, false)
	for i := 0; i < n; i++ {
		A.AssembleValue(3, i, i)
		if i > 0 {
			A.AssembleValue(-1.6, i, i-1)
		}
		if i < n-1 {
			A.AssembleValue(-0.4, i, i+1)
		}
	}
	if err := A.Complete(rmap, rmap); err != nil {
		tst.Fatalf("complete failed:\n%v", err)
	}
	return A
}

// residualInf returns ‖A·x − b‖∞
func residualInf(A *spm.Matrix, x, b []float64) float64 {
	r := make([]float64, len(b))
	A.MatVec(r, x)
	nrm := 0.0
	for i := range r {
		if v := math.Abs(r[i] - b[i]); v > nrm {
			nrm = v
		}
	}
	return nrm
}

func Test_sol01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sol01. block 2x2 assemble, merge, direct solve")

	// two coupled blocks: dofs {0,1,2} and {10,11}
	s0 := dmap.NewContiguousMap(3, 0)
	s1 := dmap.NewMap([]int{10, 11}, 0, true)
	ext, err := dmap.NewExtractor([]*dmap.Map{s0, s1})
	if err != nil {
		tst.Fatalf("extractor failed:\n%v", err)
	}
	B := spm.NewBlockMatrix(ext, ext)

	a00 := spm.NewMatrix(s0, 3, false, false)
	a00.AssembleValue(4, 0, 0)
	a00.AssembleValue(-1, 0, 1)
	a00.AssembleValue(-1, 1, 0)
	a00.AssembleValue(4, 1, 1)
	a00.AssembleValue(-1, 1, 2)
	a00.AssembleValue(-1, 2, 1)
	a00.AssembleValue(4, 2, 2)

	a11 := spm.NewMatrix(s1, 2, false, false)
	a11.AssembleValue(3, 10, 10)
	a11.AssembleValue(3, 11, 11)

	a01 := spm.NewMatrix(s0, 1, false, false)
	a01.AssembleValue(1, 0, 10)
	a01.AssembleValue(1, 2, 11)

	a10 := spm.NewMatrix(s1, 1, false, false)
	a10.AssembleValue(1, 10, 0)
	a10.AssembleValue(1, 11, 2)

	B.Assign(0, 0, spm.View, a00)
	B.Assign(1, 1, spm.View, a11)
	B.Assign(0, 1, spm.View, a01)
	B.Assign(1, 0, spm.View, a10)
	if err = B.Complete(); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// b = A·1⃗ so the solution is the vector of ones
	A, err := B.Merge()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	n := 5
	ones := make([]float64, n)
	b := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	A.MatVec(b, ones)

	var conf inp.LinSolData
	conf.SetDefault()
	conf.Name = "klu"
	sol := New(conf)
	if err = sol.Init(A); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	defer sol.Clean()

	x := make([]float64, n)
	if err = sol.Solve(x, b); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	io.Pforan("x = %v\n", x)
	chk.Vector(tst, "x", 1e-12, x, ones)
	if res := residualInf(A, x, b); res > 1e-12 {
		tst.Errorf("residual too large: %g\n", res)
		return
	}
	if !sol.Stats.Converged {
		tst.Errorf("direct solve must report convergence\n")
		return
	}
}

func Test_sol02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sol02. CG with ILU(0) on an SPD system")

	n := 30
	A := laplacian(tst, n)
	xref := make([]float64, n)
	b := make([]float64, n)
	for i := range xref {
		xref[i] = math.Sin(float64(i+1) / 3.0)
	}
	A.MatVec(b, xref)

	var conf inp.LinSolData
	conf.SetDefault()
	conf.Name = "Belos"
	conf.AzSolve = "CG"
	conf.AzPrec = "ILU"
	conf.AzTol = 1e-12
	sol := New(conf)
	if err := sol.Init(A); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	x := make([]float64, n)
	if err := sol.Solve(x, b); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	io.Pforan("iterations = %d  residual = %g\n", sol.Stats.Iterations, sol.Stats.Residual)
	if !sol.Stats.Converged {
		tst.Errorf("CG did not converge\n")
		return
	}
	chk.Vector(tst, "x", 1e-9, x, xref)
}

func Test_sol03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sol03. GMRES with two-level preconditioner, reuse accounting")

	n := 64
	A := convdiff(tst, n)
	xref := make([]float64, n)
	b := make([]float64, n)
	for i := range xref {
		xref[i] = 1 + float64(i%5)
	}
	A.MatVec(b, xref)

	var conf inp.LinSolData
	conf.SetDefault()
	conf.Name = "Belos"
	conf.AzSolve = "GMRES"
	conf.AzPrec = "MueLu"
	conf.AzTol = 1e-11
	conf.AzSub = 20
	conf.AzReuse = 3
	sol := New(conf)
	if err := sol.Init(A); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	x := make([]float64, n)
	if err := sol.Solve(x, b); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	io.Pforan("first solve: it = %d  |r| = %g\n", sol.Stats.Iterations, sol.Stats.Residual)
	if sol.Stats.PrecReused {
		tst.Errorf("first solve cannot reuse a preconditioner\n")
		return
	}
	chk.Vector(tst, "x", 1e-8, x, xref)

	// second solve keeps the preconditioner
	for i := range x {
		x[i] = 0
	}
	if err := sol.Solve(x, b); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if !sol.Stats.PrecReused {
		tst.Errorf("second solve within azreuse must reuse the preconditioner\n")
		return
	}
	chk.Vector(tst, "x (reused prec)", 1e-8, x, xref)
}

func Test_sol04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sol04. BiCGSTAB with block Gauss-Seidel preconditioner")

	// block system: laplacian diagonal blocks with weak coupling
	s0 := dmap.NewContiguousMap(8, 0)
	s1 := dmap.NewMap([]int{100, 101, 102, 103}, 0, true)
	ext, err := dmap.NewExtractor([]*dmap.Map{s0, s1})
	if err != nil {
		tst.Fatalf("extractor failed:\n%v", err)
	}
	B := spm.NewBlockMatrix(ext, ext)

	a00 := spm.NewMatrix(s0, 3, false, false)
	for i := 0; i < 8; i++ {
		a00.AssembleValue(2, i, i)
		if i > 0 {
			a00.AssembleValue(-1, i, i-1)
		}
		if i < 7 {
			a00.AssembleValue(-1, i, i+1)
		}
	}
	a11 := spm.NewMatrix(s1, 2, false, false)
	for i := 0; i < 4; i++ {
		a11.AssembleValue(5, 100+i, 100+i)
	}
	a01 := spm.NewMatrix(s0, 1, false, false)
	a01.AssembleValue(0.5, 3, 101)
	a10 := spm.NewMatrix(s1, 1, false, false)
	a10.AssembleValue(0.5, 101, 3)

	B.Assign(0, 0, spm.View, a00)
	B.Assign(1, 1, spm.View, a11)
	B.Assign(0, 1, spm.View, a01)
	B.Assign(1, 0, spm.View, a10)
	if err = B.Complete(); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	var conf inp.LinSolData
	conf.SetDefault()
	conf.Name = "Belos"
	conf.AzSolve = "BiCGSTAB"
	conf.AzPrec = "Teko"
	conf.AzTol = 1e-11
	sol := New(conf)
	if err = sol.InitBlock(B); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	n := 12
	xref := make([]float64, n)
	b := make([]float64, n)
	for i := range xref {
		xref[i] = float64(i + 1)
	}
	sol.A.MatVec(b, xref)

	x := make([]float64, n)
	if err = sol.Solve(x, b); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	io.Pforan("iterations = %d  residual = %g\n", sol.Stats.Iterations, sol.Stats.Residual)
	chk.Vector(tst, "x", 1e-8, x, xref)
}

func Test_sol05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sol05. non-convergence handling and adaptive tolerance")

	n := 40
	A := laplacian(tst, n)
	b := make([]float64, n)
	for i := range b {
		b[i] = 1
	}

	// iteration cap too low: fatal with THROW_IF_UNCONVERGED
	var conf inp.LinSolData
	conf.SetDefault()
	conf.Name = "Belos"
	conf.AzSolve = "CG"
	conf.AzIter = 2
	conf.AzTol = 1e-14
	sol := New(conf)
	if err := sol.Init(A); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	x := make([]float64, n)
	err := sol.Solve(x, b)
	if !errors.Is(err, ErrNotConverged) {
		tst.Errorf("expected ErrNotConverged, got: %v\n", err)
		return
	}

	// same setup, tolerant mode only reports
	conf.ThrowIfUnconverged = false
	sol = New(conf)
	sol.Init(A)
	for i := range x {
		x[i] = 0
	}
	if err := sol.Solve(x, b); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if sol.Stats.Converged {
		tst.Errorf("2 iterations cannot converge to 1e-14\n")
		return
	}

	// adaptive tolerance loosens the target from the outer residual
	conf.AdaptConv = true
	conf.AzIter = 1000
	conf.AzTol = 1e-12
	sol = New(conf)
	sol.Init(A)
	sol.AdaptTolerance(1e-8, 1e-2) // tol = 0.1*1e-8/1e-2 = 1e-7
	for i := range x {
		x[i] = 0
	}
	if err := sol.Solve(x, b); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	r0 := 0.0
	for range b {
		r0 += 1 // ‖r0‖² with x0 = 0 and b = 1⃗
	}
	r0 = math.Sqrt(r0)
	if sol.Stats.Residual > 1e-7*r0 {
		tst.Errorf("adapted tolerance not honored: %g\n", sol.Stats.Residual)
		return
	}
	io.Pforan("adapted solve: it = %d  |r| = %g\n", sol.Stats.Iterations, sol.Stats.Residual)
}
