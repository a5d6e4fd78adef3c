// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/reginabuehler/4C-sub006/dmap"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// dense returns the completed matrix as a dense array laid out by
// (row map local, domain map local)
func dense(o *Matrix) [][]float64 {
	nr := o.RowMap().NumMyElements()
	nc := o.DomainMap().NumMyElements()
	d := make([][]float64, nr)
	for i := range d {
		d[i] = make([]float64, nc)
	}
	o.EachNonZero(func(rgid, cgid int, v float64) {
		d[o.RowMap().Lid(rgid)][o.DomainMap().Lid(cgid)] = v
	})
	return d
}

func Test_mat01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mat01. FE assembly and completion")

	/*  two 1D elements, stiffness [1 -1; -1 1], dofs 0-1-2:
	 *
	 *    0 o---------o---------o 2
	 *         (0)    1    (1)
	 */
	rmap := dmap.NewContiguousMap(3, 0)
	A := NewMatrix(rmap, 3, false, true)

	ke := [][]float64{{1, -1}, {-1, 1}}
	err := A.Assemble(0, []int{1, 1}, ke, []int{0, 1}, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = A.Assemble(1, []int{1, 1}, ke, []int{1, 2}, nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	err = A.Complete(rmap, rmap)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Matrix(tst, "A", 1e-17, dense(A), [][]float64{
		{1, -1, 0},
		{-1, 2, -1},
		{0, -1, 1},
	})

	// assembly after completion must fail
	if err := A.Assemble(0, []int{1, 1}, ke, []int{0, 1}, nil); err == nil {
		tst.Errorf("Assemble on completed matrix must fail")
		return
	}

	// matrix-vector product
	y := make([]float64, 3)
	err = A.MatVec(y, []float64{1, 2, 4})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "A*x", 1e-17, y, []float64{-1, -1, 2})

	d, err := A.ExtractDiagonalCopy()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "diag", 1e-17, d.V, []float64{1, 2, 1})

	nrm, err := A.NormInf()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Scalar(tst, "norminf", 1e-17, nrm, 4)
}

func Test_mat02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mat02. complete-uncomplete-complete leaves values unchanged")

	rmap := dmap.NewContiguousMap(4, 0)
	A := NewMatrix(rmap, 4, false, true)
	A.AssembleValue(2.5, 0, 0)
	A.AssembleValue(-1.5, 0, 3)
	A.AssembleValue(7.0, 2, 1)
	A.AssembleValue(1.0, 3, 3)

	err := A.Complete(rmap, rmap)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	before := dense(A)

	A.UnComplete()
	if A.Filled() {
		tst.Errorf("UnComplete must leave the matrix editable")
		return
	}
	err = A.Complete(rmap, rmap)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Matrix(tst, "roundtrip", 1e-17, dense(A), before)

	// editing between the two completions must be visible
	A.UnComplete()
	A.AssembleValue(1.0, 2, 1)
	A.Complete(rmap, rmap)
	chk.Scalar(tst, "A[2,1]", 1e-17, dense(A)[2][1], 8.0)
}

func Test_mat03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mat03. dirichlet rows, both strategies, idempotent")

	for _, explicit := range []bool{true, false} {
		rmap := dmap.NewContiguousMap(3, 0)
		A := NewMatrix(rmap, 3, explicit, true)
		A.AssembleValue(2, 0, 0)
		A.AssembleValue(-1, 0, 1)
		A.AssembleValue(-1, 1, 0)
		A.AssembleValue(2, 1, 1)
		A.AssembleValue(-1, 1, 2)
		A.AssembleValue(-1, 2, 1)
		A.AssembleValue(2, 2, 2)
		err := A.Complete(rmap, rmap)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}

		dbc := dmap.NewMap([]int{0}, 0, true)
		err = A.ApplyDirichlet(dbc, true)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		want := [][]float64{
			{1, 0, 0},
			{-1, 2, -1},
			{0, -1, 2},
		}
		chk.Matrix(tst, io.Sf("dbc explicit=%v", explicit), 1e-17, dense(A), want)

		// second application with the same map changes nothing
		err = A.ApplyDirichlet(dbc, true)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		chk.Matrix(tst, io.Sf("dbc idempotent explicit=%v", explicit), 1e-17, dense(A), want)
	}
}

func Test_mat04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mat04. multiply, add, scale")

	rmap := dmap.NewContiguousMap(2, 0)
	A := NewMatrix(rmap, 2, false, false)
	A.AssembleValue(1, 0, 0)
	A.AssembleValue(2, 0, 1)
	A.AssembleValue(3, 1, 0)
	A.AssembleValue(4, 1, 1)
	A.Complete(rmap, rmap)

	B := NewMatrix(rmap, 2, false, false)
	B.AssembleValue(0, 0, 0)
	B.AssembleValue(1, 0, 1)
	B.AssembleValue(-1, 1, 0)
	B.AssembleValue(2, 1, 1)
	B.Complete(rmap, rmap)

	C, err := A.Multiply(false, B, false, true)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Matrix(tst, "A*B", 1e-15, dense(C), [][]float64{
		{-2, 5},
		{-4, 11},
	})

	Ct, err := A.Multiply(true, B, false, true)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Matrix(tst, "At*B", 1e-15, dense(Ct), [][]float64{
		{-3, 7},
		{-4, 10},
	})

	// S := 2*A + B (assembling-state accumulation)
	S := NewMatrix(rmap, 2, false, false)
	err = S.Add(A, false, 2, 1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = S.Add(B, false, 1, 1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	S.Complete(rmap, rmap)
	chk.Matrix(tst, "2A+B", 1e-15, dense(S), [][]float64{
		{2, 5},
		{5, 10},
	})

	S.Scale(0.5)
	chk.Matrix(tst, "scaled", 1e-15, dense(S), [][]float64{
		{1, 2.5},
		{2.5, 5},
	})
}

func Test_mat05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mat05. deferred contributions for unowned rows")

	rmap := dmap.NewContiguousMap(2, 0)
	A := NewMatrix(rmap, 2, false, false)
	ke := [][]float64{{1, -1}, {-1, 1}}

	// row 1 flagged as not owned here: deferred until Complete
	err := A.Assemble(0, []int{1, 1}, ke, []int{0, 1}, []bool{true, false})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = A.Complete(rmap, rmap)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Matrix(tst, "gathered", 1e-17, dense(A), [][]float64{
		{1, -1},
		{-1, 1},
	})
}
