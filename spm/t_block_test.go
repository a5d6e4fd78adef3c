// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/dmap"
)

func twoByTwoExtractor(tst *testing.T) (*dmap.Extractor, *dmap.Extractor) {
	s0 := dmap.NewContiguousMap(3, 0)           // gids 0,1,2
	s1 := dmap.NewMap([]int{10, 11}, 0, true)   // gids 10,11
	rext, err := dmap.NewExtractor([]*dmap.Map{s0, s1})
	if err != nil {
		tst.Fatalf("extractor failed:\n%v", err)
	}
	return rext, rext
}

func Test_blk01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blk01. block assign, complete and apply")

	rext, cext := twoByTwoExtractor(tst)
	A := NewBlockMatrix(rext, cext)
	chk.IntAssert(A.NumRowBlocks(), 2)
	chk.IntAssert(A.NumColBlocks(), 2)

	// diagonal blocks: 2x identity-ish, off-diagonal coupling
	a00 := NewMatrix(rext.SubMap(0), 2, false, false)
	a00.AssembleValue(2, 0, 0)
	a00.AssembleValue(2, 1, 1)
	a00.AssembleValue(2, 2, 2)

	a11 := NewMatrix(rext.SubMap(1), 2, false, false)
	a11.AssembleValue(3, 10, 10)
	a11.AssembleValue(3, 11, 11)

	a01 := NewMatrix(rext.SubMap(0), 2, false, false)
	a01.AssembleValue(1, 0, 10)
	a01.AssembleValue(1, 2, 11)

	if err := A.Assign(0, 0, View, a00); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if err := A.Assign(1, 1, View, a11); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if err := A.Assign(0, 1, View, a01); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	if err := A.Complete(); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// x = [1 1 1 | 2 2],  y = [2+2, 2, 2+2 | 6, 6]
	x := dmap.NewVector(cext.FullMap())
	x.V[0], x.V[1], x.V[2], x.V[3], x.V[4] = 1, 1, 1, 2, 2
	y := dmap.NewVector(rext.FullMap())
	if err := A.Apply(x, y); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "y", 1e-15, y.V, []float64{4, 2, 4, 6, 6})

	// merged matrix reproduces the block product
	M, err := A.Merge()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	ym := make([]float64, 5)
	if err := M.MatVec(ym, x.V); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "merged y", 1e-15, ym, y.V)
}

func Test_blk02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blk02. block dirichlet across a block row")

	rext, cext := twoByTwoExtractor(tst)
	A := NewBlockMatrix(rext, cext)

	a00 := NewMatrix(rext.SubMap(0), 2, false, false)
	a00.AssembleValue(4, 0, 0)
	a00.AssembleValue(-1, 0, 1)
	a00.AssembleValue(4, 1, 1)
	a00.AssembleValue(4, 2, 2)
	a01 := NewMatrix(rext.SubMap(0), 2, false, false)
	a01.AssembleValue(5, 0, 10)
	a11 := NewMatrix(rext.SubMap(1), 2, false, false)
	a11.AssembleValue(1, 10, 10)
	a11.AssembleValue(1, 11, 11)

	A.Assign(0, 0, View, a00)
	A.Assign(0, 1, View, a01)
	A.Assign(1, 1, View, a11)
	if err := A.Complete(); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	dbc := dmap.NewMap([]int{0}, 0, true)
	if err := A.ApplyDirichlet(dbc); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// row 0: unit diagonal in (0,0), zeroed in (0,1)
	d00 := dense(A.Block(0, 0))
	chk.Vector(tst, "row0 of (0,0)", 1e-17, d00[0], []float64{1, 0, 0})
	d01 := dense(A.Block(0, 1))
	chk.Vector(tst, "row0 of (0,1)", 1e-17, d01[0], []float64{0, 0})

	// untouched rows stay
	chk.Scalar(tst, "(0,0)[1,1]", 1e-17, d00[1][1], 4)
	chk.Scalar(tst, "(1,1)[0,0]", 1e-17, dense(A.Block(1, 1))[0][0], 1)
}

func Test_blk03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blk03. copy access decouples the assigned block")

	rext, cext := twoByTwoExtractor(tst)
	A := NewBlockMatrix(rext, cext)

	a00 := NewMatrix(rext.SubMap(0), 2, false, false)
	a00.AssembleValue(1, 0, 0)
	if err := A.Assign(0, 0, Copy, a00); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// mutating the source must not affect the installed copy
	a00.AssembleValue(100, 0, 0)
	A.Block(0, 0).Complete(cext.SubMap(0), rext.SubMap(0))
	chk.Scalar(tst, "copied block", 1e-17, dense(A.Block(0, 0))[0][0], 1)
}
