// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// findLineClip returns the lineclip vertex of the clip polygon closest
// to the target point
func findLineClip(cp *Coupling, target [3]float64) (best *Vertex) {
	dmin := 1e30
	for _, v := range cp.Clip {
		if v.Type != LineClip {
			continue
		}
		if d := norm(sub(v.X, target)); d < dmin {
			dmin, best = d, v
		}
	}
	return
}

func Test_clip01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("clip01. lineclip vertex linearization vs finite differences")

	xs0 := [][3]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
	xm0 := [][3]float64{{0.4, -0.5, 0}, {1.4, -0.5, 0}, {1.4, 0.5, 0}, {0.4, 0.5, 0}}

	build := func(xs, xm [][3]float64) *Coupling {
		sele := NewElement(0, "tri3", []int{1, 2, 3}, xs, tdofs([]int{1, 2, 3}))
		mele := NewElement(1, "qua4", []int{4, 5, 6, 7}, xm, tdofs([]int{4, 5, 6, 7}))
		cp := NewCoupling(sele, mele)
		if err := cp.EvalGeometry(); err != nil {
			chk.Panic("EvalGeometry failed: %v", err)
		}
		return cp
	}

	cp := build(xs0, xm0)
	target := [3]float64{0.4, 0, 0}
	v := findLineClip(cp, target)
	if v == nil {
		tst.Errorf("no lineclip vertex found\n")
		return
	}
	chk.Vector(tst, "vertex", 1e-12, v.X[:], []float64{0.4, 0, 0})
	lin := cp.linCache[v]

	// the intersection slides along the slave edge when the master edge
	// endpoints move in x: both endpoints carry weight 1/2
	chk.Scalar(tst, "dVx/dx(4,0)", 1e-12, lin[0].Get(tdof(4, 0)), 0.5)
	chk.Scalar(tst, "dVx/dx(7,0)", 1e-12, lin[0].Get(tdof(7, 0)), 0.5)

	// full finite difference sweep over every node and component
	h := 1e-6
	for i := 0; i < 7; i++ {
		for k := 0; k < 3; k++ {
			xs := make([][3]float64, 3)
			xm := make([][3]float64, 4)
			copy(xs, xs0)
			copy(xm, xm0)
			if i < 3 {
				xs[i][k] += h
			} else {
				xm[i-3][k] += h
			}
			vp := findLineClip(build(xs, xm), target)
			if i < 3 {
				xs[i][k] -= 2 * h
			} else {
				xm[i-3][k] -= 2 * h
			}
			vm := findLineClip(build(xs, xm), target)
			if vp == nil || vm == nil {
				tst.Errorf("lineclip vertex lost under perturbation of node %d\n", i+1)
				return
			}
			for m := 0; m < 3; m++ {
				fd := (vp.X[m] - vm.X[m]) / (2 * h)
				chk.AnaNum(tst, io.Sf("dV%d/dx(%d,%d)", m, i+1, k), 1e-7, lin[m].Get(tdof(i+1, k)), fd, chk.Verbose)
			}
		}
	}
}

func Test_clip02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("clip02. disjoint elements produce no overlap")

	xs := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	xm := [][3]float64{{2, 2, 0}, {3, 2, 0}, {3, 3, 0}, {2, 3, 0}}
	sele := NewElement(0, "tri3", []int{1, 2, 3}, xs, tdofs([]int{1, 2, 3}))
	mele := NewElement(1, "qua4", []int{4, 5, 6, 7}, xm, tdofs([]int{4, 5, 6, 7}))

	cp := NewCoupling(sele, mele)
	err := cp.EvalGeometry()
	if err != nil {
		tst.Errorf("EvalGeometry failed: %v\n", err)
		return
	}
	chk.IntAssert(len(cp.Clip), 0)
	chk.IntAssert(len(cp.Cells), 0)
}
