// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/reginabuehler/4C-sub006/pvec"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// dof numbering used throughout the tests: node*3 + component
func tdof(node, k int) int { return node*3 + k }

func tdofs(nodes []int) (d [][3]int) {
	d = make([][3]int, len(nodes))
	for i, n := range nodes {
		for k := 0; k < 3; k++ {
			d[i][k] = tdof(n, k)
		}
	}
	return
}

func Test_geo01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geo01. auxiliary plane of a flat triangle")

	x := [][3]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
	sele := NewElement(0, "tri3", []int{1, 2, 3}, x, tdofs([]int{1, 2, 3}))
	mele := NewElement(1, "tri3", []int{4, 5, 6}, x, tdofs([]int{4, 5, 6}))

	cp := NewCoupling(sele, mele)
	cp.BuildAuxPlane()

	chk.Vector(tst, "auxc", 1e-15, cp.Auxc[:], []float64{2.0 / 3.0, 2.0 / 3.0, 0})
	chk.Vector(tst, "auxn", 1e-15, cp.Auxn[:], []float64{0, 0, 1})

	// center derivative: node i, component k contributes N_i
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			chk.Scalar(tst, io.Sf("dauxc%d/dx(%d,%d)", k, i+1, k), 1e-15, cp.LinAuxc[k].Get(tdof(i+1, k)), 1.0/3.0)
		}
	}
}

func Test_geo02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geo02. aux normal derivative vs finite differences")

	build := func(xs [][3]float64) *Coupling {
		sele := NewElement(0, "tri3", []int{1, 2, 3}, xs, tdofs([]int{1, 2, 3}))
		mele := NewElement(1, "tri3", []int{4, 5, 6}, xs, tdofs([]int{4, 5, 6}))
		cp := NewCoupling(sele, mele)
		cp.BuildAuxPlane()
		return cp
	}

	// tilted triangle so all normal components are active
	x0 := [][3]float64{{0, 0, 0.1}, {1.2, 0.1, 0}, {0.2, 1, 0.3}}
	cp := build(x0)

	h := 1e-6
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			xp := [][3]float64{x0[0], x0[1], x0[2]}
			xp[i][k] += h
			np := build(xp).Auxn
			xp[i][k] -= 2 * h
			nm := build(xp).Auxn
			xp[i][k] += h
			for m := 0; m < 3; m++ {
				fd := (np[m] - nm[m]) / (2 * h)
				chk.AnaNum(tst, io.Sf("dauxn%d/dx(%d,%d)", m, i+1, k), 1e-8, cp.LinAuxn[m].Get(tdof(i+1, k)), fd, chk.Verbose)
			}
		}
	}
}

func Test_geo03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geo03. triangle-square clipping: interior master")

	// master square strictly inside the slave triangle
	xs := [][3]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
	xm := [][3]float64{{0.1, 0.1, 0}, {0.6, 0.1, 0}, {0.6, 0.6, 0}, {0.1, 0.6, 0}}
	sele := NewElement(0, "tri3", []int{1, 2, 3}, xs, tdofs([]int{1, 2, 3}))
	mele := NewElement(1, "qua4", []int{4, 5, 6, 7}, xm, tdofs([]int{4, 5, 6, 7}))

	cp := NewCoupling(sele, mele)
	err := cp.EvalGeometry()
	if err != nil {
		tst.Errorf("EvalGeometry failed: %v\n", err)
		return
	}

	chk.IntAssert(len(cp.Clip), 4)
	area := 0.0
	for _, cell := range cp.Cells {
		area += cell.A
	}
	chk.Scalar(tst, "clip area", 1e-12, area, 0.25)
}

func Test_geo04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geo04. triangle-square clipping: corner overlap")

	// square overlapping the right-angle corner region: the clip polygon
	// mixes lineclip and master vertices
	xs := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	xm := [][3]float64{{0.4, 0.4, 0}, {1.4, 0.4, 0}, {1.4, 1.4, 0}, {0.4, 1.4, 0}}
	sele := NewElement(0, "tri3", []int{1, 2, 3}, xs, tdofs([]int{1, 2, 3}))
	mele := NewElement(1, "qua4", []int{4, 5, 6, 7}, xm, tdofs([]int{4, 5, 6, 7}))

	cp := NewCoupling(sele, mele)
	err := cp.EvalGeometry()
	if err != nil {
		tst.Errorf("EvalGeometry failed: %v\n", err)
		return
	}

	// region x>=0.4, y>=0.4, x+y<=1: triangle of area 0.02
	chk.IntAssert(len(cp.Clip), 3)
	area := 0.0
	for _, cell := range cp.Cells {
		area += cell.A
	}
	chk.Scalar(tst, "clip area", 1e-12, area, 0.02)

	nlineclip := 0
	for _, v := range cp.Clip {
		if v.Type == LineClip {
			nlineclip++
			chk.IntAssert(len(v.Nodeids), 4)
		}
	}
	chk.IntAssert(nlineclip, 2)
}

func Test_geo05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geo05. cell jacobian derivative vs finite differences")

	build := func(xm0 [3]float64) *Coupling {
		xs := [][3]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
		xm := [][3]float64{xm0, {0.6, 0.1, 0}, {0.6, 0.6, 0}, {0.1, 0.6, 0}}
		sele := NewElement(0, "tri3", []int{1, 2, 3}, xs, tdofs([]int{1, 2, 3}))
		mele := NewElement(1, "qua4", []int{4, 5, 6, 7}, xm, tdofs([]int{4, 5, 6, 7}))
		cp := NewCoupling(sele, mele)
		if err := cp.EvalGeometry(); err != nil {
			chk.Panic("EvalGeometry failed: %v", err)
		}
		return cp
	}

	// total jacobian of the fan triangulation as scalar quantity
	totJac := func(cp *Coupling) (j float64) {
		for _, cell := range cp.Cells {
			j += cell.Jacobian()
		}
		return
	}

	xm0 := [3]float64{0.1, 0.1, 0}
	cp := build(xm0)

	h := 1e-6
	for k := 0; k < 2; k++ {
		xp := xm0
		xp[k] += h
		jp := totJac(build(xp))
		xp[k] -= 2 * h
		jm := totJac(build(xp))
		fd := (jp - jm) / (2 * h)

		ana := 0.0
		for _, cell := range cp.Cells {
			djac := pvec.New(16)
			cell.DerivJacobian(djac)
			ana += djac.Get(tdof(4, k))
		}
		chk.AnaNum(tst, io.Sf("dJ/dxm0[%d]", k), 1e-8, ana, fd, chk.Verbose)
	}
}
