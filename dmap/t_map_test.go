// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmap

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_map01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("map01. construction, gid/lid, sameas, merge")

	m := NewMap([]int{4, 7, 1, 9}, 0, true)
	chk.IntAssert(m.NumGlobalElements(), 4)
	chk.IntAssert(m.NumMyElements(), 4)

	g, err := m.Gid(1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(g, 7)
	chk.IntAssert(m.Lid(9), 3)
	chk.IntAssert(m.Lid(5), -1)

	if _, err := m.Gid(4); err == nil {
		tst.Errorf("Gid out of range must fail")
		return
	}

	b := NewMap([]int{4, 7, 1, 9}, 0, true)
	if !m.SameAs(b) {
		tst.Errorf("SameAs failed for identical maps")
		return
	}
	c := NewMap([]int{4, 1, 7, 9}, 0, true)
	if m.SameAs(c) {
		tst.Errorf("SameAs must be order sensitive")
		return
	}

	d := NewMap([]int{9, 12}, 0, true)
	merged := m.Merge(d)
	chk.Ints(tst, "merged gids", merged.Gids(), []int{4, 7, 1, 9, 12})
	if merged.Unique() {
		tst.Errorf("merge of overlapping maps must not be unique")
		return
	}

	e := NewContiguousMap(3, 10)
	chk.Ints(tst, "contiguous gids", e.Gids(), []int{10, 11, 12})
}

func Test_vec01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("vec01. vector operations over a map")

	m := NewContiguousMap(4, 0)
	x := NewVector(m)
	x.PutScalar(2.0)

	y := NewVector(m)
	y.V[0], y.V[1], y.V[2], y.V[3] = 1, -3, 2, 0.5

	// x := 2*y + 0.5*x
	err := x.Update(2.0, y, 0.5)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "x", 1e-17, x.V, []float64{3, -5, 5, 2})

	chk.Scalar(tst, "max", 1e-17, x.MaxValue(), 5)
	chk.Scalar(tst, "norminf", 1e-17, x.NormInf(), 5)

	err = x.Reciprocal()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "1/x", 1e-15, x.V, []float64{1.0 / 3.0, -0.2, 0.2, 0.5})

	z := NewVector(m)
	err = z.Multiply(x, y)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "x.*y", 1e-15, z.V, []float64{1.0 / 3.0, 0.6, 0.4, 0.25})

	err = z.ReplaceGlobalValue(2, -1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = z.SumIntoGlobalValues([]int{0, 2}, []float64{1, 1})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Scalar(tst, "z[0]", 1e-15, z.V[0], 1.0/3.0+1.0)
	chk.Scalar(tst, "z[2]", 1e-17, z.V[2], 0.0)

	// mismatched maps must fail
	other := NewContiguousMap(5, 0)
	w := NewVector(other)
	if err := z.Update(1, w, 1); err == nil {
		tst.Errorf("Update across non-conforming maps must fail")
		return
	}
}

func Test_ext01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ext01. merge-and-split is the identity")

	s0 := NewMap([]int{0, 1, 2, 3}, 0, true)
	s1 := NewMap([]int{10, 11}, 0, true)
	s2 := NewMap([]int{7, 8, 9}, 0, true)
	ext, err := NewExtractor([]*Map{s0, s1, s2})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(ext.NumMaps(), 3)
	chk.Ints(tst, "full gids", ext.FullMap().Gids(), []int{0, 1, 2, 3, 10, 11, 7, 8, 9})
	chk.IntAssert(ext.WhichMap(11), 1)
	chk.IntAssert(ext.WhichMap(77), -1)

	full := NewVector(ext.FullMap())
	for i := range full.V {
		full.V[i] = float64(i) + 0.5
	}
	orig := full.Copy()

	// extract all, zero the full vector, insert back
	subs := make([]*Vector, 3)
	for i := 0; i < 3; i++ {
		subs[i], err = ext.ExtractVector(full, i)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
	}
	full.PutScalar(0)
	for i := 0; i < 3; i++ {
		err = ext.InsertVector(subs[i], i, full)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
	}
	chk.Vector(tst, "identity", 1e-17, full.V, orig.V)

	// overlapping sub-maps must be rejected
	if _, err := NewExtractor([]*Map{s0, NewMap([]int{3, 4}, 0, true)}); err == nil {
		tst.Errorf("overlapping sub-maps must fail")
		return
	}
}

func Test_exp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("exp01. exporter combine modes")

	src := NewMap([]int{0, 1, 2, 3, 4}, 0, true)
	dst := NewMap([]int{2, 4, 6}, 0, true)
	ex := NewExporter(src, dst)
	chk.IntAssert(ex.NumTransfers(), 2) // gids 2 and 4

	x := NewVector(src)
	x.V[2] = 5.0
	x.V[4] = -7.0

	y := NewVector(dst)
	y.PutScalar(1.0)

	err := ex.Apply(x, y, Insert)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "insert", 1e-17, y.V, []float64{5, -7, 1})

	err = ex.Apply(x, y, Add)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "add", 1e-17, y.V, []float64{10, -14, 1})

	y.V[0], y.V[1] = -20, 3
	err = ex.Apply(x, y, AbsMax)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Vector(tst, "absmax", 1e-17, y.V, []float64{-20, -7, 1})
}

func Test_exp02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("exp02. parallel exporter matches serial result")

	n := 1000
	src := NewContiguousMap(n, 0)
	gids := make([]int, 0, n/2)
	for g := 0; g < n; g += 2 {
		gids = append(gids, g)
	}
	dst := NewMap(gids, 0, true)

	x := NewVector(src)
	for i := range x.V {
		x.V[i] = float64(i)*0.25 - 3.0
	}

	ex := NewExporter(src, dst)
	want := NewVector(dst)
	err := ex.Apply(x, want, Insert)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	for _, nw := range []int{1, 2, 3, 7} {
		pex := NewParExporter(ex, nw)
		got := NewVector(dst)
		err = pex.Apply(x, got, Insert)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		chk.Vector(tst, io.Sf("nw=%d", nw), 1e-17, got.V, want.V)
	}
}

func Test_part01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("part01. partition map split and lookup")

	pm := NewPartitionMap(3, 10)
	// 10 = 3*3 + 1: first bucket takes the extra item
	chk.IntAssert(pm.Partitions[0][0], 0)
	chk.IntAssert(pm.Partitions[0][1], 4)
	chk.IntAssert(pm.Partitions[1][0], 4)
	chk.IntAssert(pm.Partitions[1][1], 7)
	chk.IntAssert(pm.Partitions[2][0], 7)
	chk.IntAssert(pm.Partitions[2][1], 10)

	for k := 0; k < 10; k++ {
		bn, min, max := pm.GetBucket(k)
		if k < min || k >= max {
			tst.Errorf("bucket %d does not contain %d", bn, k)
			return
		}
	}
}
