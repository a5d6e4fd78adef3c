// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

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

func Test_shp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shp01. partition of unity at nodes")

	for name, shape := range factory {
		io.Pfyel("--------------------------------- %-6s---------------------------------\n", name)
		CheckShape(tst, shape, 1e-17, chk.Verbose)
	}
}

func Test_shp02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shp02. dSdR derivatives")

	r := []float64{0.2, 0.3, 0}
	for name, shape := range factory {
		io.Pfyel("--------------------------------- %-6s---------------------------------\n", name)
		CheckDSdR(tst, shape, r, 1e-7, chk.Verbose)
	}
}

func Test_shp03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shp03. factory access and copies")

	if Get("hex20", 0) != nil {
		tst.Errorf("unknown shapes must return nil\n")
		return
	}
	s := Get("tri3", 0)
	if s == nil {
		tst.Errorf("cannot get tri3\n")
		return
	}
	chk.IntAssert(s.Nverts, 3)
	chk.IntAssert(s.Gndim, 2)

	// goroutine copies do not share scratchpads
	c := Get("tri3", 1)
	c.Func(c.S, c.DSdR, []float64{1, 0, 0}, false)
	s.Func(s.S, s.DSdR, []float64{0, 0, 0}, false)
	chk.Scalar(tst, "copy S1", 1e-17, c.S[1], 1)
	chk.Scalar(tst, "orig S0", 1e-17, s.S[0], 1)
}
