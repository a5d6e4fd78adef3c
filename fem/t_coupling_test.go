// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/dmap"
	"github.com/reginabuehler/4C-sub006/inp"
	"github.com/reginabuehler/4C-sub006/mortar"
	"github.com/reginabuehler/4C-sub006/spm"
)

// dof numbering used throughout the tests: one scalar dof per node
func tdofs(nodes []int) (d [][3]int) {
	d = make([][3]int, len(nodes))
	for i, n := range nodes {
		for k := 0; k < 3; k++ {
			d[i][k] = n*3 + k
		}
	}
	return
}

// matchingLinePair builds an interface with coincident lin2 elements:
// slave nodes 1,2 and master nodes 3,4 on the unit segment
func matchingLinePair() *mortar.Interface {
	conf := new(inp.MortarData)
	conf.SetDefault()
	iface := mortar.NewInterface(0, conf)
	x := [][3]float64{{0, 0, 0}, {1, 0, 0}}
	iface.AddSlave(mortar.NewElement(0, "lin2", []int{1, 2}, x, tdofs([]int{1, 2})))
	iface.AddMaster(mortar.NewElement(1, "lin2", []int{3, 4}, x, tdofs([]int{3, 4})))
	return iface
}

func Test_coup01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("coup01. tied line pair, structure split")

	// solid dofs 0,1 on nodes 1,2; fluid dofs 2,3 on nodes 3,4. The fluid
	// load pins the master state at ones; the constraint drags the solid
	// along, and the multiplier balances the solid equilibrium
	solid := newLinField("solid", []int{0, 1}, nil,
		[][]float64{{2, -1}, {-1, 2}}, []float64{0.3, 0.3})
	fluid := newLinField("fluid", []int{2, 3}, nil,
		[][]float64{{3, -1}, {-1, 3}}, []float64{2, 2})

	m := NewMain(testSim(), false)
	m.AddField(solid)
	m.AddField(fluid)
	c := m.TieFields(matchingLinePair(), 0, 1,
		func(n int) int { return n - 1 }, // slave nodes 1,2 -> dofs 0,1
		func(n int) int { return n - 1 }, // master nodes 3,4 -> dofs 2,3
		0)
	if err := m.Initialize(); err != nil {
		tst.Fatal(err)
	}
	if err := m.Run(); err != nil {
		tst.Fatal(err)
	}

	chk.IntAssert(c.Slave, 0)
	chk.Vector(tst, "ys", 1e-10, solid.Y.V, []float64{1, 1})
	chk.Vector(tst, "ym", 1e-10, fluid.Y.V, []float64{1, 1})

	// lam = -invD*(Ks*ys - loads) = -2*(1 - 0.3) per node
	chk.Vector(tst, "lam", 1e-10, c.Lam.V, []float64{-1.4, -1.4})
	chk.Vector(tst, "lamN", 1e-10, c.LamN.V, []float64{-1.4, -1.4})
}

func Test_coup02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("coup02. tied line pair, fluid split")

	// same geometry with swapped condensation roles: the solid load pins
	// the state at ones and the fluid side carries the constraint rows
	solid := newLinField("solid", []int{0, 1}, nil,
		[][]float64{{2, -1}, {-1, 2}}, []float64{1, 1})
	fluid := newLinField("fluid", []int{2, 3}, nil,
		[][]float64{{3, -1}, {-1, 3}}, []float64{0, 0})

	conf := new(inp.MortarData)
	conf.SetDefault()
	iface := mortar.NewInterface(0, conf)
	x := [][3]float64{{0, 0, 0}, {1, 0, 0}}
	iface.AddSlave(mortar.NewElement(0, "lin2", []int{1, 2}, x, tdofs([]int{1, 2})))
	iface.AddMaster(mortar.NewElement(1, "lin2", []int{3, 4}, x, tdofs([]int{3, 4})))

	sim := testSim()
	sim.Solver.Condense = "fluidsplit"
	m := NewMain(sim, false)
	m.AddField(solid)
	m.AddField(fluid)
	c := m.TieFields(iface, 0, 1,
		func(n int) int { return n - 3 }, // master nodes 3,4 -> solid dofs 0,1
		func(n int) int { return n + 1 }, // slave nodes 1,2 -> fluid dofs 2,3
		0)
	if err := m.Initialize(); err != nil {
		tst.Fatal(err)
	}
	if err := m.Run(); err != nil {
		tst.Fatal(err)
	}

	chk.IntAssert(c.Slave, 1)
	chk.IntAssert(c.Master, 0)
	chk.Vector(tst, "ys", 1e-10, solid.Y.V, []float64{1, 1})
	chk.Vector(tst, "yf", 1e-10, fluid.Y.V, []float64{1, 1})

	// lam = -invD*(Kf*yf - loadf) = -2*2 per node
	chk.Vector(tst, "lam", 1e-10, c.Lam.V, []float64{-4, -4})
}

func Test_coup03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("coup03. multiplier recovery identity")

	rows := dmap.NewMap([]int{0, 1}, 0, true)
	D := spm.NewMatrix(rows, 2, false, false)
	D.AssembleValue(0.5, 0, 0)
	D.AssembleValue(0.4, 1, 1)
	if err := D.Complete(rows, rows); err != nil {
		tst.Fatal(err)
	}

	c := &MortarCoupling{RowMap: rows, B: 1, D: D}
	c.Lam = dmap.NewVector(rows)
	c.LamN = dmap.NewVector(rows)
	c.InvD = dmap.NewVector(rows)
	c.InvD.V[0], c.InvD.V[1] = 2.0, 2.5

	// recovery without snapshots must fail
	if err := c.Recover(nil, nil); err == nil {
		tst.Errorf("recovery without snapshots must fail\n")
	}

	rg := dmap.NewVector(rows)
	rg.V[0], rg.V[1] = 0.2, -0.1
	c.Snapshot(nil, nil, rg)
	if err := c.Recover(nil, nil); err != nil {
		tst.Fatal(err)
	}

	// at zero increments and b = 1: D*lam + rg = 0
	dl := make([]float64, 2)
	if err := D.MatVec(dl, c.Lam.V); err != nil {
		tst.Fatal(err)
	}
	chk.Vector(tst, "D*lam + rg", 1e-12, []float64{dl[0] + rg.V[0], dl[1] + rg.V[1]}, []float64{0, 0})

	// with history: b*D*lam + (1-b)*Dn*lamN + rg = 0
	c.B = 0.5
	c.Dn = D
	c.LamN.V[0], c.LamN.V[1] = 1, 1
	if err := c.Recover(nil, nil); err != nil {
		tst.Fatal(err)
	}
	if err := D.MatVec(dl, c.Lam.V); err != nil {
		tst.Fatal(err)
	}
	dn := make([]float64, 2)
	if err := c.Dn.MatVec(dn, c.LamN.V); err != nil {
		tst.Fatal(err)
	}
	res := []float64{
		0.5*dl[0] + 0.5*dn[0] + rg.V[0],
		0.5*dl[1] + 0.5*dn[1] + rg.V[1],
	}
	chk.Vector(tst, "b*D*lam + (1-b)*Dn*lamN + rg", 1e-12, res, []float64{0, 0})
}
