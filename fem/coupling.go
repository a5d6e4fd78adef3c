// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/reginabuehler/4C-sub006/dmap"
	"github.com/reginabuehler/4C-sub006/mortar"
	"github.com/reginabuehler/4C-sub006/spm"
)

// MortarCoupling ties one dof per slave node of a mortar interface to the
// master side. The slave-side equilibrium rows are replaced by the mortar
// constraint D·d_s − M·d_m + g = 0 during assembly; the eliminated
// multiplier is recovered after the solve from cached row snapshots
//
//	λ = −(1/b)·invD·[C_G·Δd + F_G·Δu + r_G] − ((1−b)/b)·invD·Dⁿ·λⁿ
//
// where C_G and F_G are the replaced rows of the slave block and of the
// slave→master coupling block, r_G the replaced residual rows and
// b = 1 − α_f. At zero increments and b = 1 the recovered multiplier
// satisfies D·λ + r_G = 0
type MortarCoupling struct {

	// configuration
	Iface  *mortar.Interface
	Slave  int     // index of the slave field
	Master int     // index of the master field
	B      float64 // b = 1 − α_f

	// dof mapping: constraint row / tied dof per interface node
	SlaveDof  func(node int) int
	MasterDof func(node int) int

	// built by Evaluate
	RowMap *dmap.Map    // constraint rows (slave interface dofs)
	D, M   *spm.Matrix  // mortar matrices over the constraint rows
	G      *dmap.Vector // weighted gap
	InvD   *dmap.Vector // inverse diagonal of D; zero entries replaced by 1

	// snapshots surviving the linear solve
	Cg, Fg *spm.Matrix  // replaced slave-block and coupling-block rows
	Rg     *dmap.Vector // replaced right-hand side rows
	Dn     *spm.Matrix  // D of the last accepted step
	Lam    *dmap.Vector // current multiplier
	LamN   *dmap.Vector // multiplier of the last accepted step

	masterMap *dmap.Map
}

// NewMortarCoupling creates a tied mortar coupling between two fields.
// alphaF is the generalized-α weighting of the slave field integrator
func NewMortarCoupling(iface *mortar.Interface, slave, master int, alphaF float64, sdof, mdof func(node int) int) (o *MortarCoupling) {
	o = &MortarCoupling{
		Iface:     iface,
		Slave:     slave,
		Master:    master,
		B:         1 - alphaF,
		SlaveDof:  sdof,
		MasterDof: mdof,
	}
	rows := make([]int, 0)
	for _, n := range iface.SlaveNodeIds() {
		rows = append(rows, sdof(n))
	}
	o.RowMap = dmap.NewMap(rows, 0, true)
	o.Lam = dmap.NewVector(o.RowMap)
	o.LamN = dmap.NewVector(o.RowMap)
	return
}

// Attach provides the master field map so the M block can be completed
// against the right column space
func (o *MortarCoupling) Attach(masterMap *dmap.Map) { o.masterMap = masterMap }

// Evaluate runs the mortar segmentation and integration and rebuilds the
// D and M matrices, the weighted gap and the inverse diagonal
func (o *MortarCoupling) Evaluate() (err error) {
	if o.masterMap == nil {
		return chk.Err("mortar coupling: Attach must be called before Evaluate")
	}
	if err = o.Iface.Evaluate(); err != nil {
		return
	}

	o.D = spm.NewMatrix(o.RowMap, 8, false, false)
	o.M = spm.NewMatrix(o.RowMap, 8, false, false)
	if err = o.Iface.AssembleDM(o.D, o.M, o.SlaveDof, o.SlaveDof, o.MasterDof); err != nil {
		return
	}
	if err = o.D.Complete(o.RowMap, o.RowMap); err != nil {
		return
	}
	if err = o.M.Complete(o.masterMap, o.RowMap); err != nil {
		return
	}

	o.G = dmap.NewVector(o.RowMap)
	if err = o.Iface.AssembleGap(o.G, o.SlaveDof); err != nil {
		return
	}

	// inverse diagonal; untouched slave rows keep a unit placeholder
	diag, err := o.D.ExtractDiagonalCopy()
	if err != nil {
		return
	}
	o.InvD = dmap.NewVector(o.RowMap)
	for l, v := range diag.V {
		if v == 0 {
			g, _ := o.RowMap.Gid(l)
			io.Pfred("mortar coupling: zero D diagonal at dof %d; using 1\n", g)
			v = 1
		}
		o.InvD.V[l] = 1.0 / v
	}

	if o.Dn == nil {
		o.Dn = o.D.Clone()
	}
	return
}

// Snapshot caches the rows about to be replaced by the constraint. The
// copies stay valid through the linear solve
func (o *MortarCoupling) Snapshot(cg, fg *spm.Matrix, rg *dmap.Vector) {
	o.Cg = cg
	o.Fg = fg
	o.Rg = rg.Copy()
}

// Recover computes the multiplier from the increments of the slave and
// master fields and the cached snapshots
func (o *MortarCoupling) Recover(dinc, uinc *dmap.Vector) (err error) {
	if o.Rg == nil {
		return chk.Err("mortar coupling: no snapshots for multiplier recovery")
	}
	n := o.RowMap.NumMyElements()
	acc := make([]float64, n)
	copy(acc, o.Rg.V)

	tmp := make([]float64, n)
	if o.Cg != nil && dinc != nil {
		if err = o.Cg.MatVec(tmp, dinc.V); err != nil {
			return
		}
		for l := 0; l < n; l++ {
			acc[l] += tmp[l]
		}
	}
	if o.Fg != nil && uinc != nil {
		if err = o.Fg.MatVec(tmp, uinc.V); err != nil {
			return
		}
		for l := 0; l < n; l++ {
			acc[l] += tmp[l]
		}
	}

	// history term Dⁿ·λⁿ
	dl := make([]float64, n)
	if o.Dn != nil {
		if err = o.Dn.MatVec(dl, o.LamN.V); err != nil {
			return
		}
	}

	b := o.B
	for l := 0; l < n; l++ {
		o.Lam.V[l] = -(1.0/b)*o.InvD.V[l]*acc[l] - ((1.0-b)/b)*o.InvD.V[l]*dl[l]
	}
	return
}

// RotateStep accepts the step: the current D and multiplier become the
// history values of the next step
func (o *MortarCoupling) RotateStep() {
	if o.D != nil {
		o.Dn = o.D.Clone()
	}
	copy(o.LamN.V, o.Lam.V)
}
