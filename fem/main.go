// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem implements the monolithic coupling driver: a Newton loop
// over single-field blocks, mortar interface couplings and 0D models,
// assembled into one block sparse system and solved through the linear
// solver façade
package fem

import (
	"errors"
	"fmt"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/reginabuehler/4C-sub006/dmap"
	"github.com/reginabuehler/4C-sub006/inp"
	"github.com/reginabuehler/4C-sub006/mortar"
	"github.com/reginabuehler/4C-sub006/solver"
	"github.com/reginabuehler/4C-sub006/spm"
)

// ErrNonlinearDivergence reports a Newton loop that grew its residual or
// ran out of iterations
var ErrNonlinearDivergence = errors.New("nonlinear solution diverged")

// Main holds all data of one coupled simulation
type Main struct {
	Sim       *inp.Simulation
	Fields    []Field
	Couplings []*MortarCoupling
	LinSol    *solver.Solver
	Verbose   bool

	// hook called after every accepted time step
	StepOut func(o *Main)

	// derived
	Ext    *dmap.Extractor
	Bm     *spm.BlockMatrix
	Fb     *dmap.Vector
	DbcAll *dmap.Map
	Time   float64
	Step   int

	incs []*dmap.Vector // per-field increments of the last iteration
}

// NewMain returns a driver for the given simulation data
func NewMain(sim *inp.Simulation, verbose bool) (o *Main) {
	o = &Main{Sim: sim, Verbose: verbose}
	o.LinSol = solver.New(sim.LinSol)
	return
}

// AddField appends one field block. Field dof ids must not overlap
func (o *Main) AddField(f Field) { o.Fields = append(o.Fields, f) }

// TieFields appends a mortar coupling between two fields. The condensation
// mode decides which side is eliminated: structuresplit keeps the first
// field as slave, fluidsplit swaps the roles. alphaF is the generalized-α
// weighting of the slave field integrator
func (o *Main) TieFields(iface *mortar.Interface, first, second int, firstDof, secondDof func(node int) int, alphaF float64) *MortarCoupling {
	si, mi, sd, md := first, second, firstDof, secondDof
	if o.Sim.Solver.Condense == "fluidsplit" {
		si, mi, sd, md = second, first, secondDof, firstDof
	}
	c := NewMortarCoupling(iface, si, mi, alphaF, sd, md)
	o.Couplings = append(o.Couplings, c)
	return c
}

// Initialize builds the block layout, the merged Dirichlet map and the
// global right-hand side. Call after all fields and couplings are added
func (o *Main) Initialize() (err error) {
	if len(o.Fields) == 0 {
		return chk.Err("driver has no fields")
	}
	subs := make([]*dmap.Map, len(o.Fields))
	for i, f := range o.Fields {
		subs[i] = f.Map()
	}
	o.Ext, err = dmap.NewExtractor(subs)
	if err != nil {
		return
	}
	o.Bm = spm.NewBlockMatrix(o.Ext, o.Ext)
	o.Fb = dmap.NewVector(o.Ext.FullMap())
	o.incs = make([]*dmap.Vector, len(o.Fields))

	// union of the per-field essential maps
	o.DbcAll = dmap.NewMap(nil, 0, true)
	for _, f := range o.Fields {
		if m := f.DbcMap(); m != nil {
			o.DbcAll = o.DbcAll.Merge(m)
		}
	}
	for _, c := range o.Couplings {
		c.Attach(o.Fields[c.Master].Map())
	}
	return
}

// Run solves all stages
func (o *Main) Run() (err error) {
	cputime := time.Now()
	for idx, stg := range o.Sim.Stages {
		if stg.Skip {
			continue
		}
		if err = o.SolveOneStage(idx); err != nil {
			return
		}
	}
	if o.Verbose {
		io.PfGreen("> Success\n")
		io.Pf("> CPU time = %v\n", time.Now().Sub(cputime))
	}
	return
}

// SolveOneStage runs the time loop of one stage with divergence control:
// on divergence the step is rolled back and repeated with half the step
// size, up to NdvgMax consecutive cut-backs
func (o *Main) SolveOneStage(stgidx int) (err error) {
	stg := o.Sim.Stages[stgidx]
	tf := stg.Control.Tf
	md := 1.0    // step multiplier under divergence control
	ndiverg := 0 // consecutive diverged steps

	var backup [][]float64
	for o.Time < tf {

		if ndiverg > o.Sim.Solver.NdvgMax {
			return fmt.Errorf("continued divergence after %d cut-backs: %w", ndiverg-1, ErrNonlinearDivergence)
		}

		dt := stg.Control.DtAt(o.Time) * md
		if o.Time+dt >= tf {
			dt = tf - o.Time
		}
		if dt < o.Sim.Solver.DtMin {
			return chk.Err("time step %g is smaller than the minimum %g", dt, o.Sim.Solver.DtMin)
		}
		t := o.Time + dt

		if o.Sim.Solver.DvgCtrl {
			backup = backup[:0]
			for _, f := range o.Fields {
				backup = append(backup, f.WriteState())
			}
		}

		diverging, err := o.solveStep(t, dt)
		if err != nil {
			return err
		}
		if diverging {
			if !o.Sim.Solver.DvgCtrl {
				return fmt.Errorf("t=%g: %w", t, ErrNonlinearDivergence)
			}
			if o.Verbose {
				io.Pfred(". . . iterations diverging (%2d) . . .\n", ndiverg+1)
			}
			for i, f := range o.Fields {
				if err = f.ReadState(backup[i]); err != nil {
					return err
				}
			}
			md *= 0.5
			ndiverg++
			continue
		}
		md, ndiverg = 1.0, 0

		// accept
		for _, f := range o.Fields {
			if err = f.Update(t, dt); err != nil {
				return err
			}
		}
		for _, c := range o.Couplings {
			c.RotateStep()
		}
		o.Time = t
		o.Step++
		if o.StepOut != nil {
			o.StepOut(o)
		}
	}
	return
}

// solveStep runs the Newton iterations of one time step
func (o *Main) solveStep(t, dt float64) (diverging bool, err error) {

	for _, f := range o.Fields {
		if err = f.PrepareTimeStep(t, dt); err != nil {
			return
		}
	}

	var it int
	var largFb, largFb0, prevFb float64
	if o.Sim.Solver.ShowR {
		io.Pf("\n%13s%4s%23s\n", "t", "it", "largFb")
		defer func() {
			io.Pf("%13.6e%4d%23.15e\n", t, it, largFb)
		}()
	}

	for it = 0; it < o.Sim.Solver.NmaxIt; it++ {

		// field evaluations and global right-hand side
		o.Fb.PutScalar(0)
		for i, f := range o.Fields {
			if err = f.Evaluate(t, dt, it == 0); err != nil {
				return
			}
			if err = o.Ext.InsertVector(f.RHS(), i, o.Fb); err != nil {
				return
			}
		}

		// off-diagonal blocks contribute to the monolithic residual
		full := o.Ext.FullMap()
		for _, f := range o.Fields {
			for _, g := range o.Fields {
				cb := f.CouplingBlock(g.Name())
				if cb == nil {
					continue
				}
				cy := make([]float64, f.Map().NumMyElements())
				if err = cb.MatVec(cy, g.State().V); err != nil {
					return
				}
				for l, gid := range f.Map().Gids() {
					o.Fb.V[full.Lid(gid)] -= cy[l]
				}
			}
		}

		// mortar couplings: snapshot the slave rows, then impose the
		// constraint in their place
		blocks := make(map[[2]int]*spm.Matrix)
		for _, c := range o.Couplings {
			if err = c.Evaluate(); err != nil {
				return
			}
			if err = o.imposeConstraint(c, blocks); err != nil {
				return
			}
		}

		// assign diagonal and coupling blocks; field-owned matrices are
		// cloned because the Dirichlet pass mutates the assigned blocks
		o.Bm = spm.NewBlockMatrix(o.Ext, o.Ext)
		for i, f := range o.Fields {
			if m, ok := blocks[[2]int{i, i}]; ok {
				err = o.Bm.Assign(i, i, spm.View, m)
			} else {
				err = o.Bm.Assign(i, i, spm.Copy, f.SystemMatrix())
			}
			if err != nil {
				return
			}
			for j, g := range o.Fields {
				if j == i {
					continue
				}
				if m, ok := blocks[[2]int{i, j}]; ok {
					err = o.Bm.Assign(i, j, spm.View, m)
				} else if cb := f.CouplingBlock(g.Name()); cb != nil {
					err = o.Bm.Assign(i, j, spm.Copy, cb)
				} else {
					continue
				}
				if err != nil {
					return
				}
			}
		}
		if err = o.Bm.Complete(); err != nil {
			return
		}

		// merged essential conditions on matrix and right-hand side
		if o.DbcAll.NumMyElements() > 0 {
			if err = o.Bm.ApplyDirichlet(o.DbcAll); err != nil {
				return
			}
			if err = spm.ApplyDirichletToRhs(o.Fb, o.DbcAll, nil); err != nil {
				return
			}
		}

		// convergence control on the largest residual component
		largFb = o.Fb.NormInf()
		if it == 0 {
			largFb0 = largFb
		} else {
			if largFb < o.Sim.Solver.FbTol*largFb0 {
				break
			}
			if largFb < o.Sim.Solver.FbMin {
				break
			}
		}
		if it > 1 && o.Sim.Solver.DvgCtrl && largFb > prevFb {
			diverging = true
			return
		}
		prevFb = largFb
		if o.Sim.Solver.ShowR {
			o.printRow(t, it, largFb)
		}

		// solve the condensed system
		if err = o.LinSol.InitBlock(o.Bm); err != nil {
			return
		}
		o.LinSol.AdaptTolerance(o.Sim.Solver.FbTol*largFb0, largFb)
		x := make([]float64, o.Ext.FullMap().NumMyElements())
		if err = o.LinSol.Solve(x, o.Fb.V); err != nil {
			return
		}

		// distribute increments and recover multipliers
		xv, _ := dmap.NewVectorFromSlice(o.Ext.FullMap(), x)
		for i, f := range o.Fields {
			o.incs[i], err = o.Ext.ExtractVector(xv, i)
			if err != nil {
				return
			}
			if err = f.UpdateIter(o.incs[i]); err != nil {
				return
			}
		}
		for _, c := range o.Couplings {
			if err = c.Recover(o.incs[c.Slave], o.incs[c.Master]); err != nil {
				return
			}
		}
	}

	if it == o.Sim.Solver.NmaxIt {
		err = fmt.Errorf("%d iterations reached: %w", it, ErrNonlinearDivergence)
	}
	return
}

// imposeConstraint replaces the slave interface rows of the slave field
// blocks by the tied mortar constraint D·d_s − M·d_m + g = 0, caching the
// replaced rows for the multiplier recovery
func (o *Main) imposeConstraint(c *MortarCoupling, blocks map[[2]int]*spm.Matrix) (err error) {
	sf, mf := o.Fields[c.Slave], o.Fields[c.Master]
	smap := sf.Map()

	// snapshot the residual rows (the right-hand side carries the
	// negative residual)
	n := c.RowMap.NumMyElements()
	rg := dmap.NewVector(c.RowMap)
	for l, g := range c.RowMap.Gids() {
		rg.V[l] = -o.Fb.V[o.Ext.FullMap().Lid(g)]
	}

	// snapshot and replace the slave diagonal block rows
	ks := sf.SystemMatrix().Clone()
	cg, err := ks.ExtractDirichletRows(c.RowMap)
	if err != nil {
		return
	}
	if err = ks.ApplyDirichlet(c.RowMap, false); err != nil {
		return
	}
	ks.UnComplete()
	err = c.D.EachNonZero(func(rgid, cgid int, v float64) {
		ks.AssembleValue(v, rgid, cgid)
	})
	if err != nil {
		return
	}
	if err = ks.Complete(smap, smap); err != nil {
		return
	}
	blocks[[2]int{c.Slave, c.Slave}] = ks

	// snapshot and replace the slave→master coupling block rows
	var fg, kc *spm.Matrix
	if cb := sf.CouplingBlock(mf.Name()); cb != nil {
		if fg, err = cb.ExtractDirichletRows(c.RowMap); err != nil {
			return
		}
		kc = cb.Clone()
		if err = kc.ApplyDirichlet(c.RowMap, false); err != nil {
			return
		}
		kc.UnComplete()
	} else {
		kc = spm.NewMatrix(smap, 8, false, false)
	}
	err = c.M.EachNonZero(func(rgid, cgid int, v float64) {
		kc.AssembleValue(-v, rgid, cgid)
	})
	if err != nil {
		return
	}
	if err = kc.Complete(mf.Map(), smap); err != nil {
		return
	}
	blocks[[2]int{c.Slave, c.Master}] = kc

	c.Snapshot(cg, fg, rg)

	// constraint residual replaces the right-hand side rows
	ysr := make([]float64, n)
	for l, g := range c.RowMap.Gids() {
		ysr[l] = sf.State().V[smap.Lid(g)]
	}
	ds := make([]float64, n)
	if err = c.D.MatVec(ds, ysr); err != nil {
		return
	}
	dm := make([]float64, n)
	if err = c.M.MatVec(dm, mf.State().V); err != nil {
		return
	}
	full := o.Ext.FullMap()
	for l, g := range c.RowMap.Gids() {
		o.Fb.V[full.Lid(g)] = -(ds[l] - dm[l] + c.G.V[l])
	}
	return
}

// printRow prints one line of the convergence table with the per-field
// residual norms appended
func (o *Main) printRow(t float64, it int, largFb float64) {
	io.Pf("%13.6e%4d%23.15e", t, it, largFb)
	for _, f := range o.Fields {
		io.Pf("  %s=%12.6e", f.Name(), f.RHS().NormInf())
	}
	io.Pf("\n")
}
