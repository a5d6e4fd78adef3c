// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"

	"github.com/reginabuehler/4C-sub006/cardio"
	"github.com/reginabuehler/4C-sub006/inp"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_wkdecay01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("wkdecay01. windkessel relaxation vs analytical solution")

	C, R, pref, p0 := 0.05, 2.0, 0.2, 1.0
	var sol WindkesselDecay
	sol.Init(C, R, pref, p0)

	chk.Scalar(tst, "p(0)", 1e-15, sol.P(0), p0)

	// march the 0D integrator with the midpoint rule and zero in-flux
	conf := &inp.CardioData{Model: "windkessel", Prms: dbf.Params{
		&dbf.P{N: "C", V: C}, &dbf.P{N: "R", V: R},
		&dbf.P{N: "p_ref", V: pref}, &dbf.P{N: "p_0", V: p0},
	}}
	conf.SetDefault()
	mdl, err := cardio.New(conf.Model)
	if err != nil {
		tst.Fatal(err)
	}
	if err = mdl.Init(conf); err != nil {
		tst.Fatal(err)
	}
	mgr, err := cardio.NewManager(mdl, conf)
	if err != nil {
		tst.Fatal(err)
	}

	dt, nsteps := 0.001, 100
	tvals := make([]float64, 0, nsteps)
	pvals := make([]float64, 0, nsteps)
	for step := 1; step <= nsteps; step++ {
		t := float64(step) * dt
		if err = mgr.SolveStep(t, dt); err != nil {
			tst.Fatal(err)
		}
		mgr.UpdateTimeStep()
		tvals = append(tvals, t)
		pvals = append(pvals, mgr.Yn[0])
	}

	// the midpoint rule is second order in dt on the tau=R*C=0.1 decay
	sol.CheckP(tst, tvals, pvals, 2e-5)
}
