// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"

	"github.com/reginabuehler/4C-sub006/cardio"
	"github.com/reginabuehler/4C-sub006/fem"
	"github.com/reginabuehler/4C-sub006/inp"
	"github.com/reginabuehler/4C-sub006/out"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v\n", err)
			chk.Verbose = true
			for i := 5; i > 3; i-- {
				chk.CallerInfo(i)
			}
		}
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)
	erasePrev := io.ArgToBool(2, true)
	resOut := io.ArgToString(3, "")

	// message
	if verbose {
		io.PfWhite("\nMonofem -- monolithic coupled 0D/mortar solver\n")
		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"erase previous results", "erasePrev", erasePrev,
			"results output file", "resOut", resOut,
		))
	}

	// simulation data
	sim := inp.ReadSim(fnamepath, "", erasePrev, true, 0)
	if sim == nil {
		chk.Panic("cannot read simulation file %q", fnamepath)
	}

	// driver with one field block per 0D model
	m := fem.NewMain(sim, verbose)
	base := 0
	for i, conf := range sim.Cardio {
		mdl, err := cardio.New(conf.Model)
		if err != nil {
			chk.Panic("cardio block %d: %v", i, err)
		}
		if err = mdl.Init(conf); err != nil {
			chk.Panic("cardio block %d: %v", i, err)
		}
		if conf.ActFcn != "" {
			act, err := sim.Functions.Get(conf.ActFcn)
			if err != nil {
				chk.Panic("cardio block %d: %v", i, err)
			}
			if h, ok := mdl.(interface {
				SetActivation(atL, atR, vL, vR dbf.T)
			}); ok {
				h.SetActivation(act, act, act, act)
			}
		}
		mgr, err := cardio.NewManager(mdl, conf)
		if err != nil {
			chk.Panic("cardio block %d: %v", i, err)
		}
		m.AddField(fem.NewCardioField(io.Sf("cardio%d", i), mgr, base))
		base += mgr.Ndof
	}
	if err := m.Initialize(); err != nil {
		chk.Panic("initialisation failed:\n%v", err)
	}

	// run simulation
	col := out.NewCollector(m)
	if err := m.Run(); err != nil {
		chk.Panic("run failed:\n%v", err)
	}
	if resOut != "" {
		if err := col.Save(resOut, sim.Data.Encoder); err != nil {
			chk.Panic("cannot save results:\n%v", err)
		}
		if verbose {
			io.Pf("results saved to %q\n", resOut)
		}
	}
}
