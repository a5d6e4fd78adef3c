// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cardio

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"

	"github.com/reginabuehler/4C-sub006/inp"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// fdTangent compares the analytic tangent of a model against central
// finite differences of the midpoint residual parts
func fdTangent(tst *testing.T, mdl Model, t, dt, theta float64, v, y []float64, tol float64) {
	n := mdl.NumDof()
	K := mat.NewDense(n, n, nil)
	df, f := make([]float64, n), make([]float64, n)
	mdl.Evaluate(t, dt, theta, K, df, f, v, y)
	h := 1e-6
	dfp, fp := make([]float64, n), make([]float64, n)
	dfm, fm := make([]float64, n), make([]float64, n)
	for k := 0; k < n; k++ {
		orig := y[k]
		y[k] = orig + h
		mdl.Evaluate(t, dt, theta, nil, dfp, fp, v, y)
		y[k] = orig - h
		mdl.Evaluate(t, dt, theta, nil, dfm, fm, v, y)
		y[k] = orig
		for j := 0; j < n; j++ {
			num := (dfp[j]-dfm[j])/(2*h*dt) + theta*(fp[j]-fm[j])/(2*h)
			chk.AnaNum(tst, io.Sf("K[%d,%d]", j, k), tol, K.At(j, k), num, false)
		}
	}
}

// actCos returns the activation curve 0.5*(1 - cos(2*pi*t/0.8))
func actCos(tst *testing.T) dbf.T {
	f, err := dbf.New("cos", dbf.Params{
		&dbf.P{N: "a", V: -0.5},
		&dbf.P{N: "b/pi", V: 2.5},
		&dbf.P{N: "c", V: 0.5},
	})
	if err != nil {
		tst.Fatalf("cannot allocate activation curve: %v", err)
	}
	return f
}

func prm(name string, val float64) *dbf.P {
	return &dbf.P{N: name, V: val}
}

func Test_cardio01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cardio01. model database")

	if _, err := New("syspul"); err != nil {
		tst.Errorf("syspul should be available: %v\n", err)
	}
	if _, err := New("fourchamber"); err == nil {
		tst.Errorf("unknown model kind must fail\n")
	}

	// missing compliance must be rejected
	mdl, _ := New("windkessel")
	conf := &inp.CardioData{Model: "windkessel", Prms: dbf.Params{prm("R", 1)}}
	conf.SetDefault()
	if err := mdl.Init(conf); err == nil {
		tst.Errorf("windkessel without compliance must fail\n")
	}
}

func Test_cardio02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cardio02. windkessel: tangent and steady state")

	conf := &inp.CardioData{Model: "windkessel", Prms: dbf.Params{
		prm("C", 0.1), prm("R", 1.0), prm("L", 0.01), prm("Z", 0.05),
		prm("p_ref", 1.0), prm("p_0", 1.0),
	}}
	conf.SetDefault()
	mdl, err := New(conf.Model)
	if err != nil {
		tst.Fatal(err)
	}
	if err = mdl.Init(conf); err != nil {
		tst.Fatal(err)
	}
	chk.IntAssert(mdl.NumDof(), 3)

	y := []float64{1.3, 0.2, -0.1}
	v := []float64{0.5, 0, 0}
	fdTangent(tst, mdl, 0.1, 0.01, 0.5, v, y, 1e-7)

	// p = p_ref with zero flux is a steady state
	mgr, err := NewManager(mdl, conf)
	if err != nil {
		tst.Fatal(err)
	}
	if err = mgr.SolveStep(0.01, 0.01); err != nil {
		tst.Fatal(err)
	}
	chk.Vector(tst, "steady ynp", 1e-14, mgr.Ynp, []float64{1, 0, 0})

	// reset must discard trial values
	mgr.Ynp[0] = 2.0
	mgr.ResetStep()
	chk.Vector(tst, "reset ynp", 1e-17, mgr.Ynp, mgr.Yn)
}

func Test_cardio03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cardio03. arterialproxdist: tangent")

	conf := &inp.CardioData{Model: "arterialproxdist", Prms: dbf.Params{
		prm("R_atvalve_max", 100), prm("R_atvalve_min", 0.01),
		prm("R_arvalve_max", 100), prm("R_arvalve_min", 0.01),
		prm("C_arp", 0.1), prm("R_arp", 0.5), prm("L_arp", 0.02),
		prm("C_ard", 0.2), prm("R_ard", 1.0), prm("p_ref", 0.2),
	}}
	conf.SetDefault()
	mdl, err := New(conf.Model)
	if err != nil {
		tst.Fatal(err)
	}
	if err = mdl.Init(conf); err != nil {
		tst.Fatal(err)
	}
	chk.IntAssert(mdl.NumDof(), 4)
	mdl.(*ProxDist).SetAtrialPressure(actCos(tst))

	// pressures away from the valve switching points
	y := []float64{0.9, 1.4, 0.3, 1.1}
	v := []float64{0.6, 0, 0, 0}
	fdTangent(tst, mdl, 0.3, 0.01, 0.5, v, y, 1e-7)
}

func Test_cardio04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cardio04. syspul: tangent")

	conf := syspulConf()
	mdl, err := New(conf.Model)
	if err != nil {
		tst.Fatal(err)
	}
	if err = mdl.Init(conf); err != nil {
		tst.Fatal(err)
	}
	chk.IntAssert(mdl.NumDof(), 16)
	act := actCos(tst)
	mdl.(*SysPul).SetActivation(act, act, act, act)

	y := []float64{
		1.0, 0.2, 0.3, 0.5, // left heart
		1.2, 0.4, 0.8, 0.1, // systemic
		0.6, 0.05, 0.15, 0.4, // right heart
		0.9, 0.2, 0.7, 0.3, // pulmonary
	}
	v := make([]float64, 16)
	fdTangent(tst, mdl, 0.3, 0.01, 0.5, v, y, 1e-7)
}

func Test_cardio05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cardio05. syspulcap: tangent and respiratory variant")

	conf := &inp.CardioData{Model: "syspulcap", Prms: dbf.Params{
		prm("R_arvalve_max_l", 0.1), prm("R_arvalve_min_l", 0.1),
		prm("R_atvalve_max_l", 0.1), prm("R_atvalve_min_l", 0.1),
		prm("R_arvalve_max_r", 0.1), prm("R_arvalve_min_r", 0.1),
		prm("R_atvalve_max_r", 0.1), prm("R_atvalve_min_r", 0.1),
		prm("E_at_max_l", 2), prm("E_at_min_l", 1),
		prm("E_at_max_r", 2), prm("E_at_min_r", 1),
		prm("E_v_max_l", 2), prm("E_v_min_l", 1),
		prm("E_v_max_r", 2), prm("E_v_min_r", 1),
		prm("C_ar_sys", 0.01), prm("R_ar_sys", 0.1), prm("L_ar_sys", 1e-4),
		prm("C_arspl_sys", 0.01), prm("R_arspl_sys", 0.3),
		prm("C_arespl_sys", 0.01), prm("R_arespl_sys", 0.3),
		prm("C_armsc_sys", 0.01), prm("R_armsc_sys", 0.3),
		prm("C_arcer_sys", 0.01), prm("R_arcer_sys", 0.3),
		prm("C_arcor_sys", 0.01), prm("R_arcor_sys", 0.3),
		prm("C_venspl_sys", 0.02), prm("R_venspl_sys", 0.2), prm("L_venspl_sys", 1e-4),
		prm("C_venespl_sys", 0.02), prm("R_venespl_sys", 0.2), prm("L_venespl_sys", 1e-4),
		prm("C_venmsc_sys", 0.02), prm("R_venmsc_sys", 0.2), prm("L_venmsc_sys", 1e-4),
		prm("C_vencer_sys", 0.02), prm("R_vencer_sys", 0.2), prm("L_vencer_sys", 1e-4),
		prm("C_vencor_sys", 0.02), prm("R_vencor_sys", 0.2), prm("L_vencor_sys", 1e-4),
		prm("C_ven_sys", 0.02), prm("R_ven_sys", 0.1), prm("L_ven_sys", 1e-4),
		prm("C_ar_pul", 0.01), prm("R_ar_pul", 0.1), prm("L_ar_pul", 1e-4),
		prm("C_cap_pul", 0.01), prm("R_cap_pul", 0.1), prm("L_cap_pul", 1e-4),
		prm("C_ven_pul", 0.02), prm("R_ven_pul", 0.1), prm("L_ven_pul", 1e-4),
	}}
	conf.SetDefault()
	mdl, err := New(conf.Model)
	if err != nil {
		tst.Fatal(err)
	}
	if err = mdl.Init(conf); err != nil {
		tst.Fatal(err)
	}
	chk.IntAssert(mdl.NumDof(), 34)
	act := actCos(tst)
	mdl.(*SysPulCap).SetActivation(act, act, act, act)

	y := make([]float64, 34)
	for j := 0; j < 34; j++ {
		y[j] = 0.3 + 0.1*float64(j%7)
	}
	y[scPAtL], y[scPVL], y[scPArSys] = 1.0, 0.5, 1.3
	y[scPAtR], y[scPVR], y[scPArPul] = 0.6, 0.4, 0.9
	v := make([]float64, 34)
	fdTangent(tst, mdl, 0.3, 0.01, 0.5, v, y, 1e-7)

	// the respiratory circuit is not available
	confResp := &inp.CardioData{Model: "syspulcap", Respiratory: true}
	confResp.SetDefault()
	mdlResp, _ := New("syspulcap")
	if err := mdlResp.Init(confResp); err == nil {
		tst.Errorf("respiratory variant must be rejected\n")
	}
}

// syspulConf returns a closed-loop configuration with constant valve
// resistances so the system stays linear within each time step
func syspulConf() *inp.CardioData {
	conf := &inp.CardioData{Model: "syspul", Period: 0.8, EpsPeriodic: 1e-10, Prms: dbf.Params{
		prm("R_arvalve_max_l", 0.1), prm("R_arvalve_min_l", 0.1),
		prm("R_atvalve_max_l", 0.1), prm("R_atvalve_min_l", 0.1),
		prm("R_arvalve_max_r", 0.1), prm("R_arvalve_min_r", 0.1),
		prm("R_atvalve_max_r", 0.1), prm("R_atvalve_min_r", 0.1),
		prm("E_at_max_l", 2), prm("E_at_min_l", 1),
		prm("E_at_max_r", 2), prm("E_at_min_r", 1),
		prm("E_v_max_l", 2), prm("E_v_min_l", 1),
		prm("E_v_max_r", 2), prm("E_v_min_r", 1),
		prm("C_ar_sys", 0.01), prm("R_ar_sys", 0.1), prm("L_ar_sys", 1e-4),
		prm("C_ven_sys", 0.01), prm("R_ven_sys", 0.1), prm("L_ven_sys", 1e-4),
		prm("C_ar_pul", 0.01), prm("R_ar_pul", 0.1), prm("L_ar_pul", 1e-4),
		prm("C_ven_pul", 0.01), prm("R_ven_pul", 0.1), prm("L_ven_pul", 1e-4),
		prm("p_at_l_0", 1.0), prm("p_v_l_0", 0.5),
		prm("p_ar_sys_0", 1.2), prm("p_ven_sys_0", 0.8),
		prm("p_at_r_0", 0.6), prm("p_v_r_0", 0.4),
		prm("p_ar_pul_0", 0.9), prm("p_ven_pul_0", 0.7),
	}}
	conf.SetDefault()
	return conf
}

func newSyspulManager(tst *testing.T) *Manager {
	conf := syspulConf()
	mdl, err := New(conf.Model)
	if err != nil {
		tst.Fatal(err)
	}
	if err = mdl.Init(conf); err != nil {
		tst.Fatal(err)
	}
	act := actCos(tst)
	mdl.(*SysPul).SetActivation(act, act, act, act)
	mgr, err := NewManager(mdl, conf)
	if err != nil {
		tst.Fatal(err)
	}
	return mgr
}

func Test_cardio06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cardio06. syspul: approach to the periodic state")

	mgr := newSyspulManager(tst)
	nsteps := 80
	dt := mgr.Conf.Period / float64(nsteps)

	step := 0
	for cycle := 0; cycle < 30 && !mgr.IsPeriodic; cycle++ {
		for i := 0; i < nsteps; i++ {
			step++
			t := float64(step) * dt
			if err := mgr.SolveStep(t, dt); err != nil {
				tst.Fatalf("step %d: %v", step, err)
			}
			// converged midpoint residual must be small
			for j := 0; j < mgr.Ndof; j++ {
				if mgr.ResM[j] > 1e-8 || mgr.ResM[j] < -1e-8 {
					tst.Fatalf("step %d: residual %d not converged: %g", step, j, mgr.ResM[j])
				}
			}
			mgr.UpdateTimeStep()
		}
		if io.Verbose {
			io.Pf("cycle %2d: error = %13.8e\n", cycle+1, mgr.CycleError)
		}
	}

	if !mgr.IsPeriodic {
		tst.Errorf("periodic state was not reached; cycle error = %g\n", mgr.CycleError)
		return
	}
	if mgr.CycleError > mgr.Conf.EpsPeriodic {
		tst.Errorf("cycle error %g above tolerance\n", mgr.CycleError)
	}
}

func Test_cardio07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cardio07. manager: restart round trip")

	mgr := newSyspulManager(tst)
	dt := 0.01

	run := func(m *Manager, from, to int) {
		for i := from; i < to; i++ {
			t := float64(i+1) * dt
			if err := m.SolveStep(t, dt); err != nil {
				tst.Fatal(err)
			}
			m.UpdateTimeStep()
		}
	}

	run(mgr, 0, 25)
	saved := mgr.SaveState()
	run(mgr, 25, 50)
	want := append([]float64(nil), mgr.Yn...)

	// restoring and repeating the same steps must reproduce the state
	if err := mgr.LoadState(saved); err != nil {
		tst.Fatal(err)
	}
	chk.Vector(tst, "restored yn", 1e-17, mgr.Yn, saved.Yn)
	run(mgr, 25, 50)
	chk.Vector(tst, "replayed yn", 1e-17, mgr.Yn, want)

	// loading data of the wrong size must fail
	if err := mgr.LoadState(&State{Yn: make([]float64, 3)}); err == nil {
		tst.Errorf("size mismatch must be rejected\n")
	}
}
