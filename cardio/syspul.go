// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cardio

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"gonum.org/v1/gonum/mat"

	"github.com/reginabuehler/4C-sub006/inp"
)

// dof ordering of the closed-loop systemic-pulmonary model
const (
	spPAtL = iota
	spQVinL
	spQVoutL
	spPVL
	spPArSys
	spQArSys
	spPVenSys
	spQVenSys
	spPAtR
	spQVinR
	spQVoutR
	spPVR
	spPArPul
	spQArPul
	spPVenPul
	spQVenPul
	spNdof
)

// SysPul implements the closed-loop vascular model with 0D elastance
// atria and ventricles, systemic and pulmonary circulation, each with
// arterial and venous windkessel compartments and piecewise-linear
// valve laws (Hirschvogel et al., IJNMBE 2016)
type SysPul struct {

	// valve resistances
	RArvalveMaxL, RArvalveMinL float64
	RAtvalveMaxL, RAtvalveMinL float64
	RArvalveMaxR, RArvalveMinR float64
	RAtvalveMaxR, RAtvalveMinR float64

	// elastance bounds
	EAtMaxL, EAtMinL float64
	EAtMaxR, EAtMinR float64
	EVMaxL, EVMinL   float64
	EVMaxR, EVMinR   float64

	// windkessel compartments
	CArSys, RArSys, LArSys, ZArSys float64
	CArPul, RArPul, LArPul, ZArPul float64
	CVenSys, RVenSys, LVenSys      float64
	CVenPul, RVenPul, LVenPul      float64

	// unstressed volumes
	VVLu, VAtLu, VArSysU, VVenSysU float64
	VVRu, VAtRu, VArPulU, VVenPulU float64

	// initial unknowns
	y0 [spNdof]float64

	// activation curves
	actAtL, actAtR dbf.T
	actVL, actVR   dbf.T
}

func init() {
	allocators["syspul"] = func() Model { return new(SysPul) }
}

// Init initialises the model parameters
func (o *SysPul) Init(conf *inp.CardioData) (err error) {
	o.RArvalveMaxL = conf.Prm("R_arvalve_max_l", 0)
	o.RArvalveMinL = conf.Prm("R_arvalve_min_l", 0)
	o.RAtvalveMaxL = conf.Prm("R_atvalve_max_l", 0)
	o.RAtvalveMinL = conf.Prm("R_atvalve_min_l", 0)
	o.RArvalveMaxR = conf.Prm("R_arvalve_max_r", 0)
	o.RArvalveMinR = conf.Prm("R_arvalve_min_r", 0)
	o.RAtvalveMaxR = conf.Prm("R_atvalve_max_r", 0)
	o.RAtvalveMinR = conf.Prm("R_atvalve_min_r", 0)

	o.EAtMaxL = conf.Prm("E_at_max_l", 0)
	o.EAtMinL = conf.Prm("E_at_min_l", 0)
	o.EAtMaxR = conf.Prm("E_at_max_r", 0)
	o.EAtMinR = conf.Prm("E_at_min_r", 0)
	o.EVMaxL = conf.Prm("E_v_max_l", 0)
	o.EVMinL = conf.Prm("E_v_min_l", 0)
	o.EVMaxR = conf.Prm("E_v_max_r", 0)
	o.EVMinR = conf.Prm("E_v_min_r", 0)

	o.CArSys = conf.Prm("C_ar_sys", 0)
	o.RArSys = conf.Prm("R_ar_sys", 0)
	o.LArSys = conf.Prm("L_ar_sys", 0)
	o.ZArSys = conf.Prm("Z_ar_sys", 0)
	o.CArPul = conf.Prm("C_ar_pul", 0)
	o.RArPul = conf.Prm("R_ar_pul", 0)
	o.LArPul = conf.Prm("L_ar_pul", 0)
	o.ZArPul = conf.Prm("Z_ar_pul", 0)
	o.CVenSys = conf.Prm("C_ven_sys", 0)
	o.RVenSys = conf.Prm("R_ven_sys", 0)
	o.LVenSys = conf.Prm("L_ven_sys", 0)
	o.CVenPul = conf.Prm("C_ven_pul", 0)
	o.RVenPul = conf.Prm("R_ven_pul", 0)
	o.LVenPul = conf.Prm("L_ven_pul", 0)

	o.VVLu = conf.Prm("V_v_l_u", 0)
	o.VAtLu = conf.Prm("V_at_l_u", 0)
	o.VArSysU = conf.Prm("V_ar_sys_u", 0)
	o.VVenSysU = conf.Prm("V_ven_sys_u", 0)
	o.VVRu = conf.Prm("V_v_r_u", 0)
	o.VAtRu = conf.Prm("V_at_r_u", 0)
	o.VArPulU = conf.Prm("V_ar_pul_u", 0)
	o.VVenPulU = conf.Prm("V_ven_pul_u", 0)

	if o.EAtMinL <= 0 || o.EAtMinR <= 0 || o.EVMinL <= 0 || o.EVMinR <= 0 {
		return chk.Err("syspul: minimum chamber elastances must be positive")
	}
	if o.RArSys <= 0 || o.RArPul <= 0 || o.RVenSys <= 0 || o.RVenPul <= 0 {
		return chk.Err("syspul: windkessel resistances must be positive")
	}
	if o.RAtvalveMinL <= 0 || o.RAtvalveMaxL <= 0 || o.RArvalveMinL <= 0 || o.RArvalveMaxL <= 0 ||
		o.RAtvalveMinR <= 0 || o.RAtvalveMaxR <= 0 || o.RArvalveMinR <= 0 || o.RArvalveMaxR <= 0 {
		return chk.Err("syspul: valve resistances must be positive")
	}

	names := []string{
		"p_at_l_0", "q_vin_l_0", "q_vout_l_0", "p_v_l_0",
		"p_ar_sys_0", "q_ar_sys_0", "p_ven_sys_0", "q_ven_sys_0",
		"p_at_r_0", "q_vin_r_0", "q_vout_r_0", "p_v_r_0",
		"p_ar_pul_0", "q_ar_pul_0", "p_ven_pul_0", "q_ven_pul_0",
	}
	for j, name := range names {
		o.y0[j] = conf.Prm(name, 0)
	}
	return
}

// SetActivation sets the chamber activation curves y_act(t) of the left
// and right atrium and ventricle. A nil curve means zero activation
func (o *SysPul) SetActivation(atL, atR, vL, vR dbf.T) {
	o.actAtL, o.actAtR, o.actVL, o.actVR = atL, atR, vL, vR
}

// NumDof returns the number of unknowns
func (o *SysPul) NumDof() int { return spNdof }

// Respiratory returns the respiratory sub-model kind
func (o *SysPul) Respiratory() string { return "none" }

// InitState fills initial unknowns and compartment volumes
func (o *SysPul) InitState(y, v []float64) {
	copy(y, o.y0[:])
	eAtL, eAtR, eVL, eVR := o.elastances(0)
	o.volumes(v, y, eAtL, eAtR, eVL, eVR)
}

func actval(f dbf.T, t float64) float64 {
	if f == nil {
		return 0
	}
	return f.F(t, nil)
}

// elastances evaluates the four time-varying chamber elastances
func (o *SysPul) elastances(t float64) (eAtL, eAtR, eVL, eVR float64) {
	eAtL = (o.EAtMaxL-o.EAtMinL)*actval(o.actAtL, t) + o.EAtMinL
	eAtR = (o.EAtMaxR-o.EAtMinR)*actval(o.actAtR, t) + o.EAtMinR
	eVL = (o.EVMaxL-o.EVMinL)*actval(o.actVL, t) + o.EVMinL
	eVR = (o.EVMaxR-o.EVMinR)*actval(o.actVR, t) + o.EVMinR
	return
}

// valves selects the piecewise-linear valve resistances from the
// end-point pressures
func (o *SysPul) valves(y []float64) (rAtL, rArL, rAtR, rArR float64) {
	if y[spPVL] < y[spPAtL] {
		rAtL = o.RAtvalveMinL
	} else {
		rAtL = o.RAtvalveMaxL
	}
	if y[spPVL] < y[spPArSys] {
		rArL = o.RArvalveMaxL
	} else {
		rArL = o.RArvalveMinL
	}
	if y[spPVR] < y[spPAtR] {
		rAtR = o.RAtvalveMinR
	} else {
		rAtR = o.RAtvalveMaxR
	}
	if y[spPVR] < y[spPArPul] {
		rArR = o.RArvalveMaxR
	} else {
		rArR = o.RArvalveMinR
	}
	return
}

// volumes fills the compartment volume slots
func (o *SysPul) volumes(v, y []float64, eAtL, eAtR, eVL, eVR float64) {
	if v == nil {
		return
	}
	v[spPAtL] = y[spPAtL]/eAtL + o.VAtLu
	v[spPAtR] = y[spPAtR]/eAtR + o.VAtRu
	v[spQVoutL] = y[spPVL]/eVL + o.VVLu
	v[spQVoutR] = y[spPVR]/eVR + o.VVRu
	v[spPArSys] = o.CArSys*(y[spPArSys]-o.ZArSys*y[spQVoutL]) + o.VArSysU
	v[spPVenSys] = o.CVenSys*y[spPVenSys] + o.VVenSysU
	v[spPArPul] = o.CArPul*(y[spPArPul]-o.ZArPul*y[spQVoutR]) + o.VArPulU
	v[spPVenPul] = o.CVenPul*y[spPVenPul] + o.VVenPulU
}

// Evaluate computes end-point residual parts, volumes and the tangent
func (o *SysPul) Evaluate(t, dt, theta float64, K *mat.Dense, df, f, v, y []float64) {
	eAtL, eAtR, eVL, eVR := o.elastances(t)
	rAtL, rArL, rAtR, rArR := o.valves(y)

	if df != nil {
		df[spPAtL] = y[spPAtL] / eAtL
		df[spQVinL] = 0
		df[spQVoutL] = y[spPVL] / eVL
		df[spPVL] = 0
		df[spPArSys] = o.CArSys * (y[spPArSys] - o.ZArSys*y[spQVoutL])
		df[spQArSys] = (o.LArSys / o.RArSys) * y[spQArSys]
		df[spPVenSys] = o.CVenSys * y[spPVenSys]
		df[spQVenSys] = (o.LVenSys / o.RVenSys) * y[spQVenSys]
		df[spPAtR] = y[spPAtR] / eAtR
		df[spQVinR] = 0
		df[spQVoutR] = y[spPVR] / eVR
		df[spPVR] = 0
		df[spPArPul] = o.CArPul * (y[spPArPul] - o.ZArPul*y[spQVoutR])
		df[spQArPul] = (o.LArPul / o.RArPul) * y[spQArPul]
		df[spPVenPul] = o.CVenPul * y[spPVenPul]
		df[spQVenPul] = (o.LVenPul / o.RVenPul) * y[spQVenPul]
	}

	if f != nil {
		f[spPAtL] = -y[spQVenPul] + y[spQVinL]
		// atrioventricular valve - mitral
		f[spQVinL] = (y[spPAtL]-y[spPVL])/rAtL - y[spQVinL]
		f[spQVoutL] = -y[spQVinL] + y[spQVoutL]
		// semilunar valve - aortic
		f[spPVL] = (y[spPVL]-y[spPArSys])/rArL - y[spQVoutL]
		f[spPArSys] = -y[spQVoutL] + y[spQArSys]
		f[spQArSys] = (y[spPVenSys]-y[spPArSys]+o.ZArSys*y[spQVoutL])/o.RArSys + y[spQArSys]
		f[spPVenSys] = -y[spQArSys] + y[spQVenSys]
		f[spQVenSys] = (y[spPAtR]-y[spPVenSys])/o.RVenSys + y[spQVenSys]

		f[spPAtR] = -y[spQVenSys] + y[spQVinR]
		// atrioventricular valve - tricuspid
		f[spQVinR] = (y[spPAtR]-y[spPVR])/rAtR - y[spQVinR]
		f[spQVoutR] = -y[spQVinR] + y[spQVoutR]
		// semilunar valve - pulmonary
		f[spPVR] = (y[spPVR]-y[spPArPul])/rArR - y[spQVoutR]
		f[spPArPul] = -y[spQVoutR] + y[spQArPul]
		f[spQArPul] = (y[spPVenPul]-y[spPArPul]+o.ZArPul*y[spQVoutR])/o.RArPul + y[spQArPul]
		f[spPVenPul] = -y[spQArPul] + y[spQVenPul]
		f[spQVenPul] = (y[spPAtL]-y[spPVenPul])/o.RVenPul + y[spQVenPul]
	}

	o.volumes(v, y, eAtL, eAtR, eVL, eVR)

	if K == nil {
		return
	}
	K.Zero()

	// atrium - left
	K.Set(0, 0, 1/(eAtL*dt))
	K.Set(0, 1, theta)
	K.Set(0, 15, -theta)

	// atrioventricular valve - mitral
	K.Set(1, 1, -theta)
	K.Set(1, 0, theta/rAtL)
	K.Set(1, 3, -theta/rAtL)

	// ventricular mass balance - left
	K.Set(2, 3, 1/(eVL*dt))
	K.Set(2, 2, theta)
	K.Set(2, 1, -theta)

	// semilunar valve - aortic
	K.Set(3, 3, theta/rArL)
	K.Set(3, 4, -theta/rArL)
	K.Set(3, 2, -theta)

	// arterial mass balance - systemic
	K.Set(4, 4, o.CArSys/dt)
	K.Set(4, 2, -theta-o.CArSys*o.ZArSys/dt)
	K.Set(4, 5, theta)

	// arterial linear momentum balance - systemic
	K.Set(5, 5, o.LArSys/(o.RArSys*dt)+theta)
	K.Set(5, 2, o.ZArSys*theta/o.RArSys)
	K.Set(5, 4, -theta/o.RArSys)
	K.Set(5, 6, theta/o.RArSys)

	// venous mass balance - systemic
	K.Set(6, 6, o.CVenSys/dt)
	K.Set(6, 5, -theta)
	K.Set(6, 7, theta)

	// venous linear momentum balance - systemic
	K.Set(7, 7, o.LVenSys/(o.RVenSys*dt)+theta)
	K.Set(7, 6, -theta/o.RVenSys)
	K.Set(7, 8, theta/o.RVenSys)

	// atrium - right
	K.Set(8, 8, 1/(eAtR*dt))
	K.Set(8, 9, theta)
	K.Set(8, 7, -theta)

	// atrioventricular valve - tricuspid
	K.Set(9, 9, -theta)
	K.Set(9, 8, theta/rAtR)
	K.Set(9, 11, -theta/rAtR)

	// ventricular mass balance - right
	K.Set(10, 11, 1/(eVR*dt))
	K.Set(10, 10, theta)
	K.Set(10, 9, -theta)

	// semilunar valve - pulmonary
	K.Set(11, 11, theta/rArR)
	K.Set(11, 12, -theta/rArR)
	K.Set(11, 10, -theta)

	// arterial mass balance - pulmonary
	K.Set(12, 12, o.CArPul/dt)
	K.Set(12, 10, -theta-o.CArPul*o.ZArPul/dt)
	K.Set(12, 13, theta)

	// arterial linear momentum balance - pulmonary
	K.Set(13, 13, o.LArPul/(o.RArPul*dt)+theta)
	K.Set(13, 10, o.ZArPul*theta/o.RArPul)
	K.Set(13, 12, -theta/o.RArPul)
	K.Set(13, 14, theta/o.RArPul)

	// venous mass balance - pulmonary
	K.Set(14, 14, o.CVenPul/dt)
	K.Set(14, 13, -theta)
	K.Set(14, 15, theta)

	// venous linear momentum balance - pulmonary
	K.Set(15, 15, o.LVenPul/(o.RVenPul*dt)+theta)
	K.Set(15, 14, -theta/o.RVenPul)
	K.Set(15, 0, theta/o.RVenPul)
}
