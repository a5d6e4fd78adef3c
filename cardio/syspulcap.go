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

// dof ordering of the peripheral closed-loop model: left heart and
// systemic arteries, a peripheral arterial node feeding five parallel
// organ beds (splanchnic, extra-splanchnic, muscular, cerebral,
// coronary) each with its own venous compartment, the systemic venous
// return, then the right heart and a pulmonary circuit with an explicit
// capillary compartment
const (
	scPAtL = iota
	scQVinL
	scQVoutL
	scPVL
	scPArSys
	scQArSys
	scPArPeriSys
	scQArSpl // first of the five arterial bed fluxes
	scPVenSpl = scQArSpl + nbeds
	scPVenSys = scPVenSpl + 2*nbeds
	scQVenSys = scPVenSys + 1
	scPAtR    = scQVenSys + 1
	scQVinR   = scPAtR + 1
	scQVoutR  = scQVinR + 1
	scPVR     = scQVoutR + 1
	scPArPul  = scPVR + 1
	scQArPul  = scPArPul + 1
	scPCapPul = scQArPul + 1
	scQCapPul = scPCapPul + 1
	scPVenPul = scQCapPul + 1
	scQVenPul = scPVenPul + 1
	scNdof    = scQVenPul + 1
)

const nbeds = 5

var bedNames = [nbeds]string{"spl", "espl", "msc", "cer", "cor"}

// SysPulCap implements the closed-loop vascular model with peripheral
// systemic beds and a pulmonary capillary compartment. Without the
// respiratory circuit the model carries 34 unknowns
type SysPulCap struct {

	// heart (as in the basic closed loop)
	RArvalveMaxL, RArvalveMinL float64
	RAtvalveMaxL, RAtvalveMinL float64
	RArvalveMaxR, RArvalveMinR float64
	RAtvalveMaxR, RAtvalveMinR float64
	EAtMaxL, EAtMinL           float64
	EAtMaxR, EAtMinR           float64
	EVMaxL, EVMinL             float64
	EVMaxR, EVMinR             float64

	// systemic arteries
	CArSys, RArSys, LArSys, ZArSys float64

	// peripheral beds
	CAr, RAr [nbeds]float64 // arterial side per bed
	CVen, RVen, LVen [nbeds]float64 // venous side per bed

	// systemic venous return
	CVenSys, RVenSys, LVenSys float64

	// pulmonary circuit
	CArPul, RArPul, LArPul, ZArPul float64
	CCapPul, RCapPul, LCapPul      float64
	CVenPul, RVenPul, LVenPul      float64

	// unstressed volumes of the pressure compartments
	VAtLu, VVLu, VAtRu, VVRu          float64
	VArSysU, VArPeriU, VVenSysU       float64
	VArPulU, VCapPulU, VVenPulU       float64
	VVenBedU                          [nbeds]float64

	y0 [scNdof]float64

	actAtL, actAtR dbf.T
	actVL, actVR   dbf.T

	respiratory bool
}

func init() {
	allocators["syspulcap"] = func() Model { return new(SysPulCap) }
}

// Init initialises the model parameters
func (o *SysPulCap) Init(conf *inp.CardioData) (err error) {
	o.respiratory = conf.Respiratory
	if o.respiratory {
		return chk.Err("syspulcap: the respiratory gas transport circuit is not available")
	}

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

	for b, name := range bedNames {
		o.CAr[b] = conf.Prm("C_ar"+name+"_sys", 0)
		o.RAr[b] = conf.Prm("R_ar"+name+"_sys", 0)
		o.CVen[b] = conf.Prm("C_ven"+name+"_sys", 0)
		o.RVen[b] = conf.Prm("R_ven"+name+"_sys", 0)
		o.LVen[b] = conf.Prm("L_ven"+name+"_sys", 0)
		if o.RAr[b] <= 0 || o.RVen[b] <= 0 {
			return chk.Err("syspulcap: bed %q resistances must be positive", name)
		}
	}

	o.CVenSys = conf.Prm("C_ven_sys", 0)
	o.RVenSys = conf.Prm("R_ven_sys", 0)
	o.LVenSys = conf.Prm("L_ven_sys", 0)

	o.CArPul = conf.Prm("C_ar_pul", 0)
	o.RArPul = conf.Prm("R_ar_pul", 0)
	o.LArPul = conf.Prm("L_ar_pul", 0)
	o.ZArPul = conf.Prm("Z_ar_pul", 0)
	o.CCapPul = conf.Prm("C_cap_pul", 0)
	o.RCapPul = conf.Prm("R_cap_pul", 0)
	o.LCapPul = conf.Prm("L_cap_pul", 0)
	o.CVenPul = conf.Prm("C_ven_pul", 0)
	o.RVenPul = conf.Prm("R_ven_pul", 0)
	o.LVenPul = conf.Prm("L_ven_pul", 0)

	if o.EAtMinL <= 0 || o.EAtMinR <= 0 || o.EVMinL <= 0 || o.EVMinR <= 0 {
		return chk.Err("syspulcap: minimum chamber elastances must be positive")
	}
	if o.RArSys <= 0 || o.RVenSys <= 0 || o.RArPul <= 0 || o.RCapPul <= 0 || o.RVenPul <= 0 {
		return chk.Err("syspulcap: circuit resistances must be positive")
	}
	if o.RAtvalveMinL <= 0 || o.RAtvalveMaxL <= 0 || o.RArvalveMinL <= 0 || o.RArvalveMaxL <= 0 ||
		o.RAtvalveMinR <= 0 || o.RAtvalveMaxR <= 0 || o.RArvalveMinR <= 0 || o.RArvalveMaxR <= 0 {
		return chk.Err("syspulcap: valve resistances must be positive")
	}

	o.VAtLu = conf.Prm("V_at_l_u", 0)
	o.VVLu = conf.Prm("V_v_l_u", 0)
	o.VAtRu = conf.Prm("V_at_r_u", 0)
	o.VVRu = conf.Prm("V_v_r_u", 0)
	o.VArSysU = conf.Prm("V_ar_sys_u", 0)
	o.VArPeriU = conf.Prm("V_arperi_sys_u", 0)
	o.VVenSysU = conf.Prm("V_ven_sys_u", 0)
	o.VArPulU = conf.Prm("V_ar_pul_u", 0)
	o.VCapPulU = conf.Prm("V_cap_pul_u", 0)
	o.VVenPulU = conf.Prm("V_ven_pul_u", 0)
	for b, name := range bedNames {
		o.VVenBedU[b] = conf.Prm("V_ven"+name+"_sys_u", 0)
	}

	names := []string{
		"p_at_l_0", "q_vin_l_0", "q_vout_l_0", "p_v_l_0",
		"p_ar_sys_0", "q_ar_sys_0", "p_arperi_sys_0",
		"q_arspl_sys_0", "q_arespl_sys_0", "q_armsc_sys_0", "q_arcer_sys_0", "q_arcor_sys_0",
		"p_venspl_sys_0", "q_venspl_sys_0", "p_venespl_sys_0", "q_venespl_sys_0",
		"p_venmsc_sys_0", "q_venmsc_sys_0", "p_vencer_sys_0", "q_vencer_sys_0",
		"p_vencor_sys_0", "q_vencor_sys_0",
		"p_ven_sys_0", "q_ven_sys_0",
		"p_at_r_0", "q_vin_r_0", "q_vout_r_0", "p_v_r_0",
		"p_ar_pul_0", "q_ar_pul_0", "p_cap_pul_0", "q_cap_pul_0",
		"p_ven_pul_0", "q_ven_pul_0",
	}
	for j, name := range names {
		o.y0[j] = conf.Prm(name, 0)
	}
	return
}

// SetActivation sets the chamber activation curves y_act(t)
func (o *SysPulCap) SetActivation(atL, atR, vL, vR dbf.T) {
	o.actAtL, o.actAtR, o.actVL, o.actVR = atL, atR, vL, vR
}

// NumDof returns the number of unknowns
func (o *SysPulCap) NumDof() int {
	if o.respiratory {
		return 82
	}
	return scNdof
}

// Respiratory returns the respiratory sub-model kind
func (o *SysPulCap) Respiratory() string {
	if o.respiratory {
		return "standard"
	}
	return "none"
}

// InitState fills initial unknowns and compartment volumes
func (o *SysPulCap) InitState(y, v []float64) {
	copy(y, o.y0[:])
	eAtL, eAtR, eVL, eVR := o.elastances(0)
	o.volumes(v, y, eAtL, eAtR, eVL, eVR)
}

// volumes computes compartment volumes at the pressure slots of v
func (o *SysPulCap) volumes(v, y []float64, eAtL, eAtR, eVL, eVR float64) {
	if v == nil {
		return
	}
	v[scPAtL] = y[scPAtL]/eAtL + o.VAtLu
	v[scPVL] = y[scPVL]/eVL + o.VVLu
	v[scPArSys] = o.CArSys*(y[scPArSys]-o.ZArSys*y[scQVoutL]) + o.VArSysU
	cArPeri := 0.0
	for b := 0; b < nbeds; b++ {
		cArPeri += o.CAr[b]
	}
	v[scPArPeriSys] = cArPeri*y[scPArPeriSys] + o.VArPeriU
	for b := 0; b < nbeds; b++ {
		v[scPVenSpl+2*b] = o.CVen[b]*y[scPVenSpl+2*b] + o.VVenBedU[b]
	}
	v[scPVenSys] = o.CVenSys*y[scPVenSys] + o.VVenSysU
	v[scPAtR] = y[scPAtR]/eAtR + o.VAtRu
	v[scPVR] = y[scPVR]/eVR + o.VVRu
	v[scPArPul] = o.CArPul*(y[scPArPul]-o.ZArPul*y[scQVoutR]) + o.VArPulU
	v[scPCapPul] = o.CCapPul*y[scPCapPul] + o.VCapPulU
	v[scPVenPul] = o.CVenPul*y[scPVenPul] + o.VVenPulU
}

func (o *SysPulCap) elastances(t float64) (eAtL, eAtR, eVL, eVR float64) {
	eAtL = (o.EAtMaxL-o.EAtMinL)*actval(o.actAtL, t) + o.EAtMinL
	eAtR = (o.EAtMaxR-o.EAtMinR)*actval(o.actAtR, t) + o.EAtMinR
	eVL = (o.EVMaxL-o.EVMinL)*actval(o.actVL, t) + o.EVMinL
	eVR = (o.EVMaxR-o.EVMinR)*actval(o.actVR, t) + o.EVMinR
	return
}

func (o *SysPulCap) valves(y []float64) (rAtL, rArL, rAtR, rArR float64) {
	if y[scPVL] < y[scPAtL] {
		rAtL = o.RAtvalveMinL
	} else {
		rAtL = o.RAtvalveMaxL
	}
	if y[scPVL] < y[scPArSys] {
		rArL = o.RArvalveMaxL
	} else {
		rArL = o.RArvalveMinL
	}
	if y[scPVR] < y[scPAtR] {
		rAtR = o.RAtvalveMinR
	} else {
		rAtR = o.RAtvalveMaxR
	}
	if y[scPVR] < y[scPArPul] {
		rArR = o.RArvalveMaxR
	} else {
		rArR = o.RArvalveMinR
	}
	return
}

// Evaluate computes end-point residual parts and the tangent
func (o *SysPulCap) Evaluate(t, dt, theta float64, K *mat.Dense, df, f, v, y []float64) {
	eAtL, eAtR, eVL, eVR := o.elastances(t)
	rAtL, rArL, rAtR, rArR := o.valves(y)
	o.volumes(v, y, eAtL, eAtR, eVL, eVR)

	cArPeri := 0.0
	for b := 0; b < nbeds; b++ {
		cArPeri += o.CAr[b]
	}

	if df != nil {
		df[scPAtL] = y[scPAtL] / eAtL
		df[scQVinL] = 0
		df[scQVoutL] = y[scPVL] / eVL
		df[scPVL] = 0
		df[scPArSys] = o.CArSys * (y[scPArSys] - o.ZArSys*y[scQVoutL])
		df[scQArSys] = (o.LArSys / o.RArSys) * y[scQArSys]
		df[scPArPeriSys] = cArPeri * y[scPArPeriSys]
		for b := 0; b < nbeds; b++ {
			df[scQArSpl+b] = 0
			df[scPVenSpl+2*b] = o.CVen[b] * y[scPVenSpl+2*b]
			df[scPVenSpl+2*b+1] = (o.LVen[b] / o.RVen[b]) * y[scPVenSpl+2*b+1]
		}
		df[scPVenSys] = o.CVenSys * y[scPVenSys]
		df[scQVenSys] = (o.LVenSys / o.RVenSys) * y[scQVenSys]
		df[scPAtR] = y[scPAtR] / eAtR
		df[scQVinR] = 0
		df[scQVoutR] = y[scPVR] / eVR
		df[scPVR] = 0
		df[scPArPul] = o.CArPul * (y[scPArPul] - o.ZArPul*y[scQVoutR])
		df[scQArPul] = (o.LArPul / o.RArPul) * y[scQArPul]
		df[scPCapPul] = o.CCapPul * y[scPCapPul]
		df[scQCapPul] = (o.LCapPul / o.RCapPul) * y[scQCapPul]
		df[scPVenPul] = o.CVenPul * y[scPVenPul]
		df[scQVenPul] = (o.LVenPul / o.RVenPul) * y[scQVenPul]
	}

	if f != nil {
		f[scPAtL] = -y[scQVenPul] + y[scQVinL]
		f[scQVinL] = (y[scPAtL]-y[scPVL])/rAtL - y[scQVinL]
		f[scQVoutL] = -y[scQVinL] + y[scQVoutL]
		f[scPVL] = (y[scPVL]-y[scPArSys])/rArL - y[scQVoutL]
		f[scPArSys] = -y[scQVoutL] + y[scQArSys]
		f[scQArSys] = (y[scPArPeriSys]-y[scPArSys]+o.ZArSys*y[scQVoutL])/o.RArSys + y[scQArSys]

		// peripheral arterial node and the five organ beds
		sumAr, sumVen := 0.0, 0.0
		for b := 0; b < nbeds; b++ {
			sumAr += y[scQArSpl+b]
			sumVen += y[scPVenSpl+2*b+1]
		}
		f[scPArPeriSys] = -y[scQArSys] + sumAr
		for b := 0; b < nbeds; b++ {
			f[scQArSpl+b] = (y[scPVenSpl+2*b]-y[scPArPeriSys])/o.RAr[b] + y[scQArSpl+b]
			f[scPVenSpl+2*b] = -y[scQArSpl+b] + y[scPVenSpl+2*b+1]
			f[scPVenSpl+2*b+1] = (y[scPVenSys]-y[scPVenSpl+2*b])/o.RVen[b] + y[scPVenSpl+2*b+1]
		}
		f[scPVenSys] = -sumVen + y[scQVenSys]
		f[scQVenSys] = (y[scPAtR]-y[scPVenSys])/o.RVenSys + y[scQVenSys]

		f[scPAtR] = -y[scQVenSys] + y[scQVinR]
		f[scQVinR] = (y[scPAtR]-y[scPVR])/rAtR - y[scQVinR]
		f[scQVoutR] = -y[scQVinR] + y[scQVoutR]
		f[scPVR] = (y[scPVR]-y[scPArPul])/rArR - y[scQVoutR]
		f[scPArPul] = -y[scQVoutR] + y[scQArPul]
		f[scQArPul] = (y[scPCapPul]-y[scPArPul]+o.ZArPul*y[scQVoutR])/o.RArPul + y[scQArPul]
		f[scPCapPul] = -y[scQArPul] + y[scQCapPul]
		f[scQCapPul] = (y[scPVenPul]-y[scPCapPul])/o.RCapPul + y[scQCapPul]
		f[scPVenPul] = -y[scQCapPul] + y[scQVenPul]
		f[scQVenPul] = (y[scPAtL]-y[scPVenPul])/o.RVenPul + y[scQVenPul]
	}

	if K == nil {
		return
	}
	K.Zero()

	// left heart
	K.Set(scPAtL, scPAtL, 1/(eAtL*dt))
	K.Set(scPAtL, scQVinL, theta)
	K.Set(scPAtL, scQVenPul, -theta)

	K.Set(scQVinL, scQVinL, -theta)
	K.Set(scQVinL, scPAtL, theta/rAtL)
	K.Set(scQVinL, scPVL, -theta/rAtL)

	K.Set(scQVoutL, scPVL, 1/(eVL*dt))
	K.Set(scQVoutL, scQVoutL, theta)
	K.Set(scQVoutL, scQVinL, -theta)

	K.Set(scPVL, scPVL, theta/rArL)
	K.Set(scPVL, scPArSys, -theta/rArL)
	K.Set(scPVL, scQVoutL, -theta)

	// systemic arteries
	K.Set(scPArSys, scPArSys, o.CArSys/dt)
	K.Set(scPArSys, scQVoutL, -theta-o.CArSys*o.ZArSys/dt)
	K.Set(scPArSys, scQArSys, theta)

	K.Set(scQArSys, scQArSys, o.LArSys/(o.RArSys*dt)+theta)
	K.Set(scQArSys, scQVoutL, o.ZArSys*theta/o.RArSys)
	K.Set(scQArSys, scPArSys, -theta/o.RArSys)
	K.Set(scQArSys, scPArPeriSys, theta/o.RArSys)

	// peripheral node and beds
	K.Set(scPArPeriSys, scPArPeriSys, cArPeri/dt)
	K.Set(scPArPeriSys, scQArSys, -theta)
	for b := 0; b < nbeds; b++ {
		K.Set(scPArPeriSys, scQArSpl+b, theta)

		K.Set(scQArSpl+b, scQArSpl+b, theta)
		K.Set(scQArSpl+b, scPArPeriSys, -theta/o.RAr[b])
		K.Set(scQArSpl+b, scPVenSpl+2*b, theta/o.RAr[b])

		K.Set(scPVenSpl+2*b, scPVenSpl+2*b, o.CVen[b]/dt)
		K.Set(scPVenSpl+2*b, scQArSpl+b, -theta)
		K.Set(scPVenSpl+2*b, scPVenSpl+2*b+1, theta)

		K.Set(scPVenSpl+2*b+1, scPVenSpl+2*b+1, o.LVen[b]/(o.RVen[b]*dt)+theta)
		K.Set(scPVenSpl+2*b+1, scPVenSpl+2*b, -theta/o.RVen[b])
		K.Set(scPVenSpl+2*b+1, scPVenSys, theta/o.RVen[b])

		K.Set(scPVenSys, scPVenSpl+2*b+1, -theta)
	}

	// systemic venous return
	K.Set(scPVenSys, scPVenSys, o.CVenSys/dt)
	K.Set(scPVenSys, scQVenSys, theta)

	K.Set(scQVenSys, scQVenSys, o.LVenSys/(o.RVenSys*dt)+theta)
	K.Set(scQVenSys, scPVenSys, -theta/o.RVenSys)
	K.Set(scQVenSys, scPAtR, theta/o.RVenSys)

	// right heart
	K.Set(scPAtR, scPAtR, 1/(eAtR*dt))
	K.Set(scPAtR, scQVinR, theta)
	K.Set(scPAtR, scQVenSys, -theta)

	K.Set(scQVinR, scQVinR, -theta)
	K.Set(scQVinR, scPAtR, theta/rAtR)
	K.Set(scQVinR, scPVR, -theta/rAtR)

	K.Set(scQVoutR, scPVR, 1/(eVR*dt))
	K.Set(scQVoutR, scQVoutR, theta)
	K.Set(scQVoutR, scQVinR, -theta)

	K.Set(scPVR, scPVR, theta/rArR)
	K.Set(scPVR, scPArPul, -theta/rArR)
	K.Set(scPVR, scQVoutR, -theta)

	// pulmonary circuit
	K.Set(scPArPul, scPArPul, o.CArPul/dt)
	K.Set(scPArPul, scQVoutR, -theta-o.CArPul*o.ZArPul/dt)
	K.Set(scPArPul, scQArPul, theta)

	K.Set(scQArPul, scQArPul, o.LArPul/(o.RArPul*dt)+theta)
	K.Set(scQArPul, scQVoutR, o.ZArPul*theta/o.RArPul)
	K.Set(scQArPul, scPArPul, -theta/o.RArPul)
	K.Set(scQArPul, scPCapPul, theta/o.RArPul)

	K.Set(scPCapPul, scPCapPul, o.CCapPul/dt)
	K.Set(scPCapPul, scQArPul, -theta)
	K.Set(scPCapPul, scQCapPul, theta)

	K.Set(scQCapPul, scQCapPul, o.LCapPul/(o.RCapPul*dt)+theta)
	K.Set(scQCapPul, scPCapPul, -theta/o.RCapPul)
	K.Set(scQCapPul, scPVenPul, theta/o.RCapPul)

	K.Set(scPVenPul, scPVenPul, o.CVenPul/dt)
	K.Set(scPVenPul, scQCapPul, -theta)
	K.Set(scPVenPul, scQVenPul, theta)

	K.Set(scQVenPul, scQVenPul, o.LVenPul/(o.RVenPul*dt)+theta)
	K.Set(scQVenPul, scPVenPul, -theta/o.RVenPul)
	K.Set(scQVenPul, scPAtL, theta/o.RVenPul)
}
