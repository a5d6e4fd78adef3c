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

// ProxDist implements the heart-arterial model with a proximal and a
// distal arterial compartment. One condition carries the dof quadruple
// [p_v p_arp q_arp p_ard]: ventricular pressure, proximal arterial
// pressure and flux, distal arterial pressure. The ventricle is filled
// from a prescribed atrial pressure curve through a piecewise-linear
// atrioventricular valve; the chamber volume of condition i enters
// through the volume slot of the first dof
type ProxDist struct {
	RAtvalveMax, RAtvalveMin float64
	RArvalveMax, RArvalveMin float64
	CArp, RArp, LArp         float64
	CArd, RArd               float64
	Pref                     float64
	PV0, PArp0, QArp0, PArd0 float64
	nconds                   int

	pAt dbf.T // prescribed atrial pressure
}

func init() {
	allocators["arterialproxdist"] = func() Model { return new(ProxDist) }
}

// Init initialises the model parameters
func (o *ProxDist) Init(conf *inp.CardioData) (err error) {
	o.RAtvalveMax = conf.Prm("R_atvalve_max", 0)
	o.RAtvalveMin = conf.Prm("R_atvalve_min", 0)
	o.RArvalveMax = conf.Prm("R_arvalve_max", 0)
	o.RArvalveMin = conf.Prm("R_arvalve_min", 0)
	o.CArp = conf.Prm("C_arp", 0)
	o.RArp = conf.Prm("R_arp", 0)
	o.LArp = conf.Prm("L_arp", 0)
	o.CArd = conf.Prm("C_ard", 0)
	o.RArd = conf.Prm("R_ard", 0)
	o.Pref = conf.Prm("p_ref", 0)
	o.PV0 = conf.Prm("p_v_0", 0)
	o.PArp0 = conf.Prm("p_arp_0", 0)
	o.QArp0 = conf.Prm("q_arp_0", 0)
	o.PArd0 = conf.Prm("p_ard_0", 0)
	o.nconds = conf.Nconds
	if o.RAtvalveMax <= 0 || o.RAtvalveMin <= 0 || o.RArvalveMax <= 0 || o.RArvalveMin <= 0 {
		return chk.Err("arterialproxdist: valve resistances must be positive")
	}
	if o.CArp <= 0 || o.RArp <= 0 || o.CArd <= 0 || o.RArd <= 0 {
		return chk.Err("arterialproxdist: arterial compartment parameters must be positive")
	}
	return
}

// SetAtrialPressure sets the prescribed atrial pressure curve p_at(t)
func (o *ProxDist) SetAtrialPressure(f dbf.T) { o.pAt = f }

// NumDof returns the number of unknowns
func (o *ProxDist) NumDof() int { return 4 * o.nconds }

// Respiratory returns the respiratory sub-model kind
func (o *ProxDist) Respiratory() string { return "none" }

// InitState fills initial unknowns and compartment volumes
func (o *ProxDist) InitState(y, v []float64) {
	for i := 0; i < o.nconds; i++ {
		y[4*i] = o.PV0
		y[4*i+1] = o.PArp0
		y[4*i+2] = o.QArp0
		y[4*i+3] = o.PArd0
	}
}

// Evaluate computes end-point residual parts and the tangent
func (o *ProxDist) Evaluate(t, dt, theta float64, K *mat.Dense, df, f, v, y []float64) {
	if K != nil {
		K.Zero()
	}
	pAt := actval(o.pAt, t)
	for i := 0; i < o.nconds; i++ {
		pv, parp, qarp, pard := y[4*i], y[4*i+1], y[4*i+2], y[4*i+3]
		vol := 0.0
		if v != nil {
			vol = v[4*i]
		}

		// valve laws: open towards the pressure gradient
		rAtv := o.RAtvalveMax
		if pAt > pv {
			rAtv = o.RAtvalveMin
		}
		rArv := o.RArvalveMax
		if pv >= parp {
			rArv = o.RArvalveMin
		}

		if df != nil {
			df[4*i] = vol
			df[4*i+1] = o.CArp * parp
			df[4*i+2] = (o.LArp / o.RArp) * qarp
			df[4*i+3] = o.CArd * pard
		}
		if f != nil {
			// chamber mass balance dV/dt = q_vin - q_vout
			f[4*i] = -(pAt-pv)/rAtv + (pv-parp)/rArv
			f[4*i+1] = -(pv-parp)/rArv + qarp
			f[4*i+2] = (pard-parp)/o.RArp + qarp
			f[4*i+3] = -qarp + (pard-o.Pref)/o.RArd
		}

		if K != nil {
			K.Set(4*i, 4*i, theta*(1/rAtv+1/rArv))
			K.Set(4*i, 4*i+1, -theta/rArv)

			K.Set(4*i+1, 4*i, -theta/rArv)
			K.Set(4*i+1, 4*i+1, o.CArp/dt+theta/rArv)
			K.Set(4*i+1, 4*i+2, theta)

			K.Set(4*i+2, 4*i+1, -theta/o.RArp)
			K.Set(4*i+2, 4*i+2, o.LArp/(o.RArp*dt)+theta)
			K.Set(4*i+2, 4*i+3, theta/o.RArp)

			K.Set(4*i+3, 4*i+2, -theta)
			K.Set(4*i+3, 4*i+3, o.CArd/dt+theta/o.RArd)
		}
	}
}
