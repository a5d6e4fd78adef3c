// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cardio

import (
	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"

	"github.com/reginabuehler/4C-sub006/inp"
)

// Windkessel implements the four-element windkessel
//
//	C dp/dt + (p - p_ref)/R - (1 + Z/R) q - (C Z + L/R) s - L C Z ds/dt = 0
//
// with q = -dV/dt the flux out of the attached chamber and s = dq/dt.
// One condition carries the dof triple [p q s]; the chamber volume V
// enters through the volume slot of the first dof of each condition
type Windkessel struct {
	C, R, L, Z float64 // compliance, peripheral resistance, inertance, characteristic impedance
	Pref       float64 // reference (venous) pressure
	P0, Q0, S0 float64 // initial unknowns per condition
	nconds     int
}

func init() {
	allocators["windkessel"] = func() Model { return new(Windkessel) }
}

// Init initialises the model parameters
func (o *Windkessel) Init(conf *inp.CardioData) (err error) {
	o.C = conf.Prm("C", 0)
	o.R = conf.Prm("R", 0)
	o.L = conf.Prm("L", 0)
	o.Z = conf.Prm("Z", 0)
	o.Pref = conf.Prm("p_ref", 0)
	o.P0 = conf.Prm("p_0", 0)
	o.Q0 = conf.Prm("q_0", 0)
	o.S0 = conf.Prm("s_0", 0)
	o.nconds = conf.Nconds
	if o.C <= 0 || o.R <= 0 {
		return chk.Err("windkessel: compliance and resistance must be positive")
	}
	return
}

// NumDof returns the number of unknowns
func (o *Windkessel) NumDof() int { return 3 * o.nconds }

// Respiratory returns the respiratory sub-model kind
func (o *Windkessel) Respiratory() string { return "none" }

// InitState fills initial unknowns and compartment volumes
func (o *Windkessel) InitState(y, v []float64) {
	for i := 0; i < o.nconds; i++ {
		y[3*i] = o.P0
		y[3*i+1] = o.Q0
		y[3*i+2] = o.S0
	}
}

// Evaluate computes end-point residual parts and the tangent. The
// chamber volume of condition i is read from v[3*i]
func (o *Windkessel) Evaluate(t, dt, theta float64, K *mat.Dense, df, f, v, y []float64) {
	if K != nil {
		K.Zero()
	}
	for i := 0; i < o.nconds; i++ {
		p, q, s := y[3*i], y[3*i+1], y[3*i+2]
		vol := 0.0
		if v != nil {
			vol = v[3*i]
		}

		if df != nil {
			df[3*i] = o.C*p - o.L*o.C*o.Z*s
			df[3*i+1] = -vol
			df[3*i+2] = -q
		}
		if f != nil {
			f[3*i] = (p-o.Pref)/o.R - (1+o.Z/o.R)*q - (o.C*o.Z+o.L/o.R)*s
			f[3*i+1] = -q
			f[3*i+2] = s
		}

		if K != nil {
			// pressure equation
			K.Set(3*i, 3*i, o.C/dt+theta/o.R)
			K.Set(3*i, 3*i+1, -theta*(1+o.Z/o.R))
			K.Set(3*i, 3*i+2, -o.L*o.C*o.Z/dt-theta*(o.C*o.Z+o.L/o.R))
			// flux definition q = -dV/dt
			K.Set(3*i+1, 3*i+1, -theta)
			// flux rate definition s = dq/dt
			K.Set(3*i+2, 3*i+1, -1/dt)
			K.Set(3*i+2, 3*i+2, theta)
		}
	}
}
