// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cardio

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"

	"github.com/reginabuehler/4C-sub006/inp"
)

// Manager advances one 0D model in time with the one-step theta scheme
// and monitors convergence towards a periodic state. It keeps the last
// converged (n) and the trial (np) copies of unknowns, volumes and
// residual parts, so a step can be repeated after a cut-back
type Manager struct {

	// input
	Mdl   Model           // the compartment model
	Conf  *inp.CardioData // model configuration
	Ndof  int             // number of unknowns
	Theta float64         // time integration factor

	// state at t_n and t_np
	Yn, Ynp   []float64 // unknowns
	Vn, Vnp   []float64 // compartment volumes
	DfN, DfNp []float64 // residual part under the time derivative
	Fn, Fnp   []float64 // stiffness residual part

	// midpoint quantities of the last EvaluateForceStiff call
	Ym, DYm []float64 // midpoint unknowns and rates
	Vm      []float64 // midpoint volumes
	ResM    []float64 // midpoint residual

	// periodicity monitoring
	YTn, YTnp  []float64 // unknowns at the two last period boundaries
	CycleError float64   // max relative change over the last period
	IsPeriodic bool      // periodic state reached

	// stand-alone solution of the 0D system
	K      *mat.Dense // tangent
	TolRes float64    // residual tolerance
	NmaxIt int        // maximum number of iterations

	Time float64 // time of the last evaluation
}

// State collects the manager data needed to restart a simulation
type State struct {
	Time       float64
	Yn, Vn     []float64
	DfN, Fn    []float64
	YTn        []float64
	CycleError float64
	IsPeriodic bool
}

// NewManager creates a time integration manager for one 0D condition
func NewManager(mdl Model, conf *inp.CardioData) (o *Manager, err error) {
	o = new(Manager)
	o.Mdl = mdl
	o.Conf = conf
	o.Ndof = mdl.NumDof()
	o.Theta = conf.Theta
	n := o.Ndof
	o.Yn, o.Ynp = make([]float64, n), make([]float64, n)
	o.Vn, o.Vnp = make([]float64, n), make([]float64, n)
	o.DfN, o.DfNp = make([]float64, n), make([]float64, n)
	o.Fn, o.Fnp = make([]float64, n), make([]float64, n)
	o.Ym, o.DYm = make([]float64, n), make([]float64, n)
	o.Vm = make([]float64, n)
	o.ResM = make([]float64, n)
	o.YTn, o.YTnp = make([]float64, n), make([]float64, n)
	o.CycleError = 1
	o.K = mat.NewDense(n, n, nil)
	o.TolRes = 1e-8
	o.NmaxIt = 20

	// initial state and the residual parts at t=0
	mdl.InitState(o.Yn, o.Vn)
	mdl.Evaluate(0, 1, o.Theta, nil, o.DfN, o.Fn, nil, o.Yn)
	copy(o.Ynp, o.Yn)
	copy(o.Vnp, o.Vn)
	copy(o.YTn, o.Yn)
	copy(o.YTnp, o.Yn)
	return
}

// EvaluateForceStiff computes the midpoint residual and, if the tangent
// slot is wanted, the consistent tangent for the trial unknowns Ynp
func (o *Manager) EvaluateForceStiff(t, dt float64, withK bool) {
	var K *mat.Dense
	if withK {
		K = o.K
	}
	o.Mdl.Evaluate(t, dt, o.Theta, K, o.DfNp, o.Fnp, o.Vnp, o.Ynp)
	θ := o.Theta
	for j := 0; j < o.Ndof; j++ {
		dfm := (o.DfNp[j] - o.DfN[j]) / dt
		fm := θ*o.Fnp[j] + (1-θ)*o.Fn[j]
		o.ResM[j] = dfm + fm
		o.Ym[j] = θ*o.Ynp[j] + (1-θ)*o.Yn[j]
		o.DYm[j] = (o.Ynp[j] - o.Yn[j]) / dt
		o.Vm[j] = θ*o.Vnp[j] + (1-θ)*o.Vn[j]
	}
	o.Time = t
}

// UpdateDof adds the increment to the trial unknowns
func (o *Manager) UpdateDof(inc []float64) {
	for j := 0; j < o.Ndof; j++ {
		o.Ynp[j] += inc[j]
	}
}

// ResetStep discards the trial state after a time step cut-back
func (o *Manager) ResetStep() {
	copy(o.Ynp, o.Yn)
	copy(o.Vnp, o.Vn)
	copy(o.DfNp, o.DfN)
	copy(o.Fnp, o.Fn)
}

// UpdateTimeStep accepts the trial state. At period boundaries the
// cycle error is refreshed first so it compares the two most recent
// boundary snapshots
func (o *Manager) UpdateTimeStep() {
	T := o.Conf.Period
	if T > 0 && moduloIsRelativeZero(o.Time, T, o.Time) {
		copy(o.YTnp, o.Ynp)
		o.checkPeriodic()
		copy(o.YTn, o.YTnp)
	}
	copy(o.Yn, o.Ynp)
	copy(o.Vn, o.Vnp)
	copy(o.DfN, o.DfNp)
	copy(o.Fn, o.Fnp)
}

// checkPeriodic updates CycleError and latches IsPeriodic
func (o *Manager) checkPeriodic() {
	cerr := 0.0
	for j := 0; j < o.Ndof; j++ {
		ref := math.Max(1, math.Abs(o.YTn[j]))
		e := math.Abs(o.YTnp[j]-o.YTn[j]) / ref
		if e > cerr {
			cerr = e
		}
	}
	o.CycleError = cerr
	if cerr <= o.Conf.EpsPeriodic {
		o.IsPeriodic = true
	}
}

// moduloIsRelativeZero tells whether val is (up to a relative tolerance
// with respect to ref) an integer multiple of fac
func moduloIsRelativeZero(val, fac, ref float64) bool {
	m := math.Mod(val+fac/2, fac) - fac/2
	return math.Abs(m) < 1e-12*math.Max(1, math.Abs(ref))
}

// SolveStep solves one time step of the stand-alone 0D system with
// Newton iterations. The trial unknowns Ynp are the converged solution
// on success
func (o *Manager) SolveStep(t, dt float64) (err error) {
	n := o.Ndof
	var lu mat.LU
	inc := mat.NewVecDense(n, nil)
	res := mat.NewVecDense(n, nil)
	for it := 0; it < o.NmaxIt; it++ {
		o.EvaluateForceStiff(t, dt, true)
		rnorm := 0.0
		for j := 0; j < n; j++ {
			rnorm += o.ResM[j] * o.ResM[j]
		}
		rnorm = math.Sqrt(rnorm)
		if io.Verbose {
			io.Pf("0D newton: it=%d resid=%13.8e\n", it, rnorm)
		}
		if rnorm < o.TolRes {
			return
		}
		for j := 0; j < n; j++ {
			res.SetVec(j, o.ResM[j])
		}
		lu.Factorize(o.K)
		err = lu.SolveVecTo(inc, false, res)
		if err != nil {
			return chk.Err("0D tangent is singular: %v", err)
		}
		for j := 0; j < n; j++ {
			o.Ynp[j] -= inc.AtVec(j)
		}
	}
	return chk.Err("0D newton did not converge within %d iterations", o.NmaxIt)
}

// SaveState takes a deep copy of the restart data
func (o *Manager) SaveState() (s *State) {
	s = &State{
		Time:       o.Time,
		Yn:         append([]float64(nil), o.Yn...),
		Vn:         append([]float64(nil), o.Vn...),
		DfN:        append([]float64(nil), o.DfN...),
		Fn:         append([]float64(nil), o.Fn...),
		YTn:        append([]float64(nil), o.YTn...),
		CycleError: o.CycleError,
		IsPeriodic: o.IsPeriodic,
	}
	return
}

// LoadState restores the manager from restart data. The trial state is
// reset to the loaded converged state
func (o *Manager) LoadState(s *State) (err error) {
	if len(s.Yn) != o.Ndof {
		return chk.Err("restart data has %d unknowns but the model has %d", len(s.Yn), o.Ndof)
	}
	o.Time = s.Time
	copy(o.Yn, s.Yn)
	copy(o.Vn, s.Vn)
	copy(o.DfN, s.DfN)
	copy(o.Fn, s.Fn)
	copy(o.YTn, s.YTn)
	copy(o.YTnp, s.YTn)
	o.CycleError = s.CycleError
	o.IsPeriodic = s.IsPeriodic
	o.ResetStep()
	return
}
