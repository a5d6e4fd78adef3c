// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) YAML or JSON file
package inp

import (
	"encoding/json"
	goio "io"
	"math"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"github.com/ghodss/yaml"
)

// Data holds global data for simulations
type Data struct {
	Desc    string `json:"desc"`    // description of simulation
	DirOut  string `json:"dirout"`  // directory for output; e.g. /tmp/monofem
	Encoder string `json:"encoder"` // encoder name for restart files; "gob" or "json"
	Stat    bool   `json:"stat"`    // activate statistics
	ShowLam bool   `json:"showlam"` // print recovered multipliers at the end of each step
}

// LinSolData holds data for linear solvers
type LinSolData struct {

	// outer solver selection
	Name      string `json:"name"`      // solver kind: "UMFPACK", "Superlu", "klu" or "Belos"
	Symmetric bool   `json:"symmetric"` // matrix is symmetric
	Verbose   bool   `json:"verbose"`   // verbose?
	Timing    bool   `json:"timing"`    // show timing statistics

	// iterative (Belos) options
	AzSolve        string  `json:"azsolve"`          // Krylov method: "CG", "GMRES" or "BiCGSTAB"
	AzPrec         string  `json:"azprec"`           // preconditioner: "ILU", "MueLu", "AMGnxn" or "Teko"
	AzIter         int     `json:"aziter"`           // max number of Krylov iterations
	AzTol          float64 `json:"aztol"`            // Krylov convergence tolerance
	AzConv         string  `json:"azconv"`           // convergence check: "AZ_r0" (relative) or "AZ_noscaled"
	AzOutput       int     `json:"azoutput"`         // residual print frequency; 0 => quiet
	AzReuse        int     `json:"azreuse"`          // number of solves the preconditioner is kept for
	ReuseStallIter int     `json:"reuse_stall_iter"` // iteration count above which a reused preconditioner is rebuilt
	AzSub          int     `json:"azsub"`            // GMRES restart length

	// convergence handling
	ThrowIfUnconverged bool    `json:"throw_if_unconverged"` // treat non-convergence as a fatal error
	AdaptConv          bool    `json:"adaptconv"`            // adapt the inner tolerance from the outer Newton residual
	AdaptConvBetter    float64 `json:"adaptconv_better"`     // factor by which the adapted tolerance beats the outer ratio

	// identification of this solver block
	Label string `json:"label"` // name of this solver configuration
}

// SolverData holds nonlinear (Newton) solver data
type SolverData struct {

	// nonlinear solver
	NmaxIt  int     `json:"nmaxit"`  // number of max iterations
	Atol    float64 `json:"atol"`    // absolute tolerance on solution increments
	Rtol    float64 `json:"rtol"`    // relative tolerance on solution increments
	FbTol   float64 `json:"fbtol"`   // tolerance for convergence on residual norm
	FbMin   float64 `json:"fbmin"`   // minimum value of residual norm
	DvgCtrl bool    `json:"dvgctrl"` // use divergence control
	NdvgMax int     `json:"ndvgmax"` // max number of continued divergence
	CteTg   bool    `json:"ctetg"`   // use constant tangent (modified Newton) during iterations
	ShowR   bool    `json:"showr"`   // show residual

	// coupling
	Condense string  `json:"condense"` // interface condensation: "structuresplit" or "fluidsplit"
	StiParam float64 `json:"stiparam"` // time-integration weighting entering multiplier recovery

	// transient analyses
	DtMin float64 `json:"dtmin"` // minimum value of Dt
	Theta float64 `json:"theta"` // θ-method

	// constants
	Eps float64 `json:"eps"` // smallest number satisfying 1.0 + ϵ > 1.0

	// derived
	Itol float64 // iterations tolerance
}

// MortarData holds mortar segmentation and integration parameters
type MortarData struct {
	IntTol    float64 `json:"inttol"`    // slack added to in-cell checks of projected points
	MaxIter   int     `json:"maxiter"`   // max iterations of local projection Newton loops
	ConvTol   float64 `json:"convtol"`   // convergence tolerance of local projection Newton loops
	ProjTol   float64 `json:"projtol"`   // tolerance for accepting projections slightly outside the element
	ProjLim   float64 `json:"projlim"`   // denominator limit below which a projection is degenerate
	ClipTol   float64 `json:"cliptol"`   // relative tolerance for clip-polygon vertex snapping
	IntLim    float64 `json:"intlim"`    // overlap area below which a cell is not integrated
	NumGP     int     `json:"numgp"`     // number of Gauss points per integration cell; 0 => default rule
	DualShape bool    `json:"dualshape"` // use dual shape functions for the multiplier space
	ConsDual  bool    `json:"consdual"`  // consistent dual shapes with full Ae linearization
}

// CardioData holds data for one lumped-parameter (0D) model coupled at a set of surfaces
type CardioData struct {
	Model       string     `json:"model"`       // model kind: "windkessel", "arterialproxdist", "syspul" or "syspulcap"
	Theta       float64    `json:"theta"`       // generalized midpoint parameter θ ∈ (0, 1]
	Period      float64    `json:"t_period"`    // heart cycle period T
	EpsPeriodic float64    `json:"eps_periodic"` // periodic-state tolerance on the cycle error
	Respiratory bool       `json:"respiratory"` // augment syspulcap with the respiratory circuit
	Nconds      int        `json:"nconds"`      // number of coupling conditions (surfaces)
	ActFcn      string     `json:"actfcn"`      // name of activation function y_act(t)
	Prms        dbf.Params `json:"prms"`        // model parameters
}

// TimeControl holds data for defining the simulation time stepping
type TimeControl struct {
	Tf     float64 `json:"tf"`     // final time
	Dt     float64 `json:"dt"`     // time step size (if constant)
	DtOut  float64 `json:"dtout"`  // time step size for output
	DtFcn  string  `json:"dtfcn"`  // time step size (function name)
	DtoFcn string  `json:"dtofcn"` // time step size for output (function name)

	// derived
	DtFunc  dbf.T // time step function
	DtoFunc dbf.T // output time step function
}

// DtAt returns the time step size at time t
func (o *TimeControl) DtAt(t float64) float64 {
	if o.DtFunc == nil {
		return o.Dt
	}
	return o.DtFunc.F(t, nil)
}

// DtoAt returns the output time step size at time t
func (o *TimeControl) DtoAt(t float64) float64 {
	if o.DtoFunc == nil {
		return o.DtOut
	}
	return o.DtoFunc.F(t, nil)
}

// Stage holds stage data
type Stage struct {

	// main
	Desc string `json:"desc"` // description of simulation stage
	Save bool   `json:"save"` // save stage data to restart file
	Load string `json:"load"` // load stage data (filename) from restart file
	Skip bool   `json:"skip"` // do not run stage

	// timecontrol
	Control TimeControl `json:"control"` // time control
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data      Data          `json:"data"`      // stores global simulation data
	Functions FuncsData     `json:"functions"` // stores all time functions
	LinSol    LinSolData    `json:"linsol"`    // linear solver data
	Solver    SolverData    `json:"solver"`    // nonlinear solver data
	Mortar    MortarData    `json:"mortar"`    // mortar segmentation and integration data
	Cardio    []*CardioData `json:"cardio"`    // 0D model blocks
	Stages    []*Stage      `json:"stages"`    // stores all stages

	// derived
	GoroutineId int    // id of goroutine to avoid race problems
	DirOut      string // directory to save results
	Key         string // simulation key; e.g. mysim01.sim => mysim01 or mysim01-alias
	EncType     string // encoder type
}

// Simulation //////////////////////////////////////////////////////////////////////////////////////

// ReadSim reads all simulation data from a .sim YAML (or JSON) file
func ReadSim(simfilepath, alias string, erasePrev, createDirOut bool, goroutineId int) *Simulation {

	// new sim
	var o Simulation
	o.GoroutineId = goroutineId

	// read file
	b, err := io.ReadFile(simfilepath)
	if err != nil {
		chk.Panic("ReadSim: cannot read simulation file %q", simfilepath)
	}

	// set default values
	o.Solver.SetDefault()
	o.LinSol.SetDefault()
	o.Mortar.SetDefault()

	// decode
	err = yaml.Unmarshal(b, &o)
	if err != nil {
		chk.Panic("ReadSim: cannot unmarshal simulation file %q\n%v", simfilepath, err)
	}

	// input directory and filename key
	dir := filepath.Dir(simfilepath)
	fn := filepath.Base(simfilepath)
	dir = os.ExpandEnv(dir)
	fnkey := io.FnKey(fn)
	o.Key = fnkey
	if alias != "" {
		o.Key += "-" + alias
	}

	// output directory
	o.DirOut = o.Data.DirOut
	if o.DirOut == "" {
		o.DirOut = "/tmp/monofem/" + fnkey
	}

	// encoder type
	o.EncType = o.Data.Encoder
	if o.EncType != "gob" && o.EncType != "json" {
		o.EncType = "gob"
	}

	// create directory
	if createDirOut {
		err = os.MkdirAll(o.DirOut, 0777)
		if err != nil {
			chk.Panic("cannot create directory for output results (%s): %v", o.DirOut, err)
		}
	}

	// erase previous simulation results
	if erasePrev {
		io.RemoveAll(io.Sf("%s/%s*", o.DirOut, fnkey))
	}

	// validate options
	err = o.LinSol.Validate()
	if err != nil {
		chk.Panic("ReadSim: %v", err)
	}
	err = o.Solver.Validate()
	if err != nil {
		chk.Panic("ReadSim: %v", err)
	}

	// set solver constants
	o.Solver.PostProcess()

	// for all 0D blocks
	for i, cd := range o.Cardio {
		cd.SetDefault()
		err = cd.Validate()
		if err != nil {
			chk.Panic("ReadSim: cardio block %d: %v", i, err)
		}
	}

	// for all stages
	var t float64
	for _, stg := range o.Stages {

		// fix Tf
		if stg.Control.Tf < 1e-14 {
			stg.Control.Tf = 1
		}

		// fix Dt
		if stg.Control.DtFcn == "" {
			if stg.Control.Dt < 1e-14 {
				stg.Control.Dt = 1
			}
		} else {
			stg.Control.DtFunc, err = o.Functions.Get(stg.Control.DtFcn)
			if err != nil {
				chk.Panic("%v", err)
			}
			stg.Control.Dt = stg.Control.DtFunc.F(t, nil)
		}

		// fix DtOut
		if stg.Control.DtoFcn == "" {
			if stg.Control.DtOut < 1e-14 {
				stg.Control.DtOut = stg.Control.Dt
				stg.Control.DtoFunc = stg.Control.DtFunc
			} else {
				if stg.Control.DtOut < stg.Control.Dt {
					stg.Control.DtOut = stg.Control.Dt
				}
			}
		} else {
			stg.Control.DtoFunc, err = o.Functions.Get(stg.Control.DtoFcn)
			if err != nil {
				chk.Panic("%v", err)
			}
			stg.Control.DtOut = stg.Control.DtoFunc.F(t, nil)
		}

		// update time
		t += stg.Control.Tf
	}

	// results
	return &o
}

// GetInfo returns formatted information
func (o *Simulation) GetInfo(w goio.Writer) (err error) {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return
}

// extra settings //////////////////////////////////////////////////////////////////////////////////

// SetDefault sets default values
func (o *LinSolData) SetDefault() {
	o.Name = "UMFPACK"
	o.AzSolve = "GMRES"
	o.AzPrec = "ILU"
	o.AzIter = 1000
	o.AzTol = 1e-8
	o.AzConv = "AZ_r0"
	o.AzOutput = 0
	o.AzReuse = 0
	o.ReuseStallIter = 50
	o.AzSub = 50
	o.ThrowIfUnconverged = true
	o.AdaptConvBetter = 0.1
}

// Validate checks option values
func (o *LinSolData) Validate() (err error) {
	switch o.Name {
	case "UMFPACK", "Superlu", "klu", "Belos":
	default:
		return chk.Err("linsol: unknown solver kind %q", o.Name)
	}
	switch o.AzSolve {
	case "CG", "GMRES", "BiCGSTAB":
	default:
		return chk.Err("linsol: unknown Krylov method %q", o.AzSolve)
	}
	switch o.AzPrec {
	case "ILU", "MueLu", "AMGnxn", "Teko":
	default:
		return chk.Err("linsol: unknown preconditioner %q", o.AzPrec)
	}
	switch o.AzConv {
	case "AZ_r0", "AZ_noscaled":
	default:
		return chk.Err("linsol: unknown convergence check %q", o.AzConv)
	}
	if o.AzIter < 1 {
		return chk.Err("linsol: aziter must be positive")
	}
	if o.AzTol <= 0 {
		return chk.Err("linsol: aztol must be positive")
	}
	return
}

// SetDefault sets default values
func (o *SolverData) SetDefault() {

	// nonlinear solver
	o.NmaxIt = 20
	o.Atol = 1e-6
	o.Rtol = 1e-6
	o.FbTol = 1e-8
	o.FbMin = 1e-14
	o.NdvgMax = 20

	// coupling
	o.Condense = "structuresplit"

	// transient analyses
	o.DtMin = 1e-8
	o.Theta = 0.5

	// constants
	o.Eps = 1e-16
}

// Validate checks option values
func (o *SolverData) Validate() (err error) {
	if o.Condense != "structuresplit" && o.Condense != "fluidsplit" {
		return chk.Err("solver: unknown condensation mode %q", o.Condense)
	}
	if o.StiParam < 0 || o.StiParam >= 1 {
		return chk.Err("solver: stiparam must be within [0, 1)")
	}
	return
}

// PostProcess performs a post-processing of the just read file
func (o *SolverData) PostProcess() {
	o.Itol = utl.Max(10.0*o.Eps/o.Rtol, utl.Min(0.01, math.Sqrt(o.Rtol)))
}

// SetDefault sets default values
func (o *MortarData) SetDefault() {
	o.IntTol = 0.0
	o.MaxIter = 10
	o.ConvTol = 1e-12
	o.ProjTol = 0.05
	o.ProjLim = 1e-8
	o.ClipTol = 1e-8
	o.IntLim = 1e-12
	o.DualShape = true
}

// SetDefault sets default values
func (o *CardioData) SetDefault() {
	if o.Theta == 0 {
		o.Theta = 0.5
	}
	if o.EpsPeriodic == 0 {
		o.EpsPeriodic = 1e-16
	}
	if o.Nconds == 0 {
		o.Nconds = 1
	}
}

// Validate checks option values
func (o *CardioData) Validate() (err error) {
	switch o.Model {
	case "windkessel", "arterialproxdist", "syspul", "syspulcap":
	default:
		return chk.Err("cardio: unknown model kind %q", o.Model)
	}
	if o.Theta <= 0 || o.Theta > 1 {
		return chk.Err("cardio: theta must be within (0, 1]")
	}
	if o.Period < 0 {
		return chk.Err("cardio: t_period must be non-negative")
	}
	return
}

// Prm returns a model parameter by name, or the given default when absent
func (o *CardioData) Prm(name string, dflt float64) float64 {
	if p := o.Prms.Find(name); p != nil {
		return p.V
	}
	return dflt
}
