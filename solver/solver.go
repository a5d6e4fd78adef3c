// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package solver implements a façade over direct and iterative linear solvers
// operating on assembled sparse matrices
package solver

import (
	"errors"
	"fmt"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"

	"github.com/reginabuehler/4C-sub006/inp"
	"github.com/reginabuehler/4C-sub006/spm"
)

// errors returned by the façade
var (
	ErrSolverSetup          = errors.New("solver: setup failed")
	ErrNumericFactorization = errors.New("solver: numeric factorization failed")
	ErrNotConverged         = errors.New("solver: iterative method did not converge")
)

// Stats holds results of the last Solve call
type Stats struct {
	Iterations int     // number of Krylov iterations (0 for direct solves)
	Residual   float64 // final residual norm
	Converged  bool    // convergence flag
	PrecReused bool    // preconditioner was reused from a previous solve
}

// Solver solves linear systems A·x = b where A is an assembled sparse matrix.
// The path taken (direct factorization or preconditioned Krylov iteration)
// follows the configuration
type Solver struct {

	// configuration and matrix
	Conf inp.LinSolData
	A    *spm.Matrix      // completed system matrix
	B    *spm.BlockMatrix // optional block view for block preconditioning

	// statistics
	Stats Stats

	// direct solver state
	lis      la.LinSol   // sparse direct solver
	tri      *la.Triplet // triplet view for the sparse direct solver
	lisReady bool        // symbolic phase done
	lu       mat.LU      // dense LU kernel
	luReady  bool

	// iterative solver state
	prec      Preconditioner
	precSaved int          // solves since the preconditioner was built
	proj      *spm.Matrix  // optional nullspace projector
	adaptTol  float64      // tolerance set by AdaptTolerance; 0 => use Conf.AzTol
	n         int
	w1, w2    []float64 // projector work vectors
}

// New returns a solver façade for the given configuration
func New(conf inp.LinSolData) *Solver {
	return &Solver{Conf: conf}
}

// Init attaches the (completed) system matrix and performs the symbolic phase.
// Calling Init again with a matrix of the same structure keeps cached symbolic
// data; call Reset to drop it
func (o *Solver) Init(A *spm.Matrix) (err error) {
	if !A.Filled() {
		return fmt.Errorf("%w: matrix must be completed", ErrSolverSetup)
	}
	if A.RowMap().NumMyElements() != A.DomainMap().NumMyElements() {
		return fmt.Errorf("%w: system matrix must be square", ErrSolverSetup)
	}
	o.A = A
	o.n = A.RowMap().NumMyElements()
	if len(o.w1) != o.n {
		o.w1 = make([]float64, o.n)
		o.w2 = make([]float64, o.n)
	}
	switch o.Conf.Name {
	case "UMFPACK":
		o.tri, err = A.ToTriplet()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSolverSetup, err)
		}
		// the symbolic phase binds the triplet, so a new Init redoes it
		if o.lisReady {
			o.lis.Free()
			o.lisReady = false
		}
		o.lis = la.GetSolver("umfpack")
		err = o.lis.InitR(o.tri, o.Conf.Symmetric, o.Conf.Verbose, o.Conf.Timing)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSolverSetup, err)
		}
		o.lisReady = true
	case "Superlu", "klu":
		o.luReady = false
	case "Belos":
		// preconditioner setup is deferred to Solve so reuse accounting sees it
	}
	return
}

// InitBlock attaches a block matrix. The merged matrix drives the solve; the
// block structure is kept for block preconditioning (Teko, AMGnxn)
func (o *Solver) InitBlock(B *spm.BlockMatrix) (err error) {
	if !B.Filled() {
		return fmt.Errorf("%w: block matrix must be completed", ErrSolverSetup)
	}
	m, err := B.Merge()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSolverSetup, err)
	}
	o.B = B
	return o.Init(m)
}

// SetProjector sets an optional Krylov nullspace projector P. Iterative solves
// then run on the projected operator Pᵀ·A·P with right-hand side Pᵀ·b
func (o *Solver) SetProjector(P *spm.Matrix) {
	o.proj = P
}

// AdaptTolerance lowers the iterative tolerance from the outer (nonlinear)
// residual ratio: tol = max(AzTol, better·wanted/current). No-op unless
// AdaptConv is enabled
func (o *Solver) AdaptTolerance(wanted, current float64) {
	if !o.Conf.AdaptConv || current <= 0 {
		return
	}
	tol := o.Conf.AdaptConvBetter * wanted / current
	if tol < o.Conf.AzTol {
		tol = o.Conf.AzTol
	}
	o.adaptTol = tol
}

// Reset drops all cached factorizations and preconditioners
func (o *Solver) Reset() {
	if o.lisReady {
		o.lis.Free()
		o.lisReady = false
	}
	o.luReady = false
	o.prec = nil
	o.precSaved = 0
	o.adaptTol = 0
}

// Clean releases solver resources
func (o *Solver) Clean() {
	o.Reset()
}

// Solve solves A·x = b. x and b are laid out over the row map of the matrix
// given to Init
func (o *Solver) Solve(x, b []float64) (err error) {
	if o.A == nil {
		return fmt.Errorf("%w: Init must be called first", ErrSolverSetup)
	}
	if len(x) != o.n || len(b) != o.n {
		return fmt.Errorf("%w: vector size mismatch: %d, %d != %d", ErrSolverSetup, len(x), len(b), o.n)
	}
	o.Stats = Stats{}
	switch o.Conf.Name {
	case "UMFPACK":
		err = o.solveSparseDirect(x, b)
	case "Superlu", "klu":
		err = o.solveDenseDirect(x, b)
	case "Belos":
		err = o.solveKrylov(x, b)
	default:
		err = fmt.Errorf("%w: unknown solver kind %q", ErrSolverSetup, o.Conf.Name)
	}
	return
}

// solveSparseDirect factorizes numerically and solves through the sparse
// direct solver
func (o *Solver) solveSparseDirect(x, b []float64) (err error) {
	err = o.lis.Fact()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNumericFactorization, err)
	}
	err = o.lis.SolveR(x, b, false)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNumericFactorization, err)
	}
	o.finishDirect(x, b)
	return
}

// solveDenseDirect expands the matrix and runs a dense LU kernel
func (o *Solver) solveDenseDirect(x, b []float64) (err error) {
	if !o.luReady {
		d := mat.NewDense(o.n, o.n, nil)
		rmap, dmp := o.A.RowMap(), o.A.DomainMap()
		err = o.A.EachNonZero(func(rgid, cgid int, v float64) {
			d.Set(rmap.Lid(rgid), dmp.Lid(cgid), v)
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSolverSetup, err)
		}
		o.lu.Factorize(d)
		o.luReady = true
	}
	xv := mat.NewVecDense(o.n, x)
	err = o.lu.SolveVecTo(xv, false, mat.NewVecDense(o.n, b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNumericFactorization, err)
	}
	o.finishDirect(x, b)
	return
}

// finishDirect fills statistics after a direct solve
func (o *Solver) finishDirect(x, b []float64) {
	o.A.MatVec(o.w1, x)
	la.VecAdd(o.w1, -1, b)
	o.Stats.Residual = la.VecNorm(o.w1)
	o.Stats.Converged = true
	if o.Conf.Verbose {
		io.Pf("solver: direct (%s): |r| = %g\n", o.Conf.Name, o.Stats.Residual)
	}
}

// tolerance returns the active iterative tolerance
func (o *Solver) tolerance() float64 {
	if o.adaptTol > 0 {
		return o.adaptTol
	}
	return o.Conf.AzTol
}

// setupPreconditioner builds or reuses the preconditioner according to
// AzReuse and ReuseStallIter
func (o *Solver) setupPreconditioner() (err error) {
	if o.prec != nil && o.precSaved > 0 {
		if o.precSaved <= o.Conf.AzReuse && o.Stats.Iterations <= o.Conf.ReuseStallIter {
			o.precSaved++
			o.Stats.PrecReused = true
			return
		}
	}
	switch o.Conf.AzPrec {
	case "ILU":
		o.prec = newILU0()
	case "MueLu", "AMGnxn":
		o.prec = newTwoLevel()
	case "Teko":
		if o.B == nil {
			return fmt.Errorf("%w: block preconditioner needs InitBlock", ErrSolverSetup)
		}
		o.prec = newBlockGS(o.B)
	default:
		return fmt.Errorf("%w: unknown preconditioner %q", ErrSolverSetup, o.Conf.AzPrec)
	}
	err = o.prec.Setup(o.A)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSolverSetup, err)
	}
	o.precSaved = 1
	return
}

// solveKrylov runs the configured Krylov method
func (o *Solver) solveKrylov(x, b []float64) (err error) {
	err = o.setupPreconditioner()
	if err != nil {
		return
	}
	op := o.operator()
	rhs := b
	if o.proj != nil {
		o.proj.MatTrVec(o.w2, b)
		rhs = o.w2
	}
	var res float64
	var nit int
	var conv bool
	switch o.Conf.AzSolve {
	case "CG":
		nit, res, conv, err = o.cg(op, x, rhs)
	case "GMRES":
		nit, res, conv, err = o.gmres(op, x, rhs)
	case "BiCGSTAB":
		nit, res, conv, err = o.bicgstab(op, x, rhs)
	default:
		return fmt.Errorf("%w: unknown Krylov method %q", ErrSolverSetup, o.Conf.AzSolve)
	}
	if err != nil {
		return
	}
	if o.proj != nil {
		// back to the unprojected space: x = P·y
		copy(o.w1, x)
		o.proj.MatVec(x, o.w1)
	}
	o.Stats.Iterations = nit
	o.Stats.Residual = res
	o.Stats.Converged = conv
	o.adaptTol = 0
	if !conv {
		if o.Conf.ThrowIfUnconverged {
			return fmt.Errorf("%w: %s stopped at iteration %d with |r| = %g", ErrNotConverged, o.Conf.AzSolve, nit, res)
		}
		io.Pfred("solver: %s did not converge within %d iterations: |r| = %g\n", o.Conf.AzSolve, o.Conf.AzIter, res)
	}
	return
}

// operator returns the mat-vec closure, projected when a projector is set
func (o *Solver) operator() func(y, x []float64) {
	if o.proj == nil {
		return func(y, x []float64) {
			o.A.MatVec(y, x)
		}
	}
	t := make([]float64, o.n)
	u := make([]float64, o.n)
	return func(y, x []float64) {
		o.proj.MatVec(t, x)
		o.A.MatVec(u, t)
		o.proj.MatTrVec(y, u)
	}
}
