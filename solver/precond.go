// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/reginabuehler/4C-sub006/spm"
)

// rowSorter orders one sparse row by column index
type rowSorter struct {
	cols []int
	vals []float64
}

func (o *rowSorter) Len() int           { return len(o.cols) }
func (o *rowSorter) Less(i, j int) bool { return o.cols[i] < o.cols[j] }
func (o *rowSorter) Swap(i, j int) {
	o.cols[i], o.cols[j] = o.cols[j], o.cols[i]
	o.vals[i], o.vals[j] = o.vals[j], o.vals[i]
}

// Preconditioner approximates A⁻¹ for the Krylov methods
type Preconditioner interface {
	Setup(A *spm.Matrix) (err error) // Setup builds the preconditioner from A
	Apply(z, r []float64) (err error) // Apply computes z ≈ A⁻¹·r
}

// ilu0 ////////////////////////////////////////////////////////////////////////

// ilu0 is an incomplete LU factorization on the sparsity pattern of A
type ilu0 struct {
	n    int
	cols [][]int         // column indices per row, ascending
	vals [][]float64     // factored values per row
	pos  []map[int]int   // column → slot per row
	diag []int           // slot of the diagonal per row
}

func newILU0() *ilu0 { return new(ilu0) }

func (o *ilu0) Setup(A *spm.Matrix) (err error) {
	rmap, dmp := A.RowMap(), A.DomainMap()
	o.n = rmap.NumMyElements()
	o.cols = make([][]int, o.n)
	o.vals = make([][]float64, o.n)
	o.pos = make([]map[int]int, o.n)
	o.diag = make([]int, o.n)
	for i := range o.pos {
		o.pos[i] = make(map[int]int)
		o.diag[i] = -1
	}
	err = A.EachNonZero(func(rgid, cgid int, v float64) {
		i, j := rmap.Lid(rgid), dmp.Lid(cgid)
		o.pos[i][j] = len(o.cols[i])
		o.cols[i] = append(o.cols[i], j)
		o.vals[i] = append(o.vals[i], v)
	})
	if err != nil {
		return
	}

	// the elimination below needs ascending columns within each row
	for i := 0; i < o.n; i++ {
		sort.Sort(&rowSorter{o.cols[i], o.vals[i]})
		for s, j := range o.cols[i] {
			o.pos[i][j] = s
		}
		if p, ok := o.pos[i][i]; ok {
			o.diag[i] = p
		} else {
			return fmt.Errorf("ilu0: row %d has no diagonal entry", i)
		}
	}

	// factorization restricted to the original pattern
	for i := 0; i < o.n; i++ {
		for s, k := range o.cols[i] {
			if k >= i {
				continue
			}
			dk := o.vals[k][o.diag[k]]
			if dk == 0 {
				return fmt.Errorf("ilu0: zero pivot at row %d", k)
			}
			lik := o.vals[i][s] / dk
			o.vals[i][s] = lik
			for sk, j := range o.cols[k] {
				if j <= k {
					continue
				}
				if si, ok := o.pos[i][j]; ok {
					o.vals[i][si] -= lik * o.vals[k][sk]
				}
			}
		}
	}
	return
}

func (o *ilu0) Apply(z, r []float64) (err error) {

	// forward solve L·y = r with unit diagonal
	for i := 0; i < o.n; i++ {
		z[i] = r[i]
		for s, j := range o.cols[i] {
			if j < i {
				z[i] -= o.vals[i][s] * z[j]
			}
		}
	}

	// backward solve U·z = y
	for i := o.n - 1; i >= 0; i-- {
		for s, j := range o.cols[i] {
			if j > i {
				z[i] -= o.vals[i][s] * z[j]
			}
		}
		z[i] /= o.vals[i][o.diag[i]]
	}
	return
}

// twoLevel ////////////////////////////////////////////////////////////////////

// aggSize is the number of fine rows per coarse aggregate
const aggSize = 8

// twoLevel is a Jacobi-smoothed two-level correction scheme with contiguous
// aggregates and a dense coarse solve
type twoLevel struct {
	A    *spm.Matrix
	n    int
	nc   int
	dinv []float64 // inverse diagonal for the smoother
	clu  mat.LU    // factorized coarse operator
	rc   []float64
	ec   []float64
	t    []float64
}

func newTwoLevel() *twoLevel { return new(twoLevel) }

func (o *twoLevel) Setup(A *spm.Matrix) (err error) {
	rmap, dmp := A.RowMap(), A.DomainMap()
	o.A = A
	o.n = rmap.NumMyElements()
	o.nc = (o.n + aggSize - 1) / aggSize
	o.dinv = make([]float64, o.n)
	o.rc = make([]float64, o.nc)
	o.ec = make([]float64, o.nc)
	o.t = make([]float64, o.n)

	// coarse operator Ac = R·A·Rᵀ with piecewise-constant aggregates
	ac := mat.NewDense(o.nc, o.nc, nil)
	err = A.EachNonZero(func(rgid, cgid int, v float64) {
		i, j := rmap.Lid(rgid), dmp.Lid(cgid)
		if i == j {
			o.dinv[i] = v
		}
		ac.Set(i/aggSize, j/aggSize, ac.At(i/aggSize, j/aggSize)+v)
	})
	if err != nil {
		return
	}
	for i := 0; i < o.n; i++ {
		if o.dinv[i] == 0 {
			return fmt.Errorf("twolevel: zero diagonal at row %d", i)
		}
		o.dinv[i] = 1.0 / o.dinv[i]
	}
	o.clu.Factorize(ac)
	return
}

func (o *twoLevel) Apply(z, r []float64) (err error) {

	// pre-smooth: z = D⁻¹·r
	for i := 0; i < o.n; i++ {
		z[i] = o.dinv[i] * r[i]
	}

	// coarse correction: z += Rᵀ·Ac⁻¹·R·(r − A·z)
	o.A.MatVec(o.t, z)
	for i := range o.rc {
		o.rc[i] = 0
	}
	for i := 0; i < o.n; i++ {
		o.rc[i/aggSize] += r[i] - o.t[i]
	}
	ev := mat.NewVecDense(o.nc, o.ec)
	err = o.clu.SolveVecTo(ev, false, mat.NewVecDense(o.nc, o.rc))
	if err != nil {
		return
	}
	for i := 0; i < o.n; i++ {
		z[i] += o.ec[i/aggSize]
	}

	// post-smooth: z += D⁻¹·(r − A·z)
	o.A.MatVec(o.t, z)
	for i := 0; i < o.n; i++ {
		z[i] += o.dinv[i] * (r[i] - o.t[i])
	}
	return
}

// blockGS /////////////////////////////////////////////////////////////////////

// blockGS is a forward block Gauss-Seidel sweep over a block matrix with
// dense-factorized diagonal blocks
type blockGS struct {
	B    *spm.BlockMatrix
	nb   int
	off  []int    // offset of each block row in the merged layout
	sz   []int    // size of each block row
	dlu  []mat.LU // factorized diagonal blocks
	ri   []float64
	zi   []float64
}

func newBlockGS(B *spm.BlockMatrix) *blockGS { return &blockGS{B: B} }

func (o *blockGS) Setup(A *spm.Matrix) (err error) {
	ext := o.B.RowExtractor()
	o.nb = ext.NumMaps()
	o.off = make([]int, o.nb+1)
	o.sz = make([]int, o.nb)
	for i := 0; i < o.nb; i++ {
		o.sz[i] = ext.SubMap(i).NumMyElements()
		o.off[i+1] = o.off[i] + o.sz[i]
	}
	o.dlu = make([]mat.LU, o.nb)
	nmax := 0
	for i := 0; i < o.nb; i++ {
		if o.sz[i] > nmax {
			nmax = o.sz[i]
		}
		blk := o.B.Block(i, i)
		if blk == nil {
			return fmt.Errorf("blockgs: diagonal block (%d,%d) is empty", i, i)
		}
		d := mat.NewDense(o.sz[i], o.sz[i], nil)
		rmap, dmp := blk.RowMap(), blk.DomainMap()
		err = blk.EachNonZero(func(rgid, cgid int, v float64) {
			d.Set(rmap.Lid(rgid), dmp.Lid(cgid), v)
		})
		if err != nil {
			return
		}
		o.dlu[i].Factorize(d)
	}
	o.ri = make([]float64, nmax)
	o.zi = make([]float64, nmax)
	return
}

func (o *blockGS) Apply(z, r []float64) (err error) {
	for i := 0; i < o.nb; i++ {
		ri := o.ri[:o.sz[i]]
		copy(ri, r[o.off[i]:o.off[i+1]])
		for j := 0; j < i; j++ {
			blk := o.B.Block(i, j)
			if blk == nil {
				continue
			}
			zi := o.zi[:o.sz[i]]
			blk.MatVec(zi, z[o.off[j]:o.off[j+1]])
			for k := range ri {
				ri[k] -= zi[k]
			}
		}
		xv := mat.NewVecDense(o.sz[i], z[o.off[i]:o.off[i+1]])
		err = o.dlu[i].SolveVecTo(xv, false, mat.NewVecDense(o.sz[i], ri))
		if err != nil {
			return fmt.Errorf("blockgs: diagonal solve %d: %v", i, err)
		}
	}
	return
}
