// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package spm implements row-layout sparse matrices with an FE assembly
// state and a finalized state, and block sparse matrices over map
// extractors. A matrix is built by pushing element contributions addressed
// by local-to-global arrays, then Complete freezes the nonzero structure
// into compressed row storage; UnComplete reopens it for assembly.
package spm

import (
	"errors"
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/james-bowman/sparse"

	"github.com/reginabuehler/4C-sub006/dmap"
)

// lifecycle error kinds
var (
	ErrAlreadyCompleted = errors.New("matrix is completed; call UnComplete first")
	ErrNotCompleted     = errors.New("matrix is not completed")
)

// triple is one deferred contribution to a row not owned by the caller
type triple struct {
	rgid, cgid int
	val        float64
}

// Matrix is a row-distributed sparse matrix. States:
//
//	assembling --Complete--> completed --UnComplete--> assembling
//
// In the assembling state entries are accumulated per row by global column
// id. Complete derives the column map from the observed indices, builds the
// CSR storage and caches the range exporter. Assembly calls in the
// completed state fail with ErrAlreadyCompleted
type Matrix struct {

	// maps
	rowMap    *dmap.Map
	domainMap *dmap.Map
	rangeMap  *dmap.Map
	colMap    *dmap.Map

	// assembling state: per local row, global col => value
	rows     []map[int]float64
	deferred []triple

	// completed state
	csr *sparse.CSR

	// options and caches
	completed      bool
	saveGraph      bool
	explicitDbc    bool
	graph          [][]int // saved column structure (global ids) per local row
	rangeExp      *dmap.Exporter
	nnzPerRowHint int
}

// NewMatrix returns a matrix in the assembling state. nnzPerRow is an
// estimate used to pre-size the per-row storage. explicitDbc selects the
// Dirichlet strategy that rebuilds rows instead of zeroing in place;
// saveGraph keeps the completed structure for cheap re-completion
func NewMatrix(rowMap *dmap.Map, nnzPerRow int, explicitDbc, saveGraph bool) (o *Matrix) {
	o = new(Matrix)
	o.rowMap = rowMap
	o.nnzPerRowHint = nnzPerRow
	o.explicitDbc = explicitDbc
	o.saveGraph = saveGraph
	o.rows = make([]map[int]float64, rowMap.NumMyElements())
	return
}

// RowMap returns the row map
func (o *Matrix) RowMap() *dmap.Map { return o.rowMap }

// DomainMap returns the domain map (set by Complete)
func (o *Matrix) DomainMap() *dmap.Map { return o.domainMap }

// RangeMap returns the range map (set by Complete)
func (o *Matrix) RangeMap() *dmap.Map { return o.rangeMap }

// ColMap returns the column map derived by Complete
func (o *Matrix) ColMap() *dmap.Map { return o.colMap }

// Filled tells whether the matrix is in the completed state
func (o *Matrix) Filled() bool { return o.completed }

func (o *Matrix) row(l int) map[int]float64 {
	if o.rows[l] == nil {
		o.rows[l] = make(map[int]float64, o.nnzPerRowHint)
	}
	return o.rows[l]
}

// Assemble adds the element matrix Aele at the global positions given by
// the location array lm: Aele[i][j] goes to (lm[i], lm[j]). stride lists
// the dofs-per-node blocks of lm and must sum to len(lm). Rows flagged
// false in lmOwner are deferred to the next Complete
func (o *Matrix) Assemble(eid int, stride []int, Aele [][]float64, lm []int, lmOwner []bool) (err error) {
	if o.completed {
		return chk.Err("Assemble: eid=%d: %v", eid, ErrAlreadyCompleted)
	}
	sum := 0
	for _, s := range stride {
		sum += s
	}
	if sum != len(lm) {
		return chk.Err("Assemble: eid=%d: stride sums to %d but len(lm)=%d", eid, sum, len(lm))
	}
	if len(Aele) != len(lm) {
		return chk.Err("Assemble: eid=%d: local matrix has %d rows but len(lm)=%d", eid, len(Aele), len(lm))
	}
	for i, rgid := range lm {
		if lmOwner != nil && !lmOwner[i] {
			for j, cgid := range lm {
				if Aele[i][j] != 0 {
					o.deferred = append(o.deferred, triple{rgid, cgid, Aele[i][j]})
				}
			}
			continue
		}
		l := o.rowMap.Lid(rgid)
		if l < 0 {
			return chk.Err("Assemble: eid=%d: row gid %d: %v", eid, rgid, dmap.ErrOutOfRange)
		}
		r := o.row(l)
		for j, cgid := range lm {
			r[cgid] += Aele[i][j]
		}
	}
	return
}

// AssembleValue adds a scalar contribution at (rgid, cgid)
func (o *Matrix) AssembleValue(v float64, rgid, cgid int) (err error) {
	if o.completed {
		return chk.Err("AssembleValue: %v", ErrAlreadyCompleted)
	}
	l := o.rowMap.Lid(rgid)
	if l < 0 {
		o.deferred = append(o.deferred, triple{rgid, cgid, v})
		return
	}
	o.row(l)[cgid] += v
	return
}

// SetValue overwrites the entry at (rgid, cgid)
func (o *Matrix) SetValue(v float64, rgid, cgid int) (err error) {
	if o.completed {
		return chk.Err("SetValue: %v", ErrAlreadyCompleted)
	}
	l := o.rowMap.Lid(rgid)
	if l < 0 {
		return chk.Err("SetValue: row gid %d: %v", rgid, dmap.ErrOutOfRange)
	}
	o.row(l)[cgid] = v
	return
}

// Complete gathers deferred contributions, freezes the structure into CSR,
// derives the column map and caches the range exporter. Calling Complete on
// an already completed matrix is a no-op
func (o *Matrix) Complete(domainMap, rangeMap *dmap.Map) (err error) {
	if o.completed {
		return
	}

	// gather contributions deferred during FE assembly
	for _, t := range o.deferred {
		l := o.rowMap.Lid(t.rgid)
		if l < 0 {
			return chk.Err("Complete: deferred row gid %d not in row map: %v", t.rgid, dmap.ErrOutOfRange)
		}
		o.row(l)[t.cgid] += t.val
	}
	o.deferred = o.deferred[:0]

	// column map from observed indices: local row order, ascending within row
	seen := make(map[int]bool)
	var cgids []int
	for _, r := range o.rows {
		for c := range r {
			if !seen[c] {
				seen[c] = true
				cgids = append(cgids, c)
			}
		}
	}
	sort.Ints(cgids)
	o.colMap = dmap.NewMap(cgids, 0, false)
	o.domainMap = domainMap
	o.rangeMap = rangeMap

	// compressed storage
	nr := o.rowMap.NumMyElements()
	nc := o.colMap.NumMyElements()
	dok := sparse.NewDOK(nr, nc)
	for l, r := range o.rows {
		for c, v := range r {
			dok.Set(l, o.colMap.Lid(c), v)
		}
	}
	o.csr = dok.ToCSR()
	o.rows = make([]map[int]float64, nr)
	o.completed = true

	if o.saveGraph && o.graph == nil {
		o.graph = make([][]int, nr)
		o.csr.DoNonZero(func(i, j int, v float64) {
			g, _ := o.colMap.Gid(j)
			o.graph[i] = append(o.graph[i], g)
		})
	}

	if rangeMap != nil {
		o.rangeExp = dmap.NewExporter(o.rowMap, rangeMap)
	}
	return
}

// UnComplete transfers the values back into the assembling state keeping
// their global positions. No-op when not completed
func (o *Matrix) UnComplete() {
	if !o.completed {
		return
	}
	o.csr.DoNonZero(func(i, j int, v float64) {
		g, _ := o.colMap.Gid(j)
		o.row(i)[g] = v
	})
	o.csr = nil
	o.completed = false
}

// Zero erases all values. In the completed state the nonzero structure is
// preserved; in the assembling state all entries are dropped
func (o *Matrix) Zero() {
	if o.completed {
		o.csr.DoNonZero(func(i, j int, v float64) {
			o.csr.Set(i, j, 0)
		})
		return
	}
	for l := range o.rows {
		o.rows[l] = nil
	}
	o.deferred = o.deferred[:0]
}

// Reset drops values and structure, returning to an empty assembling state
func (o *Matrix) Reset() {
	o.csr = nil
	o.completed = false
	o.colMap = nil
	o.graph = nil
	o.rangeExp = nil
	o.rows = make([]map[int]float64, o.rowMap.NumMyElements())
	o.deferred = o.deferred[:0]
}

// MatVec computes y := A*x with x over the domain map layout and y over the
// row map layout
func (o *Matrix) MatVec(y, x []float64) (err error) {
	if !o.completed {
		return chk.Err("MatVec: %v", ErrNotCompleted)
	}
	if len(x) != o.domainMap.NumMyElements() || len(y) != o.rowMap.NumMyElements() {
		return chk.Err("MatVec: %v", dmap.ErrDomainMismatch)
	}
	la.VecFill(y, 0)
	o.csr.DoNonZero(func(i, j int, v float64) {
		g, _ := o.colMap.Gid(j)
		y[i] += v * x[o.domainMap.Lid(g)]
	})
	return
}

// MatTrVec computes y := Aᵀ*x
func (o *Matrix) MatTrVec(y, x []float64) (err error) {
	if !o.completed {
		return chk.Err("MatTrVec: %v", ErrNotCompleted)
	}
	if len(x) != o.rowMap.NumMyElements() || len(y) != o.domainMap.NumMyElements() {
		return chk.Err("MatTrVec: %v", dmap.ErrDomainMismatch)
	}
	la.VecFill(y, 0)
	o.csr.DoNonZero(func(i, j int, v float64) {
		g, _ := o.colMap.Gid(j)
		y[o.domainMap.Lid(g)] += v * x[i]
	})
	return
}

// ExtractDiagonalCopy returns the diagonal entries as a vector over the
// row map
func (o *Matrix) ExtractDiagonalCopy() (d *dmap.Vector, err error) {
	if !o.completed {
		return nil, chk.Err("ExtractDiagonalCopy: %v", ErrNotCompleted)
	}
	d = dmap.NewVector(o.rowMap)
	o.csr.DoNonZero(func(i, j int, v float64) {
		g, _ := o.colMap.Gid(j)
		if rg, _ := o.rowMap.Gid(i); rg == g {
			d.V[i] = v
		}
	})
	return
}

// ReplaceDiagonalValues overwrites diagonal entries with d
func (o *Matrix) ReplaceDiagonalValues(d *dmap.Vector) (err error) {
	if !o.completed {
		return chk.Err("ReplaceDiagonalValues: %v", ErrNotCompleted)
	}
	if !d.M.SameAs(o.rowMap) {
		return chk.Err("ReplaceDiagonalValues: %v", dmap.ErrDomainMismatch)
	}
	o.csr.DoNonZero(func(i, j int, v float64) {
		g, _ := o.colMap.Gid(j)
		if rg, _ := o.rowMap.Gid(i); rg == g {
			o.csr.Set(i, j, d.V[i])
		}
	})
	return
}

// LeftScale multiplies row i by d[i]
func (o *Matrix) LeftScale(d *dmap.Vector) (err error) {
	if !o.completed {
		return chk.Err("LeftScale: %v", ErrNotCompleted)
	}
	if !d.M.SameAs(o.rowMap) {
		return chk.Err("LeftScale: %v", dmap.ErrDomainMismatch)
	}
	o.csr.DoNonZero(func(i, j int, v float64) {
		o.csr.Set(i, j, v*d.V[i])
	})
	return
}

// Scale multiplies all entries by s
func (o *Matrix) Scale(s float64) {
	if o.completed {
		o.csr.DoNonZero(func(i, j int, v float64) {
			o.csr.Set(i, j, v*s)
		})
		return
	}
	for _, r := range o.rows {
		for c := range r {
			r[c] *= s
		}
	}
	for i := range o.deferred {
		o.deferred[i].val *= s
	}
}

// NormInf returns the maximum absolute row sum
func (o *Matrix) NormInf() (nrm float64, err error) {
	if !o.completed {
		return 0, chk.Err("NormInf: %v", ErrNotCompleted)
	}
	sums := make([]float64, o.rowMap.NumMyElements())
	o.csr.DoNonZero(func(i, j int, v float64) {
		sums[i] += math.Abs(v)
	})
	for _, s := range sums {
		if s > nrm {
			nrm = s
		}
	}
	return
}

// NormFrobenius returns the Frobenius norm
func (o *Matrix) NormFrobenius() (nrm float64, err error) {
	if !o.completed {
		return 0, chk.Err("NormFrobenius: %v", ErrNotCompleted)
	}
	sum := 0.0
	o.csr.DoNonZero(func(i, j int, v float64) {
		sum += v * v
	})
	return math.Sqrt(sum), nil
}

// Add accumulates scaleB*B (or its transpose) into this matrix:
// this := scaleSelf*this + scaleB*op(B). This matrix must be in the
// assembling state; B must be completed
func (o *Matrix) Add(b *Matrix, transB bool, scaleB, scaleSelf float64) (err error) {
	if o.completed {
		return chk.Err("Add: %v", ErrAlreadyCompleted)
	}
	if !b.completed {
		return chk.Err("Add: B: %v", ErrNotCompleted)
	}
	if scaleSelf != 1 {
		o.Scale(scaleSelf)
	}
	var failed error
	b.csr.DoNonZero(func(i, j int, v float64) {
		cg, _ := b.colMap.Gid(j)
		rg, _ := b.rowMap.Gid(i)
		if transB {
			rg, cg = cg, rg
		}
		l := o.rowMap.Lid(rg)
		if l < 0 {
			failed = chk.Err("Add: row gid %d: %v", rg, dmap.ErrOutOfRange)
			return
		}
		o.row(l)[cg] += scaleB * v
	})
	return failed
}

// Multiply computes op(A)*op(B) as a new matrix in the assembling state;
// when completeResult is set the result is completed with the appropriate
// domain and range maps
func (o *Matrix) Multiply(transA bool, b *Matrix, transB bool, completeResult bool) (c *Matrix, err error) {
	if !o.completed || !b.completed {
		return nil, chk.Err("Multiply: %v", ErrNotCompleted)
	}

	// rows and inner dimension of op(A), layout by global ids
	rowMapA, innerA := o.rowMap, o.domainMap
	if transA {
		rowMapA, innerA = o.domainMap, o.rangeMap
	}
	innerB, colMapB := b.rangeMap, b.domainMap
	if transB {
		innerB, colMapB = b.domainMap, b.rangeMap
	}
	if !innerA.SameAs(innerB) {
		return nil, chk.Err("Multiply: inner dimensions: %v", dmap.ErrDomainMismatch)
	}

	// gather op(B) rows indexed by global id
	brows := make(map[int]map[int]float64)
	b.csr.DoNonZero(func(i, j int, v float64) {
		rg, _ := b.rowMap.Gid(i)
		cg, _ := b.colMap.Gid(j)
		if transB {
			rg, cg = cg, rg
		}
		if brows[rg] == nil {
			brows[rg] = make(map[int]float64)
		}
		brows[rg][cg] += v
	})

	c = NewMatrix(rowMapA, o.nnzPerRowHint, o.explicitDbc, false)
	var failed error
	o.csr.DoNonZero(func(i, k int, av float64) {
		rg, _ := o.rowMap.Gid(i)
		kg, _ := o.colMap.Gid(k)
		if transA {
			rg, kg = kg, rg
		}
		if br, ok := brows[kg]; ok {
			for cg, bv := range br {
				if err := c.AssembleValue(av*bv, rg, cg); err != nil {
					failed = err
				}
			}
		}
	})
	if failed != nil {
		return nil, failed
	}
	if completeResult {
		err = c.Complete(colMapB, rowMapA)
	}
	return
}

// EachNonZero visits all stored entries by global ids (completed state)
func (o *Matrix) EachNonZero(f func(rgid, cgid int, v float64)) (err error) {
	if !o.completed {
		return chk.Err("EachNonZero: %v", ErrNotCompleted)
	}
	o.csr.DoNonZero(func(i, j int, v float64) {
		rg, _ := o.rowMap.Gid(i)
		cg, _ := o.colMap.Gid(j)
		f(rg, cg, v)
	})
	return
}

// ToTriplet converts the completed matrix into a triplet with local row
// indices and domain-map local column indices, for the direct solvers
func (o *Matrix) ToTriplet() (t *la.Triplet, err error) {
	if !o.completed {
		return nil, chk.Err("ToTriplet: %v", ErrNotCompleted)
	}
	nnz := 0
	o.csr.DoNonZero(func(i, j int, v float64) { nnz++ })
	t = new(la.Triplet)
	t.Init(o.rowMap.NumMyElements(), o.domainMap.NumMyElements(), nnz)
	o.csr.DoNonZero(func(i, j int, v float64) {
		g, _ := o.colMap.Gid(j)
		t.Put(i, o.domainMap.Lid(g), v)
	})
	return
}

// Clone returns a deep copy in the same state
func (o *Matrix) Clone() (c *Matrix) {
	c = NewMatrix(o.rowMap, o.nnzPerRowHint, o.explicitDbc, o.saveGraph)
	if o.completed {
		o.csr.DoNonZero(func(i, j int, v float64) {
			g, _ := o.colMap.Gid(j)
			c.row(i)[g] = v
		})
		c.Complete(o.domainMap, o.rangeMap)
		return
	}
	for l, r := range o.rows {
		for cg, v := range r {
			c.row(l)[cg] = v
		}
	}
	c.deferred = append(c.deferred, o.deferred...)
	return
}
