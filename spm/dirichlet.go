// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/dmap"
)

// ApplyDirichlet overwrites the rows listed in dbc. With diagonalblock the
// row becomes the identity row (unit diagonal); otherwise the row is zeroed
// entirely, which is the form used for off-diagonal blocks. The matrix must
// be completed. Applying the same map twice is idempotent.
//
// With the explicit strategy the matrix is rebuilt without the Dirichlet
// rows so that their off-diagonal structure disappears; otherwise the
// stored entries are zeroed in place and the structure is kept
func (o *Matrix) ApplyDirichlet(dbc *dmap.Map, diagonalblock bool) (err error) {
	if !o.completed {
		return chk.Err("ApplyDirichlet: %v", ErrNotCompleted)
	}

	if o.explicitDbc {
		// rebuild: copy all non-Dirichlet rows, then place unit diagonals
		nw := NewMatrix(o.rowMap, o.nnzPerRowHint, o.explicitDbc, o.saveGraph)
		o.csr.DoNonZero(func(i, j int, v float64) {
			rg, _ := o.rowMap.Gid(i)
			if dbc.Has(rg) {
				return
			}
			cg, _ := o.colMap.Gid(j)
			nw.row(i)[cg] = v
		})
		for _, rg := range dbc.Gids() {
			l := o.rowMap.Lid(rg)
			if l < 0 {
				return chk.Err("ApplyDirichlet: dbc gid %d: %v", rg, dmap.ErrOutOfRange)
			}
			if diagonalblock {
				nw.row(l)[rg] = 1.0
			}
		}
		err = nw.Complete(o.domainMap, o.rangeMap)
		if err != nil {
			return
		}
		o.csr = nw.csr
		o.colMap = nw.colMap
		o.graph = nil
		return
	}

	// in-place: zero the stored row, set unit diagonal when present
	for _, rg := range dbc.Gids() {
		if o.rowMap.Lid(rg) < 0 {
			return chk.Err("ApplyDirichlet: dbc gid %d: %v", rg, dmap.ErrOutOfRange)
		}
	}
	o.csr.DoNonZero(func(i, j int, v float64) {
		rg, _ := o.rowMap.Gid(i)
		if !dbc.Has(rg) {
			return
		}
		cg, _ := o.colMap.Gid(j)
		if diagonalblock && cg == rg {
			o.csr.Set(i, j, 1.0)
		} else {
			o.csr.Set(i, j, 0.0)
		}
	})
	return
}

// ExtractDirichletRows returns a new completed matrix holding only the
// rows listed in dbc, for later recovery of reaction forces
func (o *Matrix) ExtractDirichletRows(dbc *dmap.Map) (d *Matrix, err error) {
	if !o.completed {
		return nil, chk.Err("ExtractDirichletRows: %v", ErrNotCompleted)
	}
	d = NewMatrix(dbc, o.nnzPerRowHint, o.explicitDbc, false)
	o.csr.DoNonZero(func(i, j int, v float64) {
		rg, _ := o.rowMap.Gid(i)
		if !dbc.Has(rg) {
			return
		}
		cg, _ := o.colMap.Gid(j)
		d.row(dbc.Lid(rg))[cg] = v
	})
	err = d.Complete(o.domainMap, dbc)
	return
}

// ApplyDirichletToRhs sets rhs entries of the Dirichlet rows to the
// prescribed values
func ApplyDirichletToRhs(rhs *dmap.Vector, dbc *dmap.Map, vals []float64) (err error) {
	if vals != nil && len(vals) != dbc.NumMyElements() {
		return chk.Err("ApplyDirichletToRhs: %d values for %d dbc rows", len(vals), dbc.NumMyElements())
	}
	for l, g := range dbc.Gids() {
		v := 0.0
		if vals != nil {
			v = vals[l]
		}
		if err = rhs.ReplaceGlobalValue(g, v); err != nil {
			return
		}
	}
	return
}
