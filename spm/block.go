// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/dmap"
)

// Access selects whether an assigned block aliases the given matrix or
// clones it
type Access int

const (
	View Access = iota
	Copy
)

// BlockMatrix is a two-level sparse matrix indexed by a row extractor and a
// column extractor. Block (i,j) is a Matrix whose row map is the i-th row
// sub-map and whose domain map, after completion, is the j-th column
// sub-map. Each block must be completed before matrix-vector products or
// merging
type BlockMatrix struct {
	rext      *dmap.Extractor
	cext      *dmap.Extractor
	blocks    [][]*Matrix
	completed bool
}

// NewBlockMatrix returns an empty block matrix over the two extractors
func NewBlockMatrix(rext, cext *dmap.Extractor) (o *BlockMatrix) {
	o = &BlockMatrix{rext: rext, cext: cext}
	o.blocks = make([][]*Matrix, rext.NumMaps())
	for i := range o.blocks {
		o.blocks[i] = make([]*Matrix, cext.NumMaps())
	}
	return
}

// NumRowBlocks returns the number of block rows
func (o *BlockMatrix) NumRowBlocks() int { return o.rext.NumMaps() }

// NumColBlocks returns the number of block columns
func (o *BlockMatrix) NumColBlocks() int { return o.cext.NumMaps() }

// RowExtractor returns the row extractor
func (o *BlockMatrix) RowExtractor() *dmap.Extractor { return o.rext }

// ColExtractor returns the column extractor
func (o *BlockMatrix) ColExtractor() *dmap.Extractor { return o.cext }

// FullRowMap returns the merged row map
func (o *BlockMatrix) FullRowMap() *dmap.Map { return o.rext.FullMap() }

// Assign installs m as block (i,j), aliasing with View or cloning with Copy.
// The row map of m must equal the i-th row sub-map
func (o *BlockMatrix) Assign(i, j int, access Access, m *Matrix) (err error) {
	if i < 0 || i >= o.NumRowBlocks() || j < 0 || j >= o.NumColBlocks() {
		return chk.Err("Assign: block (%d,%d): %v", i, j, dmap.ErrOutOfRange)
	}
	if !m.RowMap().SameAs(o.rext.SubMap(i)) {
		return chk.Err("Assign: block (%d,%d) row map: %v", i, j, dmap.ErrDomainMismatch)
	}
	if access == Copy {
		m = m.Clone()
	}
	o.blocks[i][j] = m
	o.completed = false
	return
}

// Block returns block (i,j); nil when never assigned
func (o *BlockMatrix) Block(i, j int) *Matrix { return o.blocks[i][j] }

// Filled tells whether Complete has been called on all blocks
func (o *BlockMatrix) Filled() bool { return o.completed }

// Complete completes every assigned block with domain map = j-th column
// sub-map and range map = i-th row sub-map. Empty (nil) blocks stay empty
func (o *BlockMatrix) Complete() (err error) {
	for i := range o.blocks {
		for j, b := range o.blocks[i] {
			if b == nil {
				continue
			}
			if err = b.Complete(o.cext.SubMap(j), o.rext.SubMap(i)); err != nil {
				return chk.Err("Complete: block (%d,%d):\n%v", i, j, err)
			}
		}
	}
	o.completed = true
	return
}

// UnComplete reopens all blocks for assembly
func (o *BlockMatrix) UnComplete() {
	for i := range o.blocks {
		for _, b := range o.blocks[i] {
			if b != nil {
				b.UnComplete()
			}
		}
	}
	o.completed = false
}

// Zero erases the values of all blocks keeping their structure
func (o *BlockMatrix) Zero() {
	for i := range o.blocks {
		for _, b := range o.blocks[i] {
			if b != nil {
				b.Zero()
			}
		}
	}
}

// Apply performs the block matrix-vector product y := A*x with x over the
// merged column map and y over the merged row map
func (o *BlockMatrix) Apply(x, y *dmap.Vector) (err error) {
	if !o.completed {
		return chk.Err("Apply: %v", ErrNotCompleted)
	}
	if !x.M.SameAs(o.cext.FullMap()) || !y.M.SameAs(o.rext.FullMap()) {
		return chk.Err("Apply: %v", dmap.ErrDomainMismatch)
	}
	y.PutScalar(0)
	for i := range o.blocks {
		ysub := dmap.NewVector(o.rext.SubMap(i))
		acc := dmap.NewVector(o.rext.SubMap(i))
		for j, b := range o.blocks[i] {
			if b == nil {
				continue
			}
			xsub, e := o.cext.ExtractVector(x, j)
			if e != nil {
				return e
			}
			if err = b.MatVec(ysub.V, xsub.V); err != nil {
				return chk.Err("Apply: block (%d,%d):\n%v", i, j, err)
			}
			acc.Update(1, ysub, 1)
		}
		if err = o.rext.InsertVector(acc, i, y); err != nil {
			return
		}
	}
	return
}

// ApplyDirichlet forwards the Dirichlet rows to every block of the affected
// block rows: unit diagonal on diagonal blocks, zero rows on off-diagonal
// blocks
func (o *BlockMatrix) ApplyDirichlet(dbc *dmap.Map) (err error) {
	if !o.completed {
		return chk.Err("ApplyDirichlet: %v", ErrNotCompleted)
	}
	for i := range o.blocks {
		// restrict dbc to this block row
		var gids []int
		for _, g := range dbc.Gids() {
			if o.rext.SubMap(i).Has(g) {
				gids = append(gids, g)
			}
		}
		if len(gids) == 0 {
			continue
		}
		sub := dmap.NewMap(gids, 0, true)
		for j, b := range o.blocks[i] {
			if b == nil {
				continue
			}
			if err = b.ApplyDirichlet(sub, i == j); err != nil {
				return chk.Err("ApplyDirichlet: block (%d,%d):\n%v", i, j, err)
			}
		}
	}
	return
}

// Merge flattens all blocks into one completed Matrix over the merged maps
func (o *BlockMatrix) Merge() (m *Matrix, err error) {
	if !o.completed {
		return nil, chk.Err("Merge: %v", ErrNotCompleted)
	}
	m = NewMatrix(o.rext.FullMap(), 0, false, false)
	for i := range o.blocks {
		for _, b := range o.blocks[i] {
			if b == nil {
				continue
			}
			e := b.EachNonZero(func(rgid, cgid int, v float64) {
				m.AssembleValue(v, rgid, cgid)
			})
			if e != nil {
				return nil, e
			}
		}
	}
	err = m.Complete(o.cext.FullMap(), o.rext.FullMap())
	return
}
