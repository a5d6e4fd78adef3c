// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package dmap implements index maps, vectors over maps, map extractors and
// exporters. A map partitions a set of globally unique integer identifiers
// (gids) across workers; vectors and matrices refer to maps to define their
// layout. Maps are immutable after construction.
package dmap

import (
	"errors"

	"github.com/cpmech/gosl/chk"
)

// error kinds
var (
	ErrDomainMismatch = errors.New("operation across non-conforming maps")
	ErrOutOfRange     = errors.New("index out of range")
)

// Map holds an ordered set of global ids. Unique maps are row-distributed:
// each gid appears on exactly one worker. Non-unique maps may overlap
// (column / ghost layouts)
type Map struct {
	gids   []int
	g2l    map[int]int
	base   int
	unique bool
}

// NewMap returns a map over the given gids. The order of gids is preserved:
// local id i corresponds to gids[i]
func NewMap(gids []int, base int, unique bool) (o *Map) {
	o = new(Map)
	o.gids = make([]int, len(gids))
	copy(o.gids, gids)
	o.g2l = make(map[int]int, len(gids))
	for i, g := range gids {
		o.g2l[g] = i
	}
	o.base = base
	o.unique = unique
	return
}

// NewContiguousMap returns a unique map over [base, base+n)
func NewContiguousMap(n, base int) *Map {
	gids := make([]int, n)
	for i := 0; i < n; i++ {
		gids[i] = base + i
	}
	return NewMap(gids, base, true)
}

// NumGlobalElements returns the global number of ids in this map
func (o *Map) NumGlobalElements() int { return len(o.gids) }

// NumMyElements returns the number of ids held locally
func (o *Map) NumMyElements() int { return len(o.gids) }

// Base returns the base index (typically 0)
func (o *Map) Base() int { return o.base }

// Unique tells whether this map is one-to-one
func (o *Map) Unique() bool { return o.unique }

// Gid returns the global id of local index l
func (o *Map) Gid(l int) (gid int, err error) {
	if l < 0 || l >= len(o.gids) {
		return -1, chk.Err("Gid: local index %d: %v", l, ErrOutOfRange)
	}
	return o.gids[l], nil
}

// Lid returns the local index of gid, or -1 when gid is not in this map
func (o *Map) Lid(gid int) int {
	if l, ok := o.g2l[gid]; ok {
		return l
	}
	return -1
}

// Has tells whether gid belongs to this map
func (o *Map) Has(gid int) bool {
	_, ok := o.g2l[gid]
	return ok
}

// Gids returns the list of global ids. The slice aliases internal storage
// and must not be modified
func (o *Map) Gids() []int { return o.gids }

// SameAs compares two maps for identical gid lists and ordering
func (o *Map) SameAs(b *Map) bool {
	if b == nil || len(o.gids) != len(b.gids) || o.base != b.base {
		return false
	}
	for i, g := range o.gids {
		if b.gids[i] != g {
			return false
		}
	}
	return true
}

// Merge returns a new map holding this map's gids followed by the gids of b
// that are not already present. The result is unique only when both inputs
// are unique and disjoint
func (o *Map) Merge(b *Map) *Map {
	gids := make([]int, len(o.gids), len(o.gids)+len(b.gids))
	copy(gids, o.gids)
	unique := o.unique && b.unique
	for _, g := range b.gids {
		if _, ok := o.g2l[g]; ok {
			unique = false
			continue
		}
		gids = append(gids, g)
	}
	return NewMap(gids, o.base, unique)
}
