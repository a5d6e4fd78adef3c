// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmap

import (
	"github.com/cpmech/gosl/chk"
)

// Extractor decomposes a full map into an ordered list of sub-maps with the
// inverse lookup. It moves values between full vectors and sub vectors.
// Invariant: the full map equals the concatenation of the sub-maps
type Extractor struct {
	full *Map
	subs []*Map
	g2s  map[int]int // gid => sub-map index
}

// NewExtractor builds an extractor from the ordered sub-maps. The sub-maps
// must be unique and pairwise disjoint
func NewExtractor(subs []*Map) (o *Extractor, err error) {
	o = new(Extractor)
	o.subs = subs
	o.g2s = make(map[int]int)
	var all []int
	for i, s := range subs {
		if !s.Unique() {
			return nil, chk.Err("NewExtractor: sub-map %d is not one-to-one", i)
		}
		for _, g := range s.Gids() {
			if _, ok := o.g2s[g]; ok {
				return nil, chk.Err("NewExtractor: gid %d appears in more than one sub-map: %v", g, ErrDomainMismatch)
			}
			o.g2s[g] = i
			all = append(all, g)
		}
	}
	o.full = NewMap(all, 0, true)
	return
}

// NumMaps returns the number of sub-maps
func (o *Extractor) NumMaps() int { return len(o.subs) }

// FullMap returns the merged map
func (o *Extractor) FullMap() *Map { return o.full }

// SubMap returns the i-th sub-map
func (o *Extractor) SubMap(i int) *Map { return o.subs[i] }

// WhichMap returns the sub-map index owning gid, or -1
func (o *Extractor) WhichMap(gid int) int {
	if i, ok := o.g2s[gid]; ok {
		return i
	}
	return -1
}

// ExtractVector copies the entries of the i-th sub-map out of full
func (o *Extractor) ExtractVector(full *Vector, i int) (sub *Vector, err error) {
	if !full.M.SameAs(o.full) {
		return nil, chk.Err("ExtractVector: %v", ErrDomainMismatch)
	}
	sub = NewVector(o.subs[i])
	for l, g := range o.subs[i].Gids() {
		sub.V[l] = full.V[o.full.Lid(g)]
	}
	return
}

// InsertVector overwrites the entries of the i-th sub-map inside full
func (o *Extractor) InsertVector(sub *Vector, i int, full *Vector) (err error) {
	if !full.M.SameAs(o.full) || !sub.M.SameAs(o.subs[i]) {
		return chk.Err("InsertVector: %v", ErrDomainMismatch)
	}
	for l, g := range o.subs[i].Gids() {
		full.V[o.full.Lid(g)] = sub.V[l]
	}
	return
}

// AddVector accumulates scale*sub into the entries of the i-th sub-map
func (o *Extractor) AddVector(sub *Vector, i int, full *Vector, scale float64) (err error) {
	if !full.M.SameAs(o.full) || !sub.M.SameAs(o.subs[i]) {
		return chk.Err("AddVector: %v", ErrDomainMismatch)
	}
	for l, g := range o.subs[i].Gids() {
		full.V[o.full.Lid(g)] += scale * sub.V[l]
	}
	return
}
