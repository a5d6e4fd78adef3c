// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package pvec implements the sparse ordered derivative container used
// throughout the mortar kernel. Each Vec maps a global dof id to the
// derivative contribution of some scalar quantity with respect to that dof.
// Iteration preserves insertion order so that repeated evaluations and
// finite-difference comparisons are reproducible.
package pvec

// Vec is a sparse but ordered map from global dof id to float64
type Vec struct {
	keys []int
	vals []float64
	pos  map[int]int // key => index in keys/vals
}

// New returns a new Vec. caphint is a worst-case estimate of the number of
// contributing dofs; it pre-sizes the internal storage so that repeated
// insertions during an evaluate cycle do not reallocate
func New(caphint int) (o *Vec) {
	if caphint < 0 {
		caphint = 0
	}
	o = new(Vec)
	o.keys = make([]int, 0, caphint)
	o.vals = make([]float64, 0, caphint)
	o.pos = make(map[int]int, caphint)
	return
}

// Len returns the number of stored entries
func (o *Vec) Len() int { return len(o.keys) }

// Add accumulates v into the entry of key, creating it if absent
func (o *Vec) Add(key int, v float64) {
	if i, ok := o.pos[key]; ok {
		o.vals[i] += v
		return
	}
	o.pos[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Set overwrites the entry of key, creating it if absent
func (o *Vec) Set(key int, v float64) {
	if i, ok := o.pos[key]; ok {
		o.vals[i] = v
		return
	}
	o.pos[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Get returns the value stored for key, or zero
func (o *Vec) Get(key int) float64 {
	if i, ok := o.pos[key]; ok {
		return o.vals[i]
	}
	return 0
}

// Has tells whether key is present
func (o *Vec) Has(key int) bool {
	_, ok := o.pos[key]
	return ok
}

// Each calls f for every entry in insertion order. Calling Each on a nil
// Vec is a no-op so that optional derivative slots need no guards
func (o *Vec) Each(f func(key int, v float64)) {
	if o == nil {
		return
	}
	for i, k := range o.keys {
		f(k, o.vals[i])
	}
}

// Keys returns the stored keys in insertion order. The slice aliases the
// internal storage and must not be modified
func (o *Vec) Keys() []int { return o.keys }

// Values returns the stored values, aligned with Keys
func (o *Vec) Values() []float64 { return o.vals }

// Clear removes all entries but keeps the allocated capacity
func (o *Vec) Clear() {
	o.keys = o.keys[:0]
	o.vals = o.vals[:0]
	for k := range o.pos {
		delete(o.pos, k)
	}
}

// Scale multiplies every entry by s
func (o *Vec) Scale(s float64) {
	for i := range o.vals {
		o.vals[i] *= s
	}
}

// AddScaled accumulates s*b into this Vec. A nil b is a no-op
func (o *Vec) AddScaled(b *Vec, s float64) {
	if b == nil {
		return
	}
	for i, k := range b.keys {
		o.Add(k, s*b.vals[i])
	}
}

// Copy returns a deep copy preserving insertion order
func (o *Vec) Copy() (c *Vec) {
	c = New(len(o.keys))
	for i, k := range o.keys {
		c.pos[k] = i
		c.keys = append(c.keys, k)
		c.vals = append(c.vals, o.vals[i])
	}
	return
}

// Vec3 bundles one Vec per spatial component; the standard shape for the
// linearization of a point in 3D
type Vec3 [3]*Vec

// New3 returns a Vec3 with all components pre-sized to caphint
func New3(caphint int) (o Vec3) {
	for i := 0; i < 3; i++ {
		o[i] = New(caphint)
	}
	return
}

// Clear3 clears all three components
func (o Vec3) Clear3() {
	for i := 0; i < 3; i++ {
		o[i].Clear()
	}
}

// Copy3 returns a deep copy
func (o Vec3) Copy3() (c Vec3) {
	for i := 0; i < 3; i++ {
		c[i] = o[i].Copy()
	}
	return
}
