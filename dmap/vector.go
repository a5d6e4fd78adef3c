// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmap

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Vector is a dense array of values over a Map. The local length always
// equals the map's local element count
type Vector struct {
	M *Map
	V []float64
}

// NewVector returns a zeroed vector over m
func NewVector(m *Map) *Vector {
	return &Vector{M: m, V: make([]float64, m.NumMyElements())}
}

// NewVectorFromSlice wraps v (no copy) over m
func NewVectorFromSlice(m *Map, v []float64) (o *Vector, err error) {
	if len(v) != m.NumMyElements() {
		return nil, chk.Err("NewVectorFromSlice: len(v)=%d != map length %d: %v", len(v), m.NumMyElements(), ErrDomainMismatch)
	}
	return &Vector{M: m, V: v}, nil
}

// PutScalar sets all entries to s
func (o *Vector) PutScalar(s float64) { la.VecFill(o.V, s) }

// Update computes this := a*X + b*this
func (o *Vector) Update(a float64, x *Vector, b float64) (err error) {
	if !o.M.SameAs(x.M) {
		return chk.Err("Update: %v", ErrDomainMismatch)
	}
	for i := range o.V {
		o.V[i] = a*x.V[i] + b*o.V[i]
	}
	return
}

// Scale multiplies all entries by s
func (o *Vector) Scale(s float64) {
	for i := range o.V {
		o.V[i] *= s
	}
}

// Norm2 returns the Euclidean norm
func (o *Vector) Norm2() float64 { return la.VecNorm(o.V) }

// MaxValue returns the largest entry
func (o *Vector) MaxValue() float64 {
	mx := math.Inf(-1)
	for _, v := range o.V {
		if v > mx {
			mx = v
		}
	}
	return mx
}

// NormInf returns the largest absolute entry
func (o *Vector) NormInf() float64 {
	mx := 0.0
	for _, v := range o.V {
		if math.Abs(v) > mx {
			mx = math.Abs(v)
		}
	}
	return mx
}

// Reciprocal sets every entry to its inverse
func (o *Vector) Reciprocal() (err error) {
	for i, v := range o.V {
		if v == 0 {
			return chk.Err("Reciprocal: zero entry at local index %d", i)
		}
		o.V[i] = 1.0 / v
	}
	return
}

// Multiply performs the Hadamard product this := x .* y
func (o *Vector) Multiply(x, y *Vector) (err error) {
	if !o.M.SameAs(x.M) || !o.M.SameAs(y.M) {
		return chk.Err("Multiply: %v", ErrDomainMismatch)
	}
	for i := range o.V {
		o.V[i] = x.V[i] * y.V[i]
	}
	return
}

// ReplaceGlobalValue sets the entry of gid to v
func (o *Vector) ReplaceGlobalValue(gid int, v float64) (err error) {
	l := o.M.Lid(gid)
	if l < 0 {
		return chk.Err("ReplaceGlobalValue: gid %d: %v", gid, ErrOutOfRange)
	}
	o.V[l] = v
	return
}

// SumIntoGlobalValues accumulates vals into the entries of gids
func (o *Vector) SumIntoGlobalValues(gids []int, vals []float64) (err error) {
	if len(gids) != len(vals) {
		return chk.Err("SumIntoGlobalValues: %d gids but %d values", len(gids), len(vals))
	}
	for i, g := range gids {
		l := o.M.Lid(g)
		if l < 0 {
			return chk.Err("SumIntoGlobalValues: gid %d: %v", g, ErrOutOfRange)
		}
		o.V[l] += vals[i]
	}
	return
}

// Copy returns a deep copy over the same map
func (o *Vector) Copy() *Vector {
	c := NewVector(o.M)
	copy(c.V, o.V)
	return c
}
