// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package shp implements shape structures/routines for interface elements
package shp

// ShpFunc is the shape functions callback function
type ShpFunc func(S []float64, dSdR [][]float64, r []float64, derivs bool)

// Shape holds geometry data of one interface element type
type Shape struct {

	// geometry
	Type      string      // name; e.g. "lin2"
	Func      ShpFunc     // shape/derivs function callback function
	Gndim     int         // geometry dimension; e.g. "lin2" => gnd == 1 (even in 3D simulations)
	Nverts    int         // number of vertices in cell
	NatCoords [][]float64 // natural coordinates [gndim][nverts]

	// scratchpad
	S    []float64   // [nverts] shape functions
	DSdR [][]float64 // [nverts][gndim] derivatives of S w.r.t natural coordinates
}

// GetCopy returns a new copy of this shape structure
func (o Shape) GetCopy() *Shape {
	p := Shape{
		Type:      o.Type,
		Func:      o.Func,
		Gndim:     o.Gndim,
		Nverts:    o.Nverts,
		NatCoords: o.NatCoords,
	}
	p.S = make([]float64, p.Nverts)
	p.DSdR = make([][]float64, p.Nverts)
	for i := range p.DSdR {
		p.DSdR[i] = make([]float64, p.Gndim)
	}
	return &p
}

// factory holds all Shapes available
var factory = make(map[string]*Shape)

// Get returns an existent Shape structure
//  Note: 1) returns nil on errors
//        2) use goroutineId > 0 to get a copy
func Get(geoType string, goroutineId int) *Shape {
	s, ok := factory[geoType]
	if !ok {
		return nil
	}
	if goroutineId > 0 {
		return s.GetCopy()
	}
	return s
}

// register adds a shape to the factory and allocates its scratchpad
func register(s *Shape) {
	s.S = make([]float64, s.Nverts)
	s.DSdR = make([][]float64, s.Nverts)
	for i := range s.DSdR {
		s.DSdR[i] = make([]float64, s.Gndim)
	}
	factory[s.Type] = s
}
