// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

// VType distinguishes the origin of a clip polygon vertex
type VType int

const (
	// ProjSlave marks a vertex that is a projected slave node
	ProjSlave VType = iota

	// MasterV marks a vertex that is a projected master node
	MasterV

	// LineClip marks a vertex created by a slave-edge/master-edge
	// intersection. Its Nodeids carry the four source node ids
	// [slave0, slave1, master0, master1] and Alpha the line parameter
	LineClip
)

// Vertex is one corner of a clip polygon on the auxiliary plane.
// Next/Prev close the polygon into a doubly linked ring during clipping
type Vertex struct {
	X       [3]float64 // coordinates on the auxiliary plane
	Type    VType      // origin
	Nodeids []int      // underlying node ids (1 for slave/master, 4 for lineclip)
	Next    *Vertex    // ring successor
	Prev    *Vertex    // ring predecessor
	Alpha   float64    // line parameter for lineclip vertices, -1 otherwise
}

// NewVertex returns a polygon vertex
func NewVertex(x [3]float64, vtype VType, nodeids []int, alpha float64) *Vertex {
	return &Vertex{X: x, Type: vtype, Nodeids: nodeids, Alpha: alpha}
}

// CloseRing connects the vertices of a polygon into a ring
func CloseRing(verts []*Vertex) {
	n := len(verts)
	for i := 0; i < n; i++ {
		verts[i].Next = verts[(i+1)%n]
		verts[i].Prev = verts[(i-1+n)%n]
	}
}
