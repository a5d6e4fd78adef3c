// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
)

// Action selects what an element evaluator computes
type Action int

const (
	ActResidual Action = iota + 1 // local right-hand side only
	ActJacobian                   // local matrix only
	ActBoth                       // matrix and right-hand side
)

// Evaluator computes local contributions of one element. Loc returns the
// global dof ids of the local rows/columns; Eval fills the pre-sized local
// matrix and/or vector depending on the action
type Evaluator interface {
	Loc() []int
	Eval(action Action, ke [][]float64, fe []float64) error
}

// AssembleFn receives local contributions together with their location
// array and scatters them into global objects
type AssembleFn func(lm []int, ke [][]float64, fe []float64) error

// Assemble runs all evaluators for one action and hands the local results
// to the caller-supplied strategy. Local arrays are reused across elements
// of the same size
func Assemble(evs []Evaluator, action Action, strategy AssembleFn) (err error) {
	var ke [][]float64
	var fe []float64
	for _, e := range evs {
		lm := e.Loc()
		n := len(lm)
		if n == 0 {
			continue
		}
		if len(fe) < n {
			fe = make([]float64, n)
			ke = make([][]float64, n)
			for i := range ke {
				ke[i] = make([]float64, n)
			}
		}
		kuse, fuse := ke[:n], fe[:n]
		for i := 0; i < n; i++ {
			fuse[i] = 0
			for j := 0; j < n; j++ {
				kuse[i][j] = 0
			}
		}
		switch action {
		case ActResidual:
			err = e.Eval(action, nil, fuse)
		case ActJacobian:
			err = e.Eval(action, kuse, nil)
		case ActBoth:
			err = e.Eval(action, kuse, fuse)
		default:
			return chk.Err("unknown assembly action %d", action)
		}
		if err != nil {
			return
		}
		if err = strategy(lm, kuse, fuse); err != nil {
			return
		}
	}
	return
}
