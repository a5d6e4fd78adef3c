// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// shape function of lin2
//
//   -1     0    +1
//    0-----------1-->r
//
func init() {
	register(&Shape{
		Type:   "lin2",
		Gndim:  1,
		Nverts: 2,
		NatCoords: [][]float64{
			{-1, 1},
		},
		Func: func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
			S[0] = 0.5 * (1.0 - r[0])
			S[1] = 0.5 * (1.0 + r[0])
			if !derivs {
				return
			}
			dSdR[0][0] = -0.5
			dSdR[1][0] = 0.5
		},
	})
}
