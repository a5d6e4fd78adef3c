// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// shape function of qua4
//
//    3-----------2
//    |     s     |
//    |     |     |
//    |     +--r  |
//    |           |
//    |           |
//    0-----------1
//
func init() {
	register(&Shape{
		Type:   "qua4",
		Gndim:  2,
		Nverts: 4,
		NatCoords: [][]float64{
			{-1, 1, 1, -1},
			{-1, -1, 1, 1},
		},
		Func: func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
			S[0] = 0.25 * (1.0 - r[0]) * (1.0 - r[1])
			S[1] = 0.25 * (1.0 + r[0]) * (1.0 - r[1])
			S[2] = 0.25 * (1.0 + r[0]) * (1.0 + r[1])
			S[3] = 0.25 * (1.0 - r[0]) * (1.0 + r[1])
			if !derivs {
				return
			}
			dSdR[0][0], dSdR[0][1] = -0.25*(1.0-r[1]), -0.25*(1.0-r[0])
			dSdR[1][0], dSdR[1][1] = 0.25*(1.0-r[1]), -0.25*(1.0+r[0])
			dSdR[2][0], dSdR[2][1] = 0.25*(1.0+r[1]), 0.25*(1.0+r[0])
			dSdR[3][0], dSdR[3][1] = -0.25*(1.0+r[1]), 0.25*(1.0-r[0])
		},
	})
}
