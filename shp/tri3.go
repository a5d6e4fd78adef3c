// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// shape function of tri3
//
//    s
//    |
//    2
//    | \
//    |  \
//    |   \
//    0----1-->r
//
func init() {
	register(&Shape{
		Type:   "tri3",
		Gndim:  2,
		Nverts: 3,
		NatCoords: [][]float64{
			{0, 1, 0},
			{0, 0, 1},
		},
		Func: func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
			S[0] = 1.0 - r[0] - r[1]
			S[1] = r[0]
			S[2] = r[1]
			if !derivs {
				return
			}
			dSdR[0][0], dSdR[0][1] = -1.0, -1.0
			dSdR[1][0], dSdR[1][1] = 1.0, 0.0
			dSdR[2][0], dSdR[2][1] = 0.0, 1.0
		},
	})
}
