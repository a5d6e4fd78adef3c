// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mortar

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// cellQuadrature returns the Gauss rule of an integration cell. Triangle
// weights sum to the reference area 1/2, line weights to 2
func cellQuadrature(kind string, ngp int) (coords [][]float64, weights []float64) {
	switch kind {
	case "tri3":
		switch ngp {
		case 1:
			return [][]float64{{1.0 / 3.0, 1.0 / 3.0}}, []float64{0.5}
		case 3:
			return [][]float64{
					{1.0 / 6.0, 1.0 / 6.0},
					{2.0 / 3.0, 1.0 / 6.0},
					{1.0 / 6.0, 2.0 / 3.0},
				}, []float64{1.0 / 6.0, 1.0 / 6.0, 1.0 / 6.0}
		case 6:
			a, wa := 0.445948490915965, 0.111690794839005
			b, wb := 0.091576213509771, 0.054975871827661
			return [][]float64{
				{a, a}, {1 - 2*a, a}, {a, 1 - 2*a},
				{b, b}, {1 - 2*b, b}, {b, 1 - 2*b},
			}, []float64{wa, wa, wa, wb, wb, wb}
		case 7:
			a, wa := 0.470142064105115, 0.066197076394253
			b, wb := 0.101286507323456, 0.062969590272414
			return [][]float64{
				{1.0 / 3.0, 1.0 / 3.0},
				{a, a}, {1 - 2*a, a}, {a, 1 - 2*a},
				{b, b}, {1 - 2*b, b}, {b, 1 - 2*b},
			}, []float64{0.1125, wa, wa, wa, wb, wb, wb}
		}
	case "line2":
		switch ngp {
		case 1:
			return [][]float64{{0}}, []float64{2}
		case 2:
			g := 1.0 / math.Sqrt(3.0)
			return [][]float64{{-g}, {g}}, []float64{1, 1}
		case 3:
			g := math.Sqrt(3.0 / 5.0)
			return [][]float64{{-g}, {0}, {g}}, []float64{5.0 / 9.0, 8.0 / 9.0, 5.0 / 9.0}
		case 5:
			g1 := math.Sqrt(5.0-2.0*math.Sqrt(10.0/7.0)) / 3.0
			g2 := math.Sqrt(5.0+2.0*math.Sqrt(10.0/7.0)) / 3.0
			w1 := (322.0 + 13.0*math.Sqrt(70.0)) / 900.0
			w2 := (322.0 - 13.0*math.Sqrt(70.0)) / 900.0
			return [][]float64{{-g2}, {-g1}, {0}, {g1}, {g2}},
				[]float64{w2, w1, 128.0 / 225.0, w1, w2}
		}
	}
	chk.Panic("no %d-point quadrature for %q cells", ngp, kind)
	return
}

// defaultNumGP maps a configured Gauss point count onto the closest
// supported rule for the cell kind; zero selects the default rule
func defaultNumGP(kind string, ngp int) int {
	if ngp == 0 {
		if kind == "tri3" {
			return 7
		}
		return 3
	}
	if kind == "tri3" {
		switch {
		case ngp <= 1:
			return 1
		case ngp <= 3:
			return 3
		case ngp <= 6:
			return 6
		}
		return 7
	}
	switch {
	case ngp <= 1:
		return 1
	case ngp <= 2:
		return 2
	case ngp <= 3:
		return 3
	}
	return 5
}
