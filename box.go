/*
 * box.go, part of goewald.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package ewald

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Box holds the three lattice vectors of a periodic cell, one per row.
//It is immutable for the duration of one force evaluation.
type Box [3][3]float64

//NewBox builds a box from either three edge lengths (a rectangular box)
//or a length-9, row-major lattice-vector slice, as read from most
//trajectory formats.
func NewBox(v []float64) (Box, error) {
	var b Box
	switch {
	case len(v) >= 9:
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				b[i][j] = v[3*i+j]
			}
		}
	case len(v) == 3:
		b[0][0], b[1][1], b[2][2] = v[0], v[1], v[2]
	default:
		return b, &CError{"goewald: a box needs 3 or 9 elements", []string{"NewBox"}}
	}
	for i := 0; i < 3; i++ {
		if b[i][i] <= 0 {
			return b, &CError{fmt.Sprintf("%s: edge %d is %v", ErrBoxNotPositive, i, b[i][i]), []string{"NewBox"}}
		}
	}
	return b, nil
}

//Cubic returns a cubic box with side l.
func Cubic(l float64) Box {
	return Box{{l, 0, 0}, {0, l, 0}, {0, 0, l}}
}

//Diagonal reports whether the box is rectangular, i.e. whether all
//off-diagonal lattice-vector components vanish. The plain-Ewald solver
//only supports rectangular boxes.
func (b Box) Diagonal() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j && b[i][j] != 0 {
				return false
			}
		}
	}
	return true
}

//Diag returns the box-vector lengths along the three axes.
func (b Box) Diag() [3]float64 {
	return [3]float64{b[0][0], b[1][1], b[2][2]}
}

//Volume returns the box volume (the determinant of the lattice matrix).
func (b Box) Volume() float64 {
	m := mat.NewDense(3, 3, []float64{
		b[0][0], b[0][1], b[0][2],
		b[1][0], b[1][1], b[1][2],
		b[2][0], b[2][1], b[2][2],
	})
	return mat.Det(m)
}

//check validates the box for plain-Ewald use: rectangular with positive
//edge lengths. A degenerate edge would otherwise surface much later, as a
//NaN energy with no error.
func (b Box) check(caller string) error {
	if !b.Diagonal() {
		return &CError{ErrBoxNotDiagonal, []string{caller}}
	}
	for i := 0; i < 3; i++ {
		if b[i][i] <= 0 {
			return &CError{fmt.Sprintf("%s: edge %d is %v", ErrBoxNotPositive, i, b[i][i]), []string{caller}}
		}
	}
	return nil
}

//MinImage applies the minimum-image convention to the difference vector d,
//in place, for a rectangular box.
func (b Box) MinImage(d *[3]float64) {
	for i := 0; i < 3; i++ {
		l := b[i][i]
		d[i] -= l * math.Round(d[i]/l)
	}
}

//Tensor is a 3x3 accumulator, used for virial contributions. The
//convention is the usual MD one, Xi_ab = -1/2 sum_i r_ia f_ib, so that a
//positive trace raises the (potential part of the) pressure when
//subtracted in P = 2(Ekin - tr Xi)/(3V).
type Tensor [3][3]float64

//Clear zeroes the tensor.
func (t *Tensor) Clear() {
	for i := range t {
		for j := range t[i] {
			t[i][j] = 0
		}
	}
}

//Add accumulates o into the receiver, element-wise.
func (t *Tensor) Add(o *Tensor) {
	for i := range t {
		for j := range t[i] {
			t[i][j] += o[i][j]
		}
	}
}

//AddPairContribution accumulates the virial of a single pair force:
//f acting on the particle at the positive end of the separation d.
func (t *Tensor) AddPairContribution(d, f [3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] -= 0.5 * d[i] * f[j]
		}
	}
}
