/*
 * table.go, part of goewald.
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
	"math"
	"math/cmplx"

	v3 "github.com/rmera/goewald/v3"
)

//Table holds the cached state of the reciprocal solver: the per-axis
//complex exponential tables and the combined per-particle phase factors.
//A Table is created once per simulation and reused across steps; it is
//only reallocated when the wavevector cutoff or the number of atoms
//changes, which is detected by comparing the cached shape below.
//A Table must not be shared between concurrent Evaluate calls.
type Table struct {
	kmax   int
	natoms int //shape fingerprint, together with kmax

	//eir[k*natoms+n][d] = exp(i*k*lll[d]*x[n][d]), built incrementally
	//from the k=1 unit rotation for every axis.
	eir     [][3]complex128
	tabXY   []complex128
	tabQXYZ []complex128
}

//NewTable allocates reciprocal tables for wavevectors with per-axis
//indexes up to kmax inclusive.
func NewTable(kmax int) (*Table, error) {
	if kmax < 1 {
		return nil, &CError{"goewald: kmax must be at least 1", []string{"NewTable"}}
	}
	return &Table{kmax: kmax}, nil
}

//ensure resizes the cached tables for natoms atoms. Cheap when the shape
//is unchanged, which is the common case across consecutive steps.
func (et *Table) ensure(natoms int) {
	if natoms == et.natoms && et.eir != nil {
		return
	}
	et.natoms = natoms
	et.eir = make([][3]complex128, (et.kmax+1)*natoms)
	et.tabXY = make([]complex128, natoms)
	et.tabQXYZ = make([]complex128, natoms)
}

//tabulateStructureFactors fills the per-axis exponential tables for the
//given coordinates. lll holds the reciprocal lattice spacings 2*pi/L per
//axis. Entry k is entry k-1 rotated by the unit phase, so only the k=1
//exponentials are actually evaluated.
func (et *Table) tabulateStructureFactors(x *v3.Matrix, natoms int, lll [3]float64) {
	for n := 0; n < natoms; n++ {
		for d := 0; d < 3; d++ {
			et.eir[n][d] = 1
		}
	}
	if et.kmax < 1 {
		return
	}
	for n := 0; n < natoms; n++ {
		for d := 0; d < 3; d++ {
			et.eir[natoms+n][d] = cmplx.Exp(complex(0, lll[d]*x.At(n, d)))
		}
	}
	for k := 2; k <= et.kmax; k++ {
		for n := 0; n < natoms; n++ {
			for d := 0; d < 3; d++ {
				et.eir[k*natoms+n][d] = et.eir[(k-1)*natoms+n][d] * et.eir[natoms+n][d]
			}
		}
	}
}

//phase returns exp(i*k*lll[d]*x[n][d]) for a possibly negative index k,
//using the conjugate symmetry of the tables.
func (et *Table) phase(k, n, d int) complex128 {
	if k >= 0 {
		return et.eir[k*et.natoms+n][d]
	}
	return cmplx.Conj(et.eir[-k*et.natoms+n][d])
}

//recipSpacings returns 2*pi/L per axis for a rectangular box.
func recipSpacings(box Box) [3]float64 {
	d := box.Diag()
	return [3]float64{2 * math.Pi / d[0], 2 * math.Pi / d[1], 2 * math.Pi / d[2]}
}
