/*
 * recip.go, part of goewald.
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

	v3 "github.com/rmera/goewald/v3"
)

//Solver evaluates the reciprocal-space part of the long-ranged Coulomb
//interaction by a direct sum over wavevectors (plain Ewald). It owns the
//cached exponential tables. A Solver must only be driven by one thread at
//a time; the k-space sum is a global operation over all atoms, so in a
//domain-decomposed run the call doubles as a synchronization point.
type Solver struct {
	beta float64
	tab  *Table
}

//NewSolver builds a plain-Ewald reciprocal solver from the run settings.
func NewSolver(set *Settings) (*Solver, error) {
	if set.BetaQ <= 0 {
		return nil, &CError{fmt.Sprintf("%s: got %v", ErrBadBeta, set.BetaQ), []string{"NewSolver"}}
	}
	tab, err := NewTable(set.Kmax)
	if err != nil {
		return nil, errDecorate(err, "NewSolver")
	}
	return &Solver{beta: set.BetaQ, tab: tab}, nil
}

//Evaluate computes the reciprocal-space Coulomb energy for the first
//natoms atoms of x, accumulating per-particle forces into f, the virial
//into vir and, when chargeB is given, the free-energy derivative into
//dvdl with the two charge states mixed linearly by lambda. The returned
//energy is the lambda-weighted total.
//
//The k=(0,0,0) term is always skipped; it corresponds to the uniform
//background handled by Corrector.ChargeCorrection. Only rectangular boxes
//are supported.
func (sv *Solver) Evaluate(x, f *v3.Matrix, chargeA, chargeB []float64, box Box, lambda float64, natoms int, vir *Tensor, dvdl *float64) (float64, error) {
	if x == nil || f == nil {
		return 0, &CError{ErrNilCoordinates, []string{"Solver.Evaluate"}}
	}
	if sv.tab == nil {
		return 0, &CError{ErrTableUnset, []string{"Solver.Evaluate"}}
	}
	if chargeA == nil {
		return 0, &CError{ErrNoCharges, []string{"Solver.Evaluate"}}
	}
	if natoms > x.NVecs() || natoms > f.NVecs() || natoms > len(chargeA) ||
		(chargeB != nil && natoms > len(chargeB)) {
		return 0, &CError{fmt.Sprintf("%s: natoms %d", ErrShortSlice, natoms), []string{"Solver.Evaluate"}}
	}
	if err := box.check("Solver.Evaluate"); err != nil {
		return 0, err
	}

	et := sv.tab
	et.ensure(natoms)
	lll := recipSpacings(box)
	et.tabulateStructureFactors(x, natoms, lll)

	vol := box.Volume()
	factor := -1.0 / (4 * sv.beta * sv.beta)
	scaleRecip := 4.0 * math.Pi / vol * One4PiEps0

	nStates := 1
	if chargeB != nil {
		nStates = 2
	}
	var energyAB [2]float64 //per-state energies, before scaleRecip
	var virKK Tensor        //scale-weighted k(x)k accumulator, before scaleRecip
	ekScaled := 0.0

	for q := 0; q < nStates; q++ {
		charge := chargeA
		scale := 1.0
		if nStates == 2 {
			if q == 0 {
				scale = 1.0 - lambda
			} else {
				charge = chargeB
				scale = lambda
			}
		}
		lowiy, lowiz := 0, 1
		for ix := 0; ix <= et.kmax; ix++ {
			mx := float64(ix) * lll[0]
			for iy := lowiy; iy <= et.kmax; iy++ {
				my := float64(iy) * lll[1]
				for n := 0; n < natoms; n++ {
					et.tabXY[n] = et.phase(ix, n, 0) * et.phase(iy, n, 1)
				}
				for iz := lowiz; iz <= et.kmax; iz++ {
					mz := float64(iz) * lll[2]
					m2 := mx*mx + my*my + mz*mz
					ak := math.Exp(m2*factor) / m2
					akv := 2.0 * ak * (1.0/m2 - factor)
					var cs, ss float64
					for n := 0; n < natoms; n++ {
						et.tabQXYZ[n] = complex(charge[n], 0) * et.tabXY[n] * et.phase(iz, n, 2)
						cs += real(et.tabQXYZ[n])
						ss += imag(et.tabQXYZ[n])
					}
					c2 := cs*cs + ss*ss
					energyAB[q] += ak * c2
					ekScaled += scale * ak * c2
					m := [3]float64{mx, my, mz}
					for a := 0; a < 3; a++ {
						for b := 0; b < 3; b++ {
							virKK[a][b] += scale * akv * c2 * m[a] * m[b]
						}
					}
					//each half-space mode stands for a +-k pair, so its
					//gradient carries twice the weight its energy does
					for n := 0; n < natoms; n++ {
						tmp := 2.0 * scale * scaleRecip * ak *
							(cs*imag(et.tabQXYZ[n]) - ss*real(et.tabQXYZ[n]))
						f.AddVec(n, [3]float64{tmp * mx, tmp * my, tmp * mz})
					}
				}
				lowiz = 1 - (et.kmax + 1)
			}
			lowiy = 1 - (et.kmax + 1)
		}
	}

	//the strain derivative of the k sum: the 1/V prefactor contributes
	//-delta_ab*E, each mode's k dependence contributes akv*m_a*m_b
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			diag := 0.0
			if a == b {
				diag = ekScaled
			}
			vir[a][b] += 0.5 * scaleRecip * (virKK[a][b] - diag)
		}
	}

	energy := scaleRecip * energyAB[0]
	if nStates == 2 {
		energy = scaleRecip * ((1.0-lambda)*energyAB[0] + lambda*energyAB[1])
		if dvdl != nil {
			*dvdl += scaleRecip * (energyAB[1] - energyAB[0])
		}
	}
	return energy, nil
}
