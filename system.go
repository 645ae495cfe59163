/*
 * system.go, part of goewald.
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

	v3 "github.com/rmera/goewald/v3"
)

//Exclusions lists, for every atom, the atoms excluded from its short-range
//nonbonded interactions, in compressed form: the partners of atom i are
//Atoms[Index[i]:Index[i+1]]. The layout is the usual topology block format,
//so exclusion lists read from force-field processors can be passed through
//directly.
type Exclusions struct {
	Index []int
	Atoms []int
}

//Pairs builds symmetric Exclusions for n atoms from a list of index pairs.
//Each pair is registered on both atoms, which the correction engine
//requires to keep its per-thread force accumulation race-free.
func Pairs(n int, pairs [][2]int) (Exclusions, error) {
	partners := make([][]int, n)
	for _, p := range pairs {
		if p[0] < 0 || p[0] >= n || p[1] < 0 || p[1] >= n {
			return Exclusions{}, &CError{fmt.Sprintf("%s: pair %v, natoms %d", ErrExclOutOfRange, p, n), []string{"Pairs"}}
		}
		partners[p[0]] = append(partners[p[0]], p[1])
		partners[p[1]] = append(partners[p[1]], p[0])
	}
	e := Exclusions{Index: make([]int, n+1)}
	for i, l := range partners {
		e.Index[i+1] = e.Index[i] + len(l)
		e.Atoms = append(e.Atoms, l...)
	}
	return e, nil
}

//System holds the read-only per-particle attributes of the simulated
//system: one or two charge sets (B is only used under free-energy
//coupling), the square-root dispersion coefficients for the geometric C6
//combination rule, and the exclusion list. Coordinates are not part of a
//System; they change every step and are passed per call.
type System struct {
	n        int
	chargeA  []float64
	chargeB  []float64
	sqrtC6A  []float64
	sqrtC6B  []float64
	excl     Exclusions
	qsumA    float64
	qsumB    float64
	q2sumA   float64
	q2sumB   float64
	c6sumA   float64
	c6sumB   float64
	perturbQ bool
}

//NewSystem validates and assembles a System. chargeA is mandatory;
//chargeB may be nil for an unperturbed system, as may both dispersion
//slices when dispersion is treated with a plain cutoff. The exclusion
//list must reference valid atom indexes and must be symmetric (as built
//by Pairs); both are verified here, since an out-of-range index would
//panic later and an asymmetric list would silently halve the exclusion
//corrections.
func NewSystem(chargeA, chargeB, sqrtC6A, sqrtC6B []float64, excl Exclusions) (*System, error) {
	if chargeA == nil {
		return nil, &CError{ErrNoCharges, []string{"NewSystem"}}
	}
	n := len(chargeA)
	if chargeB != nil && len(chargeB) != n {
		return nil, &CError{fmt.Sprintf("goewald: chargeB has %d elements, chargeA %d", len(chargeB), n), []string{"NewSystem"}}
	}
	if sqrtC6A != nil && len(sqrtC6A) != n {
		return nil, &CError{fmt.Sprintf("goewald: sqrtC6A has %d elements, chargeA %d", len(sqrtC6A), n), []string{"NewSystem"}}
	}
	if sqrtC6B != nil && len(sqrtC6B) != n {
		return nil, &CError{fmt.Sprintf("goewald: sqrtC6B has %d elements, chargeA %d", len(sqrtC6B), n), []string{"NewSystem"}}
	}
	if excl.Index == nil {
		excl.Index = make([]int, n+1)
	}
	if len(excl.Index) != n+1 {
		return nil, &CError{fmt.Sprintf("goewald: exclusion index has %d entries, need natoms+1=%d", len(excl.Index), n+1), []string{"NewSystem"}}
	}
	if excl.Index[0] != 0 || excl.Index[n] != len(excl.Atoms) {
		return nil, &CError{fmt.Sprintf("goewald: exclusion index spans [%d,%d], atom list has %d entries", excl.Index[0], excl.Index[n], len(excl.Atoms)), []string{"NewSystem"}}
	}
	for i := 0; i < n; i++ {
		if excl.Index[i] > excl.Index[i+1] {
			return nil, &CError{fmt.Sprintf("goewald: exclusion index decreases at atom %d", i), []string{"NewSystem"}}
		}
	}
	for _, a := range excl.Atoms {
		if a < 0 || a >= n {
			return nil, &CError{fmt.Sprintf("%s: index %d, natoms %d", ErrExclOutOfRange, a, n), []string{"NewSystem"}}
		}
	}
	//the half-weight pair scheme in the corrections books every excluded
	//pair once from each side, so both sides must list it
	for i := 0; i < n; i++ {
		for _, j := range excl.Atoms[excl.Index[i]:excl.Index[i+1]] {
			found := false
			for _, k := range excl.Atoms[excl.Index[j]:excl.Index[j+1]] {
				if k == i {
					found = true
					break
				}
			}
			if !found {
				return nil, &CError{fmt.Sprintf("%s: atom %d excludes %d but not the reverse", ErrExclAsymmetric, i, j), []string{"NewSystem"}}
			}
		}
	}
	s := &System{n: n, chargeA: chargeA, chargeB: chargeB,
		sqrtC6A: sqrtC6A, sqrtC6B: sqrtC6B, excl: excl}
	for i := 0; i < n; i++ {
		s.qsumA += chargeA[i]
		s.q2sumA += chargeA[i] * chargeA[i]
		if sqrtC6A != nil {
			s.c6sumA += sqrtC6A[i] * sqrtC6A[i]
		}
	}
	if chargeB == nil {
		s.qsumB, s.q2sumB = s.qsumA, s.q2sumA
	} else {
		for i := 0; i < n; i++ {
			s.qsumB += chargeB[i]
			s.q2sumB += chargeB[i] * chargeB[i]
			if chargeB[i] != chargeA[i] {
				s.perturbQ = true
			}
		}
	}
	if sqrtC6B == nil {
		s.c6sumB = s.c6sumA
	} else {
		for i := 0; i < n; i++ {
			s.c6sumB += sqrtC6B[i] * sqrtC6B[i]
		}
	}
	return s, nil
}

//Len returns the number of atoms in the system.
func (s *System) Len() int { return s.n }

//PerturbedQ reports whether the two charge sets differ, i.e. whether
//free-energy coupling of the electrostatics is active.
func (s *System) PerturbedQ() bool { return s.perturbQ }

//charges returns the charge slice for state (0 for A, 1 for B). State B
//falls back to A when no B set was given.
func (s *System) charges(state int) []float64 {
	if state == 1 && s.chargeB != nil {
		return s.chargeB
	}
	return s.chargeA
}

//sqrtC6 is the dispersion analogue of charges.
func (s *System) sqrtC6(state int) []float64 {
	if state == 1 && s.sqrtC6B != nil {
		return s.sqrtC6B
	}
	return s.sqrtC6A
}

//NetCharge returns the total system charge for the given state.
func (s *System) NetCharge(state int) float64 {
	if state == 1 {
		return s.qsumB
	}
	return s.qsumA
}

//ChargeSq returns sum(q_i^2) for the given state, which sets the scale of
//the self-energy correction.
func (s *System) ChargeSq(state int) float64 {
	if state == 1 {
		return s.q2sumB
	}
	return s.q2sumA
}

//SumC6 returns the total self dispersion coefficient sum(c6_ii) for the
//given state, zero when the system carries no dispersion data.
func (s *System) SumC6(state int) float64 {
	if state == 1 {
		return s.c6sumB
	}
	return s.c6sumA
}

//Dipole returns the system dipole moment sum(q_i r_i) for the given state.
//It is origin-dependent, as is the surface term it feeds.
func (s *System) Dipole(x *v3.Matrix, state int) [3]float64 {
	var mu [3]float64
	q := s.charges(state)
	for i := 0; i < s.n; i++ {
		for d := 0; d < 3; d++ {
			mu[d] += q[i] * x.At(i, d)
		}
	}
	return mu
}
