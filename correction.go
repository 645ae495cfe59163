/*
 * correction.go, part of goewald.
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

//Corrector computes the real-space corrections that the naive reciprocal
//sum requires: the excluded-pair and self-interaction corrections, the
//surface/dipole term, and the neutralizing-background (net charge)
//correction. It holds only read-only configuration and system views, so a
//single Corrector can serve all worker threads of a step.
type Corrector struct {
	sys     *System
	betaQ   float64
	betaLJ  float64
	epsSurf float64
	doQ     bool //Ewald electrostatics active
	doLJ    bool //Ewald dispersion active
}

//NewCorrector builds a correction engine for the given system and settings.
func NewCorrector(sys *System, set *Settings) (*Corrector, error) {
	if sys == nil {
		return nil, &CError{"goewald: nil system", []string{"NewCorrector"}}
	}
	doQ := set.Coulomb == CoulombEwald
	doLJ := set.Vdw == VdwEwald
	if doQ && set.BetaQ <= 0 {
		return nil, &CError{fmt.Sprintf("%s: got %v", ErrBadBeta, set.BetaQ), []string{"NewCorrector"}}
	}
	if doLJ && set.BetaLJ <= 0 {
		return nil, &CError{fmt.Sprintf("%s: got %v", ErrBadBeta, set.BetaLJ), []string{"NewCorrector"}}
	}
	return &Corrector{sys: sys, betaQ: set.BetaQ, betaLJ: set.BetaLJ,
		epsSurf: set.EpsilonSurface, doQ: doQ, doLJ: doLJ}, nil
}

//threadRange splits the atoms evenly among nthreads workers, returning the
//half-open range owned by thread t.
func (c *Corrector) threadRange(t, nthreads int) (int, int) {
	n := c.sys.Len()
	return t * n / nthreads, (t + 1) * n / nthreads
}

//LongRange computes the per-thread share of the real-space corrections,
//writing energies, dV/dlambda and virials into out, and accumulating force
//corrections into f. Thread t owns atoms [t*n/nthreads, (t+1)*n/nthreads);
//it only ever writes force rows in that range, so concurrent workers never
//race on f. Excluded pairs are therefore visited from both ends, with half
//the pair energy and virial counted from each side; the exclusion list
//must be symmetric (see Pairs).
//
//muTot holds the system dipole for the two charge states (equal when
//nothing is perturbed); it is only read when the surface term is active.
//The (global) dipole and net-charge-independent self energies are
//range-partitioned, so the reduction over threads reconstitutes them
//exactly once.
func (c *Corrector) LongRange(t, nthreads int, x *v3.Matrix, box Box, muTot [2][3]float64, lambda [CouplingCount]float64, f *v3.Matrix, out *ThreadOutput) error {
	if x == nil || f == nil {
		return &CError{ErrNilCoordinates, []string{"Corrector.LongRange"}}
	}
	n := c.sys.Len()
	if x.NVecs() < n || f.NVecs() < n {
		return &CError{fmt.Sprintf("%s: natoms %d", ErrShortSlice, n), []string{"Corrector.LongRange"}}
	}
	if err := box.check("Corrector.LongRange"); err != nil {
		return err
	}
	start, end := c.threadRange(t, nthreads)
	if c.doQ {
		c.exclAndSelfQ(start, end, x, box, lambda[CouplingCoul], f, out)
		if c.epsSurf != 0 {
			c.surfaceTerm(t, start, end, x, box, muTot, lambda[CouplingCoul], f, out)
		}
	}
	if c.doLJ {
		c.exclAndSelfLJ(start, end, x, box, lambda[CouplingVdw], f, out)
	}
	return nil
}

//exclAndSelfQ subtracts, for the atoms in [start,end), the long-ranged
//Coulomb interaction that the reciprocal sum wrongly includes for excluded
//pairs, and the interaction of each charge with its own screening Gaussian.
func (c *Corrector) exclAndSelfQ(start, end int, x *v3.Matrix, box Box, lambda float64, f *v3.Matrix, out *ThreadOutput) {
	s := c.sys
	qA := s.charges(0)
	qB := s.charges(1)
	L := 1.0 - lambda
	perturbed := s.PerturbedQ()
	selfFac := One4PiEps0 * c.betaQ / math.Sqrt(math.Pi)
	for i := start; i < end; i++ {
		//self energy, full weight: each atom is visited exactly once
		vselfA := selfFac * qA[i] * qA[i]
		vselfB := selfFac * qB[i] * qB[i]
		if perturbed {
			out.VcorrQ -= L*vselfA + lambda*vselfB
			out.Dvdl[CouplingCoul] -= vselfB - vselfA
		} else {
			out.VcorrQ -= vselfA
		}
		for k := s.excl.Index[i]; k < s.excl.Index[i+1]; k++ {
			j := s.excl.Atoms[k]
			if j == i {
				continue
			}
			qqA := qA[i] * qA[j]
			qqB := qB[i] * qB[j]
			qq := qqA
			if perturbed {
				qq = L*qqA + lambda*qqB
			}
			d := [3]float64{x.At(i, 0) - x.At(j, 0), x.At(i, 1) - x.At(j, 1), x.At(i, 2) - x.At(j, 2)}
			box.MinImage(&d)
			r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
			if r2 == 0 {
				//coincident excluded particles (e.g. shell/core): the
				//analytic limit of erf(beta r)/r, no force.
				vr := One4PiEps0 * VQEwaldLR(c.betaQ, 0)
				out.VcorrQ -= 0.5 * qq * vr
				if perturbed {
					out.Dvdl[CouplingCoul] -= 0.5 * (qqB - qqA) * vr
				}
				continue
			}
			r := math.Sqrt(r2)
			vr := One4PiEps0 * VQEwaldLR(c.betaQ, r)
			//half the pair energy from each side of the symmetric list
			out.VcorrQ -= 0.5 * qq * vr
			if perturbed {
				out.Dvdl[CouplingCoul] -= 0.5 * (qqB - qqA) * vr
			}
			//the correction force on atom i is minus the gradient of
			//-qq*vr(r), i.e. the reverse of the mesh pair force
			fscal := One4PiEps0 * qq * vqEwaldLRDer(c.betaQ, r) / r
			fv := [3]float64{fscal * d[0], fscal * d[1], fscal * d[2]}
			f.AddVec(i, fv)
			out.VirQ.AddPairContribution(d, fv)
		}
	}
}

//exclAndSelfLJ is the dispersion analogue of exclAndSelfQ, for runs where
//the 1/r^6 term is Ewald-split (the mesh part then being the business of
//the external LJ-PME engine). Dispersion coefficients combine
//geometrically from the per-atom square roots.
func (c *Corrector) exclAndSelfLJ(start, end int, x *v3.Matrix, box Box, lambda float64, f *v3.Matrix, out *ThreadOutput) {
	s := c.sys
	if s.sqrtC6A == nil {
		return
	}
	c6A := s.sqrtC6(0)
	c6B := s.sqrtC6(1)
	L := 1.0 - lambda
	perturbed := s.sqrtC6B != nil
	b6 := math.Pow(c.betaLJ, 6)
	for i := start; i < end; i++ {
		//the mesh would include each particle's Gaussian acting on itself,
		//-c6_ii * beta^6/6 with the 1/2 self-pair weight
		vselfA := 0.5 * c6A[i] * c6A[i] * b6 / 6.0
		vselfB := 0.5 * c6B[i] * c6B[i] * b6 / 6.0
		if perturbed {
			out.VcorrLJ += L*vselfA + lambda*vselfB
			out.Dvdl[CouplingVdw] += vselfB - vselfA
		} else {
			out.VcorrLJ += vselfA
		}
		for k := s.excl.Index[i]; k < s.excl.Index[i+1]; k++ {
			j := s.excl.Atoms[k]
			if j == i {
				continue
			}
			cA := c6A[i] * c6A[j]
			cB := c6B[i] * c6B[j]
			c6 := cA
			if perturbed {
				c6 = L*cA + lambda*cB
			}
			d := [3]float64{x.At(i, 0) - x.At(j, 0), x.At(i, 1) - x.At(j, 1), x.At(i, 2) - x.At(j, 2)}
			box.MinImage(&d)
			r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
			if r2 == 0 {
				g0 := VLJEwaldLR(c.betaLJ, 0)
				out.VcorrLJ += 0.5 * c6 * g0
				if perturbed {
					out.Dvdl[CouplingVdw] += 0.5 * (cB - cA) * g0
				}
				continue
			}
			r := math.Sqrt(r2)
			g := VLJEwaldLR(c.betaLJ, r)
			out.VcorrLJ += 0.5 * c6 * g
			if perturbed {
				out.Dvdl[CouplingVdw] += 0.5 * (cB - cA) * g
			}
			fscal := -c6 * vljEwaldLRDer(c.betaLJ, r) / r
			fv := [3]float64{fscal * d[0], fscal * d[1], fscal * d[2]}
			f.AddVec(i, fv)
			out.VirLJ.AddPairContribution(d, fv)
		}
	}
}

//surfaceTerm adds the dipole correction for non-tinfoil boundary
//conditions: E = 2*pi/((2*eps_s+1)*V) * |M|^2. The energy is global and is
//booked on thread 0 only; the per-particle forces are handled by each
//atom's owning thread. The per-atom virial follows the -x(x)f convention
//of the rest of the package.
func (c *Corrector) surfaceTerm(t, start, end int, x *v3.Matrix, box Box, muTot [2][3]float64, lambda float64, f *v3.Matrix, out *ThreadOutput) {
	s := c.sys
	vol := box.Volume()
	fac := 2.0 * math.Pi / ((2.0*c.epsSurf + 1.0) * vol) * One4PiEps0
	perturbed := s.PerturbedQ()
	L := 1.0 - lambda
	if t == 0 {
		muA2 := muTot[0][0]*muTot[0][0] + muTot[0][1]*muTot[0][1] + muTot[0][2]*muTot[0][2]
		muB2 := muTot[1][0]*muTot[1][0] + muTot[1][1]*muTot[1][1] + muTot[1][2]*muTot[1][2]
		if perturbed {
			out.VcorrQ += fac * (L*muA2 + lambda*muB2)
			out.Dvdl[CouplingCoul] += fac * (muB2 - muA2)
		} else {
			out.VcorrQ += fac * muA2
		}
	}
	qA := s.charges(0)
	qB := s.charges(1)
	for i := start; i < end; i++ {
		var fv [3]float64
		for d := 0; d < 3; d++ {
			fA := -2.0 * fac * qA[i] * muTot[0][d]
			if perturbed {
				fB := -2.0 * fac * qB[i] * muTot[1][d]
				fv[d] = L*fA + lambda*fB
			} else {
				fv[d] = fA
			}
		}
		f.AddVec(i, fv)
		xi := [3]float64{x.At(i, 0), x.At(i, 1), x.At(i, 2)}
		out.VirQ.AddPairContribution(xi, fv)
	}
}

//ChargeCorrection returns the energy correction for the implicit uniform
//background that the Ewald sum assumes when the system carries a net
//charge: E = -pi/(2 beta^2 V) * Q_tot^2 per state, mixed by lambda.
//It also accumulates dV/dlambda and, when vir is non-nil, the virial
//correction needed under fluctuating box volume.
//
//Should only be called on one thread, and once per step: the net charge is
//a whole-system quantity, so redundant calls (or calls on ranks holding
//only part of the system) would double-count it.
func (c *Corrector) ChargeCorrection(box Box, lambda float64, dvdl *float64, vir *Tensor) float64 {
	vol := box.Volume()
	fac := math.Pi * One4PiEps0 / (2.0 * c.betaQ * c.betaQ * vol)
	qA := c.sys.NetCharge(0)
	qB := c.sys.NetCharge(1)
	eA := -fac * qA * qA
	eB := -fac * qB * qB
	e := eA
	if c.sys.PerturbedQ() {
		e = (1.0-lambda)*eA + lambda*eB
		if dvdl != nil {
			*dvdl += eB - eA
		}
	}
	if vir != nil {
		for d := 0; d < 3; d++ {
			vir[d][d] -= 0.5 * e
		}
	}
	return e
}
