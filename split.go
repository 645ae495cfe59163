/*
 * split.go, part of goewald.
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

import "math"

/*The two functions below define the split of the singular pairwise
potentials into a short-ranged part (evaluated by the caller's pair
kernels, with the complementary functions) and the smooth long-ranged
remainder that the reciprocal sum and the corrections in this package
work with. They are pure, C-infinity smooth and deterministic.*/

//VQEwaldLR returns the long-ranged (grid) part of the 1/r Coulomb
//potential at distance r for splitting coefficient beta: erf(beta*r)/r,
//with the analytic limit 2*beta/sqrt(pi) at r=0. The returned value is in
//units of 1/nm; multiply by One4PiEps0 and the charge product to get an
//energy.
func VQEwaldLR(beta, r float64) float64 {
	if r == 0 {
		return 2.0 * beta / math.Sqrt(math.Pi)
	}
	return math.Erf(beta*r) / r
}

//VLJEwaldLR returns the long-ranged part of the 1/r^6 dispersion kernel at
//distance r for splitting coefficient beta:
//(1 - exp(-x^2)*(1 + x^2 + x^4/2))/r^6 with x = beta*r, and the analytic
//limit beta^6/6 at r=0. Multiply by the pair dispersion coefficient C6 to
//get an energy.
func VLJEwaldLR(beta, r float64) float64 {
	if r == 0 {
		return math.Pow(beta, 6) / 6.0
	}
	br2 := beta * r * beta * r
	br4 := br2 * br2
	r6 := math.Pow(r, 6)
	return (1.0 - math.Exp(-br2)*(1.0+br2+0.5*br4)) / r6
}

//vqEwaldLRDer returns d/dr of VQEwaldLR, needed for the excluded-pair
//force correction. Callers must not pass r=0 (excluded coincident pairs
//get no force correction, only the energy limit).
func vqEwaldLRDer(beta, r float64) float64 {
	br := beta * r
	return (2.0*beta/math.Sqrt(math.Pi)*math.Exp(-br*br)*r - math.Erf(br)) / (r * r)
}

//vljEwaldLRDer returns d/dr of VLJEwaldLR. As above, r must be positive.
func vljEwaldLRDer(beta, r float64) float64 {
	br2 := beta * r * beta * r
	b6 := math.Pow(beta, 6)
	return -6.0*VLJEwaldLR(beta, r)/r + b6*math.Exp(-br2)/r
}
