/*
 * doc.go, part of goewald.
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

/*Package ewald computes the long-ranged part of electrostatic (and,
optionally, dispersion) interactions in a periodic molecular system, using
the Ewald decomposition of the 1/r and 1/r^6 potentials.


	**goewald capabilities**

    Splits the Coulomb and dispersion potentials into a short-ranged,
	rapidly-decaying part (left to the caller's pair kernels) and a smooth
	long-ranged part, controlled by the splitting coefficient beta.

    Evaluates the reciprocal-space (plane-wave) part of the long-ranged
	Coulomb energy, per-particle forces and virial for rectangular periodic
	boxes, with cached per-axis complex exponential tables.

    Computes the real-space corrections that the naive reciprocal sum
	requires: excluded-pair corrections, per-particle self-energy,
	the neutralizing-background correction for systems with a net charge,
	and the surface/dipole term for non-tinfoil boundary conditions.

    Supports linear free-energy coupling between two charge/parameter sets,
	accumulating dV/dlambda for the Coulomb and van der Waals couplings.

    Partitions the correction work over goroutines and reduces the
	per-worker energy, virial and dV/dlambda records deterministically.

Units follow the usual molecular-dynamics conventions: distances in nm,
charges in electron units, energies in kJ/mol, so beta is given in 1/nm.

The package is force-field agnostic: positions, charges, dispersion
coefficients, the box and the exclusion list are supplied by the caller,
which also owns the per-particle force buffer that this package accumulates
into.
*/
package ewald
