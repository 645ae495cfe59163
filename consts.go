/*
 * consts.go, part of goewald.
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

//One4PiEps0 is the Coulomb conversion factor 1/(4 pi eps0) in
//kJ mol^-1 nm e^-2.
const One4PiEps0 = 138.935458

//Coupling indexes the free-energy coupling types, i.e. which interaction a
//lambda value (and the corresponding dV/dlambda accumulator) refers to.
type Coupling int

const (
	CouplingCoul Coupling = iota
	CouplingVdw
	CouplingCount
)

//CoulombKind tags the supported treatments of electrostatics.
type CoulombKind int

const (
	//CoulombCutoff: plain cut-off electrostatics, nothing long-ranged to do.
	CoulombCutoff CoulombKind = iota
	//CoulombEwald: Ewald-split electrostatics with the reciprocal part
	//evaluated by this package.
	CoulombEwald
)

//VdwKind tags the supported treatments of dispersion.
type VdwKind int

const (
	//VdwCutoff: plain cut-off Lennard-Jones.
	VdwCutoff VdwKind = iota
	//VdwEwald: Ewald-split dispersion. The mesh part is the task of an
	//external PME engine; this package contributes the real-space
	//exclusion and self corrections for it.
	VdwEwald
)

//Settings carries the read-only run configuration of the long-range
//machinery. The string-typed user configuration is resolved into these tags
//once, at setup (see the conf subpackage); nothing re-parses strings or
//re-branches on them during force evaluation.
type Settings struct {
	Coulomb        CoulombKind
	Vdw            VdwKind
	BetaQ          float64 //Ewald splitting coefficient for Coulomb, 1/nm
	BetaLJ         float64 //Ewald splitting coefficient for dispersion, 1/nm
	Kmax           int     //largest reciprocal lattice index summed per axis
	EpsilonSurface float64 //0 means tinfoil boundary conditions
	Threads        int     //workers for the correction layer
}

//SurfaceTerm reports whether the run needs the surface/dipole correction.
func (s *Settings) SurfaceTerm() bool {
	return s.EpsilonSurface != 0
}
