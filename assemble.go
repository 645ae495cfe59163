/*
 * assemble.go, part of goewald.
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
	v3 "github.com/rmera/goewald/v3"
)

//EnergyTerm names a slot of the caller's energy table.
type EnergyTerm string

const (
	TermCoulombRecip EnergyTerm = "Coulomb reciprocal"
	TermLJRecip      EnergyTerm = "LJ reciprocal"
)

//EnergyData is the aggregate output of one long-range evaluation, merged
//by the assembler into whatever global accumulators the simulation keeps.
//It is produced fresh each step.
type EnergyData struct {
	Term map[EnergyTerm]float64
	Dvdl [CouplingCount]float64
}

//NewEnergyData returns an EnergyData with an allocated term table.
func NewEnergyData() *EnergyData {
	return &EnergyData{Term: make(map[EnergyTerm]float64)}
}

//StepWork flags which outputs the caller needs this step. Sub-computations
//whose outputs are all unrequested are skipped.
type StepWork struct {
	Forces bool
	Energy bool
	Virial bool
	Dvdl   bool
}

//BalanceCloser closes a domain-decomposition load-balancing region. The
//reciprocal solve performs global communication that acts as a barrier, so
//the region must be closed right before it; everything after the solve
//would otherwise pollute the load measurement. Callers without domain
//decomposition can pass nil.
type BalanceCloser interface {
	CloseAfterForceComputation()
}

//Assembler is the per-step entry point of the package. It owns the
//reciprocal solver (and its cached tables), the correction engine and the
//per-thread output records, and knows, from the run settings, which
//sub-computations a step needs and in which order.
type Assembler struct {
	set    Settings
	sys    *System
	solver *Solver
	corr   *Corrector
	outs   []ThreadOutput
}

//NewAssembler validates the settings and builds the whole long-range
//machinery. Configuration problems (a non-positive beta, a kmax that was
//never set, a thread count below 1) are caught here, not at step time.
func NewAssembler(set Settings, sys *System) (*Assembler, error) {
	if set.Threads < 1 {
		set.Threads = 1
	}
	a := &Assembler{set: set, sys: sys, outs: make([]ThreadOutput, set.Threads)}
	var err error
	if set.Coulomb == CoulombEwald {
		a.solver, err = NewSolver(&set)
		if err != nil {
			return nil, errDecorate(err, "NewAssembler")
		}
	}
	if set.Coulomb == CoulombEwald || set.Vdw == VdwEwald {
		a.corr, err = NewCorrector(sys, &set)
		if err != nil {
			return nil, errDecorate(err, "NewAssembler")
		}
	}
	return a, nil
}

//needsCorrections reports whether the threaded correction pass has any
//work: exclusion/self corrections for either Ewald-split interaction, or
//the surface term.
func (a *Assembler) needsCorrections() bool {
	return a.corr != nil
}

//CalcLongRange runs one long-range force evaluation: the threaded
//real-space corrections, the net-charge correction, and the reciprocal
//solve, in that order, then merges energies into enerd, the virial into
//vir and forces into f. lambda holds the coupling values per interaction
//type. On any sub-component failure nothing at all is merged and the error
//escalates to the caller; a partial merge would silently corrupt the
//step's physics.
//
//The call sequences the reciprocal solve after bal.CloseAfterForceComputation,
//since the solve is a global collective in distributed runs. The
//correction and net-charge contributions land in disjoint accumulator
//slots, so their relative order is a performance choice, not a correctness
//one; both strictly precede the merge.
func (a *Assembler) CalcLongRange(x, f *v3.Matrix, box Box, lambda [CouplingCount]float64, work StepWork, bal BalanceCloser, enerd *EnergyData, vir *Tensor) error {
	if a.solver == nil && a.corr == nil {
		return nil //nothing long-ranged configured
	}
	if !(work.Forces || work.Energy || work.Virial || work.Dvdl) {
		return nil
	}
	out0 := &a.outs[0]
	out0.Clear()

	if a.needsCorrections() {
		var muTot [2][3]float64
		if a.set.SurfaceTerm() {
			muTot[0] = a.sys.Dipole(x, 0)
			muTot[1] = a.sys.Dipole(x, 1)
		}
		nthreads := a.set.Threads
		err := Dispatch(nthreads, func(t int) error {
			if t > 0 {
				a.outs[t].Clear()
			}
			return a.corr.LongRange(t, nthreads, x, box, muTot, lambda, f, &a.outs[t])
		})
		if err != nil {
			return errDecorate(err, "CalcLongRange")
		}
		if nthreads > 1 {
			Reduce(a.outs)
		}
	}

	if a.set.Coulomb == CoulombEwald {
		//single-threaded by contract; cheap and constant-sized
		var virDst *Tensor
		if work.Virial {
			virDst = &out0.VirQ
		}
		var dvdlDst *float64
		if work.Dvdl {
			dvdlDst = &out0.Dvdl[CouplingCoul]
		}
		out0.VcorrQ += a.corr.ChargeCorrection(box, lambda[CouplingCoul], dvdlDst, virDst)
	}

	var vlrQ float64
	if a.set.Coulomb == CoulombEwald {
		//the reciprocal solve synchronizes all ranks; close the
		//load-balancing region before it, not after
		if bal != nil {
			bal.CloseAfterForceComputation()
		}
		var chargeB []float64
		if a.sys.PerturbedQ() {
			chargeB = a.sys.charges(1)
		}
		var err error
		var dvdlDst *float64
		if work.Dvdl {
			dvdlDst = &out0.Dvdl[CouplingCoul]
		}
		vlrQ, err = a.solver.Evaluate(x, f, a.sys.charges(0), chargeB, box,
			lambda[CouplingCoul], a.sys.Len(), &out0.VirQ, dvdlDst)
		if err != nil {
			return errDecorate(err, "CalcLongRange")
		}
	}

	//merge; no failure can happen past this point
	if vir != nil {
		vir.Add(&out0.VirQ)
		vir.Add(&out0.VirLJ)
	}
	if enerd != nil {
		enerd.Term[TermCoulombRecip] = vlrQ + out0.VcorrQ
		enerd.Term[TermLJRecip] = out0.VcorrLJ
		for i := range enerd.Dvdl {
			enerd.Dvdl[i] += out0.Dvdl[i]
		}
	}
	return nil
}
