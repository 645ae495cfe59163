/*
 * threads.go, part of goewald.
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
	"sync"
)

//ThreadOutput is the per-worker record of one correction pass: the
//correction energies, the free-energy derivatives and one virial tensor
//per interaction. Each worker exclusively owns its record while the pass
//runs; after the join the records become read-only inputs to Reduce.
type ThreadOutput struct {
	VcorrQ  float64
	VcorrLJ float64
	Dvdl    [CouplingCount]float64
	VirQ    Tensor
	VirLJ   Tensor
}

//Clear zeroes every field of the record.
func (o *ThreadOutput) Clear() {
	o.VcorrQ = 0
	o.VcorrLJ = 0
	for i := range o.Dvdl {
		o.Dvdl[i] = 0
	}
	o.VirQ.Clear()
	o.VirLJ.Clear()
}

//Reduce accumulates outs[1:] into outs[0]. The sum is a plain sequential
//fold, so for a fixed thread count the reduction order is fixed; across
//different thread counts results agree up to floating-point reordering.
func Reduce(outs []ThreadOutput) {
	if len(outs) == 0 {
		return
	}
	dest := &outs[0]
	for t := 1; t < len(outs); t++ {
		dest.VcorrQ += outs[t].VcorrQ
		dest.VcorrLJ += outs[t].VcorrLJ
		for i := range dest.Dvdl {
			dest.Dvdl[i] += outs[t].Dvdl[i]
		}
		dest.VirQ.Add(&outs[t].VirQ)
		dest.VirLJ.Add(&outs[t].VirLJ)
	}
}

//Dispatch runs work(t) for every t in [0,nthreads) on its own goroutine
//and waits for all of them. A failure (or panic) in any worker makes the
//whole call fail: a partially-reduced correction is physically
//meaningless, so the caller must discard the step rather than merge it.
//Workers other than 0 are expected to clear their own output record;
//record 0 is cleared once by the caller, before the step's first
//contribution is booked into it.
func Dispatch(nthreads int, work func(t int) error) error {
	if nthreads < 1 {
		return &CError{fmt.Sprintf("goewald: need at least 1 thread, got %d", nthreads), []string{"Dispatch"}}
	}
	errs := make([]error, nthreads)
	var wg sync.WaitGroup
	for t := 0; t < nthreads; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[t] = &CError{fmt.Sprintf("%s: worker %d panicked: %v", ErrWorkFailed, t, r), []string{"Dispatch"}}
				}
			}()
			errs[t] = work(t)
		}(t)
	}
	wg.Wait()
	for t, err := range errs {
		if err != nil {
			return errDecorate(err, fmt.Sprintf("Dispatch: worker %d", t))
		}
	}
	return nil
}
