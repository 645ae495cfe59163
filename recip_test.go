/*
 * recip_test.go, part of goewald.
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
	"testing"

	v3 "github.com/rmera/goewald/v3"
)

//shortRangeCoul is the real-space half of the Ewald sum, restricted to the
//nearest image. The boxes used in these tests are large enough (beta*L/2
//around 10) that further images are below double precision.
func shortRangeCoul(x *v3.Matrix, q []float64, box Box, beta float64) float64 {
	e := 0.0
	for i := 0; i < len(q); i++ {
		for j := i + 1; j < len(q); j++ {
			d := [3]float64{x.At(i, 0) - x.At(j, 0), x.At(i, 1) - x.At(j, 1), x.At(i, 2) - x.At(j, 2)}
			box.MinImage(&d)
			r := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
			e += One4PiEps0 * q[i] * q[j] * math.Erfc(beta*r) / r
		}
	}
	return e
}

//selfEnergy is the correction for each charge interacting with its own
//screening Gaussian.
func selfEnergy(q []float64, beta float64) float64 {
	e := 0.0
	for _, qi := range q {
		e -= One4PiEps0 * beta / math.Sqrt(math.Pi) * qi * qi
	}
	return e
}

func ionPair() (*v3.Matrix, []float64) {
	x, _ := v3.NewMatrix([]float64{
		0, 0, 0,
		1, 0, 0,
	})
	return x, []float64{1, -1}
}

//The total Ewald energy of an ion pair in a large box must reproduce
//-k/r plus the pair's interaction with its periodic images, whose leading
//term is the dipole-lattice energy -2 pi k |M|^2 / (3V).
func TestIonPairEnergy(Te *testing.T) {
	x, q := ionPair()
	box := Cubic(10)
	beta := 3.12
	set := &Settings{Coulomb: CoulombEwald, BetaQ: beta, Kmax: 40}
	sv, err := NewSolver(set)
	if err != nil {
		Te.Fatal(err)
	}
	f := v3.Zeros(2)
	var vir Tensor
	erec, err := sv.Evaluate(x, f, q, nil, box, 0, 2, &vir, nil)
	if err != nil {
		Te.Fatal(err)
	}
	total := erec + selfEnergy(q, beta) + shortRangeCoul(x, q, box, beta)
	//k q1 q2 / r with r=1, plus the image term for |M| = 1 e nm; the
	//tolerance absorbs the higher multipoles
	want := -One4PiEps0 - 2*math.Pi*One4PiEps0/(3*box.Volume())
	if math.Abs(total-want) > 0.02 {
		Te.Errorf("ion pair energy: got %v, want about %v", total, want)
	}
}

//The splitting parameter moves energy between the real and reciprocal
//parts but must leave their sum alone.
func TestBetaInvariance(Te *testing.T) {
	x, q := ionPair()
	box := Cubic(10)
	totals := make([]float64, 0, 3)
	for _, beta := range []float64{2.0, 2.4, 2.8} {
		set := &Settings{Coulomb: CoulombEwald, BetaQ: beta, Kmax: 32}
		sv, err := NewSolver(set)
		if err != nil {
			Te.Fatal(err)
		}
		f := v3.Zeros(2)
		var vir Tensor
		erec, err := sv.Evaluate(x, f, q, nil, box, 0, 2, &vir, nil)
		if err != nil {
			Te.Fatal(err)
		}
		totals = append(totals, erec+selfEnergy(q, beta)+shortRangeCoul(x, q, box, beta))
	}
	for i := 1; i < len(totals); i++ {
		if math.Abs(totals[i]-totals[0]) > 5e-3 {
			Te.Errorf("total energy depends on beta: %v vs %v", totals[i], totals[0])
		}
	}
}

//The reciprocal forces must be minus the gradient of the reciprocal energy.
func TestRecipForceNumerical(Te *testing.T) {
	x, err := v3.NewMatrix([]float64{
		0.3, 1.1, 2.0,
		1.7, 0.4, 1.2,
		2.2, 2.9, 0.8,
	})
	if err != nil {
		Te.Fatal(err)
	}
	q := []float64{0.8, -0.5, -0.3}
	box := Cubic(5)
	set := &Settings{Coulomb: CoulombEwald, BetaQ: 2.5, Kmax: 16}
	sv, err := NewSolver(set)
	if err != nil {
		Te.Fatal(err)
	}
	energy := func(xx *v3.Matrix) float64 {
		ff := v3.Zeros(3)
		var vir Tensor
		e, err2 := sv.Evaluate(xx, ff, q, nil, box, 0, 3, &vir, nil)
		if err2 != nil {
			Te.Fatal(err2)
		}
		return e
	}
	f := v3.Zeros(3)
	var vir Tensor
	if _, err = sv.Evaluate(x, f, q, nil, box, 0, 3, &vir, nil); err != nil {
		Te.Fatal(err)
	}
	const h = 1e-5
	for i := 0; i < 3; i++ {
		for d := 0; d < 3; d++ {
			xp := x.Copy()
			xp.Set(i, d, x.At(i, d)+h)
			xm := x.Copy()
			xm.Set(i, d, x.At(i, d)-h)
			num := -(energy(xp) - energy(xm)) / (2 * h)
			got := f.At(i, d)
			if math.Abs(num-got) > 1e-5*math.Max(math.Abs(num), 1) {
				Te.Errorf("force atom %d dim %d: got %v, numerical %v", i, d, got, num)
			}
		}
	}
}

//Repeated evaluations at the same coordinates must give bitwise-identical
//results; the cached tables hold no state that leaks between calls.
func TestEvaluateIdempotent(Te *testing.T) {
	x, q := ionPair()
	box := Cubic(10)
	set := &Settings{Coulomb: CoulombEwald, BetaQ: 3.0, Kmax: 12}
	sv, err := NewSolver(set)
	if err != nil {
		Te.Fatal(err)
	}
	run := func() (float64, *v3.Matrix) {
		f := v3.Zeros(2)
		var vir Tensor
		e, err2 := sv.Evaluate(x, f, q, nil, box, 0, 2, &vir, nil)
		if err2 != nil {
			Te.Fatal(err2)
		}
		return e, f
	}
	e1, f1 := run()
	e2, f2 := run()
	if e1 != e2 {
		Te.Errorf("energy not reproducible: %v vs %v", e1, e2)
	}
	for i := 0; i < 2; i++ {
		for d := 0; d < 3; d++ {
			if f1.At(i, d) != f2.At(i, d) {
				Te.Errorf("force %d,%d not reproducible: %v vs %v", i, d, f1.At(i, d), f2.At(i, d))
			}
		}
	}
}

//With both charge states given, the energy must be the linear mixture and
//dvdl the difference. chargeB = 2*chargeA makes the B energy exactly 4x.
func TestEvaluatePerturbed(Te *testing.T) {
	x, qA := ionPair()
	qB := []float64{2, -2}
	box := Cubic(10)
	set := &Settings{Coulomb: CoulombEwald, BetaQ: 3.0, Kmax: 12}
	sv, err := NewSolver(set)
	if err != nil {
		Te.Fatal(err)
	}
	f := v3.Zeros(2)
	var vir Tensor
	eA, err := sv.Evaluate(x, f, qA, nil, box, 0, 2, &vir, nil)
	if err != nil {
		Te.Fatal(err)
	}
	lambda := 0.25
	f2 := v3.Zeros(2)
	var vir2 Tensor
	dvdl := 0.0
	eMix, err := sv.Evaluate(x, f2, qA, qB, box, lambda, 2, &vir2, &dvdl)
	if err != nil {
		Te.Fatal(err)
	}
	wantMix := (1 - lambda + 4*lambda) * eA
	if math.Abs(eMix-wantMix) > 1e-10*math.Abs(wantMix) {
		Te.Errorf("mixed energy: got %v, want %v", eMix, wantMix)
	}
	wantDvdl := 3 * eA
	if math.Abs(dvdl-wantDvdl) > 1e-10*math.Abs(wantDvdl) {
		Te.Errorf("dvdl: got %v, want %v", dvdl, wantDvdl)
	}
}

func TestEvaluateErrors(Te *testing.T) {
	x, q := ionPair()
	set := &Settings{Coulomb: CoulombEwald, BetaQ: 3.0, Kmax: 8}
	sv, err := NewSolver(set)
	if err != nil {
		Te.Fatal(err)
	}
	f := v3.Zeros(2)
	var vir Tensor
	skew := Cubic(10)
	skew[0][1] = 1.0
	if _, err = sv.Evaluate(x, f, q, nil, skew, 0, 2, &vir, nil); err == nil {
		Te.Error("expected an error for a non-diagonal box")
	}
	collapsed := Cubic(10)
	collapsed[1][1] = 0
	if _, err = sv.Evaluate(x, f, q, nil, collapsed, 0, 2, &vir, nil); err == nil {
		Te.Error("expected an error for a collapsed box edge")
	}
	if _, err = sv.Evaluate(x, f, q, nil, Cubic(10), 0, 5, &vir, nil); err == nil {
		Te.Error("expected an error for natoms exceeding the buffers")
	}
	if _, err = sv.Evaluate(nil, f, q, nil, Cubic(10), 0, 2, &vir, nil); err == nil {
		Te.Error("expected an error for nil coordinates")
	}
	if _, err = NewSolver(&Settings{Coulomb: CoulombEwald, BetaQ: -1, Kmax: 8}); err == nil {
		Te.Error("expected an error for a negative beta")
	}
	if _, err = NewSolver(&Settings{Coulomb: CoulombEwald, BetaQ: 3, Kmax: 0}); err == nil {
		Te.Error("expected an error for kmax below 1")
	}
}
