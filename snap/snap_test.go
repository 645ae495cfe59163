/*
 * snap_test.go, part of goewald.
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

package snap

import (
	"path/filepath"
	"testing"

	ewald "github.com/rmera/goewald"
	v3 "github.com/rmera/goewald/v3"
)

func testSnapshot(Te *testing.T) *Snapshot {
	x, err := v3.NewMatrix([]float64{
		0.1, 0.2, 0.3,
		1.0, 1.1, 1.2,
		2.123456789012345, 0.5, 0.7,
	})
	if err != nil {
		Te.Fatal(err)
	}
	excl, err := ewald.Pairs(3, [][2]int{{0, 1}, {0, 2}})
	if err != nil {
		Te.Fatal(err)
	}
	return &Snapshot{
		X:       x,
		ChargeA: []float64{-0.8, 0.4, 0.4},
		ChargeB: []float64{-0.834, 0.417, 0.417},
		SqrtC6A: []float64{0.05, 0.001, 0.001},
		Excl:    excl,
		Box:     ewald.Cubic(3.5),
	}
}

//every compressor roundtrips the snapshot exactly
func TestRoundtrip(Te *testing.T) {
	s := testSnapshot(Te)
	dir := Te.TempDir()
	for _, name := range []string{"sys.snp", "sys.gz", "sys.flater"} {
		path := filepath.Join(dir, name)
		if err := Write(path, s); err != nil {
			Te.Fatalf("%s: %v", name, err)
		}
		got, err := Read(path)
		if err != nil {
			Te.Fatalf("%s: %v", name, err)
		}
		for i := range s.ChargeA {
			if got.ChargeA[i] != s.ChargeA[i] || got.ChargeB[i] != s.ChargeB[i] || got.SqrtC6A[i] != s.SqrtC6A[i] {
				Te.Errorf("%s: per-atom data changed for atom %d", name, i)
			}
			for d := 0; d < 3; d++ {
				if got.X.At(i, d) != s.X.At(i, d) {
					Te.Errorf("%s: coordinate %d,%d changed: %v vs %v", name, i, d, got.X.At(i, d), s.X.At(i, d))
				}
			}
		}
		if got.SqrtC6B != nil {
			Te.Errorf("%s: grew a SqrtC6B that was never written", name)
		}
		if got.Box != s.Box {
			Te.Errorf("%s: box changed: %v vs %v", name, got.Box, s.Box)
		}
		for i := range s.Excl.Index {
			if got.Excl.Index[i] != s.Excl.Index[i] {
				Te.Fatalf("%s: exclusion index changed", name)
			}
		}
		for i := range s.Excl.Atoms {
			if got.Excl.Atoms[i] != s.Excl.Atoms[i] {
				Te.Errorf("%s: exclusion partners changed", name)
			}
		}
	}
}

//the snapshot must build a working system
func TestSnapshotSystem(Te *testing.T) {
	s := testSnapshot(Te)
	sys, err := s.System()
	if err != nil {
		Te.Fatal(err)
	}
	if sys.Len() != 3 {
		Te.Errorf("system has %d atoms, want 3", sys.Len())
	}
	if !sys.PerturbedQ() {
		Te.Error("two differing charge sets should mark the system as perturbed")
	}
}

func TestWriteErrors(Te *testing.T) {
	dir := Te.TempDir()
	if err := Write(filepath.Join(dir, "x.snp"), nil); err == nil {
		Te.Error("expected an error for a nil snapshot")
	}
	s := testSnapshot(Te)
	s.ChargeA = s.ChargeA[:2]
	if err := Write(filepath.Join(dir, "x.snp"), s); err == nil {
		Te.Error("expected an error for mismatched charges and coordinates")
	}
}

func TestReadErrors(Te *testing.T) {
	if _, err := Read(filepath.Join(Te.TempDir(), "missing.snp")); err == nil {
		Te.Error("expected an error for a missing file")
	}
}
