/*
 * v3_test.go, part of goewald.
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

package v3

import "testing"

func TestNewMatrix(Te *testing.T) {
	_, err := NewMatrix([]float64{1, 2, 3, 4})
	if err == nil {
		Te.Error("NewMatrix accepted a slice with length not divisible by 3")
	}
	m, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		Te.Fatal(err)
	}
	if m.NVecs() != 2 {
		Te.Errorf("NVecs: got %d, want 2", m.NVecs())
	}
	if m.At(1, 2) != 6 {
		Te.Errorf("At(1,2): got %f, want 6", m.At(1, 2))
	}
}

func TestVecViewAliases(Te *testing.T) {
	m := Zeros(3)
	v := m.VecView(1)
	v.Set(0, 0, 4.5)
	if m.At(1, 0) != 4.5 {
		Te.Error("VecView does not alias the viewed matrix")
	}
}

func TestAddVec(Te *testing.T) {
	m := Zeros(2)
	m.SetVec(0, [3]float64{1, 1, 1})
	m.AddVec(0, [3]float64{0.5, -1, 2})
	got := m.Vec(0)
	want := [3]float64{1.5, 0, 3}
	if got != want {
		Te.Errorf("AddVec: got %v, want %v", got, want)
	}
}
