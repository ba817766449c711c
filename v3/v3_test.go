/*
 * v3_test.go, part of msicastep.
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

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// Returns an identity matrix spanning span cols and rows
func gnEye(span int) *mat.Dense {
	A := mat.NewDense(span, span, nil)
	for i := 0; i < span; i++ {
		A.Set(i, i, 1.0)
	}
	return A
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestGeo(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 10}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	T := Zeros(3)
	T.Mul(A, gnEye(3))
	if !mat.Equal(T.Dense, A.Dense) {
		Te.Errorf("A times identity should be A, got %v", T)
	}
	View := A.VecView(1)
	View.Set(0, 0, 100)
	if A.At(1, 0) != 100 {
		Te.Errorf("changes in a view should be seen in the matrix")
	}
	if _, err := NewMatrix([]float64{1, 2}); err == nil {
		Te.Errorf("a slice not divisible by 3 should not make a Matrix")
	}
}

func TestVecs(Te *testing.T) {
	A := FromVecs([][3]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	B := Zeros(2)
	B.DelVec(A, 1)
	if B.Vec(0) != [3]float64{1, 2, 3} || B.Vec(1) != [3]float64{7, 8, 9} {
		Te.Errorf("DelVec removed the wrong vector: %v", B)
	}
	row := FromVecs([][3]float64{{10, 20, 30}})
	A.AddVec(A, row)
	if A.Vec(2) != [3]float64{17, 28, 39} {
		Te.Errorf("AddVec: got %v", A.Vec(2))
	}
	A.SubVec(A, row)
	if A.Vec(0) != [3]float64{1, 2, 3} {
		Te.Errorf("SubVec: got %v", A.Vec(0))
	}
	A.SwapVecs(0, 2)
	if A.Vec(0) != [3]float64{7, 8, 9} {
		Te.Errorf("SwapVecs: got %v", A.Vec(0))
	}
	A.Set(1, 1, math.NaN())
	if A.Finite() {
		Te.Errorf("Finite should report the NaN")
	}
}

func TestDetInverse(Te *testing.T) {
	L := mat.NewDense(3, 3, []float64{2, 0, 0, 1, 3, 0, 0, 1, 4})
	if d := Det(L); !near(d, 24, 1e-12) {
		Te.Errorf("Det: expected 24, got %f", d)
	}
	inv, err := Inverse3(L, -1)
	if err != nil {
		Te.Fatal(err)
	}
	P := mat.NewDense(3, 3, nil)
	P.Mul(L, inv)
	if !mat.EqualApprox(P, gnEye(3), 1e-12) {
		Te.Errorf("L times its inverse should be the identity, got %v", mat.Formatted(P))
	}
	S := mat.NewDense(3, 3, []float64{1, 0, 0, 2, 0, 0, 0, 0, 1})
	if _, err := Inverse3(S, -1); err == nil {
		Te.Errorf("a singular matrix should not be inverted")
	}
}

func TestRodrigues(Te *testing.T) {
	R, err := Rodrigues([3]float64{0, 0, 2}, math.Pi/2)
	if err != nil {
		Te.Fatal(err)
	}
	A := FromVecs([][3]float64{{1, 0, 0}, {0, 1, 5}})
	B := Zeros(2)
	B.RotateAbout(A, R, [3]float64{0, 0, 0})
	want := [][3]float64{{0, 1, 0}, {-1, 0, 5}}
	for i, w := range want {
		v := B.Vec(i)
		for j := range w {
			if !near(v[j], w[j], 1e-12) {
				Te.Errorf("vector %d: expected %v, got %v", i, w, v)
				break
			}
		}
	}
	if d := Det(R); !near(d, 1, 1e-12) {
		Te.Errorf("a rotation matrix has determinant 1, got %f", d)
	}
	if _, err := Rodrigues([3]float64{1e-12, 0, 0}, 1); err == nil {
		Te.Errorf("a degenerate axis should be rejected")
	}
}

func TestRotateAboutPivot(Te *testing.T) {
	R, err := Rodrigues([3]float64{0, 0, 1}, math.Pi)
	if err != nil {
		Te.Fatal(err)
	}
	A := FromVecs([][3]float64{{2, 1, 0}})
	A.RotateAbout(A, R, [3]float64{1, 1, 0})
	v := A.Vec(0)
	if !near(v[0], 0, 1e-12) || !near(v[1], 1, 1e-12) {
		Te.Errorf("rotating (2,1,0) by pi around (1,1,0) should give (0,1,0), got %v", v)
	}
}

func TestAlignTo(Te *testing.T) {
	cases := [][2][3]float64{
		{{1, 1, 0}, {1, 0, 0}},
		{{0, 0, 3}, {1, 0, 0}},
		{{-2, 0, 0}, {1, 0, 0}},
		{{5, 0, 0}, {1, 0, 0}},
	}
	for _, c := range cases {
		R, err := AlignTo(c[0], c[1])
		if err != nil {
			Te.Fatal(err)
		}
		A := FromVecs([][3]float64{c[0]})
		A.RotateAbout(A, R, [3]float64{})
		v := A.Vec(0)
		n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		if !near(v[0]/n, 1, 1e-9) {
			Te.Errorf("%v was not aligned with %v: %v", c[0], c[1], v)
		}
	}
}
