/*
 * rotation.go, part of msicastep.
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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// AxisTolerance is the smallest axis norm that Rodrigues accepts.
const AxisTolerance = 1e-9

// Rodrigues returns the 3x3 matrix for a rotation of angle radians around axis,
// R = I + sin(angle)K + (1-cos(angle))K^2, where K is the cross-product matrix of the
// normalized axis. The axis doesn't need to be normalized, but it can't be shorter than
// AxisTolerance.
func Rodrigues(axis [3]float64, angle float64) (*mat.Dense, error) {
	norm := floats.Norm(axis[:], 2)
	if norm < AxisTolerance || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, Error{string(ErrDegenerateAxis), []string{"Rodrigues"}, true}
	}
	u := axis
	floats.Scale(1/norm, u[:])
	K := mat.NewDense(3, 3, []float64{
		0, -u[2], u[1],
		u[2], 0, -u[0],
		-u[1], u[0], 0,
	})
	K2 := mat.NewDense(3, 3, nil)
	K2.Mul(K, K)
	R := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	tmp := mat.NewDense(3, 3, nil)
	tmp.Scale(math.Sin(angle), K)
	R.Add(R, tmp)
	tmp.Scale(1-math.Cos(angle), K2)
	R.Add(R, tmp)
	return R, nil
}

// RotateAbout puts in F the vectors of A rotated by the rotation matrix R around pivot
// (F = (A - pivot)R^T + pivot). F and A must have the same number of vectors, and can be
// the same Matrix.
func (F *Matrix) RotateAbout(A *Matrix, R mat.Matrix, pivot [3]float64) {
	if F.NVecs() != A.NVecs() {
		panic(ErrShape)
	}
	p := FromVecs([][3]float64{pivot})
	centered := Zeros(A.NVecs())
	centered.SubVec(A, p)
	F.Mul(centered, R.T())
	F.AddVec(F, p)
}

// AlignTo returns the rotation matrix that takes the direction of from onto the
// direction of to. Both vectors must be non-zero.
func AlignTo(from, to [3]float64) (*mat.Dense, error) {
	nf := floats.Norm(from[:], 2)
	nt := floats.Norm(to[:], 2)
	if nf < AxisTolerance || nt < AxisTolerance {
		return nil, Error{string(ErrDegenerateAxis), []string{"AlignTo"}, true}
	}
	cos := floats.Dot(from[:], to[:]) / (nf * nt)
	cos = math.Max(-1, math.Min(1, cos))
	angle := math.Acos(cos)
	if angle < appzero {
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}), nil
	}
	f := FromVecs([][3]float64{from})
	t := FromVecs([][3]float64{to})
	axis := Zeros(1)
	axis.Cross(f, t)
	ax := axis.Vec(0)
	if floats.Norm(ax[:], 2) < AxisTolerance*nf*nt {
		//antiparallel: any axis perpendicular to from will do.
		ax = perpendicular(from)
	}
	R, err := Rodrigues(ax, angle)
	if err != nil {
		return nil, errDecorate(err, "AlignTo")
	}
	return R, nil
}

// perpendicular returns a vector perpendicular to v.
func perpendicular(v [3]float64) [3]float64 {
	trial := [3]float64{1, 0, 0}
	if math.Abs(v[0]) > math.Abs(v[1]) && math.Abs(v[0]) > math.Abs(v[2]) {
		trial = [3]float64{0, 1, 0}
	}
	a := FromVecs([][3]float64{v})
	b := FromVecs([][3]float64{trial})
	c := Zeros(1)
	c.Cross(a, b)
	return c.Vec(0)
}
