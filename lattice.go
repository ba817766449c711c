/*
 * lattice.go, part of msicastep.
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

package chem

import (
	"math"

	v3 "github.com/rmera/msicastep/v3"
	"gonum.org/v1/gonum/floats"
)

// LatticeTolerance is the smallest absolute determinant accepted for a set
// of lattice vectors.
const LatticeTolerance = 1e-12

// Lattice holds the three vectors a, b and c of a periodic cell, one per row.
type Lattice struct {
	vecs *v3.Matrix
}

// NewLattice returns the lattice spanned by a, b and c, or a ValidationError if
// the vectors are not finite or are (nearly) coplanar.
func NewLattice(a, b, c [3]float64) (*Lattice, error) {
	m := v3.FromVecs([][3]float64{a, b, c})
	if !m.Finite() {
		return nil, NewError(ValidationError, ErrNonFinite, "NewLattice", "lattice vectors")
	}
	if math.Abs(v3.Det(m)) <= LatticeTolerance {
		return nil, NewError(ValidationError, ErrDegenerateLattice, "NewLattice", "determinant %g", v3.Det(m))
	}
	return &Lattice{vecs: m}, nil
}

// Vec returns a copy of the ith lattice vector (0 for a, 1 for b, 2 for c).
func (L *Lattice) Vec(i int) [3]float64 {
	return L.vecs.Vec(i)
}

// Vectors returns copies of the three vectors.
func (L *Lattice) Vectors() [3][3]float64 {
	return [3][3]float64{L.vecs.Vec(0), L.vecs.Vec(1), L.vecs.Vec(2)}
}

// Matrix returns a copy of the lattice vectors as a 3x3 matrix, one vector per row.
func (L *Lattice) Matrix() *v3.Matrix {
	return L.vecs.Copy3()
}

// Det returns the determinant of the lattice matrix (the signed cell volume).
func (L *Lattice) Det() float64 {
	return v3.Det(L.vecs)
}

// Lengths returns the lengths of a, b and c.
func (L *Lattice) Lengths() [3]float64 {
	var ret [3]float64
	for i := range ret {
		v := L.Vec(i)
		ret[i] = floats.Norm(v[:], 2)
	}
	return ret
}

// Angles returns alpha (between b and c), beta (a, c) and gamma (a, b), in degrees.
func (L *Lattice) Angles() [3]float64 {
	a, b, c := L.Vec(0), L.Vec(1), L.Vec(2)
	return [3]float64{angle(b, c), angle(a, c), angle(a, b)}
}

func angle(u, v [3]float64) float64 {
	cos := floats.Dot(u[:], v[:]) / (floats.Norm(u[:], 2) * floats.Norm(v[:], 2))
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// ToFractional returns the fractional coordinates of the cartesian coordinates
// in coords. Since a cartesian vector is r = fL (rows of L are the lattice vectors),
// f = rL^-1.
func (L *Lattice) ToFractional(coords *v3.Matrix) (*v3.Matrix, error) {
	inv, err := v3.Inverse3(L.vecs, LatticeTolerance)
	if err != nil {
		return nil, NewError(GeometryError, ErrDegenerateLattice, "ToFractional", "%s", err.Error())
	}
	ret := v3.Zeros(coords.NVecs())
	ret.Mul(coords, inv)
	return ret, nil
}

// ToCartesian returns the cartesian coordinates of the fractional coordinates in frac.
func (L *Lattice) ToCartesian(frac *v3.Matrix) *v3.Matrix {
	ret := v3.Zeros(frac.NVecs())
	ret.Mul(frac, L.vecs)
	return ret
}

// Copy returns a deep copy of the lattice.
func (L *Lattice) Copy() *Lattice {
	return &Lattice{vecs: L.vecs.Copy3()}
}

// Equal returns true if both lattices have the same vectors within tol.
func (L *Lattice) Equal(o *Lattice, tol float64) bool {
	if L == nil || o == nil {
		return L == o
	}
	for i := 0; i < 3; i++ {
		a, b := L.Vec(i), o.Vec(i)
		if !floats.EqualApprox(a[:], b[:], tol) {
			return false
		}
	}
	return true
}
