/*
 * gonum.go, part of msicastep.
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

//gonum.go contains what is needed for handling the gonum/mat types.

package v3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space. Within the package it is understood that
// a "vector" is a row vector, i.e. the cartesian coordinates of a point in 3D space.
type Matrix struct {
	*mat.Dense
}

// Matrix2Dense returns the gonum Dense underlying A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

// Dense2Matrix wraps a Nx3 Dense in a Matrix. Panics if A doesn't have 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

// VecView returns a view of the ith vector of the matrix.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

// View returns a view of the r vectors of F, starting from the ith one.
// Changes in the view are reflected in F and vice-versa.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)
	return &Matrix{ret}
}

// Mul wraps mat.Dense.Mul to take care of the case when one of the
// arguments is also a Matrix, so the underlying Dense is the one gonum sees.
func (F *Matrix) Mul(A, B mat.Matrix) {
	if a, ok := A.(*Matrix); ok {
		A = a.Dense
	}
	if b, ok := B.(*Matrix); ok {
		B = b.Dense
	}
	F.Dense.Mul(A, B)
}

// Det returns the determinant of a 3x3 matrix. Panics if the matrix is not 3x3.
func Det(A mat.Matrix) float64 {
	r, c := A.Dims()
	if r != 3 || c != 3 {
		panic(ErrDeterminant)
	}
	return (A.At(0, 0)*(A.At(1, 1)*A.At(2, 2)-A.At(2, 1)*A.At(1, 2)) - A.At(1, 0)*(A.At(0, 1)*A.At(2, 2)-A.At(2, 1)*A.At(0, 2)) + A.At(2, 0)*(A.At(0, 1)*A.At(1, 2)-A.At(1, 1)*A.At(0, 2)))
}

// Inverse3 returns the inverse of the 3x3 matrix A, or an error if A is singular
// (|det| below tol; a negative tol means the package default).
func Inverse3(A mat.Matrix, tol float64) (*mat.Dense, error) {
	if tol < 0 {
		tol = appzero
	}
	if math.Abs(Det(A)) <= tol {
		return nil, Error{string(ErrSingular), []string{"Inverse3"}, true}
	}
	inv := mat.NewDense(3, 3, nil)
	if err := inv.Inverse(A); err != nil {
		//gonum reports ill-conditioned matrices as a mat.Condition error. The
		//result is still usable so we only refuse exactly singular ones.
		if _, ok := err.(mat.Condition); !ok {
			return nil, Error{err.Error(), []string{"mat.Inverse", "Inverse3"}, true}
		}
	}
	return inv, nil
}

//Errors

// the same as chem.Error but avoid circular import.
type errorInt interface {
	Error() string
	Critical() bool
	Decorate(string) []string
}

type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return fmt.Sprintf("%s", err.message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// errDecorate is a helper function that asserts that the error
// implements errorInt and decorates the error with the caller's name before returning it.
// if used with a non-v3 error, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(errorInt)
	err2.Decorate(caller)
	return err2
}

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("msicastep/v3: A VecMatrix should have 3 columns")
	ErrNoCrossProduct    = PanicMsg("msicastep/v3: Invalid matrix for cross product")
	ErrNotEnoughElements = PanicMsg("msicastep/v3: not enough elements in Matrix")
	ErrDeterminant       = PanicMsg("msicastep/v3: Determinants are only available for 3x3 matrices")
	ErrShape             = PanicMsg("msicastep/v3: Dimension mismatch")
	ErrSingular          = PanicMsg("msicastep/v3: Singular matrix")
	ErrDegenerateAxis    = PanicMsg("msicastep/v3: Rotation axis too short to be normalized")
	ErrIndexOutOfRange   = PanicMsg("mat: index out of range")
)
