/*
 * geometric.go, part of msicastep.
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
	"runtime"

	v3 "github.com/rmera/msicastep/v3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Options for the geometric transformations.
type Options struct {
	cpus    int
	minrows int
}

// DefaultOptions returns an Options with the default options.
func DefaultOptions() *Options {
	ret := new(Options)
	ret.cpus = runtime.NumCPU()
	ret.minrows = 2048
	return ret
}

// Cpus returns the current value of the Cpus option (the number of gorutines to
// use on the concurrent transformations) and sets it, if a valid value is given
func (r *Options) Cpus(cpus ...int) int {
	ret := r.cpus
	if len(cpus) > 0 && cpus[0] > 0 {
		r.cpus = cpus[0]
	}
	return ret
}

// MinRows returns the smallest number of atoms given to one goroutine, and sets it, if
// a valid value is given. Models with less than twice this number of atoms are
// transformed serially.
func (r *Options) MinRows(minrows ...int) int {
	ret := r.minrows
	if len(minrows) > 0 && minrows[0] > 0 {
		r.minrows = minrows[0]
	}
	return ret
}

func getOptions(opts []*Options) *Options {
	if len(opts) > 0 && opts[0] != nil {
		return opts[0]
	}
	return DefaultOptions()
}

// inBlocks calls f over consecutive blocks of the rows of coords. The blocks
// are processed concurrently when there are enough rows. Each row belongs to exactly one
// block, so f can freely write to its block.
func inBlocks(coords *v3.Matrix, o *Options, f func(block *v3.Matrix)) {
	n := coords.NVecs()
	cpus := o.Cpus()
	if cpus <= 1 || n < 2*o.MinRows() {
		f(coords)
		return
	}
	size := n / cpus
	if size < o.MinRows() {
		size = o.MinRows()
	}
	var g errgroup.Group
	g.SetLimit(cpus)
	for start := 0; start < n; start += size {
		rows := size
		if start+rows > n {
			rows = n - start
		}
		block := coords.View(start, rows)
		g.Go(func() error {
			f(block)
			return nil
		})
	}
	g.Wait()
}

// Translate adds offset to the coordinates of every atom of mol.
// Two translations add up: Translate(v1) followed by Translate(v2) gives
// the same coordinates as Translate(v1+v2). The lattice, if any, is not affected.
// mol is not modified if an error is returned.
func Translate(mol *Model, offset [3]float64, opts ...*Options) error {
	if !finite(offset) {
		return NewError(GeometryError, ErrNonFinite, "Translate", "offset %v", offset)
	}
	if mol.Len() == 0 {
		return nil
	}
	o := getOptions(opts)
	scratch := mol.coords.Copy3()
	off := v3.FromVecs([][3]float64{offset})
	inBlocks(scratch, o, func(block *v3.Matrix) {
		block.AddVec(block, off)
	})
	return errDecorate(commit(mol, scratch, nil), "Translate")
}

// Rotate rotates every atom of mol by angle radians around the axis that goes
// through pivot with the direction of axis, using Rodrigues' formula. axis needs not be
// normalized but it must be longer than v3.AxisTolerance, otherwise a GeometryError
// with ErrDegenerateAxis is returned. If lattice is true, and mol has a lattice, the
// lattice vectors are rotated with the same matrix (but not translated).
// Rotations keep all the interatomic distances. mol is not modified if an error is returned.
func Rotate(mol *Model, axis [3]float64, angle float64, pivot [3]float64, lattice bool, opts ...*Options) error {
	if !finite(axis) || !finite(pivot) || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return NewError(GeometryError, ErrNonFinite, "Rotate", "axis %v, angle %g, pivot %v", axis, angle, pivot)
	}
	R, err := v3.Rodrigues(axis, angle)
	if err != nil {
		return NewError(GeometryError, ErrDegenerateAxis, "Rotate", "axis %v", axis)
	}
	return errDecorate(rotate(mol, R, pivot, lattice, getOptions(opts)), "Rotate")
}

// rotate applies the rotation matrix R around pivot.
func rotate(mol *Model, R mat.Matrix, pivot [3]float64, lattice bool, o *Options) error {
	var scratch *v3.Matrix
	if mol.Len() > 0 {
		scratch = mol.coords.Copy3()
		inBlocks(scratch, o, func(block *v3.Matrix) {
			block.RotateAbout(block, R, pivot)
		})
	}
	var newlat *v3.Matrix
	if lattice && mol.lattice != nil {
		newlat = mol.lattice.Matrix()
		newlat.RotateAbout(newlat, R, [3]float64{})
	}
	return commit(mol, scratch, newlat)
}

// commit checks the new coordinates and lattice vectors and, if everything is finite,
// puts them in the model. nil arguments are left as they are.
func commit(mol *Model, coords, lattice *v3.Matrix) error {
	if coords != nil && !coords.Finite() {
		return NewError(GeometryError, ErrNonFinite, "commit", "transformed coordinates")
	}
	var L *Lattice
	if lattice != nil {
		var err error
		L, err = NewLattice(lattice.Vec(0), lattice.Vec(1), lattice.Vec(2))
		if err != nil {
			return NewError(GeometryError, err, "commit", "transformed lattice")
		}
	}
	if coords != nil {
		mol.coords.Copy(coords.Dense)
	}
	if L != nil {
		mol.lattice = L
	}
	return nil
}

// AlignLattice rotates mol, and its lattice, around the origin so that the lattice vector
// a lies along +x, and b lies in the xy plane with a positive y component. This is the
// standard orientation of CASTEP and Materials Studio cells. Fractional coordinates
// don't change. Returns a ValidationError with ErrNoLattice if mol has no lattice.
func AlignLattice(mol *Model, opts ...*Options) error {
	if mol.lattice == nil {
		return NewError(ValidationError, ErrNoLattice, "AlignLattice", "")
	}
	o := getOptions(opts)
	a := mol.lattice.Vec(0)
	R1, err := v3.AlignTo(a, [3]float64{1, 0, 0})
	if err != nil {
		return NewError(GeometryError, ErrDegenerateLattice, "AlignLattice", "%s", err.Error())
	}
	//now spin around x until b has no z component and a positive y.
	bm := v3.FromVecs([][3]float64{mol.lattice.Vec(1)})
	bm.RotateAbout(bm, R1, [3]float64{})
	b := bm.Vec(0)
	R2, err := v3.Rodrigues([3]float64{1, 0, 0}, -math.Atan2(b[2], b[1]))
	if err != nil {
		return NewError(GeometryError, ErrDegenerateAxis, "AlignLattice", "")
	}
	R := mat.NewDense(3, 3, nil)
	R.Mul(R2, R1)
	return errDecorate(rotate(mol, R, [3]float64{}, true, o), "AlignLattice")
}
